package animator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/san-kum/posegraph/internal/pose"
)

var logger = zerolog.Nop()

// SetLogger installs the logger used by runners.
func SetLogger(l zerolog.Logger) { logger = l }

// InputFunc supplies the animator's data reference for a tick.
type InputFunc[T any] func(tick int64) T

// Runner drives an Instance on a fixed-step loop, rendering FramesPerTick frames
// after every tick.
type Runner[T any] struct {
	instance  *Instance[T]
	input     InputFunc[T]
	metrics   []Metric
	observers []Observer
}

func NewRunner[T any](instance *Instance[T], input InputFunc[T]) *Runner[T] {
	return &Runner[T]{
		instance:  instance,
		input:     input,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (r *Runner[T]) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner[T]) AddObserver(o Observer) { r.observers = append(r.observers, o) }

func (r *Runner[T]) Instance() *Instance[T] { return r.instance }

func (r *Runner[T]) Run(ctx context.Context, cfg RunConfig) (result *Result, err error) {
	if err := r.validateConfig(cfg); err != nil {
		return nil, err
	}

	joints := cfg.Record
	if len(joints) == 0 {
		joints = r.instance.Skeleton().Joints()
	}

	result = &Result{
		Joints:  append([]string(nil), joints...),
		Samples: make([]Sample, 0, cfg.Ticks*cfg.FramesPerTick),
		Metrics: make(map[string]float64),
	}
	for _, m := range r.metrics {
		m.Reset()
	}

	defer func() {
		if rec := recover(); rec != nil {
			wrapped, ok := rec.(error)
			if !ok {
				wrapped = fmt.Errorf("%v", rec)
			}
			err = &RunError{Tick: r.instance.Ticks(), Wrapped: wrapped}
			logger.Error().Err(err).Msg("run aborted")
		}
	}()

	logger.Debug().Int("ticks", cfg.Ticks).Int("frames_per_tick", cfg.FramesPerTick).Msg("run started")

	for i := 0; i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			return result, &RunError{Tick: r.instance.Ticks(), Wrapped: ctx.Err()}
		default:
		}

		tick := r.instance.Ticks()
		r.instance.Tick(r.input(tick))
		result.Ticks++

		for f := 0; f < cfg.FramesPerTick; f++ {
			partial := float64(f) / float64(cfg.FramesPerTick)
			frame := Frame{
				Tick:         tick,
				PartialTicks: partial,
				Pose:         r.instance.Pose(partial),
				Drivers:      r.instance.Drivers(),
				Montages:     r.instance.Montages().Snapshot(partial),
			}
			for _, m := range r.metrics {
				m.Observe(frame)
			}
			for _, obs := range r.observers {
				obs.OnFrame(frame)
			}
			result.Samples = append(result.Samples, Sample{
				Tick:         tick,
				PartialTicks: partial,
				StackDepth:   len(frame.Montages),
				Channels:     channelsOf(frame.Pose, joints),
			})
			result.Frames++
		}
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	logger.Debug().Int("ticks", result.Ticks).Int("frames", result.Frames).Msg("run finished")
	return result, nil
}

func (r *Runner[T]) validateConfig(cfg RunConfig) error {
	if cfg.Ticks <= 0 {
		return fmt.Errorf("%w: ticks must be positive, got %d", ErrInvalidConfig, cfg.Ticks)
	}
	if cfg.FramesPerTick <= 0 {
		return fmt.Errorf("%w: frames per tick must be positive, got %d", ErrInvalidConfig, cfg.FramesPerTick)
	}
	sk := r.instance.Skeleton()
	for _, j := range cfg.Record {
		if !sk.ContainsJoint(j) {
			return fmt.Errorf("%w: %s", ErrUnknownJoint, j)
		}
	}
	return nil
}

func channelsOf(p *pose.Pose, joints []string) map[string]pose.JointChannel {
	out := make(map[string]pose.JointChannel, len(joints))
	for _, j := range joints {
		out[j] = p.Channel(j)
	}
	return out
}
