package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/yohamta/donburi"

	"github.com/san-kum/posegraph/internal/animator"
	"github.com/san-kum/posegraph/internal/ecs"
	"github.com/san-kum/posegraph/internal/rig"
	"github.com/san-kum/posegraph/internal/telemetry"
	"github.com/san-kum/posegraph/internal/timing"
)

func serve(cmd *cobra.Command, args []string) error {
	if entities < 1 {
		return fmt.Errorf("entities must be at least 1, got %d", entities)
	}
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	collector := telemetry.NewCollector()
	world := ecs.NewWorld(donburi.NewWorld())
	period := int64(s.cfg.Ticks)

	var lead donburi.Entity
	for i := 0; i < entities; i++ {
		in, err := s.newInstance()
		if err != nil {
			return err
		}
		in.Montages().SetObserver(collector)
		offset := int64(i) * period / int64(entities)
		e := world.Spawn(fmt.Sprintf("arms-%d", i), ecs.Bind(in, loopInput(s.scenario.InputAt, period, offset)))
		if i == 0 {
			lead = e
		}
	}
	ecs.MarkerEventType.Subscribe(world.Donburi(), func(_ donburi.World, ev ecs.MarkerEvent) {
		logger.Debug().Str("entity", ev.Name).Str("montage", ev.Montage).Str("marker", ev.Marker).
			Int64("tick", ev.Tick).Msg("time marker")
		collector.OnMarker(ev.MarkerEvent)
	})

	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           telemetry.NewRouter(collector),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", listenAddr).Int("entities", entities).Msg("serving telemetry")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			stop()
		}
		close(errCh)
	}()

	loopWorld(ctx, world, lead, s.cfg.FramesPerTick, collector)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// loopInput replays input every period ticks, starting offset ticks in.
func loopInput(input animator.InputFunc[rig.Input], period, offset int64) animator.InputFunc[rig.Input] {
	return func(tick int64) rig.Input {
		return input((tick + offset) % period)
	}
}

// loopWorld ticks and poses every entity in real time until ctx is done. Frames of
// lead are reported to obs.
func loopWorld(ctx context.Context, world *ecs.World, lead donburi.Entity, framesPerTick int, obs animator.Observer) {
	ticker := time.NewTicker(time.Second / time.Duration(timing.TicksPerSecond*framesPerTick))
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if frame == 0 {
			world.TickAll()
		}
		partial := float64(frame) / float64(framesPerTick)
		world.PoseAll(partial)
		if f, ok := world.Frame(lead, partial); ok {
			obs.OnFrame(f)
		}
		frame = (frame + 1) % framesPerTick
	}
}
