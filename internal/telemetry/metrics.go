package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/posegraph/internal/animator"
	"github.com/san-kum/posegraph/internal/montage"
)

const namespace = "posegraph"

// Collector counts animator activity into its own Prometheus registry. It is an
// animator.Observer and a montage.Observer; frames and montage events may arrive
// from a different goroutine than scrapes.
type Collector struct {
	registry *prometheus.Registry

	ticks       prometheus.Counter
	frames      prometheus.Counter
	started     *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	interrupted *prometheus.CounterVec
	removed     *prometheus.CounterVec
	markers     *prometheus.CounterVec
	stackDepth  prometheus.Gauge
	slotWeight  *prometheus.GaugeVec

	mu   sync.RWMutex
	last Status
}

// Status is the latest frame summary served as JSON.
type Status struct {
	Tick         int64                  `json:"tick"`
	PartialTicks float64                `json:"partial_ticks"`
	Frames       int64                  `json:"frames"`
	Montages     []montage.InstanceInfo `json:"montages"`
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "animator",
			Name:      "ticks_total",
			Help:      "Total number of animator ticks",
		}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "animator",
			Name:      "frames_total",
			Help:      "Total number of rendered frames",
		}),
		started:     montageCounter("started_total", "Montages started"),
		rejected:    montageCounter("rejected_total", "Montage triggers rejected by cooldown"),
		interrupted: montageCounter("interrupted_total", "Montages interrupted"),
		removed:     montageCounter("removed_total", "Montages removed from the stack"),
		markers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "montage",
			Name:      "time_markers_total",
			Help:      "Time markers crossed by playing montages",
		}, []string{"montage", "marker"}),
		stackDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "montage",
			Name:      "stack_depth",
			Help:      "Montage instances on the stack at the last frame",
		}),
		slotWeight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "montage",
			Name:      "slot_weight",
			Help:      "Strongest montage weight per slot at the last frame",
		}, []string{"slot"}),
	}
	c.registry.MustRegister(c.ticks, c.frames, c.started, c.rejected, c.interrupted, c.removed,
		c.markers, c.stackDepth, c.slotWeight)
	return c
}

func montageCounter(name, help string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "montage",
		Name:      name,
		Help:      help,
	}, []string{"montage"})
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) MontageStarted(id string)     { c.started.WithLabelValues(id).Inc() }
func (c *Collector) MontageRejected(id string)    { c.rejected.WithLabelValues(id).Inc() }
func (c *Collector) MontageInterrupted(id string) { c.interrupted.WithLabelValues(id).Inc() }
func (c *Collector) MontageRemoved(id string)     { c.removed.WithLabelValues(id).Inc() }

// OnMarker can be registered with montage.Manager.OnTimeMarker.
func (c *Collector) OnMarker(ev montage.MarkerEvent) {
	c.markers.WithLabelValues(ev.Montage, ev.Marker).Inc()
}

func (c *Collector) OnFrame(f animator.Frame) {
	if f.PartialTicks == 0 {
		c.ticks.Inc()
	}
	c.frames.Inc()
	c.stackDepth.Set(float64(len(f.Montages)))

	weights := make(map[string]float64)
	for _, m := range f.Montages {
		for _, slot := range m.Slots {
			if m.Weight > weights[slot] {
				weights[slot] = m.Weight
			}
		}
	}
	c.slotWeight.Reset()
	for slot, w := range weights {
		c.slotWeight.WithLabelValues(slot).Set(w)
	}

	c.mu.Lock()
	c.last = Status{
		Tick:         f.Tick,
		PartialTicks: f.PartialTicks,
		Frames:       c.last.Frames + 1,
		Montages:     f.Montages,
	}
	c.mu.Unlock()
}

func (c *Collector) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

var (
	_ animator.Observer = (*Collector)(nil)
	_ montage.Observer  = (*Collector)(nil)
)
