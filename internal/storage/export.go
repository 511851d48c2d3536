package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/posegraph/internal/animator"
)

type ExportData struct {
	Name          string             `json:"name"`
	Frequency     string             `json:"frequency"`
	Ticks         int                `json:"ticks"`
	FramesPerTick int                `json:"frames_per_tick"`
	Joints        []string           `json:"joints"`
	Frames        []ExportFrame      `json:"frames"`
	Metrics       map[string]float64 `json:"metrics"`
}

type ExportFrame struct {
	Tick       int64                  `json:"tick"`
	Partial    float64                `json:"partial"`
	StackDepth int                    `json:"stack_depth"`
	Joints     map[string]ExportJoint `json:"joints"`
}

type ExportJoint struct {
	Translation [3]float64 `json:"translation"`
	// Rotation is w, x, y, z.
	Rotation [4]float64 `json:"rotation"`
	Scale    [3]float64 `json:"scale"`
	Visible  bool       `json:"visible"`
}

func NewExportData(meta RunMetadata, result *animator.Result) ExportData {
	data := ExportData{
		Name:          meta.Name,
		Frequency:     meta.Frequency,
		Ticks:         result.Ticks,
		FramesPerTick: meta.FramesPerTick,
		Joints:        result.Joints,
		Frames:        make([]ExportFrame, len(result.Samples)),
		Metrics:       result.Metrics,
	}
	for i, s := range result.Samples {
		frame := ExportFrame{
			Tick:       s.Tick,
			Partial:    s.PartialTicks,
			StackDepth: s.StackDepth,
			Joints:     make(map[string]ExportJoint, len(s.Channels)),
		}
		for name, ch := range s.Channels {
			frame.Joints[name] = ExportJoint{
				Translation: ch.Translation,
				Rotation:    [4]float64{ch.Rotation.W, ch.Rotation.X(), ch.Rotation.Y(), ch.Rotation.Z()},
				Scale:       ch.Scale,
				Visible:     ch.Visible,
			}
		}
		data.Frames[i] = frame
	}
	return data
}

// ExportJSON writes the run as indented JSON.
func ExportJSON(w io.Writer, meta RunMetadata, result *animator.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, result))
}
