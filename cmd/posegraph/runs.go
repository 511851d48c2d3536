package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/posegraph/internal/analysis"
	"github.com/san-kum/posegraph/internal/animator"
	"github.com/san-kum/posegraph/internal/export"
	"github.com/san-kum/posegraph/internal/storage"
	"github.com/san-kum/posegraph/internal/timing"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSCENARIO\tTIME\tTICKS\tFRAMES\tFREQUENCY")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			run.ID,
			run.Name,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Frames,
			run.Frequency,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}
	if _, ok := samples[0].Channels[plotJoint]; !ok {
		return fmt.Errorf("joint %s was not recorded (have %v)", plotJoint, meta.Joints)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("frames: %d\n\n", len(samples))

	axes := []string{"x", "y", "z"}
	for axis := range axes {
		data := make([]float64, len(samples))
		for i, s := range samples {
			data[i] = s.Channels[plotJoint].Translation[axis]
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s translation %s", plotJoint, axes[axis])),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	depth := make([]float64, len(samples))
	for i, s := range samples {
		depth[i] = float64(s.StackDepth)
	}
	fmt.Println(asciigraph.Plot(depth,
		asciigraph.Height(5),
		asciigraph.Width(80),
		asciigraph.Caption("montage stack depth"),
	))

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	switch exportFormat {
	case "json":
	case "svg":
		points := export.JointPath(samples, exportJoint)
		if len(points) < 2 {
			return fmt.Errorf("joint %s has fewer than two visible samples", exportJoint)
		}
		_, err := fmt.Fprintln(os.Stdout, export.TrajectoryToSVG(points, 800, 600, "#00ffcc"))
		return err
	default:
		return fmt.Errorf("unknown export format %q", exportFormat)
	}

	result := &animator.Result{
		Ticks:   meta.Ticks,
		Frames:  meta.Frames,
		Joints:  meta.Joints,
		Samples: samples,
		Metrics: meta.Metrics,
	}
	return storage.ExportJSON(os.Stdout, *meta, result)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	if analyzeAxis < 0 || analyzeAxis > 2 {
		return fmt.Errorf("axis must be 0, 1 or 2")
	}

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) < 4 {
		return fmt.Errorf("not enough samples to analyze")
	}
	if _, ok := samples[0].Channels[plotJoint]; !ok {
		return fmt.Errorf("joint %s was not recorded (have %v)", plotJoint, meta.Joints)
	}

	signal := analysis.JointSignal(samples, plotJoint, analyzeAxis)
	spectrum := analysis.PowerSpectrum(signal)

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("joint: %s axis %d\n\n", plotJoint, analyzeAxis)
	fmt.Println(asciigraph.Plot(spectrum,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum"),
	))
	fmt.Println()

	period, ok := analysis.DominantPeriod(signal)
	if !ok {
		fmt.Println("no periodic motion found")
		return nil
	}
	frames := float64(max(meta.FramesPerTick, 1))
	fmt.Printf("dominant period: %.1f frames (%.2f ticks, %.2fs)\n",
		period, period/frames, period/frames/timing.TicksPerSecond)
	return nil
}
