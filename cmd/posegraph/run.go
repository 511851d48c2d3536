package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/posegraph/internal/animator"
	"github.com/san-kum/posegraph/internal/metrics"
	"github.com/san-kum/posegraph/internal/rig"
	"github.com/san-kum/posegraph/internal/storage"
	"github.com/san-kum/posegraph/internal/viz"
)

func runAnimation(cmd *cobra.Command, args []string) error {
	if ensemble < 1 {
		return fmt.Errorf("ensemble must be at least 1, got %d", ensemble)
	}
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	factory := func(idx int) (*animator.Runner[rig.Input], error) {
		in, err := s.newInstance()
		if err != nil {
			return nil, err
		}
		r := animator.NewRunner(in, s.scenario.Input())
		r.AddMetric(metrics.NewPeakStackDepth())
		r.AddMetric(metrics.NewSlotCoverage(rig.MainSlot))
		r.AddMetric(metrics.NewSpringResidual(s.rig.RecoilKey()))
		r.AddMetric(metrics.NewJointTravel(rig.JointRightArm))
		return r, nil
	}

	fmt.Printf("running %s / %s for %d ticks...\n", s.cfg.Name, s.scenario.Name, s.cfg.Ticks)
	start := time.Now()

	results, err := animator.NewEnsemble(factory, ensemble).Run(ctx, s.cfg.RunConfig())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	styles := viz.NewStyles(viz.ThemeByName("neon"))
	for i, result := range results {
		name := s.cfg.Name
		if ensemble > 1 {
			name = fmt.Sprintf("%s-%d", name, i)
		}
		runID, err := st.Save(storage.RunMetadata{
			Name:          name,
			Scenario:      s.scenario.Name,
			FramesPerTick: s.cfg.FramesPerTick,
			Frequency:     s.cfg.Frequency,
		}, result)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", runID)
		fmt.Printf("ticks: %d  frames: %d\n", result.Ticks, result.Frames)
		fmt.Print(styles.MetricsTable(result.Metrics))
	}
	fmt.Printf("\ncompleted in %v\n", elapsed)
	return nil
}
