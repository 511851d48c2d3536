package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/posegraph/internal/animator"
	"github.com/san-kum/posegraph/internal/config"
	"github.com/san-kum/posegraph/internal/montage"
	"github.com/san-kum/posegraph/internal/rig"
	"github.com/san-kum/posegraph/internal/scenario"
	"github.com/san-kum/posegraph/internal/sequence"
	"github.com/san-kum/posegraph/internal/telemetry"
)

const sampleCacheTTL = time.Minute

var (
	dataDir  string
	logLevel string
	// Run inputs
	configFile    string
	scenarioName  string
	ticks         int
	framesPerTick int
	recoilPreset  string
	record        []string
	ensemble      int
	// Plot / export / analyze
	plotJoint    string
	exportFormat string
	exportJoint  string
	analyzeAxis  int
	// Live / serve
	themeName  string
	listenAddr string
	entities   int

	logger = zerolog.Nop()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "posegraph",
		Short: "procedural skeletal animation lab",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := telemetry.NewLogger(os.Stderr, logLevel)
			if err != nil {
				return err
			}
			logger = l
			sequence.SetLogger(l)
			montage.SetLogger(l)
			animator.SetLogger(l)
			rig.SetLogger(l)
			scenario.SetLogger(l)
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".posegraph", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the arms rig and store the result",
		RunE:  runAnimation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringSliceVar(&record, "record", nil, "joints to record (default all)")
	runCmd.Flags().IntVar(&ensemble, "ensemble", 1, "number of independent instances to run concurrently")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a joint's translation and the montage stack depth",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotJoint, "joint", rig.JointRightArm, "joint to plot")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as JSON, or a joint's path as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format (json, svg)")
	exportCmd.Flags().StringVar(&exportJoint, "joint", rig.JointRightItem, "joint traced by svg export")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "plot a joint's power spectrum and report its dominant period",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&plotJoint, "joint", rig.JointRightArm, "joint to analyze")
	analyzeCmd.Flags().IntVar(&analyzeAxis, "axis", 0, "translation axis (0 x, 1 y, 2 z)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "drive the arms rig interactively",
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().StringVar(&themeName, "theme", "neon", "color theme")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "loop a scenario over a world of entities and expose /metrics and /status",
		RunE:  serve,
	}
	addRunFlags(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "addr", ":9090", "listen address")
	serveCmd.Flags().IntVar(&entities, "entities", 1, "arms entities hosted in the world, staggered through the scenario")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list recoil spring presets",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("recoil presets:")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-10s stiffness=%.2f damping=%.2f mass=%.2f decay=%.2f\n",
					name, p.Stiffness, p.Damping, p.Mass, p.Decay)
			}
		},
	}

	sequencesCmd := &cobra.Command{
		Use:   "sequences",
		Short: "list the sequences available to the rig",
		RunE:  listSequences,
	}
	sequencesCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml, json or toml)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, analyzeCmd, liveCmd, serveCmd, presetsCmd, sequencesCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml, json or toml)")
	cmd.Flags().StringVar(&scenarioName, "scenario", "demo", "scenario file, or demo / idle")
	cmd.Flags().IntVar(&ticks, "ticks", 0, "ticks to run (default from config or scenario)")
	cmd.Flags().IntVar(&framesPerTick, "frames", 0, "frames rendered per tick (default from config)")
	cmd.Flags().StringVar(&recoilPreset, "preset", "", "recoil spring preset")
}
