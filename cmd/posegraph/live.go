package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/posegraph/internal/config"
	"github.com/san-kum/posegraph/internal/viz"
)

func runLive(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	in, err := s.newInstance()
	if err != nil {
		return err
	}

	opts := []viz.Option{viz.WithTheme(themeName)}
	if cmd.Flags().Changed("scenario") {
		opts = append(opts, viz.WithScript(s.scenario.Input()))
	}
	m := viz.NewModel(s.rig, in, s.cfg.FramesPerTick, opts...)

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func listSequences(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	lib, err := cfg.Library()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLENGTH\tJOINTS\tMARKERS")
	for _, id := range lib.IDs() {
		seq, _ := lib.Get(id)
		markers := make([]string, 0)
		for name := range seq.TimeMarkers() {
			markers = append(markers, name)
		}
		sort.Strings(markers)
		fmt.Fprintf(w, "%s\t%s\t%d\t%v\n", id, seq.Length(), len(seq.Joints()), markers)
	}
	return w.Flush()
}
