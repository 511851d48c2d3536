package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/posegraph/internal/animator"
	"github.com/san-kum/posegraph/internal/config"
	"github.com/san-kum/posegraph/internal/rig"
	"github.com/san-kum/posegraph/internal/scenario"
	"github.com/san-kum/posegraph/internal/sequence"
)

// session is everything a command needs to build arms instances.
type session struct {
	cfg      *config.Config
	sampler  sequence.Sampler
	rig      *rig.Rig
	scenario *scenario.Scenario
}

// loadSession resolves configuration, flags, the sequence library and the scenario.
// Flags override the config file.
func loadSession(cmd *cobra.Command) (*session, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if recoilPreset != "" {
		p := config.GetPreset(recoilPreset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", recoilPreset, config.ListPresets())
		}
		cfg.Recoil = *p
	}

	sc, err := resolveScenario(scenarioName)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	switch {
	case flags.Changed("ticks"):
		cfg.Ticks = ticks
	case configFile == "" && sc.Duration() > 1:
		cfg.Ticks = int(sc.Duration())
	}
	if flags.Changed("frames") {
		cfg.FramesPerTick = framesPerTick
	}
	if flags.Lookup("record") != nil && flags.Changed("record") {
		cfg.Record = record
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lib, err := cfg.Library()
	if err != nil {
		return nil, err
	}
	settings, err := cfg.RigSettings()
	if err != nil {
		return nil, err
	}
	sampler := sequence.NewCachedSampler(lib, sampleCacheTTL)
	r, err := rig.New(settings, sampler)
	if err != nil {
		return nil, err
	}
	if err := sc.CheckMontages(r); err != nil {
		return nil, err
	}

	logger.Info().Str("config", cfg.Name).Str("scenario", sc.Name).Int("sequences", lib.Len()).
		Int("ticks", cfg.Ticks).Msg("session ready")
	return &session{cfg: cfg, sampler: sampler, rig: r, scenario: sc}, nil
}

func resolveScenario(name string) (*scenario.Scenario, error) {
	switch name {
	case "", "idle":
		return scenario.Idle(), nil
	case "demo":
		sc := scenario.Demo()
		return sc, sc.Validate()
	}
	return scenario.LoadScenario(name)
}

func (s *session) newInstance() (*animator.Instance[rig.Input], error) {
	return animator.NewInstance[rig.Input](s.rig, s.sampler)
}
