package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/posegraph/internal/animator"
	"github.com/san-kum/posegraph/internal/driver"
	"github.com/san-kum/posegraph/internal/montage"
	"github.com/san-kum/posegraph/internal/pose"
	"github.com/san-kum/posegraph/internal/rig"
	"github.com/san-kum/posegraph/internal/sequence"
	"github.com/san-kum/posegraph/internal/timing"
)

const (
	DefaultTicks         = 200
	DefaultFramesPerTick = 3
	DefaultRecoilDecay   = 0.5
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Name          string `yaml:"name" json:"name" toml:"name"`
	Ticks         int    `yaml:"ticks" json:"ticks" toml:"ticks"`
	FramesPerTick int    `yaml:"frames_per_tick" json:"frames_per_tick" toml:"frames_per_tick"`
	// Frequency is once_per_tick or every_frame.
	Frequency string `yaml:"frequency" json:"frequency" toml:"frequency"`
	// SequencesDir holds sequence JSON files. Empty uses the built-in arm clips.
	SequencesDir        string         `yaml:"sequences_dir" json:"sequences_dir" toml:"sequences_dir"`
	IdleSequence        string         `yaml:"idle_sequence" json:"idle_sequence" toml:"idle_sequence"`
	WalkSequence        string         `yaml:"walk_sequence" json:"walk_sequence" toml:"walk_sequence"`
	Skeleton            SkeletonSpec   `yaml:"skeleton" json:"skeleton" toml:"skeleton"`
	Recoil              SpringSpec     `yaml:"recoil" json:"recoil" toml:"recoil"`
	InterruptTransition TransitionSpec `yaml:"interrupt_transition" json:"interrupt_transition" toml:"interrupt_transition"`
	Montages            []MontageSpec  `yaml:"montages" json:"montages" toml:"montages"`
	Record              []string       `yaml:"record" json:"record" toml:"record"`
}

type SkeletonSpec struct {
	Joints  []string          `yaml:"joints" json:"joints" toml:"joints"`
	Mirrors map[string]string `yaml:"mirrors" json:"mirrors" toml:"mirrors"`
}

type SpringSpec struct {
	Stiffness float64 `yaml:"stiffness" json:"stiffness" toml:"stiffness"`
	Damping   float64 `yaml:"damping" json:"damping" toml:"damping"`
	Mass      float64 `yaml:"mass" json:"mass" toml:"mass"`
	Decay     float64 `yaml:"decay" json:"decay" toml:"decay"`
}

// TransitionSpec is a transition measured in ticks with a named easing curve.
type TransitionSpec struct {
	Ticks  float64 `yaml:"ticks" json:"ticks" toml:"ticks"`
	Easing string  `yaml:"easing,omitempty" json:"easing,omitempty" toml:"easing,omitempty"`
}

type MontageSpec struct {
	ID            string             `yaml:"id" json:"id" toml:"id"`
	Sequence      string             `yaml:"sequence" json:"sequence" toml:"sequence"`
	Slots         []string           `yaml:"slots" json:"slots" toml:"slots"`
	PlayRate      float64            `yaml:"play_rate,omitempty" json:"play_rate,omitempty" toml:"play_rate,omitempty"`
	TransitionIn  *TransitionSpec    `yaml:"transition_in,omitempty" json:"transition_in,omitempty" toml:"transition_in,omitempty"`
	TransitionOut *TransitionSpec    `yaml:"transition_out,omitempty" json:"transition_out,omitempty" toml:"transition_out,omitempty"`
	StartOffset   float64            `yaml:"start_offset,omitempty" json:"start_offset,omitempty" toml:"start_offset,omitempty"`
	Crossfade     *float64           `yaml:"crossfade,omitempty" json:"crossfade,omitempty" toml:"crossfade,omitempty"`
	Cooldown      float64            `yaml:"cooldown,omitempty" json:"cooldown,omitempty" toml:"cooldown,omitempty"`
	BlendMask     map[string]float64 `yaml:"blend_mask,omitempty" json:"blend_mask,omitempty" toml:"blend_mask,omitempty"`
	AdditiveBase  string             `yaml:"additive_base,omitempty" json:"additive_base,omitempty" toml:"additive_base,omitempty"`
}

func DefaultConfig() *Config {
	half := 0.5
	return &Config{
		Name:          "arms",
		Ticks:         DefaultTicks,
		FramesPerTick: DefaultFramesPerTick,
		Frequency:     animator.OncePerTick.String(),
		IdleSequence:  rig.SequenceIdle,
		WalkSequence:  rig.SequenceWalk,
		Skeleton: SkeletonSpec{
			Joints: []string{rig.JointArmBuffer, rig.JointRightArm, rig.JointLeftArm, rig.JointRightItem, rig.JointLeftItem},
			Mirrors: map[string]string{
				rig.JointRightArm:  rig.JointLeftArm,
				rig.JointRightItem: rig.JointLeftItem,
			},
		},
		Recoil:              *GetPreset("snappy"),
		InterruptTransition: TransitionSpec{Ticks: 3},
		Montages: []MontageSpec{
			{
				ID: "attack", Sequence: rig.SequenceAttack, Slots: []string{rig.MainSlot},
				TransitionIn: &TransitionSpec{Ticks: 2}, TransitionOut: &TransitionSpec{Ticks: 4, Easing: "in_out_sine"},
				Crossfade: &half, Cooldown: 6,
				BlendMask: map[string]float64{rig.JointRightArm: 1, rig.JointRightItem: 1},
			},
			{
				ID: "inspect", Sequence: rig.SequenceInspect, Slots: []string{rig.MainSlot},
				TransitionIn: &TransitionSpec{Ticks: 6, Easing: "in_out_cubic"}, TransitionOut: &TransitionSpec{Ticks: 6, Easing: "in_out_cubic"},
				Cooldown: 60,
			},
			{
				ID: "flinch", Sequence: rig.SequenceFlinch, Slots: []string{rig.MainSlot},
				TransitionIn: &TransitionSpec{Ticks: 0}, AdditiveBase: rig.SequenceIdle,
			},
		},
	}
}

// Load reads a configuration file based on its extension, filling unset fields
// from DefaultConfig. Supports .yaml/.yml, .json and .toml.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	defaults := *cfg
	// Collections replace the defaults wholesale rather than merging into them.
	cfg.Skeleton = SkeletonSpec{}
	cfg.Montages = nil
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("config: unsupported extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if len(cfg.Skeleton.Joints) == 0 {
		cfg.Skeleton = defaults.Skeleton
	}
	if cfg.Montages == nil {
		cfg.Montages = defaults.Montages
	}
	return cfg, nil
}

// Save writes cfg in the format implied by the extension, YAML when unknown.
func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(cfg, "", "  ")
	case ".toml":
		data, err = toml.Marshal(cfg)
	default:
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Ticks <= 0 {
		return fmt.Errorf("%w: ticks must be positive, got %d", ErrInvalidConfig, c.Ticks)
	}
	if c.FramesPerTick <= 0 {
		return fmt.Errorf("%w: frames_per_tick must be positive, got %d", ErrInvalidConfig, c.FramesPerTick)
	}
	if _, err := c.frequency(); err != nil {
		return err
	}
	if c.IdleSequence == "" || c.WalkSequence == "" {
		return fmt.Errorf("%w: idle_sequence and walk_sequence are required", ErrInvalidConfig)
	}
	sk, err := c.skeleton()
	if err != nil {
		return err
	}
	for _, j := range c.Record {
		if !sk.ContainsJoint(j) {
			return fmt.Errorf("%w: record: unknown joint %s", ErrInvalidConfig, j)
		}
	}
	if _, err := c.InterruptTransition.Build(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Montages))
	for i := range c.Montages {
		m := &c.Montages[i]
		if seen[m.ID] {
			return fmt.Errorf("%w: duplicate montage %q", ErrInvalidConfig, m.ID)
		}
		seen[m.ID] = true
		if err := m.Validate(sk); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) frequency() (animator.Frequency, error) {
	switch c.Frequency {
	case "", animator.OncePerTick.String():
		return animator.OncePerTick, nil
	case animator.EveryFrame.String():
		return animator.EveryFrame, nil
	}
	return 0, fmt.Errorf("%w: unknown frequency %q", ErrInvalidConfig, c.Frequency)
}

func (c *Config) skeleton() (*pose.Skeleton, error) {
	sk, err := pose.NewSkeleton(c.Skeleton.Joints, c.Skeleton.Mirrors)
	if err != nil {
		return nil, fmt.Errorf("%w: skeleton: %w", ErrInvalidConfig, err)
	}
	if sk.Len() == 0 {
		return nil, fmt.Errorf("%w: skeleton has no joints", ErrInvalidConfig)
	}
	return sk, nil
}

// Library loads the configured sequences, or the built-in clips when no directory
// is set.
func (c *Config) Library() (*sequence.Library, error) {
	if c.SequencesDir == "" {
		return rig.DemoLibrary(), nil
	}
	return sequence.LoadDir(c.SequencesDir)
}

// RigSettings converts the configuration into rig settings. Call Validate first.
func (c *Config) RigSettings() (rig.Settings, error) {
	freq, err := c.frequency()
	if err != nil {
		return rig.Settings{}, err
	}
	sk, err := c.skeleton()
	if err != nil {
		return rig.Settings{}, err
	}
	interrupt, err := c.InterruptTransition.Build()
	if err != nil {
		return rig.Settings{}, err
	}
	montages := make([]*montage.Configuration, 0, len(c.Montages))
	for i := range c.Montages {
		m, err := c.Montages[i].Build()
		if err != nil {
			return rig.Settings{}, err
		}
		montages = append(montages, m)
	}
	return rig.Settings{
		IdleSequence:        c.IdleSequence,
		WalkSequence:        c.WalkSequence,
		Skeleton:            sk,
		Recoil:              c.Recoil.SpringConfig(),
		RecoilDecay:         c.Recoil.Decay,
		Frequency:           freq,
		Montages:            montages,
		InterruptTransition: interrupt,
	}, nil
}

func (c *Config) RunConfig() animator.RunConfig {
	return animator.RunConfig{Ticks: c.Ticks, FramesPerTick: c.FramesPerTick, Record: c.Record}
}

func (s SpringSpec) SpringConfig() driver.SpringConfig {
	return driver.SpringConfig{Stiffness: s.Stiffness, Damping: s.Damping, Mass: s.Mass}
}

func (t TransitionSpec) Build() (timing.Transition, error) {
	if t.Ticks < 0 {
		return timing.Transition{}, fmt.Errorf("%w: negative transition %v", ErrInvalidConfig, t.Ticks)
	}
	fn, ok := timing.Easing(t.Easing)
	if !ok {
		return timing.Transition{}, fmt.Errorf("%w: unknown easing %q", ErrInvalidConfig, t.Easing)
	}
	return timing.Of(timing.Ticks(t.Ticks), fn), nil
}

func (m *MontageSpec) Validate(sk *pose.Skeleton) error {
	if m.ID == "" || m.Sequence == "" {
		return fmt.Errorf("%w: montage needs id and sequence", ErrInvalidConfig)
	}
	if len(m.Slots) == 0 {
		return fmt.Errorf("%w: montage %s plays in no slot", ErrInvalidConfig, m.ID)
	}
	if m.PlayRate < 0 {
		return fmt.Errorf("%w: montage %s: negative play rate", ErrInvalidConfig, m.ID)
	}
	if m.Crossfade != nil && (*m.Crossfade < 0 || *m.Crossfade > 1) {
		return fmt.Errorf("%w: montage %s: crossfade must be in [0,1]", ErrInvalidConfig, m.ID)
	}
	for j, w := range m.BlendMask {
		if !sk.ContainsJoint(j) {
			return fmt.Errorf("%w: montage %s: blend mask joint %s not in skeleton", ErrInvalidConfig, m.ID, j)
		}
		if w < 0 || w > 1 {
			return fmt.Errorf("%w: montage %s: blend mask weight %v out of range", ErrInvalidConfig, m.ID, w)
		}
	}
	_, err := m.Build()
	return err
}

// Build turns the spec into an immutable montage configuration.
func (m *MontageSpec) Build() (*montage.Configuration, error) {
	opts := []montage.Option{
		montage.PlaysInSlots(m.Slots...),
		montage.WithStartOffset(timing.Ticks(m.StartOffset)),
		montage.WithCooldown(timing.Ticks(m.Cooldown)),
	}
	if m.PlayRate > 0 {
		opts = append(opts, montage.ConstantPlayRate(m.PlayRate))
	}
	if m.TransitionIn != nil {
		tr, err := m.TransitionIn.Build()
		if err != nil {
			return nil, fmt.Errorf("montage %s: transition_in: %w", m.ID, err)
		}
		opts = append(opts, montage.WithTransitionIn(tr))
	}
	if m.TransitionOut != nil {
		tr, err := m.TransitionOut.Build()
		if err != nil {
			return nil, fmt.Errorf("montage %s: transition_out: %w", m.ID, err)
		}
		opts = append(opts, montage.WithTransitionOut(tr))
	}
	if m.Crossfade != nil {
		opts = append(opts, montage.WithCrossfadeWeight(*m.Crossfade))
	}
	if len(m.BlendMask) > 0 {
		opts = append(opts, montage.WithBlendMask(pose.NewBlendMask(m.BlendMask)))
	}
	if m.AdditiveBase != "" {
		base := m.AdditiveBase
		opts = append(opts, montage.Additive(func(*driver.Container) string { return base }))
	}
	return montage.NewConfiguration(m.ID, m.Sequence, opts...), nil
}
