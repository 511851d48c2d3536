// Package scenario scripts rig input over time: montage triggers, slot interrupts
// and locomotion changes keyed to ticks.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/posegraph/internal/animator"
	"github.com/san-kum/posegraph/internal/rig"
)

var ErrInvalidScenario = errors.New("scenario: invalid scenario")

var logger = zerolog.Nop()

func SetLogger(l zerolog.Logger) { logger = l }

type Scenario struct {
	Name        string `yaml:"name" toml:"name"`
	Description string `yaml:"description" toml:"description"`
	// Ticks is the suggested run length; zero derives it from the steps.
	Ticks int64  `yaml:"ticks" toml:"ticks"`
	Steps []Step `yaml:"steps" toml:"steps"`
}

// Step applies at tick At and, when Every is positive, again every Every ticks.
// Speed and Mirrored persist until a later step changes them; the other fields
// only affect the ticks the step fires on.
type Step struct {
	At        int64    `yaml:"at" toml:"at"`
	Every     int64    `yaml:"every,omitempty" toml:"every,omitempty"`
	Play      []string `yaml:"play,omitempty" toml:"play,omitempty"`
	Interrupt []string `yaml:"interrupt,omitempty" toml:"interrupt,omitempty"`
	Speed     *float64 `yaml:"speed,omitempty" toml:"speed,omitempty"`
	Mirrored  *bool    `yaml:"mirrored,omitempty" toml:"mirrored,omitempty"`
	Recoil    float64  `yaml:"recoil,omitempty" toml:"recoil,omitempty"`
}

func (s Step) firesAt(tick int64) bool {
	if tick < s.At {
		return false
	}
	if s.Every <= 0 {
		return tick == s.At
	}
	return (tick-s.At)%s.Every == 0
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &sc)
	case ".toml":
		err = toml.Unmarshal(data, &sc)
	default:
		return nil, fmt.Errorf("scenario: unsupported extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("scenario: parse %s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks the steps and orders them by tick.
func (s *Scenario) Validate() error {
	if s.Ticks < 0 {
		return fmt.Errorf("%w: negative ticks", ErrInvalidScenario)
	}
	for i, st := range s.Steps {
		if st.At < 0 || st.Every < 0 {
			return fmt.Errorf("%w: step %d: negative tick", ErrInvalidScenario, i+1)
		}
		if st.Speed != nil && (*st.Speed < 0 || *st.Speed > 1) {
			return fmt.Errorf("%w: step %d: speed must be in [0,1]", ErrInvalidScenario, i+1)
		}
	}
	sort.SliceStable(s.Steps, func(i, j int) bool { return s.Steps[i].At < s.Steps[j].At })
	return nil
}

// Duration is the number of ticks a run of the scenario should cover.
func (s *Scenario) Duration() int64 {
	if s.Ticks > 0 {
		return s.Ticks
	}
	var last int64
	for _, st := range s.Steps {
		if st.At > last {
			last = st.At
		}
	}
	return last + 1
}

// CheckMontages reports the first montage the scenario plays that r does not know.
func (s *Scenario) CheckMontages(r *rig.Rig) error {
	for i, st := range s.Steps {
		for _, id := range st.Play {
			if _, ok := r.Montage(id); !ok {
				return fmt.Errorf("%w: step %d: unknown montage %s", ErrInvalidScenario, i+1, id)
			}
		}
	}
	return nil
}

// InputAt computes the rig input for a tick. It depends only on the tick, so the
// same scenario can feed several instances at once.
func (s *Scenario) InputAt(tick int64) rig.Input {
	var in rig.Input
	for _, st := range s.Steps {
		if st.At > tick {
			break
		}
		if st.Speed != nil {
			in.Speed = *st.Speed
		}
		if st.Mirrored != nil {
			in.Mirrored = *st.Mirrored
		}
		if !st.firesAt(tick) {
			continue
		}
		in.Play = append(in.Play, st.Play...)
		in.Interrupt = append(in.Interrupt, st.Interrupt...)
		in.Recoil += st.Recoil
		if len(st.Play) > 0 || len(st.Interrupt) > 0 {
			logger.Debug().Int64("tick", tick).Strs("play", st.Play).Strs("interrupt", st.Interrupt).Msg("scenario step")
		}
	}
	return in
}

func (s *Scenario) Input() animator.InputFunc[rig.Input] {
	return s.InputAt
}

// Idle is a scenario that never changes the input.
func Idle() *Scenario {
	return &Scenario{Name: "idle"}
}

// Demo walks, fires a few attacks with recoil, inspects and gets interrupted.
func Demo() *Scenario {
	walk, stop := 0.8, 0.0
	mirror := true
	return &Scenario{
		Name:        "demo",
		Description: "walk, attack, inspect and flinch with the arms rig",
		Ticks:       200,
		Steps: []Step{
			{At: 10, Speed: &walk},
			{At: 20, Every: 20, Play: []string{"attack"}, Recoil: 0.08},
			{At: 90, Speed: &stop},
			{At: 100, Play: []string{"inspect"}},
			{At: 130, Play: []string{"flinch"}},
			{At: 140, Interrupt: []string{rig.MainSlot}},
			{At: 160, Mirrored: &mirror, Play: []string{"attack"}},
		},
	}
}
