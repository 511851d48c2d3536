package config

import "sort"

// Presets are named recoil spring tunings.
var Presets = map[string]SpringSpec{
	"snappy":   {Stiffness: 0.3, Damping: 0.45, Mass: 1, Decay: DefaultRecoilDecay},
	"soft":     {Stiffness: 0.12, Damping: 0.2, Mass: 1, Decay: 0.7},
	"heavy":    {Stiffness: 0.25, Damping: 0.5, Mass: 2.5, Decay: 0.6},
	"wobbly":   {Stiffness: 0.4, Damping: 0.08, Mass: 1, Decay: 0.4},
	"critical": {Stiffness: 0.25, Damping: 1, Mass: 1, Decay: DefaultRecoilDecay},
}

func GetPreset(name string) *SpringSpec {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return &p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
