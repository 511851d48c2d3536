package sequence

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"github.com/san-kum/posegraph/internal/interp"
	"github.com/san-kum/posegraph/internal/timing"
)

// MinFormatVersion is the oldest sequence file layout the loader accepts.
const MinFormatVersion = 4

var logger = zerolog.Nop()

// SetLogger installs the logger used while loading sequence files.
func SetLogger(l zerolog.Logger) { logger = l }

type sequenceFile struct {
	FormatVersion any                  `json:"format_version"`
	Length        float64              `json:"length"`
	Joints        map[string]jointFile `json:"joints"`
	TimeMarkers   map[string][]float64 `json:"time_markers"`
}

type jointFile struct {
	Translation map[string][3]float64 `json:"translation"`
	Rotation    map[string][3]float64 `json:"rotation"`
	Scale       map[string][3]float64 `json:"scale"`
	Visibility  map[string]bool       `json:"visibility"`
}

// Decode parses one sequence document. It reports ok=false without an error when the
// document uses a format older than MinFormatVersion.
func Decode(r io.Reader) (seq *Sequence, version float64, ok bool, err error) {
	var f sequenceFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, 0, false, fmt.Errorf("sequence: decode: %w", err)
	}

	version = 1
	if f.FormatVersion != nil {
		version, err = cast.ToFloat64E(f.FormatVersion)
		if err != nil {
			return nil, 0, false, fmt.Errorf("sequence: format_version: %w", err)
		}
	}
	if version < MinFormatVersion {
		return nil, version, false, nil
	}

	b := NewBuilder(timing.Seconds(f.Length))
	for joint, jf := range f.Joints {
		translation, err := timelineOf(jf.Translation, interp.Vec3, f.Length, vec3Of)
		if err != nil {
			return nil, version, false, fmt.Errorf("sequence: joint %s translation: %w", joint, err)
		}
		rotation, err := timelineOf(jf.Rotation, interp.Quat, f.Length, eulerDegrees)
		if err != nil {
			return nil, version, false, fmt.Errorf("sequence: joint %s rotation: %w", joint, err)
		}
		scale, err := timelineOf(jf.Scale, interp.Vec3, f.Length, vec3Of)
		if err != nil {
			return nil, version, false, fmt.Errorf("sequence: joint %s scale: %w", joint, err)
		}
		visibility, err := timelineOf(jf.Visibility, interp.BoolKeyframe, f.Length, func(v bool) bool { return v })
		if err != nil {
			return nil, version, false, fmt.Errorf("sequence: joint %s visibility: %w", joint, err)
		}
		b.Translation(joint, translation).Rotation(joint, rotation).Scale(joint, scale).Visibility(joint, visibility)
	}
	for id, times := range f.TimeMarkers {
		for _, at := range times {
			b.TimeMarker(id, timing.Seconds(at))
		}
	}
	return b.Build(), version, true, nil
}

func timelineOf[V, T any](keys map[string]V, ip interp.Interpolator[T], length float64, conv func(V) T) (*Timeline[T], error) {
	tl := NewTimeline(ip, length)
	for k, v := range keys {
		at, err := cast.ToFloat64E(k)
		if err != nil {
			return nil, fmt.Errorf("keyframe %q: %w", k, err)
		}
		tl.AddKeyframe(at, conv(v))
	}
	return tl, nil
}

func vec3Of(v [3]float64) mgl64.Vec3 { return mgl64.Vec3(v) }

// eulerDegrees converts x, y, z degrees into a quaternion applied Z then Y then X.
func eulerDegrees(v [3]float64) mgl64.Quat {
	return mgl64.AnglesToQuat(
		mgl64.DegToRad(v[2]),
		mgl64.DegToRad(v[1]),
		mgl64.DegToRad(v[0]),
		mgl64.ZYX,
	)
}

// LoadFile reads a single sequence file.
func LoadFile(path string) (*Sequence, float64, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, false, fmt.Errorf("sequence: open: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// LoadDir loads every .json file under dir into a new library. Identifiers are the
// slash-separated paths relative to dir without extension.
func LoadDir(dir string) (*Library, error) {
	lib := NewLibrary()
	var found int
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		found++
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		id := strings.TrimSuffix(filepath.ToSlash(rel), ".json")

		seq, version, ok, err := LoadFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
		if !ok {
			logger.Warn().Str("sequence", id).Float64("format_version", version).
				Int("required", MinFormatVersion).Msg("skipping outdated sequence format")
			return nil
		}
		lib.Put(id, seq)
		logger.Debug().Str("sequence", id).Str("length", seq.Length().String()).Msg("loaded sequence")
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info().Int("files", found).Int("loaded", lib.Len()).Str("dir", dir).Msg("sequences loaded")
	return lib, nil
}
