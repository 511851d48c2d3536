package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/san-kum/posegraph/internal/animator"
	"github.com/san-kum/posegraph/internal/pose"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

var ErrUnknownRun = errors.New("storage: unknown run")

// channelColumns are the per-joint CSV columns, in order.
var channelColumns = []string{"tx", "ty", "tz", "qw", "qx", "qy", "qz", "sx", "sy", "sz", "visible"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Scenario      string             `json:"scenario"`
	Timestamp     time.Time          `json:"timestamp"`
	Ticks         int                `json:"ticks"`
	FramesPerTick int                `json:"frames_per_tick"`
	Frames        int                `json:"frames"`
	Frequency     string             `json:"frequency"`
	Joints        []string           `json:"joints"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Save writes the run's metadata and samples under a fresh run ID. Fields of meta
// derived from the result are filled in.
func (s *Store) Save(meta RunMetadata, result *animator.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", sanitize(meta.Name), uuid.NewString())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Ticks = result.Ticks
	meta.Frames = result.Frames
	meta.Joints = result.Joints
	meta.Metrics = result.Metrics

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, samplesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := writeSamples(w, result); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

func writeSamples(w *csv.Writer, result *animator.Result) error {
	header := []string{"tick", "partial", "stack_depth"}
	for _, j := range result.Joints {
		for _, c := range channelColumns {
			header = append(header, j+"."+c)
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, sample := range result.Samples {
		row := []string{
			strconv.FormatInt(sample.Tick, 10),
			strconv.FormatFloat(sample.PartialTicks, 'f', 6, 64),
			strconv.Itoa(sample.StackDepth),
		}
		for _, j := range result.Joints {
			ch := sample.Channels[j]
			for _, v := range []float64{
				ch.Translation.X(), ch.Translation.Y(), ch.Translation.Z(),
				ch.Rotation.W, ch.Rotation.X(), ch.Rotation.Y(), ch.Rotation.Z(),
				ch.Scale.X(), ch.Scale.Y(), ch.Scale.Z(),
			} {
				row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
			}
			row = append(row, strconv.FormatBool(ch.Visible))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// List returns stored runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRun, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadSamples reads back the per-frame samples of a run.
func (s *Store) LoadSamples(runID string) ([]animator.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRun, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []animator.Sample{}, nil
	}

	joints, err := jointsFromHeader(records[0])
	if err != nil {
		return nil, err
	}

	samples := make([]animator.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		sample, err := parseSample(record, joints)
		if err != nil {
			return nil, fmt.Errorf("storage: %s row %d: %w", samplesFile, i+2, err)
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

func jointsFromHeader(header []string) ([]string, error) {
	if len(header) < 3 || (len(header)-3)%len(channelColumns) != 0 {
		return nil, fmt.Errorf("storage: malformed header with %d columns", len(header))
	}
	joints := make([]string, 0, (len(header)-3)/len(channelColumns))
	for i := 3; i < len(header); i += len(channelColumns) {
		joints = append(joints, strings.TrimSuffix(header[i], "."+channelColumns[0]))
	}
	return joints, nil
}

func parseSample(record []string, joints []string) (animator.Sample, error) {
	var sample animator.Sample
	var err error
	if sample.Tick, err = cast.ToInt64E(record[0]); err != nil {
		return sample, err
	}
	if sample.PartialTicks, err = cast.ToFloat64E(record[1]); err != nil {
		return sample, err
	}
	if sample.StackDepth, err = cast.ToIntE(record[2]); err != nil {
		return sample, err
	}

	sample.Channels = make(map[string]pose.JointChannel, len(joints))
	for ji, j := range joints {
		cols := record[3+ji*len(channelColumns) : 3+(ji+1)*len(channelColumns)]
		v := make([]float64, 10)
		for k := range v {
			if v[k], err = cast.ToFloat64E(cols[k]); err != nil {
				return sample, fmt.Errorf("%s.%s: %w", j, channelColumns[k], err)
			}
		}
		visible, err := cast.ToBoolE(cols[10])
		if err != nil {
			return sample, fmt.Errorf("%s.visible: %w", j, err)
		}
		sample.Channels[j] = pose.JointChannel{
			Translation: mgl64.Vec3{v[0], v[1], v[2]},
			Rotation:    mgl64.Quat{W: v[3], V: mgl64.Vec3{v[4], v[5], v[6]}},
			Scale:       mgl64.Vec3{v[7], v[8], v[9]},
			Visible:     visible,
		}
	}
	return sample, nil
}

func sanitize(name string) string {
	if name == "" {
		return "run"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
