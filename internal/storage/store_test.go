package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/posegraph/internal/animator"
	"github.com/san-kum/posegraph/internal/pose"
)

func testResult() *animator.Result {
	swung := pose.JointChannel{
		Translation: mgl64.Vec3{0.35, -0.4, -0.5},
		Rotation:    mgl64.QuatRotate(0.5, mgl64.Vec3{0, 1, 0}),
		Scale:       mgl64.Vec3{1, 1, 1},
		Visible:     true,
	}
	hidden := pose.IdentityChannel()
	hidden.Visible = false
	return &animator.Result{
		Ticks:  1,
		Frames: 2,
		Joints: []string{"right_arm", "left_item"},
		Samples: []animator.Sample{
			{Tick: 0, PartialTicks: 0, StackDepth: 0, Channels: map[string]pose.JointChannel{
				"right_arm": pose.IdentityChannel(), "left_item": hidden,
			}},
			{Tick: 0, PartialTicks: 0.5, StackDepth: 1, Channels: map[string]pose.JointChannel{
				"right_arm": swung, "left_item": hidden,
			}},
		},
		Metrics: map[string]float64{"peak_stack_depth": 1},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runID, err := st.Save(RunMetadata{Name: "arms demo", Frequency: "once_per_tick", FramesPerTick: 2}, testResult())
	require.NoError(t, err)
	assert.NotEmpty(t, runID)
	assert.NotContains(t, runID, " ")

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "arms demo", meta.Name)
	assert.Equal(t, 2, meta.Frames)
	assert.Equal(t, []string{"right_arm", "left_item"}, meta.Joints)
	assert.InDelta(t, 1.0, meta.Metrics["peak_stack_depth"], 1e-12)

	samples, err := st.LoadSamples(runID)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.InDelta(t, 0.5, samples[1].PartialTicks, 1e-9)
	assert.Equal(t, 1, samples[1].StackDepth)

	want := testResult().Samples[1].Channels["right_arm"]
	got := samples[1].Channels["right_arm"]
	assert.True(t, got.ApproxEqual(want, 1e-5), "expected %+v, got %+v", want, got)
	assert.False(t, samples[1].Channels["left_item"].Visible)
}

func TestStoreList(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "runs"))

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	require.NoError(t, st.Init())
	_, err = st.Save(RunMetadata{Name: "a"}, testResult())
	require.NoError(t, err)
	_, err = st.Save(RunMetadata{Name: "b"}, testResult())
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(st.Dir(), "stray"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())

	runID, err := st.Save(RunMetadata{Name: "files"}, testResult())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, runID, "metadata.json"))
	assert.FileExists(t, filepath.Join(dir, runID, "samples.csv"))
}

func TestUnknownRun(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Load("missing")
	assert.ErrorIs(t, err, ErrUnknownRun)
	_, err = st.LoadSamples("missing")
	assert.ErrorIs(t, err, ErrUnknownRun)
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, RunMetadata{Name: "x", FramesPerTick: 2}, testResult()))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, "x", data.Name)
	require.Len(t, data.Frames, 2)
	assert.Equal(t, [3]float64{0.35, -0.4, -0.5}, data.Frames[1].Joints["right_arm"].Translation)
	assert.InDelta(t, 1.0, data.Frames[0].Joints["right_arm"].Rotation[0], 1e-12)
}
