package trace

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navsim/navsim/sim/sensor"
)

func stepSnap(t float64, complete bool, valid map[string]bool) sensor.Snapshot {
	samples := make(map[string]sensor.Sample, len(valid))
	for name, v := range valid {
		samples[name] = sensor.Sample{Time: t, Valid: v, Kind: sensor.KindPoseVelocity}
	}
	return sensor.Snapshot{Time: t, Complete: complete, Samples: samples}
}

func TestTrace_WritesEpisodeAndStepRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	tr, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, tr.BeginEpisode("office", 42))
	require.NoError(t, tr.RecordStep(stepSnap(0.01, false, map[string]bool{"odom": false})))
	require.NoError(t, tr.RecordStep(stepSnap(0.05, true, map[string]bool{"odom": true})))
	require.NoError(t, tr.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)

	require.True(t, scanner.Scan())
	var ep EpisodeRecord
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &ep))
	assert.Equal(t, "episode", ep.Type)
	assert.Equal(t, "office", ep.SceneID)
	assert.Equal(t, int64(42), ep.Seed)
	assert.NotEmpty(t, ep.EpisodeID)
	assert.False(t, ep.StartedAt.IsZero())

	require.True(t, scanner.Scan())
	var step StepRecord
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &step))
	assert.Equal(t, "step", step.Type)
	assert.Equal(t, ep.EpisodeID, step.EpisodeID, "steps carry their episode's id")
	assert.Equal(t, 0.01, step.Time)
	assert.False(t, step.Complete)
	assert.Equal(t, map[string]bool{"odom": false}, step.Valid)

	require.True(t, scanner.Scan())
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &step))
	assert.True(t, step.Complete)

	assert.False(t, scanner.Scan(), "exactly one header and two step rows")
}

func TestTrace_NewEpisodeGetsFreshID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	tr, err := Open(path)
	require.NoError(t, err)
	defer tr.Close()

	require.NoError(t, tr.BeginEpisode("office", 1))
	require.NoError(t, tr.RecordStep(stepSnap(0.01, false, nil)))
	first := tr.Summarize()
	require.Equal(t, 1, first.Steps)

	// A reset starts a new episode: new id, step aggregation restarts.
	require.NoError(t, tr.BeginEpisode("office", 2))
	assert.Equal(t, 0, tr.Summarize().Steps)
}

func TestSummarize(t *testing.T) {
	steps := []StepRecord{
		{Time: 0.01, Complete: false, Valid: map[string]bool{"odom": false, "imu": false}},
		{Time: 0.05, Complete: false, Valid: map[string]bool{"odom": true, "imu": false}},
		{Time: 0.10, Complete: true, Valid: map[string]bool{"odom": true, "imu": true}},
		{Time: 0.15, Complete: true, Valid: map[string]bool{"odom": true, "imu": true}},
	}
	s := Summarize(steps)
	assert.Equal(t, 4, s.Steps)
	assert.Equal(t, 2, s.CompleteSteps)
	assert.Equal(t, 0.10, s.FirstCompleteT)
	assert.Equal(t, 0.75, s.ValidRatio["odom"])
	assert.Equal(t, 0.5, s.ValidRatio["imu"])
}

func TestSummarize_NeverValidSensorAppearsAtZero(t *testing.T) {
	steps := []StepRecord{
		{Time: 0.05, Valid: map[string]bool{"odom": true, "stuck": false}},
		{Time: 0.10, Valid: map[string]bool{"odom": true, "stuck": false}},
	}
	s := Summarize(steps)
	require.Contains(t, s.ValidRatio, "stuck")
	assert.Equal(t, 0.0, s.ValidRatio["stuck"])
	assert.Equal(t, -1.0, s.FirstCompleteT)
}

func TestSummarize_EmptyInput(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Steps)
	assert.Equal(t, -1.0, s.FirstCompleteT)
	assert.Empty(t, s.ValidRatio)
}
