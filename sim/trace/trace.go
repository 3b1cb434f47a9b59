// Package trace records per-episode metadata and per-step observation
// validity as JSONL, plus aggregate summaries. Tracing is opt-in and
// costs nothing when disabled.
package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/navsim/navsim/sim/sensor"
)

// EpisodeTrace appends episode and step records to a JSONL file through
// a buffered writer. Not safe for concurrent use; the environment writes
// from its single stepping goroutine.
type EpisodeTrace struct {
	f   *os.File
	w   *bufio.Writer
	enc *json.Encoder

	episodeID string
	steps     []StepRecord
}

// Open creates (or truncates) the trace file at path.
func Open(path string) (*EpisodeTrace, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	w := bufio.NewWriter(f)
	return &EpisodeTrace{f: f, w: w, enc: json.NewEncoder(w)}, nil
}

// BeginEpisode writes the episode header and starts a new step sequence.
// The episode id is a fresh UUID: wall-clock session identity lives only
// here, never in observation snapshots.
func (t *EpisodeTrace) BeginEpisode(sceneID string, seed int64) error {
	t.episodeID = uuid.NewString()
	t.steps = t.steps[:0]
	return t.enc.Encode(EpisodeRecord{
		Type:      "episode",
		EpisodeID: t.episodeID,
		StartedAt: time.Now().UTC(),
		SceneID:   sceneID,
		Seed:      seed,
	})
}

// RecordStep appends one step record derived from the snapshot.
func (t *EpisodeTrace) RecordStep(snap sensor.Snapshot) error {
	valid := make(map[string]bool, len(snap.Samples))
	for name, sample := range snap.Samples {
		valid[name] = sample.Valid
	}
	rec := StepRecord{
		Type:      "step",
		EpisodeID: t.episodeID,
		Time:      snap.Time,
		Complete:  snap.Complete,
		Valid:     valid,
	}
	t.steps = append(t.steps, rec)
	return t.enc.Encode(rec)
}

// Flush forces buffered records to disk.
func (t *EpisodeTrace) Flush() error {
	return t.w.Flush()
}

// Close flushes and closes the trace file.
func (t *EpisodeTrace) Close() error {
	if err := t.w.Flush(); err != nil {
		return err
	}
	return t.f.Close()
}

// Summarize aggregates the current episode's step records.
func (t *EpisodeTrace) Summarize() Summary {
	return Summarize(t.steps)
}
