package trace

import "time"

// EpisodeRecord is the JSONL header row written once per reset.
type EpisodeRecord struct {
	Type      string    `json:"type"` // "episode"
	EpisodeID string    `json:"episode_id"`
	StartedAt time.Time `json:"started_at"` // wall clock, session identity only
	SceneID   string    `json:"scene_id"`
	Seed      int64     `json:"seed"`
}

// StepRecord is one JSONL row per step: simulation time and per-sensor
// validity at that step.
type StepRecord struct {
	Type      string          `json:"type"` // "step"
	EpisodeID string          `json:"episode_id"`
	Time      float64         `json:"time"`
	Complete  bool            `json:"complete"`
	Valid     map[string]bool `json:"valid"`
}
