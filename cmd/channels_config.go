package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/navsim/navsim/sim/bridge"
	"github.com/navsim/navsim/sim/sensor"
)

// ChannelsConfigFile is the YAML shape of the channel table.
type ChannelsConfigFile struct {
	Channels []ChannelEntry `yaml:"channels"`
}

// ChannelEntry is one publish channel with its QoS policy.
type ChannelEntry struct {
	Name         string  `yaml:"name"`
	Schema       string  `yaml:"schema"`
	Sensor       string  `yaml:"sensor"`
	Frame        string  `yaml:"frame"`
	Reliability  string  `yaml:"reliability"` // reliable, best-effort
	Durability   string  `yaml:"durability"`  // volatile, transient
	HistoryDepth int     `yaml:"history_depth"`
	TargetRateHz float64 `yaml:"target_rate_hz"`
}

// LoadChannelSpecs reads the channel YAML at path. When path is empty
// the table is derived from the sensor suite (per-sensor channels plus
// the clock heartbeat and transform tree).
func LoadChannelSpecs(path string, specs []sensor.Spec) ([]bridge.ChannelSpec, error) {
	if path == "" {
		return bridge.DefaultChannels(specs), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open channel config: %w", err)
	}
	defer f.Close()

	var file ChannelsConfigFile
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse channel config %s: %w", path, err)
	}
	if len(file.Channels) == 0 {
		return nil, fmt.Errorf("channel config %s: no channels defined", path)
	}

	channels := make([]bridge.ChannelSpec, 0, len(file.Channels))
	for _, entry := range file.Channels {
		spec := bridge.ChannelSpec{
			Name:         entry.Name,
			Schema:       entry.Schema,
			Sensor:       entry.Sensor,
			Frame:        entry.Frame,
			Reliability:  bridge.Reliability(entry.Reliability),
			Durability:   bridge.Durability(entry.Durability),
			HistoryDepth: entry.HistoryDepth,
			TargetRateHz: entry.TargetRateHz,
		}
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("channel config %s: %w", path, err)
		}
		channels = append(channels, spec)
	}
	return channels, nil
}
