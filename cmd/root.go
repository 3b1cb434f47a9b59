package cmd

import (
	"errors"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/navsim/navsim/sim"
	"github.com/navsim/navsim/sim/bridge"
	"github.com/navsim/navsim/sim/scene"
	"github.com/navsim/navsim/sim/trace"
)

var (
	// CLI flags for the simulation run
	logLevel  string // Log verbosity level
	sceneID   string // Scene family to load at reset
	seed      int64  // Episode seed
	steps     int    // Number of physics steps to run
	transport string // Transport selection: none, loopback, ws
	listen    string // Listen address for the ws transport
	tracePath string // Episode trace output path ("" disables tracing)
	logEvery  int    // Log an observation summary every N steps

	// Configuration file paths (empty = built-in defaults)
	envConfigPath      string
	sensorsConfigPath  string
	channelsConfigPath string
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "navsim",
	Short: "Deterministic sensor-simulation environment with transport bridging",
}

// runCmd executes an initialize/reset/step-loop/close cycle using
// parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation environment",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		envCfg, err := LoadEnvConfig(envConfigPath)
		if err != nil {
			logrus.Fatalf("Could not load environment config: %v", err)
		}
		specs, err := LoadSensorSpecs(sensorsConfigPath)
		if err != nil {
			logrus.Fatalf("Could not load sensor config: %v", err)
		}
		channels, err := LoadChannelSpecs(channelsConfigPath, specs)
		if err != nil {
			logrus.Fatalf("Could not load channel config: %v", err)
		}

		tr, err := buildTransport()
		if err != nil {
			logrus.Fatalf("Could not build transport: %v", err)
		}

		var opts []sim.Option
		var episodeTrace *trace.EpisodeTrace
		if tracePath != "" {
			episodeTrace, err = trace.Open(tracePath)
			if err != nil {
				logrus.Fatalf("Could not open trace file: %v", err)
			}
			defer episodeTrace.Close()
			opts = append(opts, sim.WithTrace(episodeTrace))
		}

		env, err := sim.New(envCfg, specs, channels, scene.NewCatalog(), tr, opts...)
		if err != nil {
			logrus.Fatalf("Could not construct environment: %v", err)
		}
		if err := env.Initialize(); err != nil {
			logrus.Fatalf("Could not initialize environment: %v", err)
		}

		startTime := time.Now()

		if _, err := env.Reset(sceneID, seed); err != nil {
			var sl *sim.SceneLoadError
			if errors.As(err, &sl) {
				logrus.Fatalf("Scene load failed: %v", err)
			}
			logrus.Fatalf("Reset failed: %v", err)
		}

		for i := 1; i <= steps; i++ {
			snap, err := env.Step()
			if err != nil {
				logrus.Fatalf("Step %d failed: %v", i, err)
			}
			if logEvery > 0 && i%logEvery == 0 {
				valid := 0
				for _, s := range snap.Samples {
					if s.Valid {
						valid++
					}
				}
				logrus.Infof("[t=%07.3f] step %d: %d/%d sensors valid, complete=%v",
					snap.Time, i, valid, len(snap.Samples), snap.Complete)
			}
		}

		metrics := env.Metrics()
		if err := env.Close(); err != nil {
			logrus.Warnf("Close reported: %v", err)
		}
		metrics.Print()
		logrus.Infof("Run complete in %v (%d steps).", time.Since(startTime), steps)

		if episodeTrace != nil {
			summary := episodeTrace.Summarize()
			for name, ratio := range summary.ValidRatio {
				logrus.Infof("sensor %s: valid in %.1f%% of steps", name, 100*ratio)
			}
		}
	},
}

// buildTransport maps the --transport flag to a bridge transport.
// "none" deliberately exercises the degrade-to-no-op path: observations
// are still assembled and returned, nothing is published.
func buildTransport() (bridge.Transport, error) {
	switch transport {
	case "none":
		return nil, nil
	case "loopback":
		return bridge.NewLoopback(), nil
	case "ws":
		return bridge.NewWebSocketTransport(listen), nil
	default:
		return nil, errors.New("transport must be one of: none, loopback, ws")
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&sceneID, "scene", "office", "Scene family to load (office, warehouse, corridor)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Episode seed")
	runCmd.Flags().IntVar(&steps, "steps", 100, "Number of physics steps to run")
	runCmd.Flags().StringVar(&transport, "transport", "none", "Transport middleware (none, loopback, ws)")
	runCmd.Flags().StringVar(&listen, "listen", ":8765", "Listen address for the ws transport")
	runCmd.Flags().StringVar(&tracePath, "trace", "", "Episode trace output path (JSONL, empty disables)")
	runCmd.Flags().IntVar(&logEvery, "log-every", 20, "Log an observation summary every N steps (0 disables)")

	runCmd.Flags().StringVar(&envConfigPath, "env-config", "", "Environment YAML path (empty = built-in defaults)")
	runCmd.Flags().StringVar(&sensorsConfigPath, "sensors-config", "", "Sensor YAML path (empty = built-in defaults)")
	runCmd.Flags().StringVar(&channelsConfigPath, "channels-config", "", "Channel YAML path (empty = derived from sensors)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
