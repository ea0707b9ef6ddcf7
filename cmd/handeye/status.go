package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/robogrid/handeye/pkg/calibration"
	"github.com/robogrid/handeye/pkg/client"
	"github.com/robogrid/handeye/pkg/config"
)

type statusData struct {
	samples     *calibration.Snapshot
	calibration *calibration.Result
	config      *config.RawFileConfig
}

// fetchStatusData gathers all data required for the status command from the daemon.
func fetchStatusData() (*statusData, error) {
	samples, err := apiClient.GetSamples()
	if err != nil {
		return nil, fmt.Errorf("failed to get samples: %w", err)
	}

	// Not having computed yet is a normal state, not a status failure.
	res, err := apiClient.GetCalibration()
	if err != nil && !errors.Is(err, client.ErrNotFound) {
		return nil, fmt.Errorf("failed to get calibration: %w", err)
	}

	conf, err := apiClient.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	return &statusData{
		samples:     samples,
		calibration: res,
		config:      conf,
	}, nil
}

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of handeye",
		Long:    `Get sample count, last calibration, and configuration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := fetchStatusData()
			if err != nil {
				return err
			}

			conf := config.NewFileFromConfig(data.config, "")

			cmd.Println(bold("Sampling status:"))
			cmd.Printf("  Samples: %s\n", bold("%d", data.samples.Len()))
			if missing := conf.MinSamples() - data.samples.Len(); missing > 0 {
				cmd.Printf("    %d more needed before a calibration can be computed.\n", missing)
			} else {
				cmd.Println("    Enough to compute a calibration.")
			}

			cmd.Println()

			cmd.Println(bold("Calibration:"))
			if data.calibration == nil {
				cmd.Println("  Computed: " + bool2Text(false))
			} else {
				cmd.Println("  Computed: " + bool2Text(true))
				printResult(cmd, data.calibration)
			}

			cmd.Println()

			cmd.Println(bold("Configuration:"))
			if conf.EyeOnHand() {
				cmd.Printf("  Mounting: %s\n", bold("eye-on-hand (sensor rides the hand)"))
			} else {
				cmd.Printf("  Mounting: %s\n", bold("eye-on-base (sensor fixed in the workspace)"))
			}
			cmd.Printf("  Robot chain: %s -> %s\n", bold(conf.BaseLinkFrame()), bold(conf.ToolFrame()))
			cmd.Printf("  Optical chain: %s -> %s\n", bold(conf.OpticalOriginFrame()), bold(conf.OpticalTargetFrame()))
			cmd.Printf("  Minimum samples: %s\n", bold("%d", conf.MinSamples()))
			cmd.Printf("  Calibration file: %s\n", bold(conf.CalibrationPath()))
			cmd.Printf("  Allow non-root users to access the daemon: %s\n", bool2Text(conf.AllowNonRootAccess()))
			return nil
		},
	}
}

func printResult(cmd *cobra.Command, res *calibration.Result) {
	mounting := "eye-on-base"
	if res.EyeOnHand {
		mounting = "eye-on-hand"
	}
	cmd.Printf("  Mounting: %s\n", bold(mounting))
	cmd.Printf("  Frames: %s -> %s\n", bold(res.BaseFrame), bold(res.ToolFrame))
	cmd.Printf("  Transform: %s\n", bold(formatTransform(res.Transform)))
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
