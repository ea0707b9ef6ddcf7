package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewCalibrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "calibrate",
		Short:   "Compute the calibration from the acquired samples",
		GroupID: gBasic,
		Long: `Compute the calibration from the acquired samples.

The result is kept in the daemon until the next compute overwrites it.
Use "handeye save" to persist it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := apiClient.ComputeCalibration()
			if err != nil {
				return fmt.Errorf("failed to compute calibration: %v", err)
			}

			logrus.Info("calibration computed")
			printResult(cmd, res)
			return nil
		},
	}
}

func NewSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "save",
		Short:   "Persist the last computed calibration",
		GroupID: gBasic,
		RunE: func(_ *cobra.Command, _ []string) error {
			ret, err := apiClient.SaveCalibration()
			if err != nil {
				return fmt.Errorf("failed to save calibration: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}
			return nil
		},
	}
}
