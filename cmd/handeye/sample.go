package main

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/robogrid/handeye/pkg/calibration"
	"github.com/robogrid/handeye/pkg/geometry"
)

func NewSampleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sample",
		Short:   "Manage calibration samples",
		GroupID: gBasic,
		Long: `Manage calibration samples.

A sample is one synchronized pair of poses: where the robot hand is
relative to the robot base, and where the tracked target is relative to
the optical sensor. Move the robot to a new posture between samples;
repeated postures do not add information.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "take",
			Short: "Take one synchronized sample",
			RunE: func(cmd *cobra.Command, _ []string) error {
				snap, err := apiClient.TakeSample()
				if err != nil {
					return fmt.Errorf("failed to take sample: %v", err)
				}

				logrus.Infof("sample %d acquired", snap.Len()-1)
				printSnapshot(cmd, snap)
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove [index]",
			Short: "Remove the sample at index",
			RunE: func(cmd *cobra.Command, args []string) error {
				index, err := parseIntArg(args, "index")
				if err != nil {
					return err
				}

				snap, err := apiClient.RemoveSample(index)
				if err != nil {
					return fmt.Errorf("failed to remove sample: %v", err)
				}

				logrus.Infof("sample %d removed, %d remaining", index, snap.Len())
				printSnapshot(cmd, snap)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List acquired samples",
			RunE: func(cmd *cobra.Command, _ []string) error {
				snap, err := apiClient.GetSamples()
				if err != nil {
					return fmt.Errorf("failed to list samples: %v", err)
				}

				printSnapshot(cmd, snap)
				return nil
			},
		},
	)

	return cmd
}

func parseIntArg(args []string, valueName string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("invalid number of arguments")
	}

	value, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", valueName, err)
	}

	return value, nil
}

func printSnapshot(cmd *cobra.Command, snap *calibration.Snapshot) {
	if snap.Len() == 0 {
		cmd.Println("no samples")
		return
	}

	for i := 0; i < snap.Len(); i++ {
		cmd.Printf("sample %d:\n", i)
		cmd.Printf("  robot:   %s\n", formatTransform(snap.Robot[i]))
		cmd.Printf("  optical: %s\n", formatTransform(snap.Optical[i]))
	}
}

func formatTransform(tf geometry.RigidTransform) string {
	return fmt.Sprintf("t=(%.4f, %.4f, %.4f) q=(%.4f, %.4f, %.4f, %.4f)",
		tf.Translation.X, tf.Translation.Y, tf.Translation.Z,
		tf.Rotation.X, tf.Rotation.Y, tf.Rotation.Z, tf.Rotation.W)
}
