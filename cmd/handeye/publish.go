package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/robogrid/handeye/pkg/geometry"
)

// NewPublishCommand pushes a single transform observation into the daemon.
// Robot and tracker drivers normally do this through the HTTP API directly;
// the command exists for scripting and for exercising the daemon by hand.
func NewPublishCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "publish [parent] [child] [x] [y] [z] [qx] [qy] [qz] [qw]",
		Short:   "Publish one transform observation to the daemon",
		GroupID: gAdvanced,
		Args:    cobra.ExactArgs(9),
		RunE: func(_ *cobra.Command, args []string) error {
			vals := make([]float64, 7)
			for i, arg := range args[2:] {
				v, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("invalid number %q: %v", arg, err)
				}
				vals[i] = v
			}

			tf := geometry.RigidTransform{
				Translation: geometry.Vec3{X: vals[0], Y: vals[1], Z: vals[2]},
				Rotation:    geometry.Quaternion{X: vals[3], Y: vals[4], Z: vals[5], W: vals[6]},
			}

			ret, err := apiClient.SendTransform(args[0], args[1], time.Time{}, tf)
			if err != nil {
				return fmt.Errorf("failed to publish transform: %v", err)
			}

			if ret != "" {
				logrus.Debugf("daemon responded: %s", ret)
			}
			logrus.Infof("published %s -> %s", args[0], args[1])
			return nil
		},
	}
}
