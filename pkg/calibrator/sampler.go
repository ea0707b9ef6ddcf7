package calibrator

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/robogrid/handeye/pkg/calibration"
	"github.com/robogrid/handeye/pkg/config"
	"github.com/robogrid/handeye/pkg/frames"
)

// Wait budgets for the two chains. The robot chain is published by the
// robot driver and comes up fast; external trackers take much longer to
// initialize, hence the larger startup budget.
const (
	robotChainStartupTimeout   = 10 * time.Second
	opticalChainStartupTimeout = 60 * time.Second
	sampleWaitTimeout          = 10 * time.Second
)

// PoseSampler acquires one synchronized pair of transforms from the robot
// chain (base->tool) and the optical chain (tracker origin->target). Both
// lookups target the same instant; sampling the chains at different times
// would silently fold robot motion into the calibration.
type PoseSampler struct {
	provider PoseProvider
	robot    frames.Pair
	optical  frames.Pair
}

func NewPoseSampler(provider PoseProvider, conf config.Config) *PoseSampler {
	return &PoseSampler{
		provider: provider,
		robot:    frames.Pair{Parent: conf.BaseLinkFrame(), Child: conf.ToolFrame()},
		optical:  frames.Pair{Parent: conf.OpticalOriginFrame(), Child: conf.OpticalTargetFrame()},
	}
}

// WaitUntilFramesAvailable blocks until both chains have at least one
// resolvable transform. Intended for daemon startup, before the first
// sample is attempted.
func (s *PoseSampler) WaitUntilFramesAvailable(ctx context.Context) error {
	logrus.WithFields(logrus.Fields{
		"robot":   s.robot,
		"optical": s.optical,
	}).Info("waiting for frame chains to become available")

	if err := s.provider.WaitUntilAvailable(ctx, s.robot, robotChainStartupTimeout); err != nil {
		return fmt.Errorf("%w: robot chain %s->%s: %v",
			calibration.ErrTransformUnavailable, s.robot.Parent, s.robot.Child, err)
	}
	if err := s.provider.WaitUntilAvailable(ctx, s.optical, opticalChainStartupTimeout); err != nil {
		return fmt.Errorf("%w: optical chain %s->%s: %v",
			calibration.ErrTransformUnavailable, s.optical.Parent, s.optical.Child, err)
	}
	return nil
}

// SampleAt looks both chains up at the given instant and returns the
// synchronized pair. A zero instant means "now": the sampler first waits,
// bounded per chain, for both chains to become resolvable at the current
// time. Failures are recoverable; no state is kept between attempts.
func (s *PoseSampler) SampleAt(ctx context.Context, at time.Time) (calibration.Sample, error) {
	if at.IsZero() {
		now := time.Now()
		if err := s.provider.WaitForInstant(ctx, s.robot, now, sampleWaitTimeout); err != nil {
			return calibration.Sample{}, fmt.Errorf("%w: robot chain %s->%s: %v",
				calibration.ErrTransformUnavailable, s.robot.Parent, s.robot.Child, err)
		}
		if err := s.provider.WaitForInstant(ctx, s.optical, now, sampleWaitTimeout); err != nil {
			return calibration.Sample{}, fmt.Errorf("%w: optical chain %s->%s: %v",
				calibration.ErrTransformUnavailable, s.optical.Parent, s.optical.Child, err)
		}
		at = now
	}

	robot, err := s.provider.Lookup(s.robot, at)
	if err != nil {
		return calibration.Sample{}, fmt.Errorf("%w: robot chain %s->%s: %v",
			calibration.ErrTransformUnavailable, s.robot.Parent, s.robot.Child, err)
	}
	optical, err := s.provider.Lookup(s.optical, at)
	if err != nil {
		return calibration.Sample{}, fmt.Errorf("%w: optical chain %s->%s: %v",
			calibration.ErrTransformUnavailable, s.optical.Parent, s.optical.Child, err)
	}

	return calibration.Sample{Robot: robot, Optical: optical}, nil
}
