package calibrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robogrid/handeye/pkg/calibration"
	"github.com/robogrid/handeye/pkg/frames"
	"github.com/robogrid/handeye/pkg/geometry"
)

func TestSampleAtExplicitInstantAgainstBuffer(t *testing.T) {
	buf := frames.NewBuffer(0)
	conf := &mockConf{minSamples: 2}
	s := NewPoseSampler(buf, conf)

	robotPair := frames.Pair{Parent: "base_link", Child: "tool0"}
	opticalPair := frames.Pair{Parent: "optical_origin", Child: "optical_target"}

	t0 := time.Now()
	buf.Set(robotPair, t0, geometry.RigidTransform{
		Translation: geometry.Vec3{X: 1},
		Rotation:    geometry.QuaternionIdentity(),
	})
	buf.Set(opticalPair, t0, geometry.RigidTransform{
		Translation: geometry.Vec3{Z: 3},
		Rotation:    geometry.QuaternionIdentity(),
	})

	smp, err := s.SampleAt(context.Background(), t0)
	if err != nil {
		t.Fatalf("SampleAt failed: %v", err)
	}
	if smp.Robot.Translation.X != 1 || smp.Optical.Translation.Z != 3 {
		t.Fatalf("sample mismatch: %+v", smp)
	}
}

func TestSampleAtMissingChainIsTransformUnavailable(t *testing.T) {
	buf := frames.NewBuffer(0)
	s := NewPoseSampler(buf, &mockConf{minSamples: 2})

	// Only the robot chain is buffered; the optical lookup must fail and
	// surface as the recoverable taxonomy error.
	t0 := time.Now()
	buf.Set(frames.Pair{Parent: "base_link", Child: "tool0"}, t0, geometry.TransformIdentity())

	_, err := s.SampleAt(context.Background(), t0)
	if !errors.Is(err, calibration.ErrTransformUnavailable) {
		t.Fatalf("expected ErrTransformUnavailable, got %v", err)
	}
}

func TestWaitUntilFramesAvailablePropagatesTimeout(t *testing.T) {
	provider := &fakeProvider{waitErr: frames.ErrWaitTimeout}
	s := NewPoseSampler(provider, &mockConf{minSamples: 2})

	err := s.WaitUntilFramesAvailable(context.Background())
	if !errors.Is(err, calibration.ErrTransformUnavailable) {
		t.Fatalf("expected ErrTransformUnavailable, got %v", err)
	}
}

func TestSampleNowHonorsCanceledContext(t *testing.T) {
	buf := frames.NewBuffer(0)
	s := NewPoseSampler(buf, &mockConf{minSamples: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SampleAt(ctx, time.Time{})
	if !errors.Is(err, calibration.ErrTransformUnavailable) {
		t.Fatalf("expected ErrTransformUnavailable on canceled context, got %v", err)
	}
}
