package calibrator

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/robogrid/handeye/pkg/calibration"
	"github.com/robogrid/handeye/pkg/frames"
	"github.com/robogrid/handeye/pkg/geometry"
)

// mockConf implements config.Config with the spec defaults.
type mockConf struct {
	eyeOnHand  bool
	minSamples int
}

func (m *mockConf) EyeOnHand() bool            { return m.eyeOnHand }
func (m *mockConf) ToolFrame() string          { return "tool0" }
func (m *mockConf) BaseLinkFrame() string      { return "base_link" }
func (m *mockConf) OpticalOriginFrame() string { return "optical_origin" }
func (m *mockConf) OpticalTargetFrame() string { return "optical_target" }
func (m *mockConf) MinSamples() int            { return m.minSamples }
func (m *mockConf) CalibrationPath() string    { return "" }
func (m *mockConf) AllowNonRootAccess() bool   { return false }
func (m *mockConf) Load() error                { return nil }
func (m *mockConf) LogrusFields() logrus.Fields {
	return logrus.Fields{}
}

// fakeProvider serves fixed transforms per chain and records the instants
// it was asked about.
type fakeProvider struct {
	robot   geometry.RigidTransform
	optical geometry.RigidTransform

	waitErr   error
	lookupErr error

	lookupInstants []time.Time
}

func (p *fakeProvider) Lookup(pair frames.Pair, at time.Time) (geometry.RigidTransform, error) {
	if p.lookupErr != nil {
		return geometry.RigidTransform{}, p.lookupErr
	}
	p.lookupInstants = append(p.lookupInstants, at)
	if pair.Parent == "base_link" {
		return p.robot, nil
	}
	return p.optical, nil
}

func (p *fakeProvider) WaitUntilAvailable(_ context.Context, _ frames.Pair, _ time.Duration) error {
	return p.waitErr
}

func (p *fakeProvider) WaitForInstant(_ context.Context, _ frames.Pair, _ time.Time, _ time.Duration) error {
	return p.waitErr
}

// fakeSolver returns a canned transform and counts invocations.
type fakeSolver struct {
	ret geometry.RigidTransform
	err error

	calls      int
	gotRobot   []geometry.RigidTransform
	gotOptical []geometry.RigidTransform
}

func (s *fakeSolver) Solve(robot, optical []geometry.RigidTransform) (geometry.RigidTransform, error) {
	s.calls++
	s.gotRobot = robot
	s.gotOptical = optical
	if s.err != nil {
		return geometry.RigidTransform{}, s.err
	}
	return s.ret, nil
}

// fakeSink records writes and optionally fails.
type fakeSink struct {
	name   string
	err    error
	writes int
	last   *calibration.Result
}

func (s *fakeSink) Name() string { return s.name }

func (s *fakeSink) Write(res *calibration.Result) error {
	if s.err != nil {
		return s.err
	}
	s.writes++
	s.last = res
	return nil
}
