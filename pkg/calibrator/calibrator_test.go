package calibrator

import (
	"context"
	"errors"
	"testing"

	"github.com/robogrid/handeye/pkg/calibration"
	"github.com/robogrid/handeye/pkg/frames"
	"github.com/robogrid/handeye/pkg/geometry"
)

func newTestCalibrator(provider *fakeProvider, solver *fakeSolver, sinks ...PersistenceSink) *Calibrator {
	return New(&mockConf{minSamples: 2}, provider, solver, sinks...)
}

func TestTakeSampleAppendsAndReturnsFullSnapshot(t *testing.T) {
	provider := &fakeProvider{
		robot:   geometry.RigidTransform{Translation: geometry.Vec3{X: 1}, Rotation: geometry.QuaternionIdentity()},
		optical: geometry.RigidTransform{Translation: geometry.Vec3{Y: 2}, Rotation: geometry.QuaternionIdentity()},
	}
	c := newTestCalibrator(provider, &fakeSolver{})

	for i := 1; i <= 3; i++ {
		snap, err := c.TakeSample(context.Background())
		if err != nil {
			t.Fatalf("TakeSample failed: %v", err)
		}
		if snap.Len() != i || len(snap.Robot) != len(snap.Optical) {
			t.Fatalf("snapshot after %d samples: robot=%d optical=%d", i, len(snap.Robot), len(snap.Optical))
		}
	}

	// Both chains of one sample must come from the same instant.
	if len(provider.lookupInstants) != 6 {
		t.Fatalf("expected 6 lookups, got %d", len(provider.lookupInstants))
	}
	for i := 0; i < len(provider.lookupInstants); i += 2 {
		if !provider.lookupInstants[i].Equal(provider.lookupInstants[i+1]) {
			t.Fatalf("sample %d chains looked up at different instants", i/2)
		}
	}
}

func TestTakeSampleFailureLeavesStoreUntouched(t *testing.T) {
	provider := &fakeProvider{waitErr: frames.ErrWaitTimeout}
	c := newTestCalibrator(provider, &fakeSolver{})

	_, err := c.TakeSample(context.Background())
	if !errors.Is(err, calibration.ErrTransformUnavailable) {
		t.Fatalf("expected ErrTransformUnavailable, got %v", err)
	}
	if got := c.GetSamples().Len(); got != 0 {
		t.Fatalf("store mutated on failed sample: %d samples", got)
	}
}

func TestRemoveSampleOutOfRange(t *testing.T) {
	c := newTestCalibrator(&fakeProvider{}, &fakeSolver{})

	_, err := c.RemoveSample(0)
	var oor *calibration.IndexOutOfRangeError
	if !errors.As(err, &oor) {
		t.Fatalf("expected IndexOutOfRangeError, got %v", err)
	}
}

func TestComputeBelowThresholdNeverCallsSolver(t *testing.T) {
	provider := &fakeProvider{
		robot:   geometry.TransformIdentity(),
		optical: geometry.TransformIdentity(),
	}
	solver := &fakeSolver{}
	c := newTestCalibrator(provider, solver)

	if _, err := c.TakeSample(context.Background()); err != nil {
		t.Fatalf("TakeSample failed: %v", err)
	}

	_, err := c.Compute()
	var insufficient *calibration.InsufficientSamplesError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientSamplesError, got %v", err)
	}
	if insufficient.Needed != 1 {
		t.Fatalf("needed mismatch: got %d, want 1", insufficient.Needed)
	}
	if insufficient.Error() != "1 more samples needed" {
		t.Fatalf("message mismatch: %q", insufficient.Error())
	}
	if solver.calls != 0 {
		t.Fatalf("solver must not be called below threshold, got %d calls", solver.calls)
	}
	if c.LastResult() != nil {
		t.Fatalf("last result must stay empty after a refused compute")
	}
}

func TestComputeCallsSolverOnceWithStoreContents(t *testing.T) {
	provider := &fakeProvider{
		robot:   geometry.RigidTransform{Translation: geometry.Vec3{X: 1}, Rotation: geometry.QuaternionIdentity()},
		optical: geometry.RigidTransform{Translation: geometry.Vec3{Y: 2}, Rotation: geometry.QuaternionIdentity()},
	}
	solver := &fakeSolver{ret: geometry.TransformIdentity()}
	c := newTestCalibrator(provider, solver)

	for i := 0; i < 2; i++ {
		if _, err := c.TakeSample(context.Background()); err != nil {
			t.Fatalf("TakeSample failed: %v", err)
		}
	}

	if _, err := c.Compute(); err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if solver.calls != 1 {
		t.Fatalf("solver called %d times, want 1", solver.calls)
	}
	if len(solver.gotRobot) != 2 || len(solver.gotOptical) != 2 {
		t.Fatalf("solver sequences: robot=%d optical=%d, want 2/2", len(solver.gotRobot), len(solver.gotOptical))
	}
	if solver.gotRobot[0].Translation.X != 1 || solver.gotOptical[0].Translation.Y != 2 {
		t.Fatalf("solver received wrong sequences: %+v / %+v", solver.gotRobot[0], solver.gotOptical[0])
	}
}

func TestComputeSuccessOverwritesLastResult(t *testing.T) {
	provider := &fakeProvider{
		robot:   geometry.TransformIdentity(),
		optical: geometry.TransformIdentity(),
	}
	first := geometry.RigidTransform{Translation: geometry.Vec3{X: 9}, Rotation: geometry.QuaternionIdentity()}
	second := geometry.RigidTransform{Translation: geometry.Vec3{X: 0.1, Z: 0.2}, Rotation: geometry.QuaternionIdentity()}
	solver := &fakeSolver{ret: first}
	c := newTestCalibrator(provider, solver)

	for i := 0; i < 2; i++ {
		if _, err := c.TakeSample(context.Background()); err != nil {
			t.Fatalf("TakeSample failed: %v", err)
		}
	}

	res, err := c.Compute()
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if res.EyeOnHand || res.BaseFrame != "base_link" || res.ToolFrame != "tool0" {
		t.Fatalf("result labels mismatch: %+v", res)
	}
	if res.Transform.Translation.X != 9 {
		t.Fatalf("result transform mismatch: %+v", res.Transform)
	}

	solver.ret = second
	res, err = c.Compute()
	if err != nil {
		t.Fatalf("second Compute failed: %v", err)
	}
	if c.LastResult() != res {
		t.Fatalf("last result not overwritten")
	}
	if res.Transform.Translation.Z != 0.2 {
		t.Fatalf("second result transform mismatch: %+v", res.Transform)
	}
}

func TestComputeSolverFailureKeepsLastResult(t *testing.T) {
	provider := &fakeProvider{
		robot:   geometry.TransformIdentity(),
		optical: geometry.TransformIdentity(),
	}
	solver := &fakeSolver{ret: geometry.TransformIdentity()}
	c := newTestCalibrator(provider, solver)

	for i := 0; i < 2; i++ {
		if _, err := c.TakeSample(context.Background()); err != nil {
			t.Fatalf("TakeSample failed: %v", err)
		}
	}
	prev, err := c.Compute()
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	solver.err = errors.New("numerical failure")
	_, err = c.Compute()
	var failed *calibration.CalibrationFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected CalibrationFailedError, got %v", err)
	}
	if c.LastResult() != prev {
		t.Fatalf("failed compute must keep the previous result")
	}
}

func TestSaveWithoutComputeFails(t *testing.T) {
	sink := &fakeSink{name: "file"}
	c := newTestCalibrator(&fakeProvider{}, &fakeSolver{}, sink)

	if err := c.Save(); !errors.Is(err, calibration.ErrNoCalibrationAvailable) {
		t.Fatalf("expected ErrNoCalibrationAvailable, got %v", err)
	}
	if sink.writes != 0 {
		t.Fatalf("no sink should be contacted without a result")
	}
}

func TestSavePartialSinkFailure(t *testing.T) {
	provider := &fakeProvider{
		robot:   geometry.TransformIdentity(),
		optical: geometry.TransformIdentity(),
	}
	good := &fakeSink{name: "params"}
	bad := &fakeSink{name: "file", err: errors.New("disk full")}
	c := newTestCalibrator(provider, &fakeSolver{ret: geometry.TransformIdentity()}, bad, good)

	for i := 0; i < 2; i++ {
		if _, err := c.TakeSample(context.Background()); err != nil {
			t.Fatalf("TakeSample failed: %v", err)
		}
	}
	if _, err := c.Compute(); err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	err := c.Save()
	var saveErr *calibration.SaveError
	if !errors.As(err, &saveErr) {
		t.Fatalf("expected SaveError, got %v", err)
	}
	if _, ok := saveErr.Failed["file"]; !ok || len(saveErr.Failed) != 1 {
		t.Fatalf("failure report mismatch: %+v", saveErr.Failed)
	}
	// The healthy sink is written despite the failure, and not rolled back.
	if good.writes != 1 {
		t.Fatalf("independent sink should still be written, got %d writes", good.writes)
	}
}

// TestCalibrationWorkflow walks the full scenario: two samples, a compute
// with a stubbed solver transform, a save to both sinks, then a removal
// that drops the store back below the threshold.
func TestCalibrationWorkflow(t *testing.T) {
	provider := &fakeProvider{
		robot:   geometry.TransformIdentity(),
		optical: geometry.TransformIdentity(),
	}
	solver := &fakeSolver{ret: geometry.RigidTransform{
		Translation: geometry.Vec3{X: 0.1, Y: 0, Z: 0.2},
		Rotation:    geometry.Quaternion{W: 1},
	}}
	fileSink := &fakeSink{name: "file"}
	paramSink := &fakeSink{name: "params"}
	c := newTestCalibrator(provider, solver, fileSink, paramSink)

	for i := 0; i < 2; i++ {
		if _, err := c.TakeSample(context.Background()); err != nil {
			t.Fatalf("TakeSample failed: %v", err)
		}
	}
	if got := c.GetSamples().Len(); got != 2 {
		t.Fatalf("expected 2 samples, got %d", got)
	}

	res, err := c.Compute()
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if res.EyeOnHand != false || res.BaseFrame != "base_link" || res.ToolFrame != "tool0" {
		t.Fatalf("result labels mismatch: %+v", res)
	}
	if res.Transform.Translation != (geometry.Vec3{X: 0.1, Y: 0, Z: 0.2}) {
		t.Fatalf("result translation mismatch: %+v", res.Transform.Translation)
	}

	if err := c.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if fileSink.writes != 1 || paramSink.writes != 1 {
		t.Fatalf("both sinks should be written once: file=%d params=%d", fileSink.writes, paramSink.writes)
	}

	snap, err := c.RemoveSample(0)
	if err != nil {
		t.Fatalf("RemoveSample failed: %v", err)
	}
	if snap.Len() != 1 {
		t.Fatalf("expected 1 sample after removal, got %d", snap.Len())
	}

	_, err = c.Compute()
	var insufficient *calibration.InsufficientSamplesError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientSamplesError, got %v", err)
	}
	if insufficient.Error() != "1 more samples needed" {
		t.Fatalf("message mismatch: %q", insufficient.Error())
	}
}
