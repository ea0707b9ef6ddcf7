// Package calibrator implements the hand-eye calibration engine: sample
// acquisition, the ordered sample store, compute preconditions and the
// single last-result slot. Collaborators (pose lookup, solver, persistence)
// are injected as interfaces so the engine can be exercised with doubles.
package calibrator

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/robogrid/handeye/pkg/calibration"
	"github.com/robogrid/handeye/pkg/config"
)

// DefaultMinSamples is the sample threshold used when the config does not
// override it. Two is the documented minimum of the method; expect noisy
// results that close to the limit, and prefer 5+ well-spread motions.
const DefaultMinSamples = 2

// Calibrator owns the sample store and the last computed result. One
// mutex serializes every operation: interleaved mutation of the store or
// the result slot would break the parallel-sequence invariant, and the
// surrounding HTTP layer handles requests concurrently.
type Calibrator struct {
	mu      sync.Mutex
	store   SampleStore
	sampler *PoseSampler
	solver  Solver
	sinks   []PersistenceSink
	last    *calibration.Result

	eyeOnHand  bool
	baseFrame  string
	toolFrame  string
	minSamples int
}

func New(conf config.Config, provider PoseProvider, solver Solver, sinks ...PersistenceSink) *Calibrator {
	minSamples := conf.MinSamples()
	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}

	return &Calibrator{
		sampler:    NewPoseSampler(provider, conf),
		solver:     solver,
		sinks:      sinks,
		eyeOnHand:  conf.EyeOnHand(),
		baseFrame:  conf.BaseLinkFrame(),
		toolFrame:  conf.ToolFrame(),
		minSamples: minSamples,
	}
}

// WaitUntilFramesAvailable blocks until both frame chains are resolvable.
// Called once at daemon startup.
func (c *Calibrator) WaitUntilFramesAvailable(ctx context.Context) error {
	return c.sampler.WaitUntilFramesAvailable(ctx)
}

// TakeSample acquires one synchronized sample, appends it to the store and
// returns the full updated snapshot. On failure the store is untouched and
// the caller may retry.
func (c *Calibrator) TakeSample(ctx context.Context) (calibration.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	logrus.Info("taking a sample")
	smp, err := c.sampler.SampleAt(ctx, time.Time{})
	if err != nil {
		return calibration.Snapshot{}, err
	}

	index := c.store.Append(smp)
	logrus.WithFields(logrus.Fields{
		"index": index,
		"count": c.store.Size(),
	}).Info("got a sample")

	return c.store.Snapshot(), nil
}

// RemoveSample deletes the sample at index and returns the updated
// snapshot.
func (c *Calibrator) RemoveSample(index int) (calibration.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.RemoveAt(index); err != nil {
		return calibration.Snapshot{}, err
	}
	logrus.WithFields(logrus.Fields{
		"index": index,
		"count": c.store.Size(),
	}).Info("removed a sample")

	return c.store.Snapshot(), nil
}

// GetSamples returns the current snapshot without side effects.
func (c *Calibrator) GetSamples() calibration.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Snapshot()
}

// Compute runs the solver over the current samples. Below the threshold it
// fails locally without contacting the solver. On success the new result
// overwrites the previous one; on solver failure the previous result is
// kept.
func (c *Calibrator) Compute() (*calibration.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n := c.store.Size(); n < c.minSamples {
		return nil, &calibration.InsufficientSamplesError{Needed: c.minSamples - n}
	}

	snap := c.store.Snapshot()
	logrus.Infof("computing calibration from %d poses", snap.Len())

	tf, err := c.solver.Solve(snap.Robot, snap.Optical)
	if err != nil {
		logrus.WithError(err).Error("solver failed")
		return nil, &calibration.CalibrationFailedError{Reason: err}
	}

	res := &calibration.Result{
		EyeOnHand: c.eyeOnHand,
		BaseFrame: c.baseFrame,
		ToolFrame: c.toolFrame,
		Transform: tf,
	}
	c.last = res

	logrus.WithFields(logrus.Fields{
		"eyeOnHand": res.EyeOnHand,
		"baseFrame": res.BaseFrame,
		"toolFrame": res.ToolFrame,
	}).Info("calibration computed")

	return res, nil
}

// LastResult returns the most recent successful compute, or nil.
func (c *Calibrator) LastResult() *calibration.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Save writes the last result to every sink. Sinks are independent: each
// is attempted regardless of the others, and a failure of one does not
// roll back another.
func (c *Calibrator) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last == nil {
		return calibration.ErrNoCalibrationAvailable
	}

	failed := map[string]error{}
	for _, sink := range c.sinks {
		if err := sink.Write(c.last); err != nil {
			logrus.WithError(err).Errorf("failed to write calibration to %s sink", sink.Name())
			failed[sink.Name()] = err
			continue
		}
		logrus.Infof("calibration written to %s sink", sink.Name())
	}

	if len(failed) > 0 {
		return &calibration.SaveError{Failed: failed}
	}
	return nil
}
