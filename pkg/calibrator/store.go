package calibrator

import (
	"github.com/robogrid/handeye/pkg/calibration"
	"github.com/robogrid/handeye/pkg/geometry"
)

// SampleStore is the ordered collection of acquired samples. Insertion
// order is significant: it determines the index-for-index correspondence
// handed to the solver. The store is not internally locked; the Calibrator
// serializes all access.
type SampleStore struct {
	samples []calibration.Sample
}

// Append adds a sample and returns its index.
func (s *SampleStore) Append(smp calibration.Sample) int {
	s.samples = append(s.samples, smp)
	return len(s.samples) - 1
}

// RemoveAt deletes the sample at index, preserving the relative order of
// the remaining samples. An invalid index is rejected with a typed error
// rather than ignored, so callers learn about stale indices.
func (s *SampleStore) RemoveAt(index int) error {
	if index < 0 || index >= len(s.samples) {
		return &calibration.IndexOutOfRangeError{Index: index, Size: len(s.samples)}
	}
	s.samples = append(s.samples[:index], s.samples[index+1:]...)
	return nil
}

// Size returns the number of stored samples.
func (s *SampleStore) Size() int {
	return len(s.samples)
}

// Snapshot projects the store into two parallel ordered sequences. The
// sequences always have equal length, equal to Size().
func (s *SampleStore) Snapshot() calibration.Snapshot {
	robot := make([]geometry.RigidTransform, 0, len(s.samples))
	optical := make([]geometry.RigidTransform, 0, len(s.samples))
	for _, smp := range s.samples {
		robot = append(robot, smp.Robot)
		optical = append(optical, smp.Optical)
	}
	return calibration.Snapshot{Robot: robot, Optical: optical}
}
