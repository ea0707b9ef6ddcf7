package config

import "github.com/sirupsen/logrus"

// Config is the calibration daemon configuration. It is read once at
// startup and treated as immutable afterwards: the frame names and the
// sample threshold label every result produced during the daemon's
// lifetime, so changing them mid-flight would mix incompatible samples.
type Config interface {
	// EyeOnHand reports whether the camera is rigidly attached to the
	// robot tool (true) or to its stationary base (false).
	EyeOnHand() bool
	// ToolFrame is the robot tool frame name.
	ToolFrame() string
	// BaseLinkFrame is the robot base frame name.
	BaseLinkFrame() string
	// OpticalOriginFrame is the tracking system origin frame name.
	OpticalOriginFrame() string
	// OpticalTargetFrame is the tracked object frame name.
	OpticalTargetFrame() string
	// MinSamples is the minimum number of samples required before a
	// calibration compute is attempted.
	MinSamples() int
	// CalibrationPath is where the durable file sink writes results.
	CalibrationPath() string
	AllowNonRootAccess() bool

	// Load reads the configuration from the source.
	Load() error

	LogrusFields() logrus.Fields
}
