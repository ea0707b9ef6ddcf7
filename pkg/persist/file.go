// Package persist provides the two independent destinations a computed
// calibration is saved to: a durable YAML file and a transient runtime
// parameter store. The sinks share no state and report success or failure
// independently.
package persist

import (
	"os"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/robogrid/handeye/pkg/calibration"
	"github.com/robogrid/handeye/pkg/geometry"
)

// fileDoc is the on-disk calibration schema.
type fileDoc struct {
	EyeOnHand bool          `yaml:"eye_on_hand"`
	BaseFrame string        `yaml:"base_frame"`
	ToolFrame string        `yaml:"tool_frame"`
	Transform fileTransform `yaml:"transform"`
}

type fileTransform struct {
	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
	Z  float64 `yaml:"z"`
	QX float64 `yaml:"qx"`
	QY float64 `yaml:"qy"`
	QZ float64 `yaml:"qz"`
	QW float64 `yaml:"qw"`
}

// FileSink writes the calibration to a YAML file, creating parent
// directories as needed. Each write replaces the previous file.
type FileSink struct {
	path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Name() string {
	return "file"
}

func (s *FileSink) Write(res *calibration.Result) error {
	doc := fileDoc{
		EyeOnHand: res.EyeOnHand,
		BaseFrame: res.BaseFrame,
		ToolFrame: res.ToolFrame,
		Transform: fileTransform{
			X:  res.Transform.Translation.X,
			Y:  res.Transform.Translation.Y,
			Z:  res.Transform.Translation.Z,
			QX: res.Transform.Rotation.X,
			QY: res.Transform.Rotation.Y,
			QZ: res.Transform.Rotation.Z,
			QW: res.Transform.Rotation.W,
		},
	}

	b, err := yaml.Marshal(doc)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal calibration")
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return pkgerrors.Wrapf(err, "failed to create directory %s", dir)
		}
	}

	if err := os.WriteFile(s.path, b, 0644); err != nil {
		return pkgerrors.Wrapf(err, "failed to write calibration to %s", s.path)
	}
	return nil
}

// LoadFile reads a calibration previously written by a FileSink.
func LoadFile(path string) (*calibration.Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to read calibration from %s", path)
	}

	var doc fileDoc
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal calibration from %s", path)
	}

	return &calibration.Result{
		EyeOnHand: doc.EyeOnHand,
		BaseFrame: doc.BaseFrame,
		ToolFrame: doc.ToolFrame,
		Transform: geometry.RigidTransform{
			Translation: geometry.Vec3{X: doc.Transform.X, Y: doc.Transform.Y, Z: doc.Transform.Z},
			Rotation: geometry.Quaternion{
				X: doc.Transform.QX,
				Y: doc.Transform.QY,
				Z: doc.Transform.QZ,
				W: doc.Transform.QW,
			},
		},
	}, nil
}
