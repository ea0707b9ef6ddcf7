package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/robogrid/handeye/pkg/utils/ptr"
)

var defaultFileConfig = &RawFileConfig{
	EyeOnHand:          ptr.To(false),
	ToolFrame:          ptr.To("tool0"),
	BaseLinkFrame:      ptr.To("base_link"),
	OpticalOriginFrame: ptr.To("optical_origin"),
	OpticalTargetFrame: ptr.To("optical_target"),
	// Two samples is the documented minimum of the underlying method;
	// more samples give a better-conditioned solve.
	MinSamples:         ptr.To(2),
	CalibrationPath:    ptr.To("/etc/handeye/calibration.yaml"),
	AllowNonRootAccess: ptr.To(false),
}

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = defaultFileConfig
	}

	return &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}
}

// RawFileConfig is the JSON schema of the config file. Absent fields fall
// back to defaults.
type RawFileConfig struct {
	EyeOnHand          *bool   `json:"eyeOnHand,omitempty"`
	ToolFrame          *string `json:"toolFrame,omitempty"`
	BaseLinkFrame      *string `json:"baseLinkFrame,omitempty"`
	OpticalOriginFrame *string `json:"opticalOriginFrame,omitempty"`
	OpticalTargetFrame *string `json:"opticalTargetFrame,omitempty"`
	MinSamples         *int    `json:"minSamples,omitempty"`
	CalibrationPath    *string `json:"calibrationPath,omitempty"`
	AllowNonRootAccess *bool   `json:"allowNonRootAccess,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	return &RawFileConfig{
		EyeOnHand:          ptr.To(c.EyeOnHand()),
		ToolFrame:          ptr.To(c.ToolFrame()),
		BaseLinkFrame:      ptr.To(c.BaseLinkFrame()),
		OpticalOriginFrame: ptr.To(c.OpticalOriginFrame()),
		OpticalTargetFrame: ptr.To(c.OpticalTargetFrame()),
		MinSamples:         ptr.To(c.MinSamples()),
		CalibrationPath:    ptr.To(c.CalibrationPath()),
		AllowNonRootAccess: ptr.To(c.AllowNonRootAccess()),
	}, nil
}

func (f *File) EyeOnHand() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.EyeOnHand != nil {
		return *f.c.EyeOnHand
	}
	return *defaultFileConfig.EyeOnHand
}

func (f *File) ToolFrame() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.ToolFrame != nil {
		return *f.c.ToolFrame
	}
	return *defaultFileConfig.ToolFrame
}

func (f *File) BaseLinkFrame() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.BaseLinkFrame != nil {
		return *f.c.BaseLinkFrame
	}
	return *defaultFileConfig.BaseLinkFrame
}

func (f *File) OpticalOriginFrame() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.OpticalOriginFrame != nil {
		return *f.c.OpticalOriginFrame
	}
	return *defaultFileConfig.OpticalOriginFrame
}

func (f *File) OpticalTargetFrame() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.OpticalTargetFrame != nil {
		return *f.c.OpticalTargetFrame
	}
	return *defaultFileConfig.OpticalTargetFrame
}

func (f *File) MinSamples() int {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.MinSamples != nil && *f.c.MinSamples > 0 {
		return *f.c.MinSamples
	}
	return *defaultFileConfig.MinSamples
}

func (f *File) CalibrationPath() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.CalibrationPath != nil && *f.c.CalibrationPath != "" {
		return *f.c.CalibrationPath
	}
	return *defaultFileConfig.CalibrationPath
}

func (f *File) AllowNonRootAccess() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.AllowNonRootAccess != nil {
		return *f.c.AllowNonRootAccess
	}
	return *defaultFileConfig.AllowNonRootAccess
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"eyeOnHand":          f.EyeOnHand(),
		"toolFrame":          f.ToolFrame(),
		"baseLinkFrame":      f.BaseLinkFrame(),
		"opticalOriginFrame": f.OpticalOriginFrame(),
		"opticalTargetFrame": f.OpticalTargetFrame(),
		"minSamples":         f.MinSamples(),
		"calibrationPath":    f.CalibrationPath(),
		"allowNonRootAccess": f.AllowNonRootAccess(),
	}
}
