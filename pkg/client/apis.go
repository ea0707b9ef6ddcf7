package client

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/robogrid/handeye/pkg/calibration"
	"github.com/robogrid/handeye/pkg/config"
	"github.com/robogrid/handeye/pkg/geometry"
)

func (c *Client) GetSamples() (*calibration.Snapshot, error) {
	ret, err := c.Get("/samples")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get samples")
	}

	var snap calibration.Snapshot
	if err := json.Unmarshal([]byte(ret), &snap); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal samples")
	}
	return &snap, nil
}

func (c *Client) TakeSample() (*calibration.Snapshot, error) {
	ret, err := c.Post("/samples", "")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to take sample")
	}

	var snap calibration.Snapshot
	if err := json.Unmarshal([]byte(ret), &snap); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal samples")
	}
	return &snap, nil
}

func (c *Client) RemoveSample(index int) (*calibration.Snapshot, error) {
	ret, err := c.Delete("/samples/" + strconv.Itoa(index))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to remove sample %d", index)
	}

	var snap calibration.Snapshot
	if err := json.Unmarshal([]byte(ret), &snap); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal samples")
	}
	return &snap, nil
}

func (c *Client) ComputeCalibration() (*calibration.Result, error) {
	ret, err := c.Post("/calibration/compute", "")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to compute calibration")
	}

	var res calibration.Result
	if err := json.Unmarshal([]byte(ret), &res); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal calibration")
	}
	return &res, nil
}

func (c *Client) SaveCalibration() (string, error) {
	return c.Post("/calibration/save", "")
}

func (c *Client) GetCalibration() (*calibration.Result, error) {
	ret, err := c.Get("/calibration")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get calibration")
	}

	var res calibration.Result
	if err := json.Unmarshal([]byte(ret), &res); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal calibration")
	}
	return &res, nil
}

func (c *Client) GetCalibrationParams() (map[string]interface{}, error) {
	ret, err := c.Get("/calibration/params")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get calibration params")
	}

	var params map[string]interface{}
	if err := json.Unmarshal([]byte(ret), &params); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal calibration params")
	}
	return params, nil
}

// SendTransform pushes one timestamped transform observation into the
// daemon's frame buffer. A zero stamp means "now".
func (c *Client) SendTransform(parent, child string, stamp time.Time, tf geometry.RigidTransform) (string, error) {
	payload, err := json.Marshal(struct {
		Parent    string                  `json:"parent"`
		Child     string                  `json:"child"`
		Stamp     time.Time               `json:"stamp"`
		Transform geometry.RigidTransform `json:"transform"`
	}{
		Parent:    parent,
		Child:     child,
		Stamp:     stamp,
		Transform: tf,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal transform: %w", err)
	}
	return c.Put("/transforms", string(payload))
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}
	return &conf, nil
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	// Remove "" around JSON string. I don't want to use a JSON decoder just for this.
	ret = ret[1 : len(ret)-1] // remove the surrounding quotes
	return ret, nil
}
