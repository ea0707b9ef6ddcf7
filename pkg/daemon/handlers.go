package daemon

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/robogrid/handeye/pkg/calibration"
	"github.com/robogrid/handeye/pkg/config"
	"github.com/robogrid/handeye/pkg/frames"
	"github.com/robogrid/handeye/pkg/geometry"
	"github.com/robogrid/handeye/pkg/version"
)

func getSamples(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, cal.GetSamples())
}

func takeSample(c *gin.Context) {
	snap, err := cal.TakeSample(c.Request.Context())
	if err != nil {
		abortWithCalibrationError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, snap)
}

func removeSample(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	snap, err := cal.RemoveSample(index)
	if err != nil {
		abortWithCalibrationError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, snap)
}

func computeCalibration(c *gin.Context) {
	res, err := cal.Compute()
	if err != nil {
		abortWithCalibrationError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, res)
}

func saveCalibration(c *gin.Context) {
	if err := cal.Save(); err != nil {
		abortWithCalibrationError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, "calibration saved")
}

func getCalibration(c *gin.Context) {
	res := cal.LastResult()
	if res == nil {
		abortWithCalibrationError(c, calibration.ErrNoCalibrationAvailable)
		return
	}
	c.IndentedJSON(http.StatusOK, res)
}

func getCalibrationParams(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, paramStore.Params())
}

// transformUpdate is one observation pushed by a robot or tracker driver.
// A zero stamp means "now". The rotation is normalized on ingest so small
// driver rounding never accumulates in the buffer.
type transformUpdate struct {
	Parent    string                  `json:"parent"`
	Child     string                  `json:"child"`
	Stamp     time.Time               `json:"stamp"`
	Transform geometry.RigidTransform `json:"transform"`
}

func putTransform(c *gin.Context) {
	var upd transformUpdate
	if err := c.BindJSON(&upd); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if upd.Parent == "" || upd.Child == "" {
		err := errors.New("transform update requires parent and child frame names")
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	if n := upd.Transform.Rotation.Norm(); math.Abs(n-1) > 1e-3 {
		err := errors.New("transform rotation is not a unit quaternion")
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	upd.Transform.Rotation = upd.Transform.Rotation.Normalized()

	stamp := upd.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}
	tfBuffer.Set(frames.Pair{Parent: upd.Parent, Child: upd.Child}, stamp, upd.Transform)

	c.IndentedJSON(http.StatusCreated, "ok")
}

func getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

// calibrationErrorStatus maps the calibration error taxonomy onto HTTP
// status codes.
func calibrationErrorStatus(err error) int {
	var (
		outOfRange   *calibration.IndexOutOfRangeError
		insufficient *calibration.InsufficientSamplesError
		failed       *calibration.CalibrationFailedError
		saveErr      *calibration.SaveError
	)

	switch {
	case errors.Is(err, calibration.ErrTransformUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, calibration.ErrNoCalibrationAvailable):
		return http.StatusNotFound
	case errors.As(err, &outOfRange):
		return http.StatusBadRequest
	case errors.As(err, &insufficient):
		return http.StatusConflict
	case errors.As(err, &failed):
		return http.StatusBadGateway
	case errors.As(err, &saveErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func abortWithCalibrationError(c *gin.Context, err error) {
	status := calibrationErrorStatus(err)
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).Error("request failed")
	}
	c.IndentedJSON(status, err.Error())
	_ = c.AbortWithError(status, err)
}
