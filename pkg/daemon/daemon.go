// Package daemon runs the calibration engine behind an HTTP API on a unix
// socket. Robot and tracker drivers push timestamped transforms in; the
// CLI (or any other client) drives sampling, compute and save through the
// same surface.
package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/robogrid/handeye/pkg/calibrator"
	"github.com/robogrid/handeye/pkg/config"
	"github.com/robogrid/handeye/pkg/frames"
	"github.com/robogrid/handeye/pkg/persist"
	"github.com/robogrid/handeye/pkg/solver"
)

var (
	cal        *calibrator.Calibrator
	conf       config.Config
	tfBuffer   *frames.Buffer
	paramStore *persist.ParamStore
)

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/samples", getSamples)
	router.POST("/samples", takeSample)
	router.DELETE("/samples/:index", removeSample)
	router.POST("/calibration/compute", computeCalibration)
	router.POST("/calibration/save", saveCalibration)
	router.GET("/calibration", getCalibration)
	router.GET("/calibration/params", getCalibrationParams)
	router.PUT("/transforms", putTransform)
	router.GET("/config", getConfig)
	router.GET("/version", getVersion)

	return router
}

func Run(configPath string, unixSocketPath string, allowNonRoot bool) error {
	var err error
	conf, err = config.NewFile(configPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	tfBuffer = frames.NewBuffer(frames.DefaultRetention)
	paramStore = persist.NewParamStore()
	cal = calibrator.New(conf, tfBuffer, solver.TsaiLenz{},
		persist.NewFileSink(conf.CalibrationPath()),
		paramStore,
	)

	router := setupRoutes()
	srv := &http.Server{
		Handler: router,
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	if conf.AllowNonRootAccess() || allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		err = os.Chmod(unixSocketPath, 0777)
		if err != nil {
			logrus.Fatal(err)
		}
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	// Transforms arrive through the server we just started, so the
	// startup wait runs in the background rather than gating it.
	waitCtx, cancelWait := context.WithCancel(context.Background())
	go func() {
		if err := cal.WaitUntilFramesAvailable(waitCtx); err != nil {
			logrus.WithError(err).Warn("frame chains not available yet; sampling will fail until drivers publish transforms")
			return
		}
		logrus.Info("frame chains available, ready to sample")
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	cancelWait()

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(ctx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	logrus.Info("exiting")
	return nil
}
