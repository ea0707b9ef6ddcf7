package persist

import (
	"sync"

	"github.com/robogrid/handeye/pkg/calibration"
)

// ParamStore is the transient runtime sink: a mutex-guarded parameter map
// other components (and the HTTP surface) can read the current calibration
// from. Contents do not survive a daemon restart.
type ParamStore struct {
	mu     sync.RWMutex
	params map[string]interface{}
}

func NewParamStore() *ParamStore {
	return &ParamStore{params: map[string]interface{}{}}
}

func (s *ParamStore) Name() string {
	return "params"
}

func (s *ParamStore) Write(res *calibration.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.params["eye_on_hand"] = res.EyeOnHand
	s.params["base_frame"] = res.BaseFrame
	s.params["tool_frame"] = res.ToolFrame
	s.params["transform/x"] = res.Transform.Translation.X
	s.params["transform/y"] = res.Transform.Translation.Y
	s.params["transform/z"] = res.Transform.Translation.Z
	s.params["transform/qx"] = res.Transform.Rotation.X
	s.params["transform/qy"] = res.Transform.Rotation.Y
	s.params["transform/qz"] = res.Transform.Rotation.Z
	s.params["transform/qw"] = res.Transform.Rotation.W
	return nil
}

// Params returns a copy of the current parameter map.
func (s *ParamStore) Params() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]interface{}, len(s.params))
	for k, v := range s.params {
		out[k] = v
	}
	return out
}
