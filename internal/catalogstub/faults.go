package catalogstub

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"NotebookStore/pkg/kit"
)

// Faults makes the stub API misbehave on demand so clients can rehearse outages.
type Faults struct {
	status  atomic.Int32
	latency atomic.Int64
}

type faultsReq struct {
	Status    int `json:"status"`
	LatencyMS int `json:"latency_ms"`
}

// Set makes every API call wait latency and then, when status is non-zero, fail with it.
func (f *Faults) Set(status int, latency time.Duration) {
	f.status.Store(int32(status))
	f.latency.Store(int64(latency))
}

func (f *Faults) Reset() { f.Set(0, 0) }

func (f *Faults) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if d := time.Duration(f.latency.Load()); d > 0 {
			t := time.NewTimer(d)
			select {
			case <-t.C:
			case <-r.Context().Done():
				t.Stop()
				return
			}
		}
		if status := int(f.status.Load()); status != 0 {
			kit.WriteError(w, r, status, "injected fault", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *Faults) put(w http.ResponseWriter, r *http.Request) {
	var req faultsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if req.Status != 0 && (req.Status < 400 || req.Status > 599) {
		kit.WriteError(w, r, http.StatusBadRequest, "status must be 4xx or 5xx", map[string]any{"status": req.Status})
		return
	}
	if req.LatencyMS < 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "latency_ms must not be negative", nil)
		return
	}

	f.Set(req.Status, time.Duration(req.LatencyMS)*time.Millisecond)
	w.WriteHeader(http.StatusNoContent)
}

func (f *Faults) clear(w http.ResponseWriter, _ *http.Request) {
	f.Reset()
	w.WriteHeader(http.StatusNoContent)
}
