package orchestrator

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/local/nfsextract/internal/statuscheck"
)

// StatusReporter is satisfied by *statuscheck.Checker.
type StatusReporter interface {
	Summary(ctx context.Context) statuscheck.Summary
}

type statusResp struct {
	Ready bool `json:"ready"`
	statuscheck.Summary
}

func (o *Orchestrator) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if o.deps.Status == nil {
		http.Error(w, "status checks not configured", http.StatusServiceUnavailable)
		return
	}
	s := o.deps.Status.Summary(r.Context())
	code := http.StatusOK
	if !s.Ready() {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(statusResp{Ready: s.Ready(), Summary: s})
}
