package httpapi

import (
	"io"
	"net/http"

	"github.com/golang/glog"

	"github.com/minio/minsql/internal/cmn"
	"github.com/minio/minsql/internal/config"
	"github.com/minio/minsql/internal/query"
)

// handleSearch implements POST /search (§6). The body is one or more SQL
// statements; every statement's referenced log must authorize "search"
// for the presented token before any output is streamed.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, cmn.BadRequest("method %s not allowed on /search", r.Method))
		return
	}

	cfg := s.Owner.Get()
	tok, err := authenticate(r, cfg)
	if err != nil {
		writeErr(w, err)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeErr(w, cmn.BadRequest("reading request body: %v", err))
		return
	}

	plans, err := query.PlanAll(string(body), cfg)
	if err != nil {
		writeErr(w, err)
		return
	}
	for _, p := range plans {
		if err := cfg.Authorize(tok.AccessKey, p.Log, config.APISearch); err != nil {
			writeErr(w, err)
			return
		}
	}

	// From here on the response is committed: a mid-stream failure can
	// only be logged, not turned into an HTTP error status.
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if err := s.Exec.Execute(r.Context(), plans, cfg, w); err != nil {
		glog.Warningf("minsql: http: search stream for %q ended early: %v", r.RemoteAddr, err)
	}
}
