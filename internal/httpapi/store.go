package httpapi

import (
	"io"
	"net/http"
	"strings"

	"github.com/minio/minsql/internal/cmn"
	"github.com/minio/minsql/internal/config"
)

// handleStore implements PUT /{log}/store (§6). The raw request body is
// opaque and passed through to the ingest manager byte-for-byte.
func (s *Server) handleStore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeErr(w, cmn.BadRequest("method %s not allowed on this path", r.Method))
		return
	}
	logName, ok := parseStorePath(r.URL.Path)
	if !ok {
		writeErr(w, cmn.BadRequest("expected PUT /{log}/store"))
		return
	}

	cfg := s.Owner.Get()
	tok, err := authenticate(r, cfg)
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := cfg.Authorize(tok.AccessKey, logName, config.APIStore); err != nil {
		writeErr(w, err)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeErr(w, cmn.BadRequest("reading request body: %v", err))
		return
	}

	if err := s.Ingest.Append(r.Context(), logName, body); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok")
}

// parseStorePath extracts {log} from a "/{log}/store" path.
func parseStorePath(p string) (string, bool) {
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimSuffix(p, "/")
	parts := strings.Split(p, "/")
	if len(parts) != 2 || parts[1] != "store" || parts[0] == "" {
		return "", false
	}
	return parts[0], true
}
