// Package httpapi wires the ingest and query pipelines to the two public
// endpoints (§6) plus a minimal admin surface (§6.ADD) that exercises the
// meta loader end-to-end.
package httpapi

import (
	"net/http"

	"github.com/golang/glog"

	"github.com/minio/minsql/internal/cmn"
	"github.com/minio/minsql/internal/config"
	"github.com/minio/minsql/internal/ingest"
	"github.com/minio/minsql/internal/meta"
	"github.com/minio/minsql/internal/query"
	"github.com/minio/minsql/internal/stats"
)

// Server bundles every dependency the handlers need; it owns no state of
// its own beyond what it's handed.
type Server struct {
	Owner   *config.Owner
	Ingest  *ingest.Manager
	Exec    *query.Executor
	Loader  *meta.Loader
	Metrics *stats.Metrics
}

// Handler builds the full mux (§6's two core endpoints plus the admin
// create/replace handlers; there are no admin read or delete handlers).
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/", s.handleStore) // PUT /{log}/store
	mux.HandleFunc("/api/tokens", s.handleAdminTokens)
	mux.HandleFunc("/api/datastores", s.handleAdminDatastores)
	mux.HandleFunc("/api/logs", s.handleAdminLogs)
	mux.HandleFunc("/api/auth/", s.handleAdminAuth)
	return mux
}

// writeErr maps err's taxonomy Kind to an HTTP status (§7), matching the
// teacher's single-helper convention (ais/target.go's t.writeErr).
func writeErr(w http.ResponseWriter, err error) {
	kind := cmn.KindOf(err)
	glog.Warningf("minsql: http: %s: %v", kind, err)
	http.Error(w, err.Error(), kind.HTTPStatus())
}
