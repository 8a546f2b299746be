package httpapi

import (
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/minio/minsql/internal/cmn"
	"github.com/minio/minsql/internal/config"
	"github.com/minio/minsql/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// adminAuth resolves the caller's token and requires it to be an admin
// token, per §3.ADD's admin bypass of LogAuth — the same privilege level
// governs the admin surface itself.
func (s *Server) adminAuth(r *http.Request) (*config.Token, *config.Config, error) {
	cfg := s.Owner.Get()
	tok, err := authenticate(r, cfg)
	if err != nil {
		return nil, nil, err
	}
	if !tok.IsAdmin {
		return nil, nil, cmn.AuthFailure("admin token required")
	}
	return tok, cfg, nil
}

// handleAdminTokens implements POST /api/tokens: create or replace a
// token record (§6.ADD).
func (s *Server) handleAdminTokens(w http.ResponseWriter, r *http.Request) {
	if _, _, err := s.adminAuth(r); err != nil {
		writeErr(w, err)
		return
	}
	var t config.Token
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeErr(w, cmn.BadRequest("decoding token: %v", err))
		return
	}
	// Omitted keys are auto-generated rather than rejected, per §3's
	// "case-folded lowercase alphanumerics when auto-generated".
	if t.AccessKey == "" {
		t.AccessKey = cmn.GenAccessKey()
	}
	if t.SecretKey == "" {
		t.SecretKey = cmn.GenSecretKey()
	}
	if err := s.Loader.PersistAndReload(r.Context(), store.MetaTokensKey(t.AccessKey), &t); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, &t)
}

// handleAdminDatastores implements POST /api/datastores.
func (s *Server) handleAdminDatastores(w http.ResponseWriter, r *http.Request) {
	if _, _, err := s.adminAuth(r); err != nil {
		writeErr(w, err)
		return
	}
	var d config.Datastore
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeErr(w, cmn.BadRequest("decoding datastore: %v", err))
		return
	}
	if d.Name == "" {
		writeErr(w, cmn.BadRequest("name is required"))
		return
	}
	if err := s.Loader.PersistAndReload(r.Context(), store.MetaDatastoresKey(d.Name), &d); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, &d)
}

// handleAdminLogs implements POST /api/logs.
func (s *Server) handleAdminLogs(w http.ResponseWriter, r *http.Request) {
	if _, _, err := s.adminAuth(r); err != nil {
		writeErr(w, err)
		return
	}
	var l config.Log
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		writeErr(w, cmn.BadRequest("decoding log: %v", err))
		return
	}
	if l.Name == "" {
		writeErr(w, cmn.BadRequest("name is required"))
		return
	}
	if err := config.ValidateCommitWindow(l.CommitWindow); err != nil {
		writeErr(w, err)
		return
	}
	if err := s.Loader.PersistAndReload(r.Context(), store.MetaLogsKey(l.Name), &l); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, &l)
}

// handleAdminAuth implements POST /api/auth/{token}/{log}.
func (s *Server) handleAdminAuth(w http.ResponseWriter, r *http.Request) {
	if _, _, err := s.adminAuth(r); err != nil {
		writeErr(w, err)
		return
	}
	tokenKey, logName, ok := parseAdminAuthPath(r.URL.Path)
	if !ok {
		writeErr(w, cmn.BadRequest("expected /api/auth/{token}/{log}"))
		return
	}
	var a config.LogAuth
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeErr(w, cmn.BadRequest("decoding auth binding: %v", err))
		return
	}
	a.TokenAccessKey, a.LogName = tokenKey, logName
	if err := s.Loader.PersistAndReload(r.Context(), store.MetaAuthKey(tokenKey, logName), &a); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, &a)
}

func parseAdminAuthPath(p string) (token, log string, ok bool) {
	p = strings.TrimPrefix(p, "/api/auth/")
	parts := strings.Split(p, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
