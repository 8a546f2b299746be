// Package config holds the in-memory configuration snapshot (tokens,
// datastores, logs, log-auth bindings) and the process-wide owner that
// readers and writers synchronize through.
package config

import (
	"regexp"
	"time"

	"github.com/minio/minsql/internal/cmn"
)

// Token is a bearer credential. AccessKey is unique across the config.
type Token struct {
	AccessKey   string `json:"access_key"`
	SecretKey   string `json:"secret_key"`
	Description string `json:"description,omitempty"`
	IsAdmin     bool   `json:"is_admin"`
	Enabled     bool   `json:"enabled"`
}

// Datastore is an S3-compatible bucket plus the credentials to reach it.
type Datastore struct {
	Name      string `json:"name"`
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	Prefix    string `json:"prefix,omitempty"`
	Region    string `json:"region,omitempty"`
}

// Log is a named stream of text lines, persisted across one or more
// datastores on a timed or immediate commit schedule.
type Log struct {
	Name         string   `json:"name"`
	Datastores   []string `json:"datastores"`
	CommitWindow string   `json:"commit_window"`
}

var commitWindowRe = regexp.MustCompile(`^[0-9]+[sm]$`)

// Immediate reports whether this log commits every request rather than
// buffering (commit_window of "0", "0s", or "0m").
func (l *Log) Immediate() bool {
	return l.CommitWindow == "0" || l.CommitWindow == "0s" || l.CommitWindow == "0m"
}

// Window parses CommitWindow into a time.Duration. Callers should have
// already validated the literal with ValidateCommitWindow.
func (l *Log) Window() (time.Duration, error) {
	if l.Immediate() {
		return 0, nil
	}
	unit := l.CommitWindow[len(l.CommitWindow)-1]
	n := l.CommitWindow[:len(l.CommitWindow)-1]
	var d time.Duration
	switch unit {
	case 's':
		d = time.Second
	case 'm':
		d = time.Minute
	}
	var mult int64
	for _, c := range n {
		mult = mult*10 + int64(c-'0')
	}
	return time.Duration(mult) * d, nil
}

// ValidateCommitWindow checks the literal against the spec's grammar.
func ValidateCommitWindow(s string) error {
	if s == "0" || commitWindowRe.MatchString(s) {
		return nil
	}
	return cmn.BadRequest("invalid commit_window %q", s)
}

// API enumerates the operations a LogAuth binding may grant.
type API string

const (
	APISearch API = "search"
	APIStore  API = "store"
)

// LogAuth binds a token to a log with a set of permitted APIs.
type LogAuth struct {
	TokenAccessKey string    `json:"token_access_key"`
	LogName        string    `json:"log_name"`
	API            []API     `json:"api"`
	Expire         time.Time `json:"expire,omitempty"`
	Status         string    `json:"status"` // "enabled" | "disabled"
}

func (a *LogAuth) active() bool {
	if a.Status == "disabled" {
		return false
	}
	if !a.Expire.IsZero() && time.Now().After(a.Expire) {
		return false
	}
	return true
}

func (a *LogAuth) allows(api API) bool {
	if !a.active() {
		return false
	}
	for _, p := range a.API {
		if p == api {
			return true
		}
	}
	return false
}
