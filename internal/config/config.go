package config

import (
	"github.com/minio/minsql/internal/cmn"
)

// Config is the full in-memory snapshot of tokens, datastores, logs, and
// log-auth bindings. It is always replaced wholesale (clone-and-swap); it
// is never mutated in place while shared with readers.
type Config struct {
	Tokens     map[string]*Token     // by access_key
	Datastores map[string]*Datastore // by name
	Logs       map[string]*Log       // by name
	// Auth is keyed by token access_key, then by log name, matching the
	// meta bucket's own path layout (minsql/meta/auth/<token>/<log>).
	Auth map[string]map[string]*LogAuth
}

// Empty returns a Config with all maps initialized but no entries, the
// config a fresh process starts with before the meta loader runs.
func Empty() *Config {
	return &Config{
		Tokens:     make(map[string]*Token),
		Datastores: make(map[string]*Datastore),
		Logs:       make(map[string]*Log),
		Auth:       make(map[string]map[string]*LogAuth),
	}
}

// clone performs a structural copy deep enough that a writer may mutate
// the returned Config without affecting any snapshot a reader is holding.
func (c *Config) clone() *Config {
	out := Empty()
	for k, v := range c.Tokens {
		t := *v
		out.Tokens[k] = &t
	}
	for k, v := range c.Datastores {
		d := *v
		out.Datastores[k] = &d
	}
	for k, v := range c.Logs {
		l := *v
		ds := make([]string, len(v.Datastores))
		copy(ds, v.Datastores)
		l.Datastores = ds
		out.Logs[k] = &l
	}
	for tok, byLog := range c.Auth {
		m := make(map[string]*LogAuth, len(byLog))
		for log, a := range byLog {
			la := *a
			m[log] = &la
		}
		out.Auth[tok] = m
	}
	return out
}

// Validate enforces §3's cross-entity invariants: every LogAuth references
// an existing log, every log references existing datastores, and every
// log's commit_window matches the grammar.
func (c *Config) Validate() error {
	for _, l := range c.Logs {
		if len(l.Datastores) == 0 {
			return cmn.ConfigInvalid("log %q references no datastores", l.Name)
		}
		for _, dsName := range l.Datastores {
			if _, ok := c.Datastores[dsName]; !ok {
				return cmn.ConfigInvalid("log %q references unknown datastore %q", l.Name, dsName)
			}
		}
		if err := ValidateCommitWindow(l.CommitWindow); err != nil {
			return cmn.ConfigInvalid("log %q: %v", l.Name, err)
		}
	}
	for tok, byLog := range c.Auth {
		if _, ok := c.Tokens[tok]; !ok {
			return cmn.ConfigInvalid("auth binding references unknown token %q", tok)
		}
		for logName := range byLog {
			if _, ok := c.Logs[logName]; !ok {
				return cmn.ConfigInvalid("auth binding references unknown log %q", logName)
			}
		}
	}
	return nil
}

// Authorize resolves whether the given token is permitted the API on the
// named log. An admin token bypasses LogAuth entirely (§3.ADD).
func (c *Config) Authorize(accessKey, logName string, api API) error {
	tok, ok := c.Tokens[accessKey]
	if !ok || !tok.Enabled {
		return cmn.AuthFailure("unknown or disabled token")
	}
	if _, ok := c.Logs[logName]; !ok {
		return cmn.NotFound("unknown log %q", logName)
	}
	if tok.IsAdmin {
		return nil
	}
	byLog, ok := c.Auth[accessKey]
	if !ok {
		return cmn.AuthFailure("no auth binding for token on log %q", logName)
	}
	binding, ok := byLog[logName]
	if !ok || !binding.allows(api) {
		return cmn.AuthFailure("token not authorized for %q on log %q", api, logName)
	}
	return nil
}

// ResolveToken finds the token matching accessKey and checks secretKey.
func (c *Config) ResolveToken(accessKey, secretKey string) (*Token, error) {
	tok, ok := c.Tokens[accessKey]
	if !ok || !tok.Enabled || tok.SecretKey != secretKey {
		return nil, cmn.AuthFailure("invalid token")
	}
	return tok, nil
}

// DatastoresFor returns the resolved datastore records for a log, in the
// log's declared order.
func (c *Config) DatastoresFor(l *Log) ([]*Datastore, error) {
	out := make([]*Datastore, 0, len(l.Datastores))
	for _, name := range l.Datastores {
		d, ok := c.Datastores[name]
		if !ok {
			return nil, cmn.ConfigInvalid("log %q references unknown datastore %q", l.Name, name)
		}
		out = append(out, d)
	}
	return out, nil
}
