// Package meta implements the meta loader (§4.G): it turns the JSON
// objects under a meta bucket's minsql/meta/ prefix into the in-memory
// config.Config the rest of the daemon reads through config.Owner.
package meta

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/golang/glog"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/minio/minsql/internal/cmn"
	"github.com/minio/minsql/internal/config"
	"github.com/minio/minsql/internal/stats"
	"github.com/minio/minsql/internal/store"
)

// maxConcurrentGets bounds the parallel GETs a reload issues against the
// meta bucket (§4.G: "bounded parallelism, e.g. ≤5").
const maxConcurrentGets = 5

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Loader owns the meta bucket coordinates and rebuilds the process-wide
// Config from scratch whenever Load runs: once at startup and again on
// every PersistAndReload. It does not reload on a schedule.
type Loader struct {
	Adapter store.Adapter
	Meta    *config.Datastore // the datastore holding the meta bucket itself
	Owner   *config.Owner
	Metrics *stats.Metrics
}

func NewLoader(adapter store.Adapter, metaDatastore *config.Datastore, owner *config.Owner, metrics *stats.Metrics) *Loader {
	return &Loader{Adapter: adapter, Meta: metaDatastore, Owner: owner, Metrics: metrics}
}

// Load performs a full reload: LIST minsql/meta/, GET every object with
// at most maxConcurrentGets in flight, classify each by its path, and
// install the result in Owner. Unknown or malformed objects are logged
// and skipped rather than aborting the whole reload (§4.G).
func (l *Loader) Load(ctx context.Context) error {
	keys, errc := l.Adapter.List(ctx, l.Meta, store.MetaPrefix)

	var all []string
	for k := range keys {
		all = append(all, k)
	}
	if err := <-errc; err != nil {
		return cmn.Errf(cmn.KindDatastoreUnreachable, err, "listing meta bucket")
	}

	cfg := config.Empty()
	var mu sync.Mutex
	sem := semaphore.NewWeighted(maxConcurrentGets)
	g, gctx := errgroup.WithContext(ctx)

	for _, key := range all {
		key := key
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			rc, err := l.Adapter.Get(gctx, l.Meta, key)
			if err != nil {
				return cmn.Errf(cmn.KindDatastoreUnreachable, err, "GET %s", key)
			}
			body, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return cmn.Errf(cmn.KindDatastoreUnreachable, err, "reading %s", key)
			}

			mu.Lock()
			defer mu.Unlock()
			if err := apply(cfg, key, body); err != nil {
				l.skip(key, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Hold the writer lock across validation so a concurrent admin
	// mutation can't commit in between a failed validation and the
	// DiscardUpdate that releases it — the same serialization an
	// incremental clone-and-mutate writer gets for free, even though
	// this install is a wholesale replacement rather than a mutation.
	l.Owner.BeginUpdate()
	if err := cfg.Validate(); err != nil {
		l.Owner.DiscardUpdate()
		return err
	}
	l.Owner.CommitUpdate(cfg)
	return nil
}

func (l *Loader) skip(key string, err error) {
	glog.Warningf("minsql: meta: skipping %s: %v", key, err)
	if l.Metrics != nil {
		l.Metrics.MetaReloadErrors.Inc()
	}
}

// apply classifies key by its path segment under minsql/meta/ and
// deserializes body into the matching slot of cfg (§4.G).
func apply(cfg *config.Config, key string, body []byte) error {
	rest := strings.TrimPrefix(key, store.MetaPrefix)
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 2 && parts[0] == "logs":
		var l config.Log
		if err := json.Unmarshal(body, &l); err != nil {
			return err
		}
		cfg.Logs[l.Name] = &l

	case len(parts) == 2 && parts[0] == "datastores":
		var d config.Datastore
		if err := json.Unmarshal(body, &d); err != nil {
			return err
		}
		cfg.Datastores[d.Name] = &d

	case len(parts) == 2 && parts[0] == "tokens":
		var t config.Token
		if err := json.Unmarshal(body, &t); err != nil {
			return err
		}
		cfg.Tokens[t.AccessKey] = &t

	case len(parts) == 3 && parts[0] == "auth":
		var a config.LogAuth
		if err := json.Unmarshal(body, &a); err != nil {
			return err
		}
		byLog, ok := cfg.Auth[parts[1]]
		if !ok {
			byLog = make(map[string]*config.LogAuth)
			cfg.Auth[parts[1]] = byLog
		}
		byLog[parts[2]] = &a

	default:
		return fmt.Errorf("unrecognized meta object kind at %q", key)
	}
	return nil
}

// PersistAndReload marshals v, PUTs it to the meta bucket at key, and
// re-runs the bounded-parallel reload so readers observe the change
// (§6.ADD) — keeping the meta loader exercised by every admin mutation,
// not only at startup.
func (l *Loader) PersistAndReload(ctx context.Context, key string, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return cmn.BadRequest("encoding meta object: %v", err)
	}
	if err := l.Adapter.Put(ctx, l.Meta, key, bytes.NewReader(body), int64(len(body))); err != nil {
		return cmn.Errf(cmn.KindDatastoreUnreachable, err, "persisting %s", key)
	}
	return l.Load(ctx)
}
