package store

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/minio/minsql/internal/config"
)

// FakeAdapter is an in-memory Adapter double used by package tests (the
// ingest, query, and meta tests that cover scenarios S1–S3, S4 and S6)
// and by the httpapi integration tests that exercise S1 and S4 end to end,
// all without a network dependency — grounded in the
// teacher's practice of swapping BackendProvider implementations behind
// an interface (ais/backend/ais.go's interface guard).
type FakeAdapter struct {
	mu      sync.Mutex
	objects map[string]map[string][]byte // datastore name -> key -> body
	down    map[string]bool              // datastore name -> simulated unreachable
}

func NewFakeAdapter() *FakeAdapter {
	return &FakeAdapter{
		objects: make(map[string]map[string][]byte),
		down:    make(map[string]bool),
	}
}

// SetDown marks a datastore as unreachable for subsequent calls, used to
// exercise §7's QueryTransient / IngestTransient paths.
func (f *FakeAdapter) SetDown(dsName string, down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down[dsName] = down
}

// Seed preloads an object, for tests that assert query behavior against
// pre-existing data.
func (f *FakeAdapter) Seed(dsName, key string, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[dsName]
	if !ok {
		b = make(map[string][]byte)
		f.objects[dsName] = b
	}
	b[key] = body
}

// Objects returns a snapshot of every key written to dsName, for test
// assertions.
func (f *FakeAdapter) Objects(dsName string) map[string][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string][]byte)
	for k, v := range f.objects[dsName] {
		out[k] = append([]byte(nil), v...)
	}
	return out
}

func (f *FakeAdapter) isDown(dsName string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.down[dsName]
}

func (f *FakeAdapter) List(ctx context.Context, ds *config.Datastore, prefix string) (<-chan string, <-chan error) {
	keys := make(chan string, 16)
	errc := make(chan error, 1)
	if f.isDown(ds.Name) {
		close(keys)
		errc <- &Error{Kind: ErrUnreachable, Datastore: ds.Name, Err: io.ErrClosedPipe}
		close(errc)
		return keys, errc
	}

	f.mu.Lock()
	var matched []string
	for k := range f.objects[ds.Name] {
		if strings.HasPrefix(k, ds.Prefix+prefix) {
			matched = append(matched, k)
		}
	}
	f.mu.Unlock()
	sort.Strings(matched)

	go func() {
		defer close(keys)
		defer close(errc)
		for _, k := range matched {
			select {
			case keys <- k:
			case <-ctx.Done():
				return
			}
		}
	}()
	return keys, errc
}

func (f *FakeAdapter) Get(ctx context.Context, ds *config.Datastore, key string) (io.ReadCloser, error) {
	if f.isDown(ds.Name) {
		return nil, &Error{Kind: ErrUnreachable, Datastore: ds.Name, Err: io.ErrClosedPipe}
	}
	f.mu.Lock()
	body, ok := f.objects[ds.Name][key]
	f.mu.Unlock()
	if !ok {
		return nil, &Error{Kind: ErrOther, Datastore: ds.Name, Err: io.ErrUnexpectedEOF}
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

func (f *FakeAdapter) Put(ctx context.Context, ds *config.Datastore, key string, body io.Reader, size int64) error {
	if f.isDown(ds.Name) {
		return &Error{Kind: ErrUnreachable, Datastore: ds.Name, Err: io.ErrClosedPipe}
	}
	buf, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.Seed(ds.Name, key, buf)
	return nil
}

func (f *FakeAdapter) Delete(ctx context.Context, ds *config.Datastore, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects[ds.Name], key)
	return nil
}

func (f *FakeAdapter) Reachable(ctx context.Context, ds *config.Datastore) error {
	if f.isDown(ds.Name) {
		return &Error{Kind: ErrUnreachable, Datastore: ds.Name, Err: io.ErrClosedPipe}
	}
	return nil
}

var _ Adapter = (*FakeAdapter)(nil)
