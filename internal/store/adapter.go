// Package store implements the object-store adapter: a uniform
// list/get/put/delete surface over S3-compatible endpoints, one client per
// configured datastore.
package store

import (
	"context"
	"io"

	"github.com/minio/minsql/internal/config"
)

// ErrKind is the adapter's own failure taxonomy (§4.A), distinct from and
// narrower than the HTTP-facing cmn.Kind taxonomy: adapter callers map
// these onto cmn.Kind at the point they decide an HTTP response.
type ErrKind int

const (
	ErrOther ErrKind = iota
	ErrUnreachable
	ErrNoSuchBucket
	ErrAuth
	ErrTransient
)

func (k ErrKind) String() string {
	switch k {
	case ErrUnreachable:
		return "Unreachable"
	case ErrNoSuchBucket:
		return "NoSuchBucket"
	case ErrAuth:
		return "Auth"
	case ErrTransient:
		return "Transient"
	default:
		return "Other"
	}
}

// Error wraps an adapter-level failure with its Kind and the datastore it
// occurred against.
type Error struct {
	Kind      ErrKind
	Datastore string
	Err       error
}

func (e *Error) Error() string {
	return e.Kind.String() + " (" + e.Datastore + "): " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Adapter is the uniform object-store surface the ingest and query
// pipelines depend on. The real implementation is backed by aws-sdk-go;
// tests substitute FakeAdapter.
type Adapter interface {
	// List streams keys under prefix in the datastore's bucket. The
	// returned channel is closed when listing completes or ctx is done;
	// a non-nil error is sent (at most once) on errc before closing.
	List(ctx context.Context, ds *config.Datastore, prefix string) (keys <-chan string, errc <-chan error)

	// Get streams the object body. Callers must Close the reader.
	Get(ctx context.Context, ds *config.Datastore, key string) (io.ReadCloser, error)

	// Put writes body (size bytes) to key.
	Put(ctx context.Context, ds *config.Datastore, key string, body io.Reader, size int64) error

	Delete(ctx context.Context, ds *config.Datastore, key string) error

	// Reachable performs a cheap LIST to confirm the datastore's bucket
	// is reachable with its configured credentials (§3 Datastore
	// invariant, used at startup, §6 exit codes).
	Reachable(ctx context.Context, ds *config.Datastore) error
}
