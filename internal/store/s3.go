package store

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/minio/minsql/internal/config"
)

// DefaultCallTimeout is the per-call deadline applied to every adapter
// call whose context carries no deadline of its own (§5: "suggested
// 30s"). It is the same for every datastore; a datastore record has no
// timeout setting of its own.
const DefaultCallTimeout = 30 * time.Second

// S3Adapter is the production Adapter, backed by one *s3.S3 client per
// distinct datastore (keyed by name), built lazily and cached — the same
// per-provider client-caching idiom as the teacher's
// ais/backend.AISBackendProvider.remote map.
type S3Adapter struct {
	mu      sync.RWMutex
	clients map[string]*s3.S3
}

func NewS3Adapter() *S3Adapter {
	return &S3Adapter{clients: make(map[string]*s3.S3)}
}

func (a *S3Adapter) client(ds *config.Datastore) (*s3.S3, error) {
	a.mu.RLock()
	c, ok := a.clients[ds.Name]
	a.mu.RUnlock()
	if ok {
		return c, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if c, ok := a.clients[ds.Name]; ok {
		return c, nil
	}

	region := ds.Region
	if region == "" {
		region = "us-east-1"
	}
	sess, err := session.NewSession(&aws.Config{
		Endpoint:         aws.String(ds.Endpoint),
		Region:           aws.String(region),
		Credentials:      credentials.NewStaticCredentials(ds.AccessKey, ds.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true), // required for non-AWS S3-compatible endpoints
	})
	if err != nil {
		return nil, errors.Wrapf(err, "building s3 session for datastore %q", ds.Name)
	}
	c = s3.New(sess)
	a.clients[ds.Name] = c
	return c, nil
}

func classify(err error) ErrKind {
	if err == nil {
		return ErrOther
	}
	aerr, ok := err.(awserr.Error)
	if !ok {
		return ErrOther
	}
	switch aerr.Code() {
	case s3.ErrCodeNoSuchBucket:
		return ErrNoSuchBucket
	case "RequestError", "RequestTimeoutException", request_canceled:
		return ErrUnreachable
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return ErrAuth
	case "InternalError", "ServiceUnavailable", "SlowDown":
		return ErrTransient
	default:
		return ErrOther
	}
}

const request_canceled = "RequestCanceled"

func wrapErr(ds *config.Datastore, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: classify(err), Datastore: ds.Name, Err: err}
}

func callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, DefaultCallTimeout)
}

func (a *S3Adapter) List(ctx context.Context, ds *config.Datastore, prefix string) (<-chan string, <-chan error) {
	keys := make(chan string, 64)
	errc := make(chan error, 1)

	cli, err := a.client(ds)
	if err != nil {
		close(keys)
		errc <- wrapErr(ds, err)
		close(errc)
		return keys, errc
	}

	go func() {
		defer close(keys)
		defer close(errc)
		cctx, cancel := callCtx(ctx)
		defer cancel()

		fullPrefix := ds.Prefix + prefix
		err := cli.ListObjectsV2PagesWithContext(cctx, &s3.ListObjectsV2Input{
			Bucket: aws.String(ds.Bucket),
			Prefix: aws.String(fullPrefix),
		}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
			for _, obj := range page.Contents {
				select {
				case keys <- aws.StringValue(obj.Key):
				case <-ctx.Done():
					return false
				}
			}
			return true
		})
		if err != nil {
			glog.Warningf("list %s/%s failed: %v", ds.Name, fullPrefix, err)
			errc <- wrapErr(ds, err)
		}
	}()
	return keys, errc
}

func (a *S3Adapter) Get(ctx context.Context, ds *config.Datastore, key string) (io.ReadCloser, error) {
	cli, err := a.client(ds)
	if err != nil {
		return nil, wrapErr(ds, err)
	}
	cctx, cancel := callCtx(ctx)
	out, err := cli.GetObjectWithContext(cctx, &s3.GetObjectInput{
		Bucket: aws.String(ds.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		cancel()
		return nil, wrapErr(ds, err)
	}
	return &cancelOnCloseReader{ReadCloser: out.Body, cancel: cancel}, nil
}

type cancelOnCloseReader struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *cancelOnCloseReader) Close() error {
	defer r.cancel()
	return r.ReadCloser.Close()
}

func (a *S3Adapter) Put(ctx context.Context, ds *config.Datastore, key string, body io.Reader, size int64) error {
	cli, err := a.client(ds)
	if err != nil {
		return wrapErr(ds, err)
	}
	cctx, cancel := callCtx(ctx)
	defer cancel()

	rs, ok := body.(io.ReadSeeker)
	if !ok {
		rs = aws.ReadSeekCloser(body)
	}
	_, err = cli.PutObjectWithContext(cctx, &s3.PutObjectInput{
		Bucket:        aws.String(ds.Bucket),
		Key:           aws.String(key),
		Body:          rs,
		ContentLength: aws.Int64(size),
	})
	return wrapErr(ds, err)
}

func (a *S3Adapter) Delete(ctx context.Context, ds *config.Datastore, key string) error {
	cli, err := a.client(ds)
	if err != nil {
		return wrapErr(ds, err)
	}
	cctx, cancel := callCtx(ctx)
	defer cancel()
	_, err = cli.DeleteObjectWithContext(cctx, &s3.DeleteObjectInput{
		Bucket: aws.String(ds.Bucket),
		Key:    aws.String(key),
	})
	return wrapErr(ds, err)
}

// Reachable performs a minimal, zero-result-tolerant LIST to confirm the
// datastore's bucket and credentials work (§3 Datastore invariant).
func (a *S3Adapter) Reachable(ctx context.Context, ds *config.Datastore) error {
	cli, err := a.client(ds)
	if err != nil {
		return wrapErr(ds, err)
	}
	cctx, cancel := callCtx(ctx)
	defer cancel()
	_, err = cli.ListObjectsV2WithContext(cctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(ds.Bucket),
		MaxKeys: aws.Int64(1),
	})
	return wrapErr(ds, err)
}

var _ Adapter = (*S3Adapter)(nil)
