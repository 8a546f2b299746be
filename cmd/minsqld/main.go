// Package main is the minsqld executable: it wires together the meta
// loader, ingest buffer manager, and query executor behind the public
// HTTP surface (§6).
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/minio/minsql/internal/config"
	"github.com/minio/minsql/internal/httpapi"
	"github.com/minio/minsql/internal/ingest"
	"github.com/minio/minsql/internal/meta"
	"github.com/minio/minsql/internal/query"
	"github.com/minio/minsql/internal/stats"
	"github.com/minio/minsql/internal/store"
)

// Process flags, the same mechanism cmn/config.go uses for the teacher's
// node binary (§1.ADD: stdlib flag, no CLI framework).
var (
	listenAddr = flag.String("addr", "0.0.0.0:9999", "HTTP listen address (§6)")

	metaEndpoint  = flag.String("meta-endpoint", "", "S3-compatible endpoint hosting the meta bucket")
	metaBucket    = flag.String("meta-bucket", "", "bucket name holding minsql/meta/*")
	metaAccessKey = flag.String("meta-access-key", "", "access key for the meta bucket")
	metaSecretKey = flag.String("meta-secret-key", "", "secret key for the meta bucket")
	metaRegion    = flag.String("meta-region", "us-east-1", "region reported to the meta bucket's endpoint")

	// TLS termination is an external collaborator (§1): these flags are
	// accepted but not acted on beyond a startup warning when
	// -tls-pkcs12 is set; this binary itself always serves plain HTTP.
	pkcs12Path = flag.String("tls-pkcs12", "", "unused by this binary; reserved for an external TLS terminator")
	_          = flag.String("tls-pkcs12-password", "", "unused by this binary; reserved for an external TLS terminator")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()
	defer glog.Flush()

	if *metaBucket == "" || *metaEndpoint == "" || *metaAccessKey == "" || *metaSecretKey == "" {
		glog.Errorf("minsql: missing required meta bucket configuration (-meta-endpoint, -meta-bucket, -meta-access-key, -meta-secret-key)")
		return 1
	}
	if *pkcs12Path != "" {
		glog.Warningf("minsql: -tls-pkcs12 given but TLS termination is out of scope for minsqld; run behind a terminator that consumes it")
	}

	metaDS := &config.Datastore{
		Name:      "meta",
		Endpoint:  *metaEndpoint,
		Bucket:    *metaBucket,
		AccessKey: *metaAccessKey,
		SecretKey: *metaSecretKey,
		Region:    *metaRegion,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	adapter := store.NewS3Adapter()
	if err := adapter.Reachable(ctx, metaDS); err != nil {
		cancel()
		glog.Errorf("minsql: meta bucket %q unreachable at startup: %v", *metaBucket, err)
		return 1
	}
	cancel()

	reg := prometheus.NewRegistry()
	metrics := stats.NewMetrics(reg)

	owner := config.NewOwner()
	loader := meta.NewLoader(adapter, metaDS, owner, metrics)

	loadCtx, loadCancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := loader.Load(loadCtx); err != nil {
		loadCancel()
		glog.Errorf("minsql: initial meta load failed: %v", err)
		return 1
	}
	loadCancel()

	cfg := owner.Get()
	checkCtx, checkCancel := context.WithTimeout(context.Background(), 30*time.Second)
	for _, ds := range cfg.Datastores {
		if err := adapter.Reachable(checkCtx, ds); err != nil {
			checkCancel()
			glog.Errorf("minsql: configured datastore %q unreachable at startup: %v", ds.Name, err)
			return 1
		}
	}
	checkCancel()

	ingestMgr := ingest.NewManager(owner, adapter, metrics)
	ingestMgr.StartTimers(cfg)
	defer ingestMgr.Close()

	srv := &httpapi.Server{
		Owner:   owner,
		Ingest:  ingestMgr,
		Exec:    &query.Executor{Adapter: adapter, Metrics: metrics},
		Loader:  loader,
		Metrics: metrics,
	}

	mux := http.NewServeMux()
	mux.Handle("/", srv.Handler())
	mux.Handle("/debug/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	httpSrv := &http.Server{
		Addr:              *listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		glog.Infof("minsql: listening on %s", *listenAddr)
		serveErr <- httpSrv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			glog.Errorf("minsql: http server exited: %v", err)
			return 1
		}
	case sig := <-sigCh:
		glog.Infof("minsql: received %s, shutting down", sig)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			glog.Errorf("minsql: graceful shutdown failed: %v", err)
			return 1
		}
	}
	glog.Infoln("minsql: terminated OK")
	return 0
}
