package meta

import (
	"context"
	"testing"

	"github.com/minio/minsql/internal/config"
	"github.com/minio/minsql/internal/store"
)

func metaDS() *config.Datastore { return &config.Datastore{Name: "meta"} }

func TestLoadPopulatesConfig(t *testing.T) {
	adapter := store.NewFakeAdapter()
	adapter.Seed("meta", store.MetaDatastoresKey("d1"), []byte(`{"name":"d1","endpoint":"http://x","bucket":"b"}`))
	adapter.Seed("meta", store.MetaLogsKey("accesslog"), []byte(`{"name":"accesslog","datastores":["d1"],"commit_window":"0"}`))
	adapter.Seed("meta", store.MetaTokensKey("AKEY"), []byte(`{"access_key":"AKEY","secret_key":"SKEY","is_admin":true,"enabled":true}`))
	adapter.Seed("meta", store.MetaAuthKey("AKEY", "accesslog"), []byte(`{"token_access_key":"AKEY","log_name":"accesslog","api":["search","store"],"status":"enabled"}`))

	owner := config.NewOwner()
	l := NewLoader(adapter, metaDS(), owner, nil)
	if err := l.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	cfg := owner.Get()
	if _, ok := cfg.Datastores["d1"]; !ok {
		t.Error("expected datastore d1 to be loaded")
	}
	if _, ok := cfg.Logs["accesslog"]; !ok {
		t.Error("expected log accesslog to be loaded")
	}
	if _, ok := cfg.Tokens["AKEY"]; !ok {
		t.Error("expected token AKEY to be loaded")
	}
	if _, ok := cfg.Auth["AKEY"]["accesslog"]; !ok {
		t.Error("expected auth binding AKEY/accesslog to be loaded")
	}
}

func TestLoadSkipsUnrecognizedKind(t *testing.T) {
	adapter := store.NewFakeAdapter()
	adapter.Seed("meta", store.MetaDatastoresKey("d1"), []byte(`{"name":"d1"}`))
	adapter.Seed("meta", "minsql/meta/bogus/thing", []byte(`{}`))

	owner := config.NewOwner()
	l := NewLoader(adapter, metaDS(), owner, nil)
	if err := l.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	cfg := owner.Get()
	if len(cfg.Datastores) != 1 {
		t.Errorf("expected exactly one datastore, got %d", len(cfg.Datastores))
	}
}

func TestLoadFailsValidationOnDanglingLogReference(t *testing.T) {
	adapter := store.NewFakeAdapter()
	adapter.Seed("meta", store.MetaLogsKey("orphan"), []byte(`{"name":"orphan","datastores":["missing"],"commit_window":"0"}`))

	owner := config.NewOwner()
	l := NewLoader(adapter, metaDS(), owner, nil)
	if err := l.Load(context.Background()); err == nil {
		t.Fatal("expected validation error for log referencing unknown datastore")
	}
}

func TestPersistAndReloadRoundTrips(t *testing.T) {
	adapter := store.NewFakeAdapter()
	owner := config.NewOwner()
	l := NewLoader(adapter, metaDS(), owner, nil)

	ds := &config.Datastore{Name: "d1", Bucket: "b"}
	if err := l.PersistAndReload(context.Background(), store.MetaDatastoresKey("d1"), ds); err != nil {
		t.Fatal(err)
	}
	cfg := owner.Get()
	if _, ok := cfg.Datastores["d1"]; !ok {
		t.Error("expected datastore to be visible after PersistAndReload")
	}
}
