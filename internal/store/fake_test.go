package store

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/minio/minsql/internal/config"
)

func timeUTC(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func TestFakeAdapterPutListGet(t *testing.T) {
	a := NewFakeAdapter()
	ds := &config.Datastore{Name: "d1", Bucket: "b"}
	ctx := context.Background()

	key := NewObjectKey("accesslog", timeUTC(2020, 1, 2, 3))
	if err := a.Put(ctx, ds, key, bytes.NewReader([]byte("x\ny\n")), 4); err != nil {
		t.Fatalf("Put: %v", err)
	}

	keys, errc := a.List(ctx, ds, DataPrefix("accesslog"))
	var got []string
	for k := range keys {
		got = append(got, k)
	}
	if err := <-errc; err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 1 || got[0] != key {
		t.Fatalf("List() = %v, want [%s]", got, key)
	}

	rc, err := a.Get(ctx, ds, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer rc.Close()
	buf := new(bytes.Buffer)
	buf.ReadFrom(rc)
	if buf.String() != "x\ny\n" {
		t.Fatalf("Get body = %q, want %q", buf.String(), "x\ny\n")
	}
}

func TestFakeAdapterDown(t *testing.T) {
	a := NewFakeAdapter()
	ds := &config.Datastore{Name: "d1", Bucket: "b"}
	a.SetDown("d1", true)
	ctx := context.Background()

	if err := a.Reachable(ctx, ds); err == nil {
		t.Fatal("expected Reachable to fail while down")
	}
	if err := a.Put(ctx, ds, "k", bytes.NewReader(nil), 0); err == nil {
		t.Fatal("expected Put to fail while down")
	}
}
