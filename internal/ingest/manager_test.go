package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/minio/minsql/internal/config"
	"github.com/minio/minsql/internal/store"
)

func testOwner(cfg *config.Config) *config.Owner {
	o := config.NewOwner()
	o.Put(cfg)
	return o
}

// TestAppendImmediateCommitScenarioS1 exercises the commit_window=0 path:
// a single PUT must land as one MSL object with the exact request body,
// synchronously, before Append returns.
func TestAppendImmediateCommitScenarioS1(t *testing.T) {
	cfg := config.Empty()
	cfg.Datastores["d1"] = &config.Datastore{Name: "d1"}
	cfg.Logs["accesslog"] = &config.Log{Name: "accesslog", Datastores: []string{"d1"}, CommitWindow: "0"}

	adapter := store.NewFakeAdapter()
	m := NewManager(testOwner(cfg), adapter, nil)

	body := "192.168.0.1 GET /a\n"
	if err := m.Append(context.Background(), "accesslog", []byte(body)); err != nil {
		t.Fatal(err)
	}

	objs := adapter.Objects("d1")
	if len(objs) != 1 {
		t.Fatalf("expected exactly one object, got %d", len(objs))
	}
	for _, v := range objs {
		if string(v) != body {
			t.Errorf("object body = %q, want %q", v, body)
		}
	}
}

// TestAppendBufferedAccumulatesScenarioS2 exercises the buffered path: two
// sequential appends below the size threshold must coalesce into a single
// object once flushed, concatenated byte-for-byte in append order.
func TestAppendBufferedAccumulatesScenarioS2(t *testing.T) {
	cfg := config.Empty()
	cfg.Datastores["d1"] = &config.Datastore{Name: "d1"}
	cfg.Logs["log"] = &config.Log{Name: "log", Datastores: []string{"d1"}, CommitWindow: "60m"}

	adapter := store.NewFakeAdapter()
	m := NewManager(testOwner(cfg), adapter, nil)

	if err := m.Append(context.Background(), "log", []byte("x\n")); err != nil {
		t.Fatal(err)
	}
	if err := m.Append(context.Background(), "log", []byte("y\n")); err != nil {
		t.Fatal(err)
	}
	if len(adapter.Objects("d1")) != 0 {
		t.Fatal("buffered log must not write until flushed")
	}

	if err := m.Flush(context.Background(), "log"); err != nil {
		t.Fatal(err)
	}
	objs := adapter.Objects("d1")
	if len(objs) != 1 {
		t.Fatalf("expected exactly one object after flush, got %d", len(objs))
	}
	for _, v := range objs {
		if string(v) != "x\ny\n" {
			t.Errorf("object body = %q, want %q", v, "x\ny\n")
		}
	}
}

// TestAppendSizeThresholdTriggersAsyncFlushScenarioS3 exercises the size-
// triggered path: crossing FlushSizeThreshold must schedule a flush without
// Append itself blocking on it.
func TestAppendSizeThresholdTriggersAsyncFlushScenarioS3(t *testing.T) {
	cfg := config.Empty()
	cfg.Datastores["d1"] = &config.Datastore{Name: "d1"}
	cfg.Logs["log"] = &config.Log{Name: "log", Datastores: []string{"d1"}, CommitWindow: "60m"}

	adapter := store.NewFakeAdapter()
	m := NewManager(testOwner(cfg), adapter, nil)

	big := make([]byte, FlushSizeThreshold+1)
	for i := range big {
		big[i] = 'a'
	}

	if err := m.Append(context.Background(), "log", big); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(adapter.Objects("d1")) == 1 {
			m.Close()
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	m.Close()
	t.Fatal("expected size-triggered flush to write one object within the deadline")
}

func TestFlushOnEmptyBufferIsNoOp(t *testing.T) {
	cfg := config.Empty()
	cfg.Datastores["d1"] = &config.Datastore{Name: "d1"}
	cfg.Logs["log"] = &config.Log{Name: "log", Datastores: []string{"d1"}, CommitWindow: "60m"}

	adapter := store.NewFakeAdapter()
	m := NewManager(testOwner(cfg), adapter, nil)

	if err := m.Flush(context.Background(), "log"); err != nil {
		t.Fatal(err)
	}
	if len(adapter.Objects("d1")) != 0 {
		t.Error("flushing an empty buffer must not write an object")
	}
}

func TestAppendUnknownLogReturnsNotFound(t *testing.T) {
	cfg := config.Empty()
	m := NewManager(testOwner(cfg), store.NewFakeAdapter(), nil)
	err := m.Append(context.Background(), "nope", []byte("x\n"))
	if err == nil {
		t.Fatal("expected error for unknown log")
	}
}

// TestFlushFanOutIsBestEffort exercises §9 Open Question 1: one datastore
// being down must not prevent the flush from succeeding against the
// reachable ones, and Flush itself must not return an error.
func TestFlushFanOutIsBestEffort(t *testing.T) {
	cfg := config.Empty()
	cfg.Datastores["d1"] = &config.Datastore{Name: "d1"}
	cfg.Datastores["d2"] = &config.Datastore{Name: "d2"}
	cfg.Logs["log"] = &config.Log{Name: "log", Datastores: []string{"d1", "d2"}, CommitWindow: "60m"}

	adapter := store.NewFakeAdapter()
	adapter.SetDown("d1", true)
	m := NewManager(testOwner(cfg), adapter, nil)

	if err := m.Append(context.Background(), "log", []byte("x\n")); err != nil {
		t.Fatal(err)
	}
	if err := m.Flush(context.Background(), "log"); err != nil {
		t.Fatalf("flush must be best-effort, got error: %v", err)
	}
	if len(adapter.Objects("d2")) != 1 {
		t.Error("expected the reachable datastore to still receive the object")
	}
}
