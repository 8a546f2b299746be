package query

import (
	"bufio"
	"context"
	"io"

	"github.com/golang/glog"

	"github.com/minio/minsql/internal/config"
	"github.com/minio/minsql/internal/stats"
	"github.com/minio/minsql/internal/store"
)

// maxLineBuffer bounds how long a single line may be before the scanner
// gives up; generous for log lines while still bounding memory.
const maxLineBuffer = 1 << 20 // 1 MiB

// chanCapacity is the bounded channel capacity between the executor's
// producer stage and the HTTP response writer — the redesign §9 calls
// for explicitly in place of an unbounded channel.
const chanCapacity = 256

// Executor runs parsed, planned statements against an Adapter and streams
// formatted output (§4.F).
type Executor struct {
	Adapter store.Adapter
	Metrics *stats.Metrics
}

// Execute runs every plan in order, concatenating their output into w.
// Statements run sequentially; within each statement, LIST/GET/project/
// filter/emit form a pipelined, bounded-buffer producer feeding w.
func (e *Executor) Execute(ctx context.Context, plans []*Plan, cfg *config.Config, w io.Writer) error {
	for _, plan := range plans {
		if err := e.executeStatement(ctx, plan, cfg, w); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) executeStatement(ctx context.Context, plan *Plan, cfg *config.Config, w io.Writer) error {
	log := cfg.Logs[plan.Log]
	datastores, err := cfg.DatastoresFor(log)
	if err != nil {
		return err
	}

	lines := make(chan string, chanCapacity)
	go e.produce(ctx, plan, datastores, lines)

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if _, err := io.WriteString(w, line); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// produce lists and reads every object across the log's datastores, in
// declared datastore order (§5: "output is concatenated in the log's
// declared datastore order"), feeding formatted+terminated lines into
// out. It never sorts across datastores or objects beyond the adapter's
// own LIST order (§5).
func (e *Executor) produce(ctx context.Context, plan *Plan, datastores []*config.Datastore, out chan<- string) {
	defer close(out)
	for _, ds := range datastores {
		keys, errc := e.Adapter.List(ctx, ds, store.DataPrefix(plan.Log))
	keyLoop:
		for {
			select {
			case key, ok := <-keys:
				if !ok {
					break keyLoop
				}
				if err := e.streamObject(ctx, ds, key, plan, out); err != nil {
					// QueryTransient (§7): log and move on to the next
					// object; this object's contribution truncates.
					glog.Warningf("minsql: query: object %s/%s truncated: %v", ds.Name, key, err)
					if e.Metrics != nil {
						e.Metrics.QueryObjectErrors.Inc()
					}
				}
			case <-ctx.Done():
				return
			}
		}
		if err := <-errc; err != nil {
			glog.Warningf("minsql: query: list %s on datastore %s failed: %v", plan.Log, ds.Name, err)
			if e.Metrics != nil {
				e.Metrics.QueryObjectErrors.Inc()
			}
		}
	}
}

// streamObject GETs one object, splits it into lines, and for each line
// that passes the filter, pushes its formatted (newline-terminated)
// output onto out (§4.F steps 3–4e).
func (e *Executor) streamObject(ctx context.Context, ds *config.Datastore, key string, plan *Plan, out chan<- string) error {
	rc, err := e.Adapter.Get(ctx, ds, key)
	if err != nil {
		return err
	}
	defer rc.Close()

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBuffer)
	for sc.Scan() {
		line := sc.Text()
		if e.Metrics != nil {
			e.Metrics.QueryLinesScanned.Inc()
		}
		values := Project(plan, line)
		if !Evaluate(plan.Predicate, line, values) {
			continue
		}
		formatted := Format(plan, line, values) + "\n"
		select {
		case out <- formatted:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return sc.Err()
}
