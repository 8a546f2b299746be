// Package ingest implements the ingest buffer manager (§4.E): a per-log
// double-buffer queue that coalesces PUT payloads into large MSL objects,
// flushed on a size threshold or a commit-window timer.
package ingest

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/minio/minsql/internal/cmn"
	"github.com/minio/minsql/internal/cmn/debug"
	"github.com/minio/minsql/internal/config"
	"github.com/minio/minsql/internal/stats"
	"github.com/minio/minsql/internal/store"
)

// FlushSizeThreshold is the front-segment byte threshold that triggers an
// asynchronous flush (§4.E: "5 MiB").
const FlushSizeThreshold = 5 << 20

// segment is one element of a log's ingest buffer queue (§3). Only the
// front segment of a logBuffer accepts appends; once rotated out it is
// immediately handed to flushNow and discarded.
type segment struct {
	totalBytes uint64
	payloads   [][]byte
}

func newSegment() *segment { return &segment{} }

func (s *segment) append(payload []byte) {
	s.payloads = append(s.payloads, payload)
	s.totalBytes += uint64(len(payload))
}

// logBuffer holds one log's front segment under an exclusive lock, never
// held across an adapter call (§5).
type logBuffer struct {
	mu    sync.Mutex
	front *segment
}

// Manager owns every log's ingest buffer plus the per-log commit-window
// timers.
type Manager struct {
	owner   *config.Owner
	adapter store.Adapter
	metrics *stats.Metrics

	mu      sync.Mutex // protects bufs and tickers maps' structure
	bufs    map[string]*logBuffer
	tickers map[string]*time.Ticker
	stopped chan struct{}
	wg      sync.WaitGroup
}

func NewManager(owner *config.Owner, adapter store.Adapter, metrics *stats.Metrics) *Manager {
	return &Manager{
		owner:   owner,
		adapter: adapter,
		metrics: metrics,
		bufs:    make(map[string]*logBuffer),
		tickers: make(map[string]*time.Ticker),
		stopped: make(chan struct{}),
	}
}

func (m *Manager) bufferFor(logName string) *logBuffer {
	m.mu.Lock()
	defer m.mu.Unlock()
	lb, ok := m.bufs[logName]
	if !ok {
		lb = &logBuffer{front: newSegment()}
		m.bufs[logName] = lb
	}
	return lb
}

// Append buffers payload for logName, per §4.E's append operation. For an
// immediate-commit log (commit_window == 0) it flushes synchronously on
// the calling goroutine and returns a 507-mapped error on failure; for a
// buffered log it appends under the log's lock and, if the front segment
// crossed the size threshold, schedules a non-blocking asynchronous
// flush.
func (m *Manager) Append(ctx context.Context, logName string, payload []byte) error {
	cfg := m.owner.Get()
	log, ok := cfg.Logs[logName]
	if !ok {
		return cmn.NotFound("unknown log %q", logName)
	}

	if m.metrics != nil {
		lines := bytes.Count(payload, []byte{'\n'})
		if len(payload) > 0 && payload[len(payload)-1] != '\n' {
			lines++
		}
		m.metrics.IngestLinesTotal.WithLabelValues(logName).Add(float64(lines))
		m.metrics.IngestBytesTotal.WithLabelValues(logName).Add(float64(len(payload)))
	}

	if log.Immediate() {
		if err := m.flushNow(ctx, logName, [][]byte{payload}, true); err != nil {
			return cmn.Errf(cmn.KindIngestTransient, err, "immediate commit failed for log %q", logName)
		}
		return nil
	}

	lb := m.bufferFor(logName)
	lb.mu.Lock()
	lb.front.append(payload)
	overThreshold := lb.front.totalBytes > FlushSizeThreshold
	lb.mu.Unlock()

	if overThreshold {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			// Deliberately not ctx: the request that tripped the
			// threshold may finish and cancel its context before this
			// flush completes (§4.E: "schedule ... non-blocking").
			if err := m.Flush(context.Background(), logName); err != nil {
				glog.Errorf("minsql: ingest: size-triggered flush of %q failed: %v", logName, err)
			}
		}()
	}
	return nil
}

// Flush rotates logName's front segment into a sealed one (atomically,
// under the log's lock) and writes it out. A no-op if the front segment
// is empty (§4.E/§8 property 2).
func (m *Manager) Flush(ctx context.Context, logName string) error {
	lb := m.bufferFor(logName)

	lb.mu.Lock()
	if lb.front.totalBytes == 0 {
		lb.mu.Unlock()
		return nil
	}
	sealed := lb.front
	lb.front = newSegment()
	debug.Assert(sealed.totalBytes > 0, "ingest: sealed segment must be non-empty")
	debug.Assert(lb.front.totalBytes == 0, "ingest: rotated-in front segment must start empty")
	lb.mu.Unlock()

	return m.flushNow(ctx, logName, sealed.payloads, false)
}

// flushNow writes one new MSL object per datastore in the log's declared
// order, concurrently, per a best-effort fan-out policy: a failed
// datastore write is logged and counted but the payloads are not
// re-queued (§4.E, §9 Open Question 1). With strict set (immediate
// commit), a failed datastore write is also returned to the caller;
// otherwise it is not.
func (m *Manager) flushNow(ctx context.Context, logName string, payloads [][]byte, strict bool) error {
	if len(payloads) == 0 {
		return nil
	}
	cfg := m.owner.Get()
	log, ok := cfg.Logs[logName]
	if !ok {
		return cmn.NotFound("unknown log %q", logName)
	}
	datastores, err := cfg.DatastoresFor(log)
	if err != nil {
		return err
	}

	body := bytes.Join(payloads, nil)
	key := store.NewObjectKey(logName, time.Now())

	g, gctx := errgroup.WithContext(ctx)
	for _, ds := range datastores {
		ds := ds
		g.Go(func() error {
			start := time.Now()
			err := m.adapter.Put(gctx, ds, key, bytes.NewReader(body), int64(len(body)))
			if m.metrics != nil {
				m.metrics.IngestFlushLatency.WithLabelValues(logName).Observe(time.Since(start).Seconds())
			}
			if err != nil {
				glog.Errorf("minsql: ingest: flush of log %q to datastore %q failed (%d bytes dropped): %v",
					logName, ds.Name, len(body), err)
				if m.metrics != nil {
					m.metrics.IngestFlushErrors.WithLabelValues(logName, ds.Name).Inc()
				}
				if strict {
					return err
				}
				return nil // best-effort: do not fail the whole fan-out
			}
			if m.metrics != nil {
				m.metrics.IngestFlushTotal.WithLabelValues(logName, ds.Name).Inc()
			}
			return nil
		})
	}
	return g.Wait()
}

// StartTimers launches a periodic flush ticker for every log in cfg whose
// commit_window is non-zero (§4.E "Timer"). Call again after a config
// change to pick up newly added logs; existing tickers for unchanged logs
// are left running.
func (m *Manager) StartTimers(cfg *config.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, l := range cfg.Logs {
		if l.Immediate() {
			continue
		}
		if _, running := m.tickers[name]; running {
			continue
		}
		window, err := l.Window()
		if err != nil || window <= 0 {
			continue
		}
		t := time.NewTicker(window)
		m.tickers[name] = t
		logName := name
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			for {
				select {
				case <-t.C:
					if err := m.Flush(context.Background(), logName); err != nil {
						glog.Errorf("minsql: ingest: timed flush of %q failed: %v", logName, err)
					}
				case <-m.stopped:
					return
				}
			}
		}()
	}
}

// Close stops every running timer and waits for in-flight flushes to
// finish, for a clean shutdown (§6 exit codes).
func (m *Manager) Close() {
	close(m.stopped)
	m.mu.Lock()
	for _, t := range m.tickers {
		t.Stop()
	}
	m.mu.Unlock()
	m.wg.Wait()
}
