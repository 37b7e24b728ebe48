package store

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Writer serializes SQLite writes through a single goroutine so request
// handlers never block on the database. The queue is bounded: when it
// fills, new writes are dropped rather than stalling the caller, since
// history rows are advisory and the next estimate re-records them.
type Writer struct {
	db      *sql.DB
	ch      chan func(*sql.DB)
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

// NewWriter creates an async writer with the given queue size. Call Run
// to start processing and Drain before closing the DB.
func NewWriter(db *sql.DB, queueSize int) *Writer {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &Writer{
		db: db,
		ch: make(chan func(*sql.DB), queueSize),
	}
}

// Run processes queued writes until ctx is cancelled, then drains
// whatever is still queued before returning.
func (w *Writer) Run(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case fn, ok := <-w.ch:
				if !ok {
					return
				}
				fn(w.db)
			case <-ctx.Done():
				for {
					select {
					case fn, ok := <-w.ch:
						if !ok {
							return
						}
						fn(w.db)
					default:
						return
					}
				}
			}
		}
	}()
}

// Enqueue queues one write. A full queue drops the write instead of
// blocking.
func (w *Writer) Enqueue(fn func(*sql.DB)) {
	select {
	case w.ch <- fn:
	default:
		count := w.dropped.Add(1)
		// Log at powers of 2 to avoid spamming under sustained pressure.
		if count&(count-1) == 0 {
			slog.Warn("store writer: dropping writes, queue full",
				"totalDropped", count, "queueCap", cap(w.ch))
		}
	}
}

// DroppedCount returns the number of writes dropped so far.
func (w *Writer) DroppedCount() uint64 {
	return w.dropped.Load()
}

// Drain waits for all queued writes to finish. Call before closing the
// database; Enqueue must not be called afterwards.
func (w *Writer) Drain() {
	close(w.ch)
	w.wg.Wait()
}
