package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/quicknotes/notes-api/internal/api/metrics"
	"github.com/quicknotes/notes-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes note activity to a fixed set of workers using consistent
// hashing on the note id, so activity for one note is recorded in order.
type Dispatcher struct {
	workers  []chan ports.NoteActivity
	recorder ports.ActivityRecorder
	log      zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, recorder ports.ActivityRecorder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan ports.NoteActivity, numWorkers),
		recorder: recorder,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.NoteActivity, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled
// or after Close has drained their channels.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Publish hands activity to the worker responsible for its note. It never
// blocks: when the worker's buffer is full, or the dispatcher is closed, the
// record is dropped and counted as an error.
func (d *Dispatcher) Publish(activity ports.NoteActivity) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.ActivityRecordErrorsTotal.Inc()
		return
	}

	idx := d.shardIndex(activity.NoteID)
	select {
	case d.workers[idx] <- activity:
		metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.ActivityRecordErrorsTotal.Inc()
		d.log.Warn().
			Str("note_id", activity.NoteID).
			Str("action", activity.Action).
			Int("worker_id", idx).
			Msg("activity queue full, record dropped")
	}
}

// Close stops accepting activity and waits for workers to drain what is queued.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// shardIndex maps a note id deterministically to a worker index.
func (d *Dispatcher) shardIndex(noteID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(noteID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.NoteActivity) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			return
		case activity, ok := <-ch:
			if !ok {
				return
			}
			metrics.ActivityQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.recorder.Record(ctx, activity); err != nil {
				metrics.ActivityRecordErrorsTotal.Inc()
				d.log.Error().Err(err).
					Str("note_id", activity.NoteID).
					Str("action", activity.Action).
					Int("worker_id", id).
					Msg("activity recording failed")
			}
		}
	}
}
