package worker

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/attendance-backend/internal/model"
	"github.com/stemsi/attendance-backend/internal/queue"
)

// EventSink stores decoded attendance events.
type EventSink interface {
	Insert(ctx context.Context, ev *model.AttendanceEvent) error
}

// EventWorker consumes the attendance event queue and writes each event to
// the attendance_events audit table.
type EventWorker struct {
	rdb        *redis.Client
	sink       EventSink
	key        string
	retryDelay time.Duration
	log        zerolog.Logger
}

// NewEventWorker creates a new EventWorker.
func NewEventWorker(rdb *redis.Client, sink EventSink, key string, log zerolog.Logger) *EventWorker {
	return &EventWorker{
		rdb:        rdb,
		sink:       sink,
		key:        key,
		retryDelay: 5 * time.Second,
		log:        log.With().Str("component", "event_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *EventWorker) Start(ctx context.Context) {
	w.log.Info().Str("queue", w.key).Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *EventWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, time.Second, w.key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}
	if len(result) < 2 {
		return
	}

	if err := w.handle(ctx, result[1]); err != nil {
		if errors.Is(err, errMalformed) {
			return
		}
		w.log.Error().Err(err).Msg("Persist error, retrying")
		w.rdb.RPush(context.WithoutCancel(ctx), w.key, result[1])
		select {
		case <-ctx.Done():
		case <-time.After(w.retryDelay):
		}
	}
}

var errMalformed = errors.New("malformed event")

// handle decodes and stores one raw event. Malformed payloads are logged
// and dropped so they cannot block the queue.
func (w *EventWorker) handle(ctx context.Context, raw string) error {
	ev, err := queue.Decode(raw)
	if err != nil {
		w.log.Error().Err(err).Msg("Dropping malformed event")
		return errMalformed
	}
	if err := w.sink.Insert(ctx, ev); err != nil {
		return err
	}
	w.log.Debug().
		Str("event_id", ev.ID).
		Str("kind", string(ev.Kind)).
		Int("student_id", ev.StudentID).
		Msg("Event recorded")
	return nil
}

// drain persists whatever is still queued before shutdown.
func (w *EventWorker) drain(ctx context.Context) {
	drained := 0
	for {
		raw, err := w.rdb.LPop(ctx, w.key).Result()
		if err != nil {
			break
		}
		if err := w.handle(ctx, raw); err != nil {
			if errors.Is(err, errMalformed) {
				continue
			}
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, w.key, raw)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining events")
	}
}
