// Package eventlog mirrors the lifecycle event stream into MongoDB for
// post-hoc audit, subscribing to the same bus the websocket dashboard feed
// uses. Like snapshotstore, this is a best-effort side channel: the event
// stream is explicitly "not authoritative" per §6.
package eventlog

import (
	"context"
	"time"

	"github.com/evenodd-league/tournament/internal/events"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Writer persists every event it observes into a MongoDB collection.
type Writer struct {
	collection *mongo.Collection
	logger     *zap.SugaredLogger
}

// New wraps an already-connected MongoDB database handle.
func New(db *mongo.Database, logger *zap.SugaredLogger) *Writer {
	return &Writer{collection: db.Collection("league_events"), logger: logger}
}

// Run subscribes to bus and writes every event until ctx is cancelled.
func (w *Writer) Run(ctx context.Context, bus events.Subscriber) {
	ch, cancel := bus.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			w.write(ctx, e)
		}
	}
}

func (w *Writer) write(ctx context.Context, e events.Event) {
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	doc := bson.M{
		"kind":          string(e.Kind),
		"tournament_id": e.Tournament,
		"timestamp":     e.Timestamp,
		"data":          e.Data,
	}
	if _, err := w.collection.InsertOne(writeCtx, doc); err != nil {
		w.logger.Warnw("failed to write event to audit log", "kind", e.Kind, "err", err)
	}
}
