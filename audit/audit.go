// path: audit/audit.go
package audit

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// Entry is one admin action handed to the audit-log writer. The writer
// owns its own persistence format; the engines only invoke it.
type Entry struct {
	Action   string    `bson:"action" json:"action"`
	RecordID string    `bson:"record_id" json:"record_id"`
	ActorID  string    `bson:"actor_id" json:"actor_id"`
	Comment  string    `bson:"comment,omitempty" json:"comment,omitempty"`
	At       time.Time `bson:"at" json:"at"`
}

type Sink interface {
	Record(ctx context.Context, e Entry) error
}

// Mongo appends admin actions to a collection.
type Mongo struct {
	col *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{col: db.Collection("admin_actions")}
}

func (m *Mongo) Record(ctx context.Context, e Entry) error {
	_, err := m.col.InsertOne(ctx, e)
	return err
}

// Log is the sink used in tests and local development.
type Log struct{}

func (Log) Record(_ context.Context, e Entry) error {
	log.Printf("audit: %s record=%s actor=%s", e.Action, e.RecordID, e.ActorID)
	return nil
}
