// path: models/history.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusChange is one append-only ledger entry: never mutated, never
// deleted. Previous is nil only on the optional creation entry.
type StatusChange struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecordID  primitive.ObjectID `bson:"record_id" json:"record_id"`
	Previous  *IssueStatus       `bson:"previous_status,omitempty" json:"previous_status,omitempty"`
	NewStatus IssueStatus        `bson:"new_status" json:"new_status"`
	Comment   string             `bson:"comment" json:"comment"`
	ActorID   string             `bson:"actor_id" json:"actor_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
