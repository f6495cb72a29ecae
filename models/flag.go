// path: models/flag.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FlagType enum
type FlagType string

const (
	FlagSpam          FlagType = "spam"
	FlagInappropriate FlagType = "inappropriate"
	FlagDuplicate     FlagType = "duplicate"
	FlagIrrelevant    FlagType = "irrelevant"
	FlagOther         FlagType = "other"
)

func (t FlagType) Valid() bool {
	switch t {
	case FlagSpam, FlagInappropriate, FlagDuplicate, FlagIrrelevant, FlagOther:
		return true
	}
	return false
}

// ReviewAction enum
type ReviewAction string

const (
	// ReviewApprove clears the record: it becomes visible again and the
	// flags against it are judged invalid.
	ReviewApprove ReviewAction = "approve"
	// ReviewReject upholds the flags: the record stays hidden.
	ReviewReject ReviewAction = "reject"
	// ReviewDelete hides the record and marks it for hard removal by
	// the external deletion job.
	ReviewDelete ReviewAction = "delete"
)

func (a ReviewAction) Valid() bool {
	switch a {
	case ReviewApprove, ReviewReject, ReviewDelete:
		return true
	}
	return false
}

// FlagReview records the admin decision that resolved a flag. Flags on a
// record are always resolved as one batch, so every unresolved flag on
// the record gets the same review.
type FlagReview struct {
	Action     ReviewAction `bson:"action" json:"action"`
	Comment    string       `bson:"comment" json:"comment"`
	ReviewerID string       `bson:"reviewer_id" json:"reviewer_id"`
	ReviewedAt time.Time    `bson:"reviewed_at" json:"reviewed_at"`
}

// Flag is a community report against an issue. At most one unresolved
// flag may exist per (record, flagger) pair; the store enforces that
// with a unique constraint, not an application-level read.
type Flag struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecordID primitive.ObjectID `bson:"record_id" json:"record_id"`

	// FlaggerKey is Identity.Key(); FlaggerUserID is additionally set
	// for registered flaggers so ban statistics can find their flags.
	FlaggerKey    string `bson:"flagger_key" json:"-"`
	FlaggerUserID string `bson:"flagger_user_id,omitempty" json:"-"`

	Reason string   `bson:"reason" json:"reason"`
	Type   FlagType `bson:"flag_type" json:"flag_type"`

	Resolved bool        `bson:"resolved" json:"resolved"`
	Review   *FlagReview `bson:"review,omitempty" json:"review,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
