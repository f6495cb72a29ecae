// path: models/issue.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueStatus enum
type IssueStatus string

const (
	StatusReported   IssueStatus = "Reported"
	StatusInProgress IssueStatus = "In Progress"
	StatusResolved   IssueStatus = "Resolved"
)

// Valid reports whether s is one of the known statuses.
func (s IssueStatus) Valid() bool {
	switch s {
	case StatusReported, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// IssueCategory enum
type IssueCategory string

const (
	CategoryRoad        IssueCategory = "Road"
	CategoryWater       IssueCategory = "Water"
	CategorySanitation  IssueCategory = "Sanitation"
	CategoryLighting    IssueCategory = "Lighting"
	CategorySafety      IssueCategory = "Safety"
	CategoryObstruction IssueCategory = "Obstruction"
	CategoryOther       IssueCategory = "Other"
)

func (c IssueCategory) Valid() bool {
	switch c {
	case CategoryRoad, CategoryWater, CategorySanitation, CategoryLighting,
		CategorySafety, CategoryObstruction, CategoryOther:
		return true
	}
	return false
}

// Issue is a citizen-reported civic issue. Lat/Lng never change after
// creation. Visible is owned by the moderation flow, Status by the
// lifecycle flow; nothing else writes those fields.
type Issue struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    IssueCategory      `bson:"category" json:"category"`
	Status      IssueStatus        `bson:"status" json:"status"`
	Lat         float64            `bson:"lat" json:"lat"`
	Lng         float64            `bson:"lng" json:"lng"`

	Visible        bool `bson:"visible" json:"visible"`
	FlagCount      int  `bson:"flag_count" json:"flag_count"`
	PurgeRequested bool `bson:"purge_requested,omitempty" json:"-"`

	// Exactly one of ReporterID / ReporterSession is set; anonymous
	// reports own only an opaque session token.
	ReporterID      string `bson:"reporter_id,omitempty" json:"reporter_id,omitempty"`
	ReporterSession string `bson:"reporter_session,omitempty" json:"-"`
	Anonymous       bool   `bson:"anonymous" json:"anonymous"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
