// path: store/store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/geo"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/models"
)

var (
	// ErrNotFound: the record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateFlag: an unresolved flag already exists for this
	// (record, flagger) pair. Raised by the uniqueness constraint at
	// the write, never by a separate read-then-check.
	ErrDuplicateFlag = errors.New("identity already has an unresolved flag on this record")

	// ErrConflict: a compare-and-set lost to a concurrent writer. The
	// engines re-read and re-validate on this.
	ErrConflict = errors.New("record changed concurrently")
)

// UnavailableError wraps transient storage failures (timeouts, lost
// connections). The only error class callers may treat as retryable,
// and even then only for reads.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable during %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// ListQuery narrows IssuesWithinBox. Hidden records are excluded unless
// IncludeHidden is set (admin listings).
type ListQuery struct {
	Status        *models.IssueStatus
	Category      *models.IssueCategory
	IncludeHidden bool
	Limit         int
	Offset        int
}

// FlagOutcome is the result of an accepted flag submission.
type FlagOutcome struct {
	// Record is the post-commit state of the flagged issue.
	Record *models.Issue
	// AutoHidden is true only when this submission crossed the
	// threshold and hid a previously visible record, distinct from the
	// record's resulting visibility.
	AutoHidden bool
}

// Store is the record-store collaborator. Every multi-step mutation is a
// single atomic unit per record; no operation locks more than one
// record.
type Store interface {
	// InsertIssue creates a record, assigning its ID.
	InsertIssue(ctx context.Context, issue *models.Issue) error

	// Issue returns a record by hex id. ErrNotFound when absent.
	Issue(ctx context.Context, id string) (*models.Issue, error)

	// IssuesWithinBox returns records inside the bounding-box
	// pre-filter; callers apply the exact distance cut afterwards.
	IssuesWithinBox(ctx context.Context, box geo.BoundingBox, q ListQuery) ([]models.Issue, error)

	// SubmitFlag atomically inserts the flag, increments the record's
	// flag count and hides the record once the count reaches threshold.
	// ErrDuplicateFlag on the uniqueness constraint, ErrNotFound when
	// the record is gone.
	SubmitFlag(ctx context.Context, flag *models.Flag, threshold int) (*FlagOutcome, error)

	// ResolveFlags marks every unresolved flag on the record with the
	// review as one batch, sets the record's visibility, and marks it
	// for purge when requested. Returns the flags it resolved; an empty
	// result is not an error (the visibility effect still applies).
	ResolveFlags(ctx context.Context, recordID string, review models.FlagReview, visible, purge bool) ([]models.Flag, error)

	// CommitStatusChange appends the history entry and sets the new
	// status in one transaction, conditional on the record still being
	// in previous. ErrConflict when a concurrent transition won.
	CommitStatusChange(ctx context.Context, recordID string, previous models.IssueStatus, entry *models.StatusChange) (*models.Issue, error)

	// InsertStatusChange appends a standalone ledger entry (the
	// optional creation entry).
	InsertStatusChange(ctx context.Context, entry *models.StatusChange) error

	// History returns the record's ledger, chronological ascending.
	History(ctx context.Context, recordID string) ([]models.StatusChange, error)

	// FlagsByUser returns every flag submitted by a registered user.
	FlagsByUser(ctx context.Context, userID string) ([]models.Flag, error)

	// ActiveFlaggers returns registered user ids that flagged anything
	// since the cutoff.
	ActiveFlaggers(ctx context.Context, since time.Time) ([]string, error)
}
