// path: lifecycle/lifecycle.go
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/models"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/notify"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/store"
)

// Comment bounds for a status transition, counted in runes.
const (
	CommentMinLen = 5
	CommentMaxLen = 1000
)

// casRetries bounds the compare-and-set loop when transitions race.
const casRetries = 3

// transitions is the total transition table: every ordered pair of
// distinct statuses is legal. If a status is ever added, this table and
// its totality test must be revisited together.
var transitions = map[models.IssueStatus][]models.IssueStatus{
	models.StatusReported:   {models.StatusInProgress, models.StatusResolved},
	models.StatusInProgress: {models.StatusResolved, models.StatusReported},
	models.StatusResolved:   {models.StatusInProgress, models.StatusReported},
}

// CanTransition reports whether the table allows from -> to.
func CanTransition(from, to models.IssueStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatusUnchangedError: the requested status equals the current one.
type StatusUnchangedError struct {
	Status models.IssueStatus
}

func (e *StatusUnchangedError) Error() string {
	return fmt.Sprintf("issue is already %s", e.Status)
}

// InvalidTransitionError: the transition table does not allow the move.
type InvalidTransitionError struct {
	From models.IssueStatus
	To   models.IssueStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

// CommentRequiredError: the transition comment is missing or out of
// bounds.
type CommentRequiredError struct {
	Len int
}

func (e *CommentRequiredError) Error() string {
	return fmt.Sprintf("status comment must be %d-%d characters, got %d", CommentMinLen, CommentMaxLen, e.Len)
}

// Engine owns the status state machine and its append-only ledger.
type Engine struct {
	store    store.Store
	notifier notify.Notifier
	now      func() time.Time
}

func New(st store.Store, n notify.Notifier) *Engine {
	return &Engine{store: st, notifier: n, now: func() time.Time { return time.Now().UTC() }}
}

// RequestTransition validates and commits a status change. The history
// append and the status write commit together or not at all; a notification
// goes out only after commit and can never roll the change back.
func (e *Engine) RequestTransition(ctx context.Context, recordID string, newStatus models.IssueStatus, comment, actorID string) (*models.Issue, *models.StatusChange, error) {
	comment = strings.TrimSpace(comment)

	for attempt := 0; attempt < casRetries; attempt++ {
		rec, err := e.store.Issue(ctx, recordID)
		if err != nil {
			return nil, nil, err
		}

		// Check order is observable: unchanged beats invalid-transition
		// beats a bad comment, all before any write.
		if rec.Status == newStatus {
			return nil, nil, &StatusUnchangedError{Status: rec.Status}
		}
		if !newStatus.Valid() || !CanTransition(rec.Status, newStatus) {
			return nil, nil, &InvalidTransitionError{From: rec.Status, To: newStatus}
		}
		if n := utf8.RuneCountInString(comment); n < CommentMinLen || n > CommentMaxLen {
			return nil, nil, &CommentRequiredError{Len: n}
		}

		previous := rec.Status
		entry := &models.StatusChange{
			RecordID:  rec.ID,
			Previous:  &previous,
			NewStatus: newStatus,
			Comment:   comment,
			ActorID:   actorID,
			CreatedAt: e.now(),
		}

		updated, err := e.store.CommitStatusChange(ctx, recordID, previous, entry)
		if errors.Is(err, store.ErrConflict) {
			// A concurrent transition committed first; re-read its
			// post-commit state and validate again.
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		notify.Emit(ctx, e.notifier, notify.Event{
			Type:     notify.EventStatusChanged,
			RecordID: recordID,
			ActorID:  actorID,
			Detail: map[string]string{
				"from": string(previous),
				"to":   string(newStatus),
			},
		})
		return updated, entry, nil
	}

	return nil, nil, &store.UnavailableError{Op: "status transition", Err: store.ErrConflict}
}

// RecordCreated writes the optional creation ledger entry. Anonymous
// creation has no actor to attribute it to and gets no entry; the issue
// still starts as Reported either way.
func (e *Engine) RecordCreated(ctx context.Context, issue *models.Issue, actorID string) error {
	if actorID == "" {
		return nil
	}
	return e.store.InsertStatusChange(ctx, &models.StatusChange{
		RecordID:  issue.ID,
		Previous:  nil,
		NewStatus: models.StatusReported,
		Comment:   "Issue reported",
		ActorID:   actorID,
		CreatedAt: e.now(),
	})
}

// History returns the record's ledger, chronological ascending.
func (e *Engine) History(ctx context.Context, recordID string) ([]models.StatusChange, error) {
	return e.store.History(ctx, recordID)
}
