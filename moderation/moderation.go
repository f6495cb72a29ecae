// path: moderation/moderation.go
package moderation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/audit"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/ban"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/models"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/notify"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/store"
)

// FlagThreshold is the community flag count at which a record is
// auto-hidden without admin action.
const FlagThreshold = 3

// ReasonMaxLen bounds the free-text flag reason, in runes.
const ReasonMaxLen = 500

var (
	// ErrSelfFlag: the flagger is the record's own reporter.
	ErrSelfFlag = errors.New("reporters cannot flag their own issue")

	// ErrMissingIdentity: the caller presented neither a user id nor a
	// session token.
	ErrMissingIdentity = errors.New("flagging requires a user or session identity")
)

// ReasonError: the flag reason is empty or too long.
type ReasonError struct {
	Len int
}

func (e *ReasonError) Error() string {
	return fmt.Sprintf("flag reason must be 1-%d characters, got %d", ReasonMaxLen, e.Len)
}

// InvalidFlagTypeError rejects unknown flag types.
type InvalidFlagTypeError struct {
	Type models.FlagType
}

func (e *InvalidFlagTypeError) Error() string {
	return fmt.Sprintf("unknown flag type %q", e.Type)
}

// InvalidReviewActionError rejects unknown review actions.
type InvalidReviewActionError struct {
	Action models.ReviewAction
}

func (e *InvalidReviewActionError) Error() string {
	return fmt.Sprintf("unknown review action %q", e.Action)
}

// FlagResult reports an accepted submission. AutoHidden is true only
// when this call tipped the record over the threshold; Visible is the
// record's resulting state, so callers can tell "this flag hid it" apart
// from "it was already hidden".
type FlagResult struct {
	Flag       *models.Flag  `json:"flag"`
	FlagCount  int           `json:"flag_count"`
	Visible    bool          `json:"visible"`
	AutoHidden bool          `json:"auto_hidden"`
	Record     *models.Issue `json:"-"`
}

// ReviewResult reports a completed admin review.
type ReviewResult struct {
	Record        *models.Issue `json:"record"`
	ResolvedFlags int           `json:"resolved_flags"`
}

// Engine runs the community-flagging pipeline: submission with the
// race-safe duplicate rule, threshold auto-suppression, and admin
// review. Ban evaluation runs opportunistically after reviews.
type Engine struct {
	store     store.Store
	notifier  notify.Notifier
	audit     audit.Sink
	evaluator *ban.Evaluator
	now       func() time.Time
}

func New(st store.Store, n notify.Notifier, a audit.Sink, e *ban.Evaluator) *Engine {
	return &Engine{
		store:     st,
		notifier:  n,
		audit:     a,
		evaluator: e,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SubmitFlag records a community flag. Semantic checks (NotFound,
// SelfFlag) run before the write for precise errors; the duplicate check
// is the store's uniqueness constraint at the insert itself, so two
// racing submissions from one identity cannot both land.
func (e *Engine) SubmitFlag(ctx context.Context, recordID string, flagger models.Identity, reason string, flagType models.FlagType) (*FlagResult, error) {
	if flagger.IsZero() {
		return nil, ErrMissingIdentity
	}
	reason = strings.TrimSpace(reason)
	if n := utf8.RuneCountInString(reason); n == 0 || n > ReasonMaxLen {
		return nil, &ReasonError{Len: n}
	}
	if !flagType.Valid() {
		return nil, &InvalidFlagTypeError{Type: flagType}
	}

	rec, err := e.store.Issue(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if isOwnRecord(rec, flagger) {
		return nil, ErrSelfFlag
	}

	flag := &models.Flag{
		RecordID:   rec.ID,
		FlaggerKey: flagger.Key(),
		Reason:     reason,
		Type:       flagType,
		CreatedAt:  e.now(),
	}
	if userID, ok := flagger.Registered(); ok {
		flag.FlaggerUserID = userID
	}

	outcome, err := e.store.SubmitFlag(ctx, flag, FlagThreshold)
	if err != nil {
		return nil, err
	}

	if outcome.AutoHidden {
		notify.Emit(ctx, e.notifier, notify.Event{
			Type:     notify.EventAutoHidden,
			RecordID: recordID,
			Detail:   map[string]string{"flag_count": fmt.Sprintf("%d", outcome.Record.FlagCount)},
		})
	}

	return &FlagResult{
		Flag:       flag,
		FlagCount:  outcome.Record.FlagCount,
		Visible:    outcome.Record.Visible,
		AutoHidden: outcome.AutoHidden,
		Record:     outcome.Record,
	}, nil
}

func isOwnRecord(rec *models.Issue, flagger models.Identity) bool {
	if userID, ok := flagger.Registered(); ok {
		return rec.ReporterID != "" && rec.ReporterID == userID
	}
	if token, ok := flagger.Session(); ok {
		return rec.ReporterSession != "" && rec.ReporterSession == token
	}
	return false
}

// Review resolves every unresolved flag on the record as one batch and
// applies the action's visibility effect. Reviewing a record with no
// unresolved flags is a deliberate no-op on flags: the visibility effect
// still applies.
func (e *Engine) Review(ctx context.Context, recordID, reviewerID string, action models.ReviewAction, comment string) (*ReviewResult, error) {
	if !action.Valid() {
		return nil, &InvalidReviewActionError{Action: action}
	}

	review := models.FlagReview{
		Action:     action,
		Comment:    strings.TrimSpace(comment),
		ReviewerID: reviewerID,
		ReviewedAt: e.now(),
	}
	visible := action == models.ReviewApprove
	purge := action == models.ReviewDelete

	resolved, err := e.store.ResolveFlags(ctx, recordID, review, visible, purge)
	if err != nil {
		return nil, err
	}

	rec, err := e.store.Issue(ctx, recordID)
	if err != nil {
		return nil, err
	}

	if err := e.audit.Record(ctx, audit.Entry{
		Action:   "flag_review:" + string(action),
		RecordID: recordID,
		ActorID:  reviewerID,
		Comment:  review.Comment,
		At:       review.ReviewedAt,
	}); err != nil {
		log.Printf("moderation: audit write for %s failed: %v", recordID, err)
	}

	notify.Emit(ctx, e.notifier, notify.Event{
		Type:     notify.EventReviewed,
		RecordID: recordID,
		ActorID:  reviewerID,
		Detail:   map[string]string{"action": string(action)},
	})

	e.evaluateFlaggers(ctx, resolved)

	return &ReviewResult{Record: rec, ResolvedFlags: len(resolved)}, nil
}

// evaluateFlaggers runs the ban heuristic for each registered user whose
// flag was just resolved. Advisory only; failures are logged and
// recommendations surface as notifications for admins.
func (e *Engine) evaluateFlaggers(ctx context.Context, resolved []models.Flag) {
	if e.evaluator == nil {
		return
	}

	seen := make(map[string]bool)
	for _, f := range resolved {
		userID := f.FlaggerUserID
		if userID == "" || seen[userID] {
			continue
		}
		seen[userID] = true

		rec, err := e.evaluator.Evaluate(ctx, userID)
		if err != nil {
			log.Printf("moderation: ban evaluation for %s failed: %v", userID, err)
			continue
		}
		if !rec.ShouldBan {
			continue
		}
		notify.Emit(ctx, e.notifier, notify.Event{
			Type:    notify.EventBanSignal,
			ActorID: userID,
			Detail: map[string]string{
				"recent_flags":   fmt.Sprintf("%d", rec.Signal.RecentFlagCount),
				"total_flags":    fmt.Sprintf("%d", rec.Signal.TotalFlagCount),
				"rejection_rate": fmt.Sprintf("%.2f", rec.Signal.RejectionRate),
			},
		})
	}
}
