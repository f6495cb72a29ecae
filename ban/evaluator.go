// path: ban/evaluator.go
package ban

import (
	"context"
	"time"

	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/models"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/store"
)

// Heuristic thresholds. Either trigger alone is sufficient.
const (
	RecentWindow       = 7 * 24 * time.Hour
	RecentFlagLimit    = 10
	TotalFlagLimit     = 5
	RejectionRateLimit = 0.8
)

// Signal is the derived, non-persisted read over a user's flagging
// history. A flag counts as rejected when its review approved the target
// record, i.e. the flag itself was judged invalid.
type Signal struct {
	RecentFlagCount   int     `json:"recent_flag_count"`
	TotalFlagCount    int     `json:"total_flag_count"`
	RejectedFlagCount int     `json:"rejected_flag_count"`
	RejectionRate     float64 `json:"rejection_rate"`
}

// Recommendation is advisory only: the evaluator never bans anyone;
// suspension is an admin action outside this engine.
type Recommendation struct {
	ShouldBan bool   `json:"should_ban"`
	Signal    Signal `json:"signal"`
}

type Evaluator struct {
	store store.Store
	now   func() time.Time
}

func NewEvaluator(st store.Store) *Evaluator {
	return &Evaluator{store: st, now: func() time.Time { return time.Now().UTC() }}
}

// Evaluate computes the ban signal for a registered user.
func (e *Evaluator) Evaluate(ctx context.Context, userID string) (Recommendation, error) {
	flags, err := e.store.FlagsByUser(ctx, userID)
	if err != nil {
		return Recommendation{}, err
	}

	cutoff := e.now().Add(-RecentWindow)
	var sig Signal
	reviewed := 0

	for _, f := range flags {
		sig.TotalFlagCount++
		if f.CreatedAt.After(cutoff) {
			sig.RecentFlagCount++
		}
		if f.Resolved && f.Review != nil {
			reviewed++
			if f.Review.Action == models.ReviewApprove {
				sig.RejectedFlagCount++
			}
		}
	}

	// Rate is undefined with nothing reviewed; treat as 0.
	if reviewed > 0 {
		sig.RejectionRate = float64(sig.RejectedFlagCount) / float64(reviewed)
	}

	shouldBan := sig.RecentFlagCount > RecentFlagLimit ||
		(sig.TotalFlagCount > TotalFlagLimit && sig.RejectionRate > RejectionRateLimit)

	return Recommendation{ShouldBan: shouldBan, Signal: sig}, nil
}
