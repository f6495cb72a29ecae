// path: ban/evaluator_test.go
package ban

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/models"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/notify"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/store"
)

// seedFlags writes n flags for userID, ageing them by age. The first
// rejected flags are resolved as invalid (target record approved), the
// next upheld as valid (record kept hidden); the rest stay unreviewed.
func seedFlags(t *testing.T, mem *store.Memory, userID string, n int, age time.Duration, rejected, upheld int) {
	t.Helper()
	ctx := context.Background()

	for i := 0; i < n; i++ {
		issue := &models.Issue{Status: models.StatusReported, Visible: true, CreatedAt: time.Now().UTC()}
		require.NoError(t, mem.InsertIssue(ctx, issue))

		flag := &models.Flag{
			RecordID:      issue.ID,
			FlaggerKey:    "user:" + userID,
			FlaggerUserID: userID,
			Reason:        "looks like spam",
			Type:          models.FlagSpam,
			CreatedAt:     time.Now().UTC().Add(-age),
		}
		_, err := mem.SubmitFlag(ctx, flag, 3)
		require.NoError(t, err)

		var action models.ReviewAction
		switch {
		case i < rejected:
			action = models.ReviewApprove
		case i < rejected+upheld:
			action = models.ReviewReject
		default:
			continue
		}
		_, err = mem.ResolveFlags(ctx, issue.ID.Hex(), models.FlagReview{
			Action:     action,
			Comment:    "reviewed",
			ReviewerID: "admin-1",
			ReviewedAt: time.Now().UTC(),
		}, action == models.ReviewApprove, false)
		require.NoError(t, err)
	}
}

func TestEvaluate_RecentBurstTriggersBan(t *testing.T) {
	mem := store.NewMemory()
	seedFlags(t, mem, "user-1", 11, time.Hour, 0, 0)

	rec, err := NewEvaluator(mem).Evaluate(context.Background(), "user-1")
	require.NoError(t, err)

	assert.True(t, rec.ShouldBan)
	assert.Equal(t, 11, rec.Signal.RecentFlagCount)
	assert.Equal(t, 11, rec.Signal.TotalFlagCount)
	assert.Zero(t, rec.Signal.RejectionRate)
}

func TestEvaluate_HighRejectionRateTriggersBan(t *testing.T) {
	mem := store.NewMemory()
	// 6 old flags, all reviewed, 5 judged invalid: rate 5/6 = 0.833.
	seedFlags(t, mem, "user-2", 6, 30*24*time.Hour, 5, 1)

	rec, err := NewEvaluator(mem).Evaluate(context.Background(), "user-2")
	require.NoError(t, err)

	assert.True(t, rec.ShouldBan)
	assert.Equal(t, 6, rec.Signal.TotalFlagCount)
	assert.Equal(t, 5, rec.Signal.RejectedFlagCount)
	assert.InDelta(t, 5.0/6.0, rec.Signal.RejectionRate, 1e-9)
	assert.Zero(t, rec.Signal.RecentFlagCount)
}

func TestEvaluate_UpheldFlagsDoNotTriggerBan(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	// 3 flags, all upheld (record rejected, flag valid).
	for i := 0; i < 3; i++ {
		issue := &models.Issue{Status: models.StatusReported, Visible: true, CreatedAt: time.Now().UTC()}
		require.NoError(t, mem.InsertIssue(ctx, issue))
		_, err := mem.SubmitFlag(ctx, &models.Flag{
			RecordID:      issue.ID,
			FlaggerKey:    "user:user-3",
			FlaggerUserID: "user-3",
			Reason:        "obscene content",
			Type:          models.FlagInappropriate,
			CreatedAt:     time.Now().UTC().Add(-48 * time.Hour),
		}, 3)
		require.NoError(t, err)
		_, err = mem.ResolveFlags(ctx, issue.ID.Hex(), models.FlagReview{
			Action: models.ReviewReject, ReviewerID: "admin-1", ReviewedAt: time.Now().UTC(),
		}, false, false)
		require.NoError(t, err)
	}

	rec, err := NewEvaluator(mem).Evaluate(ctx, "user-3")
	require.NoError(t, err)

	assert.False(t, rec.ShouldBan)
	assert.Equal(t, 3, rec.Signal.TotalFlagCount)
	assert.Zero(t, rec.Signal.RejectedFlagCount)
	assert.Zero(t, rec.Signal.RejectionRate)
}

func TestEvaluate_NoFlags(t *testing.T) {
	mem := store.NewMemory()

	rec, err := NewEvaluator(mem).Evaluate(context.Background(), "nobody")
	require.NoError(t, err)

	assert.False(t, rec.ShouldBan)
	assert.Equal(t, Signal{}, rec.Signal)
}

func TestSweeper_RunNotifiesOnRecommendations(t *testing.T) {
	mem := store.NewMemory()
	seedFlags(t, mem, "burst-user", 12, time.Hour, 0, 0)
	seedFlags(t, mem, "quiet-user", 2, time.Hour, 0, 0)

	sink := &captureNotifier{}
	NewSweeper(NewEvaluator(mem), sink).Run()

	require.Len(t, sink.events, 1)
	assert.Equal(t, notify.EventBanSignal, sink.events[0].Type)
	assert.Equal(t, "burst-user", sink.events[0].ActorID)
}

type captureNotifier struct {
	events []notify.Event
}

func (c *captureNotifier) Notify(_ context.Context, ev notify.Event) error {
	c.events = append(c.events, ev)
	return nil
}
