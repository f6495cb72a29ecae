// path: store/memory.go
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/geo"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/models"
)

// Memory is an in-process Store with the same atomicity guarantees as
// the Mongo realization: one mutex stands in for the per-record
// transaction, and the unresolved-flag uniqueness check runs under it,
// exactly like the unique index does at the write. Backs the engine test
// suites and local development.
type Memory struct {
	mu      sync.Mutex
	issues  map[string]*models.Issue
	flags   []*models.Flag
	history []*models.StatusChange
}

func NewMemory() *Memory {
	return &Memory{issues: make(map[string]*models.Issue)}
}

func (m *Memory) InsertIssue(_ context.Context, issue *models.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	cp := *issue
	m.issues[issue.ID.Hex()] = &cp
	return nil
}

func (m *Memory) Issue(_ context.Context, id string) (*models.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.issueLocked(id)
}

func (m *Memory) issueLocked(id string) (*models.Issue, error) {
	rec, ok := m.issues[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *Memory) IssuesWithinBox(_ context.Context, box geo.BoundingBox, q ListQuery) ([]models.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Issue
	for _, rec := range m.issues {
		if !q.IncludeHidden && !rec.Visible {
			continue
		}
		if q.Status != nil && rec.Status != *q.Status {
			continue
		}
		if q.Category != nil && rec.Category != *q.Category {
			continue
		}
		if !box.Contains(geo.Coordinate{Lat: rec.Lat, Lng: rec.Lng}) {
			continue
		}
		out = append(out, *rec)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return nil, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *Memory) SubmitFlag(_ context.Context, flag *models.Flag, threshold int) (*FlagOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.issues[flag.RecordID.Hex()]
	if !ok {
		return nil, ErrNotFound
	}

	for _, f := range m.flags {
		if f.RecordID == flag.RecordID && f.FlaggerKey == flag.FlaggerKey && !f.Resolved {
			return nil, ErrDuplicateFlag
		}
	}

	if flag.ID.IsZero() {
		flag.ID = primitive.NewObjectID()
	}
	cp := *flag
	m.flags = append(m.flags, &cp)

	wasVisible := rec.Visible
	rec.FlagCount++
	if rec.FlagCount >= threshold {
		rec.Visible = false
	}
	rec.UpdatedAt = time.Now().UTC()

	out := *rec
	return &FlagOutcome{Record: &out, AutoHidden: wasVisible && !rec.Visible}, nil
}

func (m *Memory) ResolveFlags(_ context.Context, recordID string, review models.FlagReview, visible, purge bool) ([]models.Flag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.issues[recordID]
	if !ok {
		return nil, ErrNotFound
	}

	var resolved []models.Flag
	for _, f := range m.flags {
		if f.RecordID.Hex() != recordID || f.Resolved {
			continue
		}
		f.Resolved = true
		r := review
		f.Review = &r
		resolved = append(resolved, *f)
	}

	rec.Visible = visible
	if purge {
		rec.PurgeRequested = true
	}
	rec.UpdatedAt = time.Now().UTC()
	return resolved, nil
}

func (m *Memory) CommitStatusChange(_ context.Context, recordID string, previous models.IssueStatus, entry *models.StatusChange) (*models.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.issues[recordID]
	if !ok {
		return nil, ErrNotFound
	}
	if rec.Status != previous {
		return nil, ErrConflict
	}

	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	cp := *entry
	m.history = append(m.history, &cp)

	rec.Status = entry.NewStatus
	rec.UpdatedAt = time.Now().UTC()
	out := *rec
	return &out, nil
}

func (m *Memory) InsertStatusChange(_ context.Context, entry *models.StatusChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	cp := *entry
	m.history = append(m.history, &cp)
	return nil
}

func (m *Memory) History(_ context.Context, recordID string) ([]models.StatusChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.StatusChange
	for _, e := range m.history {
		if e.RecordID.Hex() == recordID {
			out = append(out, *e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) FlagsByUser(_ context.Context, userID string) ([]models.Flag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Flag
	for _, f := range m.flags {
		if f.FlaggerUserID == userID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (m *Memory) ActiveFlaggers(_ context.Context, since time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool)
	var out []string
	for _, f := range m.flags {
		if f.FlaggerUserID == "" || f.CreatedAt.Before(since) {
			continue
		}
		if !seen[f.FlaggerUserID] {
			seen[f.FlaggerUserID] = true
			out = append(out, f.FlaggerUserID)
		}
	}
	sort.Strings(out)
	return out, nil
}
