// path: controllers/issues.go
package controllers

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/access"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/geo"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/middleware"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/models"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/store"
)

const dbTimeout = 8 * time.Second

// JSON payload for POST /api/issues
type IssueJSON struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

type CreateIssueResp struct {
	OK           bool   `json:"ok"`
	ID           string `json:"id,omitempty"`
	SessionToken string `json:"session_token,omitempty"`
	Error        string `json:"error,omitempty"`
}

func HandleCreateIssue(c *fiber.Ctx) error {
	var p IssueJSON
	if err := c.BodyParser(&p); err != nil {
		return badReq(c, "invalid JSON")
	}

	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	if p.Title == "" {
		return badReq(c, "missing title")
	}
	if p.Description == "" {
		return badReq(c, "missing description")
	}
	category := models.IssueCategory(p.Category)
	if !category.Valid() {
		return badReq(c, "unknown category")
	}

	loc, err := geo.NewCoordinate(p.Lat, p.Lng)
	if err != nil {
		return respondErr(c, err)
	}

	// A new issue must be placed near where the reporter actually is;
	// this is the plausibility bound, not the view radius.
	caller, err := callerLocation(c)
	if err != nil {
		return respondErr(c, err)
	}
	if _, err := guard.CheckReportPlausibility(caller, loc); err != nil {
		return respondErr(c, err)
	}

	issue := &models.Issue{
		Title:       p.Title,
		Description: p.Description,
		Category:    category,
		Status:      models.StatusReported,
		Lat:         loc.Lat,
		Lng:         loc.Lng,
		Visible:     true,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	var issuedToken string
	actorID, _ := c.Locals(middleware.LocalUserID).(string)
	if actorID != "" {
		issue.ReporterID = actorID
	} else {
		issue.Anonymous = true
		token, _ := c.Locals(middleware.LocalSessionToken).(string)
		if token == "" {
			// First anonymous contact: mint the opaque session token
			// that lets this reporter be recognized later.
			token = uuid.NewString()
			issuedToken = token
		}
		issue.ReporterSession = token
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	if err := recordStore.InsertIssue(ctx, issue); err != nil {
		return respondErr(c, err)
	}
	if err := issuesEng.RecordCreated(ctx, issue, actorID); err != nil {
		// The issue exists; a missing creation ledger entry is not
		// worth failing the report over.
		log.Printf("issues: creation ledger entry for %s failed: %v", issue.ID.Hex(), err)
	}

	return c.Status(fiber.StatusOK).JSON(CreateIssueResp{OK: true, ID: issue.ID.Hex(), SessionToken: issuedToken})
}

type IssueItem struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Status      string  `json:"status"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	FlagCount   int     `json:"flag_count"`
	Visible     bool    `json:"visible"`
	DistanceKm  float64 `json:"distance_km"`
	CreatedAt   string  `json:"created_at"`
}

type IssueListResp struct {
	OK    bool        `json:"ok"`
	Items []IssueItem `json:"items"`
}

func HandleListIssues(c *fiber.Ctx) error {
	latStr := c.Query("lat")
	lngStr := c.Query("lng")
	if latStr == "" || lngStr == "" {
		return badReq(c, "missing lat/lng")
	}
	lat, err1 := strconv.ParseFloat(latStr, 64)
	lng, err2 := strconv.ParseFloat(lngStr, 64)
	if err1 != nil || err2 != nil {
		return badReq(c, "invalid lat/lng")
	}
	center, err := geo.NewCoordinate(lat, lng)
	if err != nil {
		return respondErr(c, err)
	}

	radiusKm := access.MaxListRadiusKm
	if v := c.Query("radius_km"); v != "" {
		radiusKm, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return badReq(c, "invalid radius_km")
		}
	}
	if err := access.ValidateListRadius(radiusKm); err != nil {
		return respondErr(c, err)
	}

	q := store.ListQuery{}
	if v := c.Query("status"); v != "" {
		status := models.IssueStatus(v)
		if !status.Valid() {
			return badReq(c, "unknown status filter")
		}
		q.Status = &status
	}
	if v := c.Query("category"); v != "" {
		category := models.IssueCategory(v)
		if !category.Valid() {
			return badReq(c, "unknown category filter")
		}
		q.Category = &category
	}
	q.IncludeHidden = isAdmin(c) && parseBool(c.Query("include_hidden"))

	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return badReq(c, "invalid limit")
		}
		if n < 1 {
			n = 1
		}
		if n > 100 {
			n = 100
		}
		limit = n
	}
	offset := 0
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return badReq(c, "invalid offset")
		}
		if n > 0 {
			offset = n
		}
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	// The box is a pre-filter and over-approximates the circle, so the
	// exact distance cut (and paging) happens after the fetch. The box
	// itself caps the result set: its radius never exceeds 5 km.
	box := geo.BoundingBoxAround(center, radiusKm)
	candidates, err := recordStore.IssuesWithinBox(ctx, box, q)
	if err != nil {
		return respondErr(c, err)
	}

	items := make([]IssueItem, 0, limit)
	skipped := 0
	for _, rec := range candidates {
		d := geo.DistanceKm(center, geo.Coordinate{Lat: rec.Lat, Lng: rec.Lng})
		if d > radiusKm {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		items = append(items, IssueItem{
			ID:          rec.ID.Hex(),
			Title:       rec.Title,
			Description: rec.Description,
			Category:    string(rec.Category),
			Status:      string(rec.Status),
			Lat:         rec.Lat,
			Lng:         rec.Lng,
			FlagCount:   rec.FlagCount,
			Visible:     rec.Visible,
			DistanceKm:  d,
			CreatedAt:   rec.CreatedAt.UTC().Format(time.RFC3339),
		})
		if len(items) >= limit {
			break
		}
	}

	return c.Status(fiber.StatusOK).JSON(IssueListResp{OK: true, Items: items})
}

type IssueDetailResp struct {
	OK         bool       `json:"ok"`
	Issue      *IssueItem `json:"issue"`
	DistanceKm float64    `json:"distance_km"`
}

// loadGuarded fetches the record and applies visibility filtering plus
// the proximity check shared by the single-record read paths.
func loadGuarded(c *fiber.Ctx) (*models.Issue, float64, error) {
	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	rec, err := recordStore.Issue(ctx, c.Params("id"))
	if err != nil {
		return nil, 0, err
	}
	// Suppressed records do not exist for ordinary callers.
	if !rec.Visible && !isAdmin(c) {
		return nil, 0, store.ErrNotFound
	}

	caller, err := callerLocation(c)
	if err != nil {
		return nil, 0, err
	}
	dec, err := guard.CheckView(caller, geo.Coordinate{Lat: rec.Lat, Lng: rec.Lng})
	if err != nil {
		return nil, 0, err
	}
	return rec, dec.DistanceKm, nil
}

func HandleGetIssue(c *fiber.Ctx) error {
	rec, distance, err := loadGuarded(c)
	if err != nil {
		return respondErr(c, err)
	}

	item := IssueItem{
		ID:          rec.ID.Hex(),
		Title:       rec.Title,
		Description: rec.Description,
		Category:    string(rec.Category),
		Status:      string(rec.Status),
		Lat:         rec.Lat,
		Lng:         rec.Lng,
		FlagCount:   rec.FlagCount,
		Visible:     rec.Visible,
		DistanceKm:  distance,
		CreatedAt:   rec.CreatedAt.UTC().Format(time.RFC3339),
	}
	return c.Status(fiber.StatusOK).JSON(IssueDetailResp{OK: true, Issue: &item, DistanceKm: distance})
}

type HistoryResp struct {
	OK      bool                  `json:"ok"`
	History []models.StatusChange `json:"history"`
}

func HandleGetHistory(c *fiber.Ctx) error {
	rec, _, err := loadGuarded(c)
	if err != nil {
		return respondErr(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	history, err := issuesEng.History(ctx, rec.ID.Hex())
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(HistoryResp{OK: true, History: history})
}

// JSON payload for PATCH /api/issues/:id/status
type StatusJSON struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

type StatusResp struct {
	OK    bool                 `json:"ok"`
	Issue *IssueItem           `json:"issue"`
	Entry *models.StatusChange `json:"entry"`
}

func HandleUpdateStatus(c *fiber.Ctx) error {
	rec, _, err := loadGuarded(c)
	if err != nil {
		return respondErr(c, err)
	}

	var p StatusJSON
	if err := c.BodyParser(&p); err != nil {
		return badReq(c, "invalid JSON")
	}
	actorID, _ := c.Locals(middleware.LocalUserID).(string)

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	updated, entry, err := issuesEng.RequestTransition(ctx, rec.ID.Hex(), models.IssueStatus(p.Status), p.Comment, actorID)
	if err != nil {
		return respondErr(c, err)
	}

	item := IssueItem{
		ID:        updated.ID.Hex(),
		Title:     updated.Title,
		Category:  string(updated.Category),
		Status:    string(updated.Status),
		Lat:       updated.Lat,
		Lng:       updated.Lng,
		FlagCount: updated.FlagCount,
		Visible:   updated.Visible,
		CreatedAt: updated.CreatedAt.UTC().Format(time.RFC3339),
	}
	return c.Status(fiber.StatusOK).JSON(StatusResp{OK: true, Issue: &item, Entry: entry})
}

// parseBool understands common truthy strings.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}
