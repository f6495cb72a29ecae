// path: controllers/admin.go
package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/ban"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/middleware"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/models"
)

// JSON payload for POST /api/admin/issues/:id/review
type ReviewJSON struct {
	Action  string `json:"action"`
	Comment string `json:"comment"`
}

type ReviewResp struct {
	OK            bool   `json:"ok"`
	ResolvedFlags int    `json:"resolved_flags"`
	Visible       bool   `json:"visible"`
	Status        string `json:"status"`
}

func HandleReviewFlags(c *fiber.Ctx) error {
	var p ReviewJSON
	if err := c.BodyParser(&p); err != nil {
		return badReq(c, "invalid JSON")
	}
	reviewerID, _ := c.Locals(middleware.LocalUserID).(string)

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	res, err := modEng.Review(ctx, c.Params("id"), reviewerID, models.ReviewAction(p.Action), p.Comment)
	if err != nil {
		return respondErr(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(ReviewResp{
		OK:            true,
		ResolvedFlags: res.ResolvedFlags,
		Visible:       res.Record.Visible,
		Status:        string(res.Record.Status),
	})
}

type FlaggingStatsResp struct {
	OK             bool               `json:"ok"`
	UserID         string             `json:"user_id"`
	Recommendation ban.Recommendation `json:"recommendation"`
}

func HandleFlaggingStats(c *fiber.Ctx) error {
	userID := c.Params("id")
	if userID == "" {
		return badReq(c, "missing user id")
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	rec, err := evaluator.Evaluate(ctx, userID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(FlaggingStatsResp{OK: true, UserID: userID, Recommendation: rec})
}
