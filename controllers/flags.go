// path: controllers/flags.go
package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/geo"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/models"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/store"
)

// JSON payload for POST /api/issues/:id/flags
type FlagJSON struct {
	Reason string `json:"reason"`
	Type   string `json:"type"`
}

type FlagResp struct {
	OK         bool   `json:"ok"`
	FlagID     string `json:"flag_id"`
	FlagCount  int    `json:"flag_count"`
	Visible    bool   `json:"visible"`
	AutoHidden bool   `json:"auto_hidden"`
}

func HandleSubmitFlag(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	// Flagging is only open to callers who could view the record in the
	// first place, so the proximity gate runs before the engine. Hidden
	// records stay flaggable: later flags still count toward review.
	rec, err := recordStore.Issue(ctx, c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	if !rec.Visible && !isAdmin(c) {
		return respondErr(c, store.ErrNotFound)
	}
	caller, err := callerLocation(c)
	if err != nil {
		return respondErr(c, err)
	}
	if _, err := guard.CheckView(caller, geo.Coordinate{Lat: rec.Lat, Lng: rec.Lng}); err != nil {
		return respondErr(c, err)
	}

	var p FlagJSON
	if err := c.BodyParser(&p); err != nil {
		return badReq(c, "invalid JSON")
	}

	res, err := modEng.SubmitFlag(ctx, rec.ID.Hex(), callerIdentity(c), p.Reason, models.FlagType(p.Type))
	if err != nil {
		return respondErr(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(FlagResp{
		OK:         true,
		FlagID:     res.Flag.ID.Hex(),
		FlagCount:  res.FlagCount,
		Visible:    res.Visible,
		AutoHidden: res.AutoHidden,
	})
}
