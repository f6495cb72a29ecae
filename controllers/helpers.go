// path: controllers/helpers.go
package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/access"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/geo"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/lifecycle"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/middleware"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/models"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/moderation"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/store"
)

type ErrorResp struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	// DistanceKm is set on proximity denials so the caller knows why.
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

func badReq(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResp{OK: false, Error: msg})
}

func serverErr(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResp{OK: false, Error: err.Error()})
}

// respondErr maps the engine error taxonomy onto HTTP statuses. Every
// expected failure lands here; only truly unknown errors become 500s.
func respondErr(c *fiber.Ctx, err error) error {
	var (
		invalidCoord *geo.InvalidCoordinateError
		denied       *access.DeniedError
		radius       *access.RadiusOutOfRangeError
		unchanged    *lifecycle.StatusUnchangedError
		invalidTrans *lifecycle.InvalidTransitionError
		comment      *lifecycle.CommentRequiredError
		reason       *moderation.ReasonError
		flagType     *moderation.InvalidFlagTypeError
		reviewAction *moderation.InvalidReviewActionError
		unavailable  *store.UnavailableError
	)

	switch {
	case errors.As(err, &denied):
		d := denied.DistanceKm
		return c.Status(fiber.StatusForbidden).JSON(ErrorResp{OK: false, Error: err.Error(), DistanceKm: &d})
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResp{OK: false, Error: "record not found"})
	case errors.Is(err, store.ErrDuplicateFlag),
		errors.As(err, &unchanged):
		return c.Status(fiber.StatusConflict).JSON(ErrorResp{OK: false, Error: err.Error()})
	case errors.Is(err, access.ErrMissingCallerLocation),
		errors.Is(err, moderation.ErrSelfFlag),
		errors.Is(err, moderation.ErrMissingIdentity),
		errors.As(err, &invalidCoord),
		errors.As(err, &radius),
		errors.As(err, &invalidTrans),
		errors.As(err, &comment),
		errors.As(err, &reason),
		errors.As(err, &flagType),
		errors.As(err, &reviewAction):
		return badReq(c, err.Error())
	case errors.As(err, &unavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResp{OK: false, Error: "storage temporarily unavailable"})
	default:
		return serverErr(c, err)
	}
}

// callerLocation reads the caller's position from X-Caller-Lat/Lng
// headers, falling back to caller_lat/caller_lng query params. nil means
// the caller supplied none; malformed or invalid values are an error.
func callerLocation(c *fiber.Ctx) (*geo.Coordinate, error) {
	latStr := strings.TrimSpace(c.Get("X-Caller-Lat"))
	lngStr := strings.TrimSpace(c.Get("X-Caller-Lng"))
	if latStr == "" && lngStr == "" {
		latStr = strings.TrimSpace(c.Query("caller_lat"))
		lngStr = strings.TrimSpace(c.Query("caller_lng"))
	}
	if latStr == "" && lngStr == "" {
		return nil, nil
	}

	lat, err1 := strconv.ParseFloat(latStr, 64)
	lng, err2 := strconv.ParseFloat(lngStr, 64)
	if err1 != nil || err2 != nil {
		return nil, &geo.InvalidCoordinateError{Lat: lat, Lng: lng}
	}
	coord, err := geo.NewCoordinate(lat, lng)
	if err != nil {
		return nil, err
	}
	return &coord, nil
}

// callerIdentity builds the flagger/reporter identity from the request,
// preferring the authenticated user over a session token.
func callerIdentity(c *fiber.Ctx) models.Identity {
	if userID, _ := c.Locals(middleware.LocalUserID).(string); userID != "" {
		return models.RegisteredIdentity(userID)
	}
	if token, _ := c.Locals(middleware.LocalSessionToken).(string); token != "" {
		return models.AnonymousIdentity(token)
	}
	return models.Identity{}
}

func isAdmin(c *fiber.Ctx) bool {
	role, _ := c.Locals(middleware.LocalRole).(string)
	return role == "admin"
}
