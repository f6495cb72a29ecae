// path: controllers/controllers.go
package controllers

import (
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/access"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/ban"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/lifecycle"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/moderation"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/store"
)

// Package-level engine handles, wired once from main (and from tests).
var (
	recordStore store.Store
	guard       access.Guard
	issuesEng   *lifecycle.Engine
	modEng      *moderation.Engine
	evaluator   *ban.Evaluator
)

// Setup injects the engines the handlers delegate to.
func Setup(st store.Store, g access.Guard, lc *lifecycle.Engine, me *moderation.Engine, be *ban.Evaluator) {
	recordStore = st
	guard = g
	issuesEng = lc
	modEng = me
	evaluator = be
}
