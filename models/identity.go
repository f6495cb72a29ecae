// path: models/identity.go
package models

// Identity is who flagged or reported: a registered user id or an
// anonymous session token, never both and never neither. The zero value
// is invalid and rejected by the engines; use the constructors.
type Identity struct {
	userID  string
	session string
}

func RegisteredIdentity(userID string) Identity {
	return Identity{userID: userID}
}

func AnonymousIdentity(sessionToken string) Identity {
	return Identity{session: sessionToken}
}

func (i Identity) IsZero() bool {
	return i.userID == "" && i.session == ""
}

// Registered returns the user id when the identity belongs to a
// registered user.
func (i Identity) Registered() (string, bool) {
	return i.userID, i.userID != ""
}

// Session returns the session token of an anonymous identity.
func (i Identity) Session() (string, bool) {
	return i.session, i.userID == "" && i.session != ""
}

// Key is the stable storage key used by the unresolved-flag uniqueness
// constraint. The prefix keeps user ids and session tokens from
// colliding.
func (i Identity) Key() string {
	if i.userID != "" {
		return "user:" + i.userID
	}
	if i.session != "" {
		return "anon:" + i.session
	}
	return ""
}
