package models

// Viewer is the request-scoped identity and locale resolved once per request.
type Viewer struct {
	Locale  string
	Claims  *JWTClaims
	IsAdmin bool
}

// UserID returns the authenticated user id, if any.
func (v Viewer) UserID() *string {
	if v.Claims == nil || v.Claims.UserID == "" {
		return nil
	}
	id := v.Claims.UserID
	return &id
}

// Authenticated reports whether the request carried valid credentials.
func (v Viewer) Authenticated() bool {
	return v.Claims != nil
}
