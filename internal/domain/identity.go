package domain

// Identity is the authenticated caller derived from a verified session token.
// It lives only for the request that produced it.
type Identity struct {
	Email string `json:"email"`
}
