package credentials

// TokenPair is the session credential pair issued on login or registration
// confirmation and replaced atomically on every refresh. The access token is a
// short-lived bearer credential; the refresh token is the longer-lived secret
// used to mint a new pair without re-entering a password.
type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

// Repo persists the client's token pair. Load returns (nil, nil) when no
// credentials are stored - an unauthenticated client is a normal state, not
// an error. Save replaces any existing pair; Clear is idempotent.
type Repo interface {
	Save(pair TokenPair) error
	Load() (*TokenPair, error)
	Clear() error
}
