package credentials

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	serrors "github.com/jrsteele09/go-storefront-client/internal/errors"
	"github.com/jrsteele09/go-storefront-client/internal/utils"
)

// Identity is the user information carried in an access token's claims.
// It is extracted without signature verification: the backend is the only
// authority on token validity, the client only needs the claims for display
// and for knowing when a token is due to expire.
type Identity struct {
	Subject   string
	Email     string
	Name      string
	Roles     []string
	ExpiresAt time.Time
}

// ParseIdentity extracts Identity from a raw access token. Parsing is
// unverified (see Identity). An empty or non-JWT token returns ErrInvalidToken.
func ParseIdentity(rawToken string) (*Identity, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, serrors.ErrInvalidToken
	}

	token, _, err := jwt.NewParser().ParseUnverified(rawToken, jwt.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(serrors.ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.Wrap(serrors.ErrInvalidToken, "error extracting claims")
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	exp, _ := claims["exp"].(float64)

	var roles []string
	if claimRoles, ok := claims["roles"].([]interface{}); ok {
		roles = utils.ToStringSlice(claimRoles)
	}

	identity := &Identity{
		Subject: sub,
		Email:   email,
		Name:    name,
		Roles:   roles,
	}
	if exp > 0 {
		identity.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return identity, nil
}

// Expired reports whether the identity's token has passed its expiry at the
// given time. A missing exp claim counts as not expired; the server remains
// the authority either way.
func (i *Identity) Expired(now time.Time) bool {
	if i == nil || i.ExpiresAt.IsZero() {
		return false
	}
	return now.After(i.ExpiresAt)
}
