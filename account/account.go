package account

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-storefront-client/api"
	"github.com/jrsteele09/go-storefront-client/credentials"
	serrors "github.com/jrsteele09/go-storefront-client/internal/errors"
)

// Profile is the account data the storefront exposes for the signed-in user.
type Profile struct {
	Email     string  `json:"email"`
	FirstName string  `json:"first_name,omitempty"`
	LastName  string  `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// Sink receives authentication state for reactive rendering.
type Sink interface {
	SetAuthenticated(identity credentials.Identity)
	SetProfile(profile Profile)
	ClearAuth()
}

// Service handles login, registration, logout and profile management. Login
// and registration confirmation are the only places a token pair is created;
// logout and irrecoverable refresh failure are the only places it is deleted.
type Service struct {
	client *api.Client
	creds  credentials.Repo
	sink   Sink
	logger zerolog.Logger
}

type ServiceOption func(*Service)

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(client *api.Client, creds credentials.Repo, sink Sink, options ...ServiceOption) *Service {
	s := &Service{
		client: client,
		creds:  creds,
		sink:   sink,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// tokenResponse is the credential pair returned on login and registration
// confirmation.
type tokenResponse struct {
	Success bool   `json:"success"`
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login authenticates with email and password, stores the issued token pair
// and derives the user identity from the access token claims.
func (s *Service) Login(ctx context.Context, email, password string) (*credentials.Identity, error) {
	var resp tokenResponse
	if err := s.client.Post(ctx, "auth/login/", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, errors.Wrap(err, "account.Service.Login")
	}
	return s.storeSession(resp)
}

// Register creates an account. The backend issues a token pair on
// registration confirmation, which is stored like a login.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*credentials.Identity, error) {
	var resp tokenResponse
	if err := s.client.Post(ctx, "auth/register/", req, &resp); err != nil {
		return nil, errors.Wrap(err, "account.Service.Register")
	}
	return s.storeSession(resp)
}

func (s *Service) storeSession(resp tokenResponse) (*credentials.Identity, error) {
	if !resp.Success || resp.Access == "" {
		return nil, errors.Wrap(serrors.ErrRequestRejected, "no session issued")
	}

	if err := s.creds.Save(credentials.TokenPair{
		AccessToken:  resp.Access,
		RefreshToken: resp.Refresh,
	}); err != nil {
		return nil, errors.Wrap(err, "account.Service.storeSession Save")
	}

	identity, err := credentials.ParseIdentity(resp.Access)
	if err != nil {
		// Opaque access tokens still authenticate; identity display degrades.
		s.logger.Warn().Err(err).Msg("access token carries no readable identity claims")
		identity = &credentials.Identity{}
	}

	if s.sink != nil {
		s.sink.SetAuthenticated(*identity)
	}
	s.logger.Debug().Str("subject", identity.Subject).Msg("session established")
	return identity, nil
}

// Logout clears the stored credentials and the auth state. The server-side
// invalidation is best effort: the local session ends regardless.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.client.Post(ctx, "auth/logout/", nil, nil); err != nil {
		s.logger.Debug().Err(err).Msg("server logout failed, clearing local session anyway")
	}

	if err := s.creds.Clear(); err != nil {
		return errors.Wrap(err, "account.Service.Logout Clear")
	}
	if s.sink != nil {
		s.sink.ClearAuth()
	}
	return nil
}

// CurrentIdentity returns the identity from the stored access token, or
// ErrNotAuthenticated when no session exists.
func (s *Service) CurrentIdentity() (*credentials.Identity, error) {
	pair, err := s.creds.Load()
	if err != nil {
		return nil, errors.Wrap(err, "account.Service.CurrentIdentity Load")
	}
	if pair == nil || pair.AccessToken == "" {
		return nil, serrors.ErrNotAuthenticated
	}
	return credentials.ParseIdentity(pair.AccessToken)
}

// Profile fetches the signed-in user's profile.
func (s *Service) Profile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := s.client.Get(ctx, "account/profile/", &profile); err != nil {
		return nil, errors.Wrap(err, "account.Service.Profile")
	}
	if s.sink != nil {
		s.sink.SetProfile(profile)
	}
	return &profile, nil
}

// UpdateProfile replaces the signed-in user's profile.
func (s *Service) UpdateProfile(ctx context.Context, profile Profile) (*Profile, error) {
	var updated Profile
	if err := s.client.Put(ctx, "account/profile/", profile, &updated); err != nil {
		return nil, errors.Wrap(err, "account.Service.UpdateProfile")
	}
	if s.sink != nil {
		s.sink.SetProfile(updated)
	}
	return &updated, nil
}
