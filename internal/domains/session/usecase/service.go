package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	sessionmodel "fake-store/go-client/internal/domains/session/model"
	"fake-store/go-client/internal/lifecycle"
	"fake-store/go-client/internal/remote"
	"fake-store/go-client/pkg/models"
)

const StoreName = "session"

type Remote interface {
	SignUp(ctx context.Context, name, email, password string) (remote.AuthResponse, error)
	SignIn(ctx context.Context, email, password string) (remote.AuthResponse, error)
	UpdateUser(ctx context.Context, name, password string) (string, error)
}

// CredentialHolder is the remote client's token slot. Only this store writes it.
type CredentialHolder interface {
	SetToken(token string)
	ClearToken()
}

type Persistence interface {
	Load() (sessionmodel.Persisted, bool, error)
	Save(p sessionmodel.Persisted) error
	Clear() error
}

type Options struct {
	Remote      Remote
	Credentials CredentialHolder
	Persistence Persistence
	Hub         *lifecycle.Hub
	Logger      *slog.Logger
}

type Service struct {
	remote      Remote
	credentials CredentialHolder
	persistence Persistence
	hub         *lifecycle.Hub
	logger      *slog.Logger

	mu    sync.Mutex
	state models.SessionState
	// epoch changes on every sign-in attempt, sign-out and expiry so that a
	// late response from an abandoned request is discarded.
	epoch uint64
}

func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	persistence := opts.Persistence
	if persistence == nil {
		persistence = noPersistence{}
	}
	return &Service{
		remote:      opts.Remote,
		credentials: opts.Credentials,
		persistence: persistence,
		hub:         opts.Hub,
		logger:      logger,
		state:       sessionmodel.Anonymous(""),
	}
}

func (s *Service) Snapshot() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Service) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Status == models.SessionAuthenticated
}

func (s *Service) SignUp(ctx context.Context, name, email, password string) (models.User, error) {
	return s.authenticate(ctx, "signUp", email, password, func(ctx context.Context) (remote.AuthResponse, error) {
		return s.remote.SignUp(ctx, strings.TrimSpace(name), strings.TrimSpace(email), password)
	})
}

func (s *Service) SignIn(ctx context.Context, email, password string) (models.User, error) {
	return s.authenticate(ctx, "signIn", email, password, func(ctx context.Context) (remote.AuthResponse, error) {
		return s.remote.SignIn(ctx, strings.TrimSpace(email), password)
	})
}

func (s *Service) authenticate(ctx context.Context, action, email, password string, call func(context.Context) (remote.AuthResponse, error)) (models.User, error) {
	return lifecycle.Run(ctx, s.hub, StoreName, action, func(ctx context.Context) (models.User, error) {
		if strings.TrimSpace(email) == "" || password == "" {
			return models.User{}, sessionmodel.ErrMissingCredentials
		}
		epoch, err := s.beginAuthentication()
		if err != nil {
			return models.User{}, err
		}

		resp, err := call(ctx)
		if err == nil && strings.TrimSpace(resp.Token) == "" {
			err = &remote.TransportError{Endpoint: action, Err: errors.Join(remote.ErrMalformedPayload, errors.New("missing token"))}
		}

		s.mu.Lock()
		if s.epoch != epoch {
			s.mu.Unlock()
			return models.User{}, sessionmodel.ErrSessionSuperseded
		}
		if err != nil {
			s.state = sessionmodel.Anonymous(remote.UserMessage(err))
			s.mu.Unlock()
			s.logger.Warn("authentication failed", "action", action, "error", err)
			return models.User{}, err
		}
		user := models.User{ID: string(resp.ID), Name: resp.Name, Email: resp.Email}
		s.credentials.SetToken(resp.Token)
		s.state = sessionmodel.Authenticated(user, resp.Token)
		s.mu.Unlock()

		if err := s.persistence.Save(sessionmodel.Persisted{Token: resp.Token, User: user}); err != nil {
			s.logger.Warn("session persist failed", "error", err)
		}
		s.logger.Info("authenticated", "action", action, "user_id", user.ID)
		return user, nil
	})
}

func (s *Service) beginAuthentication() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state.Status {
	case models.SessionAuthenticated:
		return 0, sessionmodel.ErrAlreadyAuthenticated
	case models.SessionAuthenticating:
		return 0, sessionmodel.ErrAlreadyAuthenticating
	}
	s.epoch++
	s.state = models.SessionState{Status: models.SessionAuthenticating}
	return s.epoch, nil
}

// UpdateProfile merges the name the service returns into the current user.
// Status is unchanged whatever the outcome.
func (s *Service) UpdateProfile(ctx context.Context, name, password string) (models.User, error) {
	return lifecycle.Run(ctx, s.hub, StoreName, "updateProfile", func(ctx context.Context) (models.User, error) {
		s.mu.Lock()
		if s.state.Status != models.SessionAuthenticated || s.state.User == nil {
			s.mu.Unlock()
			return models.User{}, sessionmodel.ErrNotAuthenticated
		}
		epoch := s.epoch
		s.mu.Unlock()

		name = strings.TrimSpace(name)
		if name == "" && password == "" {
			return models.User{}, sessionmodel.ErrNothingToUpdate
		}
		returnedName, err := s.remote.UpdateUser(ctx, name, password)
		if errors.Is(err, remote.ErrUnauthorized) {
			s.logger.Warn("profile update refused", "error", err)
			return models.User{}, fmt.Errorf("%w: %w", sessionmodel.ErrNotAuthenticated, err)
		}

		s.mu.Lock()
		if s.epoch != epoch || s.state.Status != models.SessionAuthenticated {
			s.mu.Unlock()
			return models.User{}, sessionmodel.ErrSessionSuperseded
		}
		if err != nil {
			s.state.LastError = remote.UserMessage(err)
			s.mu.Unlock()
			s.logger.Warn("profile update failed", "error", err)
			return models.User{}, err
		}
		if returnedName = strings.TrimSpace(returnedName); returnedName != "" {
			s.state.User.Name = returnedName
		}
		s.state.LastError = ""
		user := *s.state.User
		token := s.state.Credential.Token
		s.mu.Unlock()

		if err := s.persistence.Save(sessionmodel.Persisted{Token: token, User: user}); err != nil {
			s.logger.Warn("session persist failed", "error", err)
		}
		return user, nil
	})
}

// SignOut always ends in anonymous. A failure to clear persisted state is
// logged, not returned.
func (s *Service) SignOut() {
	s.mu.Lock()
	s.epoch++
	s.credentials.ClearToken()
	s.state = sessionmodel.Anonymous("")
	out := s.state.Clone()
	s.mu.Unlock()

	if err := s.persistence.Clear(); err != nil {
		s.logger.Warn("session clear failed", "error", err)
	}
	lifecycle.Changed(s.hub, StoreName, "signOut", out)
}

// RestoreSession trusts the persisted credential without a round trip; the
// first remote call that is refused ends the session via HandleUnauthorized.
func (s *Service) RestoreSession() (bool, error) {
	persisted, ok, err := s.persistence.Load()
	if err != nil {
		s.logger.Warn("session restore failed", "error", err)
		return false, fmt.Errorf("restore session: %w", err)
	}
	if !ok {
		return false, nil
	}

	s.mu.Lock()
	if s.state.Status != models.SessionAnonymous {
		s.mu.Unlock()
		return false, nil
	}
	s.epoch++
	s.credentials.SetToken(persisted.Token)
	s.state = sessionmodel.Authenticated(persisted.User, persisted.Token)
	out := s.state.Clone()
	s.mu.Unlock()

	lifecycle.Changed(s.hub, StoreName, "restoreSession", out)
	s.logger.Info("session restored", "user_id", persisted.User.ID)
	return true, nil
}

// HandleUnauthorized ends the session when the service refused token and
// token is still the one held. Refusals of an older token are ignored.
func (s *Service) HandleUnauthorized(token string) bool {
	s.mu.Lock()
	if s.state.Status != models.SessionAuthenticated || s.state.Credential == nil || s.state.Credential.Token != token {
		s.mu.Unlock()
		return false
	}
	s.epoch++
	s.credentials.ClearToken()
	s.state = sessionmodel.Anonymous(sessionmodel.ExpiredMessage)
	out := s.state.Clone()
	s.mu.Unlock()

	if err := s.persistence.Clear(); err != nil {
		s.logger.Warn("session clear failed", "error", err)
	}
	lifecycle.Changed(s.hub, StoreName, "expired", out)
	s.logger.Warn("session expired")
	return true
}

func (s *Service) ClearError() {
	s.mu.Lock()
	if s.state.LastError == "" {
		s.mu.Unlock()
		return
	}
	s.state.LastError = ""
	out := s.state.Clone()
	s.mu.Unlock()
	lifecycle.Changed(s.hub, StoreName, "clearError", out)
}

type noPersistence struct{}

func (noPersistence) Load() (sessionmodel.Persisted, bool, error) { return sessionmodel.Persisted{}, false, nil }
func (noPersistence) Save(sessionmodel.Persisted) error             { return nil }
func (noPersistence) Clear() error                                  { return nil }
