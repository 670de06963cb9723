package model

import (
	"errors"
	"strings"

	"fake-store/go-client/pkg/models"
)

var (
	ErrNotAuthenticated      = errors.New("not authenticated")
	ErrAlreadyAuthenticated  = errors.New("already authenticated")
	ErrAlreadyAuthenticating = errors.New("authentication already in progress")
	ErrSessionSuperseded     = errors.New("session changed while the request was in flight")
	ErrNothingToUpdate       = errors.New("profile update needs a name or a password")
	ErrMissingCredentials    = errors.New("email and password are required")
)

// ExpiredMessage is recorded when the service rejects a held credential.
const ExpiredMessage = "Your session has expired. Please sign in again."

// Persisted is what survives a restart: the bearer token and the user it
// belongs to.
type Persisted struct {
	Token string
	User  models.User
}

func (p Persisted) Complete() bool {
	return strings.TrimSpace(p.Token) != "" && strings.TrimSpace(p.User.ID) != ""
}

func Anonymous(lastError string) models.SessionState {
	return models.SessionState{Status: models.SessionAnonymous, LastError: lastError}
}

func Authenticated(user models.User, token string) models.SessionState {
	u := user
	return models.SessionState{
		Status:     models.SessionAuthenticated,
		User:       &u,
		Credential: &models.Credential{Token: token, UserID: user.ID},
	}
}
