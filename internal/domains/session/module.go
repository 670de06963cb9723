//goland:noinspection GoNameStartsWithPackageName
package session

import (
	sessionmodel "fake-store/go-client/internal/domains/session/model"
	sessionusecase "fake-store/go-client/internal/domains/session/usecase"
)

type Service = sessionusecase.Service
type Options = sessionusecase.Options
type Persisted = sessionmodel.Persisted

const StoreName = sessionusecase.StoreName

var (
	ErrNotAuthenticated      = sessionmodel.ErrNotAuthenticated
	ErrAlreadyAuthenticated  = sessionmodel.ErrAlreadyAuthenticated
	ErrAlreadyAuthenticating = sessionmodel.ErrAlreadyAuthenticating
	ErrSessionSuperseded     = sessionmodel.ErrSessionSuperseded
	ErrNothingToUpdate       = sessionmodel.ErrNothingToUpdate
	ErrMissingCredentials    = sessionmodel.ErrMissingCredentials
)

var NewService = sessionusecase.NewService

type Module struct {
	Service *Service
	Store   *StateStore
}
