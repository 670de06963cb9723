//goland:noinspection GoNameStartsWithPackageName
package catalog

import (
	catalogusecase "fake-store/go-client/internal/domains/catalog/usecase"
)

type Service = catalogusecase.Service
type Options = catalogusecase.Options

var ErrInvalidProductID = catalogusecase.ErrInvalidProductID

var NewService = catalogusecase.NewService
