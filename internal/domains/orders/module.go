//goland:noinspection GoNameStartsWithPackageName
package orders

import (
	ordersmodel "fake-store/go-client/internal/domains/orders/model"
	ordersusecase "fake-store/go-client/internal/domains/orders/usecase"
)

type Service = ordersusecase.Service
type Options = ordersusecase.Options
type Groups = ordersmodel.Groups

const StoreName = ordersusecase.StoreName

var (
	ErrOrderNotFound      = ordersmodel.ErrOrderNotFound
	ErrBackwardTransition = ordersmodel.ErrBackwardTransition
	ErrInvalidTransition  = ordersmodel.ErrInvalidTransition
)

var NewService = ordersusecase.NewService

type Module struct {
	Service *Service
}
