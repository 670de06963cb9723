//goland:noinspection GoNameStartsWithPackageName
package cart

import (
	cartmodel "fake-store/go-client/internal/domains/cart/model"
	cartusecase "fake-store/go-client/internal/domains/cart/usecase"
)

type Service = cartusecase.Service
type Options = cartusecase.Options
type SyncScheduler = cartusecase.SyncScheduler
type Gauges = cartusecase.Gauges

const StoreName = cartusecase.StoreName

var (
	ErrEmptyCart            = cartusecase.ErrEmptyCart
	ErrRemoteCartNotCleared = cartusecase.ErrRemoteCartNotCleared
	ErrInvalidItem          = cartmodel.ErrInvalidItem
)

var (
	NewService       = cartusecase.NewService
	NewSyncScheduler = cartusecase.NewSyncScheduler
	NewGauges        = cartusecase.NewGauges
)

type Module struct {
	Service   *Service
	Scheduler *SyncScheduler
}
