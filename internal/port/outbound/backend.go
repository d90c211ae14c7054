// Package outbound defines the outbound port interfaces: the SofiSoft backend
// API and the persisted client store.
package outbound

import (
	"context"

	"github.com/SofiSoft/sofisoft-admin/internal/domain/api"
)

// LoginAPI is the backend login operation.
type LoginAPI interface {
	Login(ctx context.Context, req api.LoginRequest) (api.Payload, error)
}

// SofiSoftAPI is the full set of named backend operations.
// Adapters implement this over HTTP; every call returns the opaque payload.
type SofiSoftAPI interface {
	LoginAPI

	DashboardMagasins(ctx context.Context, p api.DashboardParams) (api.Payload, error)
	EvolutionCA(ctx context.Context, p api.DashboardParams) (api.Payload, error)
	GetInfosByDate(ctx context.Context, req api.InfosByDateRequest) (api.Payload, error)
	GetInfosDay(ctx context.Context, req api.InfosDayRequest) (api.Payload, error)

	GetMagasins(ctx context.Context) (api.Payload, error)
	GetMagasinsInfos(ctx context.Context, req api.DateRange) (api.Payload, error)
	GetMagasinsInfoByDate(ctx context.Context, req api.OptionalDateRange) (api.Payload, error)

	CompareMagasins(ctx context.Context, req api.CompareMagasinsRequest) (api.Payload, error)
	GetComparePeriode(ctx context.Context, req api.ComparePeriodeRequest) (api.Payload, error)

	BestSalesPrds(ctx context.Context, req api.BestSalesRequest) (api.Payload, error)
	GetPrdsVendus(ctx context.Context, req api.ProductsSoldRequest) (api.Payload, error)
	GetLineVentes(ctx context.Context, req api.SaleLinesRequest) (api.Payload, error)
	GetDimsPrdVendus(ctx context.Context, req api.DimsSoldRequest) (api.Payload, error)

	GetDims(ctx context.Context, req api.BarcodeRequest) (api.Payload, error)
	StockByProduct(ctx context.Context, req api.StockByProductRequest) (api.Payload, error)
	GlobalStock(ctx context.Context, req api.GlobalStockRequest) (api.Payload, error)

	GetParam(ctx context.Context, req api.ParamRequest) (api.Payload, error)
}
