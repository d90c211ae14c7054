package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/SofiSoft/sofisoft-admin/internal/domain/api"
	"github.com/SofiSoft/sofisoft-admin/internal/port/outbound"
)

var _ outbound.SofiSoftAPI = (*Client)(nil)

// Backend paths.
const (
	PathLogin              = "/Login"
	PathDashboardMagasins  = "/dashboardMagasins"
	PathEvolutionCA        = "/evolutionCA"
	PathInfosByDate        = "/getInfosByDate"
	PathInfosDay           = "/getInfosDay"
	PathMagasins           = "/getMagasins"
	PathMagasinsInfos      = "/getMagasinsInfos"
	PathMagasinsInfoByDate = "/getMagasinsInfoByDate"
	PathCompareMagasins    = "/compareMagasins"
	PathComparePeriode     = "/getComparePeriode"
	PathBestSales          = "/bestSalesPrds"
	PathProductsSold       = "/getPrdsVendus"
	PathSaleLines          = "/getLineVentes"
	PathDimsSold           = "/getDimsPrdVendus"
	PathDims               = "/getDims"
	PathStockByProduct     = "/StockByProduct"
	PathGlobalStock        = "/GlobalStock"
	PathParam              = "/getParam"
)

// queryParam is one name/value pair of a GET query string.
type queryParam struct {
	name, value string
}

// withQuery appends the non-empty params to path in the given order.
func withQuery(path string, params ...queryParam) string {
	var b strings.Builder
	for _, p := range params {
		if p.value == "" {
			continue
		}
		if b.Len() == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return path + b.String()
}

func dashboardQuery(path string, p api.DashboardParams) string {
	return withQuery(path,
		queryParam{"magasinId", p.MagasinID},
		queryParam{"dateStart", p.DateStart},
		queryParam{"dateEnd", p.DateEnd},
	)
}

func (c *Client) post(ctx context.Context, path string, body any) (api.Payload, error) {
	return c.Request(ctx, http.MethodPost, path, body)
}

// Login exchanges credentials for a session payload.
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (api.Payload, error) {
	return c.post(ctx, PathLogin, req)
}

// DashboardMagasins returns the dashboard KPIs.
func (c *Client) DashboardMagasins(ctx context.Context, p api.DashboardParams) (api.Payload, error) {
	return c.Request(ctx, http.MethodGet, dashboardQuery(PathDashboardMagasins, p), nil)
}

// EvolutionCA returns the revenue evolution series.
func (c *Client) EvolutionCA(ctx context.Context, p api.DashboardParams) (api.Payload, error) {
	return c.Request(ctx, http.MethodGet, dashboardQuery(PathEvolutionCA, p), nil)
}

func (c *Client) GetInfosByDate(ctx context.Context, req api.InfosByDateRequest) (api.Payload, error) {
	return c.post(ctx, PathInfosByDate, req)
}

func (c *Client) GetInfosDay(ctx context.Context, req api.InfosDayRequest) (api.Payload, error) {
	return c.post(ctx, PathInfosDay, req)
}

// GetMagasins lists the stores. The backend expects an empty JSON object.
func (c *Client) GetMagasins(ctx context.Context) (api.Payload, error) {
	return c.post(ctx, PathMagasins, struct{}{})
}

func (c *Client) GetMagasinsInfos(ctx context.Context, req api.DateRange) (api.Payload, error) {
	return c.post(ctx, PathMagasinsInfos, req)
}

func (c *Client) GetMagasinsInfoByDate(ctx context.Context, req api.OptionalDateRange) (api.Payload, error) {
	return c.post(ctx, PathMagasinsInfoByDate, req)
}

func (c *Client) CompareMagasins(ctx context.Context, req api.CompareMagasinsRequest) (api.Payload, error) {
	if req.MagasinIDs == nil {
		req.MagasinIDs = []string{}
	}
	return c.post(ctx, PathCompareMagasins, req)
}

func (c *Client) GetComparePeriode(ctx context.Context, req api.ComparePeriodeRequest) (api.Payload, error) {
	return c.post(ctx, PathComparePeriode, req)
}

func (c *Client) BestSalesPrds(ctx context.Context, req api.BestSalesRequest) (api.Payload, error) {
	return c.post(ctx, PathBestSales, req)
}

func (c *Client) GetPrdsVendus(ctx context.Context, req api.ProductsSoldRequest) (api.Payload, error) {
	return c.post(ctx, PathProductsSold, req)
}

func (c *Client) GetLineVentes(ctx context.Context, req api.SaleLinesRequest) (api.Payload, error) {
	return c.post(ctx, PathSaleLines, req)
}

func (c *Client) GetDimsPrdVendus(ctx context.Context, req api.DimsSoldRequest) (api.Payload, error) {
	return c.post(ctx, PathDimsSold, req)
}

// GetDims returns the dimensions known for a barcode.
func (c *Client) GetDims(ctx context.Context, req api.BarcodeRequest) (api.Payload, error) {
	return c.post(ctx, PathDims, req)
}

func (c *Client) StockByProduct(ctx context.Context, req api.StockByProductRequest) (api.Payload, error) {
	return c.post(ctx, PathStockByProduct, req)
}

func (c *Client) GlobalStock(ctx context.Context, req api.GlobalStockRequest) (api.Payload, error) {
	return c.post(ctx, PathGlobalStock, req)
}

// GetParam returns a server-side parameter module.
func (c *Client) GetParam(ctx context.Context, req api.ParamRequest) (api.Payload, error) {
	return c.post(ctx, PathParam, req)
}
