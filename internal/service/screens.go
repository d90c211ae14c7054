package service

import (
	"context"
	"strings"

	"github.com/SofiSoft/sofisoft-admin/internal/domain/api"
	"github.com/SofiSoft/sofisoft-admin/internal/domain/fetch"
	"github.com/SofiSoft/sofisoft-admin/internal/port/outbound"
)

// Filters are the current filter inputs of a screen, by field name.
type Filters map[string]string

// Need is one data need of a screen.
type Need struct {
	// Name identifies the need on its screen.
	Name string
	// Inputs are the filter fields the call reads, in key order.
	Inputs []string
	// When is the readiness expression over the screen fields. Empty means always.
	When string
	// Call issues the request for the given filters.
	Call func(ctx context.Context, backend outbound.SofiSoftAPI, f Filters) (api.Payload, error)
}

// Key returns the fetch key the need has under f.
func (n Need) Key(screen string, f Filters) fetch.Key {
	parts := make([]any, 0, len(n.Inputs))
	for _, in := range n.Inputs {
		parts = append(parts, f[in])
	}
	return fetch.NewKey(screen+"."+n.Name, parts...)
}

// Screen is a page of the admin client: its filter fields and data needs.
type Screen struct {
	Name     string
	Fields   []string
	Defaults Filters
	Needs    []Need
}

// Default filter values.
const (
	AllMagasins   = "ALL"
	DefaultModule = "ANDROID_UPDATE_APP"
)

const bothDates = `dateStart != "" && dateEnd != ""`

// DashboardScreen is the sales dashboard.
var DashboardScreen = Screen{
	Name:   "dashboard",
	Fields: []string{"magasinId", "dateStart", "dateEnd", "day", "mouvementId", "productCode"},
	Needs: []Need{
		{
			Name:   "kpis",
			Inputs: []string{"magasinId", "dateStart", "dateEnd"},
			When:   bothDates,
			Call: func(ctx context.Context, b outbound.SofiSoftAPI, f Filters) (api.Payload, error) {
				return b.DashboardMagasins(ctx, api.DashboardParams{MagasinID: f["magasinId"], DateStart: f["dateStart"], DateEnd: f["dateEnd"]})
			},
		},
		{
			Name:   "evolution",
			Inputs: []string{"magasinId", "dateStart", "dateEnd"},
			When:   bothDates,
			Call: func(ctx context.Context, b outbound.SofiSoftAPI, f Filters) (api.Payload, error) {
				return b.EvolutionCA(ctx, api.DashboardParams{MagasinID: f["magasinId"], DateStart: f["dateStart"], DateEnd: f["dateEnd"]})
			},
		},
		{
			Name:   "bestSales",
			Inputs: []string{"magasinId", "dateStart", "dateEnd"},
			When:   bothDates,
			Call: func(ctx context.Context, b outbound.SofiSoftAPI, f Filters) (api.Payload, error) {
				magasin := f["magasinId"]
				if magasin == "" {
					magasin = AllMagasins
				}
				return b.BestSalesPrds(ctx, api.BestSalesRequest{MagasinID: magasin, DateStart: f["dateStart"], DateEnd: f["dateEnd"]})
			},
		},
		{
			Name:   "infosByDate",
			Inputs: []string{"magasinId", "dateStart", "dateEnd"},
			When:   bothDates,
			Call: func(ctx context.Context, b outbound.SofiSoftAPI, f Filters) (api.Payload, error) {
				return b.GetInfosByDate(ctx, api.InfosByDateRequest{MagasinID: f["magasinId"], DateStart: f["dateStart"], DateEnd: f["dateEnd"]})
			},
		},
		{
			Name:   "productsSold",
			Inputs: []string{"magasinId", "dateStart", "dateEnd"},
			When:   `magasinId != "" && ` + bothDates,
			Call: func(ctx context.Context, b outbound.SofiSoftAPI, f Filters) (api.Payload, error) {
				return b.GetPrdsVendus(ctx, api.ProductsSoldRequest{MagasinID: f["magasinId"], DateStart: f["dateStart"], DateEnd: f["dateEnd"]})
			},
		},
		{
			Name:   "infosDay",
			Inputs: []string{"magasinId", "day"},
			When:   `magasinId != "" && day != ""`,
			Call: func(ctx context.Context, b outbound.SofiSoftAPI, f Filters) (api.Payload, error) {
				return b.GetInfosDay(ctx, api.InfosDayRequest{MagasinID: f["magasinId"], Date: f["day"]})
			},
		},
		{
			Name:   "saleLines",
			Inputs: []string{"magasinId", "mouvementId"},
			When:   `magasinId != "" && mouvementId != ""`,
			Call: func(ctx context.Context, b outbound.SofiSoftAPI, f Filters) (api.Payload, error) {
				return b.GetLineVentes(ctx, api.SaleLinesRequest{MagasinID: f["magasinId"], MouvementID: f["mouvementId"]})
			},
		},
		{
			Name:   "dimsSold",
			Inputs: []string{"magasinId", "productCode", "dateStart", "dateEnd"},
			When:   `magasinId != "" && productCode != "" && ` + bothDates,
			Call: func(ctx context.Context, b outbound.SofiSoftAPI, f Filters) (api.Payload, error) {
				return b.GetDimsPrdVendus(ctx, api.DimsSoldRequest{
					MagasinID:   f["magasinId"],
					ProductCode: f["productCode"],
					DateStart:   f["dateStart"],
					DateEnd:     f["dateEnd"],
				})
			},
		},
	},
}

// StoresScreen lists the stores and their figures.
var StoresScreen = Screen{
	Name:   "stores",
	Fields: []string{"dateStart", "dateEnd"},
	Needs: []Need{
		{
			Name: "magasins",
			Call: func(ctx context.Context, b outbound.SofiSoftAPI, _ Filters) (api.Payload, error) {
				return b.GetMagasins(ctx)
			},
		},
		{
			Name:   "infos",
			Inputs: []string{"dateStart", "dateEnd"},
			When:   bothDates,
			Call: func(ctx context.Context, b outbound.SofiSoftAPI, f Filters) (api.Payload, error) {
				return b.GetMagasinsInfos(ctx, api.DateRange{DateStart: f["dateStart"], DateEnd: f["dateEnd"]})
			},
		},
		{
			Name:   "infosByDate",
			Inputs: []string{"dateStart", "dateEnd"},
			Call: func(ctx context.Context, b outbound.SofiSoftAPI, f Filters) (api.Payload, error) {
				return b.GetMagasinsInfoByDate(ctx, api.OptionalDateRange{DateStart: f["dateStart"], DateEnd: f["dateEnd"]})
			},
		},
	},
}

// StockScreen queries stock by product and globally.
var StockScreen = Screen{
	Name:   "stock",
	Fields: []string{"magasinId", "barcode", "productCode", "dims", "filter"},
	Needs: []Need{
		{
			Name:   "dims",
			Inputs: []string{"barcode"},
			When:   `barcode != ""`,
			Call: func(ctx context.Context, b outbound.SofiSoftAPI, f Filters) (api.Payload, error) {
				return b.GetDims(ctx, api.BarcodeRequest{Barcode: f["barcode"]})
			},
		},
		{
			Name:   "stockByProduct",
			Inputs: []string{"magasinId", "productCode", "barcode", "dims"},
			When:   `barcode != "" || productCode != ""`,
			Call: func(ctx context.Context, b outbound.SofiSoftAPI, f Filters) (api.Payload, error) {
				return b.StockByProduct(ctx, api.StockByProductRequest{
					MagasinID:   f["magasinId"],
					ProductCode: f["productCode"],
					Barcode:     f["barcode"],
					Dims:        f["dims"],
				})
			},
		},
		{
			Name:   "globalStock",
			Inputs: []string{"filter"},
			Call: func(ctx context.Context, b outbound.SofiSoftAPI, f Filters) (api.Payload, error) {
				return b.GlobalStock(ctx, api.GlobalStockRequest{Filter: api.StockFilter(f["filter"])})
			},
		},
	},
}

// CompareScreen compares stores and periods.
var CompareScreen = Screen{
	Name:   "compare",
	Fields: []string{"dateStart", "dateEnd", "magasinIds", "magasinId", "start1", "end1", "start2", "end2"},
	Needs: []Need{
		{
			Name:   "compareMagasins",
			Inputs: []string{"magasinIds", "dateStart", "dateEnd"},
			When:   `magasinIds != "" && ` + bothDates,
			Call: func(ctx context.Context, b outbound.SofiSoftAPI, f Filters) (api.Payload, error) {
				return b.CompareMagasins(ctx, api.CompareMagasinsRequest{
					MagasinIDs: SplitIDs(f["magasinIds"]),
					DateStart:  f["dateStart"],
					DateEnd:    f["dateEnd"],
				})
			},
		},
		{
			Name:   "comparePeriode",
			Inputs: []string{"magasinId", "start1", "end1", "start2", "end2"},
			When:   `magasinId != "" && start1 != "" && end1 != "" && start2 != "" && end2 != ""`,
			Call: func(ctx context.Context, b outbound.SofiSoftAPI, f Filters) (api.Payload, error) {
				return b.GetComparePeriode(ctx, api.ComparePeriodeRequest{
					MagasinID: f["magasinId"],
					Start1:    f["start1"],
					End1:      f["end1"],
					Start2:    f["start2"],
					End2:      f["end2"],
				})
			},
		},
	},
}

// ProfileScreen reads a server parameter module.
var ProfileScreen = Screen{
	Name:     "profile",
	Fields:   []string{"module"},
	Defaults: Filters{"module": DefaultModule},
	Needs: []Need{
		{
			Name:   "param",
			Inputs: []string{"module"},
			Call: func(ctx context.Context, b outbound.SofiSoftAPI, f Filters) (api.Payload, error) {
				return b.GetParam(ctx, api.ParamRequest{Module: f["module"]})
			},
		},
	},
}

// Screens returns every screen of the client.
func Screens() []Screen {
	return []Screen{DashboardScreen, StoresScreen, StockScreen, CompareScreen, ProfileScreen}
}

// SplitIDs splits a comma-separated id list, trimming blanks and dropping empties.
func SplitIDs(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
