package api

// DefaultBaseURL is the backend root assumed when nothing is configured or stored.
const DefaultBaseURL = "http://localhost:8080"

// LoginRequest is the body of POST /Login.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// DashboardParams are the query parameters of the GET dashboard endpoints
// (/dashboardMagasins and /evolutionCA). Empty fields are left out of the query string.
type DashboardParams struct {
	MagasinID string
	DateStart string
	DateEnd   string
}

// InfosByDateRequest is the body of POST /getInfosByDate.
type InfosByDateRequest struct {
	MagasinID string `json:"magasinId,omitempty"`
	DateStart string `json:"dateStart"`
	DateEnd   string `json:"dateEnd"`
}

// InfosDayRequest is the body of POST /getInfosDay.
type InfosDayRequest struct {
	MagasinID string `json:"magasinId,omitempty"`
	Date      string `json:"date"`
}

// DateRange is the body of POST /getMagasinsInfos.
type DateRange struct {
	DateStart string `json:"dateStart"`
	DateEnd   string `json:"dateEnd"`
}

// OptionalDateRange is the body of POST /getMagasinsInfoByDate; both bounds may be omitted.
type OptionalDateRange struct {
	DateStart string `json:"dateStart,omitempty"`
	DateEnd   string `json:"dateEnd,omitempty"`
}

// CompareMagasinsRequest is the body of POST /compareMagasins.
type CompareMagasinsRequest struct {
	MagasinIDs []string `json:"magasinIds"`
	DateStart  string   `json:"dateStart"`
	DateEnd    string   `json:"dateEnd"`
}

// ComparePeriodeRequest is the body of POST /getComparePeriode.
type ComparePeriodeRequest struct {
	MagasinID string `json:"magasinId"`
	Start1    string `json:"start1"`
	End1      string `json:"end1"`
	Start2    string `json:"start2"`
	End2      string `json:"end2"`
}

// BestSalesRequest is the body of POST /bestSalesPrds.
type BestSalesRequest struct {
	MagasinID string `json:"magasinId"`
	DateStart string `json:"dateStart"`
	DateEnd   string `json:"dateEnd"`
	Limit     *int   `json:"limit,omitempty"`
}

// ProductsSoldRequest is the body of POST /getPrdsVendus.
type ProductsSoldRequest struct {
	MagasinID string `json:"magasinId"`
	DateStart string `json:"dateStart"`
	DateEnd   string `json:"dateEnd"`
}

// SaleLinesRequest is the body of POST /getLineVentes.
type SaleLinesRequest struct {
	MagasinID   string `json:"magasinId"`
	MouvementID string `json:"mouvementId"`
}

// DimsSoldRequest is the body of POST /getDimsPrdVendus.
type DimsSoldRequest struct {
	MagasinID   string `json:"magasinId"`
	ProductCode string `json:"productCode"`
	DateStart   string `json:"dateStart"`
	DateEnd     string `json:"dateEnd"`
}

// BarcodeRequest is the body of POST /getDims.
type BarcodeRequest struct {
	Barcode string `json:"barcode"`
}

// StockByProductRequest is the body of POST /StockByProduct. Every field is optional.
type StockByProductRequest struct {
	MagasinID   string `json:"magasinId,omitempty"`
	ProductCode string `json:"productCode,omitempty"`
	Barcode     string `json:"barcode,omitempty"`
	Dims        string `json:"dims,omitempty"`
}

// StockFilter selects which stock lines /GlobalStock returns.
type StockFilter string

// Stock filters understood by the backend.
const (
	StockAll    StockFilter = "ALL"
	StockZero   StockFilter = "ZERO"
	StockGtZero StockFilter = "GT_ZERO"
	StockLtZero StockFilter = "LT_ZERO"
)

// Valid reports whether f is empty or one of the known filters.
func (f StockFilter) Valid() bool {
	switch f {
	case "", StockAll, StockZero, StockGtZero, StockLtZero:
		return true
	}
	return false
}

// GlobalStockRequest is the body of POST /GlobalStock.
type GlobalStockRequest struct {
	Filter StockFilter `json:"filter,omitempty"`
}

// ParamRequest is the body of POST /getParam.
type ParamRequest struct {
	Module string `json:"module"`
}
