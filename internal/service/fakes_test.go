package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/SofiSoft/sofisoft-admin/internal/domain/api"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type backendCall struct {
	op  string
	req any
}

// fakeBackend implements outbound.SofiSoftAPI by recording every call and
// answering through respond (or an empty JSON object when respond is nil).
type fakeBackend struct {
	mu      sync.Mutex
	calls   []backendCall
	respond func(op string, req any) (api.Payload, error)
}

func (f *fakeBackend) do(op string, req any) (api.Payload, error) {
	f.mu.Lock()
	f.calls = append(f.calls, backendCall{op: op, req: req})
	respond := f.respond
	f.mu.Unlock()
	if respond != nil {
		return respond(op, req)
	}
	return api.JSONPayload([]byte(`{}`)), nil
}

func (f *fakeBackend) recorded() []backendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backendCall(nil), f.calls...)
}

func (f *fakeBackend) count(op string) int {
	n := 0
	for _, c := range f.recorded() {
		if c.op == op {
			n++
		}
	}
	return n
}

func (f *fakeBackend) Login(_ context.Context, req api.LoginRequest) (api.Payload, error) {
	return f.do("Login", req)
}

func (f *fakeBackend) DashboardMagasins(_ context.Context, p api.DashboardParams) (api.Payload, error) {
	return f.do("DashboardMagasins", p)
}

func (f *fakeBackend) EvolutionCA(_ context.Context, p api.DashboardParams) (api.Payload, error) {
	return f.do("EvolutionCA", p)
}

func (f *fakeBackend) GetInfosByDate(_ context.Context, req api.InfosByDateRequest) (api.Payload, error) {
	return f.do("GetInfosByDate", req)
}

func (f *fakeBackend) GetInfosDay(_ context.Context, req api.InfosDayRequest) (api.Payload, error) {
	return f.do("GetInfosDay", req)
}

func (f *fakeBackend) GetMagasins(_ context.Context) (api.Payload, error) {
	return f.do("GetMagasins", nil)
}

func (f *fakeBackend) GetMagasinsInfos(_ context.Context, req api.DateRange) (api.Payload, error) {
	return f.do("GetMagasinsInfos", req)
}

func (f *fakeBackend) GetMagasinsInfoByDate(_ context.Context, req api.OptionalDateRange) (api.Payload, error) {
	return f.do("GetMagasinsInfoByDate", req)
}

func (f *fakeBackend) CompareMagasins(_ context.Context, req api.CompareMagasinsRequest) (api.Payload, error) {
	return f.do("CompareMagasins", req)
}

func (f *fakeBackend) GetComparePeriode(_ context.Context, req api.ComparePeriodeRequest) (api.Payload, error) {
	return f.do("GetComparePeriode", req)
}

func (f *fakeBackend) BestSalesPrds(_ context.Context, req api.BestSalesRequest) (api.Payload, error) {
	return f.do("BestSalesPrds", req)
}

func (f *fakeBackend) GetPrdsVendus(_ context.Context, req api.ProductsSoldRequest) (api.Payload, error) {
	return f.do("GetPrdsVendus", req)
}

func (f *fakeBackend) GetLineVentes(_ context.Context, req api.SaleLinesRequest) (api.Payload, error) {
	return f.do("GetLineVentes", req)
}

func (f *fakeBackend) GetDimsPrdVendus(_ context.Context, req api.DimsSoldRequest) (api.Payload, error) {
	return f.do("GetDimsPrdVendus", req)
}

func (f *fakeBackend) GetDims(_ context.Context, req api.BarcodeRequest) (api.Payload, error) {
	return f.do("GetDims", req)
}

func (f *fakeBackend) StockByProduct(_ context.Context, req api.StockByProductRequest) (api.Payload, error) {
	return f.do("StockByProduct", req)
}

func (f *fakeBackend) GlobalStock(_ context.Context, req api.GlobalStockRequest) (api.Payload, error) {
	return f.do("GlobalStock", req)
}

func (f *fakeBackend) GetParam(_ context.Context, req api.ParamRequest) (api.Payload, error) {
	return f.do("GetParam", req)
}

// failingStore is a KVStore whose writes always fail.
type failingStore struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func (s *failingStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *failingStore) Set(string, string) error {
	return s.err
}
