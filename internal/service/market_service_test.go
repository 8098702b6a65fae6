package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rein-lin153/CableWeb/internal/config"
	"github.com/rein-lin153/CableWeb/internal/repository"
	"github.com/rein-lin153/CableWeb/internal/testutil"
	"go.uber.org/zap"
)

func TestParseSinaQuote(t *testing.T) {
	body := `var hq_str_nf_CU0="沪铜连续,145958,73260.000,73440.000,73130.000,73270.000,73280.000,73270.000,73275.000,73270.000,0,0,243912,169108,沪,铜,2024-01-15";`
	price, err := ParseSinaQuote(body)
	if err != nil {
		t.Fatalf("ParseSinaQuote error: %v", err)
	}
	if price != 73275.0 {
		t.Errorf("price = %v, want 73275", price)
	}
}

func TestParseSinaQuote_Malformed(t *testing.T) {
	cases := []string{
		"",
		"var hq_str_nf_CU0=;",
		`var hq_str_nf_CU0="a,b,c";`,
		`var hq_str_nf_CU0="a,b,c,d,e,f,g,h,not-a-number,j";`,
		`var hq_str_nf_CU0="a,b,c,d,e,f,g,h,-5,j";`,
	}
	for _, body := range cases {
		if _, err := ParseSinaQuote(body); err == nil {
			t.Errorf("ParseSinaQuote(%q) expected error", body)
		}
	}
}

func TestMarketRefresh(t *testing.T) {
	db := testutil.SetupTestDB(t)

	quoteSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`var hq_str_nf_CU0="CU,145958,0,0,0,0,0,0,73000.000,72900.000,0";`))
	}))
	defer quoteSrv.Close()

	rateSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"base":"USD","rates":{"CNY":7.3,"EUR":0.92}}`))
	}))
	defer rateSrv.Close()

	svc := NewMarketService(
		repository.NewMarketRepository(db),
		nil,
		config.MarketConfig{
			SinaQuoteURL:    quoteSrv.URL,
			ExchangeRateURL: rateSrv.URL,
			FetchInterval:   time.Hour,
			FetchTimeout:    2 * time.Second,
		},
		zap.NewNop(),
	)

	reading, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if reading.CnyPrice != 73000.0 {
		t.Errorf("CnyPrice = %v, want 73000", reading.CnyPrice)
	}
	if reading.ExchangeRate != 7.3 {
		t.Errorf("ExchangeRate = %v, want 7.3", reading.ExchangeRate)
	}
	if reading.UsdPrice != 10000.0 {
		t.Errorf("UsdPrice = %v, want 10000", reading.UsdPrice)
	}

	latest, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest error: %v", err)
	}
	if latest.CnyPrice != reading.CnyPrice {
		t.Errorf("Latest CnyPrice = %v, want %v", latest.CnyPrice, reading.CnyPrice)
	}
}

func TestMarketRefresh_UpstreamDown(t *testing.T) {
	db := testutil.SetupTestDB(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewMarketService(
		repository.NewMarketRepository(db),
		nil,
		config.MarketConfig{
			SinaQuoteURL:    srv.URL,
			ExchangeRateURL: srv.URL,
			FetchInterval:   time.Hour,
			FetchTimeout:    2 * time.Second,
		},
		zap.NewNop(),
	)

	if _, err := svc.Refresh(context.Background()); err == nil {
		t.Fatal("expected error when upstream is down")
	}
	// 失败的抓取不应写入任何行情
	if _, err := svc.Latest(context.Background()); err == nil {
		t.Fatal("expected no readings after failed refresh")
	}
}
