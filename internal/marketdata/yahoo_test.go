package marketdata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/daywook/stockpilot/pkg/httputil"
	"github.com/daywook/stockpilot/pkg/logger"
)

func testHTTPClient() *httputil.Client {
	return httputil.New(logger.NewNop(), 5*time.Second).DisableRetry()
}

func TestYahooNumberUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		value float64
		valid bool
	}{
		{"raw wrapper", `{"raw": 71900.5, "fmt": "71,900.50"}`, 71900.5, true},
		{"plain number", `12.34`, 12.34, true},
		{"null", `null`, 0, false},
		{"empty object", `{}`, 0, false},
		{"empty string", `""`, 0, false},
		{"wrapper without raw", `{"fmt": "N/A"}`, 0, false},
	}

	for _, tt := range tests {
		var n yahooNumber
		if err := json.Unmarshal([]byte(tt.in), &n); err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if n.Valid != tt.valid || (tt.valid && n.Value != tt.value) {
			t.Errorf("%s: got (%f, %v), want (%f, %v)", tt.name, n.Value, n.Valid, tt.value, tt.valid)
		}
	}
}

func TestSearchFiltersEquities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/finance/search" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("q") != "samsung" {
			t.Errorf("Unexpected query: %s", r.URL.Query().Get("q"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"quotes":[
			{"symbol":"005930.KS","exchDisp":"KSE","quoteType":"EQUITY"},
			{"symbol":"SMSN.IL","exchDisp":"LSE","quoteType":"EQUITY"},
			{"symbol":"KODEX200","exchDisp":"KSE","quoteType":"ETF"}
		]}`))
	}))
	defer server.Close()

	client := NewYahooClient(testHTTPClient(), logger.NewNop(), server.URL)

	hits, err := client.Search(context.Background(), "samsung")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	// ETF는 걸러진다
	if len(hits) != 2 {
		t.Fatalf("Expected 2 equity hits, got %d", len(hits))
	}
	if hits[0].Symbol != "005930.KS" {
		t.Errorf("Expected 005930.KS first, got %s", hits[0].Symbol)
	}
}

func TestQuoteSummary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"quoteSummary":{"result":[{
			"price":{
				"regularMarketPrice":{"raw":71900},
				"regularMarketPreviousClose":{"raw":71500},
				"currency":"KRW",
				"marketCap":{"raw":4.29e14}
			},
			"summaryDetail":{
				"fiftyTwoWeekHigh":{"raw":88000},
				"fiftyTwoWeekLow":{"raw":59000},
				"trailingPE":{"raw":12.5},
				"dividendYield":{"raw":0.021}
			},
			"financialData":{
				"targetMeanPrice":{"raw":92000},
				"returnOnEquity":{"raw":0.11}
			},
			"defaultKeyStatistics":{
				"priceToBook":{"raw":1.4}
			}
		}],"error":null}}`))
	}))
	defer server.Close()

	client := NewYahooClient(testHTTPClient(), logger.NewNop(), server.URL)

	quote, err := client.QuoteSummary(context.Background(), "005930.KS")
	if err != nil {
		t.Fatalf("QuoteSummary failed: %v", err)
	}

	if quote.CurrentPrice != 71900 {
		t.Errorf("Expected price 71900, got %f", quote.CurrentPrice)
	}
	if quote.Currency != "KRW" {
		t.Errorf("Expected KRW, got %s", quote.Currency)
	}
	if quote.TrailingPE == nil || *quote.TrailingPE != 12.5 {
		t.Errorf("Unexpected TrailingPE: %v", quote.TrailingPE)
	}
	// 배당수익률과 ROE는 퍼센트로 환산된다
	if quote.DividendYield == nil || *quote.DividendYield != 2.1 {
		t.Errorf("Expected DividendYield 2.1, got %v", quote.DividendYield)
	}
	if quote.ReturnOnEquity == nil || *quote.ReturnOnEquity != 11 {
		t.Errorf("Expected ROE 11, got %v", quote.ReturnOnEquity)
	}
	if quote.TargetMeanPrice == nil || *quote.TargetMeanPrice != 92000 {
		t.Errorf("Unexpected TargetMeanPrice: %v", quote.TargetMeanPrice)
	}
}

func TestQuoteSummaryNoPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary":{"result":[{"price":{"currency":"USD"}}],"error":null}}`))
	}))
	defer server.Close()

	client := NewYahooClient(testHTTPClient(), logger.NewNop(), server.URL)

	if _, err := client.QuoteSummary(context.Background(), "AAPL"); err == nil {
		t.Error("Expected error for a summary without a usable price")
	}
}

func TestChartSkipsMissingCloses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{
			"meta":{"currency":"KRW","regularMarketPrice":71900},
			"timestamp":[1735603200,1735689600,1735776000],
			"indicators":{"quote":[{
				"close":[71000,null,71900],
				"volume":[1000000,null,1200000]
			}]}
		}],"error":null}}`))
	}))
	defer server.Close()

	client := NewYahooClient(testHTTPClient(), logger.NewNop(), server.URL)

	points, err := client.Chart(context.Background(), "005930.KS", time.Now().AddDate(0, -6, 0))
	if err != nil {
		t.Fatalf("Chart failed: %v", err)
	}

	// 결측 종가는 건너뛴다
	if len(points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(points))
	}
	if points[0].Close != 71000 || points[1].Close != 71900 {
		t.Errorf("Unexpected closes: %v", points)
	}
	if points[1].Volume != 1200000 {
		t.Errorf("Expected volume 1200000, got %d", points[1].Volume)
	}
}

func TestBareQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{
			"meta":{"currency":"USD","regularMarketPrice":231.5,"previousClose":229.9}
		}],"error":null}}`))
	}))
	defer server.Close()

	client := NewYahooClient(testHTTPClient(), logger.NewNop(), server.URL)

	quote, err := client.BareQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("BareQuote failed: %v", err)
	}

	if quote.CurrentPrice != 231.5 {
		t.Errorf("Expected 231.5, got %f", quote.CurrentPrice)
	}
	if quote.Currency != "USD" {
		t.Errorf("Expected USD, got %s", quote.Currency)
	}
	// Bare quote에는 비율이 없다
	if quote.TrailingPE != nil {
		t.Error("Expected nil TrailingPE on bare quote")
	}
}
