package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/daywook/stockpilot/internal/contracts"
	"github.com/daywook/stockpilot/pkg/httputil"
	"github.com/daywook/stockpilot/pkg/logger"
)

// YahooClient handles communication with the Yahoo Finance JSON API
// ⭐ SSOT: Yahoo Finance 호출은 이 클라이언트에서만
type YahooClient struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewYahooClient creates a new Yahoo Finance client
func NewYahooClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *YahooClient {
	return &YahooClient{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// SearchHit is one result of a ticker text search
type SearchHit struct {
	Symbol    string `json:"symbol"`
	Exchange  string `json:"exchange"`
	ExchDisp  string `json:"exchDisp"`
	ShortName string `json:"shortname"`
	QuoteType string `json:"quoteType"`
}

type searchResponse struct {
	Quotes []SearchHit `json:"quotes"`
}

// Search performs a text search against Yahoo Finance
func (c *YahooClient) Search(ctx context.Context, query string) ([]SearchHit, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("quotesCount", "10")
	params.Set("newsCount", "0")

	fullURL := fmt.Sprintf("%s/v1/finance/search?%s", c.baseURL, params.Encode())

	resp, err := c.httpClient.GetWithHeaders(ctx, fullURL, defaultHeaders())
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	// Equity-type hits only
	hits := make([]SearchHit, 0, len(payload.Quotes))
	for _, q := range payload.Quotes {
		if q.QuoteType == "" || strings.EqualFold(q.QuoteType, "EQUITY") {
			hits = append(hits, q)
		}
	}

	return hits, nil
}

// yahooNumber unmarshals Yahoo's {"raw": 1.23, "fmt": "1.23"} wrapper
// as well as plain JSON numbers
type yahooNumber struct {
	Value float64
	Valid bool
}

func (n *yahooNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "{}" || s == `""` {
		return nil
	}

	if strings.HasPrefix(s, "{") {
		var wrapped struct {
			Raw *float64 `json:"raw"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil // 포맷이 달라도 값 없음으로 처리
		}
		if wrapped.Raw != nil {
			n.Value = *wrapped.Raw
			n.Valid = true
		}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	n.Value = v
	n.Valid = true
	return nil
}

func (n yahooNumber) ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price *struct {
				RegularMarketPrice         yahooNumber `json:"regularMarketPrice"`
				RegularMarketPreviousClose yahooNumber `json:"regularMarketPreviousClose"`
				Currency                   string      `json:"currency"`
				MarketCap                  yahooNumber `json:"marketCap"`
			} `json:"price"`
			SummaryDetail *struct {
				PreviousClose    yahooNumber `json:"previousClose"`
				FiftyTwoWeekHigh yahooNumber `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow  yahooNumber `json:"fiftyTwoWeekLow"`
				TrailingPE       yahooNumber `json:"trailingPE"`
				ForwardPE        yahooNumber `json:"forwardPE"`
				DividendYield    yahooNumber `json:"dividendYield"`
			} `json:"summaryDetail"`
			FinancialData *struct {
				TargetMeanPrice yahooNumber `json:"targetMeanPrice"`
				ReturnOnEquity  yahooNumber `json:"returnOnEquity"`
			} `json:"financialData"`
			DefaultKeyStatistics *struct {
				PriceToBook yahooNumber `json:"priceToBook"`
			} `json:"defaultKeyStatistics"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// QuoteSummary fetches the rich valuation/financial summary for a ticker
func (c *YahooClient) QuoteSummary(ctx context.Context, ticker string) (*contracts.MarketQuote, error) {
	params := url.Values{}
	params.Set("modules", "price,summaryDetail,financialData,defaultKeyStatistics")

	fullURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?%s",
		c.baseURL, url.PathEscape(ticker), params.Encode())

	resp, err := c.httpClient.GetWithHeaders(ctx, fullURL, defaultHeaders())
	if err != nil {
		return nil, fmt.Errorf("quote summary request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload quoteSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode quote summary: %w", err)
	}

	if payload.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("provider error: %s", payload.QuoteSummary.Error.Description)
	}
	if len(payload.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("empty quote summary for %s", ticker)
	}

	r := payload.QuoteSummary.Result[0]

	quote := &contracts.MarketQuote{Ticker: ticker}

	providerCurrency := ""
	if r.Price != nil {
		providerCurrency = r.Price.Currency
		if r.Price.RegularMarketPrice.Valid {
			quote.CurrentPrice = r.Price.RegularMarketPrice.Value
		}
		if r.Price.RegularMarketPreviousClose.Valid {
			quote.PreviousClose = r.Price.RegularMarketPreviousClose.Value
		}
		quote.MarketCap = r.Price.MarketCap.ptr()
	}
	if r.SummaryDetail != nil {
		if quote.PreviousClose == 0 && r.SummaryDetail.PreviousClose.Valid {
			quote.PreviousClose = r.SummaryDetail.PreviousClose.Value
		}
		if r.SummaryDetail.FiftyTwoWeekHigh.Valid {
			quote.High52W = r.SummaryDetail.FiftyTwoWeekHigh.Value
		}
		if r.SummaryDetail.FiftyTwoWeekLow.Valid {
			quote.Low52W = r.SummaryDetail.FiftyTwoWeekLow.Value
		}
		quote.TrailingPE = r.SummaryDetail.TrailingPE.ptr()
		quote.ForwardPE = r.SummaryDetail.ForwardPE.ptr()
		if r.SummaryDetail.DividendYield.Valid {
			// Yahoo reports a fraction (0.021) - keep percent internally
			v := r.SummaryDetail.DividendYield.Value * 100
			quote.DividendYield = &v
		}
	}
	if r.FinancialData != nil {
		quote.TargetMeanPrice = r.FinancialData.TargetMeanPrice.ptr()
		if r.FinancialData.ReturnOnEquity.Valid {
			v := r.FinancialData.ReturnOnEquity.Value * 100
			quote.ReturnOnEquity = &v
		}
	}
	if r.DefaultKeyStatistics != nil {
		quote.PriceToBook = r.DefaultKeyStatistics.PriceToBook.ptr()
	}

	quote.Currency = contracts.InferCurrency(ticker, providerCurrency)

	if quote.CurrentPrice <= 0 {
		return nil, fmt.Errorf("no usable price in quote summary for %s", ticker)
	}

	return quote, nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Chart fetches daily closes since the given time
func (c *YahooClient) Chart(ctx context.Context, ticker string, since time.Time) ([]contracts.PricePoint, error) {
	params := url.Values{}
	params.Set("period1", fmt.Sprintf("%d", since.Unix()))
	params.Set("period2", fmt.Sprintf("%d", time.Now().Unix()))
	params.Set("interval", "1d")

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s",
		c.baseURL, url.PathEscape(ticker), params.Encode())

	resp, err := c.httpClient.GetWithHeaders(ctx, fullURL, defaultHeaders())
	if err != nil {
		return nil, fmt.Errorf("chart request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode chart response: %w", err)
	}

	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("provider error: %s", payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty chart for %s", ticker)
	}

	r := payload.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote series for %s", ticker)
	}

	closes := r.Indicators.Quote[0].Close
	volumes := r.Indicators.Quote[0].Volume

	points := make([]contracts.PricePoint, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue // 휴장일 등 결측치
		}
		p := contracts.PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		}
		if i < len(volumes) && volumes[i] != nil {
			p.Volume = *volumes[i]
		}
		points = append(points, p)
	}

	return points, nil
}

// BareQuote fetches price-only data from the chart meta.
// Rich summary 실패 시의 축소 폴백 (대부분의 비율은 nil로 남음)
func (c *YahooClient) BareQuote(ctx context.Context, ticker string) (*contracts.MarketQuote, error) {
	params := url.Values{}
	params.Set("range", "1d")
	params.Set("interval", "1d")

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s",
		c.baseURL, url.PathEscape(ticker), params.Encode())

	resp, err := c.httpClient.GetWithHeaders(ctx, fullURL, defaultHeaders())
	if err != nil {
		return nil, fmt.Errorf("bare quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode bare quote: %w", err)
	}

	if len(payload.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty bare quote for %s", ticker)
	}

	meta := payload.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return nil, fmt.Errorf("no usable price for %s", ticker)
	}

	return &contracts.MarketQuote{
		Ticker:        ticker,
		Currency:      contracts.InferCurrency(ticker, meta.Currency),
		CurrentPrice:  meta.RegularMarketPrice,
		PreviousClose: meta.PreviousClose,
	}, nil
}

// defaultHeaders returns headers Yahoo expects from a browser-ish client
func defaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
		"Accept":     "application/json",
	}
}
