package marketdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/daywook/stockpilot/internal/contracts"
	"github.com/daywook/stockpilot/pkg/httputil"
	"github.com/daywook/stockpilot/pkg/logger"
)

// NaverClient scrapes Naver Finance for KRX tickers.
// Yahoo quote summary가 한국 종목에서 실패할 때의 2차 폴백
// ⭐ SSOT: Naver Finance 호출은 이 클라이언트에서만
type NaverClient struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewNaverClient creates a new Naver Finance client
func NewNaverClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *NaverClient {
	return &NaverClient{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// FetchQuote scrapes the stock main page for a KRX ticker.
// 반환 통화는 항상 KRW이며 없는 비율은 nil로 남긴다.
func (c *NaverClient) FetchQuote(ctx context.Context, ticker string) (*contracts.MarketQuote, error) {
	code := krxCode(ticker)
	if code == "" {
		return nil, fmt.Errorf("not a KRX ticker: %s", ticker)
	}

	fullURL := fmt.Sprintf("%s/item/main.naver?code=%s", c.baseURL, code)

	resp, err := c.httpClient.GetWithHeaders(ctx, fullURL, map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
		"Referer":    "https://finance.naver.com/",
	})
	if err != nil {
		return nil, fmt.Errorf("naver request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return c.parseMainPage(ticker, string(body))
}

// parseMainPage extracts price and valuation ratios from the item main page
func (c *NaverClient) parseMainPage(ticker, html string) (*contracts.MarketQuote, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	quote := &contracts.MarketQuote{
		Ticker:   ticker,
		Currency: "KRW",
	}

	// 현재가: <p class="no_today"> 내부의 blind 텍스트
	priceText := strings.TrimSpace(doc.Find("p.no_today .blind").First().Text())
	if price, ok := parseKRNumber(priceText); ok {
		quote.CurrentPrice = price
	}

	// PER/PBR/배당수익률: 본문에 id로 박혀 있음
	if v, ok := parseKRNumber(doc.Find("#_per").First().Text()); ok {
		quote.TrailingPE = &v
	}
	if v, ok := parseKRNumber(doc.Find("#_pbr").First().Text()); ok {
		quote.PriceToBook = &v
	}
	if v, ok := parseKRNumber(doc.Find("#_dvr").First().Text()); ok {
		quote.DividendYield = &v
	}

	if quote.CurrentPrice <= 0 {
		return nil, fmt.Errorf("no usable price on naver page for %s", ticker)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"price":  quote.CurrentPrice,
	}).Debug("Fetched quote from Naver fallback")

	return quote, nil
}

// krxCode strips the exchange suffix from a KRX ticker (005930.KS → 005930)
func krxCode(ticker string) string {
	upper := strings.ToUpper(ticker)
	for _, suffix := range []string{".KS", ".KQ"} {
		if strings.HasSuffix(upper, suffix) {
			return strings.TrimSuffix(upper, suffix)
		}
	}
	return ""
}

// parseKRNumber parses a Korean-formatted number ("71,900" → 71900)
func parseKRNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == "N/A" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
