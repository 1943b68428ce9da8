package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/daywook/stockpilot/pkg/httputil"
	"github.com/daywook/stockpilot/pkg/logger"
)

// ERAPIProvider fetches rates from the open.er-api.com JSON endpoint
// ⭐ SSOT: 환율 공급자 호출은 여기서만
type ERAPIProvider struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewERAPIProvider creates a rate provider
func NewERAPIProvider(httpClient *httputil.Client, log *logger.Logger, baseURL string) *ERAPIProvider {
	return &ERAPIProvider{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// erAPIResponse mirrors the provider payload (필요한 필드만)
type erAPIResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// FetchRate fetches the live rate for one pair
func (p *ERAPIProvider) FetchRate(ctx context.Context, from, to string) (float64, error) {
	url := fmt.Sprintf("%s/latest/%s", p.baseURL, strings.ToUpper(from))

	resp, err := p.httpClient.Get(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("fx request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload erAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode fx response: %w", err)
	}

	if payload.Result != "" && payload.Result != "success" {
		return 0, fmt.Errorf("fx provider returned result=%s", payload.Result)
	}

	rate, ok := payload.Rates[strings.ToUpper(to)]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("rate for %s/%s not in response", from, to)
	}

	return rate, nil
}
