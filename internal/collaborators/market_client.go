package collaborators

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/sawpanic/marketintel/internal/apperrors"
	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/types"
)

// MarketClient is the market-data collaborator boundary (§1: "treated
// as an external collaborator"). Implementations fetch resolved
// markets for backfill and book/trade snapshots for on-demand scoring.
type MarketClient interface {
	ResolvedMarkets(ctx context.Context, lookbackDays int) ([]types.ResolvedMarket, error)
	OrderBook(ctx context.Context, tokenID types.TokenID) (*types.OrderBookSnapshot, error)
}

// HTTPMarketClient is the reference HTTP implementation: rate-limited,
// circuit-broken, request-ID-tagged outbound calls.
type HTTPMarketClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewHTTPMarketClient wires a market client against baseURL per
// CollaboratorConfig's timeout/rate-limit/breaker settings.
func NewHTTPMarketClient(baseURL string, cfg config.CollaboratorConfig) *HTTPMarketClient {
	return &HTTPMarketClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		limiter: newLimiter(cfg),
		breaker: newBreaker("market", cfg),
	}
}

type resolvedMarketsResponse struct {
	Markets []struct {
		ConditionID   string `json:"conditionId"`
		Question      string `json:"question"`
		EndDateISO    string `json:"endDate"`
		OutcomePrices string `json:"outcomePrices"`
		// ClobTokenIds is a JSON array string parallel to
		// OutcomePrices: index 0 is the Yes leg's token ID, index 1
		// the No leg's.
		ClobTokenIds string `json:"clobTokenIds"`
	} `json:"markets"`
}

// ResolvedMarkets fetches resolved markets in the given lookback
// window and parses/validates outcome prices per S4 (accept ["1","0"]
// or ["0","1"], numeric or string; reject anything else, including
// malformed JSON or a missing field).
func (c *HTTPMarketClient) ResolvedMarkets(ctx context.Context, lookbackDays int) ([]types.ResolvedMarket, error) {
	if err := waitForSlot(ctx, c.limiter); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/markets/resolved?lookbackDays=%d", c.baseURL, lookbackDays)
	body, err := wrapBreaker(c.breaker, "market", func() ([]byte, error) {
		return c.doGet(ctx, url)
	})
	if err != nil {
		return nil, err
	}

	var parsed resolvedMarketsResponse
	if jsonErr := json.Unmarshal(body, &parsed); jsonErr != nil {
		return nil, &apperrors.InvalidInput{Field: "outcomePrices", Reason: "malformed resolved-markets response: " + jsonErr.Error()}
	}

	out := make([]types.ResolvedMarket, 0, len(parsed.Markets))
	for _, m := range parsed.Markets {
		yes, no, ok := parseOutcomePrices(m.OutcomePrices)
		if !ok {
			continue
		}
		outcome := types.OutcomeYes
		if no == 1 {
			outcome = types.OutcomeNo
		}
		yesTokenID, noTokenID := parseClobTokenIDs(m.ClobTokenIds)
		out = append(out, types.ResolvedMarket{
			ConditionID:    m.ConditionID,
			Question:       m.Question,
			EndDate:        parseEndDate(m.EndDateISO),
			WinningOutcome: outcome,
			FinalYesPrice:  yes,
			FinalNoPrice:   no,
			YesTokenID:     yesTokenID,
			NoTokenID:      noTokenID,
		})
	}
	return out, nil
}

// parseOutcomePrices implements S4's validation against the raw JSON
// array string the upstream API returns: exactly ["1","0"] / ["0","1"]
// / [1,0] / [0,1] are accepted; anything else (including a malformed
// array or missing field) is rejected.
func parseOutcomePrices(raw string) (yes, no float64, ok bool) {
	if raw == "" {
		return 0, 0, false
	}
	var prices []json.Number
	if err := json.Unmarshal([]byte(raw), &prices); err != nil {
		return 0, 0, false
	}
	if len(prices) != 2 {
		return 0, 0, false
	}
	y, errY := prices[0].Float64()
	n, errN := prices[1].Float64()
	if errY != nil || errN != nil {
		return 0, 0, false
	}
	if (y == 1 && n == 0) || (y == 0 && n == 1) {
		return y, n, true
	}
	return 0, 0, false
}

// parseClobTokenIDs reads the yes/no leg token IDs out of the raw
// clobTokenIds JSON array string. A missing or malformed field yields
// empty token IDs; enrichment then treats every trade as Yes-side,
// matching the zero-value default of types.ResolvedMarket.
func parseClobTokenIDs(raw string) (yes, no types.TokenID) {
	if raw == "" {
		return "", ""
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil || len(ids) != 2 {
		return "", ""
	}
	return types.TokenID(ids[0]), types.TokenID(ids[1])
}

func parseEndDate(iso string) time.Time {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return time.Time{}
	}
	return t
}

// OrderBook fetches the current order book for tokenID.
func (c *HTTPMarketClient) OrderBook(ctx context.Context, tokenID types.TokenID) (*types.OrderBookSnapshot, error) {
	if err := waitForSlot(ctx, c.limiter); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/book?tokenId=%s", c.baseURL, tokenID)
	body, err := wrapBreaker(c.breaker, "market", func() ([]byte, error) {
		return c.doGet(ctx, url)
	})
	if err != nil {
		return nil, err
	}
	var snapshot types.OrderBookSnapshot
	if jsonErr := json.Unmarshal(body, &snapshot); jsonErr != nil {
		return nil, &apperrors.InvalidInput{Field: "book", Reason: jsonErr.Error()}
	}
	return &snapshot, nil
}

func (c *HTTPMarketClient) doGet(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("market collaborator returned %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, &apperrors.InvalidInput{Field: "request", Reason: fmt.Sprintf("market collaborator returned %d", resp.StatusCode)}
	}

	return io.ReadAll(resp.Body)
}
