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

// BlockExplorerClient is the wallet-enrichment collaborator boundary:
// first-seen timestamp/block and transaction count for a taker
// address, cached for >=30 days by the caller.
type BlockExplorerClient interface {
	WalletEnrichment(ctx context.Context, address string) (types.WalletEnrichment, error)
}

// HTTPBlockExplorerClient is the reference HTTP implementation.
type HTTPBlockExplorerClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewHTTPBlockExplorerClient wires a block-explorer client against
// baseURL per CollaboratorConfig's timeout/rate-limit/breaker settings.
func NewHTTPBlockExplorerClient(baseURL string, cfg config.CollaboratorConfig) *HTTPBlockExplorerClient {
	return &HTTPBlockExplorerClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		limiter: newLimiter(cfg),
		breaker: newBreaker("block_explorer", cfg),
	}
}

type walletResponse struct {
	Address             string `json:"address"`
	FirstSeenTimestamp  *int64 `json:"firstSeenTimestamp"`
	FirstSeenBlockNumber *int64 `json:"firstSeenBlockNumber"`
	TransactionCount    int64  `json:"transactionCount"`
}

// WalletEnrichment fetches first-seen/transaction-count data for
// address. A 404 (wallet never seen on-chain) returns a zero-value
// enrichment with FirstSeenTimestamp nil, not an error — the caller's
// AgeDays treats that as "unknown", which is the correct signal.
func (c *HTTPBlockExplorerClient) WalletEnrichment(ctx context.Context, address string) (types.WalletEnrichment, error) {
	if err := waitForSlot(ctx, c.limiter); err != nil {
		return types.WalletEnrichment{}, err
	}

	url := fmt.Sprintf("%s/wallets/%s", c.baseURL, address)
	result, err := wrapBreaker(c.breaker, "block_explorer", func() (walletFetchResult, error) {
		return c.doGet(ctx, url)
	})
	if err != nil {
		return types.WalletEnrichment{}, err
	}
	if result.notFound {
		return types.WalletEnrichment{Address: address, Source: types.WalletSourceFallback}, nil
	}

	var parsed walletResponse
	if jsonErr := json.Unmarshal(result.body, &parsed); jsonErr != nil {
		return types.WalletEnrichment{}, &apperrors.InvalidInput{Field: "wallet", Reason: jsonErr.Error()}
	}

	return types.WalletEnrichment{
		Address:              parsed.Address,
		FirstSeenTimestamp:   parsed.FirstSeenTimestamp,
		FirstSeenBlockNumber: parsed.FirstSeenBlockNumber,
		TransactionCount:     parsed.TransactionCount,
		EnrichedAt:           time.Now().UTC(),
		Source:               types.WalletSourceUpstream,
	}, nil
}

type walletFetchResult struct {
	body     []byte
	notFound bool
}

func (c *HTTPBlockExplorerClient) doGet(ctx context.Context, url string) (walletFetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return walletFetchResult{}, err
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return walletFetchResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return walletFetchResult{notFound: true}, nil
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return walletFetchResult{}, fmt.Errorf("block explorer returned %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return walletFetchResult{}, &apperrors.InvalidInput{Field: "request", Reason: fmt.Sprintf("block explorer returned %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return walletFetchResult{}, err
	}
	return walletFetchResult{body: data}, nil
}
