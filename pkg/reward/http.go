package reward

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/daviddao/critterdex/pkg/model"
)

// HTTPLedger posts grants to a remote currency service.
type HTTPLedger struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPLedger returns a ledger client for url, throttled to rps
// requests per second.
func NewHTTPLedger(url string, rps float64, timeout time.Duration) *HTTPLedger {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &HTTPLedger{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

type incrementRequest struct {
	RequestID string         `json:"request_id"`
	Currency  model.Currency `json:"currency"`
	Amount    int            `json:"amount"`
	XP        int            `json:"xp"`
}

// Increment implements Ledger.
func (l *HTTPLedger) Increment(ctx context.Context, currency model.Currency, amount, xp int) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("ledger rate limit: %w", err)
	}

	body, err := json.Marshal(incrementRequest{
		RequestID: uuid.NewString(),
		Currency:  currency,
		Amount:    amount,
		XP:        xp,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("post ledger: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ledger status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
