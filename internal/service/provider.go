package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"timetracker-backend/internal/config"
	apperrors "timetracker-backend/internal/errors"

	"github.com/cenkalti/backoff/v4"
)

//go:generate mockgen -source=provider.go -destination=../mocks/provider_mocks.go -package=mocks

// ProviderSubscription is the provider's view of a subscription, fetched
// during reconciliation. The provider API itself is a black box; this is
// the only shape the rest of the service depends on.
type ProviderSubscription struct {
	ID               string     `json:"id"`
	Status           string     `json:"status"`
	Quantity         int        `json:"quantity"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
}

// BillingProvider is the outbound contract to the payment processor.
type BillingProvider interface {
	// UpdateSubscriptionQuantity sets the billed seat quantity of a
	// provider subscription, optionally prorating the current period.
	UpdateSubscriptionQuantity(ctx context.Context, subscriptionID string, quantity int, prorate bool) error

	// GetSubscription fetches the provider's current status and quantity.
	GetSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error)
}

// HTTPBillingProvider talks to the provider's subscription API over
// HTTP. Calls use a bounded timeout and a small number of retries with
// exponential backoff; client errors are not retried.
type HTTPBillingProvider struct {
	cfg        *config.Config
	httpClient *http.Client
}

// NewHTTPBillingProvider creates a new provider client
func NewHTTPBillingProvider(cfg *config.Config) *HTTPBillingProvider {
	return &HTTPBillingProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.BillingSyncTimeout()},
	}
}

type updateQuantityRequest struct {
	Quantity          int    `json:"quantity"`
	ProrationBehavior string `json:"proration_behavior"`
}

// UpdateSubscriptionQuantity pushes a new seat quantity to the provider.
func (p *HTTPBillingProvider) UpdateSubscriptionQuantity(ctx context.Context, subscriptionID string, quantity int, prorate bool) error {
	prorationBehavior := "none"
	if prorate {
		prorationBehavior = "create_prorations"
	}
	body, err := json.Marshal(updateQuantityRequest{
		Quantity:          quantity,
		ProrationBehavior: prorationBehavior,
	})
	if err != nil {
		return fmt.Errorf("marshal quantity update: %w", err)
	}

	return p.withRetries(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPatch, p.subscriptionURL(subscriptionID), bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+p.cfg.BillingAPIKey)

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		return p.checkResponse(resp)
	})
}

// GetSubscription fetches the provider's current subscription state.
func (p *HTTPBillingProvider) GetSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error) {
	var sub ProviderSubscription
	err := p.withRetries(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.subscriptionURL(subscriptionID), nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+p.cfg.BillingAPIKey)

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if err := p.checkResponse(resp); err != nil {
			return err
		}

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(payload, &sub); err != nil {
			return backoff.Permanent(fmt.Errorf("decode provider subscription: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (p *HTTPBillingProvider) subscriptionURL(subscriptionID string) string {
	return strings.TrimRight(p.cfg.BillingAPIBaseURL, "/") + "/v1/subscriptions/" + subscriptionID
}

// checkResponse maps HTTP status codes to errors. 4xx responses are
// permanent: retrying an invalid request only pollutes provider logs.
func (p *HTTPBillingProvider) checkResponse(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return backoff.Permanent(apperrors.ErrProviderSubscription)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return backoff.Permanent(fmt.Errorf("provider rejected request: %s", resp.Status))
	default:
		return fmt.Errorf("provider error: %s", resp.Status)
	}
}

func (p *HTTPBillingProvider) withRetries(ctx context.Context, op backoff.Operation) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(p.cfg.BillingSyncMaxRetries)),
		ctx,
	)
	return backoff.Retry(op, policy)
}
