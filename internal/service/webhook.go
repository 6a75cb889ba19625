package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"timetracker-backend/internal/database/models"
	apperrors "timetracker-backend/internal/errors"
	"timetracker-backend/internal/logger"
	"timetracker-backend/internal/repository"

	"gorm.io/gorm"
)

// signatureTolerance bounds the age of a signed webhook timestamp to
// limit replay of captured requests.
const signatureTolerance = 5 * time.Minute

// webhookEnvelope is the provider's outer event frame.
type webhookEnvelope struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// eventObject is the billing object carried inside an event payload.
// Only the fields the state machine reads are declared; the raw payload
// is persisted verbatim alongside.
type eventObject struct {
	Customer         string `json:"customer"`
	Subscription     string `json:"subscription"`
	Status           string `json:"status"`
	Quantity         int    `json:"quantity"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
	TrialEnd         int64  `json:"trial_end"`
	Invoice          string `json:"invoice"`
	Charge           string `json:"charge"`
	Refund           string `json:"refund"`
	AmountCents      int64  `json:"amount"`
	Currency         string `json:"currency"`
}

func parseEventObject(raw json.RawMessage) (*eventObject, error) {
	obj := &eventObject{}
	if len(raw) == 0 {
		return obj, nil
	}
	if err := json.Unmarshal(raw, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func (o *eventObject) currentPeriodEnd() *time.Time {
	if o.CurrentPeriodEnd == 0 {
		return nil
	}
	t := time.Unix(o.CurrentPeriodEnd, 0).UTC()
	return &t
}

func (o *eventObject) trialEnd() *time.Time {
	if o.TrialEnd == 0 {
		return nil
	}
	t := time.Unix(o.TrialEnd, 0).UTC()
	return &t
}

// IngestResult reports what happened to one delivered webhook.
type IngestResult struct {
	EventID   string `json:"event_id"`
	Duplicate bool   `json:"duplicate"`
	Ignored   bool   `json:"ignored"`
	Processed bool   `json:"processed"`
}

// WebhookService verifies, logs, and dispatches billing provider
// webhooks. Verification and logging are synchronous; a processing
// failure after the event row exists is retained on the row and does
// not fail the delivery.
type WebhookService struct {
	events        repository.SubscriptionEventRepositoryInterface
	subscriptions *SubscriptionService
	secret        string
	log           *logger.Logger
	now           func() time.Time
}

// NewWebhookService creates a new webhook ingestion service
func NewWebhookService(
	events repository.SubscriptionEventRepositoryInterface,
	subscriptions *SubscriptionService,
	secret string,
) *WebhookService {
	return &WebhookService{
		events:        events,
		subscriptions: subscriptions,
		secret:        secret,
		log:           logger.New(),
		now:           time.Now,
	}
}

// Ingest handles one raw webhook delivery. The caller acks with 200
// unless the returned error is a signature or parse failure.
func (s *WebhookService) Ingest(ctx context.Context, body []byte, signatureHeader string) (*IngestResult, error) {
	if err := s.verifySignature(body, signatureHeader); err != nil {
		return nil, err
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperrors.NewValidationError("payload", fmt.Sprintf("malformed webhook payload: %v", err))
	}
	if envelope.ID == "" || envelope.Type == "" {
		return nil, apperrors.NewValidationError("payload", "missing event id or type")
	}

	// Re-deliveries collapse onto the existing row.
	if existing, err := s.events.GetByProviderEventID(envelope.ID); err == nil {
		return &IngestResult{EventID: envelope.ID, Duplicate: true, Processed: existing.Processed}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for duplicate event: %w", err)
	}

	event, err := s.buildEvent(&envelope)
	if err != nil {
		return nil, err
	}

	eventType := models.SubscriptionEventType(envelope.Type)
	if !eventType.Known() {
		// Unknown types are logged and acked so the provider stops
		// retrying; a later version may pick them up via reprocessing.
		event.Processed = true
		event.Notes = "ignored: unrecognized event type"
		if err := s.createEvent(ctx, event, envelope.ID); err != nil {
			return nil, err
		}
		logger.WithContext(ctx).WithField("event_type", envelope.Type).Info("ignoring unrecognized webhook event type")
		return &IngestResult{EventID: envelope.ID, Ignored: true}, nil
	}

	if err := s.createEvent(ctx, event, envelope.ID); err != nil {
		return nil, err
	}
	if event.Processed {
		// Lost a concurrent-delivery race; the winner already processed it.
		return &IngestResult{EventID: envelope.ID, Duplicate: true, Processed: true}, nil
	}

	// From here the delivery is durable. Processing failures stay on the
	// event row for reprocessing instead of bouncing the webhook.
	if err := s.subscriptions.ProcessEvent(ctx, event); err != nil {
		logger.WithContext(ctx).WithError(err).WithField("provider_event_id", envelope.ID).
			Warn("webhook event logged but processing failed")
		return &IngestResult{EventID: envelope.ID}, nil
	}
	return &IngestResult{EventID: envelope.ID, Processed: true}, nil
}

func (s *WebhookService) buildEvent(envelope *webhookEnvelope) (*models.SubscriptionEvent, error) {
	object, err := parseEventObject(envelope.Data.Object)
	if err != nil {
		return nil, apperrors.NewValidationError("payload", fmt.Sprintf("malformed event object: %v", err))
	}

	occurred := time.Unix(envelope.Created, 0).UTC()
	if envelope.Created == 0 {
		occurred = s.now().UTC()
	}

	providerEventID := envelope.ID
	return &models.SubscriptionEvent{
		ProviderEventID: &providerEventID,
		Type:            models.SubscriptionEventType(envelope.Type),
		Payload:         envelope.Data.Object,
		CustomerID:      object.Customer,
		SubscriptionID:  object.Subscription,
		InvoiceID:       object.Invoice,
		ChargeID:        object.Charge,
		RefundID:        object.Refund,
		AmountCents:     object.AmountCents,
		Currency:        object.Currency,
		OccurredAt:      occurred,
	}, nil
}

// createEvent persists the event row, folding a unique-violation race on
// the provider event id back into the existing row.
func (s *WebhookService) createEvent(ctx context.Context, event *models.SubscriptionEvent, providerEventID string) error {
	err := s.events.Create(event)
	if err == nil {
		return nil
	}
	if existing, lookupErr := s.events.GetByProviderEventID(providerEventID); lookupErr == nil {
		*event = *existing
		return nil
	}
	return fmt.Errorf("failed to log subscription event: %w", err)
}

// verifySignature checks the `t=<unix>,v1=<hex>` signature header. The
// signed payload is "<t>.<body>" under HMAC-SHA256 with the shared
// webhook secret.
func (s *WebhookService) verifySignature(body []byte, header string) error {
	if s.secret == "" {
		return fmt.Errorf("%w: webhook secret not configured", apperrors.ErrInvalidSignature)
	}

	var (
		timestamp  int64
		signatures [][]byte
	)
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return apperrors.ErrInvalidSignature
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(value)
			if err != nil {
				return apperrors.ErrInvalidSignature
			}
			signatures = append(signatures, sig)
		}
	}
	if timestamp == 0 || len(signatures) == 0 {
		return apperrors.ErrInvalidSignature
	}

	age := s.now().Sub(time.Unix(timestamp, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return apperrors.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(s.secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(body)
	expected := mac.Sum(nil)

	for _, sig := range signatures {
		if hmac.Equal(expected, sig) {
			return nil
		}
	}
	return apperrors.ErrInvalidSignature
}
