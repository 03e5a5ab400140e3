// payments/stripe.go - Stripe Checkout for invoices and signed webhook parsing
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"
	"github.com/stripe/stripe-go/v84/webhook"
)

const metadataInvoiceID = "invoice_id"

var ErrInvalidAmount = errors.New("payments: invalid amount")

// Checkout describes one invoice to be paid online
type Checkout struct {
	InvoiceID   int64
	Number      string
	Description string
	Amount      string
	Currency    string
	SuccessURL  string
	CancelURL   string
}

// Completed is a paid checkout reported by the webhook
type Completed struct {
	SessionID string
	InvoiceID int64
}

// Provider creates hosted checkout pages
type Provider interface {
	CreateCheckout(ctx context.Context, c Checkout) (string, error)
}

// Stripe implements Provider and verifies webhook payloads
type Stripe struct {
	webhookSecret string
	newSession    func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

var _ Provider = (*Stripe)(nil)

func NewStripe(secretKey, webhookSecret string) *Stripe {
	stripe.Key = secretKey
	return &Stripe{webhookSecret: webhookSecret, newSession: session.New}
}

// zero-decimal currencies are charged in whole units
var zeroDecimal = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true, "krw": true, "mga": true,
	"pyg": true, "rwf": true, "ugx": true, "vnd": true, "vuv": true, "xaf": true, "xof": true, "xpf": true,
}

// MinorUnits converts a decimal amount string to the integer Stripe charges
func MinorUnits(amount, currency string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidAmount, amount)
	}
	if !zeroDecimal[strings.ToLower(currency)] {
		d = d.Shift(2)
	}
	return d.Round(0).IntPart(), nil
}

// Params builds the checkout session request for c
func (s *Stripe) Params(c Checkout) (*stripe.CheckoutSessionParams, error) {
	units, err := MinorUnits(c.Amount, c.Currency)
	if err != nil {
		return nil, err
	}
	name := "Faktura " + c.Number
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(c.SuccessURL),
		CancelURL:  stripe.String(c.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(c.Currency)),
				UnitAmount: stripe.Int64(units),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(name),
				},
			},
			Quantity: stripe.Int64(1),
		}},
	}
	if c.Description != "" {
		params.LineItems[0].PriceData.ProductData.Description = stripe.String(c.Description)
	}
	params.AddMetadata(metadataInvoiceID, strconv.FormatInt(c.InvoiceID, 10))
	return params, nil
}

// CreateCheckout returns the hosted checkout URL for c
func (s *Stripe) CreateCheckout(ctx context.Context, c Checkout) (string, error) {
	params, err := s.Params(c)
	if err != nil {
		return "", err
	}
	params.Context = ctx
	cs, err := s.newSession(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return cs.URL, nil
}

// ParseEvent verifies the Stripe-Signature header and extracts a completed checkout.
// Other event types return nil, nil.
func (s *Stripe) ParseEvent(payload []byte, signature string) (*Completed, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("verify webhook: %w", err)
	}
	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return nil, nil
	}
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	done := &Completed{SessionID: cs.ID}
	if raw, ok := cs.Metadata[metadataInvoiceID]; ok {
		done.InvoiceID, _ = strconv.ParseInt(raw, 10, 64)
	}
	return done, nil
}
