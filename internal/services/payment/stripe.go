// Package payment creates deposits with external card processors.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"fintrivox/internal/services/ledger"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentintent"
)

var hundred = decimal.NewFromInt(100)

// intentCreator is the slice of the Stripe PaymentIntent client we use.
type intentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeProcessor opens a PaymentIntent for each card deposit. The deposit
// reference is the idempotency key, so a retried request never charges twice.
type StripeProcessor struct {
	intents  intentCreator
	currency string
}

var _ ledger.PaymentProcessor = (*StripeProcessor)(nil)

func NewStripeProcessor(secretKey, currency string) *StripeProcessor {
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &StripeProcessor{
		intents:  &paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
		currency: currency,
	}
}

func (p *StripeProcessor) CreatePayment(ctx context.Context, req ledger.PaymentRequest) (string, error) {
	cents := req.Amount.Mul(hundred).Round(0)
	if !cents.IsPositive() {
		return "", errors.New("stripe: amount rounds to zero")
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(cents.IntPart()),
		Currency:           stripe.String(p.currency),
		Description:        stripe.String("Fintrivox deposit " + req.Reference),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	if req.Email != "" {
		params.ReceiptEmail = stripe.String(req.Email)
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.Reference)
	params.AddMetadata("reference", req.Reference)
	params.AddMetadata("user_id", strconv.FormatUint(uint64(req.UserID), 10))

	intent, err := p.intents.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return intent.ID, nil
}
