package utils

import (
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"

	"github.com/studyhall/studyhall/config"
)

// StripeEnabled reports whether a Stripe secret key is configured.
func StripeEnabled() bool {
	return config.Get().StripeSecretKey != ""
}

// CreateKitCheckout creates a one-time-payment checkout session for a study
// kit order and returns the hosted checkout URL. The order number travels as
// the client reference id so payments can be reconciled later.
func CreateKitCheckout(orderNo, kitName string, unitAmountCents int64, quantity int64) (string, error) {
	cfg := config.Get()
	if cfg.StripeSecretKey == "" {
		return "", fmt.Errorf("stripe is not configured")
	}
	stripe.Key = cfg.StripeSecretKey

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(quantity),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("usd"),
					UnitAmount: stripe.Int64(unitAmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(kitName),
					},
				},
			},
		},
		ClientReferenceID: stripe.String(orderNo),
		SuccessURL:        stripe.String(cfg.StripeSuccess),
		CancelURL:         stripe.String(cfg.StripeCancel),
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}
