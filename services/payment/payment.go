package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
	"go.uber.org/zap"
)

// PaymentService covers the money movements tied to booking transitions:
// capture on completion, refund on cancellation of a paid booking.
type PaymentService interface {
	Refund(ctx context.Context, paymentRef string, amount float64) error
	Capture(ctx context.Context, paymentRef string) error
}

// StripePaymentService implements PaymentService against the Stripe API.
// paymentRef values are Stripe PaymentIntent ids.
type StripePaymentService struct {
	Logger *zap.Logger
}

// NewStripePaymentService builds the production payment service.
func NewStripePaymentService(logger *zap.Logger) *StripePaymentService {
	return &StripePaymentService{Logger: logger}
}

// Refund issues a full refund against the payment intent.
func (s *StripePaymentService) Refund(ctx context.Context, paymentRef string, amount float64) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentRef),
		Amount:        stripe.Int64(int64(amount * 100)),
	}
	params.Context = ctx

	r, err := refund.New(params)
	if err != nil {
		return fmt.Errorf("stripe refund failed for %s: %w", paymentRef, err)
	}
	s.Logger.Info("refund issued",
		zap.String("paymentRef", paymentRef),
		zap.String("refundID", r.ID))
	return nil
}

// Capture captures a previously authorized payment intent.
func (s *StripePaymentService) Capture(ctx context.Context, paymentRef string) error {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx

	pi, err := paymentintent.Capture(paymentRef, params)
	if err != nil {
		return fmt.Errorf("stripe capture failed for %s: %w", paymentRef, err)
	}
	s.Logger.Info("payment captured",
		zap.String("paymentRef", paymentRef),
		zap.String("status", string(pi.Status)))
	return nil
}
