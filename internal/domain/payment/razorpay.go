package payment

import (
	"context"

	"github.com/go-faster/errors"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
)

// RazorpayGateway creates payment intents through the Razorpay Orders API.
type RazorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

// CreateIntent registers an order with Razorpay and returns its id. The
// amount is converted to minor currency units as the API requires.
func (g *RazorpayGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":   amount.Mul(decimal.NewFromInt(100)).IntPart(),
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", errors.Wrap(err, "razorpay order create")
	}
	id, ok := body["id"].(string)
	if !ok || id == "" {
		return "", errors.New("razorpay response missing order id")
	}
	return id, nil
}
