package omisepay

import (
	"context"
	"fmt"
	"strings"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"

	"stayhub/internal/app/policies"
	"stayhub/internal/domain/shared/money"
)

const chargeSuccessful = "successful"

// Gateway charges tenant cards through Omise. The host's payout recipient
// travels in the charge metadata and is settled by Omise transfers.
type Gateway struct {
	createCharge func(*operations.CreateCharge) (*omise.Charge, error)
	createRefund func(*operations.CreateRefund) (*omise.Refund, error)
}

func NewClient(publicKey, secretKey string) (*omise.Client, error) {
	client, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("omise: new client: %w", err)
	}
	client.SetDebug(false)
	return client, nil
}

func NewGateway(client *omise.Client) *Gateway {
	return &Gateway{
		createCharge: func(op *operations.CreateCharge) (*omise.Charge, error) {
			ch := &omise.Charge{}
			if err := client.Do(ch, op); err != nil {
				return nil, err
			}
			return ch, nil
		},
		createRefund: func(op *operations.CreateRefund) (*omise.Refund, error) {
			rf := &omise.Refund{}
			if err := client.Do(rf, op); err != nil {
				return nil, err
			}
			return rf, nil
		},
	}
}

func (g *Gateway) Charge(ctx context.Context, amount money.Money, source, destination string) (policies.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return policies.Receipt{}, err
	}
	ch, err := g.createCharge(&operations.CreateCharge{
		Amount:   amount.Amount,
		Currency: strings.ToLower(amount.Currency),
		Card:     source,
		Metadata: map[string]interface{}{"payout_recipient": destination},
	})
	if err != nil {
		return policies.Receipt{}, fmt.Errorf("omise: create charge: %w", err)
	}
	if status := string(ch.Status); status != chargeSuccessful {
		return policies.Receipt{}, fmt.Errorf("%w: charge %s is %s%s", policies.ErrPaymentDeclined, ch.ID, status, failureOf(ch))
	}
	return policies.Receipt{ID: ch.ID, Amount: amount}, nil
}

// Refund reverses the whole charge.
func (g *Gateway) Refund(ctx context.Context, receipt policies.Receipt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := g.createRefund(&operations.CreateRefund{
		ChargeID: receipt.ID,
		Amount:   receipt.Amount.Amount,
	}); err != nil {
		return fmt.Errorf("omise: refund %s: %w", receipt.ID, err)
	}
	return nil
}

func failureOf(ch *omise.Charge) string {
	var code, msg string
	if ch.FailureCode != nil {
		code = *ch.FailureCode
	}
	if ch.FailureMessage != nil {
		msg = *ch.FailureMessage
	}
	if code == "" && msg == "" {
		return ""
	}
	return fmt.Sprintf(" (%s: %s)", code, msg)
}

var (
	_ policies.PaymentGateway = (*Gateway)(nil)
	_ policies.Refunder       = (*Gateway)(nil)
)
