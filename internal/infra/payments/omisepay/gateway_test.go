package omisepay

import (
	"context"
	"errors"
	"testing"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/app/policies"
	"stayhub/internal/domain/shared/money"
)

func TestChargeSendsCardAndRecipient(t *testing.T) {
	var sent *operations.CreateCharge
	g := &Gateway{createCharge: func(op *operations.CreateCharge) (*omise.Charge, error) {
		sent = op
		ch := &omise.Charge{}
		ch.ID = "chrg_test_1"
		ch.Status = chargeSuccessful
		return ch, nil
	}}

	receipt, err := g.Charge(context.Background(), money.Must(30000, "THB"), "tokn_test_1", "recp_host")
	require.NoError(t, err)
	assert.Equal(t, "chrg_test_1", receipt.ID)
	assert.Equal(t, int64(30000), receipt.Amount.Amount)
	require.NotNil(t, sent)
	assert.Equal(t, "thb", sent.Currency)
	assert.Equal(t, "tokn_test_1", sent.Card)
	assert.Equal(t, "recp_host", sent.Metadata["payout_recipient"])
}

func TestChargeFailedStatusIsDeclined(t *testing.T) {
	code, msg := "insufficient_fund", "insufficient funds in the account"
	g := &Gateway{createCharge: func(*operations.CreateCharge) (*omise.Charge, error) {
		ch := &omise.Charge{}
		ch.ID = "chrg_test_2"
		ch.Status = "failed"
		ch.FailureCode = &code
		ch.FailureMessage = &msg
		return ch, nil
	}}

	_, err := g.Charge(context.Background(), money.Must(100, "THB"), "tokn", "recp")
	require.Error(t, err)
	assert.ErrorIs(t, err, policies.ErrPaymentDeclined)
	assert.Contains(t, err.Error(), "insufficient_fund")
}

func TestRefundWrapsProviderError(t *testing.T) {
	g := &Gateway{createRefund: func(op *operations.CreateRefund) (*omise.Refund, error) {
		assert.Equal(t, "chrg_test_3", op.ChargeID)
		return nil, errors.New("charge already refunded")
	}}
	err := g.Refund(context.Background(), policies.Receipt{ID: "chrg_test_3", Amount: money.Must(100, "THB")})
	assert.ErrorContains(t, err, "chrg_test_3")
}
