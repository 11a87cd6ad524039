package arigopay

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arigohub24/arigo-pay/config"
	"github.com/arigohub24/arigo-pay/model"
)

func TestExecutePaymentAccepted(t *testing.T) {
	gateway := NewHTTPPaymentGateway(config.GatewayConfig{Url: "http://example.com/payments", TimeoutSec: 5})
	httpmock.ActivateNonDefault(gateway.client)
	defer httpmock.DeactivateAndReset()

	var seenToken string
	httpmock.RegisterResponder("POST", "http://example.com/payments",
		func(req *http.Request) (*http.Response, error) {
			seenToken = req.Header.Get("Idempotency-Key")
			return httpmock.NewStringResponse(200, `{"status": "ACCEPTED", "reference_id": "ref_123"}`), nil
		})

	token := model.IdempotencyToken("wzs_001", 0)
	resp, err := gateway.ExecutePayment(context.Background(), &GatewayRequest{
		IdempotencyToken: token,
		SessionID:        "wzs_001",
		FlowID:           FlowBankTransfer,
		Values:           map[string]interface{}{"amount": "5000"},
	})
	require.NoError(t, err)
	assert.Equal(t, GatewayAccepted, resp.Status)
	assert.Equal(t, "ref_123", resp.ReferenceID)
	assert.Equal(t, token, seenToken)
}

func TestExecutePaymentDeclined(t *testing.T) {
	gateway := NewHTTPPaymentGateway(config.GatewayConfig{Url: "http://example.com/payments", TimeoutSec: 5})
	httpmock.ActivateNonDefault(gateway.client)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "http://example.com/payments",
		httpmock.NewStringResponder(200, `{"status": "DECLINED", "decline_reason": "insufficient funds"}`))

	resp, err := gateway.ExecutePayment(context.Background(), &GatewayRequest{SessionID: "wzs_001"})
	require.NoError(t, err)
	assert.Equal(t, GatewayDeclined, resp.Status)
	assert.Equal(t, "insufficient funds", resp.DeclineReason)
}

func TestExecutePaymentServerErrorIsUnavailable(t *testing.T) {
	gateway := NewHTTPPaymentGateway(config.GatewayConfig{Url: "http://example.com/payments", TimeoutSec: 5})
	httpmock.ActivateNonDefault(gateway.client)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "http://example.com/payments",
		httpmock.NewStringResponder(503, `{"error": "maintenance"}`))

	_, err := gateway.ExecutePayment(context.Background(), &GatewayRequest{SessionID: "wzs_001"})
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestVerifyFactor(t *testing.T) {
	backend := NewHTTPAuthorizationBackend(config.AuthBackendConfig{Url: "http://example.com/verify", TimeoutSec: 5})
	httpmock.ActivateNonDefault(backend.client)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "http://example.com/verify",
		httpmock.NewStringResponder(200, `{"accepted": true}`))

	accepted, err := backend.VerifyFactor(context.Background(), "usr_001", model.DigestFactor("1234"))
	require.NoError(t, err)
	assert.True(t, accepted)

	httpmock.RegisterResponder("POST", "http://example.com/verify",
		httpmock.NewStringResponder(200, `{"accepted": false}`))

	accepted, err = backend.VerifyFactor(context.Background(), "usr_001", model.DigestFactor("0000"))
	require.NoError(t, err)
	assert.False(t, accepted)
}
