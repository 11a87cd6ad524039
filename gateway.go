/*
Copyright 2024 Arigo Pay Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package arigopay

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/arigohub24/arigo-pay/config"
	"github.com/arigohub24/arigo-pay/internal/request"
	"github.com/pkg/errors"
)

// Gateway outcomes and failure modes. A timeout is indeterminate: the
// payment may or may not have been executed, so callers must not treat it
// as a decline.
var (
	ErrGatewayTimeout     = errors.New("payment gateway timed out")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrFactorRejected     = errors.New("authorization factor rejected")
	ErrRetryLimitExceeded = errors.New("authorization retry limit exceeded")
)

const (
	GatewayAccepted = "ACCEPTED"
	GatewayDeclined = "DECLINED"
)

// GatewayRequest carries an immutable snapshot of the session values along
// with the idempotency token for exactly-once semantics on the gateway side.
type GatewayRequest struct {
	IdempotencyToken string                 `json:"idempotency_token"`
	SessionID        string                 `json:"session_id"`
	FlowID           string                 `json:"flow_id"`
	Values           map[string]interface{} `json:"values"`
}

// GatewayResponse is a definitive answer from the payment gateway.
type GatewayResponse struct {
	Status        string `json:"status"`
	ReferenceID   string `json:"reference_id"`
	DeclineReason string `json:"decline_reason,omitempty"`
}

// PaymentGateway executes payments against the banking core.
type PaymentGateway interface {
	ExecutePayment(ctx context.Context, req *GatewayRequest) (*GatewayResponse, error)
}

// AuthorizationBackend verifies a transaction authorization factor for a
// user. The engine only ever hands over the factor's SHA-256 digest.
type AuthorizationBackend interface {
	VerifyFactor(ctx context.Context, userID, factorDigest string) (bool, error)
}

// HTTPPaymentGateway talks to the gateway over HTTP.
type HTTPPaymentGateway struct {
	conf   config.GatewayConfig
	client *http.Client
}

func NewHTTPPaymentGateway(conf config.GatewayConfig) *HTTPPaymentGateway {
	return &HTTPPaymentGateway{
		conf:   conf,
		client: &http.Client{Timeout: time.Duration(conf.TimeoutSec) * time.Second},
	}
}

func (g *HTTPPaymentGateway) ExecutePayment(ctx context.Context, gwReq *GatewayRequest) (*GatewayResponse, error) {
	payload, err := request.ToJsonReq(gwReq)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode gateway request")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.conf.Url, payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build gateway request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", gwReq.IdempotencyToken)
	for key, value := range g.conf.Headers {
		req.Header.Set(key, value)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, ErrGatewayTimeout
		}
		return nil, ErrGatewayUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, ErrGatewayUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected gateway response status: %d", resp.StatusCode)
	}

	var gwResp GatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&gwResp); err != nil {
		return nil, errors.Wrap(err, "failed to decode gateway response")
	}
	return &gwResp, nil
}

// HTTPAuthorizationBackend talks to the authorization service over HTTP.
type HTTPAuthorizationBackend struct {
	conf   config.AuthBackendConfig
	client *http.Client
}

func NewHTTPAuthorizationBackend(conf config.AuthBackendConfig) *HTTPAuthorizationBackend {
	return &HTTPAuthorizationBackend{
		conf:   conf,
		client: &http.Client{Timeout: time.Duration(conf.TimeoutSec) * time.Second},
	}
}

// VerifyFactor submits a factor digest for verification against the user's
// registered PIN. Only the digest crosses the wire.
func (b *HTTPAuthorizationBackend) VerifyFactor(ctx context.Context, userID, factorDigest string) (bool, error) {
	payload, err := request.ToJsonReq(map[string]string{
		"user_id": userID,
		"factor":  factorDigest,
	})
	if err != nil {
		return false, errors.Wrap(err, "failed to encode authorization request")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.conf.Url, payload)
	if err != nil {
		return false, errors.Wrap(err, "failed to build authorization request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return false, errors.Wrap(err, "authorization backend unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, errors.Errorf("unexpected authorization response status: %d", resp.StatusCode)
	}

	var result struct {
		Accepted bool `json:"accepted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, errors.Wrap(err, "failed to decode authorization response")
	}
	return result.Accepted, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
