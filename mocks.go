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
)

// MockPaymentGateway is a test double for the payment gateway.
type MockPaymentGateway struct {
	ExecutePaymentFunc func(ctx context.Context, req *GatewayRequest) (*GatewayResponse, error)
	Calls              []*GatewayRequest
}

func (m *MockPaymentGateway) ExecutePayment(ctx context.Context, req *GatewayRequest) (*GatewayResponse, error) {
	m.Calls = append(m.Calls, req)
	if m.ExecutePaymentFunc != nil {
		return m.ExecutePaymentFunc(ctx, req)
	}
	return &GatewayResponse{Status: GatewayAccepted, ReferenceID: "ref_mock"}, nil
}

// MockAuthorizationBackend is a test double for the authorization backend.
type MockAuthorizationBackend struct {
	VerifyFactorFunc func(ctx context.Context, userID, factorDigest string) (bool, error)
}

func (m *MockAuthorizationBackend) VerifyFactor(ctx context.Context, userID, factorDigest string) (bool, error) {
	if m.VerifyFactorFunc != nil {
		return m.VerifyFactorFunc(ctx, userID, factorDigest)
	}
	return true, nil
}
