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
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/arigohub24/arigo-pay/config"
	"github.com/arigohub24/arigo-pay/database/mocks"
	redis_db "github.com/arigohub24/arigo-pay/internal/redis-db"
	"github.com/arigohub24/arigo-pay/model"
)

func newTestEngine(t *testing.T) (*Arigopay, *mocks.MockDataSource, *MockPaymentGateway, *MockAuthorizationBackend) {
	t.Helper()
	mr := miniredis.RunT(t)

	cnf := &config.Configuration{
		Redis: config.RedisConfig{Dns: mr.Addr()},
		Queue: config.QueueConfig{
			SubmissionQueue:  config.DEFAULT_SUBMISSION_QUEUE,
			WebhookQueue:     config.DEFAULT_WEBHOOK_QUEUE,
			MaxRetryAttempts: 5,
		},
		PaymentGateway: config.GatewayConfig{MaxRetries: 1},
		AuthBackend:    config.AuthBackendConfig{MaxFactorAttempts: 3},
	}
	config.MockConfig(cnf)

	redisClient, err := redis_db.NewRedisClient([]string{mr.Addr()})
	require.NoError(t, err)

	datasource := &mocks.MockDataSource{}
	gateway := &MockPaymentGateway{}
	authorizer := &MockAuthorizationBackend{}

	engine := &Arigopay{
		queue:      NewQueue(cnf),
		redis:      redisClient.Client(),
		datasource: datasource,
		gateway:    gateway,
		authorizer: authorizer,
		flows:      make(map[string]*model.WizardDefinition),
	}
	for _, definition := range BuiltinFlows() {
		require.NoError(t, engine.RegisterFlow(definition))
	}
	return engine, datasource, gateway, authorizer
}

func inProgressSession(flowID string, ordinal int, values map[string]interface{}) *model.WizardSession {
	if values == nil {
		values = make(map[string]interface{})
	}
	return &model.WizardSession{
		SessionID:          model.GenerateUUIDWithSuffix("wzs"),
		FlowID:             flowID,
		OwnerID:            "usr_001",
		CurrentStepOrdinal: ordinal,
		Values:             values,
		Status:             model.StatusInProgress,
		CreatedAt:          time.Now(),
	}
}

func TestStartSession(t *testing.T) {
	engine, datasource, _, _ := newTestEngine(t)

	datasource.On("RecordSession", mock.Anything, mock.Anything).
		Return(&model.WizardSession{SessionID: "wzs_new", FlowID: FlowBankTransfer, Status: model.StatusInProgress}, nil)

	session, err := engine.StartSession(context.Background(), FlowBankTransfer, "usr_001", "", nil)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, session.Status)
	datasource.AssertExpectations(t)
}

func TestStartSession_UnknownFlow(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	_, err := engine.StartSession(context.Background(), "no_such_flow", "usr_001", "", nil)
	assert.Error(t, err)
}

func TestStartSession_TemplatePrefill(t *testing.T) {
	engine, datasource, _, _ := newTestEngine(t)

	template := &model.SavedTemplate{
		TemplateID: "tpl_001",
		OwnerID:    "usr_001",
		Kind:       TemplateKindBeneficiary,
		Name:       "Landlord",
		Values: map[string]interface{}{
			"destination_account": "1234567890",
			"destination_bank":    "GTB",
			"unknown_field":       "dropped",
		},
	}
	datasource.On("GetTemplate", mock.Anything, "tpl_001").Return(template, nil)
	datasource.On("RecordSession", mock.Anything, mock.MatchedBy(func(s *model.WizardSession) bool {
		_, hasUnknown := s.Values["unknown_field"]
		return s.Values["destination_account"] == "1234567890" && !hasUnknown
	})).Return(&model.WizardSession{SessionID: "wzs_new", Status: model.StatusInProgress}, nil)

	_, err := engine.StartSession(context.Background(), FlowBankTransfer, "usr_001", "tpl_001", nil)
	assert.NoError(t, err)
	datasource.AssertExpectations(t)
}

func TestStartSession_TemplateOwnedByAnotherUser(t *testing.T) {
	engine, datasource, _, _ := newTestEngine(t)

	template := &model.SavedTemplate{TemplateID: "tpl_001", OwnerID: "usr_other"}
	datasource.On("GetTemplate", mock.Anything, "tpl_001").Return(template, nil)

	_, err := engine.StartSession(context.Background(), FlowBankTransfer, "usr_001", "tpl_001", nil)
	assert.Error(t, err)
}

func TestUpdateValues_AcceptsAndRejects(t *testing.T) {
	engine, datasource, _, _ := newTestEngine(t)

	session := inProgressSession(FlowBankTransfer, 0, nil)
	datasource.On("GetSession", mock.Anything, session.SessionID).Return(session, nil)
	datasource.On("UpdateSession", mock.Anything, mock.Anything).Return(nil)

	updated, rejections, err := engine.UpdateValues(context.Background(), session.SessionID, map[string]string{
		"destination_account": "1234567890",
		"destination_bank":    "NOT_A_BANK",
	})
	assert.NoError(t, err)
	assert.Equal(t, "1234567890", updated.Values["destination_account"])
	require.Len(t, rejections, 1)
	assert.Equal(t, "destination_bank", rejections[0].Field)
	assert.Equal(t, model.ReasonOutOfRange, rejections[0].Reason)
}

func TestUpdateValues_ConfirmPairInOneRequest(t *testing.T) {
	engine, datasource, _, _ := newTestEngine(t)

	session := inProgressSession(FlowBankTransfer, 0, nil)
	datasource.On("GetSession", mock.Anything, session.SessionID).Return(session, nil)
	datasource.On("UpdateSession", mock.Anything, mock.Anything).Return(nil)

	_, rejections, err := engine.UpdateValues(context.Background(), session.SessionID, map[string]string{
		"destination_account":         "1234567890",
		"destination_account_confirm": "1234567890",
	})
	assert.NoError(t, err)
	assert.Empty(t, rejections)

	_, rejections, err = engine.UpdateValues(context.Background(), session.SessionID, map[string]string{
		"destination_account_confirm": "9999999999",
	})
	assert.NoError(t, err)
	require.Len(t, rejections, 1)
	assert.Equal(t, model.ReasonMismatch, rejections[0].Reason)
}

func TestUpdateValues_UnknownField(t *testing.T) {
	engine, datasource, _, _ := newTestEngine(t)

	session := inProgressSession(FlowBankTransfer, 0, nil)
	datasource.On("GetSession", mock.Anything, session.SessionID).Return(session, nil)
	datasource.On("UpdateSession", mock.Anything, mock.Anything).Return(nil)

	_, rejections, err := engine.UpdateValues(context.Background(), session.SessionID, map[string]string{
		"iban": "DE89370400440532013000",
	})
	assert.NoError(t, err)
	require.Len(t, rejections, 1)
	assert.Equal(t, "iban", rejections[0].Field)
}

func TestUpdateValues_RecomputesFees(t *testing.T) {
	engine, datasource, _, _ := newTestEngine(t)

	session := inProgressSession(FlowBankTransfer, 1, nil)
	datasource.On("GetSession", mock.Anything, session.SessionID).Return(session, nil)
	datasource.On("UpdateSession", mock.Anything, mock.Anything).Return(nil)

	updated, rejections, err := engine.UpdateValues(context.Background(), session.SessionID, map[string]string{
		"amount": "4000",
	})
	assert.NoError(t, err)
	assert.Empty(t, rejections)
	fee, err := model.AmountValue(updated.Values, "fee")
	require.NoError(t, err)
	assert.Equal(t, "10", fee.String())
	total, err := model.AmountValue(updated.Values, "total")
	require.NoError(t, err)
	assert.Equal(t, "4010", total.String())
}

func TestUpdateValues_RejectedWhileAwaitingAuthorization(t *testing.T) {
	engine, datasource, _, _ := newTestEngine(t)

	session := inProgressSession(FlowBankTransfer, 2, nil)
	session.Status = model.StatusAwaitingAuthorization
	datasource.On("GetSession", mock.Anything, session.SessionID).Return(session, nil)

	_, _, err := engine.UpdateValues(context.Background(), session.SessionID, map[string]string{"amount": "100"})
	assert.Error(t, err)
}

func TestAdvance_IncompleteStepSurfacesRejections(t *testing.T) {
	engine, datasource, _, _ := newTestEngine(t)

	session := inProgressSession(FlowBankTransfer, 0, map[string]interface{}{
		"destination_account": "12345", // too short
	})
	datasource.On("GetSession", mock.Anything, session.SessionID).Return(session, nil)

	updated, rejections, err := engine.Advance(context.Background(), session.SessionID)
	assert.NoError(t, err)
	assert.NotEmpty(t, rejections)
	assert.Equal(t, 0, updated.CurrentStepOrdinal)
	assert.Equal(t, model.StatusInProgress, updated.Status)
	datasource.AssertNotCalled(t, "UpdateSession", mock.Anything, mock.Anything)
}

func TestAdvance_CompleteStepMovesForward(t *testing.T) {
	engine, datasource, _, _ := newTestEngine(t)

	session := inProgressSession(FlowBankTransfer, 0, map[string]interface{}{
		"destination_account":         "1234567890",
		"destination_account_confirm": "1234567890",
		"destination_bank":            "GTB",
		"beneficiary_name":            "Ada Obi",
	})
	datasource.On("GetSession", mock.Anything, session.SessionID).Return(session, nil)
	datasource.On("UpdateSession", mock.Anything, mock.Anything).Return(nil)

	updated, rejections, err := engine.Advance(context.Background(), session.SessionID)
	assert.NoError(t, err)
	assert.Empty(t, rejections)
	assert.Equal(t, 1, updated.CurrentStepOrdinal)
	assert.Equal(t, model.StatusInProgress, updated.Status)
}

func TestAdvance_LastStepAwaitsAuthorization(t *testing.T) {
	engine, datasource, _, _ := newTestEngine(t)

	session := inProgressSession(FlowBankTransfer, 2, map[string]interface{}{
		"source_account": "0987654321",
	})
	datasource.On("GetSession", mock.Anything, session.SessionID).Return(session, nil)
	datasource.On("UpdateSession", mock.Anything, mock.Anything).Return(nil)

	updated, rejections, err := engine.Advance(context.Background(), session.SessionID)
	assert.NoError(t, err)
	assert.Empty(t, rejections)
	assert.Equal(t, model.StatusAwaitingAuthorization, updated.Status)
}

func TestRetreat_RetainsValues(t *testing.T) {
	engine, datasource, _, _ := newTestEngine(t)

	session := inProgressSession(FlowBankTransfer, 1, map[string]interface{}{
		"destination_account": "1234567890",
		"amount":              "5000",
	})
	datasource.On("GetSession", mock.Anything, session.SessionID).Return(session, nil)
	datasource.On("UpdateSession", mock.Anything, mock.Anything).Return(nil)

	updated, err := engine.Retreat(context.Background(), session.SessionID)
	assert.NoError(t, err)
	assert.Equal(t, 0, updated.CurrentStepOrdinal)
	assert.Equal(t, "5000", updated.Values["amount"])
}

func TestRetreat_AtFirstStep(t *testing.T) {
	engine, datasource, _, _ := newTestEngine(t)

	session := inProgressSession(FlowBankTransfer, 0, nil)
	datasource.On("GetSession", mock.Anything, session.SessionID).Return(session, nil)

	_, err := engine.Retreat(context.Background(), session.SessionID)
	assert.Error(t, err)
}

func TestCancel_InProgress(t *testing.T) {
	engine, datasource, _, _ := newTestEngine(t)

	session := inProgressSession(FlowBankTransfer, 1, nil)
	datasource.On("GetSession", mock.Anything, session.SessionID).Return(session, nil)
	datasource.On("UpdateSession", mock.Anything, mock.MatchedBy(func(s *model.WizardSession) bool {
		return s.Status == model.StatusCancelled
	})).Return(nil)

	updated, err := engine.Cancel(context.Background(), session.SessionID)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, updated.Status)
	datasource.AssertExpectations(t)
}

func TestCancel_WhileSubmittingIsCooperative(t *testing.T) {
	engine, datasource, _, _ := newTestEngine(t)

	session := inProgressSession(FlowBankTransfer, 2, nil)
	session.Status = model.StatusSubmitting
	datasource.On("GetSession", mock.Anything, session.SessionID).Return(session, nil)
	datasource.On("UpdateSession", mock.Anything, mock.MatchedBy(func(s *model.WizardSession) bool {
		return s.Status == model.StatusSubmitting && s.CancelRequested
	})).Return(nil)

	updated, err := engine.Cancel(context.Background(), session.SessionID)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusSubmitting, updated.Status)
	assert.True(t, updated.CancelRequested)
}

func TestCancel_TerminalSession(t *testing.T) {
	engine, datasource, _, _ := newTestEngine(t)

	session := inProgressSession(FlowBankTransfer, 2, nil)
	session.Status = model.StatusSucceeded
	datasource.On("GetSession", mock.Anything, session.SessionID).Return(session, nil)

	_, err := engine.Cancel(context.Background(), session.SessionID)
	assert.Error(t, err)
}
