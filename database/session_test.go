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

package database

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/arigohub24/arigo-pay/internal/apierror"
	"github.com/arigohub24/arigo-pay/model"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestRecordSession_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds := Datasource{Conn: db}

	session := &model.WizardSession{
		SessionID:          "wzs_123",
		FlowID:             "bank_transfer",
		OwnerID:            "usr_001",
		CurrentStepOrdinal: 0,
		Values:             map[string]interface{}{"amount": "5000"},
		Status:             model.StatusInProgress,
		CreatedAt:          time.Now(),
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO arigopay.wizard_sessions(session_id,flow_id,owner_id,current_step_ordinal,field_values,status,attempt_count,factor_attempts,cancel_requested,created_at,meta_data) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`)).
		WithArgs(session.SessionID, session.FlowID, session.OwnerID, session.CurrentStepOrdinal, sqlmock.AnyArg(), session.Status, session.AttemptCount, session.FactorAttempts, session.CancelRequested, session.CreatedAt, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	result, err := ds.RecordSession(context.Background(), session)
	assert.NoError(t, err)
	assert.Equal(t, "wzs_123", result.SessionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSession_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds := Datasource{Conn: db}

	session := &model.WizardSession{
		SessionID: "wzs_123",
		FlowID:    "bank_transfer",
		Status:    model.StatusInProgress,
	}

	mock.ExpectExec("INSERT INTO arigopay.wizard_sessions").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err = ds.RecordSession(context.Background(), session)
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrConflict, apiErr.Code)
}

func TestGetSession_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds := Datasource{Conn: db}

	valuesJSON, _ := json.Marshal(map[string]interface{}{"amount": "5000", "destination_account": "1234567890"})
	metaDataJSON, _ := json.Marshal(map[string]interface{}{"channel": "mobile"})
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, session_id, flow_id, owner_id, current_step_ordinal, field_values, status, attempt_count, factor_attempts, cancel_requested, created_at, meta_data
		FROM arigopay.wizard_sessions
		WHERE session_id = $1`)).
		WithArgs("wzs_123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "flow_id", "owner_id", "current_step_ordinal", "field_values", "status", "attempt_count", "factor_attempts", "cancel_requested", "created_at", "meta_data"}).
			AddRow(1, "wzs_123", "bank_transfer", "usr_001", 1, valuesJSON, model.StatusInProgress, 0, 0, false, now, metaDataJSON))

	session, err := ds.GetSession(context.Background(), "wzs_123")
	assert.NoError(t, err)
	assert.Equal(t, "bank_transfer", session.FlowID)
	assert.Equal(t, 1, session.CurrentStepOrdinal)
	assert.Equal(t, "5000", session.Values["amount"])
	assert.Equal(t, "mobile", session.MetaData["channel"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSession_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT .* FROM arigopay.wizard_sessions").
		WithArgs("wzs_missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = ds.GetSession(context.Background(), "wzs_missing")
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}

func TestUpdateSession_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds := Datasource{Conn: db}

	session := &model.WizardSession{
		SessionID:          "wzs_123",
		CurrentStepOrdinal: 2,
		Values:             map[string]interface{}{"amount": "5000"},
		Status:             model.StatusAwaitingAuthorization,
		AttemptCount:       0,
		FactorAttempts:     1,
	}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE arigopay.wizard_sessions`)).
		WithArgs(session.SessionID, session.CurrentStepOrdinal, sqlmock.AnyArg(), session.Status, session.AttemptCount, session.FactorAttempts, session.CancelRequested, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, ds.UpdateSession(context.Background(), session))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSession_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds := Datasource{Conn: db}

	session := &model.WizardSession{SessionID: "wzs_missing", Status: model.StatusInProgress}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE arigopay.wizard_sessions`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = ds.UpdateSession(context.Background(), session)
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}

func TestGetSessionsByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()

	ds := Datasource{Conn: db}

	valuesJSON, _ := json.Marshal(map[string]interface{}{})
	metaDataJSON, _ := json.Marshal(map[string]interface{}{})
	now := time.Now()

	mock.ExpectQuery("SELECT .* FROM arigopay.wizard_sessions").
		WithArgs(model.StatusSubmitting, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "flow_id", "owner_id", "current_step_ordinal", "field_values", "status", "attempt_count", "factor_attempts", "cancel_requested", "created_at", "meta_data"}).
			AddRow(1, "wzs_a", "bank_transfer", "usr_001", 2, valuesJSON, model.StatusSubmitting, 1, 0, false, now, metaDataJSON).
			AddRow(2, "wzs_b", "bill_payment", "usr_002", 1, valuesJSON, model.StatusSubmitting, 0, 0, true, now, metaDataJSON))

	sessions, err := ds.GetSessionsByStatus(context.Background(), model.StatusSubmitting, 10, 0)
	assert.NoError(t, err)
	assert.Len(t, sessions, 2)
	assert.Equal(t, "wzs_a", sessions[0].SessionID)
	assert.True(t, sessions[1].CancelRequested)
}
