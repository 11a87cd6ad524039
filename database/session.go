package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/lib/pq"

	"github.com/arigohub24/arigo-pay/internal/apierror"
	"github.com/arigohub24/arigo-pay/model"
)

const sessionCacheTTL = 5 * time.Minute

func sessionCacheKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (d Datasource) RecordSession(ctx context.Context, session *model.WizardSession) (*model.WizardSession, error) {
	ctx, span := otel.Tracer("session.database").Start(ctx, "Saving session to db")
	defer span.End()

	valuesJSON, err := json.Marshal(session.Values)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal session values", err)
	}
	metaDataJSON, err := json.Marshal(session.MetaData)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	_, err = d.Conn.ExecContext(ctx,
		`INSERT INTO arigopay.wizard_sessions(session_id,flow_id,owner_id,current_step_ordinal,field_values,status,attempt_count,factor_attempts,cancel_requested,created_at,meta_data) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		session.SessionID, session.FlowID, session.OwnerID, session.CurrentStepOrdinal, valuesJSON, session.Status, session.AttemptCount, session.FactorAttempts, session.CancelRequested, session.CreatedAt, metaDataJSON,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Session with ID '%s' already exists", session.SessionID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record session", err)
	}

	return session, nil
}

func (d Datasource) GetSession(ctx context.Context, id string) (*model.WizardSession, error) {
	ctx, span := otel.Tracer("session.database").Start(ctx, "Getting session from db")
	defer span.End()

	if d.Cache != nil {
		cached := &model.WizardSession{}
		if err := d.Cache.Get(ctx, sessionCacheKey(id), cached); err == nil && cached.SessionID != "" {
			return cached, nil
		}
	}

	row := d.Conn.QueryRowContext(ctx, `
		SELECT id, session_id, flow_id, owner_id, current_step_ordinal, field_values, status, attempt_count, factor_attempts, cancel_requested, created_at, meta_data
		FROM arigopay.wizard_sessions
		WHERE session_id = $1
	`, id)

	session := &model.WizardSession{}
	var valuesJSON, metaDataJSON []byte
	err := row.Scan(&session.ID, &session.SessionID, &session.FlowID, &session.OwnerID, &session.CurrentStepOrdinal, &valuesJSON, &session.Status, &session.AttemptCount, &session.FactorAttempts, &session.CancelRequested, &session.CreatedAt, &metaDataJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Session with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve session", err)
	}

	if err := json.Unmarshal(valuesJSON, &session.Values); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal session values", err)
	}
	if err := json.Unmarshal(metaDataJSON, &session.MetaData); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
	}

	if d.Cache != nil {
		_ = d.Cache.Set(ctx, sessionCacheKey(id), session, sessionCacheTTL)
	}

	return session, nil
}

func (d Datasource) UpdateSession(ctx context.Context, session *model.WizardSession) error {
	ctx, span := otel.Tracer("session.database").Start(ctx, "Updating session in db")
	defer span.End()

	valuesJSON, err := json.Marshal(session.Values)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal session values", err)
	}
	metaDataJSON, err := json.Marshal(session.MetaData)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE arigopay.wizard_sessions
		SET current_step_ordinal = $2, field_values = $3, status = $4, attempt_count = $5, factor_attempts = $6, cancel_requested = $7, meta_data = $8
		WHERE session_id = $1
	`, session.SessionID, session.CurrentStepOrdinal, valuesJSON, session.Status, session.AttemptCount, session.FactorAttempts, session.CancelRequested, metaDataJSON)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update session", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update session", err)
	}
	if rows == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Session with ID '%s' not found", session.SessionID), nil)
	}

	if d.Cache != nil {
		_ = d.Cache.Delete(ctx, sessionCacheKey(session.SessionID))
	}

	return nil
}

func (d Datasource) GetSessionsByStatus(ctx context.Context, status string, limit, offset int) ([]*model.WizardSession, error) {
	ctx, span := otel.Tracer("session.database").Start(ctx, "Getting sessions by status")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, session_id, flow_id, owner_id, current_step_ordinal, field_values, status, attempt_count, factor_attempts, cancel_requested, created_at, meta_data
		FROM arigopay.wizard_sessions
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`, status, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve sessions", err)
	}
	defer rows.Close()

	var sessions []*model.WizardSession
	for rows.Next() {
		session := &model.WizardSession{}
		var valuesJSON, metaDataJSON []byte
		err := rows.Scan(&session.ID, &session.SessionID, &session.FlowID, &session.OwnerID, &session.CurrentStepOrdinal, &valuesJSON, &session.Status, &session.AttemptCount, &session.FactorAttempts, &session.CancelRequested, &session.CreatedAt, &metaDataJSON)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan session", err)
		}
		if err := json.Unmarshal(valuesJSON, &session.Values); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal session values", err)
		}
		if err := json.Unmarshal(metaDataJSON, &session.MetaData); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to iterate sessions", err)
	}

	return sessions, nil
}
