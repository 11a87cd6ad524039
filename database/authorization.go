package database

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/arigohub24/arigo-pay/internal/apierror"
	"github.com/arigohub24/arigo-pay/model"
)

// RecordAuthorizationAttempt appends one attempt to the session's audit
// trail. Only the outcome is stored, never the factor itself.
func (d Datasource) RecordAuthorizationAttempt(ctx context.Context, attempt *model.AuthorizationAttempt) (*model.AuthorizationAttempt, error) {
	ctx, span := otel.Tracer("authorization.database").Start(ctx, "Saving authorization attempt to db")
	defer span.End()

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO arigopay.authorization_attempts(attempt_id,session_id,result,created_at) VALUES ($1,$2,$3,$4)`,
		attempt.AttemptID, attempt.SessionID, attempt.Result, attempt.CreatedAt,
	)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record authorization attempt", err)
	}

	return attempt, nil
}

func (d Datasource) GetAuthorizationAttempts(ctx context.Context, sessionID string) ([]*model.AuthorizationAttempt, error) {
	ctx, span := otel.Tracer("authorization.database").Start(ctx, "Getting authorization attempts from db")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, attempt_id, session_id, result, created_at
		FROM arigopay.authorization_attempts
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, fmt.Sprintf("Failed to retrieve attempts for session '%s'", sessionID), err)
	}
	defer rows.Close()

	var attempts []*model.AuthorizationAttempt
	for rows.Next() {
		attempt := &model.AuthorizationAttempt{}
		err := rows.Scan(&attempt.ID, &attempt.AttemptID, &attempt.SessionID, &attempt.Result, &attempt.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan authorization attempt", err)
		}
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to iterate authorization attempts", err)
	}

	return attempts, nil
}
