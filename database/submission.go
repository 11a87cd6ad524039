package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/lib/pq"

	"github.com/arigohub24/arigo-pay/internal/apierror"
	"github.com/arigohub24/arigo-pay/model"
)

// RecordSubmissionResult stores the definitive outcome of a submission. The
// session_id column carries a unique constraint so a session can never end
// up with two outcomes.
func (d Datasource) RecordSubmissionResult(ctx context.Context, result *model.SubmissionResult) (*model.SubmissionResult, error) {
	ctx, span := otel.Tracer("submission.database").Start(ctx, "Saving submission result to db")
	defer span.End()

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO arigopay.submission_results(result_id,session_id,outcome,reference_id,failure_reason,created_at) VALUES ($1,$2,$3,$4,$5,$6)`,
		result.ResultID, result.SessionID, result.Outcome, result.ReferenceID, result.FailureReason, result.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Submission result for session '%s' already recorded", result.SessionID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record submission result", err)
	}

	return result, nil
}

func (d Datasource) GetSubmissionResult(ctx context.Context, sessionID string) (*model.SubmissionResult, error) {
	ctx, span := otel.Tracer("submission.database").Start(ctx, "Getting submission result from db")
	defer span.End()

	row := d.Conn.QueryRowContext(ctx, `
		SELECT id, result_id, session_id, outcome, reference_id, failure_reason, created_at
		FROM arigopay.submission_results
		WHERE session_id = $1
	`, sessionID)

	result := &model.SubmissionResult{}
	err := row.Scan(&result.ID, &result.ResultID, &result.SessionID, &result.Outcome, &result.ReferenceID, &result.FailureReason, &result.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Submission result for session '%s' not found", sessionID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve submission result", err)
	}

	return result, nil
}
