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
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/arigohub24/arigo-pay/config"
	"github.com/arigohub24/arigo-pay/internal/apierror"
	"github.com/arigohub24/arigo-pay/model"
)

// Submit executes the payment for a session in SUBMITTING. The gateway is
// called with an immutable snapshot of the session values and an idempotency
// token derived from the session ID and attempt count, so a retried call is
// recognized by the gateway as the same attempt.
//
// Outcome handling:
//   - a definitive response (accepted or declined) bumps the attempt count,
//     records the result and moves the session to SUCCEEDED or FAILED. A
//     decline is terminal; it is never retried.
//   - a timeout is indeterminate. The session stays in SUBMITTING, the
//     attempt count is NOT bumped, and the error is surfaced so the task
//     queue retries with the same idempotency token.
//   - unavailability is retried with exponential backoff up to the
//     configured cap; past the cap the session fails.
func (a *Arigopay) Submit(ctx context.Context, sessionID string) error {
	ctx, span := tracer.Start(ctx, "Submitting payment to gateway")
	defer span.End()

	conf, err := config.Fetch()
	if err != nil {
		return err
	}

	locker, err := a.acquireLock(ctx, sessionID)
	if err != nil {
		return logAndRecordError(span, "failed to acquire lock: ", err)
	}
	defer a.releaseLock(ctx, locker)

	session, err := a.datasource.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.IsTerminal() {
		// A retried task can find the session already settled.
		return nil
	}
	if session.Status != model.StatusSubmitting {
		return apierror.NewAPIError(apierror.ErrSessionState, fmt.Sprintf("Session is %s, not submitting", session.Status), nil)
	}

	// A previously recorded outcome means an earlier worker settled the
	// payment but died before the status update landed.
	if existing, err := a.datasource.GetSubmissionResult(ctx, sessionID); err == nil {
		return a.finalize(ctx, session, existing)
	}

	snapshot := model.CopyValues(session.Values)
	token := model.IdempotencyToken(sessionID, session.AttemptCount)

	gwReq := &GatewayRequest{
		IdempotencyToken: token,
		SessionID:        sessionID,
		FlowID:           session.FlowID,
		Values:           snapshot,
	}

	var response *GatewayResponse
	operation := func() error {
		var opErr error
		response, opErr = a.gateway.ExecutePayment(ctx, gwReq)
		if opErr == nil {
			return nil
		}
		if errors.Is(opErr, ErrGatewayUnavailable) {
			return opErr
		}
		return backoff.Permanent(opErr)
	}

	err = backoff.Retry(operation, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(conf.PaymentGateway.MaxRetries)))
	if err != nil {
		if errors.Is(err, ErrGatewayTimeout) {
			// Leave the session in SUBMITTING; the queue retries and the
			// next call reuses the same token.
			logrus.Warnf("gateway timeout for session %s, will retry with same token", sessionID)
			return ErrGatewayTimeout
		}
		if errors.Is(err, ErrGatewayUnavailable) {
			result := &model.SubmissionResult{
				ResultID:      model.GenerateUUIDWithSuffix("sub"),
				SessionID:     sessionID,
				Outcome:       model.OutcomeFailure,
				FailureReason: model.FailureGatewayUnavailable,
				CreatedAt:     time.Now(),
			}
			if _, err := a.datasource.RecordSubmissionResult(ctx, result); err != nil {
				return logAndRecordError(span, "failed to record submission result: ", err)
			}
			return a.finalize(ctx, session, result)
		}
		return logAndRecordError(span, "gateway error: ", err)
	}

	// Definitive response: this attempt is settled.
	session.AttemptCount++

	result := &model.SubmissionResult{
		ResultID:  model.GenerateUUIDWithSuffix("sub"),
		SessionID: sessionID,
		CreatedAt: time.Now(),
	}
	if response.Status == GatewayDeclined {
		result.Outcome = model.OutcomeFailure
		result.FailureReason = model.FailureGatewayDeclined
	} else {
		result.Outcome = model.OutcomeSuccess
		result.ReferenceID = response.ReferenceID
	}

	if _, err := a.datasource.RecordSubmissionResult(ctx, result); err != nil {
		return logAndRecordError(span, "failed to record submission result: ", err)
	}

	return a.finalize(ctx, session, result)
}

// finalize applies a recorded outcome to the session. A pending cancel
// request does not override the outcome; the in-flight payment completed
// and its result stands.
func (a *Arigopay) finalize(ctx context.Context, session *model.WizardSession, result *model.SubmissionResult) error {
	target := model.StatusSucceeded
	if result.Outcome == model.OutcomeFailure {
		target = model.StatusFailed
	}

	if session.CancelRequested {
		logrus.Infof("session %s had a pending cancel request; outcome %s recorded anyway", session.SessionID, result.Outcome)
	}

	if err := session.TransitionTo(target); err != nil {
		return apierror.NewAPIError(apierror.ErrSessionState, err.Error(), err)
	}
	if err := a.datasource.UpdateSession(ctx, session); err != nil {
		return err
	}

	return SendWebhook(NewWebhook{
		Event:   getEventFromStatus(session.Status),
		Payload: session,
	})
}

// GetSubmissionResult returns the recorded outcome for a session.
func (a *Arigopay) GetSubmissionResult(ctx context.Context, sessionID string) (*model.SubmissionResult, error) {
	return a.datasource.GetSubmissionResult(ctx, sessionID)
}
