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

	"github.com/arigohub24/arigo-pay/config"
	"github.com/arigohub24/arigo-pay/internal/apierror"
	"github.com/arigohub24/arigo-pay/model"
)

// SubmitFactor verifies the transaction PIN for a session awaiting
// authorization. A session whose retry cap is already spent is forced to
// CANCELLED before the entry is even looked at. Otherwise the factor is
// checked locally for format; a malformed factor is rejected without
// reaching the backend and without counting toward the retry cap. Backend
// rejections count, and each one is reported as a rejection: the cap
// cancels the session on the entry after the last counted rejection, not
// on the rejection itself. On acceptance the session moves to SUBMITTING
// and the submission task is enqueued.
//
// The raw factor is never logged and never persisted; only its SHA-256
// digest travels to the backend.
func (a *Arigopay) SubmitFactor(ctx context.Context, sessionID, factor string) (*model.WizardSession, error) {
	ctx, span := tracer.Start(ctx, "Submitting authorization factor")
	defer span.End()

	conf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	locker, err := a.acquireLock(ctx, sessionID)
	if err != nil {
		return nil, logAndRecordError(span, "failed to acquire lock: ", err)
	}
	defer a.releaseLock(ctx, locker)

	session, err := a.datasource.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.StatusAwaitingAuthorization {
		return nil, apierror.NewAPIError(apierror.ErrSessionState, fmt.Sprintf("Session is %s, not awaiting authorization", session.Status), nil)
	}

	if session.FactorAttempts >= conf.AuthBackend.MaxFactorAttempts {
		return nil, a.forceCancel(ctx, session)
	}

	if _, fieldErr := model.PinField.Validate(factor, nil); fieldErr != nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Authorization factor must be exactly 4 digits", fieldErr.Reason)
	}

	accepted, err := a.authorizer.VerifyFactor(ctx, session.OwnerID, model.DigestFactor(factor))
	if err != nil {
		return nil, logAndRecordError(span, "authorization backend error: ", err)
	}

	attempt := &model.AuthorizationAttempt{
		AttemptID: model.GenerateUUIDWithSuffix("auth"),
		SessionID: sessionID,
		Result:    model.FactorRejected,
		CreatedAt: time.Now(),
	}
	if accepted {
		attempt.Result = model.FactorAccepted
	}
	if _, err := a.datasource.RecordAuthorizationAttempt(ctx, attempt); err != nil {
		return nil, logAndRecordError(span, "failed to record authorization attempt: ", err)
	}

	if !accepted {
		session.FactorAttempts++
		if err := a.datasource.UpdateSession(ctx, session); err != nil {
			return nil, logAndRecordError(span, "failed to update session: ", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrUnauthorized, "Authorization factor rejected", ErrFactorRejected)
	}

	if err := session.TransitionTo(model.StatusSubmitting); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrSessionState, err.Error(), err)
	}
	if err := a.datasource.UpdateSession(ctx, session); err != nil {
		return nil, logAndRecordError(span, "failed to update session: ", err)
	}

	if err := a.queue.EnqueueSubmission(ctx, session); err != nil {
		return nil, logAndRecordError(span, "failed to enqueue submission: ", err)
	}

	err = SendWebhook(NewWebhook{
		Event:   getEventFromStatus(session.Status),
		Payload: session,
	})
	if err != nil {
		return nil, logAndRecordError(span, "SendWebhook error: ", err)
	}

	return session, nil
}

// GetAuthorizationAttempts returns the audit trail of factor attempts for a
// session, oldest first.
func (a *Arigopay) GetAuthorizationAttempts(ctx context.Context, sessionID string) ([]*model.AuthorizationAttempt, error) {
	return a.datasource.GetAuthorizationAttempts(ctx, sessionID)
}

// forceCancel moves a session to CANCELLED after the retry cap is exhausted.
func (a *Arigopay) forceCancel(ctx context.Context, session *model.WizardSession) error {
	if err := session.TransitionTo(model.StatusCancelled); err != nil {
		return apierror.NewAPIError(apierror.ErrSessionState, err.Error(), err)
	}
	if err := a.datasource.UpdateSession(ctx, session); err != nil {
		return err
	}
	err := SendWebhook(NewWebhook{
		Event:   getEventFromStatus(session.Status),
		Payload: session,
	})
	if err != nil {
		return err
	}
	return apierror.NewAPIError(apierror.ErrSessionState, "Authorization retry limit exceeded", ErrRetryLimitExceeded)
}
