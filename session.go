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

	redlock "github.com/arigohub24/arigo-pay/internal/lock"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/sirupsen/logrus"

	"github.com/arigohub24/arigo-pay/internal/apierror"
	"github.com/arigohub24/arigo-pay/model"
)

var (
	tracer = otel.Tracer("wizard.session")
)

func logAndRecordError(span trace.Span, msg string, err error) error {
	span.RecordError(err)
	logrus.Error(msg, err)
	return err
}

// acquireLock serializes all writes to a session. Every transition runs
// under this lock so concurrent requests against the same session are
// applied one at a time.
func (a *Arigopay) acquireLock(ctx context.Context, sessionID string) (*redlock.Locker, error) {
	locker := redlock.NewLocker(a.redis, fmt.Sprintf("session:%s", sessionID), model.GenerateUUIDWithSuffix("loc"))
	err := locker.WaitLock(ctx, 30*time.Second, 10*time.Second)
	if err != nil {
		return nil, err
	}
	return locker, nil
}

func (a *Arigopay) releaseLock(ctx context.Context, locker *redlock.Locker) {
	if err := locker.Unlock(ctx); err != nil {
		logrus.Error("failed to release session lock", err)
	}
}

// StartSession creates a session for the given flow at step 0. When a
// template ID is provided, the template's values prefill any fields the
// flow knows about.
func (a *Arigopay) StartSession(ctx context.Context, flowID, ownerID, templateID string, metaData map[string]interface{}) (*model.WizardSession, error) {
	ctx, span := tracer.Start(ctx, "Starting wizard session")
	defer span.End()

	definition, err := a.GetFlow(flowID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, err.Error(), err)
	}

	values := make(map[string]interface{})
	if templateID != "" {
		template, err := a.datasource.GetTemplate(ctx, templateID)
		if err != nil {
			return nil, err
		}
		if template.OwnerID != ownerID {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Template with ID '%s' not found", templateID), nil)
		}
		values = PrefillFromTemplate(definition, template)
	}

	session := &model.WizardSession{
		SessionID:          model.GenerateUUIDWithSuffix("wzs"),
		FlowID:             flowID,
		OwnerID:            ownerID,
		CurrentStepOrdinal: 0,
		Values:             values,
		Status:             model.StatusInProgress,
		CreatedAt:          time.Now(),
		MetaData:           metaData,
	}

	saved, err := a.datasource.RecordSession(ctx, session)
	if err != nil {
		return nil, logAndRecordError(span, "failed to record session: ", err)
	}

	err = SendWebhook(NewWebhook{
		Event:   "session.created",
		Payload: saved,
	})
	if err != nil {
		return nil, logAndRecordError(span, "SendWebhook error: ", err)
	}

	return saved, nil
}

// GetSession returns the current session state.
func (a *Arigopay) GetSession(ctx context.Context, sessionID string) (*model.WizardSession, error) {
	ctx, span := tracer.Start(ctx, "Getting wizard session")
	defer span.End()

	return a.datasource.GetSession(ctx, sessionID)
}

// UpdateValues validates the provided raw values against the current step's
// field specs. Accepted values are stored, rejected ones are reported with
// their reasons and leave the stored state untouched. Computed fields on the
// step are refreshed after every change.
func (a *Arigopay) UpdateValues(ctx context.Context, sessionID string, input map[string]string) (*model.WizardSession, []*model.FieldError, error) {
	ctx, span := tracer.Start(ctx, "Updating session values")
	defer span.End()

	locker, err := a.acquireLock(ctx, sessionID)
	if err != nil {
		return nil, nil, logAndRecordError(span, "failed to acquire lock: ", err)
	}
	defer a.releaseLock(ctx, locker)

	session, err := a.datasource.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.Status != model.StatusInProgress {
		return nil, nil, apierror.NewAPIError(apierror.ErrSessionState, fmt.Sprintf("Session is %s, values can only change while in progress", session.Status), nil)
	}

	definition, err := a.GetFlow(session.FlowID)
	if err != nil {
		return nil, nil, apierror.NewAPIError(apierror.ErrInternalServer, err.Error(), err)
	}
	step, err := definition.Step(session.CurrentStepOrdinal)
	if err != nil {
		return nil, nil, apierror.NewAPIError(apierror.ErrInternalServer, err.Error(), err)
	}

	if session.Values == nil {
		session.Values = make(map[string]interface{})
	}

	var rejections []*model.FieldError

	// Confirmation fields are validated after the fields they mirror so a
	// single request can carry both halves of a pair.
	var confirmFields []string
	for name, raw := range input {
		spec, ok := step.FieldSpec(name)
		if !ok {
			rejections = append(rejections, &model.FieldError{Field: name, Reason: model.ReasonInvalidFormat})
			continue
		}
		if spec.ConfirmOf != "" {
			confirmFields = append(confirmFields, name)
			continue
		}
		value, fieldErr := spec.Validate(raw, session.Values)
		if fieldErr != nil {
			rejections = append(rejections, fieldErr)
			continue
		}
		session.Values[name] = value
	}
	for _, name := range confirmFields {
		spec, _ := step.FieldSpec(name)
		value, fieldErr := spec.Validate(input[name], session.Values)
		if fieldErr != nil {
			rejections = append(rejections, fieldErr)
			continue
		}
		session.Values[name] = value
	}

	model.Recompute(step, session.Values)

	if err := a.datasource.UpdateSession(ctx, session); err != nil {
		return nil, nil, logAndRecordError(span, "failed to update session: ", err)
	}

	return session, rejections, nil
}

// Advance moves the session to the next step when the current step is
// complete. Advancing past the last step transitions the session to
// AWAITING_AUTHORIZATION. An incomplete step blocks the move and the
// per-field rejections are returned instead.
func (a *Arigopay) Advance(ctx context.Context, sessionID string) (*model.WizardSession, []*model.FieldError, error) {
	ctx, span := tracer.Start(ctx, "Advancing wizard session")
	defer span.End()

	locker, err := a.acquireLock(ctx, sessionID)
	if err != nil {
		return nil, nil, logAndRecordError(span, "failed to acquire lock: ", err)
	}
	defer a.releaseLock(ctx, locker)

	session, err := a.datasource.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.Status != model.StatusInProgress {
		return nil, nil, apierror.NewAPIError(apierror.ErrSessionState, fmt.Sprintf("Session is %s, cannot advance", session.Status), nil)
	}

	definition, err := a.GetFlow(session.FlowID)
	if err != nil {
		return nil, nil, apierror.NewAPIError(apierror.ErrInternalServer, err.Error(), err)
	}
	step, err := definition.Step(session.CurrentStepOrdinal)
	if err != nil {
		return nil, nil, apierror.NewAPIError(apierror.ErrInternalServer, err.Error(), err)
	}

	rejections := model.StepRejections(step, session.Values)
	if len(rejections) > 0 {
		return session, rejections, nil
	}

	model.Recompute(step, session.Values)

	if definition.IsLastStep(session.CurrentStepOrdinal) {
		if err := session.TransitionTo(model.StatusAwaitingAuthorization); err != nil {
			return nil, nil, apierror.NewAPIError(apierror.ErrSessionState, err.Error(), err)
		}
	} else {
		session.CurrentStepOrdinal++
	}

	if err := a.datasource.UpdateSession(ctx, session); err != nil {
		return nil, nil, logAndRecordError(span, "failed to update session: ", err)
	}

	if session.Status == model.StatusAwaitingAuthorization {
		err = SendWebhook(NewWebhook{
			Event:   getEventFromStatus(session.Status),
			Payload: session,
		})
		if err != nil {
			return nil, nil, logAndRecordError(span, "SendWebhook error: ", err)
		}
	}

	return session, nil, nil
}

// Retreat moves the session one step back. All entered values are retained.
func (a *Arigopay) Retreat(ctx context.Context, sessionID string) (*model.WizardSession, error) {
	ctx, span := tracer.Start(ctx, "Retreating wizard session")
	defer span.End()

	locker, err := a.acquireLock(ctx, sessionID)
	if err != nil {
		return nil, logAndRecordError(span, "failed to acquire lock: ", err)
	}
	defer a.releaseLock(ctx, locker)

	session, err := a.datasource.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.StatusInProgress {
		return nil, apierror.NewAPIError(apierror.ErrSessionState, fmt.Sprintf("Session is %s, cannot retreat", session.Status), nil)
	}
	if session.CurrentStepOrdinal == 0 {
		return nil, apierror.NewAPIError(apierror.ErrSessionState, "Session is at the first step", nil)
	}

	session.CurrentStepOrdinal--

	if err := a.datasource.UpdateSession(ctx, session); err != nil {
		return nil, logAndRecordError(span, "failed to update session: ", err)
	}

	return session, nil
}

// Cancel abandons a session. While submitting, the in-flight gateway call
// is allowed to complete: the request is recorded and honored once the
// outcome is known. From any other non-terminal state the session moves to
// CANCELLED immediately.
func (a *Arigopay) Cancel(ctx context.Context, sessionID string) (*model.WizardSession, error) {
	ctx, span := tracer.Start(ctx, "Cancelling wizard session")
	defer span.End()

	locker, err := a.acquireLock(ctx, sessionID)
	if err != nil {
		return nil, logAndRecordError(span, "failed to acquire lock: ", err)
	}
	defer a.releaseLock(ctx, locker)

	session, err := a.datasource.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsTerminal() {
		return nil, apierror.NewAPIError(apierror.ErrSessionState, fmt.Sprintf("Session is already %s", session.Status), nil)
	}

	if session.Status == model.StatusSubmitting {
		session.CancelRequested = true
		if err := a.datasource.UpdateSession(ctx, session); err != nil {
			return nil, logAndRecordError(span, "failed to update session: ", err)
		}
		return session, nil
	}

	if err := session.TransitionTo(model.StatusCancelled); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrSessionState, err.Error(), err)
	}
	if err := a.datasource.UpdateSession(ctx, session); err != nil {
		return nil, logAndRecordError(span, "failed to update session: ", err)
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
