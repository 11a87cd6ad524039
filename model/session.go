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

package model

import (
	"fmt"
	"time"
)

// Wizard session statuses.
const (
	StatusInProgress            = "IN_PROGRESS"
	StatusAwaitingAuthorization = "AWAITING_AUTHORIZATION"
	StatusSubmitting            = "SUBMITTING"
	StatusSucceeded             = "SUCCEEDED"
	StatusFailed                = "FAILED"
	StatusCancelled             = "CANCELLED"
)

// AllowedTransitions defines the valid status transitions. The key is the
// current status, and the value is the set of valid target statuses.
// SUBMITTING has no edge to CANCELLED: cancellation while a submission is in
// flight is cooperative and only marks the session as cancel-requested.
var AllowedTransitions = map[string][]string{
	StatusInProgress: {
		StatusAwaitingAuthorization,
		StatusCancelled,
	},
	StatusAwaitingAuthorization: {
		StatusSubmitting,
		StatusCancelled,
	},
	StatusSubmitting: {
		StatusSucceeded,
		StatusFailed,
	},
	StatusSucceeded: {}, // Terminal
	StatusFailed:    {}, // Terminal
	StatusCancelled: {}, // Terminal
}

// CanTransition checks if a transition from one status to another is allowed.
func CanTransition(from, to string) bool {
	allowed, exists := AllowedTransitions[from]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns an error if the transition is not allowed.
func ValidateTransition(from, to string) error {
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}

// InvalidTransitionError represents an invalid status transition attempt.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// IsTerminalStatus reports whether a session status admits no further
// transitions.
func IsTerminalStatus(status string) bool {
	return len(AllowedTransitions[status]) == 0
}

// WizardSession is one run of a wizard flow by a single user. It is mutated
// only by the engine under a per-session lock.
type WizardSession struct {
	ID                 int64                  `json:"-"`
	SessionID          string                 `json:"id"`
	FlowID             string                 `json:"flow_id"`
	OwnerID            string                 `json:"owner_id"`
	CurrentStepOrdinal int                    `json:"current_step"`
	Values             map[string]interface{} `json:"values"`
	Status             string                 `json:"status"`
	AttemptCount       int                    `json:"attempt_count"`
	FactorAttempts     int                    `json:"factor_attempts"`
	CancelRequested    bool                   `json:"cancel_requested"`
	CreatedAt          time.Time              `json:"created_at"`
	MetaData           map[string]interface{} `json:"meta_data,omitempty"`
}

// IsTerminal reports whether the session has reached a terminal status.
func (s *WizardSession) IsTerminal() bool {
	return IsTerminalStatus(s.Status)
}

// TransitionTo moves the session to a new status after validating the edge.
func (s *WizardSession) TransitionTo(status string) error {
	if err := ValidateTransition(s.Status, status); err != nil {
		return err
	}
	s.Status = status
	return nil
}

// Authorization attempt results.
const (
	FactorAccepted = "ACCEPTED"
	FactorRejected = "REJECTED"
)

// AuthorizationAttempt records the outcome of one factor submission. The raw
// factor value is never part of this record.
type AuthorizationAttempt struct {
	ID        int64     `json:"-"`
	AttemptID string    `json:"id"`
	SessionID string    `json:"session_id"`
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}

// Submission outcomes.
const (
	OutcomeSuccess = "SUCCESS"
	OutcomeFailure = "FAILURE"
)

// Submission failure reasons. Terminal failures carry one of these; raw
// backend error strings never reach the caller.
const (
	FailureGatewayDeclined    = "GATEWAY_DECLINED"
	FailureGatewayTimeout     = "GATEWAY_TIMEOUT"
	FailureGatewayUnavailable = "GATEWAY_UNAVAILABLE"
)

// SubmissionResult is produced exactly once per terminal transition into
// SUCCEEDED or FAILED.
type SubmissionResult struct {
	ID            int64     `json:"-"`
	ResultID      string    `json:"id"`
	SessionID     string    `json:"session_id"`
	Outcome       string    `json:"outcome"`
	ReferenceID   string    `json:"reference_id,omitempty"`
	FailureReason string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
