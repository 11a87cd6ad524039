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

	"github.com/arigohub24/arigo-pay/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	session       // Interface for wizard session operations
	authorization // Interface for authorization attempt operations
	submission    // Interface for submission result operations
	template      // Interface for saved template operations
}

// session defines methods for handling wizard sessions.
type session interface {
	RecordSession(ctx context.Context, session *model.WizardSession) (*model.WizardSession, error) // Records a new wizard session
	GetSession(ctx context.Context, id string) (*model.WizardSession, error)                       // Retrieves a session by ID
	UpdateSession(ctx context.Context, session *model.WizardSession) error                         // Persists the full session state
	GetSessionsByStatus(ctx context.Context, status string, limit, offset int) ([]*model.WizardSession, error)
}

// authorization defines methods for handling authorization attempts.
type authorization interface {
	RecordAuthorizationAttempt(ctx context.Context, attempt *model.AuthorizationAttempt) (*model.AuthorizationAttempt, error)
	GetAuthorizationAttempts(ctx context.Context, sessionID string) ([]*model.AuthorizationAttempt, error)
}

// submission defines methods for handling submission results.
type submission interface {
	RecordSubmissionResult(ctx context.Context, result *model.SubmissionResult) (*model.SubmissionResult, error)
	GetSubmissionResult(ctx context.Context, sessionID string) (*model.SubmissionResult, error)
}

// template defines methods for handling saved beneficiary and payment templates.
type template interface {
	RecordTemplate(ctx context.Context, template *model.SavedTemplate) (*model.SavedTemplate, error)
	GetTemplate(ctx context.Context, id string) (*model.SavedTemplate, error)
	GetAllTemplates(ctx context.Context, ownerID, kind string, limit, offset int) ([]*model.SavedTemplate, error)
}
