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
package mocks

import (
	"context"

	"github.com/arigohub24/arigo-pay/model"
	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Session methods

func (m *MockDataSource) RecordSession(ctx context.Context, session *model.WizardSession) (*model.WizardSession, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WizardSession), args.Error(1)
}

func (m *MockDataSource) GetSession(ctx context.Context, id string) (*model.WizardSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WizardSession), args.Error(1)
}

func (m *MockDataSource) UpdateSession(ctx context.Context, session *model.WizardSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockDataSource) GetSessionsByStatus(ctx context.Context, status string, limit, offset int) ([]*model.WizardSession, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.WizardSession), args.Error(1)
}

// Authorization methods

func (m *MockDataSource) RecordAuthorizationAttempt(ctx context.Context, attempt *model.AuthorizationAttempt) (*model.AuthorizationAttempt, error) {
	args := m.Called(ctx, attempt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthorizationAttempt), args.Error(1)
}

func (m *MockDataSource) GetAuthorizationAttempts(ctx context.Context, sessionID string) ([]*model.AuthorizationAttempt, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.AuthorizationAttempt), args.Error(1)
}

// Submission methods

func (m *MockDataSource) RecordSubmissionResult(ctx context.Context, result *model.SubmissionResult) (*model.SubmissionResult, error) {
	args := m.Called(ctx, result)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubmissionResult), args.Error(1)
}

func (m *MockDataSource) GetSubmissionResult(ctx context.Context, sessionID string) (*model.SubmissionResult, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubmissionResult), args.Error(1)
}

// Template methods

func (m *MockDataSource) RecordTemplate(ctx context.Context, template *model.SavedTemplate) (*model.SavedTemplate, error) {
	args := m.Called(ctx, template)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SavedTemplate), args.Error(1)
}

func (m *MockDataSource) GetTemplate(ctx context.Context, id string) (*model.SavedTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SavedTemplate), args.Error(1)
}

func (m *MockDataSource) GetAllTemplates(ctx context.Context, ownerID, kind string, limit, offset int) ([]*model.SavedTemplate, error) {
	args := m.Called(ctx, ownerID, kind, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.SavedTemplate), args.Error(1)
}
