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
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// CreateSession is the request body for starting a wizard session.
type CreateSession struct {
	FlowID     string                 `json:"flow_id"`
	OwnerID    string                 `json:"owner_id"`
	TemplateID string                 `json:"template_id"`
	MetaData   map[string]interface{} `json:"meta_data"`
}

// UpdateSessionValues carries raw field values for the current step. Values
// arrive as strings and are validated by the engine against the step's
// field specs.
type UpdateSessionValues struct {
	Values map[string]string `json:"values"`
}

// AuthorizeSession carries the transaction PIN. The PIN is passed through to
// the engine and never logged or stored.
type AuthorizeSession struct {
	Pin string `json:"pin"`
}

// CreateTemplate is the request body for saving a beneficiary or payment
// template.
type CreateTemplate struct {
	OwnerID string                 `json:"owner_id"`
	Kind    string                 `json:"kind"`
	Name    string                 `json:"name"`
	Values  map[string]interface{} `json:"values"`
}

func (s *CreateSession) ValidateCreateSession() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.FlowID, validation.Required),
		validation.Field(&s.OwnerID, validation.Required),
	)
}

func (u *UpdateSessionValues) ValidateUpdateSessionValues() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.Values, validation.Required),
	)
}

func (a *AuthorizeSession) ValidateAuthorizeSession() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Pin, validation.Required, validation.Length(4, 4), validation.Match(pinPattern)),
	)
}

func (t *CreateTemplate) ValidateCreateTemplate() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.OwnerID, validation.Required),
		validation.Field(&t.Kind, validation.Required, validation.In("beneficiary", "payment")),
		validation.Field(&t.Name, validation.Required),
		validation.Field(&t.Values, validation.Required),
	)
}
