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
	"fmt"
	"time"

	"context"

	"github.com/arigohub24/arigo-pay/internal/apierror"
	"github.com/arigohub24/arigo-pay/model"
)

// Template kinds.
const (
	TemplateKindBeneficiary = "beneficiary"
	TemplateKindPayment     = "payment"
)

// SaveTemplate stores a beneficiary or payment template for later reuse.
// Templates are append-only: saving never mutates or removes an earlier one.
func (a *Arigopay) SaveTemplate(ctx context.Context, ownerID, kind, name string, values map[string]interface{}) (*model.SavedTemplate, error) {
	ctx, span := tracer.Start(ctx, "Saving template")
	defer span.End()

	if kind != TemplateKindBeneficiary && kind != TemplateKindPayment {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("Unknown template kind '%s'", kind), nil)
	}
	if name == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Template name is required", nil)
	}

	template := &model.SavedTemplate{
		TemplateID: model.GenerateUUIDWithSuffix("tpl"),
		OwnerID:    ownerID,
		Kind:       kind,
		Name:       name,
		Values:     model.CopyValues(values),
		CreatedAt:  time.Now(),
	}

	saved, err := a.datasource.RecordTemplate(ctx, template)
	if err != nil {
		return nil, logAndRecordError(span, "failed to record template: ", err)
	}
	return saved, nil
}

// ListTemplates returns an owner's templates in the order they were saved.
func (a *Arigopay) ListTemplates(ctx context.Context, ownerID, kind string, limit, offset int) ([]*model.SavedTemplate, error) {
	ctx, span := tracer.Start(ctx, "Listing templates")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}
	return a.datasource.GetAllTemplates(ctx, ownerID, kind, limit, offset)
}

// GetTemplate returns a single saved template.
func (a *Arigopay) GetTemplate(ctx context.Context, templateID string) (*model.SavedTemplate, error) {
	ctx, span := tracer.Start(ctx, "Getting template")
	defer span.End()

	return a.datasource.GetTemplate(ctx, templateID)
}

// PrefillFromTemplate extracts the template values the flow's steps can
// accept. Values for fields no step declares are dropped silently.
func PrefillFromTemplate(definition *model.WizardDefinition, template *model.SavedTemplate) map[string]interface{} {
	values := make(map[string]interface{})
	for name, value := range template.Values {
		for i := range definition.Steps {
			if _, ok := definition.Steps[i].FieldSpec(name); ok {
				values[name] = value
				break
			}
		}
	}
	return values
}
