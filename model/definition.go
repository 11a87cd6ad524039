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
)

// ComputedField derives a value from the current step values, e.g. the
// estimated fee for a transfer amount or the price of a selected plan.
type ComputedField struct {
	Name      string
	DependsOn []string
	Compute   func(values map[string]interface{}) (interface{}, error)
}

// Step is one screen of a wizard: the fields it collects and the values it
// derives from them.
type Step struct {
	ID       string
	Ordinal  int
	Fields   []FieldSpec
	Computed []ComputedField
}

// FieldSpec returns the spec for a named field on this step.
func (s *Step) FieldSpec(name string) (*FieldSpec, bool) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// WizardDefinition is an ordered sequence of steps. Definitions are immutable
// once a session starts; sessions hold a read-only reference by flow ID.
type WizardDefinition struct {
	FlowID string
	Name   string
	Steps  []Step
}

// Validate checks the structural invariants of a definition: at least one
// step, and ordinals unique and contiguous starting at 0.
func (d *WizardDefinition) Validate() error {
	if d.FlowID == "" {
		return fmt.Errorf("wizard definition requires a flow id")
	}
	if len(d.Steps) == 0 {
		return fmt.Errorf("wizard definition %s has no steps", d.FlowID)
	}
	for i := range d.Steps {
		if d.Steps[i].Ordinal != i {
			return fmt.Errorf("wizard definition %s: step %q has ordinal %d, want %d", d.FlowID, d.Steps[i].ID, d.Steps[i].Ordinal, i)
		}
	}
	return nil
}

// Step returns the step at the given ordinal.
func (d *WizardDefinition) Step(ordinal int) (*Step, error) {
	if ordinal < 0 || ordinal >= len(d.Steps) {
		return nil, fmt.Errorf("wizard definition %s has no step with ordinal %d", d.FlowID, ordinal)
	}
	return &d.Steps[ordinal], nil
}

// IsLastStep reports whether the ordinal is the final data step; completing
// it moves the session to AWAITING_AUTHORIZATION rather than a next step.
func (d *WizardDefinition) IsLastStep(ordinal int) bool {
	return ordinal == len(d.Steps)-1
}

// IsStepComplete reports whether every required field of the step holds an
// accepted value. It never raises a failure; rejections are surfaced by
// StepRejections.
func IsStepComplete(step *Step, values map[string]interface{}) bool {
	return len(StepRejections(step, values)) == 0
}

// StepRejections re-validates the step's required fields against the current
// values and returns the field-level rejections, in field declaration order.
func StepRejections(step *Step, values map[string]interface{}) []*FieldError {
	var rejections []*FieldError
	for _, spec := range step.Fields {
		value, ok := values[spec.Name]
		if !ok {
			if spec.Required {
				rejections = append(rejections, &FieldError{Field: spec.Name, Reason: ReasonMissingValue})
			}
			continue
		}
		if _, ferr := spec.Validate(value, values); ferr != nil {
			rejections = append(rejections, ferr)
		}
	}
	return rejections
}

// Recompute re-runs the step's computed fields against the current values.
// Compute functions are pure, so repeated recomputation with unchanged input
// never drifts. A computed field whose dependencies are not yet accepted is
// skipped rather than failed.
func Recompute(step *Step, values map[string]interface{}) {
	for _, c := range step.Computed {
		ready := true
		for _, dep := range c.DependsOn {
			if _, ok := values[dep]; !ok {
				ready = false
				break
			}
		}
		if !ready {
			delete(values, c.Name)
			continue
		}
		out, err := c.Compute(values)
		if err != nil {
			delete(values, c.Name)
			continue
		}
		values[c.Name] = out
	}
}
