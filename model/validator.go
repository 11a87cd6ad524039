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
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RejectionReason is the closed set of reasons a field value can be rejected.
type RejectionReason string

const (
	ReasonMissingValue    RejectionReason = "MissingValue"
	ReasonInvalidFormat   RejectionReason = "InvalidFormat"
	ReasonOutOfRange      RejectionReason = "OutOfRange"
	ReasonPatternMismatch RejectionReason = "PatternMismatch"
	ReasonMismatch        RejectionReason = "Mismatch"
)

// FieldError is a typed rejection produced by field validation.
type FieldError struct {
	Field  string          `json:"field"`
	Reason RejectionReason `json:"reason"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidationError carries the field-level rejections of a step. Callers use it
// to re-prompt the same step; it never reaches the submission orchestrator.
type ValidationError struct {
	Rejections []*FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Rejections))
	for _, r := range e.Rejections {
		parts = append(parts, r.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// FieldKind classifies the raw input a FieldSpec accepts.
type FieldKind string

const (
	KindText   FieldKind = "text"
	KindNumber FieldKind = "number"
	KindEnum   FieldKind = "enum"
	KindDate   FieldKind = "date"
)

// FieldPattern describes a fixed external format, e.g. a 10-digit account
// number or a 4-digit PIN.
type FieldPattern struct {
	Length int
	Digits bool
}

func (p *FieldPattern) matches(value string) bool {
	if len(value) != p.Length {
		return false
	}
	if p.Digits {
		for _, r := range value {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// FieldSpec declares a single wizard input field and its validation rules.
type FieldSpec struct {
	Name      string        `json:"name"`
	Kind      FieldKind     `json:"kind"`
	Required  bool          `json:"required"`
	Pattern   *FieldPattern `json:"pattern,omitempty"`
	Enum      []string      `json:"enum,omitempty"`
	Positive  bool          `json:"positive,omitempty"`
	ConfirmOf string        `json:"confirm_of,omitempty"`
}

// PinField is the shared spec for the authorization factor. The pattern check
// runs before the value is considered submitted to the authorization backend.
var PinField = FieldSpec{Name: "pin", Kind: KindText, Required: true, Pattern: &FieldPattern{Length: 4, Digits: true}}

const dateLayout = "2006-01-02"

// Validate maps a raw field input to its normalized value or a typed
// rejection. It has no side effects and is deterministic; allValues is only
// consulted for cross-field rules (ConfirmOf).
func (spec FieldSpec) Validate(rawValue interface{}, allValues map[string]interface{}) (interface{}, *FieldError) {
	raw := strings.TrimSpace(ValueToString(rawValue))
	if raw == "" {
		if spec.Required {
			return nil, &FieldError{Field: spec.Name, Reason: ReasonMissingValue}
		}
		return "", nil
	}

	if spec.Pattern != nil && !spec.Pattern.matches(raw) {
		return nil, &FieldError{Field: spec.Name, Reason: ReasonPatternMismatch}
	}

	var normalized interface{} = raw
	switch spec.Kind {
	case KindNumber:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, &FieldError{Field: spec.Name, Reason: ReasonInvalidFormat}
		}
		if spec.Positive && d.Sign() <= 0 {
			return nil, &FieldError{Field: spec.Name, Reason: ReasonOutOfRange}
		}
		normalized = d
	case KindEnum:
		found := false
		for _, allowed := range spec.Enum {
			if raw == allowed {
				found = true
				break
			}
		}
		if !found {
			return nil, &FieldError{Field: spec.Name, Reason: ReasonOutOfRange}
		}
	case KindDate:
		if _, err := time.Parse(dateLayout, raw); err != nil {
			return nil, &FieldError{Field: spec.Name, Reason: ReasonInvalidFormat}
		}
	}

	if spec.ConfirmOf != "" {
		paired := strings.TrimSpace(ValueToString(allValues[spec.ConfirmOf]))
		if raw != paired {
			return nil, &FieldError{Field: spec.Name, Reason: ReasonMismatch}
		}
	}

	return normalized, nil
}

// ValueToString renders a stored or raw field value as its string form.
// Values round-trip through JSONB, so numbers may arrive as decimals,
// float64s or strings depending on where they have been.
func ValueToString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case decimal.Decimal:
		return v.String()
	case float64:
		return decimal.NewFromFloat(v).String()
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
