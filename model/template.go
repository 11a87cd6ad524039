package model

import "time"

// SavedTemplate is a saved beneficiary or payment template. Selecting one
// pre-populates the first step of a new session; the values are still
// validated by the step's field specs when the user proceeds.
type SavedTemplate struct {
	ID         int64                  `json:"-"`
	TemplateID string                 `json:"id"`
	OwnerID    string                 `json:"owner_id"`
	Kind       string                 `json:"kind"`
	Name       string                 `json:"name"`
	Values     map[string]interface{} `json:"values"`
	CreatedAt  time.Time              `json:"created_at"`
}
