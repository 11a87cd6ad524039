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
package api

import (
	"net/http"

	model2 "github.com/arigohub24/arigo-pay/api/model"
	"github.com/arigohub24/arigo-pay/internal/apierror"

	"github.com/gin-gonic/gin"
)

// CreateSession starts a new wizard session for a flow.
// It binds the incoming JSON request to a CreateSession object, validates it,
// and then starts the session. When a template ID is supplied, the template's
// values prefill the session.
//
// Responses:
// - 400 Bad Request: If there's an error in binding JSON or validating the request.
// - 201 Created: If the session is successfully started.
func (a Api) CreateSession(c *gin.Context) {
	var newSession model2.CreateSession
	if err := c.ShouldBindJSON(&newSession); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	err := newSession.ValidateCreateSession()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.engine.StartSession(c.Request.Context(), newSession.FlowID, newSession.OwnerID, newSession.TemplateID, newSession.MetaData)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetSession retrieves the current state of a wizard session by ID.
func (a Api) GetSession(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	resp, err := a.engine.GetSession(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateSessionValues applies raw field values to the session's current step.
// Accepted values are stored; rejected ones are reported per field with their
// reasons and the response carries a 400 status.
func (a Api) UpdateSessionValues(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	var update model2.UpdateSessionValues
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	err := update.ValidateUpdateSessionValues()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	session, rejections, err := a.engine.UpdateValues(c.Request.Context(), id, update.Values)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	if len(rejections) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"session": session, "rejections": rejections})
		return
	}

	c.JSON(http.StatusOK, session)
}

// AdvanceSession moves the session to its next step. When the current step is
// incomplete, the per-field rejections are returned with a 400 status and the
// session stays where it is. Advancing past the last step moves the session
// to AWAITING_AUTHORIZATION.
func (a Api) AdvanceSession(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	session, rejections, err := a.engine.Advance(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	if len(rejections) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"session": session, "rejections": rejections})
		return
	}

	c.JSON(http.StatusOK, session)
}

// RetreatSession moves the session one step back, retaining entered values.
func (a Api) RetreatSession(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	session, err := a.engine.Retreat(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, session)
}

// CancelSession abandons a session. A session that is mid-submission is not
// cancelled immediately; the cancel request is recorded and the in-flight
// outcome stands.
func (a Api) CancelSession(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	session, err := a.engine.Cancel(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, session)
}

// AuthorizeSession verifies the transaction PIN for a session awaiting
// authorization. A malformed PIN is rejected locally before any backend
// verification. On acceptance, the submission is queued and the session
// moves to SUBMITTING.
func (a Api) AuthorizeSession(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	var authorize model2.AuthorizeSession
	if err := c.ShouldBindJSON(&authorize); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	err := authorize.ValidateAuthorizeSession()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	session, err := a.engine.SubmitFactor(c.Request.Context(), id, authorize.Pin)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetAuthorizationAttempts returns the audit trail of authorization attempts
// for a session. The trail records outcomes only, never the PIN itself.
func (a Api) GetAuthorizationAttempts(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	resp, err := a.engine.GetAuthorizationAttempts(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetSubmissionResult returns the recorded submission outcome for a session.
func (a Api) GetSubmissionResult(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	resp, err := a.engine.GetSubmissionResult(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetAllFlows lists the registered wizard flow definitions.
func (a Api) GetAllFlows(c *gin.Context) {
	c.JSON(http.StatusOK, a.engine.ListFlows())
}
