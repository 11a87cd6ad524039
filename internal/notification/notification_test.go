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

package notification

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterWebhookSender(t *testing.T) {
	webhookSender = nil

	RegisterWebhookSender(func(event string, payload interface{}) error {
		return nil
	})

	assert.NotNil(t, webhookSender)
}

func TestWebhookNotification_CalledCorrectly(t *testing.T) {
	webhookSender = nil

	var capturedEvent string
	var capturedPayload interface{}

	RegisterWebhookSender(func(event string, payload interface{}) error {
		capturedEvent = event
		capturedPayload = payload
		return nil
	})

	testPayload := map[string]string{"key": "value"}
	err := WebhookNotification("session.succeeded", testPayload)

	assert.NoError(t, err)
	assert.Equal(t, "session.succeeded", capturedEvent)
	assert.Equal(t, testPayload, capturedPayload)
}

func TestWebhookNotification_NoSenderRegistered(t *testing.T) {
	webhookSender = nil

	assert.NoError(t, WebhookNotification("session.succeeded", nil))
}

func TestWebhookNotification_ReturnsError(t *testing.T) {
	webhookSender = nil

	expectedError := errors.New("webhook failed")
	RegisterWebhookSender(func(event string, payload interface{}) error {
		return expectedError
	})

	err := WebhookNotification("session.failed", nil)

	assert.Error(t, err)
	assert.Equal(t, expectedError, err)
}

func TestRegisterWebhookSender_ReplacesPrevious(t *testing.T) {
	webhookSender = nil

	callCount := 0

	RegisterWebhookSender(func(event string, payload interface{}) error {
		callCount = 1
		return nil
	})

	RegisterWebhookSender(func(event string, payload interface{}) error {
		callCount = 2
		return nil
	})

	_ = WebhookNotification("session.cancelled", nil)

	assert.Equal(t, 2, callCount)
}
