package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// GenerateUUIDWithSuffix generates a UUID with a given module name as a prefix.
// This is useful for creating unique identifiers with context-specific prefixes.
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New()
	uuidStr := id.String()
	idWithSuffix := fmt.Sprintf("%s_%s", module, uuidStr)
	return idWithSuffix
}

// IdempotencyToken derives the token that tags a submission attempt.
// The token is a pure function of the session ID and the attempt count, so a
// retried submission for the same session carries the same token until a
// definitive gateway response has been recorded.
func IdempotencyToken(sessionID string, attemptCount int) string {
	data := fmt.Sprintf("%s:%d", sessionID, attemptCount)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// DigestFactor hashes a raw authorization factor before it leaves the engine.
// The raw factor is never persisted or logged; only the digest travels to the
// authorization backend.
func DigestFactor(raw string) string {
	hash := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(hash[:])
}

// CopyValues returns a snapshot of a values map. Submissions operate on the
// snapshot so later mutation of the session cannot change an in-flight call.
func CopyValues(values map[string]interface{}) map[string]interface{} {
	snapshot := make(map[string]interface{}, len(values))
	for k, v := range values {
		snapshot[k] = v
	}
	return snapshot
}
