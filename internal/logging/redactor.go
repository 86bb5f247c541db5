package logging

import (
	"reflect"
	"strings"
)

const redactedValue = "[REDACTED]"

// Redactor handles secret redaction in log fields.
type Redactor struct {
	sensitiveKeys map[string]bool
}

// NewRedactor creates a new Redactor with default sensitive keys for the
// SRP/JWT auth domain: passwords, issued tokens, the shared client secret
// and its SECRET_HASH derivative, and the intermediate SRP/device values
// that, if logged, would let a reader reconstruct a session key.
func NewRedactor() *Redactor {
	return &Redactor{
		sensitiveKeys: map[string]bool{
			// Passwords. Cognito's wire bodies use PascalCase
			// (e.g. "PreviousPassword"); isSensitiveKey only
			// lowercases, so both spellings are listed.
			"password":          true,
			"new_password":      true,
			"previous_password": true,
			"previouspassword":  true,
			"proposed_password": true,
			"proposedpassword":  true,
			"device_password":   true,

			// Issued/bearer tokens
			"token":         true,
			"id_token":      true,
			"idtoken":       true,
			"access_token":  true,
			"accesstoken":   true,
			"refresh_token": true,
			"refreshtoken":  true,
			"session_token": true,
			"session":       true, // the IDP's opaque challenge-continuation token
			"authorization": true,

			// Client secret and its derivatives
			"secret":        true,
			"client_secret": true,
			"secret_hash":   true,

			// SRP exchange values
			"salt":                        true,
			"verifier":                    true,
			"srp_a":                       true,
			"srp_b":                       true,
			"password_claim_signature":    true,
			"password_claim_secret_block": true,

			// Generic credential material
			"api_key":     true,
			"access_key":  true,
			"secret_key":  true,
			"private_key": true,
			"cert":        true,
			"certificate": true,
		},
	}
}

// AddSensitiveKey adds a custom key to the redaction list.
func (r *Redactor) AddSensitiveKey(key string) {
	r.sensitiveKeys[strings.ToLower(key)] = true
}

// RemoveSensitiveKey removes a key from the redaction list.
func (r *Redactor) RemoveSensitiveKey(key string) {
	delete(r.sensitiveKeys, strings.ToLower(key))
}

// RedactFields redacts sensitive values from a map of fields.
func (r *Redactor) RedactFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}

	redacted := make(map[string]any, len(fields))
	stringMapType := reflect.TypeOf(map[string]string(nil))

	for k, v := range fields {
		if r.isSensitiveKey(k) {
			redacted[k] = redactedValue
		} else if nested, ok := v.(map[string]any); ok {
			// Recursively redact nested maps
			redacted[k] = r.RedactFields(nested)
		} else if rv := reflect.ValueOf(v); rv.Kind() == reflect.Map && rv.Type().ConvertibleTo(stringMapType) {
			// Wire parameter bags (e.g. Cognito's AuthParameters, including
			// named types such as protocol.AuthParameters) are
			// string-keyed/string-valued rather than map[string]any.
			strNested := rv.Convert(stringMapType).Interface().(map[string]string)
			redacted[k] = r.redactStringMap(strNested)
		} else {
			redacted[k] = v
		}
	}

	return redacted
}

// redactStringMap applies the same key-based redaction as RedactFields to a
// map[string]string, preserving its concrete type for callers that need it.
func (r *Redactor) redactStringMap(fields map[string]string) map[string]string {
	redacted := make(map[string]string, len(fields))
	for k, v := range fields {
		if r.isSensitiveKey(k) {
			redacted[k] = redactedValue
		} else {
			redacted[k] = v
		}
	}
	return redacted
}

// RedactString redacts sensitive values from a string by checking for key patterns.
func (r *Redactor) RedactString(s string) string {
	// Simple pattern matching for common secrets in strings
	// This is a basic implementation - could be enhanced with regex patterns

	for key := range r.sensitiveKeys {
		// Look for patterns like "key=value" or "key: value"
		patterns := []string{
			key + "=",
			key + ": ",
			"\"" + key + "\":",
		}

		for _, pattern := range patterns {
			if strings.Contains(strings.ToLower(s), pattern) {
				// Found a potential secret - redact the whole line for safety
				return redactedValue
			}
		}
	}

	return s
}

// isSensitiveKey checks if a field key is marked as sensitive.
func (r *Redactor) isSensitiveKey(key string) bool {
	// Only check exact match (case-insensitive)
	// Substring matching was too aggressive and caught legitimate fields
	return r.sensitiveKeys[strings.ToLower(key)]
}
