// SPDX-FileCopyrightText: © 2025 Prescient Earth
//
// SPDX-License-Identifier: Apache-2.0

// Package auth brokers the two credential exchanges the SDK relies on:
// AWS STS role assumption and the OAuth2 client-credentials flow. Both
// operations are stateless given their inputs; a failed exchange is
// surfaced immediately, never retried.
package auth

import "fmt"

// AuthError reports a failed credential exchange. The underlying cause
// is preserved for errors.Is/As.
type AuthError struct {
	Op  string // "assume_role" or "token_exchange"
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication error: %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
