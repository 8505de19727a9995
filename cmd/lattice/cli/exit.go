// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError signals a non-zero exit without an extra "error:" line.
// Commands that print their own findings (doctor, the error envelope
// in --json mode) return it so main exits with the right code
// without duplicating output.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode is checked by main through an anonymous interface to tell
// handled non-zero exits apart from errors that still need printing.
func (e *ExitError) ExitCode() int {
	return e.Code
}
