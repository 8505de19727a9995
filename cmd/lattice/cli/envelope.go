// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"os"
	"reflect"
)

// Envelope is the JSON result contract every command emits in --json
// mode: {status, message, data?}, with code and category filled in on
// errors.
type Envelope struct {
	// Status is "success", "warning", or "error".
	Status string `json:"status"`
	// Message is the one-line human summary of the outcome.
	Message string `json:"message"`
	// Code is the stable error identifier on error envelopes.
	Code string `json:"code,omitempty"`
	// Category is the error category on error envelopes.
	Category ErrorCategory `json:"category,omitempty"`
	// Data is the command-specific payload.
	Data any `json:"data,omitempty"`
}

// Success builds a success envelope.
func Success(message string, data any) *Envelope {
	return &Envelope{Status: "success", Message: message, Data: normalizeNilSlice(data)}
}

// Warning builds a warning envelope: the command completed, but in
// degraded form the caller should know about.
func Warning(message string, data any) *Envelope {
	return &Envelope{Status: "warning", Message: message, Data: normalizeNilSlice(data)}
}

// ErrorEnvelope maps a command error onto the envelope contract.
// Uncategorized errors are reported as internal.
func ErrorEnvelope(err error) *Envelope {
	env := &Envelope{Status: "error", Message: err.Error(), Category: CategoryInternal}
	if toolErr, ok := err.(*ToolError); ok {
		env.Category = toolErr.Category
		env.Code = toolErr.Code
	}
	return env
}

// JSONOutput is embedded in a command's params struct to add the
// --json flag and envelope emission.
type JSONOutput struct {
	OutputJSON bool `json:"-" flag:"json" desc:"emit the JSON result envelope"`
}

// Enabled reports whether --json was set.
func (j *JSONOutput) Enabled() bool { return j.OutputJSON }

// Emit writes the envelope to stdout when --json is set. Returns
// (true, nil) after writing, (false, nil) when the caller should
// produce text output instead.
func (j *JSONOutput) Emit(env *Envelope) (bool, error) {
	if !j.OutputJSON {
		return false, nil
	}
	return true, WriteJSON(env)
}

// WriteJSON writes value to stdout as indented JSON.
func WriteJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// normalizeNilSlice turns a nil slice into an empty one so envelopes
// serialize data as [] rather than null.
func normalizeNilSlice(value any) any {
	if value == nil {
		return nil
	}
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Slice && v.IsNil() {
		return reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	return value
}
