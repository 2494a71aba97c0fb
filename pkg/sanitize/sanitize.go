// Package sanitize strips active content from user-supplied text before it is
// returned to clients.
package sanitize

import "github.com/microcosm-cc/bluemonday"

// Sanitizer removes scripts, event handlers and unsafe URLs while keeping
// benign formatting such as <strong> or <em>.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// New creates a sanitizer with the user generated content policy
func New() *Sanitizer {
	return &Sanitizer{policy: bluemonday.UGCPolicy()}
}

// String sanitizes s. The result is HTML: quotes and ampersands in text come
// back entity encoded.
func (s *Sanitizer) String(in string) string {
	if in == "" {
		return in
	}
	return s.policy.Sanitize(in)
}

// Ptr sanitizes an optional value, keeping nil as nil
func (s *Sanitizer) Ptr(in *string) *string {
	if in == nil {
		return nil
	}
	out := s.String(*in)
	return &out
}
