// Package dogmaerr centralises the error-kind tagging used across
// compilation and evaluation, per spec §7. Compilation failures are
// ordinary Go errors (wrapped with samber/oops for structured context);
// evaluation error-verdicts are data carried inside a rationale tree, not
// control flow, but both are constructed through this package so the
// kind strings stay consistent.
package dogmaerr

import "github.com/samber/oops"

// Kind is an evaluation-time error verdict kind (spec §7).
type Kind string

const (
	KindType              Kind = "type_error"
	KindCoreFunction      Kind = "core_function_error"
	KindRecursionExceeded Kind = "recursion_exceeded"
	KindCancelled         Kind = "cancelled"
	KindPatternNotFound   Kind = "pattern_not_found"
)

// Compilation-failure error codes, used with oops.Code for IsParseError /
// IsResolutionError style inspection at call sites.
const (
	CodeParseError      = "PARSE_ERROR"
	CodeResolutionError = "RESOLUTION_ERROR"
)

// NewParseError builds a coded compilation error.
func NewParseError(file string, err error) error {
	return oops.Code(CodeParseError).In("dogma").With("file", file).Wrap(err)
}

// NewResolutionError builds a coded compilation error for name binding and
// linking failures (unknown name, arity mismatch, duplicate definition).
func NewResolutionError(reason string, kv ...any) error {
	b := oops.Code(CodeResolutionError).In("dogma")
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		b = b.With(key, kv[i+1])
	}
	return b.New(reason)
}

// IsParseError reports whether err is a PARSE_ERROR.
func IsParseError(err error) bool { return hasCode(err, CodeParseError) }

// IsResolutionError reports whether err is a RESOLUTION_ERROR.
func IsResolutionError(err error) bool { return hasCode(err, CodeResolutionError) }

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	return oopsErr.Code() == code
}
