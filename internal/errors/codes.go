// Package errors provides structured error handling for match commands.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Input errors
	CodeUsage          Code = "USAGE"
	CodeDurationParse  Code = "DURATION_PARSE"
	CodeMalformedKey   Code = "MALFORMED_KEY"
	CodeUserResolution Code = "USER_RESOLUTION"
	CodeInvalidTarget  Code = "INVALID_TARGET"

	// Authorization errors
	CodeUnauthorized Code = "UNAUTHORIZED"

	// Lifecycle errors. A vote on an expired match is not an error at all:
	// it surfaces as a closed vote status, so no code exists for it here.
	CodeRegistrationClosed Code = "REGISTRATION_CLOSED"

	// Lookup errors
	CodeMatchNotFound      Code = "MATCH_NOT_FOUND"
	CodeCompetitorNotFound Code = "COMPETITOR_NOT_FOUND"

	// Backend errors
	CodeStorage        Code = "STORAGE"
	CodeDataCorruption Code = "DATA_CORRUPTION"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeUsage,
		CodeDurationParse,
		CodeMalformedKey,
		CodeUserResolution,
		CodeInvalidTarget:
		return codes.InvalidArgument

	// PermissionDenied - missing manage capability
	case CodeUnauthorized:
		return codes.PermissionDenied

	// FailedPrecondition - lifecycle disallows the operation
	case CodeRegistrationClosed:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeMatchNotFound,
		CodeCompetitorNotFound:
		return codes.NotFound

	// Unavailable - transient backend failure
	case CodeStorage:
		return codes.Unavailable

	// DataLoss - invariant violation in stored data
	case CodeDataCorruption:
		return codes.DataLoss

	default:
		return codes.Internal
	}
}

// UserCorrectable reports whether the user can fix the failure by adjusting
// their command, as opposed to a backend or data fault.
func (c Code) UserCorrectable() bool {
	switch c {
	case CodeUsage,
		CodeDurationParse,
		CodeMalformedKey,
		CodeUserResolution,
		CodeInvalidTarget,
		CodeRegistrationClosed,
		CodeMatchNotFound,
		CodeCompetitorNotFound:
		return true
	default:
		return false
	}
}
