package providers

import (
	"context"
	"errors"

	"github.com/aws/smithy-go"
	"github.com/systmms/ssmrotate/pkg/paramstore"
)

var (
	notFoundCodes = map[string]bool{
		"ParameterNotFound":         true,
		"ParameterVersionNotFound":  true,
		"ResourceNotFoundException": true,
	}
	accessDeniedCodes = map[string]bool{
		"AccessDenied":                true,
		"AccessDeniedException":       true,
		"UnauthorizedOperation":       true,
		"UnrecognizedClientException": true,
		"InvalidClientTokenId":        true,
		"ExpiredTokenException":       true,
	}
	transientCodes = map[string]bool{
		"ThrottlingException":  true,
		"Throttling":           true,
		"TooManyUpdates":       true,
		"RequestLimitExceeded": true,
		"InternalServerError":  true,
		"InternalFailure":      true,
		"InternalServiceError": true,
		"ServiceUnavailable":   true,
		"RequestTimeout":       true,
	}
)

// classify maps an AWS SDK error onto one of the paramstore error kinds
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return paramstore.ErrTransient
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		// No service response at all: DNS, connection reset, signing clock skew...
		return paramstore.ErrTransient
	}

	code := apiErr.ErrorCode()
	switch {
	case notFoundCodes[code]:
		return paramstore.ErrNotFound
	case accessDeniedCodes[code]:
		return paramstore.ErrAccessDenied
	case code == "ParameterAlreadyExists":
		return paramstore.ErrExists
	case transientCodes[code]:
		return paramstore.ErrTransient
	case apiErr.ErrorFault() == smithy.FaultServer:
		return paramstore.ErrTransient
	default:
		return paramstore.ErrInvalid
	}
}

// WrapError wraps an AWS SDK error as a *paramstore.Error with its kind
// classified from the service error code
func WrapError(op, name string, err error) error {
	return &paramstore.Error{
		Op:   op,
		Name: name,
		Kind: classify(err),
		Err:  err,
	}
}
