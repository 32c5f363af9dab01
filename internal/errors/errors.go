package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/systmms/ssmrotate/pkg/paramstore"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// ProviderError enhances AWS service errors with context
func ProviderError(service string, operation string, err error) error {
	return UserError{
		Message:    fmt.Sprintf("%s error during %s", service, operation),
		Suggestion: getProviderSuggestion(service, err),
		Details:    err.Error(),
		Err:        err,
	}
}

// getProviderSuggestion returns helpful suggestions based on service and error
func getProviderSuggestion(service string, err error) string {
	errStr := err.Error()

	if strings.Contains(errStr, "credentials") || strings.Contains(errStr, "ExpiredToken") {
		return "Configure AWS credentials: 'aws configure' or set AWS_PROFILE"
	}

	switch service {
	case "ssm":
		if strings.Contains(errStr, "AccessDenied") {
			return "Check IAM permissions: ssm:GetParameter, ssm:PutParameter and kms:Encrypt/kms:Decrypt for SecureString"
		}
		if strings.Contains(errStr, "ParameterNotFound") {
			return "Create the parameter before scheduling rotation: 'aws ssm put-parameter --name <name> --type SecureString --value <value>'"
		}

	case "secretsmanager":
		if strings.Contains(errStr, "AccessDenied") {
			return "Check IAM permissions: secretsmanager:DescribeSecret, GetSecretValue, PutSecretValue and UpdateSecretVersionStage"
		}
		if strings.Contains(errStr, "ResourceNotFoundException") {
			return "Verify the secret name and region. List secrets with: 'aws secretsmanager list-secrets'"
		}

	case "ec2":
		if strings.Contains(errStr, "UnauthorizedOperation") {
			return "Check IAM permissions: ec2:DescribeVpcEndpoints and ec2:DescribeNetworkInterfaces"
		}
		if strings.Contains(errStr, "InvalidVpcEndpointId") {
			return "Verify the VPC endpoint id and region. List endpoints with: 'aws ec2 describe-vpc-endpoints'"
		}

	case "sts":
		if strings.Contains(errStr, "AccessDenied") {
			return "The role trust policy must allow sts:AssumeRole for the calling identity"
		}
	}

	if strings.Contains(errStr, "Throttling") {
		return "AWS rate limit exceeded. Wait a moment and try again"
	}
	if strings.Contains(errStr, "timeout") {
		return "The operation timed out. Check your network connection and try again"
	}
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host") {
		return "Unable to connect. Check your network, region and endpoint configuration"
	}

	return ""
}

// IsRetryable checks if an error is retryable. Classified store errors are
// decided by their kind; anything else falls back to message patterns.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.Is(err, paramstore.ErrTransient):
		return true
	case errors.Is(err, paramstore.ErrNotFound),
		errors.Is(err, paramstore.ErrAccessDenied),
		errors.Is(err, paramstore.ErrExists),
		errors.Is(err, paramstore.ErrInvalid):
		return false
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"timeout",
		"temporary failure",
		"connection reset",
		"broken pipe",
		"rate limit",
		"throttling",
		"too many requests",
		"internalservererror",
		"serviceunavailable",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// SimplifyError simplifies complex error messages for users
func SimplifyError(err error) error {
	if err == nil {
		return nil
	}

	// Already a user-friendly error
	var userErr UserError
	if errors.As(err, &userErr) {
		return err
	}
	var configErr ConfigError
	if errors.As(err, &configErr) {
		return err
	}

	rootErr := err
	for {
		unwrapped := errors.Unwrap(rootErr)
		if unwrapped == nil {
			break
		}
		rootErr = unwrapped
	}

	errStr := rootErr.Error()

	if strings.Contains(errStr, "yaml:") {
		return ConfigError{
			Message:    "Invalid YAML format",
			Suggestion: "Check for indentation errors and missing quotes",
		}
	}

	if strings.Contains(errStr, "json:") {
		return ConfigError{
			Message:    "Invalid JSON format",
			Suggestion: "Validate your JSON at https://jsonlint.com/",
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return UserError{
			Message:    "Permission denied",
			Suggestion: "Check file permissions or run with appropriate privileges",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "no such file or directory") {
		return UserError{
			Message:    "File or directory not found",
			Suggestion: "Verify the path exists and is spelled correctly",
			Err:        err,
		}
	}

	return err
}
