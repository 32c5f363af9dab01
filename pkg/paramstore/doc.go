// Package paramstore defines the key/value parameter store that rotation
// handlers read from and write to.
//
// A parameter store holds named string values (AWS Systems Manager Parameter
// Store is the production implementation in internal/providers).
//
//	┌───────────────────────┐      ┌───────────────────────┐
//	│ ParameterHandler      │─────▶│   paramstore.Store    │
//	│ (scheduled invocation)│      │  Get / Put(overwrite) │
//	└───────────────────────┘      └───────────┬───────────┘
//	                                           │
//	                               ┌───────────▼───────────┐
//	                               │ providers.SSMStore    │
//	                               │ (aws-sdk-go-v2/ssm)   │
//	                               └───────────────────────┘
//
// # Error taxonomy
//
// Every failure returned by a Store is a *Error whose chain contains exactly
// one of the sentinel kinds:
//
//   - ErrNotFound: the named parameter does not exist
//   - ErrAccessDenied: the calling identity lacks permission
//   - ErrTransient: the service failed or throttled; the caller may retry later
//
// Writes without overwrite may also fail with ErrExists, and requests the
// service rejects as malformed fail with ErrInvalid.
//
// Callers test the kind with errors.Is:
//
//	if _, err := store.Get(ctx, name); errors.Is(err, paramstore.ErrNotFound) {
//	    // the parameter must be created out of band first
//	}
//
// The store never retries on its own. Retrying is the job of whatever invoked
// the caller (the Lambda runtime, EventBridge, a CLI user).
package paramstore
