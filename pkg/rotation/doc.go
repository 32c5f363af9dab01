// Package rotation replaces stored secrets with freshly generated values.
//
// ParameterHandler rotates a single SSM parameter when a scheduled event
// fires: it reads the parameter to confirm it exists, generates a new value
// and overwrites it. SecretHandler implements the four step Secrets Manager
// rotation protocol (createSecret, setSecret, testSecret, finishSecret).
// Scheduler drives any Rotator on a fixed interval for local runs.
//
// Handlers never retry. A failed invocation returns the store error wrapped
// so that errors.Is matches the paramstore sentinel errors.
package rotation
