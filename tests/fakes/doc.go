// Package fakes provides test doubles for the AWS SDK clients used by ssmrotate.
//
// Each fake implements the narrow client interface declared next to its
// consumer (providers.SSMClientAPI, providers.SecretsManagerClientAPI,
// providers.EC2ClientAPI, providers.STSClientAPI) and returns the same typed
// errors as the real service, so error classification is exercised by unit
// tests. Fakes are manually implemented (not generated) to provide precise
// control over test behavior.
//
// Usage:
//
//	client := fakes.NewFakeSSMClient()
//	client.AddSecureStringParameter("/app/secret", "2024-01-01T00:00:00.000Z")
//	client.DenyWrite("/app/locked")
//	store, _ := providers.NewSSMStore(ctx, "ssm", providers.SSMConfig{}, providers.WithSSMClient(client))
package fakes
