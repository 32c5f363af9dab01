package rotation

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/systmms/ssmrotate/internal/secure"
)

// TimestampLayout is the textual encoding of generated timestamps:
// RFC 3339 in UTC with millisecond precision, e.g. 2024-01-01T00:05:00.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Generator kinds accepted by NewGenerator.
const (
	GeneratorTimestamp      = "timestamp"
	GeneratorRandom         = "random"
	GeneratorSecretsManager = "secretsmanager"
)

// DefaultSecretLength is used by the random generators when no length is set.
const DefaultSecretLength = 32

// Generator produces the next value of a rotated secret.
type Generator interface {
	Name() string
	Generate(ctx context.Context, now time.Time) (string, error)
}

// TimestampGenerator encodes the invocation time. It keeps the stored value
// observable (the value says when it was last rotated) but is not a secret.
type TimestampGenerator struct{}

// Name returns the generator kind
func (TimestampGenerator) Name() string { return GeneratorTimestamp }

// Generate formats now in UTC
func (TimestampGenerator) Generate(_ context.Context, now time.Time) (string, error) {
	return now.UTC().Format(TimestampLayout), nil
}

// RandomGenerator draws Length characters from Charset with crypto/rand.
type RandomGenerator struct {
	Length  int
	Charset string
}

// Name returns the generator kind
func (g RandomGenerator) Name() string { return GeneratorRandom }

// Generate returns a fresh random string
func (g RandomGenerator) Generate(_ context.Context, _ time.Time) (string, error) {
	length := g.Length
	if length == 0 {
		length = DefaultSecretLength
	}
	value, err := secure.RandomString(length, g.Charset)
	if err != nil {
		return "", fmt.Errorf("failed to generate random value: %w", err)
	}
	return value, nil
}

// PasswordAPI is the Secrets Manager call used by PasswordGenerator
type PasswordAPI interface {
	GetRandomPassword(ctx context.Context, params *secretsmanager.GetRandomPasswordInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetRandomPasswordOutput, error)
}

// PasswordGenerator asks Secrets Manager for a random password.
type PasswordGenerator struct {
	Client             PasswordAPI
	Length             int
	ExcludePunctuation bool
	ExcludeCharacters  string
}

// Name returns the generator kind
func (g PasswordGenerator) Name() string { return GeneratorSecretsManager }

// Generate calls GetRandomPassword
func (g PasswordGenerator) Generate(ctx context.Context, _ time.Time) (string, error) {
	length := g.Length
	if length == 0 {
		length = DefaultSecretLength
	}

	input := &secretsmanager.GetRandomPasswordInput{
		PasswordLength:     aws.Int64(int64(length)),
		ExcludePunctuation: aws.Bool(g.ExcludePunctuation),
	}
	if g.ExcludeCharacters != "" {
		input.ExcludeCharacters = aws.String(g.ExcludeCharacters)
	}

	out, err := g.Client.GetRandomPassword(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to get random password: %w", err)
	}
	return aws.ToString(out.RandomPassword), nil
}

// GeneratorConfig selects and parameterises a Generator.
type GeneratorConfig struct {
	Kind    string
	Length  int
	Charset string
	// ExcludePunctuation applies to the secretsmanager generator only
	ExcludePunctuation bool
}

// NewGenerator builds the generator named by cfg.Kind. client is only needed
// for the secretsmanager kind and may be nil otherwise.
func NewGenerator(cfg GeneratorConfig, client PasswordAPI) (Generator, error) {
	switch cfg.Kind {
	case "", GeneratorTimestamp:
		return TimestampGenerator{}, nil
	case GeneratorRandom:
		if err := checkLength(cfg.Length); err != nil {
			return nil, err
		}
		return RandomGenerator{Length: cfg.Length, Charset: cfg.Charset}, nil
	case GeneratorSecretsManager:
		if err := checkLength(cfg.Length); err != nil {
			return nil, err
		}
		if client == nil {
			return nil, fmt.Errorf("generator %q requires a Secrets Manager client", cfg.Kind)
		}
		return PasswordGenerator{Client: client, Length: cfg.Length, ExcludePunctuation: cfg.ExcludePunctuation}, nil
	default:
		return nil, fmt.Errorf("unknown generator %q (expected %s, %s or %s)",
			cfg.Kind, GeneratorTimestamp, GeneratorRandom, GeneratorSecretsManager)
	}
}

// checkLength accepts 0 (use DefaultSecretLength) up to secure.MaxLength
func checkLength(length int) error {
	if length < 0 || length > secure.MaxLength {
		return fmt.Errorf("invalid secret length %d (expected 0 to %d)", length, secure.MaxLength)
	}
	return nil
}
