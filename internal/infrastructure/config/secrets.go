package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ErrEmptyParameter is returned when an SSM parameter exists but holds no value
var ErrEmptyParameter = errors.New("ssm parameter has no value")

// ParameterGetter is the slice of the SSM API used to resolve secrets
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

const ssmLookupTimeout = 5 * time.Second

// NewSSMClient builds an SSM client from the default AWS credential chain
func NewSSMClient(ctx context.Context) (*ssm.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return ssm.NewFromConfig(cfg), nil
}

// ResolveSecrets fills upstream.api_key from SSM when a parameter name is configured.
// An api key already present in config or env is kept as is.
func ResolveSecrets(ctx context.Context, cfg *Config, getter ParameterGetter) error {
	if cfg.Upstream.APIKey != "" || cfg.Upstream.APIKeySSMParameter == "" {
		return nil
	}

	value, err := getParameterStoreValue(ctx, getter, cfg.Upstream.APIKeySSMParameter, true)
	if err != nil {
		return fmt.Errorf("failed to resolve upstream api key: %w", err)
	}

	cfg.Upstream.APIKey = value
	return nil
}

// NeedsSecretResolution reports whether ResolveSecrets would call SSM
func NeedsSecretResolution(cfg *Config) bool {
	return cfg.Upstream.APIKey == "" && cfg.Upstream.APIKeySSMParameter != ""
}

func getParameterStoreValue(ctx context.Context, getter ParameterGetter, parameterName string, decrypt bool) (string, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, ssmLookupTimeout)
	defer cancel()

	input := &ssm.GetParameterInput{
		Name:           &parameterName,
		WithDecryption: &decrypt,
	}

	result, err := getter.GetParameter(ctxWithTimeout, input)
	if err != nil {
		return "", fmt.Errorf("ssm get parameter %s: %w", parameterName, err)
	}

	if result.Parameter == nil || result.Parameter.Value == nil || *result.Parameter.Value == "" {
		return "", fmt.Errorf("ssm get parameter %s: %w", parameterName, ErrEmptyParameter)
	}

	return *result.Parameter.Value, nil
}
