package config

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockParameterGetter struct {
	mock.Mock
}

func (m *mockParameterGetter) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*ssm.GetParameterOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestResolveSecrets_FetchesDecryptedParameter(t *testing.T) {
	getter := &mockParameterGetter{}
	getter.On("GetParameter", mock.Anything, mock.MatchedBy(func(in *ssm.GetParameterInput) bool {
		return aws.ToString(in.Name) == "/crypto-watcher/coingecko" && aws.ToBool(in.WithDecryption)
	})).Return(&ssm.GetParameterOutput{
		Parameter: &types.Parameter{Value: aws.String("secret-key")},
	}, nil)

	cfg := GetDefaultConfig()
	cfg.Upstream.APIKeySSMParameter = "/crypto-watcher/coingecko"
	require.True(t, NeedsSecretResolution(cfg))

	require.NoError(t, ResolveSecrets(context.Background(), cfg, getter))
	assert.Equal(t, "secret-key", cfg.Upstream.APIKey)
	getter.AssertExpectations(t)
}

func TestResolveSecrets_SkipsWhenKeyPresent(t *testing.T) {
	getter := &mockParameterGetter{}

	cfg := GetDefaultConfig()
	cfg.Upstream.APIKey = "from-env"
	cfg.Upstream.APIKeySSMParameter = "/crypto-watcher/coingecko"

	require.NoError(t, ResolveSecrets(context.Background(), cfg, getter))
	assert.Equal(t, "from-env", cfg.Upstream.APIKey)
	getter.AssertNotCalled(t, "GetParameter", mock.Anything, mock.Anything)
}

func TestResolveSecrets_Errors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		getter := &mockParameterGetter{}
		getter.On("GetParameter", mock.Anything, mock.AnythingOfType("*ssm.GetParameterInput")).Return(nil, errors.New("access denied"))

		cfg := GetDefaultConfig()
		cfg.Upstream.APIKeySSMParameter = "p"

		err := ResolveSecrets(context.Background(), cfg, getter)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access denied")
		assert.Empty(t, cfg.Upstream.APIKey)
	})

	t.Run("empty value", func(t *testing.T) {
		getter := &mockParameterGetter{}
		getter.On("GetParameter", mock.Anything, mock.AnythingOfType("*ssm.GetParameterInput")).Return(&ssm.GetParameterOutput{
			Parameter: &types.Parameter{},
		}, nil)

		cfg := GetDefaultConfig()
		cfg.Upstream.APIKeySSMParameter = "p"

		err := ResolveSecrets(context.Background(), cfg, getter)
		assert.ErrorIs(t, err, ErrEmptyParameter)
	})
}
