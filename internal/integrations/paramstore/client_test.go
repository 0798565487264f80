package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

type fakeSSM struct {
	out *ssm.GetParameterOutput
	err error
	in  *ssm.GetParameterInput
}

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestGetParameter(t *testing.T) {
	fake := &fakeSSM{out: &ssm.GetParameterOutput{
		Parameter: &types.Parameter{Value: aws.String("gpt-4o-mini")},
	}}
	c, err := New(fake)
	require.NoError(t, err)

	value, err := c.GetParameter(context.Background(), " /welcome-keys/config/openai_model ")
	require.NoError(t, err)
	require.Equal(t, "gpt-4o-mini", value)

	require.Equal(t, "/welcome-keys/config/openai_model", *fake.in.Name)
	require.True(t, *fake.in.WithDecryption)
}

func TestGetParameter_EmptyName(t *testing.T) {
	c, err := New(&fakeSSM{})
	require.NoError(t, err)

	_, err = c.GetParameter(context.Background(), "  ")
	require.Error(t, err)
}

func TestGetParameter_APIError(t *testing.T) {
	c, err := New(&fakeSSM{err: errors.New("access denied")})
	require.NoError(t, err)

	_, err = c.GetParameter(context.Background(), "/welcome-keys/open-ai-token")
	require.ErrorContains(t, err, "access denied")
}

func TestGetParameter_MissingValue(t *testing.T) {
	cases := []*ssm.GetParameterOutput{
		nil,
		{},
		{Parameter: &types.Parameter{}},
	}
	for _, out := range cases {
		c, err := New(&fakeSSM{out: out})
		require.NoError(t, err)

		_, err = c.GetParameter(context.Background(), "/welcome-keys/open-ai-token")
		require.ErrorContains(t, err, "missing value")
	}
}
