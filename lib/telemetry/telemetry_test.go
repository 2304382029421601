package telemetry

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupFromEnvWithoutConfig(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	tel, err := SetupFromEnv(context.Background(), "test:telemetry")
	require.NoError(t, err)
	require.False(t, tel.Enabled())
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestSetupWithoutEndpoints(t *testing.T) {
	tel, err := Setup(context.Background(), "test:telemetry", Config{})
	require.NoError(t, err)
	require.False(t, tel.Enabled())
}

func TestOtlpProtocol(t *testing.T) {
	testCases := []struct {
		config   OtlpConnConfig
		protocol string
		endpoint string
		ok       bool
	}{
		{config: OtlpConnConfig{}},
		{
			config:   OtlpConnConfig{HttpEndpoint: "http://localhost:4318"},
			protocol: "http",
			endpoint: "http://localhost:4318",
			ok:       true,
		},
		{
			config: OtlpConnConfig{
				GrpcEndpoint: "http://localhost:4317",
				HttpEndpoint: "http://localhost:4318",
			},
			protocol: "grpc",
			endpoint: "http://localhost:4317",
			ok:       true,
		},
	}

	for _, test := range testCases {
		protocol, endpoint, ok := test.config.protocol()
		require.Equal(t, test.protocol, protocol)
		require.Equal(t, test.endpoint, endpoint)
		require.Equal(t, test.ok, ok)
	}
}
