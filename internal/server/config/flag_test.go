package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:9090", "-d", "db", "-m", "4", "-s", "secret", "-t", "30",
				"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
				"-x", "5", "-l", "debug", "-o", "https://a.example, ,https://b.example",
			},
			expected: &Config{
				EndpointAddrHTTP:   "127.0.0.1:9090",
				DatabaseDSN:        "db",
				DBMaxOpenConns:     4,
				SecretKey:          "secret",
				RequestTimeout:     30 * time.Second,
				S3RootUser:         "user",
				S3RootPassword:     "password",
				S3Bucket:           "bucket",
				S3Region:           "us-west-1",
				S3BaseEndpoint:     "http://endpoint",
				PresignExpiry:      5 * time.Minute,
				LogLevel:           "debug",
				CORSAllowedOrigins: []string{"https://a.example", "https://b.example"},
			},
		},
		{
			name:     "foreign flags ignored",
			args:     []string{"-c", "conf.json", "-a", ":1", "-z", "q"},
			expected: &Config{EndpointAddrHTTP: ":1"},
		},
		{
			name:    "non-numeric timeout",
			args:    []string{"-t", "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}
			err := parseFlags(config, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

func TestParseFlags_UnsetDurationsKeepSubUnitValues(t *testing.T) {
	config := &Config{RequestTimeout: 1500 * time.Millisecond, PresignExpiry: 90 * time.Second}

	require.NoError(t, parseFlags(config, []string{"-a", ":1"}))

	assert.Equal(t, 1500*time.Millisecond, config.RequestTimeout)
	assert.Equal(t, 90*time.Second, config.PresignExpiry)
}
