package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/AutoTrade/internal/config"
)

func TestNewSource(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantName string
		wantErr  error
	}{
		{name: "default is yahoo", cfg: config.Config{}, wantName: "yahoo"},
		{name: "yahoo", cfg: config.Config{DataProvider: "yahoo"}, wantName: "yahoo"},
		{name: "twelvedata", cfg: config.Config{DataProvider: "twelvedata", TwelveAPIKey: "k"}, wantName: "twelvedata"},
		{name: "unknown", cfg: config.Config{DataProvider: "bloomberg"}, wantErr: ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSource(&tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, src.Name())
		})
	}
}

func TestNewSourceTwelveDataNeedsKey(t *testing.T) {
	_, err := NewSource(&config.Config{DataProvider: "twelvedata"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TWELVE_API_KEY")
}
