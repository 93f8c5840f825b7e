package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"Profile-en.pdf", "assets/Profile-en.pdf", false},
		{"logos/aws.png", "assets/logos/aws.png", false},
		{"", "", true},
		{"/etc/passwd", "", true},
		{"../secret", "", true},
		{"logos/../../secret", "", true},
		{"logos//aws.png", "", true},
		{`logos\aws.png`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Key(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalAssetsRoundTrip(t *testing.T) {
	local, err := NewLocal(t.TempDir(), "/files/")
	require.NoError(t, err)
	assets := NewAssets(local, time.Minute)
	ctx := context.Background()

	_, err = assets.URL(ctx, "Profile-en.pdf")
	require.Error(t, err)

	require.NoError(t, assets.Put(ctx, "Profile-en.pdf", strings.NewReader("%PDF-1.4")))

	u, err := assets.URL(ctx, "Profile-en.pdf")
	require.NoError(t, err)
	assert.Equal(t, "/files/assets/Profile-en.pdf", u)

	srv := httptest.NewServer(local.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + u)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(body))

	require.NoError(t, assets.Ping(ctx))
}
