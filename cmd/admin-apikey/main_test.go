package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/config"
	"github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/entities"
)

type runtimeStub struct {
	gotInput *entities.CreateApiKeyInput
	resp     *entities.CreateApiKeyResponse
	err      error
}

func (s *runtimeStub) CreateApiKey(_ context.Context, input *entities.CreateApiKeyInput) (*entities.CreateApiKeyResponse, error) {
	s.gotInput = input
	return s.resp, s.err
}

func stubDeps(runtime adminAPIKeyRuntime, out io.Writer) adminAPIKeyDeps {
	return adminAPIKeyDeps{
		loadEnv: func() error { return nil },
		loadCfg: func() *config.Config { return &config.Config{} },
		prepare: func(*config.Config) (adminAPIKeyRuntime, io.Closer, error) {
			return runtime, nopCloser{}, nil
		},
		now: func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) },
		out: out,
	}
}

func TestRunAdminAPIKey_CreatesKey(t *testing.T) {
	id := uuid.New()
	stub := &runtimeStub{resp: &entities.CreateApiKeyResponse{
		ID:          id,
		CompanyName: "AgriCo",
		ApiKey:      "ps_live_raw-secret",
		QuotaPerDay: 100,
	}}

	out := &bytes.Buffer{}
	err := runAdminAPIKey([]string{"--company", "AgriCo", "--quota", "100"}, stubDeps(stub, out))
	require.NoError(t, err)

	require.NotNil(t, stub.gotInput)
	assert.Equal(t, "AgriCo", stub.gotInput.CompanyName)
	assert.Equal(t, 100, stub.gotInput.QuotaPerDay)
	assert.Nil(t, stub.gotInput.ExpiresAt)

	assert.Contains(t, out.String(), "API_KEY=ps_live_raw-secret")
	assert.Contains(t, out.String(), id.String())
}

func TestRunAdminAPIKey_ExpiryFormats(t *testing.T) {
	tests := []struct {
		name    string
		expires string
		want    string
	}{
		{"duration", "720h", "2026-10-01T12:00:00Z"},
		{"date", "2026-12-31", "2026-12-31T00:00:00Z"},
		{"rfc3339", "2027-01-15T08:30:00Z", "2027-01-15T08:30:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &runtimeStub{resp: &entities.CreateApiKeyResponse{ID: uuid.New(), ApiKey: "x"}}
			err := runAdminAPIKey([]string{"--company", "AgriCo", "--expires", tt.expires}, stubDeps(stub, &bytes.Buffer{}))
			require.NoError(t, err)
			require.NotNil(t, stub.gotInput.ExpiresAt)
			assert.Equal(t, tt.want, stub.gotInput.ExpiresAt.Format(time.RFC3339))
		})
	}
}

func TestRunAdminAPIKey_MissingCompany(t *testing.T) {
	err := runAdminAPIKey(nil, stubDeps(&runtimeStub{}, &bytes.Buffer{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--company is required")
}

func TestRunAdminAPIKey_InvalidExpiry(t *testing.T) {
	err := runAdminAPIKey([]string{"--company", "AgriCo", "--expires", "soon"}, stubDeps(&runtimeStub{}, &bytes.Buffer{}))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "--expires"))
}

func TestRunAdminAPIKey_PrepareError(t *testing.T) {
	deps := stubDeps(nil, &bytes.Buffer{})
	deps.prepare = func(*config.Config) (adminAPIKeyRuntime, io.Closer, error) {
		return nil, nil, errors.New("db unreachable")
	}

	err := runAdminAPIKey([]string{"--company", "AgriCo"}, deps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db unreachable")
}

func TestRunAdminAPIKey_CreateError(t *testing.T) {
	stub := &runtimeStub{err: errors.New("boom")}
	err := runAdminAPIKey([]string{"--company", "AgriCo"}, stubDeps(stub, &bytes.Buffer{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed creating api key")
}
