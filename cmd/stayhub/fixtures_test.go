package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/app/services/auth"
	"stayhub/internal/app/uow"
	"stayhub/internal/infra/config"
)

func testConfig() config.Config {
	return config.Config{
		Env:                "test",
		Storage:            config.StorageMemory,
		Broker:             config.BrokerNone,
		Lock:               config.LockMemory,
		Payments:           config.PaymentsMemory,
		Currency:           "USD",
		BookingWindowDays:  365,
		CheckoutWindowDays: 372,
	}
}

func TestLoadFixturesSeedsUsersAndListings(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := buildApplication(context.Background(), testConfig(), logger)
	require.NoError(t, err)
	app.hasher.Cost = 4

	path := filepath.Join("..", "..", "data", "fixtures.json")
	require.NoError(t, app.loadFixtures(context.Background(), path, logger))
	// second load skips existing records
	require.NoError(t, app.loadFixtures(context.Background(), path, logger))

	unit, err := app.factory.Begin(context.Background(), uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	defer func() { _ = unit.Rollback(context.Background()) }()

	host, err := unit.Users().ByID(context.Background(), "host-1")
	require.NoError(t, err)
	assert.True(t, host.HasWallet())
	assert.ElementsMatch(t, []string{"listing-toronto-1", "listing-vancouver-1"}, host.Listings)

	listing, err := unit.Listings().ByID(context.Background(), "listing-toronto-1")
	require.NoError(t, err)
	assert.Equal(t, "Toronto", listing.Location.City)
	assert.Equal(t, "Canada", listing.Location.Country)

	svc := &auth.Service{UoW: app.factory, Tokens: app.hasher}
	viewer, err := svc.ResolveCaller(context.Background(), "tenant-1", "tenant-1-dev-token")
	require.NoError(t, err)
	require.NotNil(t, viewer)
}

func TestLoadFixturesMissingFileIsSkipped(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := buildApplication(context.Background(), testConfig(), logger)
	require.NoError(t, err)
	assert.NoError(t, app.loadFixtures(context.Background(), filepath.Join(t.TempDir(), "none.json"), logger))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	assert.Error(t, app.loadFixtures(context.Background(), bad, logger))
}
