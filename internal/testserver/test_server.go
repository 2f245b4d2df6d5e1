package testserver

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/estateline/activitylog/internal/domain/activity"
	"github.com/estateline/activitylog/internal/domain/estate"
	"github.com/estateline/activitylog/internal/repository"
	"github.com/estateline/activitylog/internal/server"
	"github.com/estateline/activitylog/internal/sqlite"
	"github.com/estateline/activitylog/internal/transport"
)

// TestServer is a fully wired API instance over an in-memory database.
type TestServer struct {
	Server *httptest.Server
	DB     *sqlite.DB
	Token  string
	UserID string

	Activity *activity.Service
	Estates  *estate.Service

	keys repository.APIKeyRepository
}

// New starts a test server seeded with one API key for the given user.
func New(t *testing.T, token, userID string) *TestServer {
	t.Helper()

	// Named per test so parallel tests get isolated databases.
	db, err := sqlite.NewMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	eventRepo := sqlite.NewEventRepository(db)
	estateRepo := sqlite.NewEstateRepository(db)
	keyRepo := sqlite.NewAPIKeyRepository(db)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	activitySvc := activity.NewService(eventRepo, estateRepo, activity.Limits{}, logger)
	estateSvc := estate.NewService(estateRepo, activitySvc, logger)

	handler, err := server.New(server.Config{
		Activity: activitySvc,
		Estates:  estateSvc,
		Auth:     transport.NewAPIKeyResolver(keyRepo),
		Logger:   logger,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(handler)

	ts := &TestServer{
		Server:   srv,
		DB:       db,
		Token:    token,
		UserID:   userID,
		Activity: activitySvc,
		Estates:  estateSvc,
		keys:     keyRepo,
	}

	require.NoError(t, ts.AddAPIKey(token, userID))

	t.Cleanup(func() {
		srv.Close()
		_ = db.Close()
	})

	return ts
}

// AddAPIKey registers a token for a user.
func (ts *TestServer) AddAPIKey(token, userID string) error {
	return ts.keys.Create(context.Background(), &repository.APIKey{
		ID:      uuid.NewString(),
		UserID:  userID,
		Name:    "test key",
		KeyHash: transport.HashToken(token),
	})
}

// URL returns the base URL of the running server.
func (ts *TestServer) URL() string {
	return ts.Server.URL
}
