package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/chatapi/internal/logger"
	"github.com/nkiryanov/chatapi/internal/repository/postgres"
	"github.com/nkiryanov/chatapi/internal/service/auth"
	"github.com/nkiryanov/chatapi/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/chatapi/internal/service/message"
	"github.com/nkiryanov/chatapi/internal/service/user"
	"github.com/nkiryanov/chatapi/internal/testutil"
)

type services struct {
	Auth    *auth.AuthService
	User    *user.UserService
	Message *message.MessageService
}

// Create db transaction and run server with that connection (one connection cause one transaction)
// The created transaction passed to inner function: so, you can safely use testutil.WithTx with it
func serveWithTx(dbpool *pgxpool.Pool, t *testing.T, fn func(tx pgx.Tx, srvURL string, s services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)

		tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret"})
		require.NoError(t, err, "token manager should be created without errors")

		as, err := auth.NewService(auth.DefaultHasher, tokenManager, storage.User())
		require.NoError(t, err, "auth service starting error", err)

		s := services{
			Auth:    as,
			User:    user.NewService(auth.DefaultHasher, storage.User()),
			Message: message.NewService(storage.Message()),
		}

		router, err := NewRouter(s.User, s.Message, s.Auth, logger.NewNoOpLogger(),
			WithMetrics(prometheus.NewRegistry()),
		)
		require.NoError(t, err)

		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, srv.URL, s)
	})
}
