package handlers

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nkiryanov/chatapi/internal/handlers/middleware"
	"github.com/nkiryanov/chatapi/internal/logger"
	"github.com/nkiryanov/chatapi/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

type routerOptions struct {
	messageLog logger.Logger
	registry   *prometheus.Registry
}

type Option func(*routerOptions)

// Log message requests to separate sink. By default the router logger is used
func WithMessageLog(l logger.Logger) Option {
	return func(o *routerOptions) {
		o.messageLog = l
	}
}

// Collect http metrics to the registry and expose them on GET /metrics
func WithMetrics(reg *prometheus.Registry) Option {
	return func(o *routerOptions) {
		o.registry = reg
	}
}

func NewRouter(
	userService userService,
	messageService messageService,
	authService authService,
	l logger.Logger,
	opts ...Option,
) (http.Handler, error) {
	o := routerOptions{messageLog: l.With("component", "messages")}
	for _, opt := range opts {
		opt(&o)
	}

	withMetrics := func(h http.Handler) http.Handler { return h }
	if o.registry != nil {
		metrics, err := middleware.NewMetrics(o.registry)
		if err != nil {
			return nil, err
		}
		withMetrics = metrics.Middleware
	}

	withAuth := middleware.AuthMiddleware(authService)

	mux := http.NewServeMux()
	handle := func(pattern string, h http.Handler) {
		mux.Handle(pattern, withMetrics(h))
	}

	handle("GET /api/users", handleListUsers(userService, l))
	handle("GET /api/users/{id}", handleGetUser(userService, l))
	handle("POST /api/users", handleCreateUser(userService, l))
	handle("POST /api/users/login", handleLogin(authService, l))
	handle("GET /api/users/me", withAuth(handleUserMe()))

	handle("GET /api/messages/{username}", handleListMessages(messageService, o.messageLog))
	handle("POST /api/messages", handleSendMessage(messageService, o.messageLog))

	if o.registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{}))
	}

	handler := chain(mux,
		middleware.RequestID,
		middleware.LoggerMiddleware(l),
	)

	return handler, nil
}

type userService interface {
	// Has to return apperrors.ErrUserAlreadyExists if user already exists
	CreateUser(ctx context.Context, username string, password string) (models.User, error)

	// Has to return apperrors.ErrUserNotFound if user not found
	GetUserByID(ctx context.Context, userID int64) (models.User, error)

	ListUsers(ctx context.Context) ([]models.User, error)
}

type messageService interface {
	Send(ctx context.Context, authorID int64, recipientID int64, body string) (models.Message, error)
	ListForRecipient(ctx context.Context, username string) ([]models.Message, error)
}

type authService interface {
	// Has to return apperrors.ErrInvalidCredentials if user not found or password is wrong
	Login(ctx context.Context, username string, password string) (models.IssuedToken, error)

	// Set access token to response
	SetToken(w http.ResponseWriter, token models.IssuedToken)

	// Get request and return user if it authenticated or error
	Auth(ctx context.Context, r *http.Request) (models.User, error)
}
