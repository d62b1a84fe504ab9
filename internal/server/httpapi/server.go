// Package httpapi exposes the account synchronization operations to the
// identity platform over HTTP. The layer is deliberately thin: it binds
// payloads, delegates to the service and maps errors to status codes
// without leaking internal detail to the caller.
package httpapi

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/google/uuid"

	"github.com/evetools/mumble-sync/internal/logging"
	"github.com/evetools/mumble-sync/internal/server/models"
)

// AccountOperations is the service surface the facade depends on.
type AccountOperations interface {
	GetAccounts(ctx context.Context, characters []models.Character) ([]models.AccountRecord, error)
	Register(ctx context.Context, character models.Character, groups []models.Group, emailAddress string, allCharacterIDs []int64) (*models.AccountRecord, error)
	UpdateAccount(ctx context.Context, character models.Character, groups []models.Group, mainCharacter *models.Character) error
	ResetPassword(ctx context.Context, characterID int64) (string, error)
	GetAllAccounts(ctx context.Context) ([]int64, error)
	UpdatePlayerAccount(ctx context.Context, mainCharacter models.Character, groups []models.Group) error
	MoveServiceAccount(ctx context.Context, toPlayerID, fromPlayerID int64) bool
	GetAllPlayerAccounts(ctx context.Context) []int64
	Search(ctx context.Context, query string) []models.AccountRecord
}

// Server is the HTTP facade over an AccountOperations implementation.
type Server struct {
	accounts AccountOperations
	logger   logging.Logger
	hertz    *server.Hertz
}

// NewServer builds the hertz engine and registers all routes. The listener
// is not opened until Run.
func NewServer(addr string, accounts AccountOperations, logger logging.Logger) *Server {
	s := &Server{
		accounts: accounts,
		logger:   logger.With("module", "httpapi"),
		hertz:    server.New(server.WithHostPorts(addr)),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.hertz.Use(s.requestID)

	v1 := s.hertz.Group("/v1")
	v1.POST("/accounts/query", s.queryAccounts)
	v1.POST("/accounts", s.register)
	v1.GET("/accounts", s.allAccounts)
	v1.PUT("/accounts/:characterId", s.updateAccount)
	v1.POST("/accounts/:characterId/password-reset", s.resetPassword)
	v1.POST("/accounts/move", s.moveAccount)
	v1.PUT("/players/:playerId", s.updatePlayerAccount)
	v1.GET("/players/:playerId/accounts", s.playerAccounts)
	v1.GET("/search", s.search)
}

// requestID tags every request with a correlation id carried in logs and
// echoed back to the caller.
func (s *Server) requestID(ctx context.Context, c *app.RequestContext) {
	id := uuid.NewString()
	c.Set("request_id", id)
	c.Header("X-Request-Id", id)
	c.Next(ctx)
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	return s.hertz.Run()
}

// Shutdown drains in-flight requests and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.hertz.Shutdown(ctx)
}
