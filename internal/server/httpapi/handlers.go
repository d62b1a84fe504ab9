package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/evetools/mumble-sync/internal/common"
	"github.com/evetools/mumble-sync/internal/server/models"
)

// fail maps a service error to a status code with an opaque body. The
// underlying cause never reaches the caller; it was already logged where it
// happened.
func (s *Server) fail(ctx context.Context, c *app.RequestContext, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid input"})
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		s.logger.Error(ctx, "request failed",
			"request_id", c.GetString("request_id"), "path", string(c.Path()), "error", err.Error())
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (s *Server) badRequest(ctx context.Context, c *app.RequestContext, err error) {
	s.logger.Warn(ctx, "rejecting request",
		"request_id", c.GetString("request_id"), "path", string(c.Path()), "error", err.Error())
	c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid input"})
}

func characterIDParam(c *app.RequestContext) (int64, error) {
	return strconv.ParseInt(c.Param("characterId"), 10, 64)
}

func (s *Server) queryAccounts(ctx context.Context, c *app.RequestContext) {
	var req queryAccountsRequest
	if err := c.BindAndValidate(&req); err != nil {
		s.badRequest(ctx, c, err)
		return
	}

	characters := make([]models.Character, len(req.Characters))
	for i, p := range req.Characters {
		characters[i] = p.toModel()
	}

	records, err := s.accounts.GetAccounts(ctx, characters)
	if err != nil {
		s.fail(ctx, c, err)
		return
	}

	resp := accountListResponse{Accounts: make([]accountPayload, len(records))}
	for i, r := range records {
		resp.Accounts[i] = toAccountPayload(r)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) register(ctx context.Context, c *app.RequestContext) {
	var req registerRequest
	if err := c.BindAndValidate(&req); err != nil {
		s.badRequest(ctx, c, err)
		return
	}

	record, err := s.accounts.Register(ctx, req.Character.toModel(), toGroups(req.Groups), req.EmailAddress, req.AllCharacterIDs)
	if err != nil {
		s.fail(ctx, c, err)
		return
	}

	c.JSON(http.StatusCreated, toAccountPayload(*record))
}

func (s *Server) updateAccount(ctx context.Context, c *app.RequestContext) {
	characterID, err := characterIDParam(c)
	if err != nil {
		s.badRequest(ctx, c, err)
		return
	}

	var req updateAccountRequest
	if err := c.BindAndValidate(&req); err != nil {
		s.badRequest(ctx, c, err)
		return
	}
	if req.Character.CharacterID != characterID {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid input"})
		return
	}

	var mainCharacter *models.Character
	if req.MainCharacter != nil {
		m := req.MainCharacter.toModel()
		mainCharacter = &m
	}

	if err := s.accounts.UpdateAccount(ctx, req.Character.toModel(), toGroups(req.Groups), mainCharacter); err != nil {
		s.fail(ctx, c, err)
		return
	}
	c.SetStatusCode(http.StatusNoContent)
}

func (s *Server) resetPassword(ctx context.Context, c *app.RequestContext) {
	characterID, err := characterIDParam(c)
	if err != nil {
		s.badRequest(ctx, c, err)
		return
	}

	password, err := s.accounts.ResetPassword(ctx, characterID)
	if err != nil {
		s.fail(ctx, c, err)
		return
	}
	c.JSON(http.StatusOK, passwordResponse{Password: password})
}

func (s *Server) allAccounts(ctx context.Context, c *app.RequestContext) {
	ids, err := s.accounts.GetAllAccounts(ctx)
	if err != nil {
		s.fail(ctx, c, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	c.JSON(http.StatusOK, characterIDsResponse{CharacterIDs: ids})
}

func (s *Server) moveAccount(ctx context.Context, c *app.RequestContext) {
	var req moveRequest
	if err := c.BindAndValidate(&req); err != nil {
		s.badRequest(ctx, c, err)
		return
	}
	moved := s.accounts.MoveServiceAccount(ctx, req.ToPlayerID, req.FromPlayerID)
	c.JSON(http.StatusOK, moveResponse{Moved: moved})
}

func (s *Server) updatePlayerAccount(ctx context.Context, c *app.RequestContext) {
	var req updateAccountRequest
	if err := c.BindAndValidate(&req); err != nil {
		s.badRequest(ctx, c, err)
		return
	}
	if err := s.accounts.UpdatePlayerAccount(ctx, req.Character.toModel(), toGroups(req.Groups)); err != nil {
		if errors.Is(err, common.ErrUnsupported) {
			c.JSON(http.StatusNotImplemented, errorResponse{Error: "not supported"})
			return
		}
		s.fail(ctx, c, err)
		return
	}
	c.SetStatusCode(http.StatusNoContent)
}

func (s *Server) playerAccounts(ctx context.Context, c *app.RequestContext) {
	ids := s.accounts.GetAllPlayerAccounts(ctx)
	if ids == nil {
		ids = []int64{}
	}
	c.JSON(http.StatusOK, characterIDsResponse{CharacterIDs: ids})
}

func (s *Server) search(ctx context.Context, c *app.RequestContext) {
	records := s.accounts.Search(ctx, c.Query("q"))
	resp := accountListResponse{Accounts: make([]accountPayload, len(records))}
	for i, r := range records {
		resp.Accounts[i] = toAccountPayload(r)
	}
	c.JSON(http.StatusOK, resp)
}
