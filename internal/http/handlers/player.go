package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hittalaget/hittalaget-backend/internal/http/response"
	"github.com/hittalaget/hittalaget-backend/internal/pkg/dbctx"
	"github.com/hittalaget/hittalaget-backend/internal/platform/apierr"
	"github.com/hittalaget/hittalaget-backend/internal/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(playerService services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: playerService}
}

func (ph *PlayerHandler) Create(c *gin.Context) {
	var req services.PlayerCreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	player, err := ph.playerService.CreateProfile(dbctx.Context{Ctx: c.Request.Context()}, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"player": player})
}

func (ph *PlayerHandler) Get(c *gin.Context) {
	profile, err := ph.playerService.GetProfile(dbctx.Context{Ctx: c.Request.Context()}, c.Param("sport"), c.Param("username"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, profile)
}

func (ph *PlayerHandler) ListAvailable(c *gin.Context) {
	players, err := ph.playerService.ListAvailable(dbctx.Context{Ctx: c.Request.Context()}, c.Param("sport"), listLimit(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"players": players})
}

func (ph *PlayerHandler) Update(c *gin.Context) {
	var req services.PlayerUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	player, err := ph.playerService.UpdateProfile(dbctx.Context{Ctx: c.Request.Context()}, c.Param("sport"), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"player": player})
}

func (ph *PlayerHandler) SetAvailability(c *gin.Context) {
	var req struct {
		IsAvailable bool `json:"is_available"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	if err := ph.playerService.SetAvailability(dbctx.Context{Ctx: c.Request.Context()}, c.Param("sport"), req.IsAvailable); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"is_available": req.IsAvailable})
}

func (ph *PlayerHandler) Delete(c *gin.Context) {
	if err := ph.playerService.DeleteProfile(dbctx.Context{Ctx: c.Request.Context()}, c.Param("sport")); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

func (ph *PlayerHandler) AddHistory(c *gin.Context) {
	var req services.PlayerHistoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	entry, err := ph.playerService.AddHistory(dbctx.Context{Ctx: c.Request.Context()}, c.Param("sport"), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"history": entry})
}

func (ph *PlayerHandler) UpdateHistory(c *gin.Context) {
	historyID, err := uuid.Parse(c.Param("history_id"))
	if err != nil {
		response.RespondError(c, apierr.Validation("invalid history id"))
		return
	}
	var req services.PlayerHistoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	entry, err := ph.playerService.UpdateHistory(dbctx.Context{Ctx: c.Request.Context()}, c.Param("sport"), historyID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"history": entry})
}

func (ph *PlayerHandler) DeleteHistory(c *gin.Context) {
	historyID, err := uuid.Parse(c.Param("history_id"))
	if err != nil {
		response.RespondError(c, apierr.Validation("invalid history id"))
		return
	}
	if err := ph.playerService.DeleteHistory(dbctx.Context{Ctx: c.Request.Context()}, c.Param("sport"), historyID); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}
