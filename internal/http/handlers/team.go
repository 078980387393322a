package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hittalaget/hittalaget-backend/internal/http/response"
	"github.com/hittalaget/hittalaget-backend/internal/pkg/dbctx"
	"github.com/hittalaget/hittalaget-backend/internal/platform/apierr"
	"github.com/hittalaget/hittalaget-backend/internal/services"
)

type TeamHandler struct {
	teamService services.TeamService
}

func NewTeamHandler(teamService services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

func listLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 200 {
		return 50
	}
	return limit
}

func (th *TeamHandler) Create(c *gin.Context) {
	var req services.TeamCreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	team, err := th.teamService.Create(dbctx.Context{Ctx: c.Request.Context()}, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"team": team})
}

func (th *TeamHandler) Get(c *gin.Context) {
	teamID, err := strconv.Atoi(c.Param("team_id"))
	if err != nil {
		response.RespondError(c, apierr.Validation("team id must be numeric"))
		return
	}
	team, err := th.teamService.GetByPublicID(dbctx.Context{Ctx: c.Request.Context()}, c.Param("sport"), teamID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"team": team})
}

func (th *TeamHandler) List(c *gin.Context) {
	teams, err := th.teamService.ListBySport(dbctx.Context{Ctx: c.Request.Context()}, c.Param("sport"), listLimit(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"teams": teams})
}

func (th *TeamHandler) GetMine(c *gin.Context) {
	team, err := th.teamService.GetMine(dbctx.Context{Ctx: c.Request.Context()}, c.Param("sport"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"team": team})
}

func (th *TeamHandler) UpdateMine(c *gin.Context) {
	var req services.TeamUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	team, err := th.teamService.UpdateMine(dbctx.Context{Ctx: c.Request.Context()}, c.Param("sport"), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"team": team})
}

func (th *TeamHandler) DeleteMine(c *gin.Context) {
	if err := th.teamService.DeleteMine(dbctx.Context{Ctx: c.Request.Context()}, c.Param("sport")); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}
