package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/hittalaget/hittalaget-backend/internal/http/response"
	"github.com/hittalaget/hittalaget-backend/internal/pkg/dbctx"
	"github.com/hittalaget/hittalaget-backend/internal/platform/apierr"
	"github.com/hittalaget/hittalaget-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

func (uh *UserHandler) GetByUsername(c *gin.Context) {
	user, err := uh.userService.GetByUsername(dbctx.Context{Ctx: c.Request.Context()}, c.Param("username"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

func (uh *UserHandler) UpdateMe(c *gin.Context) {
	var req services.UserUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	me, err := uh.userService.UpdateMe(dbctx.Context{Ctx: c.Request.Context()}, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

func (uh *UserHandler) DeleteMe(c *gin.Context) {
	if err := uh.userService.DeleteMe(dbctx.Context{Ctx: c.Request.Context()}); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}
