package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hittalaget/hittalaget-backend/internal/http/response"
	"github.com/hittalaget/hittalaget-backend/internal/pkg/dbctx"
	"github.com/hittalaget/hittalaget-backend/internal/platform/apierr"
	"github.com/hittalaget/hittalaget-backend/internal/services"
)

type ConversationHandler struct {
	conversationService services.ConversationService
}

func NewConversationHandler(conversationService services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

func convParam(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("conversation_id"))
	if err != nil {
		return 0, apierr.Validation("conversation id must be numeric")
	}
	return id, nil
}

func (ch *ConversationHandler) List(c *gin.Context) {
	lists, err := ch.conversationService.ListConversations(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, lists)
}

func (ch *ConversationHandler) GetDirect(c *gin.Context) {
	page, err := ch.conversationService.GetDirectConversation(dbctx.Context{Ctx: c.Request.Context()}, c.Param("username"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, page)
}

func (ch *ConversationHandler) SendDirect(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	out, err := ch.conversationService.SendDirectMessage(dbctx.Context{Ctx: c.Request.Context()}, c.Param("username"), req.Content)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, out)
}

func (ch *ConversationHandler) LeaveDirect(c *gin.Context) {
	if err := ch.conversationService.LeaveDirectConversation(dbctx.Context{Ctx: c.Request.Context()}, c.Param("username")); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"left": true})
}

func (ch *ConversationHandler) GetAd(c *gin.Context) {
	id, err := convParam(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	page, err := ch.conversationService.GetAdConversation(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, page)
}

func (ch *ConversationHandler) PostAd(c *gin.Context) {
	id, err := convParam(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	out, err := ch.conversationService.PostAdMessage(dbctx.Context{Ctx: c.Request.Context()}, id, req.Content)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, out)
}

func (ch *ConversationHandler) LeaveAd(c *gin.Context) {
	id, err := convParam(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if err := ch.conversationService.LeaveAdConversation(dbctx.Context{Ctx: c.Request.Context()}, id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"left": true})
}

func (ch *ConversationHandler) ContactAdOwner(c *gin.Context) {
	adID, err := adParam(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	out, err := ch.conversationService.ContactAdOwner(dbctx.Context{Ctx: c.Request.Context()}, adID, req.Content)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, out)
}
