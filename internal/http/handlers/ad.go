package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hittalaget/hittalaget-backend/internal/http/response"
	"github.com/hittalaget/hittalaget-backend/internal/pkg/dbctx"
	"github.com/hittalaget/hittalaget-backend/internal/platform/apierr"
	"github.com/hittalaget/hittalaget-backend/internal/services"
)

type AdHandler struct {
	adService services.AdService
}

func NewAdHandler(adService services.AdService) *AdHandler {
	return &AdHandler{adService: adService}
}

func adParam(c *gin.Context) (int, error) {
	adID, err := strconv.Atoi(c.Param("ad_id"))
	if err != nil {
		return 0, apierr.Validation("ad id must be numeric")
	}
	return adID, nil
}

func (ah *AdHandler) Create(c *gin.Context) {
	var req services.AdCreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	ad, err := ah.adService.Create(dbctx.Context{Ctx: c.Request.Context()}, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"ad": ad})
}

func (ah *AdHandler) Get(c *gin.Context) {
	adID, err := adParam(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	ad, err := ah.adService.GetByPublicID(dbctx.Context{Ctx: c.Request.Context()}, c.Param("sport"), adID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ad": ad})
}

func (ah *AdHandler) List(c *gin.Context) {
	ads, err := ah.adService.ListBySport(dbctx.Context{Ctx: c.Request.Context()}, c.Param("sport"), listLimit(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ads": ads})
}

func (ah *AdHandler) ListMine(c *gin.Context) {
	ads, err := ah.adService.ListMine(dbctx.Context{Ctx: c.Request.Context()}, c.Param("sport"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ads": ads})
}

func (ah *AdHandler) Update(c *gin.Context) {
	adID, err := adParam(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var req services.AdUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apierr.Validation("invalid request body"))
		return
	}
	ad, err := ah.adService.Update(dbctx.Context{Ctx: c.Request.Context()}, c.Param("sport"), adID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ad": ad})
}

func (ah *AdHandler) Delete(c *gin.Context) {
	adID, err := adParam(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if err := ah.adService.Delete(dbctx.Context{Ctx: c.Request.Context()}, c.Param("sport"), adID); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}
