// file: controllers/tv_settings_controller.go
package controllers

import (
	"net/http"

	"github.com/assessment-hisan/auction-backend/dto"
	"github.com/assessment-hisan/auction-backend/services"
	"github.com/assessment-hisan/auction-backend/utils"
	"github.com/gin-gonic/gin"
)

type TvSettingsController struct {
	settings *services.SettingsService
}

func NewTvSettingsController(settings *services.SettingsService) *TvSettingsController {
	return &TvSettingsController{settings: settings}
}

func (h *TvSettingsController) GetUniqueSectionsAndPools(c *gin.Context) {
	out, err := h.settings.SectionsAndPools(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "success", out)
}

// GetTvSettings 不存在时按默认值创建
func (h *TvSettingsController) GetTvSettings(c *gin.Context) {
	settings, err := h.settings.GetOrCreate(c.Request.Context(), c.Param("screenId"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "success", settings)
}

func (h *TvSettingsController) UpdateTvSettings(c *gin.Context) {
	var patch dto.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.Error(c, http.StatusBadRequest, utils.CodeInvalidInput, "invalid request body: "+err.Error())
		return
	}

	settings, err := h.settings.Update(c.Request.Context(), c.Param("screenId"), patch)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Settings updated", settings)
}
