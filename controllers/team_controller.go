// file: controllers/team_controller.go
package controllers

import (
	"net/http"

	"github.com/assessment-hisan/auction-backend/dto"
	"github.com/assessment-hisan/auction-backend/services"
	"github.com/assessment-hisan/auction-backend/utils"
	"github.com/gin-gonic/gin"
)

type TeamController struct {
	teams *services.TeamService
}

func NewTeamController(teams *services.TeamService) *TeamController {
	return &TeamController{teams: teams}
}

// GetTeams 获取全部队伍，队长与副队长已解析为学生信息
func (h *TeamController) GetTeams(c *gin.Context) {
	teams, err := h.teams.List(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "success", teams)
}

func (h *TeamController) CreateTeam(c *gin.Context) {
	var req dto.CreateTeamReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, utils.CodeInvalidInput, "invalid request body: "+err.Error())
		return
	}

	team, err := h.teams.Create(c.Request.Context(), req)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Created(c, "Team created", team)
}

func (h *TeamController) UpdateTeam(c *gin.Context) {
	var patch dto.TeamPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.Error(c, http.StatusBadRequest, utils.CodeInvalidInput, "invalid request body: "+err.Error())
		return
	}

	team, err := h.teams.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Team updated", team)
}

// DeleteTeam 删除队伍并释放其全部学生
func (h *TeamController) DeleteTeam(c *gin.Context) {
	if err := h.teams.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Team deleted successfully", nil)
}
