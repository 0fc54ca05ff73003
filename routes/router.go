// file: routes/router.go
package routes

import (
	"log/slog"
	"net/http"

	"github.com/assessment-hisan/auction-backend/controllers"
	"github.com/assessment-hisan/auction-backend/middlewares"
	"github.com/gin-gonic/gin"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Students *controllers.StudentController
	Teams    *controllers.TeamController
	Settings *controllers.TvSettingsController
	Transfer *controllers.TransferController
	// Viewers serves the live update socket.
	Viewers http.Handler
}

func SetupRouter(h Handlers, frontendURL string, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(log), middlewares.CORS(frontendURL))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Student auction API is running")
	})
	if h.Viewers != nil {
		r.GET("/ws", gin.WrapH(h.Viewers))
	}

	api := r.Group("/api")
	{
		studentRoutes := api.Group("/students")
		{
			studentRoutes.GET("", h.Students.GetStudents)
			studentRoutes.POST("/single", h.Students.AddSingleStudent)
			studentRoutes.POST("/bulk", h.Students.AddMultipleStudents)
			studentRoutes.POST("/assign-to-pool", h.Students.AssignStudentsToPool)
			studentRoutes.PUT("/unassign/:id", h.Students.UnassignStudent)
			studentRoutes.PUT("/:id", h.Students.UpdateStudent)
			studentRoutes.DELETE("/:id", h.Students.DeleteStudent)
		}

		teamRoutes := api.Group("/teams")
		{
			teamRoutes.GET("", h.Teams.GetTeams)
			teamRoutes.POST("", h.Teams.CreateTeam)
			teamRoutes.PUT("/:id", h.Teams.UpdateTeam)
			teamRoutes.DELETE("/:id", h.Teams.DeleteTeam)
		}

		tvRoutes := api.Group("/tv-settings")
		{
			tvRoutes.GET("/sections-and-pools", h.Settings.GetUniqueSectionsAndPools)
			tvRoutes.GET("/:screenId", h.Settings.GetTvSettings)
			tvRoutes.PUT("/:screenId", h.Settings.UpdateTvSettings)
		}

		api.GET("/export-students", h.Transfer.ExportStudents)
		api.POST("/import-students", h.Transfer.ImportStudents)
	}

	return r
}
