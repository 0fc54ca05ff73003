// file: controllers/student_controller.go
package controllers

import (
	"fmt"
	"net/http"

	"github.com/assessment-hisan/auction-backend/dto"
	"github.com/assessment-hisan/auction-backend/services"
	"github.com/assessment-hisan/auction-backend/utils"
	"github.com/gin-gonic/gin"
)

type StudentController struct {
	students *services.StudentService
}

func NewStudentController(students *services.StudentService) *StudentController {
	return &StudentController{students: students}
}

func (h *StudentController) GetStudents(c *gin.Context) {
	students, err := h.students.List(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "success", students)
}

func (h *StudentController) AddSingleStudent(c *gin.Context) {
	var req dto.CreateStudentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, utils.CodeInvalidInput, "invalid request body: "+err.Error())
		return
	}

	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Created(c, "Student added", student)
}

func (h *StudentController) AddMultipleStudents(c *gin.Context) {
	var reqs []dto.CreateStudentReq
	if err := c.ShouldBindJSON(&reqs); err != nil {
		utils.Error(c, http.StatusBadRequest, utils.CodeInvalidInput, "Request body must be an array of students.")
		return
	}

	result, err := h.students.BulkCreate(c.Request.Context(), reqs)
	if err != nil {
		if result != nil {
			status, code := utils.StatusOf(err)
			utils.ErrorWithData(c, status, code, err.Error(), result)
			return
		}
		utils.Fail(c, err)
		return
	}

	if len(result.Duplicates) > 0 {
		utils.ErrorWithData(c, http.StatusConflict, utils.CodeDuplicateKey,
			fmt.Sprintf("%d students added, %d duplicate admission numbers found.", len(result.Inserted), len(result.Duplicates)),
			result)
		return
	}
	utils.Created(c, fmt.Sprintf("%d students added.", len(result.Inserted)), result)
}

func (h *StudentController) UpdateStudent(c *gin.Context) {
	var patch dto.StudentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.Error(c, http.StatusBadRequest, utils.CodeInvalidInput, "invalid request body: "+err.Error())
		return
	}

	student, err := h.students.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Student updated", student)
}

func (h *StudentController) DeleteStudent(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Student deleted successfully", nil)
}

func (h *StudentController) AssignStudentsToPool(c *gin.Context) {
	var req dto.AssignToPoolReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, utils.CodeInvalidInput, "Invalid input: studentIds and poolName required")
		return
	}

	modified, err := h.students.AssignToPool(c.Request.Context(), req.StudentIDs, req.PoolName)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, fmt.Sprintf("%d students assigned to %s.", modified, req.PoolName), gin.H{
		"modifiedCount": modified,
	})
}

func (h *StudentController) UnassignStudent(c *gin.Context) {
	student, err := h.students.Unassign(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Student unassigned", student)
}
