// file: controllers/transfer_controller.go
package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/assessment-hisan/auction-backend/dto"
	"github.com/assessment-hisan/auction-backend/services"
	"github.com/assessment-hisan/auction-backend/utils"
	"github.com/gin-gonic/gin"
)

// ImportFormField is the multipart field carrying an uploaded students file.
const ImportFormField = "studentsFile"

const maxImportSize = 10 << 20

type TransferController struct {
	transfer *services.TransferService
}

func NewTransferController(transfer *services.TransferService) *TransferController {
	return &TransferController{transfer: transfer}
}

// ExportStudents 以附件形式下载学生名单，可按 class、section 过滤
func (h *TransferController) ExportStudents(c *gin.Context) {
	students, err := h.transfer.Export(c.Request.Context(), c.Query("class"), c.Query("section"))
	if err != nil {
		utils.Fail(c, err)
		return
	}

	body, err := json.MarshalIndent(students, "", "  ")
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, utils.CodeUnexpected, "encode export: "+err.Error())
		return
	}
	c.Header("Content-Disposition", `attachment; filename="students.json"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (h *TransferController) ImportStudents(c *gin.Context) {
	fh, err := c.FormFile(ImportFormField)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, utils.CodeInvalidInput, "No file uploaded.")
		return
	}
	if fh.Size > maxImportSize {
		utils.Error(c, http.StatusBadRequest, utils.CodeInvalidInput, "File is too large.")
		return
	}

	f, err := fh.Open()
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, utils.CodeUnexpected, "open upload: "+err.Error())
		return
	}
	defer f.Close()

	var records []dto.ImportStudent
	if err := json.NewDecoder(f).Decode(&records); err != nil {
		utils.Error(c, http.StatusBadRequest, utils.CodeInvalidInput, "Invalid JSON file: "+err.Error())
		return
	}

	n, err := h.transfer.Import(c.Request.Context(), records)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, fmt.Sprintf("%d students imported successfully.", n), gin.H{"count": n})
}
