// file: utils/response.go
package utils

import (
	"net/http"

	"github.com/assessment-hisan/auction-backend/services"
	"github.com/gin-gonic/gin"
)

// Business codes carried in every error body next to the HTTP status.
const (
	CodeOK                 = 0
	CodeInvalidInput       = 1001
	CodeDuplicateKey       = 2001
	CodeLeadershipConflict = 3006
	CodeNotFound           = 4004
	CodeUnexpected         = 5000
)

type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: CodeOK, Msg: msg, Data: data})
}

func Created(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: CodeOK, Msg: msg, Data: data})
}

func Error(c *gin.Context, status int, code int, msg string) {
	c.JSON(status, Response{Code: code, Msg: msg})
}

func ErrorWithData(c *gin.Context, status int, code int, msg string, data interface{}) {
	c.JSON(status, Response{Code: code, Msg: msg, Data: data})
}

// Fail writes err using the status and code of its kind.
func Fail(c *gin.Context, err error) {
	status, code := StatusOf(err)
	Error(c, status, code, err.Error())
}

func StatusOf(err error) (status int, code int) {
	switch services.KindOf(err) {
	case services.KindInvalidInput:
		return http.StatusBadRequest, CodeInvalidInput
	case services.KindLeadershipConflict:
		return http.StatusBadRequest, CodeLeadershipConflict
	case services.KindNotFound:
		return http.StatusNotFound, CodeNotFound
	case services.KindDuplicateKey:
		return http.StatusConflict, CodeDuplicateKey
	default:
		return http.StatusInternalServerError, CodeUnexpected
	}
}
