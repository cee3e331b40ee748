package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeOK       = 0
	CodeFail     = -1
	CodeInvalid  = 400
	CodeNotFound = 404
	CodeBusy     = 409
)

type Response struct {
	Code int         `json:"code"` // 0:成功, 其他:失败
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: CodeOK,
		Msg:  "success",
		Data: data,
	})
}

func Fail(c *gin.Context, msg string) {
	FailCode(c, CodeFail, msg)
}

// FailCode keeps HTTP 200 and reports the failure kind in code.
func FailCode(c *gin.Context, code int, msg string) {
	c.JSON(http.StatusOK, Response{
		Code: code,
		Msg:  msg,
		Data: nil,
	})
}
