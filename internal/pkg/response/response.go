package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 响应里的 status 字段
const (
	StatusSuccess = "success"
	StatusCreated = "created"
	StatusOK      = "Ok"
	StatusError   = "error"
)

// HTTP 状态码对应的默认消息
var codeMessages = map[int]string{
	http.StatusBadRequest:          "Bad Request",
	http.StatusUnauthorized:        "Not authorized",
	http.StatusNotFound:            "Not Found",
	http.StatusConflict:            "Conflict",
	http.StatusTooManyRequests:     "Too Many Requests",
	http.StatusInternalServerError: "Internal Server Error",
}

// Response 统一响应结构，code 与 HTTP 状态码一致
type Response struct {
	Status       string      `json:"status"`
	Code         int         `json:"code"`
	Message      string      `json:"message,omitempty"`
	ResponseBody interface{} `json:"responseBody,omitempty"`
	User         interface{} `json:"user,omitempty"`
	Data         interface{} `json:"data,omitempty"`
}

// Created 创建成功 201
func Created(c *gin.Context, body interface{}) {
	c.JSON(http.StatusCreated, Response{
		Status:       StatusCreated,
		Code:         http.StatusCreated,
		ResponseBody: body,
	})
}

// OK 200，数据放在 responseBody
func OK(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, Response{
		Status:       StatusOK,
		Code:         http.StatusOK,
		ResponseBody: body,
	})
}

// SuccessUser 200，数据放在 user
func SuccessUser(c *gin.Context, user interface{}) {
	c.JSON(http.StatusOK, Response{
		Status: StatusSuccess,
		Code:   http.StatusOK,
		User:   user,
	})
}

// SuccessData 200，数据放在 data
func SuccessData(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Status: StatusSuccess,
		Code:   http.StatusOK,
		Data:   data,
	})
}

// SuccessMessage 200，只带消息
func SuccessMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{
		Status:  StatusSuccess,
		Code:    http.StatusOK,
		Message: message,
	})
}

// NoContent 204
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	if message == "" {
		message = codeMessages[code]
	}
	c.JSON(code, Response{
		Status:  StatusError,
		Code:    code,
		Message: message,
	})
}

// ParamError 参数错误
func ParamError(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// AuthError 认证失败
func AuthError(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// NotFoundError 资源不存在
func NotFoundError(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// ConflictError 资源冲突
func ConflictError(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// TooManyRequests 请求过于频繁
func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message)
}

// ServerError 服务器错误
func ServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}
