package response

import "github.com/gin-gonic/gin"

var (
	ParamError = gin.H{"code": 10001, "message": "param error"}

	InternalError = gin.H{"code": 10002, "message": "internal error"}

	NotFoundError = gin.H{"code": 10003, "message": "not found"}
)

func ConfigError(message string) gin.H {
	return gin.H{"code": 10004, "message": message}
}

func SuccessWithData(data any) gin.H {
	return gin.H{"code": 0, "message": "ok", "data": data}
}

func Success() gin.H {
	return gin.H{"code": 0, "message": "ok"}
}
