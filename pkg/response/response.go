package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/perchard/trustbind/pkg/errors"
	"github.com/perchard/trustbind/pkg/logger"
)

// ErrorBody is the Matrix wire envelope for failures.
type ErrorBody struct {
	ErrCode string `json:"errcode"`
	Error   string `json:"error"`
}

// JSON writes a successful response. Matrix identity endpoints return their
// payloads bare, without a wrapping envelope.
func JSON(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// Error translates an error into the {errcode, error} wire envelope. This is
// the only place core failures become HTTP responses; handlers never build
// error bodies themselves.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	if appErr.Internal != nil {
		logger.WithModule("http").Error("request failed",
			zap.String("errcode", appErr.ErrCode),
			zap.String("path", c.Request.URL.Path),
			zap.Error(appErr.Internal),
		)
	}

	c.JSON(status, ErrorBody{
		ErrCode: appErr.ErrCode,
		Error:   appErr.Message,
	})
}
