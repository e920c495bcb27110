package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"movie-service/pkg/logger"
)

// Response is the JSON body of every error response
type Response struct {
	Detail string `json:"detail"`
	Errors any    `json:"errors,omitempty"`
}

// Handler returns an echo.HTTPErrorHandler rendering errors as {"detail": ...}
func Handler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolve(err)
		log := logger.FromEcho(c)
		if status >= http.StatusInternalServerError {
			log.Error("Request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Error(err))
		}

		if status == http.StatusUnauthorized {
			c.Response().Header().Set("WWW-Authenticate", "Bearer")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			log.Error("Failed to write error response", zap.Error(writeErr))
		}
	}
}

func resolve(err error) (int, Response) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus(), Response{Detail: appErr.Message, Errors: appErr.Details}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg := http.StatusText(httpErr.Code)
		if httpErr.Message != nil {
			msg = fmt.Sprint(httpErr.Message)
		}
		if httpErr.Code >= http.StatusInternalServerError {
			msg = ErrInternal.Message
		}
		return httpErr.Code, Response{Detail: msg}
	}

	return http.StatusInternalServerError, Response{Detail: ErrInternal.Message}
}
