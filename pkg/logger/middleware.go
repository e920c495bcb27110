package logger

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// maxLoggedBody caps how much of a request body ends up in the log
const maxLoggedBody = 4096

const redacted = "[REDACTED]"

// sensitiveFormFields are form values never written to the log
var sensitiveFormFields = []string{"password", "client_secret"}

// replayBody serves the already-read head of a body followed by the unread rest
type replayBody struct {
	io.Reader
	io.Closer
}

// Middleware returns an echo middleware that logs every request with its
// method, URL, headers and, for mutating verbs, its body. Handler errors are
// resolved through the echo error handler here so the completion entry
// carries the final status.
func Middleware(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			ctxLogger := base.With(zap.String("request_id", requestID))
			c.Set(echoLoggerKey, ctxLogger)

			// Request line and headers, with credentials redacted
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("url", req.URL.String()),
				zap.Any("headers", headerFields(req.Header)),
			}

			// Only the head of the body is buffered; the rest streams to the handler
			if hasBody(req.Method) && req.Body != nil {
				head, err := io.ReadAll(io.LimitReader(req.Body, maxLoggedBody))
				if err != nil {
					ctxLogger.Warn("Failed to read request body", zap.Error(err))
				}
				req.Body = &replayBody{
					Reader: io.MultiReader(bytes.NewReader(head), req.Body),
					Closer: req.Body,
				}
				fields = append(fields, zap.String("body", loggableBody(req.Header.Get(echo.HeaderContentType), head)))
			}
			c.SetRequest(req.WithContext(WithContext(req.Context(), ctxLogger)))

			ctxLogger.Info("HTTP request received", fields...)

			// Resolve the error here so the status below is the one sent
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			done := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
			}
			if err != nil {
				ctxLogger.Warn("HTTP request failed", append(done, zap.Error(err))...)
			} else {
				ctxLogger.Info("HTTP request completed", done...)
			}

			return nil
		}
	}
}

func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func headerFields(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if strings.EqualFold(k, echo.HeaderAuthorization) {
			out[k] = redacted
			continue
		}
		out[k] = strings.Join(v, ", ")
	}
	return out
}

// loggableBody masks credentials in url-encoded forms such as the token request
func loggableBody(contentType string, body []byte) string {
	if !strings.HasPrefix(contentType, echo.MIMEApplicationForm) {
		return string(body)
	}
	values, err := url.ParseQuery(string(body))
	if err != nil && len(values) == 0 {
		return redacted
	}
	for _, key := range sensitiveFormFields {
		if values.Has(key) {
			values.Set(key, redacted)
		}
	}
	return values.Encode()
}
