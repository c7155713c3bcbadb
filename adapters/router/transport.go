package resumerouter

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	errorslib "github.com/goliatone/go-errors"
	"github.com/goliatone/go-resume/resume"
	"github.com/goliatone/go-router"
)

// ErrorResponse describes JSON error responses.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains error details.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func decodeJSON(c router.Context, dst any) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return resume.NewError(resume.KindValidation, "request body is required", nil)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return resume.NewError(resume.KindValidation, "invalid JSON body", err)
	}
	return nil
}

// WriteError writes err as a JSON error payload with a status derived from
// its kind.
func WriteError(c router.Context, err error) error {
	if err == nil {
		return c.NoContent(http.StatusNoContent)
	}
	ge := resume.AsGoError(err)
	return c.JSON(statusForError(ge), ErrorResponse{
		Error: ErrorBody{
			Message: ge.Message,
			Code:    ge.TextCode,
		},
	})
}

func statusForError(err *errorslib.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	switch err.TextCode {
	case "not_implemented":
		return http.StatusNotImplemented
	case "timeout":
		return http.StatusGatewayTimeout
	case "canceled":
		return http.StatusRequestTimeout
	}
	switch err.Category {
	case errorslib.CategoryValidation:
		return http.StatusBadRequest
	case errorslib.CategoryNotFound:
		return http.StatusNotFound
	case errorslib.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// attachment sends data as a download. It streams through the underlying
// http.ResponseWriter when the context exposes one.
func attachment(c router.Context, filename, contentType string, data []byte) error {
	c.SetHeader("Content-Type", contentType)
	c.SetHeader("Content-Disposition", resume.AttachmentDisposition(filename))
	c.SetHeader("X-Content-Type-Options", "nosniff")
	if w, ok := responseWriter(c); ok {
		c.Status(http.StatusOK)
		_, err := w.Write(data)
		return err
	}
	c.Status(http.StatusOK)
	return c.Send(data)
}

func responseWriter(c router.Context) (io.Writer, bool) {
	httpCtx, ok := router.AsHTTPContext(c)
	if !ok || httpCtx.Response() == nil {
		return nil, false
	}
	return httpCtx.Response(), true
}

// requestOrigin builds scheme://host for share links when no origin is
// configured.
func requestOrigin(c router.Context) string {
	if origin := strings.TrimSpace(c.Header("Origin")); origin != "" {
		return origin
	}
	host := strings.TrimSpace(c.Header("X-Forwarded-Host"))
	if host == "" {
		host = strings.TrimSpace(c.Header("Host"))
	}
	if host == "" {
		if httpCtx, ok := router.AsHTTPContext(c); ok && httpCtx.Request() != nil {
			host = httpCtx.Request().Host
		}
	}
	if host == "" {
		return ""
	}
	scheme := strings.TrimSpace(c.Header("X-Forwarded-Proto"))
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + host
}
