package handler // HTTP handlers and the shared response envelope

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-hub/internal/apperr"
	"github.com/iliyamo/community-hub/internal/queue"
	"github.com/iliyamo/community-hub/internal/repository"
	"github.com/iliyamo/community-hub/internal/service"
)

// envelope is the shape of every JSON response:
//
//	{"status": true,  "content": {"data": ..., "meta": ...}}
//	{"status": false, "errors": [{"code": ..., "message": ..., "field": ...}]}
type envelope struct {
	Status  bool            `json:"status"`
	Content *content        `json:"content,omitempty"`
	Errors  []apperr.Detail `json:"errors,omitempty"`
}

type content struct {
	Data any `json:"data"`
	Meta any `json:"meta,omitempty"`
}

// pageMeta accompanies paginated listings.
type pageMeta struct {
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
	Page  int   `json:"page"`
}

// totalMeta accompanies the unpaginated "me" listings.
type totalMeta struct {
	Total int `json:"total"`
}

func newPageMeta(total int64, page int) pageMeta {
	return pageMeta{Total: total, Pages: repository.PageCount(total, repository.DefaultPageSize), Page: page}
}

// respond writes a successful envelope.  meta may be nil.
func respond(c echo.Context, status int, data, meta any) error {
	return c.JSON(status, envelope{Status: true, Content: &content{Data: data, Meta: meta}})
}

// respondOK writes {"status": true} with no content.
func respondOK(c echo.Context) error {
	return c.JSON(http.StatusOK, envelope{Status: true})
}

// ErrorHandler renders every error returned by handlers or middleware in
// the envelope format.  *apperr.Error values are written as they are,
// echo's own HTTP errors are mapped by status and anything else becomes a
// generic 500 whose cause is only logged.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		ae := toAppError(err)
		if ae.Status >= http.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"error", err,
			)
		}
		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(ae.Status)
		} else {
			werr = c.JSON(ae.Status, envelope{Status: false, Errors: ae.Details})
		}
		if werr != nil {
			logger.Error("writing error response", "error", werr)
		}
	}
}

func toAppError(err error) *apperr.Error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return fromHTTPError(he)
	}
	return apperr.Internal()
}

func fromHTTPError(he *echo.HTTPError) *apperr.Error {
	if he.Code >= http.StatusInternalServerError {
		return apperr.Internal()
	}
	msg := http.StatusText(he.Code)
	if s, ok := he.Message.(string); ok && s != "" {
		msg = s
	}
	code := apperr.CodeInvalidInput
	switch he.Code {
	case http.StatusUnauthorized:
		code = apperr.CodeNotSignedIn
	case http.StatusForbidden:
		code = apperr.CodeNotAllowedAccess
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		code = apperr.CodeResourceNotFound
	}
	return apperr.New(he.Code, code, msg, "")
}

// requestContext bounds the store calls of one request.
func requestContext(c echo.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), timeout)
}

// pageParam reads ?page=.  Missing, unparseable and non-positive values all
// mean the first page.
func pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil {
		return 1
	}
	return repository.NormalizePage(page)
}

// idParam parses a positive numeric path parameter.
func idParam(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.InvalidInput(name, fmt.Sprintf("%s must be a positive integer.", name))
	}
	return id, nil
}

// bindAndValidate decodes the JSON body into req and runs the validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperr.InvalidInput("", "The request body is not valid JSON.")
	}
	return c.Validate(req)
}

// publish sends ev and logs a failure.  Events never fail a request.
func publish(ctx context.Context, pub service.EventPublisher, ev queue.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, ev); err != nil {
		slog.Warn("publishing event failed", "type", ev.Type, "event_id", ev.ID, "error", err)
	}
}
