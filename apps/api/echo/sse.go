package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type sseWriter struct {
	ctx echo.Context
}

// WriteEvent writes one server-sent event and flushes it to the client.
func (w *sseWriter) WriteEvent(event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "marshaling event")
	}
	if _, err = fmt.Fprintf(w.ctx.Response(), "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return errors.Wrap(err, "writing event")
	}
	w.ctx.Response().Flush()
	return nil
}

// streamSSE sets up a server-sent events response and runs stream until it
// returns.
func streamSSE(ctx echo.Context, stream func(*sseWriter) error) error {
	h := ctx.Response().Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set("Cache-Control", "no-store")
	h.Set("Connection", "keep-alive")
	ctx.Response().WriteHeader(http.StatusOK)
	ctx.Response().Flush()

	return stream(&sseWriter{ctx: ctx})
}
