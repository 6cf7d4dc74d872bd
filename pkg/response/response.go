package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/districtops/transport-api/internal/models"
	appErrors "github.com/districtops/transport-api/pkg/errors"
	"github.com/districtops/transport-api/pkg/middleware/requestid"
)

// Envelope is the contract every endpoint responds with. Exactly one of
// Data or Error is set; Pagination accompanies list responses only.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

func write(c *gin.Context, status int, envelope Envelope) {
	// Schedules change under dispatchers' feet; never let an intermediary
	// serve a stale roster or activity list.
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	if id := requestid.Value(c); id != "" {
		if envelope.Meta == nil {
			envelope.Meta = map[string]interface{}{}
		}
		envelope.Meta["request_id"] = id
	}
	c.JSON(status, envelope)
}

// JSON sends a success response with optional pagination and meta.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	envelope := Envelope{Data: data, Pagination: pagination}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	write(c, status, envelope)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Error maps err onto the envelope, deriving the HTTP status from the typed
// error when there is one and treating everything else as internal.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	write(c, appErr.Status, Envelope{Error: appErr})
}

// NoContent sends a 204 response with an empty body.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
