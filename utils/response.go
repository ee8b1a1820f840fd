package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SendError(c *gin.Context, status int, err string) {
	c.JSON(status, ErrorResponse{
		Error: err,
		Code:  status,
	})
}

// SendValidationError returns the per-field error map. Kept at 500 to match
// the contract the frontend already depends on.
func SendValidationError(c *gin.Context, fieldErrors map[string]string) {
	c.JSON(http.StatusInternalServerError, fieldErrors)
}

// SendUpstreamError logs dependency failures with an origin tag so
// operators can tell our bugs from a dependency being down.
func SendUpstreamError(c *gin.Context, origin string, err error) {
	log.Error().Str("origin", origin).Err(err).Msg("upstream dependency failure")
	SendError(c, http.StatusInternalServerError, origin+" is unavailable")
}

// SendDatastoreError logs and maps datastore failures; controllers funnel
// every gorm error through here.
func SendDatastoreError(c *gin.Context, err error) {
	log.Error().Str("origin", "datastore").Err(err).Msg("datastore failure")
	SendError(c, http.StatusInternalServerError, err.Error())
}

func SendSuccess(c *gin.Context, message string, data interface{}) {
	response := SuccessResponse{
		Message: message,
	}
	if data != nil {
		response.Data = data
	}
	c.JSON(http.StatusOK, response)
}
