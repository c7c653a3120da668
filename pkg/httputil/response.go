package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/shadowing-api/pkg/errors"
	"github.com/jwalitptl/shadowing-api/pkg/validator"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CreatedResponse answers a successful insert.
type CreatedResponse struct {
	ID string `json:"id"`
}

// OKResponse answers a successful update or delete.
type OKResponse struct {
	OK bool `json:"ok"`
}

// RespondWithSuccess writes data as the bare response body.
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func RespondCreated(c *gin.Context, id string) {
	c.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

func RespondOK(c *gin.Context) {
	c.JSON(http.StatusOK, OKResponse{OK: true})
}

// RespondWithError maps err to a status code and an {"error": ...} body.
// Anything that is not an AppError is treated as internal; its cause is logged
// and never sent to the client.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.Internal(err)
	}

	status := appErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(appErr.Err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.FullPath()).
			Msg("request failed")
	}
	_ = c.Error(err)

	c.AbortWithStatusJSON(status, ErrorResponse{Error: appErr.Message})
}

// RespondWithBindError reports a malformed request body or query as 400.
func RespondWithBindError(c *gin.Context, err error) {
	RespondWithError(c, errors.Validation(validator.Message(err)))
}
