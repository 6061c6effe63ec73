package handlers

import (
	"net/http"

	"RxClinic/apperrors"
	"RxClinic/middlewares"
	"RxClinic/models"
	"RxClinic/services"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// bindError marks a request body that could not be decoded.
type bindError struct {
	err error
}

func (e *bindError) Error() string {
	return e.err.Error()
}

func bind(c *gin.Context, obj any) error {
	if err := c.ShouldBind(obj); err != nil {
		return &bindError{err: err}
	}
	return nil
}

// fail writes the status and body matching err. Unknown errors are logged
// and answered with a generic message.
func fail(c *gin.Context, log zerolog.Logger, err error) {
	var (
		be           *bindError
		validation   *apperrors.ValidationError
		referential  *apperrors.ReferentialIntegrityError
		uniqueness   *apperrors.UniquenessError
		notFound     *apperrors.NotFoundError
		forbidden    *apperrors.ForbiddenError
		unauthorized *apperrors.UnauthorizedError
	)
	switch {
	case errors.As(err, &be):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": be.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": validation.Fields})
	case errors.As(err, &referential):
		c.JSON(http.StatusConflict, gin.H{"error": referential.Error(), "table": referential.Table})
	case errors.As(err, &uniqueness):
		c.JSON(http.StatusConflict, gin.H{"error": uniqueness.Error(), "field": uniqueness.Field})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": forbidden.Error()})
	case errors.As(err, &unauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": unauthorized.Error()})
	case errors.Is(err, services.ErrEmailLocked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrResetUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// actor returns the authenticated user or answers 401.
func actor(c *gin.Context) (models.Actor, bool) {
	a, err := middlewares.ActorFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return models.Actor{}, false
	}
	return a, true
}
