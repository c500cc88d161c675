package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/middleware"
	"github.com/voyagehub/travel-backend/internal/models"
	"github.com/voyagehub/travel-backend/internal/services"
	"github.com/voyagehub/travel-backend/internal/utils"
)

// Response is the envelope of every successful response
type Response struct {
	Message string           `json:"message"`
	Data    interface{}      `json:"data,omitempty"`
	Meta    *models.PageMeta `json:"meta,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Message: message, Data: data})
}

func respondList(c *gin.Context, message string, data interface{}, meta models.PageMeta) {
	c.JSON(http.StatusOK, Response{Message: message, Data: data, Meta: &meta})
}

// respondError writes err as an ErrorResponse. Causes of internal and
// gateway failures are attached to the gin context for the request logger
// and never written to the client.
func respondError(c *gin.Context, err error) {
	var rle *services.RateLimitError
	if errors.As(err, &rle) {
		retry := int(time.Until(rle.RetryAfter).Seconds())
		if retry < 1 {
			retry = 1
		}
		c.Header("Retry-After", strconv.Itoa(retry))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error:   "rate_limit_exceeded",
			Message: rle.Message,
			Code:    "RATE_LIMITED",
		})
		return
	}

	appErr := apperr.As(err)
	if appErr.Kind == apperr.KindInternal || appErr.Kind == apperr.KindExternalService {
		_ = c.Error(err)
	}
	c.JSON(apperr.HTTPStatus(appErr), ErrorResponse{
		Error:   strings.ToLower(string(appErr.Kind)),
		Message: appErr.Message,
		Code:    appErr.Code,
		Fields:  appErr.Fields,
	})
}

// bind decodes a JSON or multipart body into req
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBind(req); err != nil {
		respondError(c, apperr.InvalidInput("Invalid request body: %v", err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, f interface{}) bool {
	if err := c.ShouldBindQuery(f); err != nil {
		respondError(c, apperr.InvalidInput("Invalid query parameters: %v", err))
		return false
	}
	return true
}

// pathID parses the :id route parameter
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation(map[string]string{"id": "id must be a valid UUID"}))
		return uuid.Nil, false
	}
	return id, true
}

// optionalPhoto returns the uploaded "photo" part, nil when the request
// carries none
func optionalPhoto(c *gin.Context) (*multipart.FileHeader, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}
	file, err := c.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.InvalidInput("Invalid photo upload: %v", err)
	}
	return file, nil
}

func actorFrom(c *gin.Context) services.Actor {
	userCtx := middleware.MustGetUserContext(c)
	return services.Actor{UserID: userCtx.UserID, Email: userCtx.Email, Role: userCtx.Role}
}

func metaFrom(c *gin.Context) services.RequestMeta {
	return services.RequestMeta{IPAddress: utils.GetRealIP(c), UserAgent: utils.GetUserAgent(c)}
}
