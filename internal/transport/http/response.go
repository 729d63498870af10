package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"eduplay-service/internal/auth"
	"eduplay-service/internal/domain"
)

// APIError is the wire form of a request failure.
type APIError struct {
	Message string              `json:"message"`
	Code    string              `json:"code,omitempty"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

// ErrorEnvelope wraps every non-2xx response body.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// respondError translates service errors into statuses: validation
// failures are 422, unknown resources 404, state conflicts 409, failed
// credentials and bad tokens 401, everything else 500. Internal errors
// never leak their message to the client.
func respondError(c *gin.Context, err error) {
	var v *domain.ValidationError
	switch {
	case errors.As(err, &v):
		c.JSON(http.StatusUnprocessableEntity, ErrorEnvelope{Error: APIError{
			Message: v.Msg, Code: "validation_failed", Fields: v.Fields,
		}})
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, ErrorEnvelope{Error: APIError{
			Message: err.Error(), Code: "unauthorized",
		}})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorEnvelope{Error: APIError{
			Message: err.Error(), Code: "not_found",
		}})
	case domain.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorEnvelope{Error: APIError{
			Message: err.Error(), Code: "conflict",
		}})
	default:
		c.JSON(http.StatusInternalServerError, ErrorEnvelope{Error: APIError{
			Message: "internal server error", Code: "internal",
		}})
	}
}

// bindJSON decodes and validates the request body, writing the error
// response itself on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]domain.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, domain.FieldError{Field: fe.Field(), Message: validationMessage(fe)})
		}
		c.JSON(http.StatusUnprocessableEntity, ErrorEnvelope{Error: APIError{
			Message: "validation failed", Code: "validation_failed", Fields: fields,
		}})
		return false
	}
	c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: APIError{
		Message: "invalid request body", Code: "bad_request",
	}})
	return false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must have at least " + fe.Param() + " characters or items"
	case "gte":
		return "must be at least " + fe.Param()
	case "optionletter":
		return "must be a single option letter A-D"
	case "gradelevel":
		return "must be a grade between 0 and 12"
	default:
		return "is invalid"
	}
}

// paramID parses a positive integer path parameter, writing the error
// response itself on failure.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: APIError{
			Message: "invalid " + name, Code: "bad_request",
		}})
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter with a fallback.
func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
