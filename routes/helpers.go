package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"spoolman/spoolman/models"
	"spoolman/spoolman/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var fieldNamesOnce sync.Once

// UseRequestFieldNames makes validation errors report the json (or form)
// name of a field instead of the Go name.
func UseRequestFieldNames() {
	fieldNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	})
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}

// respondInvalid answers 400 for binding and validation failures.
func respondInvalid(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]models.FieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, models.FieldError{Field: fe.Field(), Message: describeFieldError(fe)})
		}
		c.JSON(http.StatusBadRequest, models.Message{Message: "Invalid request", Details: details})
		return
	}

	var fieldErrs models.FieldErrors
	if errors.As(err, &fieldErrs) {
		c.JSON(http.StatusBadRequest, models.Message{Message: "Invalid request", Details: fieldErrs})
		return
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		c.JSON(http.StatusBadRequest, models.Message{
			Message: "Invalid request",
			Details: []models.FieldError{{Field: field, Message: describeTypeError(typeErr.Type)}},
		})
		return
	}

	var syntaxErr *json.SyntaxError
	var parseErr *time.ParseError
	var numErr *strconv.NumError
	switch {
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		c.JSON(http.StatusBadRequest, models.Message{Message: "Invalid request: malformed JSON body"})
	case errors.Is(err, io.EOF):
		c.JSON(http.StatusBadRequest, models.Message{Message: "Invalid request: empty body"})
	case errors.As(err, &parseErr):
		c.JSON(http.StatusBadRequest, models.Message{Message: "Invalid request: " + describeTypeError(timestampType)})
	case errors.As(err, &numErr):
		c.JSON(http.StatusBadRequest, models.Message{Message: "Invalid request: query parameters must be numbers"})
	default:
		log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("Rejected request")
		c.JSON(http.StatusBadRequest, models.Message{Message: "Invalid request"})
	}
}

var timestampType = reflect.TypeOf(models.Timestamp{})

func describeTypeError(t reflect.Type) string {
	if t == nil {
		return "has the wrong type"
	}
	if t == timestampType {
		return "must be an ISO 8601 datetime"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "must be an integer"
	case reflect.Float32, reflect.Float64:
		return "must be a number"
	case reflect.String:
		return "must be a string"
	case reflect.Bool:
		return "must be a boolean"
	default:
		return "has the wrong type"
	}
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Message{
			Message: "Invalid id",
			Details: []models.FieldError{{Field: "id", Message: "must be an integer"}},
		})
		return 0, false
	}
	return id, true
}

// respondError maps service errors onto HTTP responses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPrintJobNotFound):
		c.JSON(http.StatusNotFound, models.Message{Message: "Print job not found"})
	case errors.Is(err, services.ErrSpoolNotFound):
		c.JSON(http.StatusNotFound, models.Message{Message: "Spool not found"})
	case errors.Is(err, services.ErrFilamentNotFound):
		c.JSON(http.StatusNotFound, models.Message{Message: "Filament not found"})
	default:
		log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, models.Message{Message: "Internal server error"})
	}
}

// respondMissingReference answers 400 when a request body points at an
// entity that does not exist.
func respondMissingReference(c *gin.Context, field, message string) {
	c.JSON(http.StatusBadRequest, models.Message{
		Message: message,
		Details: []models.FieldError{{Field: field, Message: "does not exist"}},
	})
}
