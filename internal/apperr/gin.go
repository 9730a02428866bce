package apperr

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/logging"
)

// Respond writes err as a JSON error body. Infrastructure errors are logged
// and reported without detail.
func Respond(c *gin.Context, err error) {
	status := Status(err)

	var e *Error
	if !errors.As(err, &e) {
		_ = c.Error(err)
		logging.Error().Err(err).
			Str("request_id", logging.RequestID(c)).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
		return
	}

	body := gin.H{"error": e.Message}
	if e.Field != "" {
		body["field"] = e.Field
	}
	c.AbortWithStatusJSON(status, body)
}

// Field errors from gin's validator carry the json name of the field, so
// the name a client sent is the name it gets back.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonTagName)
	}
}

func jsonTagName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// FromBinding converts a gin binding failure into a Validation error naming
// the first field that failed.
func FromBinding(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return Validation(fe.Field(), describe(fe))
	}
	return Validation("body", err.Error())
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "hexcolor":
		return "must be a hex color"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "unique":
		return "contains duplicate values"
	}
	return "failed on the '" + fe.Tag() + "' rule"
}
