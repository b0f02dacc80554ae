package rest

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// registerValidators teaches gin's validator the notblank tag and makes it
// report fields by their JSON names.
func registerValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("unexpected validator engine")
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			switch name {
			case "-":
				return ""
			case "":
				return fld.Name
			}
			return name
		})
		registerErr = v.RegisterValidation("notblank", validators.NotBlank)
	})
	return registerErr
}

// fieldErrors turns validator failures into a field -> messages map.
func fieldErrors(err error) (map[string][]string, bool) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, false
	}
	out := make(map[string][]string, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = append(out[fe.Field()], fieldMessage(fe))
	}
	return out, true
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "notblank":
		return "This field may not be blank."
	case "email":
		return msgInvalidEmail
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	default:
		return "Invalid value."
	}
}

// emailFormError checks a form-submitted email with the same rules bound
// API bodies get and returns the message to show, or "" when it is valid.
func emailFormError(email string) string {
	switch {
	case email == "":
		return msgRequired
	case utf8.RuneCountInString(email) > common.MaxEmailLength:
		return fmt.Sprintf("Ensure this value has at most %d characters.", common.MaxEmailLength)
	}
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok || v.Var(email, "email") != nil {
		return msgInvalidEmail
	}
	return ""
}

// bind decodes the JSON or form body into obj and answers 400 on failure.
func bind(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		if fields, ok := fieldErrors(err); ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, fields)
			return false
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "Malformed request body."})
		return false
	}
	return true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
