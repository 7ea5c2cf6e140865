package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

var registerJSONNames sync.Once

// useJSONFieldNames makes validator report fields by their json tag, so
// error paths match what the client sent.
func useJSONFieldNames() {
	registerJSONNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(sf reflect.StructField) string {
			name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return sf.Name
			}
			return name
		})
	})
}

func BindJSON(ctx *gin.Context, out any) bool {
	useJSONFieldNames()

	err := ctx.ShouldBindJSON(out)
	if err != nil {
		RespondBadRequest(ctx, "Invalid request body", parseBindError(err))
		return false
	}

	return true
}

func parseBindError(err error) any {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make([]FieldError, 0, len(validationErrors))

		for _, fe := range validationErrors {
			fields = append(fields, FieldError{
				Field:   fieldPath(fe),
				Rule:    fe.Tag(),
				Param:   fe.Param(),
				Message: validationMessage(fe.Tag(), fe.Param()),
			})
		}
		return gin.H{"fields": fields}
	}

	var syntaxError *json.SyntaxError
	if errors.As(err, &syntaxError) || errors.Is(err, io.ErrUnexpectedEOF) {
		return gin.H{"json": "invalid_json_syntax"}
	}

	if errors.Is(err, io.EOF) {
		return gin.H{"json": "empty_body"}
	}

	var typeError *json.UnmarshalTypeError
	if errors.As(err, &typeError) {
		return gin.H{
			"json":  "invalid_json_type",
			"field": typeError.Field,
			"fields": []FieldError{{
				Field:   typeError.Field,
				Rule:    "type",
				Message: fmt.Sprintf("must be of type %s", typeError.Type.String()),
			}},
		}
	}

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return gin.H{"json": "body_too_large"}
	}

	return gin.H{"reason": err.Error()}
}

// fieldPath drops the root struct name from the namespace:
// "CreateStudentRequest.languages[1]" becomes "languages[1]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok && rest != "" {
		return rest
	}

	return fe.Field()
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid uuid"
	case "url":
		return "must be a valid URL"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "oneof":
		return "must be one of " + param
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
