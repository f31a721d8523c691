package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"chronos/internal/transport/http/api"
)

var ErrNotInteger = errors.New("must be an integer")

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// a FlexInt validates as its *int64, so "required" rejects missing, null
	// and "" while still accepting 0
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if f, ok := field.Interface().(FlexInt); ok {
			return f.Ptr()
		}
		return nil
	}, FlexInt{})
	return v
}

// Bind decodes a JSON body into dst and runs its validate tags. On failure it
// writes a 400 and returns false.
func Bind(w http.ResponseWriter, r *http.Request, dst any, requestID string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
			return false
		}
		FailValidation(w, requestID, []ValidationIssue{decodeIssue(err)})
		return false
	}
	return Check(w, dst, requestID)
}

// Check runs the validate tags of an already populated struct.
func Check(w http.ResponseWriter, dst any, requestID string) bool {
	if issues := Validate(dst); len(issues) > 0 {
		FailValidation(w, requestID, issues)
		return false
	}
	return true
}

func Validate(dst any) []ValidationIssue {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationIssue{{Field: "body", Reason: err.Error()}}
	}
	issues := make([]ValidationIssue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, ValidationIssue{Field: fe.Field(), Reason: reason(fe)})
	}
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Field < issues[j].Field })
	return issues
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	}
	return "is invalid"
}

func decodeIssue(err error) ValidationIssue {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return ValidationIssue{Field: typeErr.Field, Reason: "has the wrong type"}
	}
	if errors.Is(err, ErrNotInteger) {
		return ValidationIssue{Field: "body", Reason: err.Error()}
	}
	return ValidationIssue{Field: "body", Reason: "must be a valid JSON object"}
}

func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	message := "payload validation failed"
	if len(issues) == 1 {
		message = issues[0].Field + " " + issues[0].Reason
	}
	api.FailWithDetails(w, http.StatusBadRequest, "validation_error", message, api.Payload{"fields": issues}, requestID)
}
