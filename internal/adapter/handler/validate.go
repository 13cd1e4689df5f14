package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rl1809/inventory-service/internal/core/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// decodeJSONBody decodes and validates the request body into dest. Failures
// are InvalidRequest faults.
func decodeJSONBody(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return domain.WrapFault(domain.FaultInvalidRequest, err, "invalid request body")
	}
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *domain.Fault {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return domain.WrapFault(domain.FaultInvalidRequest, err, "validation failed")
	}
	msgs := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		msgs = append(msgs, fmt.Sprintf("%s %s", fieldErr.Field(), validationMessage(fieldErr)))
	}
	sort.Strings(msgs)
	return domain.NewFault(domain.FaultInvalidRequest, strings.Join(msgs, "; "))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return "is invalid"
}
