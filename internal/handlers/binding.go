package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// bindingErrorMessage renders a request binding failure as a readable message.
// Field-level validator errors are listed per field instead of dumping the
// struct paths.
func bindingErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request format: " + err.Error()
	}

	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts[i] = fmt.Sprintf("field %q is required", fe.Field())
		case "min":
			parts[i] = fmt.Sprintf("field %q needs at least %s elements", fe.Field(), fe.Param())
		case "oneof":
			parts[i] = fmt.Sprintf("field %q must be one of [%s]", fe.Field(), fe.Param())
		default:
			parts[i] = fmt.Sprintf("field %q failed on %q", fe.Field(), fe.Tag())
		}
	}
	return "Invalid request: " + strings.Join(parts, "; ")
}
