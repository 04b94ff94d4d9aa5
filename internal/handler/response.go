package handler

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/jwalitptl/pdf-api/pkg/errors"
	"github.com/jwalitptl/pdf-api/pkg/validator"
)

// BindError converts a gin binding failure into an AppError: a body over the
// size limit is 413, anything else is a 422 with per-field details.
func BindError(err error) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.New(errors.KindTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), err)
	}
	return errors.Validation(validator.FieldErrors(err), err)
}
