package pdf

import (
	"encoding/base64"
	"net/http"

	"github.com/jwalitptl/pdf-api/internal/document"
	"github.com/jwalitptl/pdf-api/internal/model"
	"github.com/jwalitptl/pdf-api/pkg/errors"
)

// Output is a rendered document.
type Output struct {
	Kind     document.Kind
	Filename string
	Message  string
	Data     []byte
}

// Failure explains why no document was produced.
type Failure struct {
	Kind    errors.Kind
	Message string
}

// Result holds exactly one of an Output or a Failure.
type Result struct {
	output  *Output
	failure *Failure
}

func Succeeded(out *Output) Result {
	return Result{output: out}
}

func Failed(kind errors.Kind, message string) Result {
	return Result{failure: &Failure{Kind: kind, Message: message}}
}

func (r Result) OK() bool {
	return r.output != nil && r.failure == nil
}

// Output is nil for failed results.
func (r Result) Output() *Output {
	if !r.OK() {
		return nil
	}
	return r.output
}

// Failure is nil for successful results.
func (r Result) Failure() *Failure {
	if r.OK() {
		return nil
	}
	if r.failure == nil {
		return &Failure{Kind: errors.KindInternal, Message: "empty result"}
	}
	return r.failure
}

// Status is the HTTP status for the result.
func (r Result) Status() int {
	if r.OK() {
		return http.StatusOK
	}
	return r.Failure().Kind.StatusCode()
}

// Response converts the result to its transport shape. Failed results never
// carry payload fields.
func (r Result) Response() model.DocumentResponse {
	if !r.OK() {
		return model.DocumentResponse{
			Success:     false,
			Message:     r.Failure().Message,
			ContentType: model.ContentTypePDF,
		}
	}
	return model.DocumentResponse{
		Success:     true,
		Message:     r.output.Message,
		PDFData:     base64.StdEncoding.EncodeToString(r.output.Data),
		Filename:    r.output.Filename,
		ContentType: model.ContentTypePDF,
		SizeBytes:   len(r.output.Data),
	}
}
