package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/freshpoint/internal/adapters/http/site"
	"github.com/okian/freshpoint/internal/adapters/opendata"
	service "github.com/okian/freshpoint/internal/app"
	"github.com/okian/freshpoint/internal/domain/text"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrMissingBody         = errors.New("no request body")
	ErrBodyTooLarge        = errors.New("request body too large")
	ErrNotFound            = errors.New("not found")
	ErrResourceUnavailable = site.ErrResourceUnavailable
	ErrInternal            = errors.New("internal error")
)

// KindError tags an error with the operation that produced it and the
// sentinel kind used to pick the response status.
type KindError struct {
	Op   string
	Kind error
	Err  error
}

func (e *KindError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *KindError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// WrapKind tags err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &KindError{Op: op, Kind: kind, Err: err}
}

// NewKind returns a KindError with no underlying cause.
func NewKind(op string, kind error) error {
	return &KindError{Op: op, Kind: kind}
}

// DetailError carries a client-safe message alongside the underlying cause.
// Only Msg reaches the response body.
type DetailError struct {
	Msg string
	Err error
}

func (e *DetailError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *DetailError) Unwrap() error { return e.Err }

// Detail returns err annotated with a message fit for clients.
func Detail(msg string, err error) error {
	return &DetailError{Msg: msg, Err: err}
}

// errorClass is the response contract for one error kind.
type errorClass struct {
	status int
	code   string
	kind   error
}

// classify maps an error to its status, machine-readable code and the kind
// whose message is shown to clients.
// Order matters: the most specific kinds are checked first.
func classify(err error) errorClass {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes), errors.Is(err, ErrBodyTooLarge):
		return errorClass{http.StatusRequestEntityTooLarge, "body_too_large", ErrBodyTooLarge}
	case errors.Is(err, ErrMissingBody):
		return errorClass{http.StatusBadRequest, "missing_body", ErrMissingBody}
	case errors.Is(err, text.ErrTypeMismatch):
		return errorClass{http.StatusUnprocessableEntity, "type_mismatch", text.ErrTypeMismatch}
	case errors.Is(err, service.ErrNegativeIndex):
		return errorClass{http.StatusBadRequest, "bad_request", service.ErrNegativeIndex}
	case errors.Is(err, ErrBadRequest):
		return errorClass{http.StatusBadRequest, "bad_request", ErrBadRequest}
	case errors.Is(err, service.ErrRecordNotFound):
		return errorClass{http.StatusNotFound, "not_found", service.ErrRecordNotFound}
	case errors.Is(err, ErrNotFound):
		return errorClass{http.StatusNotFound, "not_found", ErrNotFound}
	case errors.Is(err, opendata.ErrUpstream):
		return errorClass{http.StatusBadGateway, "upstream_failure", opendata.ErrUpstream}
	case errors.Is(err, ErrResourceUnavailable):
		return errorClass{http.StatusInternalServerError, "resource_unavailable", ErrResourceUnavailable}
	default:
		return errorClass{http.StatusInternalServerError, "internal_error", ErrInternal}
	}
}

// publicMessage is the kind's message, followed on 4xx by any DetailError
// text found in the chain. Operation names and raw causes never reach clients.
func publicMessage(c errorClass, err error) string {
	if c.code == "internal_error" || c.kind == nil {
		return http.StatusText(c.status)
	}
	msg := c.kind.Error()
	if c.status >= http.StatusInternalServerError {
		return msg
	}
	var d *DetailError
	if errors.As(err, &d) && d.Msg != "" {
		msg += ": " + d.Msg
	}
	return msg
}
