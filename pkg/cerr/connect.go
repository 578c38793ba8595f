package cerr

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/kazz187/wbsgantt/pkg/storage"
)

// FieldViolator is a domain error that lists the fields it rejected, such as
// a task tree failing validation.
type FieldViolator interface {
	error
	FieldViolations(yield func(ruleID, msg string))
}

// NewViolationError reports fv as InvalidArgument with one violation detail
// per rejected field. A non-empty prefix is joined to every rule id with a
// dot.
func NewViolationError(msg, prefix string, fv FieldViolator) *Error {
	cErr := NewError(InvalidArgument, msg, fv)
	fv.FieldViolations(func(ruleID, violationMsg string) {
		if prefix != "" {
			ruleID = prefix + "." + ruleID
		}
		cErr.AddViolation(ruleID, violationMsg)
	})
	return cErr
}

// Normalize gives a code to the errors handlers commonly return unwrapped:
// field violations, missing storage paths and expired deadlines. *Error and
// anything else pass through unchanged.
func Normalize(err error) error {
	if err == nil {
		return nil
	}
	var cErr *Error
	if errors.As(err, &cErr) {
		return err
	}
	var fv FieldViolator
	switch {
	case errors.As(err, &fv):
		return NewViolationError("invalid argument", "", fv)
	case errors.Is(err, storage.ErrNotFound):
		return NewError(NotFound, "not found", err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(DeadlineExceeded, "deadline exceeded", err)
	}
	return err
}

type convertConnectErrorInterceptor struct{}

// NewConvertConnectErrorInterceptor logs handler errors and converts them,
// after Normalize, into connect errors.
func NewConvertConnectErrorInterceptor() connect.Interceptor {
	return &convertConnectErrorInterceptor{}
}

func (i *convertConnectErrorInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		resp, err := next(ctx, req)
		return resp, ExtractConnectError(ctx, Normalize(err))
	}
}

func (i *convertConnectErrorInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (i *convertConnectErrorInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		return ExtractConnectError(ctx, Normalize(next(ctx, conn)))
	}
}
