package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-kit/kit/endpoint"
	"github.com/ijalalfrz/flight-price-crawler/internal/app/dto"
	"github.com/ijalalfrz/flight-price-crawler/internal/pkg/exception"
)

type DecodeRequestFunc func(r *http.Request) (interface{}, error)

type EncodeResponseFunc func(ctx context.Context, w http.ResponseWriter, response interface{}) error

// MakeHandlerFunc adapts an endpoint to an http.HandlerFunc. Decode and
// endpoint errors are written with ErrorResponse.
func MakeHandlerFunc(ep endpoint.Endpoint, dec DecodeRequestFunc, enc EncodeResponseFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		req, err := dec(r)
		if err != nil {
			ErrorResponse(ctx, err, w)
			return
		}

		resp, err := ep(ctx, req)
		if err != nil {
			ErrorResponse(ctx, err, w)
			return
		}

		if err := enc(ctx, w, resp); err != nil {
			ErrorResponse(ctx, err, w)
		}
	}
}

var errInvalidBody = exception.ApplicationError{
	Message:    "invalid request body",
	StatusCode: http.StatusBadRequest,
}

// DecodeRequest decodes a JSON body into a new T and runs its Bind hook. An
// empty body binds the zero value.
func DecodeRequest[T any, PT interface {
	*T
	render.Binder
}](r *http.Request) (interface{}, error) {
	req := PT(new(T))

	if r.ContentLength == 0 {
		if err := req.Bind(r); err != nil {
			return nil, badRequest(err)
		}

		return req, nil
	}

	if err := render.Bind(r, req); err != nil {
		return nil, badRequest(err)
	}

	return req, nil
}

func badRequest(err error) error {
	var appErr exception.ApplicationError
	if errors.As(err, &appErr) {
		return appErr
	}

	return errInvalidBody.Wrap(err)
}

// DecodeGetCrawlRequest reads the run id from the {id} path parameter.
func DecodeGetCrawlRequest(r *http.Request) (interface{}, error) {
	req := &dto.GetCrawlRequest{ID: chi.URLParam(r, "id")}

	if err := dto.ValidateSingleError(req); err != nil {
		return nil, exception.ApplicationError{
			StatusCode: http.StatusBadRequest,
			Message:    err.Error(),
		}
	}

	return req, nil
}
