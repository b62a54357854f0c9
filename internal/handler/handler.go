// Package handler executes a fixture against the HubSpot API and reports the
// outcome according to the fixture's error handling policy.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/hubspotrun/internal/auth"
	"github.com/loykin/hubspotrun/internal/common"
	"github.com/loykin/hubspotrun/internal/constants"
	"github.com/loykin/hubspotrun/internal/env"
	"github.com/loykin/hubspotrun/internal/httpc"
	"github.com/loykin/hubspotrun/internal/metrics"
	"github.com/loykin/hubspotrun/internal/retry"
	"github.com/loykin/hubspotrun/internal/store"
	"github.com/loykin/hubspotrun/pkg/fixture"
	"golang.org/x/time/rate"
)

// Result is what the handler hands back to its caller.
type Result struct {
	ResponseBody        string `json:"response_body"`
	ResponseCode        int    `json:"response_code"`
	HandlerErrorMessage string `json:"handler_error_message"`
}

// Executor runs one fixture.
type Executor interface {
	Execute(ctx context.Context, in fixture.Input) (Result, error)
}

// Recorder persists executions. *store.Store satisfies it.
type Recorder interface {
	Record(r store.Run) (store.Run, error)
}

type Options struct {
	// Client sends the requests. Nil builds one with httpc defaults.
	Client *resty.Client
	// Env renders {{.env.x}} references in path and body.
	Env *env.Env
	// Auth selects the credential method. Nil means private_app.
	Auth *auth.Auth
	// Retry overrides retry.DefaultRetryConfig.
	Retry *retry.Config
	// Limiter paces requests. Nil means 10 req/s with burst 1.
	Limiter *rate.Limiter
	// Recorder, when set, receives one run per execution.
	Recorder Recorder
}

// Handler is the network-backed Executor.
type Handler struct {
	client   *resty.Client
	env      *env.Env
	auth     *auth.Auth
	retry    *retry.Config
	limiter  *rate.Limiter
	recorder Recorder
}

// New builds a Handler with defaults for every unset option.
func New(opts Options) *Handler {
	h := &Handler{
		client:   opts.Client,
		env:      opts.Env,
		auth:     opts.Auth,
		retry:    opts.Retry,
		limiter:  opts.Limiter,
		recorder: opts.Recorder,
	}
	if h.client == nil {
		h.client = (&httpc.Httpc{}).New()
	}
	if h.env == nil {
		h.env = env.New()
	}
	if h.retry == nil {
		h.retry = retry.DefaultRetryConfig()
	}
	if h.limiter == nil {
		h.limiter = rate.NewLimiter(rate.Limit(constants.DefaultRateLimit), constants.DefaultRateBurst)
	}
	return h
}

// JoinURL appends path to the API location with exactly one slash between them.
func JoinURL(location, path string) string {
	return strings.TrimRight(strings.TrimSpace(location), "/") + "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
}

// Execute validates and sends the fixture's request.
//
// Failures are reported according to parameters.error_handling: "Raise Error"
// returns an *Error next to the partial result, any other label returns the
// result with HandlerErrorMessage set and a nil error.
func (h *Handler) Execute(ctx context.Context, in fixture.Input) (Result, error) {
	start := time.Now()
	method := in.Parameters.NormalizedMethod()
	logger := common.GetLogger().WithComponent("handler")
	logf := logger.Debug
	if in.Info.DebugEnabled() {
		logf = logger.Info
	}

	res, herr, path := h.execute(ctx, in, method, logf)

	metrics.ObserveRequest(method, herr != nil, time.Since(start))
	h.record(in, method, path, res, herr)

	return applyPolicy(in.Parameters, res, herr)
}

func (h *Handler) execute(ctx context.Context, in fixture.Input, method string, logf func(string, ...any)) (Result, *Error, string) {
	path := in.Parameters.Path
	if err := in.Validate(); err != nil {
		return Result{}, &Error{Kind: ErrInvalidInput, Message: err.Error(), Err: err}, path
	}

	path = h.env.Render(path)
	body, err := h.env.RenderStrict(in.Parameters.Body)
	if err != nil {
		return Result{}, &Error{Kind: ErrInvalidInput, Message: err.Error(), Err: err}, path
	}
	if strings.TrimSpace(body) != "" {
		if _, err := (fixture.RequestSpec{Body: body}).BodyObject(); err != nil {
			return Result{}, &Error{Kind: ErrInvalidInput, Message: "rendered " + err.Error(), Err: err}, path
		}
	}
	url := JoinURL(in.Info.APILocation, path)

	inject, err := h.auth.Resolve(ctx, h.env, auth.Credentials{
		APIKey:      in.Info.APIKey,
		APILocation: in.Info.APILocation,
	})
	if err != nil {
		return Result{}, &Error{Kind: ErrRequestFailed, Message: err.Error(), Err: err}, path
	}

	reqLog := common.GetLogger().WithComponent("handler").WithRequest(method, url)
	logf("sending request", "method", method, "url", url, "body", body)

	var resp *resty.Response
	err = retry.WithRetry(ctx, h.retry, func() error {
		if werr := h.limiter.Wait(ctx); werr != nil {
			return werr
		}
		req := h.client.R().SetContext(ctx).SetHeader("Accept", "application/json")
		if strings.TrimSpace(body) != "" {
			req.SetHeader("Content-Type", "application/json").SetBody(body)
		}
		inject.Apply(req)

		r, rerr := req.Execute(method, url)
		resp = r
		if rerr != nil {
			// the request may have reached HubSpot; resending could duplicate it
			if !retry.IsIdempotent(method) {
				return &retry.PermanentError{Err: rerr}
			}
			return rerr
		}
		if h.retry.IsRetryableStatus(r.StatusCode()) {
			return &retry.StatusError{Code: r.StatusCode()}
		}
		return nil
	})

	var se *retry.StatusError
	if err != nil && !errors.As(err, &se) {
		reqLog.Error("request failed", "error", err)
		return Result{}, &Error{Kind: ErrRequestFailed, Message: err.Error(), Err: err}, path
	}

	code := resp.StatusCode()
	respBody := string(resp.Body())
	logf("received response", "status", code, "body", respBody, "duration", resp.Time())

	res := Result{ResponseBody: respBody, ResponseCode: code}
	if code >= http.StatusBadRequest {
		msg := ResponseMessage(code, respBody)
		reqLog.Warn("request returned an error status", "status", code, "message", msg)
		return res, &Error{Kind: ErrRequestFailed, StatusCode: code, Message: msg}, path
	}
	return res, nil, path
}

func (h *Handler) record(in fixture.Input, method, path string, res Result, herr *Error) {
	if h.recorder == nil {
		return
	}
	run := store.Run{
		Method:     method,
		Path:       path,
		StatusCode: res.ResponseCode,
		Failed:     herr != nil,
	}
	if herr != nil {
		run.ErrorMessage = herr.Message
	}
	if res.ResponseBody != "" {
		b := res.ResponseBody
		run.ResponseBody = &b
	}
	if _, err := h.recorder.Record(run); err != nil {
		common.GetLogger().WithComponent("handler").Warn("failed to record run", "error", err, "path", in.Parameters.Path)
	}
}

func applyPolicy(p fixture.RequestSpec, res Result, herr *Error) (Result, error) {
	if herr == nil {
		return res, nil
	}
	if p.RaiseErrors() {
		return res, herr
	}
	res.HandlerErrorMessage = herr.Message
	return res, nil
}
