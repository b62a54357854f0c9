package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/hubspotrun/internal/auth"
	"github.com/loykin/hubspotrun/internal/common"
	"github.com/loykin/hubspotrun/internal/handler"
	"github.com/tidwall/gjson"
)

var (
	// ErrConnection wraps transport failures.
	ErrConnection = errors.New("bridge: unable to connect to the HubSpot API")
	// ErrServerMessage is returned when a response carries a "message" field.
	ErrServerMessage = errors.New("bridge: the server responded with an error")
	// ErrResponseStatus is returned for responses with status >= 400.
	ErrResponseStatus = errors.New("bridge: unexpected response status")
)

// apiHelper sends bridge requests and converts HubSpot error bodies into errors.
type apiHelper struct {
	client  *resty.Client
	baseURL string
	inject  auth.Injector
}

func (h *apiHelper) get(ctx context.Context, path string, params url.Values) (gjson.Result, error) {
	req := h.client.R().SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetQueryParamsFromValues(params)
	return h.execute(req, http.MethodGet, path)
}

func (h *apiHelper) post(ctx context.Context, path string, body []byte) (gjson.Result, error) {
	req := h.client.R().SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	return h.execute(req, http.MethodPost, path)
}

func (h *apiHelper) execute(req *resty.Request, method, path string) (gjson.Result, error) {
	h.inject.Apply(req)
	u := handler.JoinURL(h.baseURL, path)
	logger := common.GetLogger().WithComponent("bridge-api").WithRequest(method, u)

	start := time.Now()
	resp, err := req.Execute(method, u)
	if err != nil {
		logger.Error("bridge request failed", "error", err)
		return gjson.Result{}, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	logger.Debug("received bridge response", "status", resp.StatusCode(), "duration", time.Since(start))

	body := strings.TrimSpace(string(resp.Body()))
	out := gjson.Parse("{}")
	if gjson.Valid(body) && gjson.Parse(body).IsObject() {
		out = gjson.Parse(body)
		if msg := out.Get("message"); msg.Exists() {
			return gjson.Result{}, fmt.Errorf("%w: %q", ErrServerMessage, msg.String())
		}
	} else if body != "" {
		logger.Warn("response body is not a JSON object", "status", resp.StatusCode())
	}

	if code := resp.StatusCode(); code >= http.StatusBadRequest {
		return gjson.Result{}, fmt.Errorf("%w: %s", ErrResponseStatus, handler.StatusMessage(code))
	}
	return out, nil
}
