package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	resty "github.com/go-resty/resty/v2"

	"github.com/rzbill/partysearch/internal/feed"
	"github.com/rzbill/partysearch/internal/reference"
)

const (
	RequestTimeout   = 15 * time.Second
	RetryCount       = 2
	RetryWaitTime    = 100 * time.Millisecond
	RetryWaitTimeMax = 2 * time.Second
)

// API is the REST side of the server as seen by viewers and submitters.
type API struct {
	base string
	http *resty.Client
}

// NewAPI returns an API rooted at baseURL, e.g. "http://localhost:8080".
func NewAPI(baseURL string) *API {
	c := resty.New()
	c.SetBaseURL(strings.TrimRight(baseURL, "/"))
	c.SetHeader("Accept", "application/json")
	c.SetTimeout(RequestTimeout)
	c.SetRetryCount(RetryCount)
	c.SetRetryWaitTime(RetryWaitTime)
	c.SetRetryMaxWaitTime(RetryWaitTimeMax)
	c.AddRetryCondition(func(res *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		switch res.StatusCode() {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	})
	return &API{base: strings.TrimRight(baseURL, "/"), http: c}
}

// APIError is a non-2xx response. Kind carries the server's failure kind
// when the body had one.
type APIError struct {
	Status  int
	Kind    string
	Message string
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("http %d %s: %s", e.Status, e.Kind, e.Message)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (a *API) get(ctx context.Context, path string, out any) error {
	var eb errorBody
	res, err := a.http.R().SetContext(ctx).SetResult(out).SetError(&eb).Get(path)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	if res.IsError() {
		return &APIError{Status: res.StatusCode(), Kind: eb.Kind, Message: eb.Error}
	}
	return nil
}

// Maps fetches the map catalog.
func (a *API) Maps(ctx context.Context) ([]reference.Map, error) {
	var out []reference.Map
	return out, a.get(ctx, "/models/maps", &out)
}

// Professions fetches the profession catalog.
func (a *API) Professions(ctx context.Context) ([]reference.Profession, error) {
	var out []reference.Profession
	return out, a.get(ctx, "/models/professions", &out)
}

// Catalog fetches maps and professions together.
func (a *API) Catalog(ctx context.Context) (*reference.Catalog, error) {
	maps, err := a.Maps(ctx)
	if err != nil {
		return nil, err
	}
	profs, err := a.Professions(ctx)
	if err != nil {
		return nil, err
	}
	return reference.New(maps, profs), nil
}

// Baseline fetches every known partition in live feed frame shape.
func (a *API) Baseline(ctx context.Context) (feed.Message, error) {
	var out feed.Message
	return out, a.get(ctx, "/party-search/list", &out)
}

// SubmitResult is the server's acknowledgement of a submission.
type SubmitResult struct {
	Message  string `json:"message"`
	Changed  bool   `json:"changed"`
	Deleted  int    `json:"deleted"`
	Upserted int    `json:"upserted"`
}

// Submit posts one submission body. body is encoded as JSON.
func (a *API) Submit(ctx context.Context, body any) (SubmitResult, error) {
	var out SubmitResult
	var eb errorBody
	res, err := a.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).SetResult(&out).SetError(&eb).
		Post("/party-search")
	if err != nil {
		return out, fmt.Errorf("post /party-search: %w", err)
	}
	if res.IsError() {
		return out, &APIError{Status: res.StatusCode(), Kind: eb.Kind, Message: eb.Error}
	}
	return out, nil
}

// LiveFeedURL maps the base URL onto the WebSocket endpoint.
func (a *API) LiveFeedURL() (string, error) {
	u, err := url.Parse(a.base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "ws", "":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/party-search/live-feed"
	return u.String(), nil
}
