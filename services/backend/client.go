// Package backend calls the syllabus REST backend that owns the table data.
package backend

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/syllabus/core"
	"github.com/trezcool/syllabus/core/table"
)

type Client struct {
	baseURL string
	rest    *rest.Client
	logger  core.Logger
}

var _ table.Transport = (*Client)(nil) // interface compliance check

func NewClient(conf *core.Config, logger core.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(conf.Backend.BaseURL, "/"),
		rest:    &rest.Client{HTTPClient: &http.Client{Timeout: conf.Backend.Timeout}},
		logger:  logger,
	}
}

// Do sends req to the backend. Non-2xx answers are not errors: callers inspect the status code.
func (c *Client) Do(ctx context.Context, req table.Request) (table.Response, error) {
	r := rest.Request{
		Method:      rest.Method(req.Method),
		BaseURL:     c.baseURL + req.Path,
		Headers:     map[string]string{"Accept": "application/json"},
		QueryParams: req.Query,
		Body:        req.Body,
	}
	if len(req.Body) > 0 {
		r.Headers["Content-Type"] = "application/json"
	}

	start := time.Now()
	res, err := c.rest.SendWithContext(ctx, r)
	if err != nil {
		if ctx.Err() != nil {
			return table.Response{}, ctx.Err()
		}
		return table.Response{}, errors.Wrapf(err, "%s %s", req.Method, req.Path)
	}
	c.logger.Debug("backend: " + req.Method + " " + req.Path + " " + http.StatusText(res.StatusCode) + " in " + time.Since(start).String())
	return table.Response{StatusCode: res.StatusCode, Body: []byte(res.Body)}, nil
}
