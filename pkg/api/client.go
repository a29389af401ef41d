// Package api performs the GET requests the store is populated from.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grovetools/casemgmt/config"
	storeerrors "github.com/grovetools/casemgmt/errors"
	"github.com/grovetools/casemgmt/logging"
	"github.com/grovetools/casemgmt/pkg/models"
	"github.com/grovetools/casemgmt/pkg/profiling"
	"github.com/sirupsen/logrus"
)

// Fixed request headers.
const (
	HeaderAuthorization = "Authorization"
	HeaderGUI           = "GUI"
	HeaderEnvironment   = "Use-Live-Api-For-Import-Frozen"

	GUIName = "Case Management"
)

// Getter issues one GET and hands the response's data field to onSuccess.
// onSuccess is not called when the request fails.
type Getter interface {
	Get(ctx context.Context, endpoint string, onSuccess func(data json.RawMessage)) error
}

// EnvironmentFunc reports the environment a request should target. It is
// read once per request, when the request is issued.
type EnvironmentFunc func() models.Environment

// Client is the HTTP implementation of Getter.
type Client struct {
	api        config.APIConfig
	env        EnvironmentFunc
	httpClient *http.Client
	logger     *logrus.Entry
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *logrus.Entry) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client. A nil env always targets the environment
// configured in api.use_live.
func NewClient(api config.APIConfig, env EnvironmentFunc, opts ...Option) *Client {
	if env == nil {
		initial := api.Environment()
		env = func() models.Environment { return initial }
	}
	c := &Client{
		api: api,
		env: env,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.logger == nil {
		c.logger = logging.NewLogger("api")
	}
	return c
}

// URL returns the absolute URL for endpoint in env.
func (c *Client) URL(endpoint string, env models.Environment) string {
	return c.api.URL(env) + "/" + strings.TrimLeft(endpoint, "/")
}

// Get performs GET {baseURL}/{endpoint}. The endpoint may carry a query string.
func (c *Client) Get(ctx context.Context, endpoint string, onSuccess func(data json.RawMessage)) error {
	defer profiling.Start("GET " + endpoint).Stop()

	env := c.env()
	url := c.URL(endpoint, env)

	log := c.logger.WithFields(logrus.Fields{
		"fetch_id":    uuid.NewString(),
		"endpoint":    endpoint,
		"environment": env.String(),
	})

	if timeout := c.api.RequestTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return storeerrors.Transport(endpoint, err)
	}
	req.Header.Set(HeaderAuthorization, c.api.APIToken())
	req.Header.Set(HeaderGUI, GUIName)
	req.Header.Set(HeaderEnvironment, env.HeaderValue())

	start := time.Now()
	log.Debug("Fetching")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("Request failed")
		return storeerrors.Transport(endpoint, err)
	}
	defer resp.Body.Close()

	log = log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start).Round(time.Millisecond),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("Unexpected status")
		return storeerrors.HTTPStatus(endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return storeerrors.Transport(endpoint, err)
	}

	data, err := extractData(endpoint, body)
	if err != nil {
		log.WithError(err).Warn("Unusable response body")
		return err
	}

	log.Debug("Fetched")
	onSuccess(data)
	return nil
}

func extractData(endpoint string, body []byte) (json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, storeerrors.MalformedBody(endpoint, err)
	}
	data, ok := envelope["data"]
	if !ok || string(data) == "null" {
		return nil, storeerrors.MissingData(endpoint)
	}
	return data, nil
}
