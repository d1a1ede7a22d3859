package api

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the Pure360 response interface host.
	DefaultBaseURL = "https://response.pure360.com/interface"
	DefaultTimeout = 30 * time.Second
)

const (
	listUploadMetaPath = "/list_upload_meta.php"
	listUploadDataPath = "/list_upload_data.php"
	listPath           = "/list.php"
	oneToOnePath       = "/common/one2OneCreate.php"
)

// Endpoints holds the absolute URL of every interface script the client posts to.
type Endpoints struct {
	ListUploadMeta string `json:"list_upload_meta" mapstructure:"list_upload_meta"`
	ListUploadData string `json:"list_upload_data" mapstructure:"list_upload_data"`
	List           string `json:"list" mapstructure:"list"`
	OneToOne       string `json:"one_to_one" mapstructure:"one_to_one"`
}

// DefaultEndpoints returns the production endpoints.
func DefaultEndpoints() Endpoints {
	return EndpointsFromBase(DefaultBaseURL)
}

// EndpointsFromBase builds endpoints by appending the fixed script paths to baseURL.
func EndpointsFromBase(baseURL string) Endpoints {
	base := strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	return Endpoints{
		ListUploadMeta: base + listUploadMetaPath,
		ListUploadData: base + listUploadDataPath,
		List:           base + listPath,
		OneToOne:       base + oneToOnePath,
	}
}

// Merge returns e with every empty field taken from fallback.
func (e Endpoints) Merge(fallback Endpoints) Endpoints {
	if e.ListUploadMeta == "" {
		e.ListUploadMeta = fallback.ListUploadMeta
	}
	if e.ListUploadData == "" {
		e.ListUploadData = fallback.ListUploadData
	}
	if e.List == "" {
		e.List = fallback.List
	}
	if e.OneToOne == "" {
		e.OneToOne = fallback.OneToOne
	}
	return e
}

// Client is the Pure360 API client.
//
// It holds configuration only: every operation takes its credentials
// explicitly, so one Client can be shared between goroutines and accounts.
type Client struct {
	Endpoints Endpoints
	HTTP      *http.Client
	UserAgent string

	now func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used as transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.HTTP = hc
		}
	}
}

// WithEndpoints overrides the endpoint URLs. Empty fields keep their defaults.
func WithEndpoints(e Endpoints) Option {
	return func(c *Client) {
		c.Endpoints = e.Merge(c.Endpoints)
	}
}

// WithBaseURL points every endpoint at baseURL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.Endpoints = EndpointsFromBase(baseURL)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.UserAgent = ua
	}
}

// WithTimeout sets the HTTP client timeout. A client given to WithHTTPClient
// is copied, not modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			return
		}
		hc := http.Client{}
		if c.HTTP != nil {
			hc = *c.HTTP
		}
		hc.Timeout = d
		c.HTTP = &hc
	}
}

// WithClock sets the clock used for default delivery times.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a Pure360 API client with production endpoints.
func New(opts ...Option) *Client {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12

	c := &Client{
		Endpoints: DefaultEndpoints(),
		HTTP: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: transport,
		},
		UserAgent: "pure360-cli",
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate checks that every endpoint is set.
func (c *Client) Validate() error {
	missing := []string{}
	if c.Endpoints.ListUploadMeta == "" {
		missing = append(missing, "list_upload_meta")
	}
	if c.Endpoints.ListUploadData == "" {
		missing = append(missing, "list_upload_data")
	}
	if c.Endpoints.List == "" {
		missing = append(missing, "list")
	}
	if c.Endpoints.OneToOne == "" {
		missing = append(missing, "one_to_one")
	}
	if len(missing) > 0 {
		return fmt.Errorf("endpoints not configured: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return &http.Client{Timeout: DefaultTimeout}
	}
	return c.HTTP
}

func (c *Client) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}
