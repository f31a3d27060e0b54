package workos

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const DefaultAPIHostname = "api.workos.com"

// AppInfo identifies the integration in the User-Agent of every request.
type AppInfo struct {
	Name    string
	Version string
}

// Options configure a Client.
type Options struct {
	APIHostname string
	HTTPS       bool
	// Port overrides the scheme default when non-zero.
	Port       int
	AppInfo    AppInfo
	HTTPClient *http.Client
}

// Client talks to the hosted authentication API.
type Client struct {
	apiKey  string
	options Options
	baseURL *url.URL
	http    *http.Client
}

// New creates a client. An empty APIHostname selects DefaultAPIHostname.
func New(apiKey string, opts Options) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	if opts.APIHostname == "" {
		opts.APIHostname = DefaultAPIHostname
	}

	scheme := "http"
	if opts.HTTPS {
		scheme = "https"
	}
	host := opts.APIHostname
	if opts.Port != 0 {
		host = net.JoinHostPort(opts.APIHostname, strconv.Itoa(opts.Port))
	}

	base := opts.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	httpClient := *base
	httpClient.Transport = &userAgentTransport{
		next:      transport,
		userAgent: userAgent(opts.AppInfo),
	}

	return &Client{
		apiKey:  apiKey,
		options: opts,
		baseURL: &url.URL{Scheme: scheme, Host: host},
		http:    &httpClient,
	}, nil
}

// Options returns the options the client was created with, defaults applied.
func (c *Client) Options() Options {
	return c.options
}

// BaseURL returns the API root, e.g. https://api.workos.com.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// UserManagement returns the user management API.
func (c *Client) UserManagement() *UserManagement {
	return &UserManagement{client: c}
}

func (c *Client) endpoint(path string) string {
	u := *c.baseURL
	u.Path = path
	return u.String()
}

func userAgent(info AppInfo) string {
	ua := "workos-go"
	if info.Name != "" {
		ua = fmt.Sprintf("%s %s/%s", ua, info.Name, info.Version)
	}
	return ua
}

type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.next.RoundTrip(req)
}

// withFormParams returns a copy of the HTTP client that adds extra to the
// form body of every POST. It carries parameters the oauth2 refresh request
// has no option for.
func (c *Client) withFormParams(extra url.Values) *http.Client {
	if len(extra) == 0 {
		return c.http
	}
	hc := *c.http
	hc.Transport = &formParamsTransport{next: c.http.Transport, extra: extra}
	return &hc
}

type formParamsTransport struct {
	next  http.RoundTripper
	extra url.Values
}

func (t *formParamsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodPost || req.Body == nil ||
		!strings.HasPrefix(req.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		return t.next.RoundTrip(req)
	}

	raw, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, err
	}
	form, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, err
	}
	for key, values := range t.extra {
		form[key] = values
	}

	body := form.Encode()
	req = req.Clone(req.Context())
	req.Body = io.NopCloser(strings.NewReader(body))
	req.ContentLength = int64(len(body))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(body)), nil
	}
	return t.next.RoundTrip(req)
}
