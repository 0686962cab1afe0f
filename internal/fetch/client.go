// Package fetch is the transport collaborator: an HTTP client with retry,
// header/cookie injection, optional Cloudflare bypass and charset-aware
// body decoding. The parsing core only ever sees the Fetcher interface.
package fetch

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/brogergvhs/bookd/internal/parser"
	"github.com/brogergvhs/bookd/internal/ui"
	"golang.org/x/net/html/charset"
)

type Options struct {
	Timeout    time.Duration
	UserAgent  string
	Cookie     string
	CookieFile string
	// Bypass installs the Cloudflare browser-profile transport.
	Bypass    bool
	Retries   int
	Backoff   time.Duration
	Transport http.RoundTripper
	Logger    *ui.Logger
}

type Client struct {
	http    *http.Client
	retries int
	backoff time.Duration
	log     *ui.Logger
}

func NewClient(opts Options) (*Client, error) {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Retries == 0 {
		opts.Retries = 3
	}
	if opts.Backoff == 0 {
		opts.Backoff = 500 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = ui.NewSilentLogger()
	}

	jar, _ := cookiejar.New(nil)

	var base http.RoundTripper
	if opts.Transport != nil {
		base = opts.Transport
	} else {
		base = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxConnsPerHost:     100,
			MaxIdleConnsPerHost: 100,
			ForceAttemptHTTP2:   true,
		}
	}

	var rt http.RoundTripper = roundTripper{
		base:         base,
		ua:           PickUserAgent(opts.UserAgent),
		cookieHeader: joinCookies(opts.Cookie, opts.CookieFile),
		log:          opts.Logger,
	}
	if opts.Bypass {
		rt = cloudflarebp.AddCloudFlareByPass(rt)
	}

	return &Client{
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: rt,
			Jar:       jar,
		},
		retries: opts.Retries,
		backoff: opts.Backoff,
		log:     opts.Logger,
	}, nil
}

// Fetch performs a GET with the retry policy and returns the raw body.
// Every transport failure, timeouts included, comes back as a
// *parser.FetchError.
func (c *Client) Fetch(ctx context.Context, url string) (*parser.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &parser.FetchError{URL: url, Err: err}
	}

	resp, err := c.doWithRetry(req)
	if err != nil {
		return nil, &parser.FetchError{URL: url, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &parser.FetchError{URL: url, Err: err}
	}

	return &parser.Response{
		Status:      resp.StatusCode,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// ForEncoding wraps the client in a Fetcher that decodes bodies to UTF-8
// per the source's configured encoding label (e.g. "gbk"). An empty or
// UTF-8 label falls back to content-type/meta sniffing.
func (c *Client) ForEncoding(label string) parser.Fetcher {
	return parser.FetcherFunc(func(ctx context.Context, url string) (*parser.Response, error) {
		resp, err := c.Fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		resp.Body = decodeBody(resp.Body, resp.ContentType, label)
		return resp, nil
	})
}

func decodeBody(body []byte, contentType, label string) []byte {
	var r io.Reader
	var err error

	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "utf-8", "utf8":
		r, err = charset.NewReader(bytes.NewReader(body), contentType)
	default:
		r, err = charset.NewReaderLabel(label, bytes.NewReader(body))
	}
	if err != nil {
		return body
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return body
	}
	return out
}

// doWithRetry executes the request with linear backoff. 5xx responses and
// transport errors retry; anything below 500 is returned to the caller.
func (c *Client) doWithRetry(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	for i := 1; i <= c.retries; i++ {
		resp, err = c.http.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(c.backoff * time.Duration(i)):
		}
	}

	if err == nil && resp != nil {
		return nil, fmt.Errorf("HTTP %d after %d attempts", resp.StatusCode, c.retries)
	}
	return nil, err
}

type roundTripper struct {
	base         http.RoundTripper
	ua           string
	cookieHeader string
	log          *ui.Logger
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt.ua != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", rt.ua)
	}

	if rt.cookieHeader != "" && req.Header.Get("Cookie") == "" {
		req.Header.Set("Cookie", rt.cookieHeader)
	}

	rt.log.Debugf("HTTP %s %s", req.Method, req.URL.String())

	return rt.base.RoundTrip(req)
}

func joinCookies(inline, file string) string {
	s := strings.TrimSpace(inline)
	if file != "" {
		if b, err := os.ReadFile(file); err == nil {
			// first non-empty line
			sc := bufio.NewScanner(strings.NewReader(string(b)))
			for sc.Scan() {
				line := strings.TrimSpace(sc.Text())
				if line != "" {
					if s == "" {
						s = line
					} else {
						s = s + "; " + line
					}
					break
				}
			}
		}
	}

	return s
}

func PickUserAgent(override string) string {
	if override != "" {
		return override
	}

	return "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
}
