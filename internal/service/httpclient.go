package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/CovenantEyes/winsparkle/internal/errs"
	"github.com/CovenantEyes/winsparkle/internal/logger"
	"github.com/CovenantEyes/winsparkle/internal/utils"
)

const (
	DefaultMaxFeedBytes = 4 << 20
	DefaultUserAgent    = "winsparkle"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type DefaultHTTPClient struct{ *http.Client }

const maxRedirects = 10

// NewHTTPClient builds a client whose timeout bounds connection setup and
// response headers only, so long downloads are limited by ctx instead.
func NewHTTPClient(timeout time.Duration) *DefaultHTTPClient {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.ResponseHeaderTimeout = timeout
	tr.TLSHandshakeTimeout = timeout
	return WrapClient(&http.Client{Transport: tr})
}

// WrapClient copies c and makes it refuse redirects that leave https.
func WrapClient(c *http.Client) *DefaultHTTPClient {
	cp := *c
	cp.CheckRedirect = secureRedirect
	return &DefaultHTTPClient{Client: &cp}
}

// secureRedirect runs before a redirected request is sent.
func secureRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if req.URL.Scheme != "https" || req.URL.Host == "" {
		return errs.Newf(errs.InsecureTransport, "redirect", "insecure redirect rejected: %s", utils.Redact(req.URL))
	}
	return nil
}

// Destination receives a streamed download.
type Destination interface {
	io.Writer
	SetLength(total uint64)
	SetFilename(name string) error
}

// HTTPTransport fetches feeds and artifacts over HTTPS only.
type HTTPTransport struct {
	Client       HTTPClient
	MaxFeedBytes int64
	UserAgent    string
	Headers      map[string]string
}

func NewHTTPTransport(client HTTPClient) *HTTPTransport {
	if client == nil {
		client = NewHTTPClient(30 * time.Second)
	}
	return &HTTPTransport{
		Client:       client,
		MaxFeedBytes: DefaultMaxFeedBytes,
		UserAgent:    DefaultUserAgent,
	}
}

// Fetch downloads a feed document into memory.
func (t *HTTPTransport) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := t.get(ctx, url, "appcast feed")
	if err != nil {
		return nil, err
	}
	defer utils.Try(resp.Body.Close)

	limit := t.MaxFeedBytes
	if limit <= 0 {
		limit = DefaultMaxFeedBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, classify(ctx, "fetch", err)
	}
	if int64(len(body)) > limit {
		return nil, errs.Newf(errs.DownloadFailure, "fetch", "feed larger than %s", utils.HumanSize(uint64(limit)))
	}
	return body, nil
}

// Download streams url into dst. The file name comes from
// Content-Disposition, falling back to the last URL path element.
func (t *HTTPTransport) Download(ctx context.Context, url string, dst Destination) error {
	resp, err := t.get(ctx, url, "update file")
	if err != nil {
		return err
	}
	defer utils.Try(resp.Body.Close)

	if resp.ContentLength > 0 {
		dst.SetLength(uint64(resp.ContentLength))
	}

	name := filenameFromHeader(resp.Header.Get("Content-Disposition"))
	if name == "" && resp.Request != nil && resp.Request.URL != nil {
		name = utils.PathBase(resp.Request.URL.String())
	}
	if name == "" {
		name = utils.PathBase(url)
	}
	if name == "" {
		name = "update-installer"
	}
	if err := dst.SetFilename(name); err != nil {
		return err
	}

	n, err := io.Copy(dst, resp.Body)
	if err != nil {
		var coded *errs.Error
		if errors.As(err, &coded) {
			return err
		}
		return classify(ctx, "download", err)
	}
	if resp.ContentLength > 0 && n != resp.ContentLength {
		return errs.Newf(errs.DownloadFailure, "download", "received %d of %d bytes", n, resp.ContentLength)
	}

	logger.Debug("Downloaded %s (%s)", name, utils.HumanSize(uint64(n)))
	return nil
}

func (t *HTTPTransport) get(ctx context.Context, raw, what string) (*http.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.New(errs.Cancelled, what, err)
	}

	parsed, err := utils.ParseSecureURL(raw, what)
	if err != nil {
		logger.Debug("Rejected %s URL: %v", what, err)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), http.NoBody)
	if err != nil {
		return nil, errs.New(errs.DownloadFailure, what, fmt.Errorf("failed to create request: %w", err))
	}
	if t.UserAgent != "" {
		req.Header.Set("User-Agent", t.UserAgent)
	}
	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		logger.Debug("Failed to perform request: %v", err)
		var coded *errs.Error
		if errors.As(err, &coded) && coded.Code == errs.InsecureTransport {
			return nil, coded
		}
		return nil, classify(ctx, what, err)
	}

	if resp.StatusCode != http.StatusOK {
		utils.Try(resp.Body.Close)
		logger.Debug("Received non-200 response: %d", resp.StatusCode)
		return nil, errs.Newf(errs.DownloadFailure, what, "non-200 response: %d", resp.StatusCode)
	}

	// redirects must stay on https too
	if resp.Request != nil && resp.Request.URL != nil && resp.Request.URL.Scheme != "https" {
		utils.Try(resp.Body.Close)
		return nil, errs.Newf(errs.InsecureTransport, what, "redirected to %s", utils.Redact(resp.Request.URL))
	}

	return resp, nil
}

func classify(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return errs.New(errs.Cancelled, op, ctx.Err())
	}
	return errs.New(errs.DownloadFailure, op, err)
}

func filenameFromHeader(h string) string {
	if h == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(h)
	if err != nil {
		return ""
	}
	return params["filename"]
}
