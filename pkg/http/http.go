package http

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/NamanBalaji/mcfetch/internal/logger"
)

const (
	defaultConnectTimeout = 30 * time.Second
	defaultIdleTimeout    = 90 * time.Second
	keepAlivePeriod       = 30 * time.Second
	maxIdleConns          = 100
	tlsHandshakeTimeout   = 10 * time.Second
	expectContinueTimeout = 1 * time.Second
	maxIdleConnsPerHost   = 16

	DefaultUserAgent = "mcfetch/1.0"

	defaultDownloadName = "download"
)

type Client struct {
	*http.Client
}

// NewClient creates a new HTTP client. connectTimeout bounds dialing, the TLS
// handshake and the wait for response headers; a non-positive value uses the
// default. Reading the body is not bounded here.
func NewClient(connectTimeout time.Duration) *Client {
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: keepAlivePeriod,
		}).DialContext,
		MaxIdleConns:          maxIdleConns,
		MaxIdleConnsPerHost:   maxIdleConnsPerHost,
		IdleConnTimeout:       defaultIdleTimeout,
		TLSHandshakeTimeout:   min(tlsHandshakeTimeout, connectTimeout),
		ResponseHeaderTimeout: connectTimeout,
		ExpectContinueTimeout: expectContinueTimeout,
		DisableCompression:    true,
	}

	return &Client{
		&http.Client{
			Transport: transport,
		},
	}
}

// Head performs a HEAD request to the specified URL with optional headers.
func (c *Client) Head(ctx context.Context, urlStr string, headers map[string]string) (*http.Response, error) {
	req, err := generateRequest(ctx, urlStr, http.MethodHead, headers)
	if err != nil {
		return nil, err
	}

	logger.Debugf("Sending HEAD request to %s", urlStr)

	resp, err := c.Do(req)
	if err != nil {
		logger.Debugf("HEAD request failed for %s: %v", urlStr, err)
		return nil, ClassifyError(err)
	}

	logger.Debugf("HEAD response for %s: status=%d", urlStr, resp.StatusCode)

	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, Err: ClassifyHTTPError(resp.StatusCode)}
	}

	return resp, nil
}

// Range performs a GET for bytes [start, end] inclusive. A 206 response is
// returned as is. A 200 response means the server ignored the header and is
// sending the whole entity; it is returned too and the caller must skip the
// first start bytes.
func (c *Client) Range(ctx context.Context, urlStr string, start, end int64, headers map[string]string) (*http.Response, error) {
	req, err := generateRequest(ctx, urlStr, http.MethodGet, headers)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))

	logger.Debugf("Sending Range GET bytes=%d-%d to %s", start, end, urlStr)

	resp, err := c.Do(req)
	if err != nil {
		logger.Debugf("Range GET request failed for %s: %v", urlStr, err)
		return nil, ClassifyError(err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, Err: ClassifyHTTPError(resp.StatusCode)}
	}

	if resp.StatusCode != http.StatusPartialContent && resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, Err: ErrUnexpectedStatus}
	}

	if resp.StatusCode == http.StatusOK {
		logger.Warnf("Server ignored range for %s, got full entity", urlStr)
	}

	return resp, nil
}

// generateRequest creates a new HTTP request with the specified method and URL.
func generateRequest(ctx context.Context, urlStr, method string, headers map[string]string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, urlStr, http.NoBody)
	if err != nil {
		logger.Errorf("Failed to create %s request for %s: %v", method, urlStr, err)
		return nil, fmt.Errorf("%w: %w", ErrRequestCreation, err)
	}

	req.Header.Set("User-Agent", DefaultUserAgent)

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return req, nil
}

// ContentRange is a parsed "bytes start-end/size" header. Size is -1 when the
// server sends "*".
type ContentRange struct {
	Start int64
	End   int64
	Size  int64
}

// ParseContentRange parses a Content-Range header such as "bytes 0-0/1234".
func ParseContentRange(header string) (ContentRange, error) {
	spec, ok := strings.CutPrefix(strings.TrimSpace(header), "bytes ")
	if !ok {
		return ContentRange{}, ErrInvalidContentRange
	}

	rng, total, ok := strings.Cut(spec, "/")
	if !ok {
		return ContentRange{}, ErrInvalidContentRange
	}

	first, last, ok := strings.Cut(rng, "-")
	if !ok {
		return ContentRange{}, ErrInvalidContentRange
	}

	start, err := strconv.ParseInt(strings.TrimSpace(first), 10, 64)
	if err != nil || start < 0 {
		return ContentRange{}, ErrInvalidContentRange
	}

	end, err := strconv.ParseInt(strings.TrimSpace(last), 10, 64)
	if err != nil || end < start {
		return ContentRange{}, ErrInvalidContentRange
	}

	cr := ContentRange{Start: start, End: end, Size: -1}
	if total = strings.TrimSpace(total); total == "*" {
		return cr, nil
	}

	size, err := strconv.ParseInt(total, 10, 64)
	if err != nil || size <= end {
		return ContentRange{}, ErrInvalidContentRange
	}
	cr.Size = size

	return cr, nil
}

// GetFilename tries extracts the filename from the Content-Disposition header or the URL.
func GetFilename(resp *http.Response) string {
	fileName, ok := getFileNameFromContentDisposition(resp.Header.Get("Content-Disposition"))
	if ok {
		return fileName
	}

	if resp.Request == nil || resp.Request.URL == nil {
		return defaultDownloadName
	}

	u := resp.Request.URL
	if qname := u.Query().Get("filename"); qname != "" {
		return qname
	}

	base := path.Base(u.Path)
	if base != "" && base != "/" && base != "." {
		return base
	}

	return defaultDownloadName
}

func getFileNameFromContentDisposition(header string) (string, bool) {
	if header == "" {
		return "", false
	}

	if _, params, err := mime.ParseMediaType(header); err == nil {
		if fName, ok := params["filename"]; ok {
			return fName, true
		}

		if fName, ok := params["filename*"]; ok {
			return fName, true
		}
	}

	return "", false
}

// ParseLastModified parses the Last-Modified header.
func ParseLastModified(header string) time.Time {
	if header == "" {
		return time.Time{}
	}

	t, err := http.ParseTime(header)
	if err != nil {
		logger.Debugf("Failed to parse Last-Modified header: %s, error: %v", header, err)
		return time.Time{}
	}

	return t
}
