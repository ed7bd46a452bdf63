package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/ryffproject/api-contract-tests/framework"
)

// ClientConfig describes how to reach the service under test.
type ClientConfig struct {
	// BaseURL is the address that endpoint names are appended to, e.g. "http://localhost/api".
	BaseURL string

	// EndpointSuffix is appended to every endpoint name, e.g. ".php".
	EndpointSuffix string

	// RequestTimeout limits each round-trip. Zero means no limit beyond the transport's own.
	RequestTimeout time.Duration

	// RequestsPerSecond throttles calls to the service. Zero means unthrottled.
	RequestsPerSecond float64

	// HTTPClient overrides the client used for requests; its Timeout and Jar are not modified.
	HTTPClient *http.Client
}

// Client is a stateful HTTP client for the service under test. Every call is a POST with form
// fields and optional file uploads, and every response is a JSON object.
//
// The client owns a CookieJar: whatever cookies the service sets are sent back on all later calls,
// so a successful "login" call makes subsequent calls act as the logged-in user. Tests never touch
// cookies directly.
type Client struct {
	baseURL    string
	suffix     string
	httpClient *http.Client
	limiter    *rate.Limiter
	jar        *CookieJar
	logger     framework.Logger
}

func NewClient(config ClientConfig, logger framework.Logger) *Client {
	if logger == nil {
		logger = framework.NullLogger()
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.RequestTimeout}
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		suffix:     config.EndpointSuffix,
		httpClient: httpClient,
		jar:        NewCookieJar(),
		logger:     logger,
	}
	if config.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}
	return c
}

// WithLogger returns a client that shares this client's session but writes its debug output to
// the given logger.
func (c *Client) WithLogger(logger framework.Logger) *Client {
	if logger == nil {
		logger = framework.NullLogger()
	}
	c1 := *c
	c1.logger = logger
	return &c1
}

// NewSession returns a client with the same configuration but its own empty cookie jar.
func (c *Client) NewSession() *Client {
	c1 := *c
	c1.jar = NewCookieJar()
	return &c1
}

func (c *Client) EndpointURL(endpoint string) string {
	return c.baseURL + "/" + endpoint + c.suffix
}

// Call sends one request to the named endpoint and decodes the JSON response.
//
// Files maps form field names to local paths; each file is uploaded under its base name. Paths
// that do not exist are skipped; any other path that cannot be read as a regular file returns an
// *UploadError. A failure to complete the round-trip returns a *TransportError
// and a body that is not JSON returns an *InvalidResponseError; both are fatal for the caller.
// An "error" response from the service is not a Go error: it is returned in the Response.
func (c *Client) Call(ctx context.Context, endpoint string, fields url.Values, files map[string]string) (Response, error) {
	body, contentType, err := c.encodeBody(fields, files)
	if err != nil {
		return Response{}, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Response{}, &TransportError{Endpoint: endpoint, Err: err}
		}
	}

	target := c.EndpointURL(endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return Response{}, &TransportError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	if cookies := c.jar.Header(); cookies != "" {
		req.Header.Set("Cookie", cookies)
	}

	c.logger.Printf("POST %s %s", target, describeRequest(fields, files))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("Error: %s", err)
		return Response{}, &TransportError{Endpoint: endpoint, Err: err}
	}
	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return Response{}, &TransportError{Endpoint: endpoint, Err: err}
	}

	c.jar.Update(resp.Header)

	c.logger.Printf("Response (HTTP %d): %s", resp.StatusCode, string(data))
	var value ldvalue.Value
	if err := json.Unmarshal(data, &value); err != nil {
		return Response{}, &InvalidResponseError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(data),
			Err:        err,
		}
	}
	return Response{Endpoint: endpoint, StatusCode: resp.StatusCode, Value: value, raw: string(data)}, nil
}

func (c *Client) encodeBody(fields url.Values, files map[string]string) (io.Reader, string, error) {
	var attach []string
	for _, name := range sortedKeys(files) {
		path := files[name]
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			c.logger.Printf("Skipping upload %q, file not available: %s", name, err)
			continue
		}
		if err == nil && !info.Mode().IsRegular() {
			err = errors.New("not a regular file")
		}
		if err != nil {
			return nil, "", &UploadError{Field: name, Path: path, Err: err}
		}
		attach = append(attach, name)
	}
	if len(attach) == 0 {
		return strings.NewReader(fields.Encode()), "application/x-www-form-urlencoded", nil
	}

	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	fieldNames := make([]string, 0, len(fields))
	for name := range fields {
		fieldNames = append(fieldNames, name)
	}
	sort.Strings(fieldNames)
	for _, name := range fieldNames {
		for _, v := range fields[name] {
			if err := w.WriteField(name, v); err != nil {
				return nil, "", err
			}
		}
	}
	for _, name := range attach {
		if err := writeFilePart(w, name, files[name]); err != nil {
			return nil, "", &UploadError{Field: name, Path: files[name], Err: err}
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func writeFilePart(w *multipart.Writer, fieldName, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	part, err := w.CreateFormFile(fieldName, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}

func describeRequest(fields url.Values, files map[string]string) string {
	desc := fields.Encode()
	for _, name := range sortedKeys(files) {
		desc += fmt.Sprintf(" [%s=@%s]", name, filepath.Base(files[name]))
	}
	return desc
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
