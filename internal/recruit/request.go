package recruit

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	requestIDHeader = "X-Request-ID"
)

// Item is one element of a list response before it is decoded into a typed record.
type Item interface{}

// response is a fully read backend reply.
type response struct {
	status int
	header http.Header
	body   []byte
}

func (b *Backend) newRequest(ctx context.Context, method, path string, q url.Values) (*http.Request, error) {
	return b.newRequestWithBody(ctx, method, path, q, nil)
}

func (b *Backend) newRequestWithBody(ctx context.Context, method, path string, q url.Values, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, b.APIURL+path, body)
	if err != nil {
		return nil, err
	}

	if len(q) > 0 {
		req.URL.RawQuery = q.Encode()
	}

	return b.setHeaders(req), nil
}

func (b *Backend) setHeaders(req *http.Request) *http.Request {
	if b.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", b.token))
	}
	req.Header.Set("User-Agent", b.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set(requestIDHeader, uuid.NewString())

	return req
}

// do sends the request, reads the whole body and turns non-2xx replies into *APIError.
func (b *Backend) do(req *http.Request, endpoint string, limit int64) (resp *response, err error) {
	started := time.Now()
	defer func() {
		b.Metrics.ObserveRequest(endpoint, started, err)
	}()

	b.logger.Debug("make request",
		zap.String("endpoint", endpoint),
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", req.Header.Get(requestIDHeader)),
	)

	httpResp, err := b.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	defer httpResp.Body.Close()

	body, err := readBody(httpResp, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: reading body: %w", endpoint, err)
	}

	b.logger.Debug("got response",
		zap.String("endpoint", endpoint),
		zap.Int("status", httpResp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("took", time.Since(started)),
	)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &APIError{
			Endpoint:   endpoint,
			StatusCode: httpResp.StatusCode,
			Status:     httpResp.Status,
			Detail:     errorDetail(body),
		}
	}

	return &response{status: httpResp.StatusCode, header: httpResp.Header, body: body}, nil
}

func readBody(resp *http.Response, limit int64) ([]byte, error) {
	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}

	if limit <= 0 {
		return io.ReadAll(reader)
	}

	data, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("body exceeds %d bytes", limit)
	}

	return data, nil
}

// getItems makes a GET request to an endpoint answering with a JSON array.
func (b *Backend) getItems(ctx context.Context, endpoint, path string, q url.Values) ([]Item, error) {
	req, err := b.newRequest(ctx, http.MethodGet, path, q)
	if err != nil {
		return nil, err
	}

	resp, err := b.do(req, endpoint, b.listLimit)
	if err != nil {
		return nil, err
	}

	var items []Item
	if err := json.Unmarshal(resp.body, &items); err != nil {
		return nil, &MalformedResponseError{Endpoint: endpoint, Err: err}
	}
	if items == nil {
		return nil, &MalformedResponseError{Endpoint: endpoint, Err: errors.New("expected an array, got null")}
	}

	return items, nil
}

// getObject makes a GET request to an endpoint answering with a single JSON object.
func (b *Backend) getObject(ctx context.Context, endpoint, path string, q url.Values) (map[string]any, error) {
	req, err := b.newRequest(ctx, http.MethodGet, path, q)
	if err != nil {
		return nil, err
	}

	resp, err := b.do(req, endpoint, b.listLimit)
	if err != nil {
		return nil, err
	}

	var obj map[string]any
	if err := json.Unmarshal(resp.body, &obj); err != nil {
		return nil, &MalformedResponseError{Endpoint: endpoint, Err: err}
	}
	if obj == nil {
		return nil, &MalformedResponseError{Endpoint: endpoint, Err: errors.New("expected an object, got null")}
	}

	return obj, nil
}

// send makes a request with an optional body and returns the reply. The reply is
// capped like a list body since these endpoints answer with a short JSON message.
func (b *Backend) send(ctx context.Context, method, endpoint, path string, q url.Values, body io.Reader, contentType string) (*response, error) {
	req, err := b.newRequestWithBody(ctx, method, path, q, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return b.do(req, endpoint, b.listLimit)
}

// post sends a bodiless POST; everything the backend needs is in the path and query.
func (b *Backend) post(ctx context.Context, endpoint, path string, q url.Values) error {
	_, err := b.send(ctx, http.MethodPost, endpoint, path, q, nil, "")
	return err
}
