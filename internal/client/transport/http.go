package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mkravets/daybook/internal/common"
	"github.com/mkravets/daybook/internal/journal"
)

// HTTPTransport talks to the sync server over HTTP with a bounded
// per-request timeout. Exceeding the timeout is treated like any other
// network failure.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

// NewHTTPTransport builds a transport for the server at baseURL, e.g.
// "http://localhost:5000".
func NewHTTPTransport(baseURL string, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// pushRequest is the POST /entries/{date} body. The date travels in the
// URL, the rest of the record in the body.
type pushRequest struct {
	Content    string    `json:"content"`
	ModifiedAt time.Time `json:"modified_at"`
	Deleted    bool      `json:"deleted"`
}

type pushResponse struct {
	ModifiedAt time.Time `json:"modified_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (t *HTTPTransport) FetchCatalog(ctx context.Context) (journal.Catalog, error) {
	resp, err := t.do(ctx, http.MethodGet, "/entries", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := t.checkStatus(resp); err != nil {
		return nil, err
	}

	var catalog journal.Catalog
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("fetch catalog: malformed response: %w: %w", common.ErrUnreachable, err)
	}
	return catalog, nil
}

func (t *HTTPTransport) FetchEntry(ctx context.Context, date string) (*journal.Entry, error) {
	resp, err := t.do(ctx, http.MethodGet, "/entries/"+url.PathEscape(date), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := t.checkStatus(resp); err != nil {
		return nil, err
	}

	var e journal.Entry
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		return nil, fmt.Errorf("fetch entry: malformed response: %w: %w", common.ErrUnreachable, err)
	}
	return &e, nil
}

func (t *HTTPTransport) PushEntry(ctx context.Context, e *journal.Entry) (time.Time, error) {
	body, err := json.Marshal(pushRequest{Content: e.Content, ModifiedAt: e.ModifiedAt, Deleted: e.Deleted})
	if err != nil {
		return time.Time{}, fmt.Errorf("push entry: %w", err)
	}

	resp, err := t.do(ctx, http.MethodPost, "/entries/"+url.PathEscape(e.Date), body)
	if err != nil {
		return time.Time{}, err
	}
	defer resp.Body.Close()

	if err := t.checkStatus(resp); err != nil {
		return time.Time{}, err
	}

	var accepted pushResponse
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		return time.Time{}, fmt.Errorf("push entry: malformed response: %w: %w", common.ErrUnreachable, err)
	}
	return accepted.ModifiedAt, nil
}

func (t *HTTPTransport) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %w", method, path, common.ErrUnreachable, err)
	}
	return resp, nil
}

// checkStatus maps HTTP statuses to the sentinel error taxonomy. The body
// of an error response carries a human-readable reason.
func (t *HTTPTransport) checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", reason(resp), common.ErrNotFound)
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%s: %w", reason(resp), common.ErrRejected)
	default:
		return fmt.Errorf("unexpected status %s: %w", resp.Status, common.ErrUnreachable)
	}
}

func reason(resp *http.Response) string {
	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil || er.Error == "" {
		return resp.Status
	}
	return er.Error
}
