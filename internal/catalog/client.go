package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "http://localhost:8000/api"

	defaultTimeout = 5 * time.Second
	maxBodyBytes   = 8 << 20
)

var (
	ErrNotFound    = errors.New("catalog entity not found")
	ErrBadStatus   = errors.New("catalog bad status")
	ErrBadPayload  = errors.New("catalog bad payload")
	ErrUnavailable = errors.New("catalog unavailable")
)

// API is the remote catalog contract the Service reads through.
type API interface {
	FilterOptions(ctx context.Context) (FilterOptions, error)
	Notebooks(ctx context.Context, f NotebookFilter) ([]Notebook, error)
	Notebook(ctx context.Context, slug string) (Notebook, error)
	Variants(ctx context.Context, f VariantFilter) ([]NotebookVariant, error)
	Variant(ctx context.Context, slug string) (NotebookVariant, error)
}

type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) FilterOptions(ctx context.Context) (FilterOptions, error) {
	var o FilterOptions
	if err := c.get(ctx, "/filter-options/", nil, &o); err != nil {
		return FilterOptions{}, err
	}
	return o, nil
}

func (c *Client) Notebooks(ctx context.Context, f NotebookFilter) ([]Notebook, error) {
	q := url.Values{}
	setInt(q, "brand", f.Brand)
	setInt(q, "notebook_type", f.Type)
	setInt(q, "size", f.Size)
	setString(q, "search", f.Search)
	setString(q, "ordering", f.Ordering)

	var out []Notebook
	if err := c.get(ctx, "/notebooks/", q, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Normalize()
	}
	return out, nil
}

func (c *Client) Notebook(ctx context.Context, slug string) (Notebook, error) {
	var n Notebook
	if err := c.get(ctx, "/notebooks/"+url.PathEscape(slug)+"/", nil, &n); err != nil {
		return Notebook{}, err
	}
	n.Normalize()
	return n, nil
}

func (c *Client) Variants(ctx context.Context, f VariantFilter) ([]NotebookVariant, error) {
	q := url.Values{}
	setInt(q, "notebook", f.Notebook)
	setInt(q, "brand", f.Brand)
	setInt(q, "size", f.Size)
	setInt(q, "ruling", f.Ruling)
	setString(q, "search", f.Search)
	setString(q, "ordering", f.Ordering)

	var out []NotebookVariant
	if err := c.get(ctx, "/notebook-variants/", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Variant(ctx context.Context, slug string) (NotebookVariant, error) {
	var v NotebookVariant
	if err := c.get(ctx, "/notebook-variants/"+url.PathEscape(slug)+"/", nil, &v); err != nil {
		return NotebookVariant{}, err
	}
	return v, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status=%d", ErrBadStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

// ErrorKind names the failure class of err for logs and metrics.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrBadStatus):
		return "protocol"
	case errors.Is(err, ErrBadPayload):
		return "payload"
	case errors.Is(err, ErrUnavailable):
		return "transport"
	default:
		return "unknown"
	}
}

func setInt(q url.Values, k string, v int) {
	if v != 0 {
		q.Set(k, strconv.Itoa(v))
	}
}

func setString(q url.Values, k, v string) {
	if v = strings.TrimSpace(v); v != "" {
		q.Set(k, v)
	}
}
