package catalog

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newAPI(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	return NewClient(ts.URL+"/api/", time.Second)
}

func TestClient_NotebooksQueryAndNormalize(t *testing.T) {
	var gotPath, gotQuery string
	c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"slug":"a","brand":{"id":2},"notebook_type":{"id":3},
			"available_sizes":[{"id":3,"display_order":3},{"id":3,"display_order":3},{"id":1,"display_order":1}],
			"available_rulings":[{"id":1},{"id":1}]}]`))
	})

	books, err := c.Notebooks(testContext(t), NotebookFilter{Brand: 2, Type: 3, Search: " spiral "})
	if err != nil {
		t.Fatalf("Notebooks: %v", err)
	}

	if gotPath != "/api/notebooks/" {
		t.Fatalf("path=%q", gotPath)
	}
	if gotQuery != "brand=2&notebook_type=3&search=spiral" {
		t.Fatalf("query=%q", gotQuery)
	}
	if len(books) != 1 {
		t.Fatalf("len=%d", len(books))
	}
	if n := len(books[0].AvailableSizes); n != 2 {
		t.Fatalf("sizes not deduplicated: %d", n)
	}
	if n := len(books[0].AvailableRulings); n != 1 {
		t.Fatalf("rulings not deduplicated: %d", n)
	}
}

func TestClient_GlobalFetchSendsNoQuery(t *testing.T) {
	var gotQuery = "unset"
	c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	})

	if _, err := c.Notebooks(testContext(t), NotebookFilter{}); err != nil {
		t.Fatalf("Notebooks: %v", err)
	}
	if gotQuery != "" {
		t.Fatalf("query=%q", gotQuery)
	}
}

func TestClient_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
		kind   string
	}{
		{"not found", http.StatusNotFound, `{"detail":"Not found."}`, ErrNotFound, "not_found"},
		{"server error", http.StatusInternalServerError, ``, ErrBadStatus, "protocol"},
		{"bad json", http.StatusOK, `{"id":`, ErrBadPayload, "payload"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := c.Notebook(testContext(t), "does-not-exist")
			if !errors.Is(err, tc.want) {
				t.Fatalf("err=%v want %v", err, tc.want)
			}
			if k := ErrorKind(err); k != tc.kind {
				t.Fatalf("kind=%q want %q", k, tc.kind)
			}
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := NewClient(url, time.Second)
	_, err := c.FilterOptions(testContext(t))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err=%v", err)
	}
	if k := ErrorKind(err); k != "transport" {
		t.Fatalf("kind=%q", k)
	}
}

func TestClient_VariantBySlugEscapesPath(t *testing.T) {
	var got string
	c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"id":7,"slug":"a b","price_per_unit":"12.50"}`))
	})

	v, err := c.Variant(testContext(t), "a b")
	if err != nil {
		t.Fatalf("Variant: %v", err)
	}
	if got != "/api/notebook-variants/a%20b/" {
		t.Fatalf("path=%q", got)
	}
	if v.PricePerUnit.String() != "12.5" {
		t.Fatalf("price=%s", v.PricePerUnit)
	}
}
