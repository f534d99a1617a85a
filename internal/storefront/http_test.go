package storefront_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"NotebookStore/internal/catalog"
	"NotebookStore/internal/catalogstub"
	"NotebookStore/internal/session"
	"NotebookStore/internal/storefront"
	"NotebookStore/pkg/kit"
)

func newStubTS(t *testing.T) *httptest.Server {
	t.Helper()

	s := &catalogstub.Server{Store: catalogstub.NewMemStore()}
	h := catalogstub.NewHandler(s, catalogstub.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "catalogstub",
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func newDeadURL(t *testing.T) string {
	t.Helper()

	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()
	return url
}

type env struct {
	ts      *httptest.Server
	client  *http.Client
	storage *session.MemStorage
	reg     *prometheus.Registry
}

func newStorefrontTS(t *testing.T, apiURL string, rateLimit int) *env {
	t.Helper()

	storage := session.NewMemStorage()
	reg := prometheus.NewRegistry()
	metrics := kit.NewMetrics(reg)

	s := &storefront.Server{
		Sessions: storefront.NewRegistry(storefront.RegistryDeps{
			Storage: storage,
			API:     catalog.NewClient(apiURL, time.Second),
			Log:     zap.NewNop(),
			Metrics: metrics,
		}),
		Storage: storage,
		Log:     zap.NewNop(),
	}

	h := storefront.NewHandler(s, storefront.HTTPDeps{
		Log:             zap.NewNop(),
		Service:         "storefront",
		Registry:        reg,
		Metrics:         metrics,
		MetricsEnabled:  true,
		MetricsToken:    "scrape",
		RateLimitPerMin: rateLimit,
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &env{ts: ts, client: &http.Client{Jar: jar}, storage: storage, reg: reg}
}

func (e *env) do(t *testing.T, method, path string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, e.ts.URL+path, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func (e *env) getJSON(t *testing.T, path string, want int, out any) *http.Response {
	t.Helper()

	resp, raw := e.do(t, http.MethodGet, path, nil)
	if resp.StatusCode != want {
		t.Fatalf("GET %s: status=%d want %d body=%s", path, resp.StatusCode, want, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("GET %s: unmarshal: %v body=%s", path, err, raw)
		}
	}
	return resp
}

type browseBody struct {
	Selection struct {
		Brand int `json:"brand"`
		Type  int `json:"type"`
		Size  int `json:"size"`
	} `json:"selection"`
	Types    []catalog.NotebookType `json:"types"`
	Sizes    []catalog.Size         `json:"sizes"`
	Products []catalog.Notebook     `json:"products"`
	Source   string                 `json:"source"`
}

func TestStorefront_LiveThenCached(t *testing.T) {
	stub := newStubTS(t)
	e := newStorefrontTS(t, stub.URL+"/api", 0)

	var first catalog.Result[catalog.FilterOptions]
	resp := e.getJSON(t, "/api/filter-options", http.StatusOK, &first)
	if first.Source != catalog.SourceLive || resp.Header.Get(kit.SourceHeader) != "live" {
		t.Fatalf("first: source=%s header=%q", first.Source, resp.Header.Get(kit.SourceHeader))
	}
	if len(resp.Cookies()) == 0 || resp.Cookies()[0].Name != storefront.CookieName {
		t.Fatalf("session cookie not issued")
	}

	var second catalog.Result[catalog.FilterOptions]
	e.getJSON(t, "/api/filter-options", http.StatusOK, &second)
	if second.Source != catalog.SourceCache {
		t.Fatalf("second: source=%s", second.Source)
	}
	if e.storage.Len() != 1 {
		t.Fatalf("stored records=%d want 1", e.storage.Len())
	}
}

func TestStorefront_SessionsDoNotShareCache(t *testing.T) {
	stub := newStubTS(t)
	e := newStorefrontTS(t, stub.URL+"/api", 0)

	e.getJSON(t, "/api/brands", http.StatusOK, nil)

	other := &http.Client{}
	resp, err := other.Get(e.ts.URL + "/api/brands")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()
	if got := resp.Header.Get(kit.SourceHeader); got != "live" {
		t.Fatalf("new session source=%q want live", got)
	}
	if e.storage.Len() != 2 {
		t.Fatalf("stored records=%d want 2", e.storage.Len())
	}
}

func TestStorefront_BrowseRepairsSelection(t *testing.T) {
	stub := newStubTS(t)
	e := newStorefrontTS(t, stub.URL+"/api", 0)

	// eco-write only makes spiral notebooks, so the copy type is replaced.
	var got browseBody
	e.getJSON(t, "/api/browse?brand=eco-write&type=1", http.StatusOK, &got)

	if got.Selection.Brand != 2 || got.Selection.Type != 5 {
		t.Fatalf("selection=%+v", got.Selection)
	}
	if len(got.Products) != 1 || got.Products[0].Slug != "eco-write-spiral" {
		t.Fatalf("products=%+v", got.Products)
	}
	if len(got.Types) != 1 || got.Types[0].ID != 5 {
		t.Fatalf("types=%+v", got.Types)
	}
	if got.Source != "live" {
		t.Fatalf("source=%s", got.Source)
	}
}

func TestStorefront_BrowseUnknownBrandShowsAll(t *testing.T) {
	stub := newStubTS(t)
	e := newStorefrontTS(t, stub.URL+"/api", 0)

	var got browseBody
	e.getJSON(t, "/api/browse?brand=nope", http.StatusOK, &got)
	if got.Selection.Brand != 0 || len(got.Products) != 3 {
		t.Fatalf("selection=%+v products=%d", got.Selection, len(got.Products))
	}
	if len(got.Types) != 5 {
		t.Fatalf("types=%d want all 5", len(got.Types))
	}
	var byID browseBody
	e.getJSON(t, "/api/browse?brand=99", http.StatusOK, &byID)
	if byID.Selection.Brand != 0 || len(byID.Products) != 3 {
		t.Fatalf("unknown id: selection=%+v products=%d", byID.Selection, len(byID.Products))
	}
}

func TestStorefront_BrowseBadParam(t *testing.T) {
	stub := newStubTS(t)
	e := newStorefrontTS(t, stub.URL+"/api", 0)

	e.getJSON(t, "/api/browse?type=abc", http.StatusBadRequest, nil)
	e.getJSON(t, "/api/notebooks?size=-1", http.StatusBadRequest, nil)
}

func TestStorefront_FallbackWhenAPIDown(t *testing.T) {
	e := newStorefrontTS(t, newDeadURL(t), 0)

	var books catalog.Result[[]catalog.Notebook]
	resp := e.getJSON(t, "/api/notebooks?brand=1", http.StatusOK, &books)
	if !books.Success || books.Source != catalog.SourceFallback {
		t.Fatalf("notebooks: %+v", books)
	}
	if resp.Header.Get(kit.SourceHeader) != "fallback" {
		t.Fatalf("header=%q", resp.Header.Get(kit.SourceHeader))
	}
	if len(books.Data) != 2 {
		t.Fatalf("fallback brand 1 notebooks=%d want 2", len(books.Data))
	}

	var view browseBody
	e.getJSON(t, "/api/browse", http.StatusOK, &view)
	if view.Source != "fallback" || len(view.Products) != 3 {
		t.Fatalf("browse: source=%s products=%d", view.Source, len(view.Products))
	}

	var nb catalog.Result[catalog.Notebook]
	e.getJSON(t, "/api/notebooks/puspanjali-copy", http.StatusOK, &nb)
	if nb.Data.ID != 1 || nb.Source != catalog.SourceFallback {
		t.Fatalf("detail: %+v", nb)
	}

	if e.storage.Len() != 0 {
		t.Fatalf("fallback data must not be cached")
	}
}

func TestStorefront_DetailNotFound(t *testing.T) {
	stub := newStubTS(t)
	e := newStorefrontTS(t, stub.URL+"/api", 0)

	var errResp kit.ErrorResponse
	e.getJSON(t, "/api/notebooks/does-not-exist", http.StatusNotFound, &errResp)
	if errResp.Error != catalog.NotFoundMessage {
		t.Fatalf("error=%q", errResp.Error)
	}
	e.getJSON(t, "/api/variants/does-not-exist", http.StatusNotFound, nil)
}

func TestStorefront_VariantsFiltered(t *testing.T) {
	stub := newStubTS(t)
	e := newStorefrontTS(t, stub.URL+"/api", 0)

	var vs catalog.Result[[]catalog.NotebookVariant]
	e.getJSON(t, "/api/variants?notebook=1&ordering=-price_per_unit", http.StatusOK, &vs)
	if len(vs.Data) != 2 || vs.Data[0].ID != 102 {
		t.Fatalf("variants=%+v", vs.Data)
	}

	var v catalog.Result[catalog.NotebookVariant]
	e.getJSON(t, "/api/variants/eco-write-spiral-a4-unruled-100-pages", http.StatusOK, &v)
	if v.Data.PricePerUnit.String() != "50" {
		t.Fatalf("price=%s", v.Data.PricePerUnit)
	}
}

func TestStorefront_ClearCache(t *testing.T) {
	stub := newStubTS(t)
	e := newStorefrontTS(t, stub.URL+"/api", 0)

	e.getJSON(t, "/api/filter-options", http.StatusOK, nil)

	resp, _ := e.do(t, http.MethodDelete, "/api/session/cache", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status=%d", resp.StatusCode)
	}

	var again catalog.Result[catalog.FilterOptions]
	e.getJSON(t, "/api/filter-options", http.StatusOK, &again)
	if again.Source != catalog.SourceLive {
		t.Fatalf("source after clear=%s", again.Source)
	}
}

func TestStorefront_Probes(t *testing.T) {
	e := newStorefrontTS(t, newDeadURL(t), 0)

	e.getJSON(t, "/healthz", http.StatusOK, nil)
	e.getJSON(t, "/readyz", http.StatusOK, nil)
}

func TestStorefront_MetricsRequireToken(t *testing.T) {
	stub := newStubTS(t)
	e := newStorefrontTS(t, stub.URL+"/api", 0)

	e.getJSON(t, "/api/filter-options", http.StatusOK, nil)

	resp, _ := e.do(t, http.MethodGet, "/metrics", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status=%d", resp.StatusCode)
	}

	resp, raw := e.do(t, http.MethodGet, "/metrics", map[string]string{"Authorization": "Bearer scrape"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if !strings.Contains(string(raw), `catalog_fetch_total{op="filter_options",source="live"} 1`) {
		t.Fatalf("fetch counter missing:\n%s", raw)
	}
}

func TestStorefront_RateLimited(t *testing.T) {
	stub := newStubTS(t)
	e := newStorefrontTS(t, stub.URL+"/api", 2)

	e.getJSON(t, "/api/brands", http.StatusOK, nil)
	e.getJSON(t, "/api/brands", http.StatusOK, nil)

	resp := e.getJSON(t, "/api/brands", http.StatusTooManyRequests, nil)
	if resp.Header.Get("Retry-After") == "" {
		t.Fatalf("Retry-After missing")
	}

	// probes sit outside the limiter
	e.getJSON(t, "/healthz", http.StatusOK, nil)
}

func TestStorefront_RecoversAfterOutage(t *testing.T) {
	faults := &catalogstub.Faults{}
	stub := httptest.NewServer(catalogstub.NewHandler(
		&catalogstub.Server{Store: catalogstub.NewMemStore(), Faults: faults},
		catalogstub.HTTPDeps{Log: zap.NewNop()},
	))
	t.Cleanup(stub.Close)
	e := newStorefrontTS(t, stub.URL+"/api", 0)

	faults.Set(http.StatusServiceUnavailable, 0)
	var down catalog.Result[[]catalog.Brand]
	e.getJSON(t, "/api/brands", http.StatusOK, &down)
	if !down.Success || down.Source != catalog.SourceFallback || len(down.Data) != 4 {
		t.Fatalf("during outage: %+v", down)
	}

	faults.Reset()
	var up catalog.Result[[]catalog.Brand]
	e.getJSON(t, "/api/brands", http.StatusOK, &up)
	if up.Source != catalog.SourceLive {
		t.Fatalf("after outage source=%s want live", up.Source)
	}
}
