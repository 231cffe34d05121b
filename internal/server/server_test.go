package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"

	"smoothies/internal"
	"smoothies/internal/canon"
	"smoothies/internal/catalog"
	"smoothies/internal/config"
	"smoothies/internal/metrics"
	"smoothies/internal/orders"
	"smoothies/internal/storage"
)

type stubNutrition struct{}

func (stubNutrition) LookupAll(_ context.Context, entries []internal.CatalogEntry) []internal.NutritionResult {
	out := make([]internal.NutritionResult, len(entries))
	for i, e := range entries {
		out[i] = internal.NutritionResult{Label: e.Label, SearchTerm: e.ResolvedSearchTerm(), Status: 200, Body: []byte(`{"name":"x"}`)}
	}
	return out
}

func newTestServer(t *testing.T) (*httptest.Server, *storage.DB) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := catalog.NewBootstrapService(db).Bootstrap(catalog.DefaultSearchTerms); err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{OrderMaxIngredients: 5}
	reg := metrics.NewRegistry()
	cat := catalog.NewService(db)
	c := canon.New([]string{"Dragon Fruit"}, db.Hasher(""))
	svc := orders.NewService(db, cat, c, cfg, orders.WithNutrition(stubNutrition{}), orders.WithMetrics(reg))

	ts := httptest.NewServer(New(cat, c, svc, reg).Handler())
	t.Cleanup(ts.Close)
	return ts, db
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestFruits(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/fruits")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out []struct {
		Label      string `json:"label"`
		SearchTerm string `json:"searchTerm"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out) != len(catalog.DefaultFruits) || out[0].Label != "Apple" || out[0].SearchTerm != "Apples" {
		t.Fatalf("out=%+v", out[:1])
	}
}

func TestCanonicalAllVariants(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := post(t, ts.URL+"/api/canonical", `{"labels":["Dragon Fruit","Mango"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	var out []variantView
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out) != len(canon.Rules()) {
		t.Fatalf("len=%d", len(out))
	}
	if out[3].Rule != canon.RuleCommaSpace || out[3].Canonical != "Dragon Fruit, Mango" {
		t.Fatalf("variant=%+v", out[3])
	}
	if out[0].Metadata.Hash64 == nil || *out[0].Metadata.Hash64 != int64(xxhash.Sum64String("Dragon Fruit Mango")) {
		t.Fatalf("hash=%v", out[0].Metadata.Hash64)
	}
}

func TestCanonicalSingleRule(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := post(t, ts.URL+"/api/canonical", `{"labels":["Kiwi","Lime"],"rule":"trailing_space"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	var out variantView
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Canonical != "Kiwi Lime " || out.Metadata.ByteLength != 10 {
		t.Fatalf("out=%+v", out)
	}
}

func TestCanonicalRejectsBadInput(t *testing.T) {
	ts, _ := newTestServer(t)
	cases := []string{
		`{"labels":[]}`,
		`{"labels":["Kiwi"],"rule":"SNAKE_CASE"}`,
		`{"labels":["a","b","c","d","e","f"]}`,
		`{"labelz":["Kiwi"]}`,
	}
	for _, body := range cases {
		resp := post(t, ts.URL+"/api/canonical", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %s status=%d", body, resp.StatusCode)
		}
	}
}

func TestMatch(t *testing.T) {
	ts, _ := newTestServer(t)
	target := int64(xxhash.Sum64String(" Kiwi Lime"))

	resp := post(t, ts.URL+"/api/canonical/match", fmt.Sprintf(`{"labels":["Kiwi","Lime"],"targetHash":%d}`, target))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	var out variantView
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Rule != canon.RuleLeadingSpace {
		t.Fatalf("rule=%s", out.Rule)
	}

	resp = post(t, ts.URL+"/api/canonical/match", `{"labels":["Kiwi","Lime"],"targetHash":1}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status=%d", resp.StatusCode)
	}

	resp = post(t, ts.URL+"/api/canonical/match", `{"labels":["Kiwi"]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func TestNutrition(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/nutrition?label=Apple&label=Mango")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out []struct {
		Label      string `json:"label"`
		SearchTerm string `json:"searchTerm"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].SearchTerm != "Apples" || out[1].Label != "Mango" {
		t.Fatalf("out=%+v", out)
	}
}

func TestSubmitOrder(t *testing.T) {
	ts, db := newTestServer(t)

	resp := post(t, ts.URL+"/api/orders", `{"name":"Kevin","labels":["Apple","Mango"],"rule":"COMMA_SPACE"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	rows, err := db.ListOrders(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Canonical != "Apple, Mango" || rows[0].NameOnOrder != "Kevin" {
		t.Fatalf("rows=%+v", rows)
	}

	resp = post(t, ts.URL+"/api/orders", `{"name":"Kevin","labels":[]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d", resp.StatusCode)
	}

	metricsResp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer metricsResp.Body.Close()
	if metricsResp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status=%d", metricsResp.StatusCode)
	}
}
