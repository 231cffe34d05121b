package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistryCounters(t *testing.T) {
	r := NewRegistry()
	r.ObserveLookup("ok")
	r.ObserveLookup("ok")
	r.ObserveLookup("status_error")
	r.ObserveOrder("PLAIN")
	r.ObserveVariantSearch("not_found")
	r.ObserveMetadataUnavailable()

	if got := testutil.ToFloat64(r.NutritionLookups.WithLabelValues("ok")); got != 2 {
		t.Fatalf("ok lookups=%v", got)
	}
	if got := testutil.ToFloat64(r.MetadataUnavailable); got != 1 {
		t.Fatalf("unavailable=%v", got)
	}

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `smoothies_orders_submitted_total{rule="PLAIN"} 1`) {
		t.Fatalf("metrics output missing order counter:\n%s", body)
	}
}

func TestNilRegistryIsSafe(t *testing.T) {
	var r *Registry
	r.ObserveLookup("ok")
	r.ObserveOrder("PLAIN")
	r.ObserveVariantSearch("match")
	r.ObserveMetadataUnavailable()
}
