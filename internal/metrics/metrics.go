package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry methods are nil-safe so callers can run without metrics.
type Registry struct {
	reg                 *prometheus.Registry
	NutritionLookups    *prometheus.CounterVec
	OrdersSubmitted     *prometheus.CounterVec
	VariantSearches     *prometheus.CounterVec
	MetadataUnavailable prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smoothies_nutrition_lookups_total",
		Help: "Nutrition lookups by outcome.",
	}, []string{"outcome"})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smoothies_orders_submitted_total",
		Help: "Orders inserted, by canonicalization rule.",
	}, []string{"rule"})
	searches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smoothies_variant_searches_total",
		Help: "Target-hash variant searches by result.",
	}, []string{"result"})
	unavailable := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "smoothies_metadata_unavailable_total",
		Help: "Canonical hash computations that could not reach the hash function.",
	})

	r.MustRegister(lookups, orders, searches, unavailable)
	return &Registry{
		reg:                 r,
		NutritionLookups:    lookups,
		OrdersSubmitted:     orders,
		VariantSearches:     searches,
		MetadataUnavailable: unavailable,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

func (r *Registry) ObserveLookup(outcome string) {
	if r == nil {
		return
	}
	r.NutritionLookups.WithLabelValues(outcome).Inc()
}

func (r *Registry) ObserveOrder(rule string) {
	if r == nil {
		return
	}
	r.OrdersSubmitted.WithLabelValues(rule).Inc()
}

func (r *Registry) ObserveVariantSearch(result string) {
	if r == nil {
		return
	}
	r.VariantSearches.WithLabelValues(result).Inc()
}

func (r *Registry) ObserveMetadataUnavailable() {
	if r == nil {
		return
	}
	r.MetadataUnavailable.Inc()
}
