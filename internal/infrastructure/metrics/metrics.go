package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Contadores del pipeline de despacho. Sin reintentos automáticos, estos
// contadores son la evidencia para reintentar a mano un envío fallido.
var (
	// DispatchTotal cuenta envíos de plantilla por resultado (ok / error)
	DispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sondeo_whatsapp_dispatch_total",
		Help: "Envíos de plantilla WhatsApp por resultado",
	}, []string{"result"})

	// NotificationsCreated cuenta notificaciones internas por tipo
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sondeo_notifications_created_total",
		Help: "Notificaciones internas creadas por tipo",
	}, []string{"type"})

	// AggregationsComputed cuenta cálculos reales de snapshot (miss de cache)
	AggregationsComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sondeo_aggregations_computed_total",
		Help: "Snapshots de analytics calculados (miss o expiración de cache)",
	})
)

// Handler expone el registro default de Prometheus
func Handler() http.Handler {
	return promhttp.Handler()
}
