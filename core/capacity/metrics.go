package capacity

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/medfleet/dispatch/core/model"
)

var (
	bedsAvailable      *prometheus.GaugeVec
	reservationsDenied *prometheus.CounterVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.GaugeVec, *prometheus.CounterVec) {
	beds := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "facility_beds_available",
			Help: "Currently available beds per facility and bed class",
		},
		[]string{"facility_id", "bed_class"},
	)
	denied := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bed_reservations_denied_total",
			Help: "Number of bed reservations denied for lack of capacity",
		},
		[]string{"bed_class"},
	)
	return beds, denied
}

func init() {
	bedsAvailable, reservationsDenied = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers ledger metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(bedsAvailable, reservationsDenied)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	bedsAvailable, reservationsDenied = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

func setBedGauges(rec model.CapacityRecord) {
	for _, c := range []model.BedClass{model.BedGeneral, model.BedICU, model.BedEmergency} {
		bedsAvailable.WithLabelValues(rec.FacilityID, c.String()).Set(float64(rec.Available(c)))
	}
}
