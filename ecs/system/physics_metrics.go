package system

import (
	"time"

	"github.com/milk9111/stickyshot/ecs/component"
	"github.com/prometheus/client_golang/prometheus"
)

// PhysicsMetrics exports resolver counters to Prometheus. A nil
// *PhysicsMetrics records nothing.
type PhysicsMetrics struct {
	staticRecords  prometheus.Counter
	triggerRecords prometheus.Counter
	subSteps       prometheus.Counter
	stuckTotal     prometheus.Counter
	tickSeconds    prometheus.Histogram
	systemSeconds  *prometheus.HistogramVec
}

// NewPhysicsMetrics builds the collectors and registers them on reg. A nil
// reg leaves them unregistered, which is handy in tests.
func NewPhysicsMetrics(reg prometheus.Registerer) *PhysicsMetrics {
	m := &PhysicsMetrics{
		staticRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stickyshot",
			Subsystem: "physics",
			Name:      "static_records_total",
			Help:      "Static collision records produced.",
		}),
		triggerRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stickyshot",
			Subsystem: "physics",
			Name:      "trigger_records_total",
			Help:      "Trigger collision records produced, counting both sides.",
		}),
		subSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stickyshot",
			Subsystem: "physics",
			Name:      "sub_steps_total",
			Help:      "Receiver movement increments checked for collisions.",
		}),
		stuckTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stickyshot",
			Subsystem: "physics",
			Name:      "stuck_total",
			Help:      "Receivers attached to sticky providers.",
		}),
		tickSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stickyshot",
			Subsystem: "physics",
			Name:      "tick_seconds",
			Help:      "Time spent in one physics update.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 12),
		}),
		systemSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stickyshot",
			Name:      "system_seconds",
			Help:      "Time spent in each scheduled system.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 12),
		}, []string{"system"}),
	}
	if reg != nil {
		reg.MustRegister(m.staticRecords, m.triggerRecords, m.subSteps, m.stuckTotal, m.tickSeconds, m.systemSeconds)
	}
	return m
}

func (m *PhysicsMetrics) subStep() {
	if m == nil {
		return
	}
	m.subSteps.Inc()
}

func (m *PhysicsMetrics) stuck() {
	if m == nil {
		return
	}
	m.stuckTotal.Inc()
}

func (m *PhysicsMetrics) observeTick(took time.Duration, records *component.CollisionRecords) {
	if m == nil {
		return
	}
	m.tickSeconds.Observe(took.Seconds())
	m.staticRecords.Add(float64(records.StaticLen()))
	m.triggerRecords.Add(float64(records.TriggerLen()))
}

// ObserveSystem matches ecs.Observer so the metrics can be handed to a
// Scheduler.
func (m *PhysicsMetrics) ObserveSystem(name string, took time.Duration) {
	if m == nil {
		return
	}
	m.systemSeconds.WithLabelValues(name).Observe(took.Seconds())
}
