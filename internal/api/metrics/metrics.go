// Package metrics defines and registers all custom Prometheus metrics for the
// gatekeeper API. It is the single source of truth for metric names, labels,
// and help strings. Metrics register with the default registry at package
// init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gatekeeper"

// ── Account metrics ───────────────────────────────────────────────────────────

// SignupsTotal counts signup attempts by outcome.
// Label:
//   - result: "created", "conflict", "invalid", or "error"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts by outcome. Failed credentials are a
// single "failure" bucket; the reason is never broken out, matching the
// API's anti-enumeration stance.
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result (success/failure/error).",
	},
	[]string{"result"},
)

// LoginDuration measures login latency end-to-end, dominated by the bcrypt
// verification step.
var LoginDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "login_duration_seconds",
		Help:      "Duration of login handling including credential verification.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionValidationsTotal counts session validations by outcome.
// Label:
//   - result: "valid", "invalid", or "error"
var SessionValidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_validations_total",
		Help:      "Total number of session validations, by result.",
	},
	[]string{"result"},
)

// GateDecisionsTotal counts access-gate admissions and denials for protected
// resources.
// Label:
//   - decision: "granted" or "denied"
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of access gate decisions for protected resources.",
	},
	[]string{"decision"},
)

// LogoutsTotal counts logout calls. Logout is idempotent, so there is a
// single success bucket plus "error" for store failures.
var LogoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of logout calls, by result.",
	},
	[]string{"result"},
)
