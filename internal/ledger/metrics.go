package ledger

import "github.com/prometheus/client_golang/prometheus"

var (
	persistDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dyfusion_ledger",
		Subsystem: "ledger",
		Name:      "persist_duration_second",
		Help:      "The total latency of state commit",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
	})

	accountReadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dyfusion_ledger",
		Subsystem: "ledger",
		Name:      "account_read_duration",
		Help:      "The total latency of read an account from db",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 10),
	})

	stateReadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dyfusion_ledger",
		Subsystem: "ledger",
		Name:      "state_read_duration",
		Help:      "The total latency of read a state from db",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 10),
	})

	dirtyAccountsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "dyfusion_ledger",
		Subsystem: "ledger",
		Name:      "dirty_accounts_per_commit",
		Help:      "The number of dirty accounts written by the last commit",
	})
)

func init() {
	prometheus.MustRegister(persistDuration)
	prometheus.MustRegister(accountReadDuration)
	prometheus.MustRegister(stateReadDuration)
	prometheus.MustRegister(dirtyAccountsGauge)
}
