package monitoring

import "github.com/prometheus/client_golang/prometheus"

var (
	RoundsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crash_rounds_total",
			Help: "Total completed crash rounds",
		},
	)

	BetsPlaced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crash_bets_placed_total",
			Help: "Total bets placed",
		},
	)

	Cashouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crash_cashouts_total",
			Help: "Total successful cashouts",
		},
	)

	BalanceUpdates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "account_balance_updates_total",
			Help: "Total account balance updates",
		},
	)
)

func Init() {
	prometheus.MustRegister(RoundsTotal)
	prometheus.MustRegister(BetsPlaced)
	prometheus.MustRegister(Cashouts)
	prometheus.MustRegister(BalanceUpdates)
}
