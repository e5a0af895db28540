package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramCommandsReceivedTotal,
		telegramRateLimitTriggeredTotal,
		telegramUpdatePanicsTotal,
	)
}

var (
	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Counts incoming commands from users.",
		},
		[]string{"command"},
	)

	telegramRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_rate_limit_triggered_total",
			Help: "Total number of times users have been rate-limited.",
		},
	)

	telegramUpdatePanicsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_update_panics_total",
			Help: "Panics recovered while handling an update.",
		},
	)
)

// UnknownCommand is the label for commands without a route.
const UnknownCommand = "unknown"

// IncTelegramCommand counts a routed command. Callers pass UnknownCommand
// for anything outside the route table so label cardinality stays bounded.
func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncRateLimitTriggered() {
	telegramRateLimitTriggeredTotal.Inc()
}

func IncUpdatePanic() {
	telegramUpdatePanicsTotal.Inc()
}
