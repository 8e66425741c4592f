package observability

// Metric name prefixes
const (
	MetricPrefix = "layledger"
)

// Metric names
const (
	BetTransitionsTotal         = MetricPrefix + "_bet_transitions_total"
	BetsPlacedTotal             = MetricPrefix + "_bets_placed_total"
	BalanceTransactionsTotal    = MetricPrefix + "_balance_transactions_total"
	DepositAddressesIssuedTotal = MetricPrefix + "_deposit_addresses_issued_total"
	WithdrawRequestsTotal       = MetricPrefix + "_withdraw_requests_total"
	WeeklyRewardsPaidTotal      = MetricPrefix + "_weekly_rewards_paid_total"
	RolloverFailuresTotal       = MetricPrefix + "_rollover_failures_total"
	HTTPRequestDurationSeconds  = MetricPrefix + "_http_request_duration_seconds"

	// Pushed over OpenTelemetry only
	WalletVolumeTotal        = MetricPrefix + "_wallet_volume_total"
	WeeklyRewardsAmountTotal = MetricPrefix + "_weekly_rewards_amount_total"
)

// Label keys
const (
	LabelType   = "type"
	LabelFrom   = "from"
	LabelTo     = "to"
	LabelMethod = "method"
	LabelRoute  = "route"
	LabelStatus = "status"
)
