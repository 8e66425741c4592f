package observability

import (
	"context"
	"fmt"
	"time"

	"layledger/events"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// Exporter types accepted by NewMeterProvider
const (
	ExporterConsole = "console"
	ExporterOTLP    = "otlp"
	ExporterNone    = "none"
)

// OTelConfig selects where pushed metrics go
type OTelConfig struct {
	ExporterType   string
	Endpoint       string
	ServiceName    string
	Environment    string
	ExportInterval time.Duration
}

// NewMeterProvider builds a periodic-push meter provider and installs it globally.
// It returns nil for ExporterNone.
func NewMeterProvider(ctx context.Context, cfg OTelConfig) (*sdkmetric.MeterProvider, error) {
	var exporter sdkmetric.Exporter
	var err error

	switch cfg.ExporterType {
	case ExporterConsole:
		exporter, err = stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console exporter: %w", err)
		}
	case ExporterOTLP:
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(dialCtx,
			otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
	case ExporterNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown exporter type: %s", cfg.ExporterType)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(cfg.ServiceName),
			attribute.String("environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(provider)

	log.WithFields(log.Fields{
		"exporter": cfg.ExporterType,
		"interval": interval,
	}).Info("OpenTelemetry metrics enabled")
	return provider, nil
}

// OTelRecorder mirrors ledger events onto OpenTelemetry instruments
type OTelRecorder struct {
	balanceTransactions metric.Int64Counter
	walletVolume        metric.Float64Counter
	betTransitions      metric.Int64Counter
	rewardsPaid         metric.Float64Counter
}

// NewOTelRecorder creates the instruments on meter
func NewOTelRecorder(meter metric.Meter) (*OTelRecorder, error) {
	r := &OTelRecorder{}
	var err error

	r.balanceTransactions, err = meter.Int64Counter(BalanceTransactionsTotal,
		metric.WithDescription("Wallet adjustments by transaction type"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create balance transactions counter: %w", err)
	}

	r.walletVolume, err = meter.Float64Counter(WalletVolumeTotal,
		metric.WithDescription("Absolute amount moved through wallets"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet volume counter: %w", err)
	}

	r.betTransitions, err = meter.Int64Counter(BetTransitionsTotal,
		metric.WithDescription("Lay status transitions applied"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bet transitions counter: %w", err)
	}

	r.rewardsPaid, err = meter.Float64Counter(WeeklyRewardsAmountTotal,
		metric.WithDescription("Weekly reward amount credited by the rollover"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rewards paid counter: %w", err)
	}

	return r, nil
}

// Attach records committed ledger events from the bus
func (r *OTelRecorder) Attach(bus *events.Bus) {
	bus.SubscribeAll(r.handleEvent)
}

func (r *OTelRecorder) handleEvent(ctx context.Context, event events.Event) {
	switch e := event.(type) {
	case events.BalanceChangeEvent:
		attrs := metric.WithAttributes(attribute.String(LabelType, string(e.TransactionType)))
		r.balanceTransactions.Add(ctx, 1, attrs)
		r.walletVolume.Add(ctx, e.ChangeAmount.Abs().InexactFloat64(), attrs)
	case events.BetStatusChangedEvent:
		r.betTransitions.Add(ctx, 1, metric.WithAttributes(
			attribute.String(LabelFrom, string(e.OldStatus)),
			attribute.String(LabelTo, string(e.NewStatus)),
		))
	case events.WeeklyRewardPaidEvent:
		r.rewardsPaid.Add(ctx, e.Amount.InexactFloat64())
	}
}
