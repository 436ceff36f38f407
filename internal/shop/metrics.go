package shop

import "go.opentelemetry.io/otel/metric"

type metrics struct {
	ordersPlaced      metric.Int64Counter
	paymentsConfirmed metric.Int64Counter
	stagesAdvanced    metric.Int64Counter
}

func newMetrics(meter metric.Meter) (metrics, error) {
	var m metrics
	var err error
	if m.ordersPlaced, err = meter.Int64Counter("shopfront.orders.placed",
		metric.WithDescription("Orders successfully placed")); err != nil {
		return m, err
	}
	if m.paymentsConfirmed, err = meter.Int64Counter("shopfront.payments.confirmed",
		metric.WithDescription("Simulated payments confirmed")); err != nil {
		return m, err
	}
	if m.stagesAdvanced, err = meter.Int64Counter("shopfront.shipments.stages_advanced",
		metric.WithDescription("Shipment stage advancements")); err != nil {
		return m, err
	}
	return m, nil
}
