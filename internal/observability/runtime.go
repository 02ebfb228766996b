package observability

import (
	"context"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// RegisterRuntimeMetrics exposes goroutine and heap gauges on the
// global meter.
func RegisterRuntimeMetrics() error {
	meter := otel.Meter("essenz/runtime")

	goroutines, err := meter.Int64ObservableGauge("runtime.goroutines",
		metric.WithDescription("Live goroutines"))
	if err != nil {
		return err
	}
	heapAlloc, err := meter.Int64ObservableGauge("runtime.heap_alloc_bytes",
		metric.WithDescription("Heap bytes allocated and in use"),
		metric.WithUnit("By"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		o.ObserveInt64(goroutines, int64(runtime.NumGoroutine()))
		o.ObserveInt64(heapAlloc, int64(ms.HeapAlloc))
		return nil
	}, goroutines, heapAlloc)
	return err
}
