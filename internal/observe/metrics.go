// SPDX-License-Identifier: EPL-2.0

// Package observe exports engine counters as OpenTelemetry metrics.
//
// Instruments are observable: the engine keeps its own atomic counters and
// the SDK reads them in a callback at collection time, so nothing is
// recorded from the audio callback itself.
package observe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/ik5/audstream/stream"
)

// meterName is the instrumentation scope for every audstream metric.
const meterName = "github.com/ik5/audstream"

// Engine is the part of [stream.Engine] read at collection time.
type Engine interface {
	Stats() stream.Stats
	LastFrame() uint64
	MaxFrame() uint64
}

type counter struct {
	name, desc, unit string
	value            func(stream.Stats) uint64
}

var counters = []counter{
	{"audstream.blocks", "Audio callbacks served.", "{block}", func(s stream.Stats) uint64 { return s.Blocks }},
	{"audstream.blocks.silent", "Blocks silenced while unloaded or stopped.", "{block}", func(s stream.Stats) uint64 { return s.SilentBlocks }},
	{"audstream.blocks.stale", "Blocks entirely before the pool window.", "{block}", func(s stream.Stats) uint64 { return s.StaleBlocks }},
	{"audstream.blocks.eof", "Blocks past the end of a non-looping file.", "{block}", func(s stream.Stats) uint64 { return s.EOFBlocks }},
	{"audstream.blocks.ahead", "Blocks entirely past the pool window.", "{block}", func(s stream.Stats) uint64 { return s.AheadBlocks }},
	{"audstream.refill.requests", "Refill requests raised by the consumer.", "{request}", func(s stream.Stats) uint64 { return s.RefillRequests }},
	{"audstream.refill.publishes", "Decoded blocks copied into the pool.", "{block}", func(s stream.Stats) uint64 { return s.Publishes }},
	{"audstream.refills", "Blocks decoded by the fill worker.", "{block}", func(s stream.Stats) uint64 { return s.Refills }},
	{"audstream.refill.errors", "Failed refills.", "{error}", func(s stream.Stats) uint64 { return s.RefillErrors }},
	{"audstream.refill.dropped", "Decoded blocks replaced before publication.", "{block}", func(s stream.Stats) uint64 { return s.Dropped }},
}

// Register creates the audstream instruments on mp and binds them to eng.
// Unregister the returned registration before closing the engine.
func Register(mp metric.MeterProvider, eng Engine) (metric.Registration, error) {
	meter := mp.Meter(meterName)

	instruments := make([]metric.Int64ObservableCounter, len(counters))
	observables := make([]metric.Observable, 0, len(counters)+2)
	for i, c := range counters {
		inst, err := meter.Int64ObservableCounter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("observe: create %s: %w", c.name, err)
		}
		instruments[i] = inst
		observables = append(observables, inst)
	}

	playhead, err := meter.Int64ObservableGauge("audstream.playhead",
		metric.WithDescription("Last transport frame seen by the audio callback."),
		metric.WithUnit("{frame}"))
	if err != nil {
		return nil, fmt.Errorf("observe: create audstream.playhead: %w", err)
	}
	length, err := meter.Int64ObservableGauge("audstream.file.frames",
		metric.WithDescription("Length of the loaded file."),
		metric.WithUnit("{frame}"))
	if err != nil {
		return nil, fmt.Errorf("observe: create audstream.file.frames: %w", err)
	}
	observables = append(observables, playhead, length)

	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := eng.Stats()
		for i, c := range counters {
			o.ObserveInt64(instruments[i], int64(c.value(s)))
		}
		o.ObserveInt64(playhead, int64(eng.LastFrame()))
		o.ObserveInt64(length, int64(eng.MaxFrame()))
		return nil
	}, observables...)
	if err != nil {
		return nil, fmt.Errorf("observe: register callback: %w", err)
	}
	return reg, nil
}

// NewProvider returns a meter provider reporting to reader under the given
// service name.
func NewProvider(reader sdkmetric.Reader, service, version string) (*sdkmetric.MeterProvider, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(service),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, err
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	), nil
}

// Report collects reader once and logs every integer data point at info.
func Report(ctx context.Context, reader sdkmetric.Reader, log *slog.Logger) error {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return fmt.Errorf("observe: collect: %w", err)
	}

	var errs []error
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					log.InfoContext(ctx, "metric", slog.String("name", m.Name), slog.Int64("value", dp.Value))
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					log.InfoContext(ctx, "metric", slog.String("name", m.Name), slog.Int64("value", dp.Value))
				}
			default:
				errs = append(errs, fmt.Errorf("observe: %s: unexpected data %T", m.Name, m.Data))
			}
		}
	}
	return errors.Join(errs...)
}
