package otel

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	"github.com/nativeauth/nativeusers"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() nativeusers.MetricsSnapshot
}

type counterDef struct {
	id   nativeusers.MetricID
	name string
	help string
}

var counterDefs = []counterDef{
	{nativeusers.MetricPollIteration, "nativeusers_poll_iterations_total", "Poller iterations that started a scan of the index."},
	{nativeusers.MetricPollChangedUsers, "nativeusers_poll_changed_users_total", "Usernames reported changed or deleted by the poller."},
	{nativeusers.MetricPollError, "nativeusers_poll_errors_total", "Poller iterations that returned an error."},
	{nativeusers.MetricPurgeFailure, "nativeusers_purge_failures_total", "Realm-cache purges that failed after a mutation."},
	{nativeusers.MetricDecodeError, "nativeusers_decode_errors_total", "Documents that failed to decode into a user record."},
	{nativeusers.MetricGetUserTimeout, "nativeusers_get_user_timeouts_total", "GetUser and VerifyPassword calls that exceeded their deadline."},
}

type observedCounter struct {
	id         nativeusers.MetricID
	instrument metric.Int64ObservableCounter
}

// OTelExporter reads a Store's counters on each OTel collection cycle
// through a single registered callback.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration
	counters     []observedCounter
}

// NewOTelExporter registers one observable counter per MetricID with
// meter and returns an exporter that reads store.MetricsSnapshot on each
// collection cycle.
func NewOTelExporter(meter metric.Meter, store *nativeusers.Store) (*OTelExporter, error) {
	return NewOTelExporterFromSource(meter, store)
}

// NewOTelExporterFromSource is NewOTelExporter generalized to any type
// exposing MetricsSnapshot, primarily for tests.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	exporter := &OTelExporter{
		source:   source,
		counters: make([]observedCounter, 0, len(counterDefs)),
	}

	observables := make([]metric.Observable, 0, len(counterDefs))
	for _, def := range counterDefs {
		ins, err := meter.Int64ObservableCounter(def.name, metric.WithDescription(def.help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", def.name, err)
		}
		exporter.counters = append(exporter.counters, observedCounter{id: def.id, instrument: ins})
		observables = append(observables, ins)
	}

	registration, err := meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		snapshot := exporter.source.MetricsSnapshot()
		for _, c := range exporter.counters {
			observer.ObserveInt64(c.instrument, int64(snapshot.Counters[c.id]))
		}
		return nil
	}, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}

	exporter.registration = registration
	return exporter, nil
}

// Close unregisters the exporter's callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
