package goForms

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricValidateSuccess)

	if got := m.Value(MetricValidateSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsEnabledIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricValidateSuccess)
	m.Inc(MetricValidateSuccess)
	m.Inc(MetricValidateSuccess)

	if got := m.Value(MetricValidateSuccess); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestMetricsNilIsDisabled(t *testing.T) {
	var m *Metrics
	m.Inc(MetricTokenGenerated)
	m.Observe(MetricValidateLatency, time.Millisecond)

	if m.Enabled() || m.LatencyEnabled() {
		t.Fatal("nil metrics must report disabled")
	}
	if got := m.Value(MetricTokenGenerated); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricTokenGenerated)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricTokenGenerated); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		20 * time.Microsecond,
		80 * time.Microsecond,
		200 * time.Microsecond,
		400 * time.Microsecond,
		time.Millisecond,
		2 * time.Millisecond,
		5 * time.Millisecond,
		40 * time.Millisecond,
	}

	for _, d := range observations {
		m.Observe(MetricValidateLatency, d)
	}

	snap := m.Snapshot()
	buckets := snap.Histograms[MetricValidateLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}

	for i, v := range buckets {
		if v != 1 {
			t.Fatalf("bucket %d expected 1, got %d", i, v)
		}
	}
}

func TestMetricsObserveIgnoresCounters(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})
	m.Observe(MetricValidateSuccess, time.Millisecond)

	if _, ok := m.Snapshot().Histograms[MetricValidateSuccess]; ok {
		t.Fatal("counter metric must not produce a histogram")
	}
}

func TestMetricsSnapshotConsistency(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})
	m.Inc(MetricValidateSuccess)
	m.Inc(MetricValidateInvalid)
	m.Inc(MetricValidateInvalid)
	m.Observe(MetricValidateLatency, 30*time.Microsecond)

	snap := m.Snapshot()

	if snap.Counters[MetricValidateSuccess] != 1 {
		t.Fatalf("expected MetricValidateSuccess=1 got %d", snap.Counters[MetricValidateSuccess])
	}
	if snap.Counters[MetricValidateInvalid] != 2 {
		t.Fatalf("expected MetricValidateInvalid=2 got %d", snap.Counters[MetricValidateInvalid])
	}
	if _, ok := snap.Counters[MetricValidateLatency]; ok {
		t.Fatal("latency histogram must not appear among counters")
	}
	if len(snap.Histograms[MetricValidateLatency]) != 8 {
		t.Fatalf("expected histogram length 8")
	}
	if snap.Histograms[MetricValidateLatency][0] != 1 {
		t.Fatalf("expected first histogram bucket=1 got %d", snap.Histograms[MetricValidateLatency][0])
	}
}

func TestValidationMetricMapping(t *testing.T) {
	tests := []struct {
		err  error
		want MetricID
	}{
		{ErrCSRFTokenMissing, MetricValidateMissing},
		{ErrCSRFSessionTokenMissing, MetricValidateSessionMissing},
		{ErrCSRFTokenExpired, MetricValidateExpired},
		{ErrCSRFFieldMismatch, MetricValidateFieldMismatch},
		{ErrCSRFTokensMismatch, MetricValidateMismatch},
		{ErrCSRFTokenInvalid, MetricValidateInvalid},
	}

	for _, tc := range tests {
		if got := validationMetric(tc.err); got != tc.want {
			t.Fatalf("%v: expected metric %d, got %d", tc.err, tc.want, got)
		}
	}
}
