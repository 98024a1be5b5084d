package internaldefs

import (
	goForms "github.com/MrEthical07/goForms"
)

// CounterDef names one goForms counter.
type CounterDef struct {
	ID   goForms.MetricID
	Name string
	Help string
}

// HistogramDef names one goForms histogram.
type HistogramDef struct {
	ID   goForms.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter.
var CounterDefs = []CounterDef{
	{ID: goForms.MetricTokenGenerated, Name: "goforms_csrf_token_generated_total", Help: "Newly signed CSRF tokens."},
	{ID: goForms.MetricTokenReused, Name: "goforms_csrf_token_reused_total", Help: "CSRF tokens served from the per-request cache."},
	{ID: goForms.MetricRawTokenCreated, Name: "goforms_csrf_raw_token_created_total", Help: "Raw CSRF tokens written into a session."},
	{ID: goForms.MetricValidateSuccess, Name: "goforms_csrf_validate_success_total", Help: "CSRF tokens that passed validation."},
	{ID: goForms.MetricValidatePrevalidated, Name: "goforms_csrf_validate_prevalidated_total", Help: "Validations skipped for pre-validated requests."},
	{ID: goForms.MetricValidateMissing, Name: "goforms_csrf_validate_missing_total", Help: "Submissions without a CSRF token."},
	{ID: goForms.MetricValidateSessionMissing, Name: "goforms_csrf_validate_session_missing_total", Help: "Submissions whose session holds no CSRF token."},
	{ID: goForms.MetricValidateInvalid, Name: "goforms_csrf_validate_invalid_total", Help: "CSRF tokens with a bad signature."},
	{ID: goForms.MetricValidateExpired, Name: "goforms_csrf_validate_expired_total", Help: "Expired CSRF tokens."},
	{ID: goForms.MetricValidateFieldMismatch, Name: "goforms_csrf_validate_field_mismatch_total", Help: "CSRF tokens issued for another field."},
	{ID: goForms.MetricValidateMismatch, Name: "goforms_csrf_validate_mismatch_total", Help: "CSRF tokens not matching the session token."},
	{ID: goForms.MetricProtectRejected, Name: "goforms_csrf_protect_rejected_total", Help: "Requests rejected by the CSRF protect middleware."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goForms.MetricValidateLatency, Name: "goforms_csrf_validate_latency_seconds", Help: "CSRF validation latency histogram."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The last bucket is +Inf.
var HistogramUpperBounds = []float64{
	0.00005,
	0.0001,
	0.00025,
	0.0005,
	0.001,
	0.0025,
	0.005,
}

// HistogramBoundSuffix names each bucket, +Inf included, for per-bucket instruments.
var HistogramBoundSuffix = []string{
	"0_00005",
	"0_0001",
	"0_00025",
	"0_0005",
	"0_001",
	"0_0025",
	"0_005",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling missing buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
