package goForms

import (
	"fmt"
	"strings"
	"time"
)

// LintSeverity ranks a [LintWarning].
type LintSeverity int

const (
	LintInfo LintSeverity = iota
	LintWarn
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintWarn:
		return "WARN"
	case LintHigh:
		return "HIGH"
	default:
		return fmt.Sprintf("LintSeverity(%d)", int(s))
	}
}

// LintWarning is one configuration that is valid but weakens CSRF protection.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintWarnings is the result of [Config.Lint].
type LintWarnings []LintWarning

// Codes returns the warning codes in order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

// BySeverity returns the warnings at or above min.
func (ws LintWarnings) BySeverity(min LintSeverity) LintWarnings {
	var out LintWarnings
	for _, w := range ws {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError returns an error listing every warning at or above min, or nil.
func (ws LintWarnings) AsError(min LintSeverity) error {
	hits := ws.BySeverity(min)
	if len(hits) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(hits))
	for _, w := range hits {
		msgs = append(msgs, fmt.Sprintf("[%s] %s: %s", w.Severity, w.Code, w.Message))
	}
	return fmt.Errorf("config lint: %s", strings.Join(msgs, "; "))
}

const (
	lintMinSecretLen     = 16
	lintLongTimeLimit    = 24 * time.Hour
	lintMaxFallbackCount = 3
)

// Lint reports settings that pass [Config.Validate] but are unusual for production.
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings
	add := func(code string, sev LintSeverity, msg string) {
		ws = append(ws, LintWarning{Code: code, Severity: sev, Message: msg})
	}

	if !c.CSRF.Enabled {
		add("csrf_disabled", LintHigh, "CSRF protection is disabled for every form")
		return ws
	}

	if n := len(c.CSRF.SecretKey); n > 0 && n < lintMinSecretLen {
		add("secret_short", LintHigh, fmt.Sprintf("CSRF secret is %d bytes, want at least %d", n, lintMinSecretLen))
	}
	if c.CSRF.TimeLimit == 0 {
		add("no_time_limit", LintWarn, "CSRF tokens never expire")
	} else if c.CSRF.TimeLimit > lintLongTimeLimit {
		add("time_limit_long", LintWarn, fmt.Sprintf("CSRF tokens live for %s", c.CSRF.TimeLimit))
	}
	if !c.CSRF.SSLStrict {
		add("ssl_strict_disabled", LintWarn, "HTTPS requests are not checked for a same-origin referrer")
	}
	if !c.CSRF.CheckDefault {
		add("check_default_disabled", LintInfo, "the protect middleware checks nothing unless a handler asks for it")
	}
	if len(c.CSRF.Methods) == 0 {
		add("no_protected_methods", LintHigh, "no request method is protected")
	}
	if len(c.CSRF.SecretKeyFallbacks) > lintMaxFallbackCount {
		add("many_fallbacks", LintInfo, fmt.Sprintf("%d retired secrets are still accepted", len(c.CSRF.SecretKeyFallbacks)))
	}
	return ws
}
