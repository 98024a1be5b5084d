package goForms

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Settings is the read-only view of application configuration consumed by goForms.
// settings.Map and settings.Live implement it.
type Settings interface {
	Lookup(key string) (any, bool)
}

// Setting keys consumed by [FormConfig] and the CSRF protect middleware.
const (
	KeySecretKey              = "SECRET_KEY"
	KeyCSRFEnabled            = "CSRF_ENABLED"
	KeyCSRFSecretKey          = "CSRF_SECRET_KEY"
	KeyCSRFSecretKeyFallbacks = "CSRF_SECRET_KEY_FALLBACKS"
	KeyCSRFFieldName          = "CSRF_FIELD_NAME"
	KeyCSRFTimeLimit          = "CSRF_TIME_LIMIT"
	KeyCSRFCheckDefault       = "CSRF_CHECK_DEFAULT"
	KeyCSRFMethods            = "CSRF_METHODS"
	KeyCSRFHeaders            = "CSRF_HEADERS"
	KeyCSRFSSLStrict          = "CSRF_SSL_STRICT"
	KeyI18NEnabled            = "I18N_ENABLED"
	KeyI18NDomain             = "I18N_DOMAIN"
)

const (
	// DefaultEnabled is the value of CSRF_ENABLED and I18N_ENABLED when unset.
	DefaultEnabled = true
	// DefaultCSRFFieldName is the value of CSRF_FIELD_NAME when unset.
	DefaultCSRFFieldName = "csrf_token"
	// DefaultCSRFTimeLimit is the value of CSRF_TIME_LIMIT when unset.
	DefaultCSRFTimeLimit = 3600 * time.Second
)

// Config is the typed form of the settings above.
//
// Config instances are intended to be resolved once and then treated as immutable.
type Config struct {
	CSRF CSRFConfig
	I18N I18NConfig
}

// CSRFConfig defines a public type used by goForms APIs.
//
// CSRFConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CSRFConfig struct {
	Enabled            bool
	SecretKey          []byte
	SecretKeyFallbacks [][]byte
	FieldName          string
	TimeLimit          time.Duration // 0 disables expiry
	CheckDefault       bool
	Methods            []string
	Headers            []string
	SSLStrict          bool
}

// I18NConfig defines a public type used by goForms APIs.
//
// I18NConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type I18NConfig struct {
	Enabled bool
	Domain  Domain
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		CSRF: CSRFConfig{
			Enabled:      DefaultEnabled,
			FieldName:    DefaultCSRFFieldName,
			TimeLimit:    DefaultCSRFTimeLimit,
			CheckDefault: true,
			Methods: []string{
				http.MethodPost,
				http.MethodPut,
				http.MethodPatch,
				http.MethodDelete,
			},
			Headers:   []string{"X-CSRFToken", "X-CSRF-Token"},
			SSLStrict: true,
		},
		I18N: I18NConfig{
			Enabled: DefaultEnabled,
		},
	}
}

// DefaultConfig returns the configuration used when no setting is present.
func DefaultConfig() Config {
	return defaultConfig()
}

// resolveConfig overlays every present key on the defaults. appSecret backs
// CSRF_SECRET_KEY when that key is absent or empty.
func resolveConfig(s Settings, appSecret []byte) (Config, error) {
	cfg := defaultConfig()
	if s == nil {
		cfg.CSRF.SecretKey = cloneBytes(appSecret)
		return cfg, nil
	}

	var err error
	if v, ok := s.Lookup(KeyCSRFEnabled); ok {
		if cfg.CSRF.Enabled, err = asBool(v); err != nil {
			return Config{}, settingError(KeyCSRFEnabled, err)
		}
	}

	cfg.CSRF.SecretKey = cloneBytes(appSecret)
	if v, ok := s.Lookup(KeyCSRFSecretKey); ok {
		secret, err := asBytes(v)
		if err != nil {
			return Config{}, settingError(KeyCSRFSecretKey, err)
		}
		if len(secret) > 0 {
			cfg.CSRF.SecretKey = secret
		}
	}

	if v, ok := s.Lookup(KeyCSRFSecretKeyFallbacks); ok {
		list, err := asStringList(v)
		if err != nil {
			return Config{}, settingError(KeyCSRFSecretKeyFallbacks, err)
		}
		for _, item := range list {
			if item != "" {
				cfg.CSRF.SecretKeyFallbacks = append(cfg.CSRF.SecretKeyFallbacks, []byte(item))
			}
		}
	}

	if v, ok := s.Lookup(KeyCSRFFieldName); ok {
		if cfg.CSRF.FieldName, err = asString(v); err != nil {
			return Config{}, settingError(KeyCSRFFieldName, err)
		}
	}

	if v, ok := s.Lookup(KeyCSRFTimeLimit); ok {
		if cfg.CSRF.TimeLimit, err = asSeconds(v); err != nil {
			return Config{}, settingError(KeyCSRFTimeLimit, err)
		}
	}

	if v, ok := s.Lookup(KeyCSRFCheckDefault); ok {
		if cfg.CSRF.CheckDefault, err = asBool(v); err != nil {
			return Config{}, settingError(KeyCSRFCheckDefault, err)
		}
	}

	if v, ok := s.Lookup(KeyCSRFMethods); ok {
		methods, err := asStringList(v)
		if err != nil {
			return Config{}, settingError(KeyCSRFMethods, err)
		}
		cfg.CSRF.Methods = cfg.CSRF.Methods[:0:0]
		for _, m := range methods {
			cfg.CSRF.Methods = append(cfg.CSRF.Methods, strings.ToUpper(m))
		}
	}

	if v, ok := s.Lookup(KeyCSRFHeaders); ok {
		if cfg.CSRF.Headers, err = asStringList(v); err != nil {
			return Config{}, settingError(KeyCSRFHeaders, err)
		}
	}

	if v, ok := s.Lookup(KeyCSRFSSLStrict); ok {
		if cfg.CSRF.SSLStrict, err = asBool(v); err != nil {
			return Config{}, settingError(KeyCSRFSSLStrict, err)
		}
	}

	if v, ok := s.Lookup(KeyI18NEnabled); ok {
		if cfg.I18N.Enabled, err = asBool(v); err != nil {
			return Config{}, settingError(KeyI18NEnabled, err)
		}
	}

	if v, ok := s.Lookup(KeyI18NDomain); ok {
		domain, err := asString(v)
		if err != nil {
			return Config{}, settingError(KeyI18NDomain, err)
		}
		cfg.I18N.Domain = Domain(domain)
	}

	return cfg, nil
}

func settingError(key string, err error) error {
	return fmt.Errorf("%w %s: %v", ErrInvalidSetting, key, err)
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate returns an error when a resolved value is out of range, or when CSRF is
// enabled without a secret key.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.CSRF.FieldName) == "" {
		return errors.New("CSRF FieldName must not be blank")
	}
	if c.CSRF.TimeLimit < 0 {
		return errors.New("CSRF TimeLimit must be >= 0")
	}
	for _, m := range c.CSRF.Methods {
		if strings.TrimSpace(m) == "" {
			return errors.New("CSRF Methods must not contain blank entries")
		}
	}
	for _, h := range c.CSRF.Headers {
		if strings.TrimSpace(h) == "" {
			return errors.New("CSRF Headers must not contain blank entries")
		}
	}
	if c.CSRF.Enabled && len(c.CSRF.SecretKey) == 0 {
		return ErrSecretKeyRequired
	}
	return nil
}

/*
====================================
COERCION
====================================
*/

func asBool(v any) (bool, error) {
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	case int:
		return t != 0, nil
	case int64:
		return t != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "t", "true", "yes", "on":
			return true, nil
		case "", "0", "f", "false", "no", "off":
			return false, nil
		}
		return false, fmt.Errorf("cannot parse %q as bool", t)
	default:
		return false, fmt.Errorf("unsupported type %T", v)
	}
}

func asString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return "", fmt.Errorf("unsupported type %T", v)
	}
}

func asBytes(v any) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		return cloneBytes(t), nil
	default:
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		if s == "" {
			return nil, nil
		}
		return []byte(s), nil
	}
}

// asSeconds reads an integer number of seconds or a Go duration string such as "1h30m".
// nil means no limit.
func asSeconds(v any) (time.Duration, error) {
	var secs int64
	switch t := v.(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return t, nil
	case int:
		secs = int64(t)
	case int32:
		secs = int64(t)
	case int64:
		secs = t
	case uint:
		if uint64(t) > math.MaxInt64 {
			return 0, fmt.Errorf("value %d out of range", t)
		}
		secs = int64(t)
	case uint64:
		if t > math.MaxInt64 {
			return 0, fmt.Errorf("value %d out of range", t)
		}
		secs = int64(t)
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("value %v is not a whole number of seconds", t)
		}
		secs = int64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" || strings.EqualFold(s, "none") || strings.EqualFold(s, "null") {
			return 0, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			d, derr := time.ParseDuration(s)
			if derr != nil {
				return 0, fmt.Errorf("cannot parse %q as seconds or a duration", t)
			}
			return d, nil
		}
		secs = n
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}

	if secs > int64(math.MaxInt64/int64(time.Second)) || secs < int64(math.MinInt64/int64(time.Second)) {
		return 0, fmt.Errorf("value %d out of range", secs)
	}
	return time.Duration(secs) * time.Second, nil
}

// asStringList accepts native lists or a comma-separated string, as found in env files.
func asStringList(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []string:
		out := make([]string, 0, len(t))
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, err := asString(item)
			if err != nil {
				return nil, err
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	case string:
		return asStringList(strings.Split(t, ","))
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}
