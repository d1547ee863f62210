package verify

import (
	"github.com/kbukum/openbatch/logger"
	"github.com/kbukum/openbatch/observability"
	"github.com/kbukum/openbatch/request"
)

// Options selects the checks a Validator runs. JSON shape, required fields,
// method, url and body checks always run.
type Options struct {
	CheckCustomIDUniqueness bool           `json:"check_custom_id_uniqueness" yaml:"check_custom_id_uniqueness" mapstructure:"check_custom_id_uniqueness"`
	CheckFileSize           bool           `json:"check_file_size" yaml:"check_file_size" mapstructure:"check_file_size"`
	CheckRequestCount       bool           `json:"check_request_count" yaml:"check_request_count" mapstructure:"check_request_count"`
	AllowMixedEndpoints     bool           `json:"allow_mixed_endpoints" yaml:"allow_mixed_endpoints" mapstructure:"allow_mixed_endpoints"`
	Limits                  request.Limits `json:"limits" yaml:"limits" mapstructure:"limits"`
}

// DefaultOptions enables every check, refuses mixed endpoints and uses the
// batch API limits.
func DefaultOptions() Options {
	return Options{
		CheckCustomIDUniqueness: true,
		CheckFileSize:           true,
		CheckRequestCount:       true,
		AllowMixedEndpoints:     false,
		Limits:                  request.DefaultLimits(),
	}
}

// Option configures a Validator.
type Option func(*Validator)

// WithOptions replaces every check setting at once.
func WithOptions(o Options) Option {
	return func(v *Validator) { v.opts = o }
}

// WithLimits overrides the file size and request count limits.
func WithLimits(l request.Limits) Option {
	return func(v *Validator) { v.opts.Limits = l }
}

func WithCheckCustomIDUniqueness(on bool) Option {
	return func(v *Validator) { v.opts.CheckCustomIDUniqueness = on }
}

func WithCheckFileSize(on bool) Option {
	return func(v *Validator) { v.opts.CheckFileSize = on }
}

func WithCheckRequestCount(on bool) Option {
	return func(v *Validator) { v.opts.CheckRequestCount = on }
}

// WithAllowMixedEndpoints downgrades the mixed endpoint finding to a warning.
func WithAllowMixedEndpoints(allow bool) Option {
	return func(v *Validator) { v.opts.AllowMixedEndpoints = allow }
}

// WithLogger sets the validator logger. Defaults to logger.Get("verify").
func WithLogger(l *logger.Logger) Option {
	return func(v *Validator) { v.log = l }
}

// WithMetrics sets the instruments validation runs are recorded to.
func WithMetrics(m *observability.Metrics) Option {
	return func(v *Validator) { v.metrics = m }
}
