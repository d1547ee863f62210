package batch

import (
	"context"

	"github.com/kbukum/openbatch/logger"
	"github.com/kbukum/openbatch/observability"
	"github.com/kbukum/openbatch/request"
)

// Option configures a Writer.
type Option func(*options)

type options struct {
	limits       request.Limits
	strict       bool
	scanExisting bool
	allowMixed   bool
	ensureASCII  bool
	customIDs    CustomIDFunc
	log          *logger.Logger
	metrics      *observability.Metrics
	ctx          context.Context
}

func defaultOptions() options {
	return options{
		limits:      request.DefaultLimits(),
		strict:      true,
		ensureASCII: true,
		customIDs:   DefaultCustomIDs,
		ctx:         context.Background(),
	}
}

// WithLimits overrides the file size and request count ceilings.
func WithLimits(l request.Limits) Option {
	return func(o *options) { o.limits = l }
}

// WithStrict toggles limit enforcement. On by default.
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithScanExisting loads the custom ids, size, line count and endpoint of a
// pre-existing destination before the first write, so uniqueness and limits
// span the whole file. Off by default.
func WithScanExisting(scan bool) Option {
	return func(o *options) { o.scanExisting = scan }
}

// WithAllowMixedEndpoints permits entries for different endpoints in one file.
func WithAllowMixedEndpoints(allow bool) Option {
	return func(o *options) { o.allowMixed = allow }
}

// WithEnsureASCII controls whether non-ASCII characters are written as
// \uXXXX escapes. On by default.
func WithEnsureASCII(ensure bool) Option {
	return func(o *options) { o.ensureASCII = ensure }
}

// WithCustomIDFunc sets how custom ids are derived from instance ids.
func WithCustomIDFunc(fn CustomIDFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.customIDs = fn
		}
	}
}

// WithLogger sets the session logger. Defaults to logger.Get("batch").
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics sets the instruments the session records to.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithContext sets the parent context of the session span.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}
