package expect

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/capatazlib/go-streamexpect/internal/w"
)

// Timer is the clock used to compute wait deadlines
//
// Since: 0.1.0
type Timer = w.Timer

// settings contains the configuration of a Chain
type settings struct {
	name       string
	logger     logrus.FieldLogger
	registerer prometheus.Registerer
	timer      Timer
	ordered    bool
}

func defaultSettings() settings {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return settings{
		name:   "chain",
		logger: logger,
		timer:  w.RealTimer(),
	}
}

// Opt is a type used to configure a Chain
//
// Since: 0.1.0
type Opt func(*settings)

// WithName is an Opt that sets the name that identifies the chain on log
// entries
//
// Since: 0.1.0
func WithName(name string) Opt {
	return func(cfg *settings) {
		cfg.name = name
	}
}

// WithLogger is an Opt that specifies where the chain reports its lifecycle:
// subscriptions, resolved and timed out expectations, cancellations and
// protocol violations. By default nothing gets logged.
//
// Since: 0.1.0
func WithLogger(logger logrus.FieldLogger) Opt {
	return func(cfg *settings) {
		cfg.logger = logger
	}
}

// WithRegisterer is an Opt that registers the chain metrics on the given
// prometheus registerer. Chains may share the same registerer.
//
// Since: 0.1.0
func WithRegisterer(reg prometheus.Registerer) Opt {
	return func(cfg *settings) {
		cfg.registerer = reg
	}
}

// WithTimer is an Opt that replaces the clock used for wait deadlines; it
// exists for tests that need to control when a deadline fires
//
// Since: 0.1.0
func WithTimer(timer Timer) Opt {
	return func(cfg *settings) {
		cfg.timer = timer
	}
}

// WithOrderedExpectations is an Opt that evaluates expectations in
// declaration order: an expectation is only checked after the previous one
// resolved, and only against the values the previous ones did not consume.
//
// A value expectation consumes one value, a group expectation consumes as many
// values as it checks, and a completion expectation consumes every value.
//
// Since: 0.1.0
func WithOrderedExpectations() Opt {
	return func(cfg *settings) {
		cfg.ordered = true
	}
}
