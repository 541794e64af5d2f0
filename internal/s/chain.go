// Package s contains the expectation chain: the observer that subscribes to a
// stream, records its signals and evaluates every attached slot on each
// change.
package s

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/capatazlib/go-streamexpect/internal/m"
	"github.com/capatazlib/go-streamexpect/internal/r"
	"github.com/capatazlib/go-streamexpect/internal/x"
)

// ChainSpec contains the settings of a Chain
type ChainSpec struct {
	// Name identifies the chain on log entries
	Name string
	// Logger receives the lifecycle entries of the chain
	Logger logrus.FieldLogger
	// Metrics may be nil
	Metrics *m.Metrics
	// Ordered makes every slot evaluate only after the previous slot
	// resolved, over the values the previous slots did not consume
	Ordered bool
}

// Chain is the observer of a single stream. It owns the event log shared by
// every slot attached to it.
type Chain[T any] struct {
	id     string
	spec   ChainSpec
	source Source[T]
	rec    *r.Recorder[T]

	// slots, cursor and next are protected by the recorder lock
	slots  []*x.Slot[T]
	cursor int
	next   int

	subMux     sync.Mutex
	sub        Subscription
	subscribed bool

	cancelled  atomic.Bool
	cancelOnce sync.Once
}

// NewChain creates a Chain over the given source. The source is not
// subscribed until the first slot gets attached.
func NewChain[T any](spec ChainSpec, source Source[T]) *Chain[T] {
	if spec.Logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		spec.Logger = logger
	}
	if spec.Name == "" {
		spec.Name = "chain"
	}
	ch := &Chain[T]{id: uuid.NewString(), spec: spec, source: source}
	ch.rec = r.NewRecorder(ch.evaluate)
	return ch
}

// GetName returns the name of this chain
func (ch *Chain[T]) GetName() string {
	return ch.spec.Name
}

// GetID returns the unique identifier of this chain; it tells apart log
// entries of chains sharing a name
func (ch *Chain[T]) GetID() string {
	return ch.id
}

func (ch *Chain[T]) logger() logrus.FieldLogger {
	return ch.spec.Logger.WithFields(logrus.Fields{
		"chain":    ch.spec.Name,
		"chain.id": ch.id,
	})
}

// Attach registers a slot on this chain and evaluates it right away against
// the current event log. The first Attach call subscribes to the source.
func (ch *Chain[T]) Attach(slot *x.Slot[T]) {
	slot.OnResolve(ch.slotResolved)

	ch.rec.Do(func(snap r.Snapshot[T]) {
		ch.slots = append(ch.slots, slot)
		if ch.spec.Ordered {
			ch.evaluateOrdered(snap)
		} else {
			slot.Evaluate(snap)
		}
	})

	// subscription happens outside of the recorder lock, sources are allowed
	// to emit synchronously on Subscribe
	ch.subscribe()
}

func (ch *Chain[T]) subscribe() {
	ch.subMux.Lock()
	defer ch.subMux.Unlock()

	if ch.subscribed || ch.cancelled.Load() {
		return
	}
	ch.subscribed = true

	ch.logger().Debug("chain subscribed")
	ch.spec.Metrics.ChainSubscribed()
	ch.sub = ch.source.Subscribe(observer[T]{chain: ch})
}

// evaluate runs on every change of the event log, with the recorder lock held
func (ch *Chain[T]) evaluate(snap r.Snapshot[T]) {
	if ch.spec.Ordered {
		ch.evaluateOrdered(snap)
		return
	}
	for _, slot := range ch.slots {
		slot.Evaluate(snap)
	}
}

// evaluateOrdered resolves slots one at a time; each slot only sees the
// values that were not consumed by the slots declared before it.
func (ch *Chain[T]) evaluateOrdered(snap r.Snapshot[T]) {
	for ch.next < len(ch.slots) {
		slot := ch.slots[ch.next]
		slot.Evaluate(snap.Drop(ch.cursor))
		if !slot.Resolved() {
			return
		}
		ch.cursor += slot.Consumed()
		ch.next++
	}
}

func (ch *Chain[T]) slotResolved(outcome x.Outcome) {
	ch.spec.Metrics.SlotResolved(outcome.Kind.String(), outcome.Status.String())

	logger := ch.logger().WithFields(logrus.Fields{
		"slot.kind":     outcome.Kind.String(),
		"slot.status":   outcome.Status.String(),
		"slot.location": outcome.Location.String(),
	})

	var kvErr x.ErrKVs
	if errors.As(outcome.Err, &kvErr) {
		logger = logger.WithFields(kvErr.KVs())
	}

	if outcome.Status == x.TimedOut {
		logger.Warn("expectation timed out")
		return
	}
	logger.Debug("expectation resolved")
}

// Slots returns the slots attached to this chain in declaration order
func (ch *Chain[T]) Slots() []x.Resolvable {
	var out []x.Resolvable
	ch.rec.Do(func(r.Snapshot[T]) {
		out = make([]x.Resolvable, 0, len(ch.slots))
		for _, slot := range ch.slots {
			out = append(out, slot)
		}
	})
	return out
}

// Snapshot returns the current state of the event log
func (ch *Chain[T]) Snapshot() r.Snapshot[T] {
	return ch.rec.Snapshot()
}

// Cancel releases the subscription to the source. Signals delivered after
// Cancel are dropped. Calling Cancel more than once is a no-op.
func (ch *Chain[T]) Cancel() {
	ch.cancelOnce.Do(func() {
		ch.cancelled.Store(true)

		ch.subMux.Lock()
		sub, subscribed := ch.sub, ch.subscribed
		ch.subMux.Unlock()

		if sub != nil {
			sub.Cancel()
		}
		if subscribed {
			ch.spec.Metrics.ChainCancelled()
		}
		ch.logger().Debug("chain cancelled")
	})
}

// IsCancelled indicates Cancel was called on this chain
func (ch *Chain[T]) IsCancelled() bool {
	return ch.cancelled.Load()
}

////////////////////////////////////////////////////////////////////////////////

// observer is the Observer handed to the source on Subscribe
type observer[T any] struct {
	chain *Chain[T]
}

func (obs observer[T]) Next(v T) {
	ch := obs.chain
	if ch.cancelled.Load() {
		return
	}
	defer ch.logViolation()
	ch.rec.Record(v)
	ch.spec.Metrics.ValueRecorded()
}

func (obs observer[T]) Complete(err error) {
	ch := obs.chain
	if ch.cancelled.Load() {
		return
	}
	defer ch.logViolation()
	ch.rec.RecordTerminal(r.TerminalFromErr(err))
}

// logViolation logs protocol violations and keeps panicking
func (ch *Chain[T]) logViolation() {
	panicVal := recover()
	if panicVal == nil {
		return
	}
	if violation, ok := panicVal.(*r.ProtocolViolationError); ok {
		ch.logger().WithFields(violation.KVs()).Error("stream protocol violation")
	}
	panic(panicVal)
}
