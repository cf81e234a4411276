package lifecycle

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/roach88/ephemera/internal/broker"
	"github.com/roach88/ephemera/internal/registry"
	"github.com/roach88/ephemera/internal/sweep"
)

// DefaultMaxLifetime is the auto-dissolution deadline applied when the
// caller does not choose one.
const DefaultMaxLifetime = 30 * time.Second

// DefaultPreferencesPath is the fixed, operation-namespaced path the engine
// reads preferences from. It is the only path the engine ever touches.
const DefaultPreferencesPath = "calculator/preferences"

// Intent is the caller's immutable task description. The engine snapshots
// it at manifestation and never observes or causes a change to the
// caller's value afterwards.
type Intent struct {
	// Operation names the computation. It may be unrecognized; dispatch
	// failure is reported as a result value, not an error.
	Operation string

	// Operands is the ordered input sequence, length >= 1.
	Operands []float64
}

// Result is the outcome of one Execute call: exactly one of Value or Err
// is meaningful, discriminated by OK. Immutable once produced.
type Result struct {
	// Operation echoes the intent's operation name.
	Operation string

	// CompletedAt is the clock reading when the computation finished.
	CompletedAt time.Time

	// Value is the computed number. Meaningful only when OK reports true.
	Value float64

	// Err is the domain failure message. Empty on success.
	Err string
}

// OK reports whether the result carries a value rather than a failure.
func (r Result) OK() bool {
	return r.Err == ""
}

// State is the lifecycle position of a Manager.
type State int32

const (
	// StateActive accepts Execute calls; the dissolution timer is armed.
	StateActive State = iota

	// StateDissolving is the transient sweep phase. It is never observable
	// from outside the instance: dissolution runs to completion under the
	// instance lock.
	StateDissolving

	// StateDissolved is terminal. All sensitive slots are nil and no
	// further Execute succeeds.
	StateDissolved
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateDissolving:
		return "dissolving"
	case StateDissolved:
		return "dissolved"
	default:
		return "unknown"
	}
}

// Sensitive is the three-slot registry of data the instance has touched.
// Each slot is either live data or nil; after dissolution all three are
// nil, permanently.
type Sensitive struct {
	// Operands is the snapshot from the last successful execution.
	Operands []float64

	// Result is the last successful calculation result.
	Result *Result

	// Preferences is the preference record used by the last successful
	// execution.
	Preferences *registry.Preferences
}

// intentSnapshot is the manager-owned copy of the caller's intent. It is a
// sweepable record: dissolution nulls it alongside the sensitive registry.
type intentSnapshot struct {
	Operation string
	Operands  []float64
}

// rawState holds the raw broker value from the last execution so the sweep
// can wipe the serialized preference bytes, not just the decoded record.
type rawState struct {
	Prefs []byte
}

// Manager is a single bounded-lifetime task instance.
//
// The timer and the sensitive registry are exclusively owned by the
// instance; no two instances share either. All mutation happens inside
// Execute and Dissolve under the instance mutex.
type Manager struct {
	id           string
	purpose      string
	manifestedAt time.Time
	maxLifetime  time.Duration
	prefsPath    string

	clock     Clock
	reclaimer sweep.Reclaimer
	idgen     IDGenerator
	ops       *registry.Registry
	grants    Capabilities

	mu        sync.Mutex
	state     State
	timer     Timer
	intent    intentSnapshot
	sensitive Sensitive
	raw       rawState
}

// Option configures a Manager at manifestation.
type Option func(*Manager)

// WithMaxLifetime overrides the auto-dissolution deadline.
// The duration must be positive.
func WithMaxLifetime(d time.Duration) Option {
	return func(m *Manager) { m.maxLifetime = d }
}

// WithClock substitutes the time source. Tests use a manual clock to
// simulate expiry deterministically.
func WithClock(c Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithReclaimer substitutes the post-sweep memory-reclamation hint.
func WithReclaimer(r sweep.Reclaimer) Option {
	return func(m *Manager) { m.reclaimer = r }
}

// WithRegistry substitutes the operation registry.
func WithRegistry(r *registry.Registry) Option {
	return func(m *Manager) { m.ops = r }
}

// WithPreferencesPath overrides the fixed broker path the engine reads.
func WithPreferencesPath(path string) Option {
	return func(m *Manager) { m.prefsPath = path }
}

// WithIDGenerator substitutes the identifier source.
func WithIDGenerator(g IDGenerator) Option {
	return func(m *Manager) { m.idgen = g }
}

// WithCapabilities declares the sealed grant set. The set cannot be
// changed after Manifest returns.
func WithCapabilities(c Capabilities) Option {
	return func(m *Manager) { m.grants = c }
}

// Manifest constructs a Manager in Active state and arms its single
// fire-once dissolution timer. When the timer fires it calls Dissolve with
// semantics identical to a manual call.
//
// The intent is validated (non-empty operation, at least one operand) and
// snapshotted; the caller's value is never retained.
func Manifest(intent Intent, opts ...Option) (*Manager, error) {
	if intent.Operation == "" {
		return nil, &LifecycleError{
			Code:    ErrCodeInvalidIntent,
			Message: "operation name is required",
		}
	}
	if len(intent.Operands) == 0 {
		return nil, &LifecycleError{
			Code:    ErrCodeInvalidIntent,
			Message: "at least one operand is required",
		}
	}

	m := &Manager{
		purpose:     intent.Operation,
		maxLifetime: DefaultMaxLifetime,
		prefsPath:   DefaultPreferencesPath,
		clock:       WallClock{},
		reclaimer:   sweep.RuntimeReclaimer{},
		idgen:       UUIDv7Generator{},
		ops:         registry.Default(),
		grants:      DefaultCapabilities(),
		state:       StateActive,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.maxLifetime <= 0 {
		return nil, &LifecycleError{
			Code:    ErrCodeInvalidIntent,
			Message: "max lifetime must be positive",
		}
	}
	if m.grants.Timers < 1 {
		return nil, &LifecycleError{
			Code:    ErrCodeCapabilityDenied,
			Message: "manifestation requires one timer grant",
		}
	}

	m.id = m.idgen.Generate()
	m.manifestedAt = m.clock.Now()
	m.intent = intentSnapshot{
		Operation: intent.Operation,
		Operands:  slices.Clone(intent.Operands),
	}

	// The one and only timer this instance will ever arm.
	m.timer = m.clock.AfterFunc(m.maxLifetime, func() {
		slog.Debug("max lifetime elapsed, dissolving",
			"task_id", m.id,
			"purpose", m.purpose,
		)
		m.Dissolve()
	})

	slog.Info("task manifested",
		"task_id", m.id,
		"purpose", m.purpose,
		"max_lifetime", m.maxLifetime,
	)

	return m, nil
}

// Execute performs one computation against the supplied broker.
//
// Exactly one broker read happens per call, at the fixed preferences path;
// an absent stored value resolves to the empty preference record. Unknown
// operations and domain failures are returned as result values with the
// instance state unchanged - the instance stays reusable. Broker-surfaced
// failures propagate unmodified. Calling Execute on a non-Active instance
// is a contract violation and returns a DISSOLVED lifecycle error.
//
// Overlapping Execute calls on one instance are not serialized; the last
// successful write to the sensitive registry wins. If dissolution
// completes while the broker read is in flight, the computed result is
// discarded and a DISSOLVED lifecycle error is returned.
func (m *Manager) Execute(ctx context.Context, b broker.Broker) (Result, error) {
	m.mu.Lock()
	if m.state != StateActive {
		st := m.state
		m.mu.Unlock()
		return Result{}, &LifecycleError{
			Code:    ErrCodeDissolved,
			Message: "execute on " + st.String() + " instance",
			TaskID:  m.id,
		}
	}
	operands := slices.Clone(m.intent.Operands)
	m.mu.Unlock()

	guard := newGuardedBroker(b, m.grants, m.id)

	// The only suspension point: one read at the fixed path.
	raw, ok, err := guard.Read(ctx, m.prefsPath)
	if err != nil {
		// Broker failures propagate unmodified - no retry, no fallback.
		return Result{}, err
	}

	prefs := registry.Preferences{}
	if ok {
		prefs, err = registry.DecodePreferences(raw)
		if err != nil {
			// A value the broker handed back but the engine cannot decode
			// is a store-level failure, surfaced like any other.
			return Result{}, err
		}
	}

	op, found := m.ops.Lookup(m.purpose)
	if !found {
		slog.Debug("unknown operation requested",
			"task_id", m.id,
			"purpose", m.purpose,
		)
		return Result{
			Operation:   m.purpose,
			CompletedAt: m.clock.Now(),
			Err:         "Unknown operation: " + m.purpose,
		}, nil
	}

	value, derr := op(operands, prefs)
	if derr != nil {
		// Domain failures are data, never returned errors.
		return Result{
			Operation:   m.purpose,
			CompletedAt: m.clock.Now(),
			Err:         derr.Error(),
		}, nil
	}

	res := Result{
		Operation:   m.purpose,
		CompletedAt: m.clock.Now(),
		Value:       value,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateActive {
		// Dissolution won the race while the read was in flight. The
		// registry is already swept; discard rather than repopulate it.
		return Result{}, &LifecycleError{
			Code:    ErrCodeDissolved,
			Message: "dissolved while execution was in flight; result discarded",
			TaskID:  m.id,
		}
	}

	stored := res
	prefsCopy := prefs
	m.sensitive = Sensitive{
		Operands:    slices.Clone(m.intent.Operands),
		Result:      &stored,
		Preferences: &prefsCopy,
	}
	m.raw = rawState{Prefs: raw}

	slog.Debug("execution completed",
		"task_id", m.id,
		"purpose", m.purpose,
		"value", value,
	)

	return res, nil
}

// Dissolve moves the instance to its terminal state: cancel the timer,
// sweep every sensitive slot (including the intent snapshot and the raw
// preference bytes) to nil, hint the memory reclaimer, mark Dissolved.
//
// Idempotent: the first call does all the work; subsequent calls are
// no-ops with no observable change. The timer-fired path runs through this
// same method.
func (m *Manager) Dissolve() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateActive {
		return
	}

	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.state = StateDissolving

	nulled := sweep.Sweep(&m.sensitive, &m.raw, &m.intent)
	m.reclaimer.Hint()

	m.state = StateDissolved

	slog.Info("task dissolved",
		"task_id", m.id,
		"purpose", m.purpose,
		"fields_nulled", nulled,
	)
}

// ID returns the instance's opaque unique identifier.
func (m *Manager) ID() string {
	return m.id
}

// Purpose returns the operation name the instance was manifested for.
func (m *Manager) Purpose() string {
	return m.purpose
}

// ManifestedAt returns the manifestation timestamp.
func (m *Manager) ManifestedAt() time.Time {
	return m.manifestedAt
}

// MaxLifetime returns the auto-dissolution deadline.
func (m *Manager) MaxLifetime() time.Duration {
	return m.maxLifetime
}

// Grants returns the sealed capability set declared at manifestation.
func (m *Manager) Grants() Capabilities {
	return m.grants
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsActive reports whether the instance still accepts Execute calls.
func (m *Manager) IsActive() bool {
	return m.State() == StateActive
}

// HasResidualData reports whether any sensitive slot is non-nil.
// Must be false once the instance is Dissolved.
func (m *Manager) HasResidualData() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sensitive.Operands != nil ||
		m.sensitive.Result != nil ||
		m.sensitive.Preferences != nil ||
		m.raw.Prefs != nil
}

// SensitiveSnapshot returns the current contents of the three-slot
// sensitive registry, for audit and testing. It never exposes the raw
// intent. After dissolution every slot reads nil.
func (m *Manager) SensitiveSnapshot() Sensitive {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sensitive
}
