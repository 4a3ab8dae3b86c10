package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/abacus/internal/calc"
	"github.com/roach88/abacus/internal/ir"
	"github.com/roach88/abacus/internal/store"
)

// KeyResolver maps a raw label to a button press.
// config.Keymap implements it; without one, labels must be canonical.
type KeyResolver interface {
	Resolve(label string) (calc.Event, error)
}

type canonicalKeys struct{}

func (canonicalKeys) Resolve(label string) (calc.Event, error) {
	return calc.ParseEvent(label)
}

// Session is a single-writer calculator session.
//
// Thread-safety model:
//   - Press, Apply, Enqueue, State, Subscribe: safe from any goroutine
//   - Run: must be called from exactly one goroutine
//
// Presses are serialized by an internal mutex. Subscribers are called with
// that mutex held, in press order, and must not call back into the Session.
type Session struct {
	id         string
	engine     *calc.Engine
	keys       KeyResolver
	store      *store.Store
	configHash string
	logger     *slog.Logger
	idGen      IDGenerator

	mu      sync.Mutex
	clock   *Clock
	state   calc.State
	subs    map[int]func(calc.State)
	nextSub int

	queue  *pressQueue
	closed atomic.Bool
}

// Option configures a Session.
type Option func(*Session)

// WithEngine sets the calculator engine. Default: calc.New().
func WithEngine(e *calc.Engine) Option {
	return func(s *Session) {
		s.engine = e
	}
}

// WithKeyResolver sets the label resolver. Default: canonical labels only.
func WithKeyResolver(r KeyResolver) Option {
	return func(s *Session) {
		s.keys = r
	}
}

// WithStore attaches a journal. Default: no journal.
func WithStore(st *store.Store) Option {
	return func(s *Session) {
		s.store = st
	}
}

// WithConfigHash records the hash of the configuration the engine was built
// from on the session row.
func WithConfigHash(h string) Option {
	return func(s *Session) {
		s.configHash = h
	}
}

// WithIDGenerator sets the session ID source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Session) {
		s.idGen = g
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// New starts a session from calc.Initial().
// If a store is attached the session row is written before New returns.
func New(ctx context.Context, opts ...Option) (*Session, error) {
	s := &Session{
		engine: calc.New(),
		keys:   canonicalKeys{},
		logger: slog.Default(),
		idGen:  UUIDv7Generator{},
		clock:  NewClock(),
		state:  calc.Initial(),
		subs:   make(map[int]func(calc.State)),
		queue:  newPressQueue(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.id = s.idGen.Generate()

	if s.store != nil {
		err := s.store.WriteSession(ctx, ir.SessionRecord{
			ID:            s.id,
			ConfigHash:    s.configHash,
			EngineVersion: ir.EngineVersion,
			RecordVersion: ir.RecordVersion,
		})
		if err != nil {
			return nil, fmt.Errorf("start session: %w", err)
		}
	}

	s.logger.Debug("session started", "session", s.id, "journal", s.store != nil)
	return s, nil
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// State returns the latest state.
func (s *Session) State() calc.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Seq returns the seq of the last applied press, 0 if none.
func (s *Session) Seq() int64 {
	return s.clock.Current()
}

// Subscribe registers fn to receive every new state.
// The returned func removes the subscription.
func (s *Session) Subscribe(fn func(calc.State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Press resolves key and applies it.
//
// Unknown labels return an UNKNOWN_KEY SessionError and leave the state
// unchanged. Presses that the engine ignores (a 16th digit, a second ".")
// still advance seq and are journaled; they are presses, not errors.
func (s *Session) Press(ctx context.Context, key string) (calc.State, error) {
	if s.closed.Load() {
		return s.State(), &SessionError{Code: ErrCodeSessionClosed, Message: "session is closed", SessionID: s.id, Key: key}
	}
	return s.press(ctx, key)
}

// Apply applies an already-resolved event. The journaled key is the event's
// symbol.
func (s *Session) Apply(ctx context.Context, ev calc.Event) (calc.State, error) {
	if s.closed.Load() {
		return s.State(), &SessionError{Code: ErrCodeSessionClosed, Message: "session is closed", SessionID: s.id, Key: ev.Symbol}
	}
	return s.apply(ctx, ev.Symbol, ev)
}

// Clear is Apply(calc.Clear()).
func (s *Session) Clear(ctx context.Context) (calc.State, error) {
	return s.Apply(ctx, calc.Clear())
}

func (s *Session) press(ctx context.Context, key string) (calc.State, error) {
	ev, err := s.keys.Resolve(key)
	if err != nil {
		return s.State(), &SessionError{
			Code:      ErrCodeUnknownKey,
			Message:   "no button for label",
			SessionID: s.id,
			Key:       key,
			Err:       err,
		}
	}
	return s.apply(ctx, key, ev)
}

func (s *Session) apply(ctx context.Context, key string, ev calc.Event) (calc.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.state
	var after calc.State
	var outcome *calc.Outcome
	if ev.Kind == calc.EventEquals {
		var out calc.Outcome
		after, out = s.engine.CalculateOutcome(before)
		outcome = &out
	} else {
		after = s.engine.Apply(before, ev)
	}

	// The clock only advances once the press is durable.
	seq := s.clock.Current() + 1
	if s.store != nil {
		if err := s.journal(ctx, seq, key, ev, before, after, outcome); err != nil {
			return before, &SessionError{
				Code:      ErrCodeJournalFailed,
				Message:   fmt.Sprintf("press %d not journaled", seq),
				SessionID: s.id,
				Key:       key,
				Err:       err,
			}
		}
	}
	s.clock.Next()
	s.state = after

	s.logger.Debug("press applied",
		"session", s.id,
		"seq", seq,
		"key", key,
		"display", after.Display,
	)
	if outcome != nil && !outcome.OK() {
		s.logger.Debug("evaluation failed",
			"session", s.id,
			"seq", seq,
			"kind", outcome.Failure,
			"error", outcome.Err,
		)
	}

	for _, id := range s.subscriberIDs() {
		s.subs[id](after)
	}
	return after, nil
}

// subscriberIDs returns subscription ids in registration order.
func (s *Session) subscriberIDs() []int {
	ids := make([]int, 0, len(s.subs))
	for id := 0; id < s.nextSub; id++ {
		if _, ok := s.subs[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *Session) journal(ctx context.Context, seq int64, key string, ev calc.Event, before, after calc.State, outcome *calc.Outcome) error {
	p, err := newPressRecord(s.id, seq, key, ev, before, after)
	if err != nil {
		return err
	}

	var evRec *ir.EvaluationRecord
	if outcome != nil {
		rec, err := newEvaluationRecord(s.id, seq, before.Tokens(), *outcome, after)
		if err != nil {
			return err
		}
		evRec = &rec
	}

	return s.store.WritePressAtomic(ctx, p, evRec)
}

// Enqueue submits key for the Run loop.
// Thread-safe: may be called from any goroutine.
//
// Returns false if the session has been closed.
func (s *Session) Enqueue(key string) bool {
	return s.queue.Enqueue(key)
}

// Run applies enqueued keys until ctx is cancelled or Close is called.
// Keys enqueued before Close are still applied.
//
// CRITICAL: Must be called from exactly ONE goroutine.
//
// A key that fails (unknown label, journal write) is logged and skipped;
// the loop keeps going so one bad line from a reader does not end the session.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Debug("session loop starting", "session", s.id)

	for {
		key, ok := s.queue.TryDequeue()
		if ok {
			if _, err := s.press(ctx, key); err != nil {
				s.logger.Warn("press rejected",
					"session", s.id,
					"key", key,
					"error", err,
				)
			}
			continue
		}

		select {
		case <-ctx.Done():
			s.logger.Debug("session loop stopping: context cancelled", "session", s.id)
			s.Close()
			return ctx.Err()

		case <-s.queue.Wait():
			// A closed signal channel fires immediately; stop once drained.
			if s.closed.Load() && s.queue.Len() == 0 {
				s.logger.Debug("session loop stopping: closed", "session", s.id)
				return nil
			}
		}
	}
}

// Close stops accepting presses. Run returns after draining queued keys.
func (s *Session) Close() {
	s.closed.Store(true)
	s.queue.Close()
}

// QueueLen returns the number of keys waiting for Run.
func (s *Session) QueueLen() int {
	return s.queue.Len()
}
