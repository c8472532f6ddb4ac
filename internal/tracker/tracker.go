// Package tracker coordinates the ticket lifecycle. A Tracker owns the
// canonical ticket list, the customers and the Kanban projection, and is the
// only place state is mutated. The canonical list and the board share one
// record per ticket, so the two views cannot drift apart.
//
// A Tracker is not safe for concurrent use; callers serialize access.
package tracker

import (
	"log/slog"
	"math/rand"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ALT-F4-LLC/rmaboard/internal/kanban"
	"github.com/ALT-F4-LLC/rmaboard/internal/model"
)

// Storage loads and saves the persisted document. Load returns a nil
// document when nothing has been saved yet.
type Storage interface {
	Load() (*model.Document, error)
	Save(doc *model.Document) error
}

// Snapshot is an immutable copy of tracker state handed to observers.
type Snapshot struct {
	Version   uint64
	Tickets   []*model.Ticket
	Customers []*model.Customer
	Board     *model.Board
}

// Tracker is the application state and its mutation surface.
type Tracker struct {
	tickets   []*model.Ticket
	board     *kanban.Board
	customers []*model.Customer

	version   uint64
	observers map[int]func(Snapshot)
	nextObs   int

	log       *slog.Logger
	now       func() time.Time
	newID     func() string
	rmaPrefix string
	author    string
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger mutations are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.log = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithRMAPrefix sets the prefix of generated RMA numbers.
func WithRMAPrefix(prefix string) Option {
	return func(t *Tracker) {
		if prefix != "" {
			t.rmaPrefix = prefix
		}
	}
}

// WithAuthor sets the author recorded on activity entries the tracker writes.
func WithAuthor(author string) Option {
	return func(t *Tracker) { t.author = author }
}

// New returns an empty tracker with the default board columns.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		board:     kanban.New(),
		observers: make(map[int]func(Snapshot)),
		log:       slog.New(slog.DiscardHandler),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     newULID,
		rmaPrefix: model.DefaultRMAPrefix,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Open returns a tracker populated from storage.
func Open(s Storage, opts ...Option) (*Tracker, error) {
	t := New(opts...)
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return t, nil
	}
	if err := t.Load(doc); err != nil {
		return nil, err
	}
	return t, nil
}

// Save writes the current state to storage.
func (t *Tracker) Save(s Storage) error {
	return s.Save(t.Document())
}

func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// Version increases by one with every successful mutation.
func (t *Tracker) Version() uint64 {
	return t.version
}

// Subscribe registers fn to receive a snapshot after every successful
// mutation. The returned function removes the subscription.
func (t *Tracker) Subscribe(fn func(Snapshot)) func() {
	id := t.nextObs
	t.nextObs++
	t.observers[id] = fn
	return func() { delete(t.observers, id) }
}

// Snapshot returns a deep copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{
		Version:   t.version,
		Tickets:   cloneTickets(t.tickets),
		Customers: cloneCustomers(t.customers),
		Board:     t.board.Layout(),
	}
}

// commit records a successful mutation and notifies observers.
func (t *Tracker) commit(op string, attrs ...any) {
	t.version++
	t.log.Debug(op, append(attrs, "version", t.version)...)
	if len(t.observers) == 0 {
		return
	}
	snap := t.Snapshot()
	keys := make([]int, 0, len(t.observers))
	for k := range t.observers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		// An earlier observer may have unsubscribed this one.
		if fn, ok := t.observers[k]; ok {
			fn(snap)
		}
	}
}

func cloneTickets(in []*model.Ticket) []*model.Ticket {
	out := make([]*model.Ticket, len(in))
	for i, tk := range in {
		out[i] = tk.Clone()
	}
	return out
}

func cloneCustomers(in []*model.Customer) []*model.Customer {
	out := make([]*model.Customer, len(in))
	for i, c := range in {
		cp := *c
		out[i] = &cp
	}
	return out
}
