// Package cart holds the in-memory shopping cart and writes every change
// through to a CartRepository in the background.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nikolayk812/gomarket-cart/internal/domain"
	"github.com/nikolayk812/gomarket-cart/internal/port"
	"go.uber.org/zap"
)

const defaultWriteTimeout = 5 * time.Second

var ErrClosed = errors.New("cart store is closed")

type Option func(*Store)

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// WithPersistErrorHandler is called from the persister goroutine after a failed write.
func WithPersistErrorHandler(fn func(error)) Option {
	return func(s *Store) {
		s.onPersistError = fn
	}
}

// Store owns the cart. Mutations apply immediately in memory and return
// without waiting for storage; a single persister goroutine writes the newest
// snapshot, so storage always converges to the latest mutation.
type Store struct {
	repo           port.CartRepository
	log            *zap.Logger
	writeTimeout   time.Duration
	onPersistError func(error)

	mu         sync.Mutex
	cart       domain.Cart
	version    uint64
	persisted  uint64
	persistErr error
	written    chan struct{}
	loaded     bool
	closed     bool

	// deliverMu serialises callback runs; notifyMu guards subscribers and
	// notified, the newest version delivered, so subscribers never observe an
	// older snapshot after a newer one. Callbacks run without notifyMu held.
	deliverMu   sync.Mutex
	notifyMu    sync.Mutex
	subscribers map[int]func([]domain.CartItem)
	nextSubID   int
	notified    uint64

	kick chan struct{}
	done chan struct{}
}

func New(repo port.CartRepository, opts ...Option) *Store {
	s := &Store{
		repo:         repo,
		log:          zap.NewNop(),
		writeTimeout: defaultWriteTimeout,
		written:      make(chan struct{}),
		subscribers:  make(map[int]func([]domain.CartItem)),
		kick:         make(chan struct{}, 1),
		done:         make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	go s.run()

	return s
}

// Load replaces the empty cart with the persisted one. Only the first call
// reads storage. Read and parse failures leave the cart empty.
// If the cart was mutated before the read completes, memory wins.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	if s.loaded {
		s.mu.Unlock()
		return
	}
	s.loaded = true
	s.mu.Unlock()

	cart, found, err := s.repo.GetCart(ctx)
	if err != nil {
		s.log.Warn("cart load failed, starting with empty cart", zap.Error(err))
		return
	}
	if !found {
		s.log.Debug("no persisted cart")
		return
	}

	s.mu.Lock()
	if s.version > 0 {
		s.mu.Unlock()
		s.log.Warn("cart mutated before load completed, persisted cart ignored",
			zap.Int("persisted_items", cart.Len()))
		return
	}
	s.cart = cart
	items := s.cart.Clone().Items
	s.mu.Unlock()

	s.log.Debug("cart loaded", zap.Int("items", len(items)))
	s.notify(0, items)
}

// AddToCart adds one unit of p, appending it when not yet in the cart.
func (s *Store) AddToCart(p domain.Product) error {
	if p.ID == "" {
		return fmt.Errorf("product id is empty")
	}

	return s.mutate("add", p.ID, func(c domain.Cart) domain.Cart {
		return c.Add(p)
	})
}

// Increment is a no-op for an id not in the cart.
func (s *Store) Increment(id string) error {
	return s.mutate("increment", id, func(c domain.Cart) domain.Cart {
		return c.Increment(id)
	})
}

// Decrement removes the item once its quantity would drop below one.
func (s *Store) Decrement(id string) error {
	return s.mutate("decrement", id, func(c domain.Cart) domain.Cart {
		return c.Decrement(id)
	})
}

// Products returns a copy of the current cart items.
func (s *Store) Products() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Clone().Items
}

// Subscribe registers fn to receive a snapshot after every change.
// fn runs on the mutating goroutine and must not mutate the store; it may
// call unsubscribe.
func (s *Store) Subscribe(fn func([]domain.CartItem)) (unsubscribe func()) {
	s.notifyMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.notifyMu.Lock()
			delete(s.subscribers, id)
			s.notifyMu.Unlock()
		})
	}
}

// Flush waits until every mutation made before the call has been written and
// returns the error of that write, if any.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	target := s.version
	s.mu.Unlock()

	for {
		s.mu.Lock()
		if s.persisted >= target {
			err := s.persistErr
			s.mu.Unlock()
			return err
		}
		written := s.written
		s.mu.Unlock()

		select {
		case <-written:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close flushes pending writes and stops the persister. Mutations after Close
// return ErrClosed. Every call reports the error of the last write.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return s.Flush(ctx)
	}
	s.closed = true
	s.mu.Unlock()

	flushErr := s.Flush(ctx)
	close(s.kick)

	select {
	case <-s.done:
	case <-ctx.Done():
		return errors.Join(flushErr, ctx.Err())
	}

	return flushErr
}

func (s *Store) mutate(op, id string, fn func(domain.Cart) domain.Cart) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	s.cart = fn(s.cart)
	s.version++
	version := s.version
	items := s.cart.Clone().Items

	// under mu so Close cannot close kick in between
	select {
	case s.kick <- struct{}{}:
	default:
	}
	s.mu.Unlock()

	s.log.Debug("cart mutated",
		zap.String("op", op),
		zap.String("id", id),
		zap.Int("items", len(items)))
	s.notify(version, items)

	return nil
}

func (s *Store) notify(version uint64, items []domain.CartItem) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.notifyMu.Lock()
	if version < s.notified {
		s.notifyMu.Unlock()
		return
	}
	s.notified = version

	fns := make([]func([]domain.CartItem), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.notifyMu.Unlock()

	for _, fn := range fns {
		snapshot := make([]domain.CartItem, len(items))
		copy(snapshot, items)
		fn(snapshot)
	}
}

func (s *Store) run() {
	defer close(s.done)

	for range s.kick {
		s.persistLatest()
	}
}

func (s *Store) persistLatest() {
	s.mu.Lock()
	if s.persisted >= s.version {
		s.mu.Unlock()
		return
	}
	cart := s.cart.Clone()
	version := s.version
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	err := s.repo.SaveCart(ctx, cart)
	cancel()

	if err != nil {
		s.log.Warn("cart persist failed, in-memory cart kept",
			zap.Uint64("version", version),
			zap.Error(err))
		if s.onPersistError != nil {
			s.onPersistError(err)
		}
	} else {
		s.log.Debug("cart persisted",
			zap.Uint64("version", version),
			zap.Int("items", cart.Len()))
	}

	s.mu.Lock()
	s.persisted = version
	s.persistErr = err
	close(s.written)
	s.written = make(chan struct{})
	s.mu.Unlock()
}
