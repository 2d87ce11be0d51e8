package client

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/sufra-app/restaurant-api/models"
)

// ConnState is the syncer's connection lifecycle.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateFetching
	StateLive
	StateReconnecting
)

func (s ConnState) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateLive:
		return "live"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// PendingUpdate is one offline edit awaiting flush. Each order holds at most
// one queued update; a later edit to the same order overwrites the earlier.
type PendingUpdate struct {
	OrderID string
	Status  *models.OrderStatus
	Items   []models.OrderItem
	seq     int64
}

// patchMark tracks an optimistic local patch until the server echoes it
// back. Stream updates not newer than the baseline are stale echoes of the
// pre-patch row and are dropped.
type patchMark struct {
	seq      int64
	baseline time.Time
}

// SyncerOptions configures an OrderSyncer. Callbacks are invoked from the
// event goroutine and must not block.
type SyncerOptions struct {
	// Filter keeps only orders in these statuses. Empty means all.
	Filter []models.OrderStatus
	// Limit caps the initial fetch; zero uses the server default.
	Limit int
	// OnNewOrder fires once per order id when a new order enters the
	// list from the stream. Fetch does not replay existing orders.
	OnNewOrder func(models.Order)
	// OnChange fires after any visible change to the order list.
	OnChange func([]models.Order)
}

// OrderSyncer keeps a local order list synchronized with the server:
// initial fetch, live stream events, optimistic edits with rollback, and an
// offline queue flushed on reconnect.
type OrderSyncer struct {
	api    OrdersAPI
	stream OrderStream
	opts   SyncerOptions

	mu      sync.Mutex
	orders  []models.Order
	pending map[string]*PendingUpdate
	patches map[string]patchMark
	seq     int64
	state   ConnState
	online  bool
	release func()
}

func NewOrderSyncer(api OrdersAPI, stream OrderStream, opts SyncerOptions) *OrderSyncer {
	return &OrderSyncer{
		api:     api,
		stream:  stream,
		opts:    opts,
		pending: make(map[string]*PendingUpdate),
		patches: make(map[string]patchMark),
		online:  true,
	}
}

// Start fetches the initial list and subscribes to the stream. On stream
// failure the fetched list stays usable and the state is Disconnected.
func (s *OrderSyncer) Start(ctx context.Context) error {
	s.setState(StateFetching)
	if err := s.Fetch(ctx); err != nil {
		s.setState(StateDisconnected)
		return err
	}
	return s.subscribe(ctx)
}

func (s *OrderSyncer) subscribe(ctx context.Context) error {
	events, release, err := s.stream.Subscribe(ctx)
	if err != nil {
		s.setState(StateDisconnected)
		return err
	}
	s.mu.Lock()
	s.release = release
	s.state = StateLive
	s.mu.Unlock()

	go func() {
		for ev := range events {
			s.applyEvent(ev)
		}
		s.mu.Lock()
		if s.state == StateLive {
			s.state = StateDisconnected
		}
		s.mu.Unlock()
	}()
	return nil
}

// Stop releases the stream subscription.
func (s *OrderSyncer) Stop() {
	s.mu.Lock()
	release := s.release
	s.release = nil
	s.state = StateDisconnected
	s.mu.Unlock()
	if release != nil {
		release()
	}
}

func (s *OrderSyncer) setState(state ConnState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// State reports the current connection state.
func (s *OrderSyncer) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Orders returns a copy of the current list, sorted oldest first.
func (s *OrderSyncer) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// Pending reports how many offline edits are queued.
func (s *OrderSyncer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Fetch replaces the local list with the server's. On error the previous
// list is kept so the UI degrades to stale data rather than empty.
func (s *OrderSyncer) Fetch(ctx context.Context) error {
	fresh, err := s.api.FetchOrders(ctx, s.opts.Filter, s.opts.Limit)
	if err != nil {
		return err
	}

	s.mu.Lock()
	known := make(map[string]bool, len(s.orders))
	for _, o := range s.orders {
		known[o.ID] = true
	}
	s.orders = fresh
	s.sortLocked()
	// The fetch is authoritative; any unconfirmed optimistic patch it
	// covers is resolved one way or the other.
	s.patches = make(map[string]patchMark)
	arrivals := make([]models.Order, 0)
	if len(known) > 0 {
		for _, o := range s.orders {
			if !known[o.ID] {
				arrivals = append(arrivals, o)
			}
		}
	}
	snapshot := make([]models.Order, len(s.orders))
	copy(snapshot, s.orders)
	s.mu.Unlock()

	for _, o := range arrivals {
		s.notifyNew(o)
	}
	s.notifyChange(snapshot)
	return nil
}

func (s *OrderSyncer) notifyNew(o models.Order) {
	if s.opts.OnNewOrder != nil {
		s.opts.OnNewOrder(o)
	}
}

func (s *OrderSyncer) notifyChange(orders []models.Order) {
	if s.opts.OnChange != nil {
		s.opts.OnChange(orders)
	}
}

func (s *OrderSyncer) sortLocked() {
	sort.SliceStable(s.orders, func(i, j int) bool {
		if s.orders[i].CreatedAt.Equal(s.orders[j].CreatedAt) {
			return s.orders[i].ID < s.orders[j].ID
		}
		return s.orders[i].CreatedAt.Before(s.orders[j].CreatedAt)
	})
}

func (s *OrderSyncer) indexLocked(orderID string) int {
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			return i
		}
	}
	return -1
}

func (s *OrderSyncer) matchesFilter(status models.OrderStatus) bool {
	if len(s.opts.Filter) == 0 {
		return true
	}
	for _, want := range s.opts.Filter {
		if want == status {
			return true
		}
	}
	return false
}

// applyEvent folds one stream event into the local list. Orders graduate in
// and out of a status filter as their status changes.
func (s *OrderSyncer) applyEvent(ev OrderEvent) {
	var (
		arrival  *models.Order
		snapshot []models.Order
		changed  bool
	)

	s.mu.Lock()
	switch ev.Type {
	case EventInsert:
		if ev.New == nil || !s.matchesFilter(ev.New.Status) {
			break
		}
		if s.indexLocked(ev.New.ID) >= 0 {
			break // duplicate delivery
		}
		s.orders = append(s.orders, *ev.New)
		s.sortLocked()
		o := *ev.New
		arrival = &o
		changed = true

	case EventUpdate:
		if ev.New == nil {
			break
		}
		if mark, ok := s.patches[ev.New.ID]; ok {
			if !ev.New.UpdatedAt.After(mark.baseline) {
				break // stale echo of the pre-patch row
			}
			delete(s.patches, ev.New.ID)
		}
		i := s.indexLocked(ev.New.ID)
		switch {
		case !s.matchesFilter(ev.New.Status):
			if i >= 0 {
				s.orders = append(s.orders[:i], s.orders[i+1:]...)
				changed = true
			}
		case i < 0:
			s.orders = append(s.orders, *ev.New)
			s.sortLocked()
			changed = true
		default:
			s.orders[i] = *ev.New
			changed = true
		}

	case EventDelete:
		row := ev.Old
		if row == nil {
			row = ev.New
		}
		if row == nil {
			break
		}
		if i := s.indexLocked(row.ID); i >= 0 {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			changed = true
		}
		delete(s.pending, row.ID)
		delete(s.patches, row.ID)
	}
	if changed {
		snapshot = make([]models.Order, len(s.orders))
		copy(snapshot, s.orders)
	}
	s.mu.Unlock()

	if arrival != nil {
		s.notifyNew(*arrival)
	}
	if changed {
		s.notifyChange(snapshot)
	}
}

// UpdateOrderStatus applies the change locally at once, then confirms it
// with the server. Offline, the edit is queued instead; online failure rolls
// the list back by refetching.
func (s *OrderSyncer) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	var snapshot []models.Order
	if i := s.indexLocked(orderID); i >= 0 {
		s.patches[orderID] = patchMark{seq: seq, baseline: s.orders[i].UpdatedAt}
		s.orders[i].Status = status
		snapshot = make([]models.Order, len(s.orders))
		copy(snapshot, s.orders)
	}
	if !s.online {
		st := status
		s.pending[orderID] = &PendingUpdate{OrderID: orderID, Status: &st, seq: seq}
		s.mu.Unlock()
		if snapshot != nil {
			s.notifyChange(snapshot)
		}
		return nil
	}
	s.mu.Unlock()
	if snapshot != nil {
		s.notifyChange(snapshot)
	}

	if err := s.api.UpdateOrderStatus(ctx, orderID, status); err != nil {
		s.rollback(ctx, orderID)
		return err
	}
	return nil
}

// UpdateOrderItems is the items counterpart of UpdateOrderStatus.
func (s *OrderSyncer) UpdateOrderItems(ctx context.Context, orderID string, items []models.OrderItem) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	var snapshot []models.Order
	if i := s.indexLocked(orderID); i >= 0 {
		s.patches[orderID] = patchMark{seq: seq, baseline: s.orders[i].UpdatedAt}
		s.orders[i].Items = items
		snapshot = make([]models.Order, len(s.orders))
		copy(snapshot, s.orders)
	}
	if !s.online {
		s.pending[orderID] = &PendingUpdate{OrderID: orderID, Items: items, seq: seq}
		s.mu.Unlock()
		if snapshot != nil {
			s.notifyChange(snapshot)
		}
		return nil
	}
	s.mu.Unlock()
	if snapshot != nil {
		s.notifyChange(snapshot)
	}

	if err := s.api.UpdateOrderItems(ctx, orderID, items); err != nil {
		s.rollback(ctx, orderID)
		return err
	}
	return nil
}

// rollback discards the optimistic patch and restores server truth.
func (s *OrderSyncer) rollback(ctx context.Context, orderID string) {
	s.mu.Lock()
	delete(s.patches, orderID)
	s.mu.Unlock()
	if err := s.Fetch(ctx); err != nil {
		log.Printf("orders: rollback refetch failed: %v", err)
	}
}

// Online reports whether edits go straight to the server.
func (s *OrderSyncer) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// SetOnline switches connectivity. Going offline releases the stream; going
// online flushes the queued edits in order, resubscribes and refetches.
func (s *OrderSyncer) SetOnline(ctx context.Context, online bool) error {
	s.mu.Lock()
	if s.online == online {
		s.mu.Unlock()
		return nil
	}
	s.online = online
	if !online {
		release := s.release
		s.release = nil
		s.state = StateDisconnected
		s.mu.Unlock()
		if release != nil {
			release()
		}
		return nil
	}
	s.state = StateReconnecting
	s.mu.Unlock()

	s.flushPending(ctx)
	if err := s.subscribe(ctx); err != nil {
		return err
	}
	return s.Fetch(ctx)
}

// flushPending sends queued edits oldest first. A failed flush keeps its
// entry queued for the next online transition.
func (s *OrderSyncer) flushPending(ctx context.Context) {
	s.mu.Lock()
	queued := make([]*PendingUpdate, 0, len(s.pending))
	for _, p := range s.pending {
		queued = append(queued, p)
	}
	s.mu.Unlock()
	sort.Slice(queued, func(i, j int) bool { return queued[i].seq < queued[j].seq })

	for _, p := range queued {
		var err error
		if p.Status != nil {
			err = s.api.UpdateOrderStatus(ctx, p.OrderID, *p.Status)
		} else {
			err = s.api.UpdateOrderItems(ctx, p.OrderID, p.Items)
		}
		if err != nil {
			log.Printf("orders: flush of %s failed: %v", p.OrderID, err)
			continue
		}
		s.mu.Lock()
		// Remove only if no newer edit replaced this entry meanwhile.
		if cur, ok := s.pending[p.OrderID]; ok && cur.seq == p.seq {
			delete(s.pending, p.OrderID)
		}
		s.mu.Unlock()
	}
}
