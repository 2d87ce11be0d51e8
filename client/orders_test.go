package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufra-app/restaurant-api/models"
)

type fakeOrdersAPI struct {
	mu          sync.Mutex
	orders      []models.Order
	fetchErr    error
	statusErr   error
	itemsErr    error
	fetchCalls  int
	statusCalls []string
	itemsCalls  []string
}

func (f *fakeOrdersAPI) FetchOrders(ctx context.Context, statuses []models.OrderStatus, limit int) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]models.Order, len(f.orders))
	copy(out, f.orders)
	return out, nil
}

func (f *fakeOrdersAPI) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return f.statusErr
	}
	f.statusCalls = append(f.statusCalls, orderID+":"+string(status))
	return nil
}

func (f *fakeOrdersAPI) UpdateOrderItems(ctx context.Context, orderID string, items []models.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.itemsErr != nil {
		return f.itemsErr
	}
	f.itemsCalls = append(f.itemsCalls, orderID)
	return nil
}

type fakeStream struct {
	mu       sync.Mutex
	events   chan OrderEvent
	err      error
	released bool
}

func newFakeStream() *fakeStream {
	return &fakeStream{events: make(chan OrderEvent, 16)}
}

func (f *fakeStream) Subscribe(ctx context.Context) (<-chan OrderEvent, func(), error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.events, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.released {
			f.released = true
			close(f.events)
		}
	}, nil
}

func (f *fakeStream) wasReleased() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

var baseTime = time.Date(2025, 9, 8, 12, 0, 0, 0, time.UTC)

func ord(id string, status models.OrderStatus, created time.Time) models.Order {
	return models.Order{
		ID:          id,
		OrderNumber: "ORD-20250908-" + id,
		Status:      status,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestFetchSortsOldestFirst(t *testing.T) {
	api := &fakeOrdersAPI{orders: []models.Order{
		ord("c", models.OrderStatusPending, baseTime.Add(2*time.Minute)),
		ord("a", models.OrderStatusPending, baseTime),
		ord("b", models.OrderStatusPending, baseTime.Add(time.Minute)),
	}}
	s := NewOrderSyncer(api, newFakeStream(), SyncerOptions{})

	require.NoError(t, s.Fetch(context.Background()))

	orders := s.Orders()
	require.Len(t, orders, 3)
	assert.Equal(t, "a", orders[0].ID)
	assert.Equal(t, "b", orders[1].ID)
	assert.Equal(t, "c", orders[2].ID)
}

func TestFetchFailureKeepsStaleList(t *testing.T) {
	api := &fakeOrdersAPI{orders: []models.Order{ord("a", models.OrderStatusPending, baseTime)}}
	s := NewOrderSyncer(api, newFakeStream(), SyncerOptions{})
	require.NoError(t, s.Fetch(context.Background()))

	api.mu.Lock()
	api.fetchErr = assert.AnError
	api.mu.Unlock()

	require.Error(t, s.Fetch(context.Background()))
	assert.Len(t, s.Orders(), 1)
}

func TestInsertEventAppendsAndNotifies(t *testing.T) {
	var arrivals []string
	s := NewOrderSyncer(&fakeOrdersAPI{}, newFakeStream(), SyncerOptions{
		OnNewOrder: func(o models.Order) { arrivals = append(arrivals, o.ID) },
	})

	o := ord("a", models.OrderStatusPending, baseTime)
	s.applyEvent(OrderEvent{Type: EventInsert, New: &o})
	s.applyEvent(OrderEvent{Type: EventInsert, New: &o}) // duplicate delivery

	require.Len(t, s.Orders(), 1)
	assert.Equal(t, []string{"a"}, arrivals)
}

func TestInsertEventOutsideFilterIgnored(t *testing.T) {
	s := NewOrderSyncer(&fakeOrdersAPI{}, newFakeStream(), SyncerOptions{
		Filter: []models.OrderStatus{models.OrderStatusPending, models.OrderStatusPreparing},
	})

	done := ord("a", models.OrderStatusCompleted, baseTime)
	s.applyEvent(OrderEvent{Type: EventInsert, New: &done})
	assert.Empty(t, s.Orders())
}

func TestUpdateGraduatesIntoFilter(t *testing.T) {
	var arrivals int
	s := NewOrderSyncer(&fakeOrdersAPI{}, newFakeStream(), SyncerOptions{
		Filter:     []models.OrderStatus{models.OrderStatusPreparing},
		OnNewOrder: func(models.Order) { arrivals++ },
	})

	o := ord("a", models.OrderStatusPreparing, baseTime)
	o.UpdatedAt = baseTime.Add(time.Minute)
	s.applyEvent(OrderEvent{Type: EventUpdate, New: &o})

	require.Len(t, s.Orders(), 1)
	assert.Equal(t, models.OrderStatusPreparing, s.Orders()[0].Status)
	assert.Zero(t, arrivals, "graduation is not a new-order arrival")
}

func TestUpdateGraduatesOutOfFilter(t *testing.T) {
	api := &fakeOrdersAPI{orders: []models.Order{ord("a", models.OrderStatusPending, baseTime)}}
	s := NewOrderSyncer(api, newFakeStream(), SyncerOptions{
		Filter: []models.OrderStatus{models.OrderStatusPending},
	})
	require.NoError(t, s.Fetch(context.Background()))

	o := ord("a", models.OrderStatusCompleted, baseTime)
	o.UpdatedAt = baseTime.Add(time.Minute)
	s.applyEvent(OrderEvent{Type: EventUpdate, New: &o})

	assert.Empty(t, s.Orders())
}

func TestUpdateReplacesInPlace(t *testing.T) {
	api := &fakeOrdersAPI{orders: []models.Order{ord("a", models.OrderStatusPending, baseTime)}}
	s := NewOrderSyncer(api, newFakeStream(), SyncerOptions{})
	require.NoError(t, s.Fetch(context.Background()))

	o := ord("a", models.OrderStatusPreparing, baseTime)
	o.UpdatedAt = baseTime.Add(time.Minute)
	s.applyEvent(OrderEvent{Type: EventUpdate, New: &o})

	require.Len(t, s.Orders(), 1)
	assert.Equal(t, models.OrderStatusPreparing, s.Orders()[0].Status)
}

func TestDeleteEventRemoves(t *testing.T) {
	api := &fakeOrdersAPI{orders: []models.Order{
		ord("a", models.OrderStatusPending, baseTime),
		ord("b", models.OrderStatusPending, baseTime.Add(time.Minute)),
	}}
	s := NewOrderSyncer(api, newFakeStream(), SyncerOptions{})
	require.NoError(t, s.Fetch(context.Background()))

	gone := ord("a", models.OrderStatusPending, baseTime)
	s.applyEvent(OrderEvent{Type: EventDelete, Old: &gone})

	require.Len(t, s.Orders(), 1)
	assert.Equal(t, "b", s.Orders()[0].ID)
}

func TestOptimisticStatusUpdate(t *testing.T) {
	api := &fakeOrdersAPI{orders: []models.Order{ord("a", models.OrderStatusPending, baseTime)}}
	s := NewOrderSyncer(api, newFakeStream(), SyncerOptions{})
	require.NoError(t, s.Fetch(context.Background()))

	require.NoError(t, s.UpdateOrderStatus(context.Background(), "a", models.OrderStatusPreparing))

	assert.Equal(t, models.OrderStatusPreparing, s.Orders()[0].Status)
	assert.Equal(t, []string{"a:preparing"}, api.statusCalls)
}

func TestOnlineFailureRollsBackByRefetch(t *testing.T) {
	api := &fakeOrdersAPI{orders: []models.Order{ord("a", models.OrderStatusPending, baseTime)}}
	s := NewOrderSyncer(api, newFakeStream(), SyncerOptions{})
	require.NoError(t, s.Fetch(context.Background()))

	api.mu.Lock()
	api.statusErr = assert.AnError
	api.mu.Unlock()

	err := s.UpdateOrderStatus(context.Background(), "a", models.OrderStatusPreparing)
	require.Error(t, err)

	// server truth restored
	assert.Equal(t, models.OrderStatusPending, s.Orders()[0].Status)
	api.mu.Lock()
	assert.Equal(t, 2, api.fetchCalls)
	api.mu.Unlock()
}

func TestStaleEchoIsDropped(t *testing.T) {
	api := &fakeOrdersAPI{orders: []models.Order{ord("a", models.OrderStatusPending, baseTime)}}
	s := NewOrderSyncer(api, newFakeStream(), SyncerOptions{})
	require.NoError(t, s.Fetch(context.Background()))

	require.NoError(t, s.UpdateOrderStatus(context.Background(), "a", models.OrderStatusPreparing))

	// echo of the pre-patch row: same updated_at, old status
	stale := ord("a", models.OrderStatusPending, baseTime)
	s.applyEvent(OrderEvent{Type: EventUpdate, New: &stale})
	assert.Equal(t, models.OrderStatusPreparing, s.Orders()[0].Status)

	// the real confirmation carries a newer updated_at
	confirmed := ord("a", models.OrderStatusPreparing, baseTime)
	confirmed.UpdatedAt = baseTime.Add(time.Second)
	s.applyEvent(OrderEvent{Type: EventUpdate, New: &confirmed})
	assert.Equal(t, models.OrderStatusPreparing, s.Orders()[0].Status)

	// once confirmed, later updates apply normally again
	later := ord("a", models.OrderStatusReady, baseTime)
	later.UpdatedAt = baseTime.Add(2 * time.Second)
	s.applyEvent(OrderEvent{Type: EventUpdate, New: &later})
	assert.Equal(t, models.OrderStatusReady, s.Orders()[0].Status)
}

func TestOfflineEditsQueueWithLastWriteWins(t *testing.T) {
	api := &fakeOrdersAPI{orders: []models.Order{ord("a", models.OrderStatusPending, baseTime)}}
	s := NewOrderSyncer(api, newFakeStream(), SyncerOptions{})
	require.NoError(t, s.Fetch(context.Background()))

	require.NoError(t, s.SetOnline(context.Background(), false))
	require.NoError(t, s.UpdateOrderStatus(context.Background(), "a", models.OrderStatusPreparing))
	require.NoError(t, s.UpdateOrderStatus(context.Background(), "a", models.OrderStatusReady))

	assert.Equal(t, 1, s.Pending(), "one queued entry per order")
	assert.Equal(t, models.OrderStatusReady, s.Orders()[0].Status)
	api.mu.Lock()
	assert.Empty(t, api.statusCalls, "nothing sent while offline")
	api.mu.Unlock()
}

func TestGoingOnlineFlushesQueueThenFetches(t *testing.T) {
	api := &fakeOrdersAPI{orders: []models.Order{ord("a", models.OrderStatusPending, baseTime)}}
	s := NewOrderSyncer(api, newFakeStream(), SyncerOptions{})
	require.NoError(t, s.Fetch(context.Background()))

	require.NoError(t, s.SetOnline(context.Background(), false))
	require.NoError(t, s.UpdateOrderStatus(context.Background(), "a", models.OrderStatusPreparing))
	require.NoError(t, s.UpdateOrderStatus(context.Background(), "a", models.OrderStatusReady))

	require.NoError(t, s.SetOnline(context.Background(), true))

	api.mu.Lock()
	assert.Equal(t, []string{"a:ready"}, api.statusCalls, "only the last edit is flushed")
	fetches := api.fetchCalls
	api.mu.Unlock()

	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, StateLive, s.State())
	assert.Equal(t, 2, fetches)
}

func TestFailedFlushStaysQueued(t *testing.T) {
	api := &fakeOrdersAPI{orders: []models.Order{ord("a", models.OrderStatusPending, baseTime)}}
	s := NewOrderSyncer(api, newFakeStream(), SyncerOptions{})
	require.NoError(t, s.Fetch(context.Background()))

	require.NoError(t, s.SetOnline(context.Background(), false))
	require.NoError(t, s.UpdateOrderStatus(context.Background(), "a", models.OrderStatusPreparing))

	api.mu.Lock()
	api.statusErr = assert.AnError
	api.mu.Unlock()

	require.NoError(t, s.SetOnline(context.Background(), true))
	assert.Equal(t, 1, s.Pending(), "failed flush keeps the entry queued")
}

func TestStartStreamsEvents(t *testing.T) {
	api := &fakeOrdersAPI{}
	stream := newFakeStream()
	s := NewOrderSyncer(api, stream, SyncerOptions{})

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, StateLive, s.State())

	o := ord("a", models.OrderStatusPending, baseTime)
	stream.events <- OrderEvent{Type: EventInsert, New: &o}

	require.Eventually(t, func() bool {
		return len(s.Orders()) == 1
	}, time.Second, 10*time.Millisecond)

	s.Stop()
	assert.True(t, stream.wasReleased())
	require.Eventually(t, func() bool {
		return s.State() == StateDisconnected
	}, time.Second, 10*time.Millisecond)
}

func TestStartFetchFailure(t *testing.T) {
	api := &fakeOrdersAPI{fetchErr: assert.AnError}
	s := NewOrderSyncer(api, newFakeStream(), SyncerOptions{})

	require.Error(t, s.Start(context.Background()))
	assert.Equal(t, StateDisconnected, s.State())
}

func TestGoingOfflineReleasesStream(t *testing.T) {
	api := &fakeOrdersAPI{}
	stream := newFakeStream()
	s := NewOrderSyncer(api, stream, SyncerOptions{})
	require.NoError(t, s.Start(context.Background()))

	require.NoError(t, s.SetOnline(context.Background(), false))
	assert.True(t, stream.wasReleased())
	assert.False(t, s.Online())
	require.Eventually(t, func() bool {
		return s.State() == StateDisconnected
	}, time.Second, 10*time.Millisecond)
}
