package rental

// Exercises the checkout/check-in state machine against an in-memory store
// that applies the same transition rules as the SQL repository: one atomic
// unit per transition, counter cap/floor, one open rental per pair.

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	rentalrepo "github.com/sundbean/retro-video-store/repository/rental"
)

type memVideo struct {
	total     int64
	available int64
}

type memRental struct {
	id         int64
	customerID int64
	videoID    int64
	due        time.Time
	returned   *time.Time
}

type memStore struct {
	repoMock // unimplemented list methods panic if reached

	videos    map[int64]*memVideo
	customers map[int64]*int64 // id -> videos_checked_out_count
	rentals   []*memRental
	nextID    int64
}

func newMemStore() *memStore {
	return &memStore{
		videos:    map[int64]*memVideo{},
		customers: map[int64]*int64{},
		nextID:    1,
	}
}

func (m *memStore) addCustomer(id int64) { n := int64(0); m.customers[id] = &n }
func (m *memStore) addVideo(id, total int64) {
	m.videos[id] = &memVideo{total: total, available: total}
}

func (m *memStore) openRental(customerID, videoID int64) *memRental {
	for _, r := range m.rentals {
		if r.customerID == customerID && r.videoID == videoID && r.returned == nil {
			return r
		}
	}
	return nil
}

func (m *memStore) CheckOut(ctx context.Context, customerID, videoID int64, due time.Time) (*Info, error) {
	v, ok := m.videos[videoID]
	if !ok {
		return nil, rentalrepo.ErrVideoNotFound
	}
	if v.available <= 0 {
		return nil, rentalrepo.ErrNoInventory
	}
	count, ok := m.customers[customerID]
	if !ok {
		return nil, rentalrepo.ErrCustomerNotFound
	}
	if m.openRental(customerID, videoID) != nil {
		return nil, rentalrepo.ErrAlreadyOut
	}

	r := &memRental{id: m.nextID, customerID: customerID, videoID: videoID, due: due}
	m.nextID++
	m.rentals = append(m.rentals, r)
	v.available--
	*count++
	return &Info{
		ID: r.id, CustomerID: customerID, VideoID: videoID, DueDate: due,
		VideosCheckedOutCount: *count, AvailableInventory: v.available,
	}, nil
}

func (m *memStore) CheckIn(ctx context.Context, customerID, videoID int64, returned time.Time) (*Info, error) {
	count, ok := m.customers[customerID]
	if !ok {
		return nil, rentalrepo.ErrCustomerNotFound
	}
	v, ok := m.videos[videoID]
	if !ok {
		return nil, rentalrepo.ErrVideoNotFound
	}
	r := m.openRental(customerID, videoID)
	if r == nil {
		for _, prev := range m.rentals {
			if prev.customerID == customerID && prev.videoID == videoID {
				return nil, rentalrepo.ErrAlreadyReturned
			}
		}
		return nil, rentalrepo.ErrNoOpenRental
	}

	r.returned = &returned
	if v.available < v.total {
		v.available++
	}
	if *count > 0 {
		*count--
	}
	return &Info{
		ID: r.id, CustomerID: customerID, VideoID: videoID, DueDate: r.due,
		VideosCheckedOutCount: *count, AvailableInventory: v.available,
	}, nil
}

// requireConsistent recomputes the counters from rental rows and compares
// them against the denormalized values.
func (m *memStore) requireConsistent(t *testing.T) {
	t.Helper()
	openPerVideo := map[int64]int64{}
	openPerCustomer := map[int64]int64{}
	for _, r := range m.rentals {
		if r.returned == nil {
			openPerVideo[r.videoID]++
			openPerCustomer[r.customerID]++
		}
	}
	for id, v := range m.videos {
		require.Equal(t, v.total-openPerVideo[id], v.available, "video %d available", id)
		require.GreaterOrEqual(t, v.available, int64(0))
		require.LessOrEqual(t, v.available, v.total)
	}
	for id, count := range m.customers {
		require.Equal(t, openPerCustomer[id], *count, "customer %d count", id)
	}
}

func lifecycleService(m *memStore) Service {
	l := &lookupMock{customers: map[int64]bool{}, videos: map[int64]bool{}}
	for id := range m.customers {
		l.customers[id] = true
	}
	for id := range m.videos {
		l.videos[id] = true
	}
	return New(m, l.customerLookup(), l.videoLookup())
}

func TestLifecycle_InventoryRunsOut(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addVideo(1, 2)
	store.addCustomer(10)
	store.addCustomer(20)
	store.addCustomer(30)
	s := lifecycleService(store)

	info, err := s.CheckOut(ctx, 10, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), info.AvailableInventory)
	require.Equal(t, int64(1), info.VideosCheckedOutCount)
	require.WithinDuration(t, time.Now().UTC().Add(RentalPeriod), info.DueDate, 2*time.Second)

	info, err = s.CheckOut(ctx, 20, 1)
	require.NoError(t, err)
	require.Equal(t, int64(0), info.AvailableInventory)

	// Third customer finds the shelf empty; nothing changes.
	_, err = s.CheckOut(ctx, 30, 1)
	require.Equal(t, ErrNoInventory, Code(err))
	require.Equal(t, int64(0), store.videos[1].available)
	require.Equal(t, int64(0), *store.customers[30])
	require.Len(t, store.rentals, 2)
	store.requireConsistent(t)
}

func TestLifecycle_RoundTripRestoresCounters(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addVideo(1, 3)
	store.addCustomer(10)
	s := lifecycleService(store)

	_, err := s.CheckOut(ctx, 10, 1)
	require.NoError(t, err)

	info, err := s.CheckIn(ctx, 10, 1)
	require.NoError(t, err)
	require.Equal(t, int64(3), info.AvailableInventory)
	require.Equal(t, int64(0), info.VideosCheckedOutCount)
	store.requireConsistent(t)

	// The pair can rent again; a fresh rental row is created.
	info, err = s.CheckOut(ctx, 10, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), info.ID)
	store.requireConsistent(t)
}

func TestLifecycle_CheckInWithoutRental(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addVideo(1, 1)
	store.addCustomer(10)
	s := lifecycleService(store)

	_, err := s.CheckIn(ctx, 10, 1)
	require.Equal(t, ErrNoMatchingRental, Code(err))
	store.requireConsistent(t)
}

func TestLifecycle_DoubleCheckIn(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addVideo(1, 1)
	store.addCustomer(10)
	s := lifecycleService(store)

	_, err := s.CheckOut(ctx, 10, 1)
	require.NoError(t, err)
	_, err = s.CheckIn(ctx, 10, 1)
	require.NoError(t, err)

	_, err = s.CheckIn(ctx, 10, 1)
	require.Equal(t, ErrAlreadyCheckedIn, Code(err))
	store.requireConsistent(t)
}

func TestLifecycle_DuplicateOpenCheckout(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addVideo(1, 5)
	store.addCustomer(10)
	s := lifecycleService(store)

	_, err := s.CheckOut(ctx, 10, 1)
	require.NoError(t, err)
	_, err = s.CheckOut(ctx, 10, 1)
	require.Equal(t, ErrAlreadyOut, Code(err))
	store.requireConsistent(t)
}

func TestLifecycle_MixedSequenceStaysConsistent(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addVideo(1, 2)
	store.addVideo(2, 1)
	store.addCustomer(10)
	store.addCustomer(20)
	s := lifecycleService(store)

	steps := []struct {
		out        bool
		customerID int64
		videoID    int64
		wantCode   ErrCode
	}{
		{true, 10, 1, ""},
		{true, 20, 1, ""},
		{true, 10, 2, ""},
		{true, 20, 2, ErrNoInventory},
		{false, 10, 1, ""},
		{true, 20, 2, ErrNoInventory}, // still out to customer 10
		{false, 10, 2, ""},
		{true, 20, 2, ""},
		{false, 20, 1, ""},
		{false, 20, 2, ""},
	}
	for i, st := range steps {
		var err error
		if st.out {
			_, err = s.CheckOut(ctx, st.customerID, st.videoID)
		} else {
			_, err = s.CheckIn(ctx, st.customerID, st.videoID)
		}
		if st.wantCode == "" {
			require.NoError(t, err, "step %d", i)
		} else {
			require.Equal(t, st.wantCode, Code(err), "step %d", i)
		}
		store.requireConsistent(t)
	}

	require.Equal(t, int64(2), store.videos[1].available)
	require.Equal(t, int64(1), store.videos[2].available)
	require.Equal(t, int64(0), *store.customers[10])
	require.Equal(t, int64(0), *store.customers[20])
}
