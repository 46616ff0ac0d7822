package item

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/uzdenov777/shareit/internal/pkg/clock"
)

type memRepo struct {
	mu       sync.Mutex
	nextID   int64
	items    map[int64]*Item
	comments []*Comment
	names    map[int64]string
}

func newMemRepo() *memRepo {
	return &memRepo{items: map[int64]*Item{}, names: map[int64]string{}}
}

func (r *memRepo) Create(_ context.Context, it *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	it.ID = r.nextID
	cp := *it
	r.items[it.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id int64) (*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (r *memRepo) Update(_ context.Context, it *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *it
	r.items[it.ID] = &cp
	return nil
}

func (r *memRepo) SetPhoto(_ context.Context, id int64, fileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[id].PhotoID = &fileID
	return nil
}

func (r *memRepo) page(match func(*Item) bool, offset, limit int) ([]*Item, int) {
	var all []*Item
	for _, it := range r.items {
		if match(it) {
			cp := *it
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	if offset >= total {
		return nil, total
	}
	end := min(offset+limit, total)
	return all[offset:end], total
}

func (r *memRepo) ListByOwner(_ context.Context, ownerID int64, offset, limit int) ([]*Item, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, total := r.page(func(it *Item) bool { return it.OwnerID == ownerID }, offset, limit)
	return items, total, nil
}

func (r *memRepo) SearchAvailable(_ context.Context, text string, offset, limit int) ([]*Item, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	needle := strings.ToLower(text)
	items, total := r.page(func(it *Item) bool {
		return it.Available && (strings.Contains(strings.ToLower(it.Name), needle) ||
			strings.Contains(strings.ToLower(it.Description), needle))
	}, offset, limit)
	return items, total, nil
}

func (r *memRepo) ListByRequestIDs(_ context.Context, requestIDs []int64) ([]*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := map[int64]bool{}
	for _, id := range requestIDs {
		wanted[id] = true
	}
	items, _ := r.page(func(it *Item) bool { return it.RequestID != nil && wanted[*it.RequestID] }, 0, len(r.items))
	return items, nil
}

func (r *memRepo) CreateComment(_ context.Context, c *Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = int64(len(r.comments) + 1)
	c.AuthorName = r.names[c.AuthorID]
	cp := *c
	r.comments = append(r.comments, &cp)
	return nil
}

func (r *memRepo) ListComments(_ context.Context, itemIDs []int64) (map[int64][]*Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[int64][]*Comment{}
	for _, id := range itemIDs {
		for _, c := range r.comments {
			if c.ItemID == id {
				cp := *c
				out[id] = append(out[id], &cp)
			}
		}
	}
	return out, nil
}

type knownIDs map[int64]bool

func (k knownIDs) Exists(_ context.Context, id int64) (bool, error) {
	return k[id], nil
}

type historyMock struct {
	mock.Mock
}

func (m *historyMock) HasCompletedRental(ctx context.Context, userID, itemID int64) (bool, error) {
	args := m.Called(ctx, userID, itemID)
	return args.Bool(0), args.Error(1)
}

func (m *historyMock) LastAndNext(ctx context.Context, itemID int64) (*BookingBrief, *BookingBrief, error) {
	args := m.Called(ctx, itemID)
	last, _ := args.Get(0).(*BookingBrief)
	next, _ := args.Get(1).(*BookingBrief)
	return last, next, args.Error(2)
}

const (
	ownerID  int64 = 1
	renterID int64 = 2
	otherID  int64 = 3
)

type fixture struct {
	svc     Service
	repo    *memRepo
	history *historyMock
}

func newFixture() *fixture {
	repo := newMemRepo()
	repo.names[renterID] = "Renter"
	history := &historyMock{}
	users := knownIDs{ownerID: true, renterID: true, otherID: true}
	requests := knownIDs{10: true}
	clk := clock.NewManual(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	return &fixture{
		svc:     NewService(repo, users, requests, history, clk, nil),
		repo:    repo,
		history: history,
	}
}

func available(v bool) *bool { return &v }

func (f *fixture) createItem(t *testing.T, name string, avail bool) *Item {
	t.Helper()
	it, err := f.svc.Create(context.Background(), ownerID, CreateRequest{
		Name:        name,
		Description: name + " for rent",
		Available:   available(avail),
	})
	require.NoError(t, err)
	return it
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.svc.Create(ctx, 99, CreateRequest{Name: "Drill", Description: "d", Available: available(true)})
	assert.ErrorIs(t, err, ErrOwnerNotFound)

	_, err = f.svc.Create(ctx, ownerID, CreateRequest{Name: " ", Description: "d", Available: available(true)})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = f.svc.Create(ctx, ownerID, CreateRequest{Name: "Drill", Description: "", Available: available(true)})
	assert.ErrorIs(t, err, ErrDescriptionRequired)

	_, err = f.svc.Create(ctx, ownerID, CreateRequest{Name: "Drill", Description: "d"})
	assert.ErrorIs(t, err, ErrAvailableRequired)

	missing := int64(77)
	_, err = f.svc.Create(ctx, ownerID, CreateRequest{Name: "Drill", Description: "d", Available: available(true), RequestID: &missing})
	assert.ErrorIs(t, err, ErrRequestNotFound)

	known := int64(10)
	it, err := f.svc.Create(ctx, ownerID, CreateRequest{Name: "Drill", Description: "d", Available: available(true), RequestID: &known})
	require.NoError(t, err)
	assert.Equal(t, &known, it.RequestID)
}

func TestUpdateIsPartialAndOwnerOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	it := f.createItem(t, "Drill", true)

	newName := "Hammer drill"
	_, err := f.svc.Update(ctx, renterID, it.ID, UpdateRequest{Name: &newName})
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = f.svc.Update(ctx, 99, it.ID, UpdateRequest{Name: &newName})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.svc.Update(ctx, ownerID, 404, UpdateRequest{Name: &newName})
	assert.ErrorIs(t, err, ErrNotFound)

	blank := "  "
	updated, err := f.svc.Update(ctx, ownerID, it.ID, UpdateRequest{
		Name:        &newName,
		Description: &blank,
		Available:   available(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Hammer drill", updated.Name)
	assert.Equal(t, "Drill for rent", updated.Description)
	assert.False(t, updated.Available)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.createItem(t, "Cordless Drill", true)
	f.createItem(t, "Drill press", false)
	f.createItem(t, "Ladder", true)

	found, total, err := f.svc.Search(ctx, "   ", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Zero(t, total)

	found, total, err = f.svc.Search(ctx, "dRiLl", 0, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Cordless Drill", found[0].Name)
}

func TestGetDetailShowsBookingsOnlyToOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	it := f.createItem(t, "Tent", true)

	last := &BookingBrief{ID: 4, BookerID: renterID}
	next := &BookingBrief{ID: 9, BookerID: otherID}
	f.history.On("LastAndNext", mock.Anything, it.ID).Return(last, next, nil).Once()

	d, err := f.svc.GetDetail(ctx, ownerID, it.ID)
	require.NoError(t, err)
	assert.Equal(t, last, d.LastBooking)
	assert.Equal(t, next, d.NextBooking)
	assert.NotNil(t, d.Comments)

	d, err = f.svc.GetDetail(ctx, renterID, it.ID)
	require.NoError(t, err)
	assert.Nil(t, d.LastBooking)
	assert.Nil(t, d.NextBooking)

	f.history.AssertExpectations(t)
}

func TestListByOwnerPaginatesByOffset(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		f.createItem(t, name, true)
	}
	f.history.On("LastAndNext", mock.Anything, mock.Anything).Return(nil, nil, nil)

	details, total, err := f.svc.ListByOwner(ctx, ownerID, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, details, 2)
	assert.Equal(t, "d", details[0].Name)
	assert.Equal(t, "e", details[1].Name)

	_, _, err = f.svc.ListByOwner(ctx, 99, 0, 10)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAddCommentRequiresCompletedRental(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	it := f.createItem(t, "Kayak", true)

	f.history.On("HasCompletedRental", mock.Anything, otherID, it.ID).Return(false, nil).Once()
	_, err := f.svc.AddComment(ctx, otherID, it.ID, "Great kayak")
	assert.ErrorIs(t, err, ErrNoCompletedRental)

	f.history.On("HasCompletedRental", mock.Anything, renterID, it.ID).Return(true, nil).Once()
	c, err := f.svc.AddComment(ctx, renterID, it.ID, "  Great kayak ")
	require.NoError(t, err)
	assert.Equal(t, "Great kayak", c.Text)
	assert.Equal(t, "Renter", c.AuthorName)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), c.CreatedAt)

	_, err = f.svc.AddComment(ctx, renterID, it.ID, "")
	assert.ErrorIs(t, err, ErrCommentTextRequired)

	_, err = f.svc.AddComment(ctx, renterID, 404, "hi")
	assert.ErrorIs(t, err, ErrNotFound)

	f.history.AssertExpectations(t)
}

func TestListByRequestIDsGroups(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	reqID := int64(10)
	_, err := f.svc.Create(ctx, ownerID, CreateRequest{Name: "Tent", Description: "2p", Available: available(true), RequestID: &reqID})
	require.NoError(t, err)
	f.createItem(t, "Unrelated", true)

	grouped, err := f.svc.ListByRequestIDs(ctx, []int64{10, 11})
	require.NoError(t, err)
	assert.Len(t, grouped[10], 1)
	assert.Empty(t, grouped[11])
}

func TestSetPhotoOwnerOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	it := f.createItem(t, "Camera", true)

	assert.ErrorIs(t, f.svc.SetPhoto(ctx, renterID, it.ID, "f-1"), ErrNotOwner)
	require.NoError(t, f.svc.SetPhoto(ctx, ownerID, it.ID, "f-1"))

	got, err := f.svc.GetByID(ctx, it.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PhotoID)
	assert.Equal(t, "f-1", *got.PhotoID)
}
