package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coastalstay/internal/app/commands"
	"coastalstay/internal/app/middleware"
	appoutbox "coastalstay/internal/app/outbox"
	domainauth "coastalstay/internal/domain/auth"
	domainproperties "coastalstay/internal/domain/properties"
	domainuser "coastalstay/internal/domain/user"
)

var now = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newProperty(t *testing.T, id, name string) *domainproperties.Property {
	t.Helper()
	p, err := domainproperties.NewProperty(domainproperties.CreateParams{
		ID:        domainproperties.PropertyID(id),
		Name:      name,
		MaxGuests: 4,
		Now:       now,
	})
	require.NoError(t, err)
	return p
}

func TestPropertyRepository_SaveVersioning(t *testing.T) {
	ctx := context.Background()
	repo := NewPropertyRepository()
	p := newProperty(t, "p1", "Lagoon House")
	require.NoError(t, repo.Save(ctx, p))
	assert.Equal(t, int64(1), p.Version)

	first, err := repo.ByID(ctx, "p1")
	require.NoError(t, err)
	second, err := repo.BySlug(ctx, "LAGOON-HOUSE")
	require.NoError(t, err)
	assert.Empty(t, first.PendingEvents())

	require.NoError(t, repo.Save(ctx, first))
	assert.ErrorIs(t, repo.Save(ctx, second), domainproperties.ErrConcurrentWrite)

	stored, err := repo.ByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Version)
}

func TestPropertyRepository_SlugOwnership(t *testing.T) {
	ctx := context.Background()
	repo := NewPropertyRepository()
	require.NoError(t, repo.Save(ctx, newProperty(t, "p1", "Lagoon House")))
	assert.ErrorIs(t, repo.Save(ctx, newProperty(t, "p2", "Lagoon House")), domainproperties.ErrSlugTaken)

	p, err := repo.ByID(ctx, "p1")
	require.NoError(t, err)
	require.NoError(t, p.UpdateDetails(domainproperties.DetailsParams{Slug: "lagoon-villa", Name: "Lagoon Villa", MaxGuests: 4}, now))
	require.NoError(t, repo.Save(ctx, p))

	_, err = repo.BySlug(ctx, "lagoon-house")
	assert.ErrorIs(t, err, domainproperties.ErrNotFound)
	require.NoError(t, repo.Save(ctx, newProperty(t, "p2", "Lagoon House")))
}

func TestPropertyRepository_ListPaging(t *testing.T) {
	ctx := context.Background()
	repo := NewPropertyRepository()
	for _, item := range []struct{ id, name string }{{"a", "Beach Hut"}, {"b", "Alpine Cabin"}, {"c", "Coral Villa"}} {
		p := newProperty(t, item.id, item.name)
		p.Publish(now)
		require.NoError(t, repo.Save(ctx, p))
	}
	res, err := repo.List(ctx, domainproperties.ListParams{Sort: domainproperties.SortName, Limit: 2, Offset: 1, OnlyActive: true})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Beach Hut", res.Items[0].Name)
	assert.Equal(t, "Coral Villa", res.Items[1].Name)

	res, err = repo.List(ctx, domainproperties.ListParams{Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Empty(t, res.Items)
}

func TestOutbox_FlushDeliversInOrder(t *testing.T) {
	ctx := context.Background()
	var got []string
	box := NewOutbox(nil, appoutbox.HandlerFunc(func(ctx context.Context, rec appoutbox.EventRecord) error {
		got = append(got, rec.Name)
		return nil
	}))
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{ID: "1", Name: "property.created"}))
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{ID: "2", Name: "property.published"}))
	assert.Len(t, box.Pending(), 2)

	require.NoError(t, box.Flush(ctx))
	assert.Equal(t, []string{"property.created", "property.published"}, got)
	assert.Empty(t, box.Pending())
}

func TestOutbox_DiscardDropsPending(t *testing.T) {
	ctx := context.Background()
	delivered := 0
	box := NewOutbox(nil, appoutbox.HandlerFunc(func(context.Context, appoutbox.EventRecord) error {
		delivered++
		return nil
	}))
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{ID: "1", Name: "property.created"}))
	box.Discard(ctx)
	require.NoError(t, box.Flush(ctx))
	assert.Zero(t, delivered)
}

type submitCommand struct{}

func (submitCommand) Key() string { return "inquiries.submit" }

type busFunc func(ctx context.Context, cmd commands.Command) (any, error)

func (f busFunc) Dispatch(ctx context.Context, cmd commands.Command) (any, error) { return f(ctx, cmd) }

func TestOutbox_ConcurrentCommandsKeepOwnEvents(t *testing.T) {
	var (
		mu        sync.Mutex
		delivered []string
	)
	box := NewOutbox(nil, appoutbox.HandlerFunc(func(_ context.Context, rec appoutbox.EventRecord) error {
		mu.Lock()
		defer mu.Unlock()
		delivered = append(delivered, rec.Name)
		return nil
	}))
	flush := middleware.OutboxFlush(box, nil)

	added := make(chan struct{})
	release := make(chan struct{})
	slow := flush(busFunc(func(ctx context.Context, _ commands.Command) (any, error) {
		if err := box.Add(ctx, appoutbox.EventRecord{ID: "1", Name: "inquiry.submitted"}); err != nil {
			return nil, err
		}
		close(added)
		<-release
		return "ok", nil
	}))
	failing := flush(busFunc(func(ctx context.Context, _ commands.Command) (any, error) {
		_ = box.Add(ctx, appoutbox.EventRecord{ID: "2", Name: "property.bookings_replaced"})
		return nil, errors.New("slug taken")
	}))
	quiet := flush(busFunc(func(context.Context, commands.Command) (any, error) { return "ok", nil }))

	done := make(chan error, 1)
	go func() {
		_, err := slow.Dispatch(context.Background(), submitCommand{})
		done <- err
	}()
	<-added

	_, err := failing.Dispatch(context.Background(), submitCommand{})
	require.Error(t, err)
	_, err = quiet.Dispatch(context.Background(), submitCommand{})
	require.NoError(t, err)
	mu.Lock()
	assert.Empty(t, delivered)
	mu.Unlock()

	close(release)
	require.NoError(t, <-done)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"inquiry.submitted"}, delivered)
	assert.Empty(t, box.Pending())
}

func TestIdempotencyStore_SweepsExpired(t *testing.T) {
	ctx := context.Background()
	store := NewIdempotencyStore(time.Hour)
	store.now = func() time.Time { return now }
	require.NoError(t, store.Save(ctx, middleware.IdempotencyRecord{Key: "old", OccurredAt: now.Add(-2 * time.Hour)}))
	require.NoError(t, store.Save(ctx, middleware.IdempotencyRecord{Key: "new", OccurredAt: now, Kind: "booking: id must be unique"}))

	assert.Equal(t, 1, store.Len())
	rec, ok, err := store.Get(ctx, "new")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "booking: id must be unique", rec.Kind)
	_, ok, _ = store.Get(ctx, "old")
	assert.False(t, ok)
}

func TestStaffRepository_EmailUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewStaffRepository()
	require.NoError(t, repo.Save(ctx, &domainuser.Staff{ID: "u1", Email: "a@b.co"}))
	assert.ErrorIs(t, repo.Save(ctx, &domainuser.Staff{ID: "u2", Email: "A@b.co"}), domainuser.ErrEmailAlreadyUsed)

	found, err := repo.ByEmail(ctx, " A@B.CO ")
	require.NoError(t, err)
	assert.Equal(t, domainuser.ID("u1"), found.ID)
}

func TestSessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	store.now = func() time.Time { return now }
	require.NoError(t, store.Save(ctx, &domainauth.Session{Token: "live", UserID: "u1", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.Save(ctx, &domainauth.Session{Token: "old", UserID: "u1", ExpiresAt: now.Add(-time.Minute)}))

	_, err := store.Get(ctx, "live")
	require.NoError(t, err)
	_, err = store.Get(ctx, "old")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)

	require.NoError(t, store.DeleteByUser(ctx, "u1"))
	_, err = store.Get(ctx, "live")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}
