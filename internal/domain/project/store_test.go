package project

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ganot/taskdesk/internal/codec"
	"github.com/ganot/taskdesk/internal/repository"
	"github.com/ganot/taskdesk/internal/repository/mocks"
	"github.com/ganot/taskdesk/internal/sqlite"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestKV(t *testing.T, quota int64) *sqlite.KVStore {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	return sqlite.NewKVStore(db, quota)
}

// stepClock returns a clock that advances one second per call.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

var testEpoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, kv Storage, opts Options) *Store {
	t.Helper()
	if opts.Now == nil {
		opts.Now = stepClock(testEpoch)
	}
	opts.Location = time.UTC
	s := NewStore(kv, opts, nil)
	s.Load(context.Background())
	return s
}

func createProject(t *testing.T, s *Store, name, client string) *Project {
	t.Helper()
	p, err := s.Create(context.Background(), CreateRequest{ProjectName: name, ClientName: client, Price: 100})
	require.NoError(t, err)
	return p
}

func TestStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newTestKV(t, 0), Options{})

	require.Empty(t, s.List())

	p, err := s.Create(ctx, CreateRequest{ProjectName: "Site", ClientName: "Acme", Price: 100})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.Equal(t, StatusNotStarted, p.WorkStatus)
	require.Equal(t, PriorityMedium, p.Priority)
	require.Equal(t, "USD", p.Currency)
	require.Equal(t, p.CreatedAt, p.UpdatedAt)
	require.Empty(t, p.Tasks)

	updated, err := s.Update(ctx, p.ID, Patch{}.SetPaid(true))
	require.NoError(t, err)
	require.True(t, updated.IsPaid)
	require.True(t, updated.UpdatedAt.After(p.UpdatedAt))

	st := s.Stats()
	require.Equal(t, 1, st.Total)
	require.Equal(t, 1, st.Paid)
	require.Equal(t, 100.0, st.TotalRevenue)
	require.Equal(t, 100, st.PaymentRate)

	require.True(t, s.Delete(ctx, p.ID))
	require.Empty(t, s.List())
	require.Equal(t, 0, s.Stats().Total)
}

func TestStore_CreatePrependsAndValidates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newTestKV(t, 0), Options{})

	first := createProject(t, s, "First", "Acme")
	second := createProject(t, s, "Second", "Acme")
	list := s.List()
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)
	require.Equal(t, first.ID, list[1].ID)

	cases := []CreateRequest{
		{ProjectName: "   ", ClientName: "Acme"},
		{ProjectName: "X", ClientName: ""},
		{ProjectName: "X", ClientName: "Acme", Price: -1},
		{ProjectName: "X", ClientName: "Acme", Currency: "XYZ"},
		{ProjectName: "X", ClientName: "Acme", WorkStatus: "done"},
		{ProjectName: "X", ClientName: "Acme", Priority: "urgent"},
		{ProjectName: "X", ClientName: "Acme", Tasks: []SubTask{{Text: " "}}},
	}
	for _, req := range cases {
		_, err := s.Create(ctx, req)
		require.ErrorIs(t, err, ErrInvalidInput)
	}
	require.Len(t, s.List(), 2)
}

func TestStore_UpdateAndDeleteMissAreNoops(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newTestKV(t, 0), Options{})
	p := createProject(t, s, "Site", "Acme")
	rev := s.Snapshot().Revision

	got, err := s.Update(ctx, "missing", Patch{}.SetPaid(true))
	require.NoError(t, err)
	require.Nil(t, got)

	require.False(t, s.Delete(ctx, "missing"))
	require.Equal(t, rev, s.Snapshot().Revision)

	require.True(t, s.Delete(ctx, p.ID))
	require.False(t, s.Delete(ctx, p.ID))
	require.Empty(t, s.List())
}

func TestStore_UpdateRejectsInvalidPatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newTestKV(t, 0), Options{})
	p := createProject(t, s, "Site", "Acme")

	_, err := s.Update(ctx, p.ID, Patch{}.SetProjectName(" "))
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.Update(ctx, p.ID, Patch{}.SetCurrency("BTC"))
	require.ErrorIs(t, err, ErrInvalidInput)

	got, err := s.Get(p.ID)
	require.NoError(t, err)
	require.Equal(t, "Site", got.ProjectName)
	require.Equal(t, p.UpdatedAt, got.UpdatedAt)
}

func TestStore_UpdatedAtNeverMovesBackwards(t *testing.T) {
	ctx := context.Background()
	times := []time.Time{
		testEpoch.Add(time.Hour),
		testEpoch,
		testEpoch.Add(-time.Hour),
	}
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := times[0]
		if len(times) > 1 {
			times = times[1:]
		}
		return now
	}
	s := newTestStore(t, newTestKV(t, 0), Options{Now: clock})

	p := createProject(t, s, "Site", "Acme")
	prev := p.UpdatedAt
	for i := 0; i < 3; i++ {
		got, err := s.Update(ctx, p.ID, Patch{}.SetPrice(float64(i)))
		require.NoError(t, err)
		require.False(t, got.UpdatedAt.Before(prev))
		require.False(t, got.UpdatedAt.Before(got.CreatedAt))
		prev = got.UpdatedAt
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t, 0)
	s := newTestStore(t, kv, Options{})

	a := createProject(t, s, "Site", "Acme")
	createProject(t, s, "Logo", "Globex")
	_, err := s.AddSubTask(ctx, a.ID, "wireframes")
	require.NoError(t, err)
	s.Close(ctx)

	reloaded := newTestStore(t, kv, Options{})
	require.Equal(t, s.List(), reloaded.List())
}

func TestStore_LoadCorruptDocument(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t, 0)
	require.NoError(t, kv.Set(ctx, DefaultStorageKey, "{not valid json"))

	s := newTestStore(t, kv, Options{})
	require.Empty(t, s.List())

	_, err := kv.Get(ctx, DefaultStorageKey)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_LoadNonArrayDocument(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t, 0)
	require.NoError(t, kv.Set(ctx, DefaultStorageKey, `{"id":"x"}`))

	s := newTestStore(t, kv, Options{})
	require.Empty(t, s.List())
}

func TestStore_LoadKeepsRecordsWithBadDates(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t, 0)
	doc := `[
		{"id":"good","projectName":"Site","clientName":"Acme","createdAt":"2024-01-02T10:00:00Z","updatedAt":"2024-01-03T10:00:00Z"},
		{"id":"no-created","projectName":"Logo","clientName":"Dana","createdAt":"","updatedAt":"2024-02-01T08:00:00.000Z"},
		{"id":"no-dates","projectName":"Card","clientName":"Noa","createdAt":"soon","updatedAt":null},
		{"id":"bad-price","projectName":"Menu","clientName":"Eli","price":"cheap"}
	]`
	require.NoError(t, kv.Set(ctx, DefaultStorageKey, doc))

	s := newTestStore(t, kv, Options{Now: func() time.Time { return testEpoch }})
	list := s.List()
	require.Len(t, list, 3)

	require.Equal(t, "good", list[0].ID)
	require.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), list[0].CreatedAt.UTC())

	require.Equal(t, "no-created", list[1].ID)
	want := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	require.True(t, want.Equal(list[1].CreatedAt))
	require.True(t, want.Equal(list[1].UpdatedAt))

	require.Equal(t, "no-dates", list[2].ID)
	require.True(t, testEpoch.Equal(list[2].CreatedAt))
	require.True(t, testEpoch.Equal(list[2].UpdatedAt))

	raw, err := kv.Get(ctx, DefaultStorageKey)
	require.NoError(t, err)
	require.Equal(t, doc, raw)
}

func TestStore_LoadOversizedDocument(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t, 0)

	src := newTestStore(t, kv, Options{})
	for i := 0; i < 5; i++ {
		createProject(t, src, "Project", "Client")
	}
	src.Close(ctx)

	s := newTestStore(t, kv, Options{MaxDocumentBytes: 100})
	require.Empty(t, s.List())

	_, err := kv.Get(ctx, DefaultStorageKey)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_SizeEvictionReflectedInMemory(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t, 0)

	var dropped []string
	s := newTestStore(t, kv, Options{
		MaxDocumentBytes: 1000,
		SaveDebounce:     time.Hour,
		OnTruncate:       func(ids []string) { dropped = ids },
	})

	var created []*Project
	for i := 0; i < 10; i++ {
		created = append(created, createProject(t, s, "Project with a reasonably long name", "Client"))
	}
	s.Flush(ctx)

	// Newest first; the three oldest are dropped.
	require.Equal(t, []string{created[2].ID, created[1].ID, created[0].ID}, dropped)

	list := s.List()
	require.Len(t, list, 7)
	for i, p := range list {
		require.Equal(t, created[9-i].ID, p.ID)
	}

	raw, err := kv.Get(ctx, DefaultStorageKey)
	require.NoError(t, err)
	persisted, ok := codec.TryDecode[[]Project](raw)
	require.True(t, ok)
	require.Equal(t, list, persisted)
}

// gatedKV blocks the first Set until release is closed.
type gatedKV struct {
	Storage
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedKV) Set(ctx context.Context, key, value string) error {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.Storage.Set(ctx, key, value)
}

func TestStore_EvictionWithConcurrentCommitsKeepsStorageInSync(t *testing.T) {
	ctx := context.Background()
	kv := &gatedKV{Storage: newTestKV(t, 0), entered: make(chan struct{}), release: make(chan struct{})}
	s := newTestStore(t, kv, Options{MaxDocumentBytes: 1000, SaveDebounce: time.Hour})

	var created []*Project
	for i := 0; i < 10; i++ {
		created = append(created, createProject(t, s, "Project with a reasonably long name", "Client"))
	}

	done := make(chan struct{})
	go func() {
		s.Flush(ctx)
		close(done)
	}()
	<-kv.entered

	// The write in flight drops the three oldest; touch one of them meanwhile.
	_, err := s.Update(ctx, created[0].ID, Patch{}.SetPaid(true))
	require.NoError(t, err)
	late := createProject(t, s, "Late", "Client")
	close(kv.release)
	<-done

	list := s.List()
	ids := make([]string, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	require.Contains(t, ids, late.ID)
	for _, p := range created[:3] {
		require.NotContains(t, ids, p.ID)
	}

	raw, err := kv.Get(ctx, DefaultStorageKey)
	require.NoError(t, err)
	persisted, ok := codec.TryDecode[[]Project](raw)
	require.True(t, ok)
	require.Equal(t, list, persisted)
}

func TestStore_QuotaExceededRetriesWithHalf(t *testing.T) {
	ctx := context.Background()
	kv := new(mocks.KeyValueStore)
	kv.On("Get", mock.Anything, DefaultStorageKey).Return("", repository.ErrNotFound).Once()
	kv.On("Set", mock.Anything, DefaultStorageKey, mock.Anything).Return(repository.ErrQuotaExceeded).Once()
	kv.On("Keys", mock.Anything).Return([]string{"temp_upload", "cache_x", DefaultStorageKey}, nil).Once()
	kv.On("Remove", mock.Anything, "temp_upload").Return(nil).Once()
	kv.On("Remove", mock.Anything, "cache_x").Return(nil).Once()
	kv.On("Set", mock.Anything, DefaultStorageKey, mock.Anything).Return(nil).Once()

	s := newTestStore(t, kv, Options{SaveDebounce: time.Hour})
	for i := 0; i < 4; i++ {
		createProject(t, s, "Project", "Client")
	}
	s.Flush(ctx)

	require.Len(t, s.List(), 2)
	kv.AssertExpectations(t)

	saved := kv.Calls[len(kv.Calls)-1].Arguments.String(2)
	persisted, ok := codec.TryDecode[[]Project](saved)
	require.True(t, ok)
	require.Len(t, persisted, 2)
}

func TestStore_QuotaRetryFailureIsDropped(t *testing.T) {
	ctx := context.Background()
	kv := new(mocks.KeyValueStore)
	kv.On("Get", mock.Anything, DefaultStorageKey).Return("", repository.ErrNotFound).Once()
	kv.On("Set", mock.Anything, DefaultStorageKey, mock.Anything).Return(repository.ErrQuotaExceeded).Twice()
	kv.On("Keys", mock.Anything).Return([]string{}, nil).Once()

	s := newTestStore(t, kv, Options{SaveDebounce: time.Hour})
	for i := 0; i < 4; i++ {
		createProject(t, s, "Project", "Client")
	}
	s.Flush(ctx)

	require.Len(t, s.List(), 4)
	kv.AssertExpectations(t)
}

type countingKV struct {
	Storage
	mu   sync.Mutex
	sets int
}

func (c *countingKV) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	return c.Storage.Set(ctx, key, value)
}

func (c *countingKV) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

func TestStore_DebounceCoalescesBurst(t *testing.T) {
	kv := &countingKV{Storage: newTestKV(t, 0)}
	s := newTestStore(t, kv, Options{SaveDebounce: 30 * time.Millisecond})

	for i := 0; i < 5; i++ {
		createProject(t, s, "Project", "Client")
	}
	require.Equal(t, 0, kv.count())

	require.Eventually(t, func() bool { return kv.count() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, 1, kv.count())
}

func TestStore_CloseFlushesPendingWrite(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t, 0)
	s := newTestStore(t, kv, Options{SaveDebounce: time.Hour})

	p := createProject(t, s, "Site", "Acme")
	_, err := kv.Get(ctx, DefaultStorageKey)
	require.ErrorIs(t, err, repository.ErrNotFound)

	s.Close(ctx)

	raw, err := kv.Get(ctx, DefaultStorageKey)
	require.NoError(t, err)
	persisted, ok := codec.TryDecode[[]Project](raw)
	require.True(t, ok)
	require.Len(t, persisted, 1)
	require.Equal(t, p.ID, persisted[0].ID)
}

func TestStore_SubTasks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newTestKV(t, 0), Options{})
	p := createProject(t, s, "Site", "Acme")

	_, err := s.AddSubTask(ctx, p.ID, "  ")
	require.ErrorIs(t, err, ErrInvalidInput)

	got, err := s.AddSubTask(ctx, p.ID, "wireframes")
	require.NoError(t, err)
	require.Len(t, got.Tasks, 1)
	taskID := got.Tasks[0].ID

	got, err = s.ToggleSubTask(ctx, p.ID, taskID)
	require.NoError(t, err)
	require.True(t, got.Tasks[0].IsCompleted)
	require.Equal(t, 1, got.CompletedSubTasks())

	_, err = s.ToggleSubTask(ctx, p.ID, "missing")
	require.ErrorIs(t, err, ErrSubTaskNotFound)
	_, err = s.AddSubTask(ctx, "missing", "x")
	require.ErrorIs(t, err, ErrProjectNotFound)

	got, err = s.RemoveSubTask(ctx, p.ID, taskID)
	require.NoError(t, err)
	require.Empty(t, got.Tasks)
}

func TestStore_SnapshotIsIsolated(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newTestKV(t, 0), Options{})
	p := createProject(t, s, "Site", "Acme")
	_, err := s.AddSubTask(ctx, p.ID, "wireframes")
	require.NoError(t, err)

	snap := s.Snapshot()
	snap.Projects[0].Tasks[0].Text = "changed"
	snap.Projects[0].ProjectName = "changed"

	got, err := s.Get(p.ID)
	require.NoError(t, err)
	require.Equal(t, "Site", got.ProjectName)
	require.Equal(t, "wireframes", got.Tasks[0].Text)
}

func TestStore_SyncClientContact(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newTestKV(t, 0), Options{})
	createProject(t, s, "Site", "Acme")
	createProject(t, s, "Logo", "acme")
	other := createProject(t, s, "Ads", "Globex")

	n := s.SyncClientContact(ctx, "ACME", Contact{Phone: "050-1234567", Email: "ops@acme.test"})
	require.Equal(t, 2, n)

	for _, p := range s.List() {
		if p.ID == other.ID {
			require.Empty(t, p.ClientPhone)
			continue
		}
		require.Equal(t, "050-1234567", p.ClientPhone)
		require.Equal(t, "ops@acme.test", p.ClientEmail)
	}
}

func TestStore_BatchDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newTestKV(t, 0), Options{})
	a := createProject(t, s, "A", "Acme")
	b := createProject(t, s, "B", "Acme")
	c := createProject(t, s, "C", "Acme")

	require.Equal(t, 2, s.BatchDelete(ctx, []string{a.ID, c.ID, "missing"}))
	list := s.List()
	require.Len(t, list, 1)
	require.Equal(t, b.ID, list[0].ID)
}

func TestComputeStats(t *testing.T) {
	require.Equal(t, Stats{}, ComputeStats(nil))

	st := ComputeStats([]Project{
		{IsCompleted: true, IsPaid: true, Price: 100, WorkStatus: StatusCompleted},
		{WorkStatus: StatusInProgress, Price: 50},
		{WorkStatus: StatusInProgress, Price: 25.5},
	})
	require.Equal(t, Stats{
		Total:          3,
		Completed:      1,
		InProgress:     2,
		Paid:           1,
		Unpaid:         2,
		TotalRevenue:   100,
		PendingRevenue: 75.5,
		CompletionRate: 33,
		PaymentRate:    33,
	}, st)

	st = ComputeStats([]Project{{IsCompleted: true}, {IsCompleted: true}, {}})
	require.Equal(t, 67, st.CompletionRate)
}
