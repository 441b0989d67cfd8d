package status

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/statusboard/statusboard/internal/storage"
	"github.com/statusboard/statusboard/pkg/metrics"
)

func TestCreateThenGet(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemory())

	before := time.Now().UTC()
	st, err := s.Create(ctx, Param{Title: "Outage", Body: "Investigating"})
	require.NoError(t, err)
	require.NotEmpty(t, st.ID)
	require.False(t, st.Date.Before(before.Add(-time.Second)))
	require.False(t, st.Date.After(time.Now().UTC()))

	got, err := s.Get(ctx, st.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Outage", got.Title)
	require.Equal(t, "Investigating", got.Body)
	require.True(t, st.Date.Equal(got.Date))
}

func TestKeyLayout(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := NewStore(kv, WithIDGenerator(func() string { return "abc" }))

	_, err := s.Create(ctx, Param{Title: "t", Body: "b"})
	require.NoError(t, err)
	_, err = kv.Get(ctx, "v1:status:abc")
	require.NoError(t, err)

	s2 := NewStore(kv, WithVersionPrefix("v2:"))
	require.Equal(t, "v2:status:", s2.KeyPrefix())
	list, err := s2.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestUnknownIDsReportNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemory())

	got, err := s.Get(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, got)

	_, err = s.Update(ctx, "nope", Param{Title: "t", Body: "b"})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.Delete(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)

	got, err = s.Get(ctx, "")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestUpdateKeepsIDAndDate(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := created
	s := NewStore(storage.NewMemory(), WithClock(func() time.Time { return clock }))

	st, err := s.Create(ctx, Param{Title: "Outage", Body: "Investigating"})
	require.NoError(t, err)

	clock = created.Add(time.Hour)
	prev, err := s.Update(ctx, st.ID, Param{Title: "Resolved", Body: "Fixed"})
	require.NoError(t, err)
	// the pre-update snapshot is returned
	require.Equal(t, "Outage", prev.Title)
	require.Equal(t, "Investigating", prev.Body)

	got, err := s.Get(ctx, st.ID)
	require.NoError(t, err)
	require.Equal(t, st.ID, got.ID)
	require.Equal(t, "Resolved", got.Title)
	require.Equal(t, "Fixed", got.Body)
	require.True(t, created.Equal(got.Date))
}

func TestDeleteTwice(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemory())

	st, err := s.Create(ctx, Param{Title: "t", Body: "b"})
	require.NoError(t, err)

	deleted, err := s.Delete(ctx, st.ID)
	require.NoError(t, err)
	require.Equal(t, st.ID, deleted.ID)

	got, err := s.Get(ctx, st.ID)
	require.NoError(t, err)
	require.Nil(t, got)

	_, err = s.Delete(ctx, st.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateRejectsEmptyFields(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := NewStore(kv)

	for _, p := range []Param{
		{Title: "", Body: "b"},
		{Title: "t", Body: ""},
		{Title: "   ", Body: "b"},
		{},
	} {
		_, err := s.Create(ctx, p)
		require.ErrorIs(t, err, ErrValidation)
		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		require.NotEmpty(t, ve.Field)
	}
	keys, err := kv.List(ctx, "")
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestUpdateRejectsEmptyFields(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemory())
	st, err := s.Create(ctx, Param{Title: "t", Body: "b"})
	require.NoError(t, err)

	_, err = s.Update(ctx, st.ID, Param{Title: "t2"})
	require.ErrorIs(t, err, ErrValidation)

	got, err := s.Get(ctx, st.ID)
	require.NoError(t, err)
	require.Equal(t, "t", got.Title)
}

func TestListReturnsAllNewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	// ids sort opposite to creation order so key order cannot stand in for recency
	ids := []string{"c", "b", "a"}
	next := 0
	s := NewStore(storage.NewMemory(),
		WithClock(func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Minute) }),
		WithIDGenerator(func() string { id := ids[next]; next++; return id }),
	)

	for i := 0; i < 3; i++ {
		_, err := s.Create(ctx, Param{Title: fmt.Sprintf("t%d", i), Body: "b"})
		require.NoError(t, err)
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	got := []string{list[0].Title, list[1].Title, list[2].Title}
	require.Equal(t, []string{"t2", "t1", "t0"}, got)

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, "t2", latest.Title)
}

func TestLatestEmpty(t *testing.T) {
	s := NewStore(storage.NewMemory())
	latest, err := s.Latest(context.Background())
	require.NoError(t, err)
	require.Nil(t, latest)
}

func TestListSkipsCorruptAndForeignEntries(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := NewStore(kv)

	st, err := s.Create(ctx, Param{Title: "ok", Body: "b"})
	require.NoError(t, err)
	require.NoError(t, kv.Put(ctx, "v1:status:broken", []byte("{not json")))
	require.NoError(t, kv.Put(ctx, "v1:status:partial", []byte(`{"id":"partial","title":"x"}`)))
	require.NoError(t, kv.Put(ctx, "v1:session:x", []byte(`{"id":"x","title":"t","body":"b","date":"2024-01-01T00:00:00Z"}`)))

	before := testutil.ToFloat64(metrics.SkippedRecords)
	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, st.ID, list[0].ID)
	require.Equal(t, before+2, testutil.ToFloat64(metrics.SkippedRecords))
}

func TestStoreOverRedis(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	ctx := context.Background()
	s := NewStore(storage.NewRedis(redis.NewClient(&redis.Options{Addr: m.Addr()})))

	var ids []string
	for _, title := range []string{"A", "B", "C"} {
		st, err := s.Create(ctx, Param{Title: title, Body: "body " + title})
		require.NoError(t, err)
		ids = append(ids, st.ID)
	}
	require.True(t, m.Exists("v1:status:"+ids[0]))

	list, err := s.List(ctx)
	require.NoError(t, err)
	got := map[string]string{}
	for _, st := range list {
		got[st.ID] = st.Title
	}
	require.Equal(t, map[string]string{ids[0]: "A", ids[1]: "B", ids[2]: "C"}, got)
}

// failingKV fails every call with err.
type failingKV struct{ err error }

func (f failingKV) List(context.Context, string) ([]string, error) { return nil, f.err }
func (f failingKV) Get(context.Context, string) ([]byte, error)    { return nil, f.err }
func (f failingKV) Put(context.Context, string, []byte) error      { return f.err }
func (f failingKV) Delete(context.Context, string) error           { return f.err }

func TestTransportErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")
	s := NewStore(failingKV{err: boom})

	_, err := s.List(ctx)
	require.ErrorIs(t, err, boom)
	_, err = s.Get(ctx, "x")
	require.ErrorIs(t, err, boom)
	_, err = s.Create(ctx, Param{Title: "t", Body: "b"})
	require.ErrorIs(t, err, boom)
	_, err = s.Update(ctx, "x", Param{Title: "t", Body: "b"})
	require.ErrorIs(t, err, boom)
	_, err = s.Delete(ctx, "x")
	require.ErrorIs(t, err, boom)
}

func TestStoreOperationMetrics(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemory())

	okBefore := testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("create", "ok"))
	invalidBefore := testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("create", "invalid"))
	nfBefore := testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("delete", "not_found"))

	_, _ = s.Create(ctx, Param{Title: "t", Body: "b"})
	_, _ = s.Create(ctx, Param{})
	_, _ = s.Delete(ctx, "missing")

	require.Equal(t, okBefore+1, testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("create", "ok")))
	require.Equal(t, invalidBefore+1, testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("create", "invalid")))
	require.Equal(t, nfBefore+1, testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("delete", "not_found")))
}
