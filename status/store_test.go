package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/liteseed/arloader/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileKeyIsDeterministic(t *testing.T) {
	a := FileKey("/home/user/file.txt")
	b := FileKey("/home/user/file.txt")
	c := FileKey("/home/user/other.txt")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestWriteReadStatusRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	key := FileKey("/tmp/a.txt")
	st := &Status{ID: "tx-id", Status: Submitted, FilePath: "/tmp/a.txt", ContentType: "text/plain"}
	require.NoError(t, store.WriteStatus(key, st))

	got, err := store.ReadStatus(key)
	require.NoError(t, err)
	assert.Equal(t, st.ID, got.ID)
	assert.Equal(t, Submitted, got.Status)
}

func TestReadStatusMissingReturnsErrNotFound(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.ReadStatus("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusConfirmed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(gateway.TxStatus{BlockHeight: 10, NumberOfConfirmations: 3})
	}))
	defer srv.Close()

	store, err := New(t.TempDir())
	require.NoError(t, err)
	client := gateway.New(srv.URL)

	key := FileKey("/tmp/b.txt")
	require.NoError(t, store.WriteStatus(key, &Status{ID: "tx-id", Status: Pending}))

	updated, err := store.UpdateStatus(client, key)
	require.NoError(t, err)
	assert.Equal(t, Confirmed, updated.Status)
	require.NotNil(t, updated.RawStatus)
	assert.Equal(t, int64(3), updated.RawStatus.NumberOfConfirmations)
	assert.NotEmpty(t, updated.LastModified)
}

func TestUpdateStatusPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Pending"))
	}))
	defer srv.Close()

	store, err := New(t.TempDir())
	require.NoError(t, err)
	client := gateway.New(srv.URL)

	key := FileKey("/tmp/c.txt")
	require.NoError(t, store.WriteStatus(key, &Status{ID: "tx-id", Status: Submitted}))

	updated, err := store.UpdateStatus(client, key)
	require.NoError(t, err)
	assert.Equal(t, Pending, updated.Status)
	assert.Nil(t, updated.RawStatus)
}

func TestFilterStatuses(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.WriteStatus("a", &Status{ID: "a", Status: Confirmed, Reward: "100"}))
	require.NoError(t, store.WriteStatus("b", &Status{ID: "b", Status: Pending, Reward: "50"}))
	require.NoError(t, store.WriteStatus("c", &Status{ID: "c", Status: Confirmed, Reward: "25"}))

	confirmed, err := store.FilterStatuses([]Code{Confirmed}, 0)
	require.NoError(t, err)
	assert.Len(t, confirmed, 2)
}

func TestSummarize(t *testing.T) {
	statuses := []Status{
		{Status: Confirmed, Reward: "100"},
		{Status: Confirmed, Reward: "50"},
		{Status: Pending, Reward: "10"},
	}
	sum := Summarize(statuses)
	assert.Equal(t, 2, sum.CountByStatus[Confirmed])
	assert.Equal(t, 1, sum.CountByStatus[Pending])
	assert.Equal(t, "160", sum.TotalReward)
}
