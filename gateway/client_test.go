package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/liteseed/arloader/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/price/1024", r.URL.Path)
		w.Write([]byte("123456"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	price, err := c.Price(1024)
	require.NoError(t, err)
	assert.Equal(t, int64(123456), price)
}

func TestAnchor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("some-anchor-id"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	anchor, err := c.Anchor()
	require.NoError(t, err)
	assert.Equal(t, "some-anchor-id", anchor)
}

func TestStatusConfirmed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(TxStatus{BlockHeight: 100, NumberOfConfirmations: 5})
	}))
	defer srv.Close()

	c := New(srv.URL)
	status, err := c.Status("some-id")
	require.NoError(t, err)
	assert.Equal(t, int64(100), status.BlockHeight)
	assert.Equal(t, int64(5), status.NumberOfConfirmations)
}

func TestStatusPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Pending"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Status("some-id")
	assert.ErrorIs(t, err, ErrPending)
}

func TestStatusNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Status("some-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostTransactionSucceedsFirstTry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/tx", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL)
	tx := &transaction.Transaction{Format: 2}
	require.NoError(t, c.PostTransaction(tx))
	assert.Equal(t, 1, calls)
}

func TestPostChunkRetriesThenSucceeds(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.PostChunk(&transaction.ChunkBody{Offset: "0"})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWalletBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("42"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	balance, err := c.WalletBalance("some-address")
	require.NoError(t, err)
	assert.Equal(t, int64(42), balance)
}

func TestPendingTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]string{"a", "b"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	ids, err := c.PendingTransactions()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}
