package journal_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DanielPopoola/paylane-go/internal/journal"
	"github.com/DanielPopoola/paylane-go/internal/journal/testhelpers"
	"github.com/DanielPopoola/paylane-go/paylane"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal(t *testing.T) {
	td := testhelpers.SetupTestDatabase(t)
	defer td.Cleanup(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	j := journal.New(td.DB.Pool, logger, 0)
	require.NoError(t, j.Migrate(context.Background()))
	// Migrating twice is harmless.
	require.NoError(t, j.Migrate(context.Background()))

	t.Run("records and lists calls newest first", func(t *testing.T) {
		td.CleanTables(t)
		ctx := context.Background()
		start := time.Now().UTC().Truncate(time.Millisecond)

		older := paylane.CallRecord{
			ID:         uuid.New(),
			Operation:  paylane.OpCardSale,
			Method:     http.MethodPost,
			Path:       "cards/sale",
			StatusCode: http.StatusOK,
			Success:    true,
			StartedAt:  start.Add(-time.Minute),
			Duration:   120 * time.Millisecond,
		}
		newer := paylane.CallRecord{
			ID:         uuid.New(),
			Operation:  paylane.OpRefund,
			Method:     http.MethodPost,
			Path:       "refunds",
			StatusCode: http.StatusBadGateway,
			Err:        &paylane.HTTPCallError{StatusCode: http.StatusBadGateway, Reason: "Bad Gateway"},
			StartedAt:  start,
			Duration:   30 * time.Millisecond,
		}

		require.NoError(t, j.Record(ctx, older))
		require.NoError(t, j.Record(ctx, newer))

		entries, err := j.Recent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		assert.Equal(t, newer.ID, entries[0].ID)
		assert.Equal(t, paylane.OpRefund, entries[0].Operation)
		assert.Equal(t, http.StatusBadGateway, entries[0].StatusCode)
		assert.False(t, entries[0].Success)
		require.NotNil(t, entries[0].Error)
		assert.Contains(t, *entries[0].Error, "Bad Gateway")
		assert.Equal(t, 30*time.Millisecond, entries[0].Duration)
		assert.True(t, start.Equal(entries[0].StartedAt))

		assert.Equal(t, older.ID, entries[1].ID)
		assert.True(t, entries[1].Success)
		assert.Nil(t, entries[1].Error)

		limited, err := j.Recent(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("observes client calls", func(t *testing.T) {
		td.CleanTables(t)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success": false, "error": {"error_number": 303}}`))
		}))
		defer srv.Close()

		client, err := paylane.New("merchant", "s3cret",
			paylane.WithBaseURL(srv.URL+"/"),
			paylane.WithLogger(logger),
			paylane.WithObserver(j),
		)
		require.NoError(t, err)

		_, err = client.CheckCard(context.Background(), paylane.Params{"card_number": "4111111111111111"})
		require.NoError(t, err)

		entries, err := j.Recent(context.Background(), 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, paylane.OpCheckCard, entries[0].Operation)
		assert.Equal(t, http.MethodGet, entries[0].Method)
		assert.Equal(t, "cards/check", entries[0].Path)
		assert.Equal(t, http.StatusOK, entries[0].StatusCode)
		assert.False(t, entries[0].Success)
	})

	t.Run("duplicate id is logged, not returned to the caller", func(t *testing.T) {
		td.CleanTables(t)
		rec := paylane.CallRecord{
			ID:        uuid.New(),
			Method:    http.MethodGet,
			Path:      "sales/info",
			StartedAt: time.Now(),
		}

		require.NoError(t, j.Record(context.Background(), rec))
		assert.Error(t, j.Record(context.Background(), rec))
		assert.NotPanics(t, func() { j.ObserveCall(context.Background(), rec) })
	})
}
