package journal_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DanielPopoola/paylane-go/internal/journal"
	"github.com/DanielPopoola/paylane-go/paylane"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stalledServer accepts TCP connections and never answers, like a database
// host that is up but wedged.
func stalledServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
			go func() { _, _ = io.Copy(io.Discard, conn) }()
		}
	}()

	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return ln.Addr().String()
}

func TestObserveCall_BoundedByWriteTimeout(t *testing.T) {
	addr := stalledServer(t)
	cfg, err := pgxpool.ParseConfig(fmt.Sprintf("postgres://user:pass@%s/paylane?sslmode=disable", addr))
	require.NoError(t, err)

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	require.NoError(t, err)
	defer pool.Close()

	var logs bytes.Buffer
	j := journal.New(pool, slog.New(slog.NewTextHandler(&logs, nil)), 100*time.Millisecond)

	// The caller's own context has no deadline.
	ctx := context.Background()
	rec := paylane.CallRecord{
		ID:        uuid.New(),
		Operation: paylane.OpCardSale,
		Method:    http.MethodPost,
		Path:      "cards/sale",
		StartedAt: time.Now(),
	}

	start := time.Now()
	j.ObserveCall(ctx, rec)
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 3*time.Second)
	assert.Contains(t, logs.String(), "journal write failed")
	assert.Contains(t, logs.String(), rec.ID.String())
}

func TestNew_DefaultWriteTimeout(t *testing.T) {
	addr := stalledServer(t)
	cfg, err := pgxpool.ParseConfig(fmt.Sprintf("postgres://user:pass@%s/paylane?sslmode=disable", addr))
	require.NoError(t, err)

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	require.NoError(t, err)
	defer pool.Close()

	j := journal.New(pool, slog.New(slog.NewTextHandler(io.Discard, nil)), 0)

	start := time.Now()
	j.ObserveCall(context.Background(), paylane.CallRecord{ID: uuid.New(), StartedAt: time.Now()})

	assert.Less(t, time.Since(start), journal.DefaultWriteTimeout+3*time.Second)
}
