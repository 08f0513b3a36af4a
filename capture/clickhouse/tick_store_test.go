package clickhouse

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"solana-prediction-sdk/capture"
)

// setupTestDB creates a ClickHouse container, applies the schema and
// returns a connection plus cleanup function.
func setupTestDB(t *testing.T) (*Conn, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "clickhouse/clickhouse-server:24.1-alpine",
		ExposedPorts: []string{"9000/tcp", "8123/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Application: Ready for connections").
				WithStartupTimeout(60*time.Second),
			wait.ForListeningPort("9000/tcp"),
		),
		Env: map[string]string{
			"CLICKHOUSE_DB":       "test",
			"CLICKHOUSE_USER":     "default",
			"CLICKHOUSE_PASSWORD": "",
		},
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)

	dsn := fmt.Sprintf("clickhouse://%s:%s/test", host, port.Port())

	conn, err := NewConn(ctx, dsn)
	require.NoError(t, err)

	require.NoError(t, Migrate(ctx, conn))

	cleanup := func() {
		conn.Close()
		_ = container.Terminate(ctx)
	}

	return conn, cleanup
}

func tick(ticker string, ts int64, yes, no string) *capture.Tick {
	return &capture.Tick{
		Ticker:      ticker,
		TimestampMs: ts,
		YesPrice:    decimal.RequireFromString(yes),
		NoPrice:     decimal.RequireFromString(no),
	}
}

func TestTickStoreRoundtrip(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewStore(conn)

	require.NoError(t, store.InsertBulk(ctx, []*capture.Tick{
		tick("BTC-100K", 3000, "0.44", "0.56"),
		tick("BTC-100K", 1000, "0.42", "0.58"),
		tick("BTC-100K", 2000, "0.43", "0.57"),
		tick("ETH-5K", 1500, "0.20", "0.80"),
	}))

	got, err := store.GetByTicker(ctx, "BTC-100K")
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Ordered by timestamp regardless of insert order.
	require.Equal(t, int64(1000), got[0].TimestampMs)
	require.Equal(t, int64(2000), got[1].TimestampMs)
	require.Equal(t, int64(3000), got[2].TimestampMs)
	require.True(t, got[0].YesPrice.Equal(decimal.RequireFromString("0.42")),
		"yes price mismatch: %s", got[0].YesPrice)

	ranged, err := store.GetByTimeRange(ctx, "BTC-100K", 1000, 2000)
	require.NoError(t, err)
	require.Len(t, ranged, 2)

	other, err := store.GetByTicker(ctx, "ETH-5K")
	require.NoError(t, err)
	require.Len(t, other, 1)
}

func TestTickStoreEmptyBatch(t *testing.T) {
	store := NewStore(nil)
	require.NoError(t, store.InsertBulk(context.Background(), nil))
}
