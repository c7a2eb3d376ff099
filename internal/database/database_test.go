package database

import (
	"context"
	"io/fs"
	"testing"
	"time"

	"github.com/deppfellow/guestbook/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN_EscapesCredentials(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{
		Host:     "::1",
		Port:     5432,
		User:     "guest",
		Password: "pa:ss@word",
		Name:     "guestbook",
		SSLMode:  "disable",
	}}

	assert.Equal(t,
		"postgres://guest:pa%3Ass%40word@[::1]:5432/guestbook?sslmode=disable",
		BuildDSN(cfg))
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	body, err := fs.ReadFile(migrations, "migrations/"+entries[0].Name())
	require.NoError(t, err)
	assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS guestbook")
	assert.Contains(t, string(body), "---- create above / drop below ----")
}

type recordingTracer struct {
	starts, ends int
}

func (r *recordingTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, _ pgx.TraceQueryStartData) context.Context {
	r.starts++
	return ctx
}

func (r *recordingTracer) TraceQueryEnd(context.Context, *pgx.Conn, pgx.TraceQueryEndData) {
	r.ends++
}

func TestMultiTracer_CallsEveryTracer(t *testing.T) {
	a, b := &recordingTracer{}, &recordingTracer{}
	mt := &multiTracer{tracers: []queryTracer{a, b}}

	ctx := mt.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	mt.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})

	assert.Equal(t, 1, a.starts)
	assert.Equal(t, 1, b.ends)
}

func TestSlowQueryTracer_ThresholdZeroAlwaysLogs(t *testing.T) {
	var buf testWriter
	log := zerolog.New(&buf)
	tracer := &slowQueryTracer{threshold: 0, log: &log}

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "UPDATE guestbook"})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("UPDATE 1")})

	assert.Contains(t, buf.String(), "slow query")
	assert.Contains(t, buf.String(), "UPDATE guestbook")
}

func TestSlowQueryTracer_FastQueryIsQuiet(t *testing.T) {
	var buf testWriter
	log := zerolog.New(&buf)
	tracer := &slowQueryTracer{threshold: time.Hour, log: &log}

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})

	assert.Empty(t, buf.String())
}

type testWriter struct {
	data []byte
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)
	return len(p), nil
}

func (w *testWriter) String() string { return string(w.data) }
