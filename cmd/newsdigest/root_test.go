package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsDigest/internal/app"
	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "database:\n  driver: sqlite3\n  dsn: file:" + filepath.Join(dir, "cli.db") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateAndRecent(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("DATABASE_DRIVER", "")
	path := writeConfig(t)

	out, err := run(t, "migrate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "schema ready (sqlite3)")

	out, err = run(t, "recent", "--config", path, "--limit", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "No articles found in the database.")
}

func TestDigestRequiresValidConfig(t *testing.T) {
	for _, key := range []string{"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "LLM_API_KEY", "OPENAI_API_KEY", "DATABASE_DSN"} {
		t.Setenv(key, "")
	}
	_, err := run(t, "digest", "--config", writeConfig(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRecentLimitIsCapped(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("DATABASE_DRIVER", "")
	path := writeConfig(t)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	ctx := context.Background()
	store, err := app.OpenStore(ctx, cfg)
	require.NoError(t, err)
	base := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		_, err := store.InsertIfAbsent(ctx, domain.Item{
			OriginID:   fmt.Sprintf("https://example.org/%03d", i),
			Title:      fmt.Sprintf("Item %03d", i),
			SourceName: "Test Source",
			FetchedAt:  base.Add(time.Duration(i) * time.Second),
			Summary:    "s",
			Category:   domain.CategoryGlobal,
		})
		require.NoError(t, err)
	}
	require.NoError(t, store.Close())

	out, err := run(t, "recent", "--config", path, "--limit", "500")
	require.NoError(t, err)
	assert.Equal(t, 100, strings.Count(out, "https://example.org/"))
	assert.Contains(t, out, "Item 119")
	assert.NotContains(t, out, "Item 019")
}
