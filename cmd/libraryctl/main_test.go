package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apploan "github.com/xiebiao/library/internal/application/loan"
	"github.com/xiebiao/library/internal/domain/catalog"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/pkg/jwt"
)

type harness struct {
	configPath string
	mr         *miniredis.Miniredis
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	dir := t.TempDir()
	body := fmt.Sprintf(`server:
  mode: test
jwt:
  secret: cli-secret
database:
  driver: sqlite
  path: %s
redis:
  host: %s
  port: %s
`, filepath.Join(dir, "library.db"), mr.Host(), mr.Port())
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return &harness{configPath: path, mr: mr}
}

func (h *harness) run(args ...string) (string, error) {
	var out bytes.Buffer
	err := execute(context.Background(), &out, append([]string{"--config", h.configPath}, args...))
	return out.String(), err
}

func TestUserAndToken(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("user", "create", "--username", "librarian", "--password", "shelves42", "--staff")
	require.NoError(t, err)
	assert.Contains(t, out, `created staff user "librarian"`)

	_, err = h.run("user", "create", "--username", "librarian", "--password", "shelves42")
	assert.Error(t, err, "duplicate username")

	_, err = h.run("user", "create", "--username", "weak", "--password", "short")
	assert.Error(t, err)

	_, err = h.run("token", "issue", "--username", "librarian", "--password", "wrong-pass1")
	assert.Error(t, err)

	out, err = h.run("token", "issue", "--username", "librarian", "--password", "shelves42")
	require.NoError(t, err)
	var tok jwt.Token
	require.NoError(t, json.Unmarshal([]byte(out), &tok))

	claims, err := jwt.NewManager("cli-secret", 0).ParseToken(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "librarian", claims.Username)
	assert.True(t, claims.IsStaff)

	out, err = h.run("token", "revoke", tok.AccessToken)
	require.NoError(t, err)
	assert.Contains(t, out, "revoked token "+tok.ID)

	client := goredis.NewClient(&goredis.Options{Addr: h.mr.Addr()})
	defer client.Close()
	revoked, err := redis.NewSessionStore(client).IsRevoked(context.Background(), tok.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	out, err = h.run("user", "delete", "librarian")
	require.NoError(t, err)
	assert.Contains(t, out, `deleted user "librarian"`)

	_, err = h.run("user", "delete", "librarian")
	assert.Error(t, err)
}

// seedBook stores a book directly and returns its id.
func (h *harness) seedBook(t *testing.T, title string) uint {
	t.Helper()
	cfg, err := config.LoadFrom(h.configPath)
	require.NoError(t, err)
	db, err := mysql.NewDB(cfg)
	require.NoError(t, err)
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	svc := catalog.NewService(mysql.NewGenreRepository(db), mysql.NewAuthorRepository(db), mysql.NewBookRepository(db), 3)
	b, err := svc.CreateBook(context.Background(), catalog.BookInput{Title: title, ISBN: "9780441013593"})
	require.NoError(t, err)
	return b.ID
}

func TestInstancesAdd(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("user", "create", "--username", "librarian", "--password", "shelves42", "--staff")
	require.NoError(t, err)
	_, err = h.run("user", "create", "--username", "reader", "--password", "shelves42")
	require.NoError(t, err)
	bookID := h.seedBook(t, "Dune")
	book := fmt.Sprint(bookID)

	h.mr.Set(redis.SummaryKey, `{"num_books":1}`)

	out, err := h.run("instances", "add", "--as", "librarian", "--book", book, "-n", "2")
	require.NoError(t, err)

	dec := json.NewDecoder(bytes.NewBufferString(out))
	var views []apploan.InstanceView
	for dec.More() {
		var v apploan.InstanceView
		require.NoError(t, dec.Decode(&v))
		views = append(views, v)
	}
	require.Len(t, views, 2)
	assert.Equal(t, "available", views[0].Status)
	assert.Equal(t, "Dune", views[0].BookTitle)
	assert.False(t, h.mr.Exists(redis.SummaryKey))

	_, err = h.run("instances", "add", "--as", "reader", "--book", book)
	assert.Error(t, err)
	_, err = h.run("instances", "add", "--as", "nobody", "--book", book)
	assert.Error(t, err)
	_, err = h.run("instances", "add", "--as", "librarian", "--book", book, "-n", "0")
	assert.Error(t, err)

	target := filepath.Join(t.TempDir(), "instances.xlsx")
	out, err = h.run("report", "instances", "--out", target)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 2 instances")
}

func TestReportInstances(t *testing.T) {
	h := newHarness(t)
	target := filepath.Join(t.TempDir(), "instances.xlsx")

	out, err := h.run("report", "instances", "--out", target)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 0 instances")

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
