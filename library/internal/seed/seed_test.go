package seed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Opnex/Ai-Developer-Library/library/internal/errs"
	"github.com/Opnex/Ai-Developer-Library/library/internal/seed"
)

const seedBody = `{
  "books": [
    {"id": 1, "title": "The Hobbit", "author": "Tolkien", "genre": "Fantasy", "isAvailable": true, "borrowHistory": []}
  ],
  "users": [
    {"username": "admin", "password": "admin123", "role": "librarian"}
  ]
}`

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(seedBody))
	}))
	defer srv.Close()

	f := seed.New(seed.Config{URL: srv.URL, Timeout: time.Second}, zap.NewNop())
	data, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, data.Books, 1)
	require.Equal(t, "The Hobbit", data.Books[0].Title)
	require.True(t, data.Books[0].IsAvailable())
	require.Len(t, data.Users, 1)
	require.Equal(t, "admin", data.Users[0].Username)
}

func TestFetch_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := seed.New(seed.Config{URL: srv.URL, Timeout: time.Second}, zap.NewNop())
	_, err := f.Fetch(context.Background())
	require.ErrorIs(t, err, errs.ErrSeedUnavailable)
}

func TestFetch_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	f := seed.New(seed.Config{URL: url, Timeout: time.Second}, zap.NewNop())
	_, err := f.Fetch(context.Background())
	require.ErrorIs(t, err, errs.ErrSeedUnavailable)
}

func TestFetch_NoURL(t *testing.T) {
	f := seed.New(seed.Config{}, zap.NewNop())
	_, err := f.Fetch(context.Background())
	require.ErrorIs(t, err, errs.ErrSeedUnavailable)
}
