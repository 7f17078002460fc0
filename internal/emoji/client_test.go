package emoji

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/sendright/ai-backend/internal/storage/kv"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestCategories_FallbackOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "key", nil, time.Hour, testLogger())
	categories := c.Categories(context.Background())
	require.Equal(t, FallbackCategories(), categories)
	require.Len(t, categories, 9)
	require.Equal(t, "smileys-emotion", categories[0].Slug)
	require.Equal(t, "Faces", categories[0].DisplayName)
}

func TestCategories_FiltersUnknownSlugs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "key", r.URL.Query().Get("access_key"))
		w.Write([]byte(`[
			{"slug":"smileys-emotion","subCategories":["face-smiling"]},
			{"slug":"component","subCategories":[]},
			{"slug":"flags","subCategories":["country-flag"]}
		]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "key", nil, time.Hour, testLogger())
	categories := c.Categories(context.Background())
	require.Len(t, categories, 2, "unsupported slugs are dropped")
	require.Equal(t, "Faces", categories[0].DisplayName)
	require.Equal(t, []string{"face-smiling"}, categories[0].SubCategories)
	require.Equal(t, "Flags", categories[1].DisplayName)
}

func TestCategoryEmojis_FiltersInvalidAndCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[
			{"slug":"grinning-face","character":"😀","codePoint":"1F600","unicodeName":"grinning face"},
			{"slug":"broken","character":"","codePoint":""}
		]`))
	}))
	defer srv.Close()

	cache := kv.NewMemory()
	c := New(srv.URL, "key", cache, time.Hour, testLogger())

	emojis, err := c.CategoryEmojis(context.Background(), "smileys-emotion")
	require.NoError(t, err)
	require.Len(t, emojis, 1, "records missing character or code point are dropped")
	require.Equal(t, "grinning-face", emojis[0].Slug)

	// Second lookup is served from the cache.
	emojis, err = c.CategoryEmojis(context.Background(), "smileys-emotion")
	require.NoError(t, err)
	require.Len(t, emojis, 1)
	require.Equal(t, int32(1), hits.Load())
}

func TestCategoryEmojis_ErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, "key", nil, time.Hour, testLogger())
	_, err := c.CategoryEmojis(context.Background(), "flags")
	require.Error(t, err)
}

func TestSearch_PassesQueryAndSkipsCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		require.Equal(t, "cat", r.URL.Query().Get("search"))
		w.Write([]byte(`[{"slug":"cat-face","character":"🐱","codePoint":"1F431"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "key", kv.NewMemory(), time.Hour, testLogger())

	for i := 0; i < 2; i++ {
		emojis, err := c.Search(context.Background(), "cat")
		require.NoError(t, err)
		require.Len(t, emojis, 1)
	}
	require.Equal(t, int32(2), hits.Load(), "search results are never cached")
}
