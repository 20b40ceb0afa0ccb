package loader

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressLog struct {
	mu     sync.Mutex
	events []Progress
}

func (p *progressLog) record(ev Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func TestFSFetcherReadsAndReportsProgress(t *testing.T) {
	f := NewFSFetcher(memAssets(t, map[string][]byte{"Resources/Tank.obj": []byte(cubeOBJ)}))
	var log progressLog

	data, err := f.Fetch(context.Background(), "./Resources/Tank.obj", log.record)
	require.NoError(t, err)
	assert.Equal(t, cubeOBJ, string(data))

	require.NotEmpty(t, log.events)
	final := log.events[len(log.events)-1]
	assert.Equal(t, 100, final.Percent())
	assert.Equal(t, int64(len(cubeOBJ)), final.Total)
}

func TestFSFetcherMissingFile(t *testing.T) {
	f := NewFSFetcher(memAssets(t, map[string][]byte{}))
	_, err := f.Fetch(context.Background(), "Resources/Rock.obj", nil)

	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "Resources/Rock.obj", ferr.Path)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestFSFetcherHonoursCancellation(t *testing.T) {
	f := NewFSFetcher(memAssets(t, map[string][]byte{"a.obj": []byte(cubeOBJ)}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Fetch(ctx, "a.obj", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPFetcherStatusError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f, err := NewHTTPFetcher(srv.URL+"/assets", srv.Client())
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), "Resources/Tank.mtl", nil)

	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, http.StatusNotFound, ferr.StatusCode)
	assert.Equal(t, srv.URL+"/assets/Resources/Tank.mtl", ferr.Path)
}

func TestHTTPFetcherProgressWithContentLength(t *testing.T) {
	body := strings.Repeat("v 0 0 0\n", 512)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Resources/Tank.obj", r.URL.Path)
		http.ServeContent(w, r, "Tank.obj", time.Time{}, strings.NewReader(body))
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher(srv.URL, srv.Client())
	require.NoError(t, err)
	var log progressLog
	data, err := f.Fetch(context.Background(), "./Resources/Tank.obj", log.record)
	require.NoError(t, err)
	assert.Len(t, data, len(body))

	require.NotEmpty(t, log.events)
	last := log.events[len(log.events)-1]
	assert.Equal(t, 100, last.Percent())
	assert.Equal(t, srv.URL+"/Resources/Tank.obj", last.URL)
	for i := 1; i < len(log.events); i++ {
		assert.Greater(t, log.events[i].Percent(), log.events[i-1].Percent())
	}
}

func TestHTTPFetcherSuppressesProgressWithoutLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for i := 0; i < 4; i++ {
			_, _ = w.Write([]byte(strings.Repeat("x", 1024)))
			flusher.Flush()
		}
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher(srv.URL, srv.Client())
	require.NoError(t, err)
	var log progressLog
	data, err := f.Fetch(context.Background(), "chunked.bin", log.record)
	require.NoError(t, err)
	assert.Len(t, data, 4096)
	assert.Empty(t, log.events)
}

func TestLogProgressFormat(t *testing.T) {
	logger, buf := newTestLogger()
	LogProgress(logger)(Progress{URL: "http://host/Resources/Tank.obj", Loaded: 1, Total: 3})
	assert.Equal(t, []string{"[Loader] http://host/Resources/Tank.obj 33% downloaded"}, buf.lines("downloaded"))
}
