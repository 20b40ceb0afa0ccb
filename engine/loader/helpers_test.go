package loader

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"io/fs"
	"log"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	"github.com/stretchr/testify/require"
)

const cubeOBJ = `# two faces of a box
mtllib Tank.mtl
o Hull
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl Body
f 1/1/1 2/2/1 3/3/1 4/4/1
o Tracks
f -4/1 -3/2 -2/3
`

const treeMTL = `newmtl Leaves
Kd 0.2 0.6 0.2
Ks 0.1 0.1 0.1
Ns 12
map_Kd -s 2 2 leaves.png

newmtl Bark
Kd 0.4 0.25 0.1
d 1
illum 2
`

const treeOBJ = `mtllib Lowpoly_tree_sample.mtl
o Tree
v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 1
vt 0 0
vt 1 0
vt 0 1
usemtl Bark
f 1/1 2/2 3/3
usemtl Leaves
f 1/1 3/3 4/1
`

// ioFS exposes a hackpadfs filesystem as an io/fs.FS.
type ioFS struct {
	fs hackpadfs.FS
}

func (f ioFS) Open(name string) (fs.File, error) {
	return f.fs.Open(name)
}

// memAssets builds an in-memory asset directory from path → contents.
func memAssets(t *testing.T, files map[string][]byte) fs.FS {
	t.Helper()
	mfs, err := mem.NewFS()
	require.NoError(t, err)
	for name, data := range files {
		if i := strings.LastIndex(name, "/"); i > 0 {
			require.NoError(t, hackpadfs.MkdirAll(mfs, name[:i], 0o755))
		}
		require.NoError(t, hackpadfs.WriteFullFile(mfs, name, data, 0o644))
	}
	return ioFS{fs: mfs}
}

// pngBytes encodes a w x h image whose top row is red and every other row is blue.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{B: 255, A: 255}
			if y == 0 {
				c = color.RGBA{R: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// recordingFetcher counts fetches per path before delegating.
type recordingFetcher struct {
	Fetcher
	mu    sync.Mutex
	calls map[string]int
}

func newRecordingFetcher(f Fetcher) *recordingFetcher {
	return &recordingFetcher{Fetcher: f, calls: make(map[string]int)}
}

func (r *recordingFetcher) Fetch(ctx context.Context, path string, progress ProgressFunc) ([]byte, error) {
	r.mu.Lock()
	r.calls[path]++
	r.mu.Unlock()
	return r.Fetcher.Fetch(ctx, path, progress)
}

func (r *recordingFetcher) count(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[path]
}

// blockingFetcher holds every fetch until release is closed or the context ends.
type blockingFetcher struct {
	Fetcher
	started chan string
	release chan struct{}
}

func (b *blockingFetcher) Fetch(ctx context.Context, path string, progress ProgressFunc) ([]byte, error) {
	b.started <- path
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return b.Fetcher.Fetch(ctx, path, progress)
}

// lockedBuffer is a goroutine-safe log sink.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) lines(substr string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, line := range strings.Split(b.buf.String(), "\n") {
		if line != "" && strings.Contains(line, substr) {
			out = append(out, line)
		}
	}
	return out
}

func newTestLogger() (*log.Logger, *lockedBuffer) {
	buf := &lockedBuffer{}
	return log.New(buf, "", 0), buf
}

func newDiscardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
