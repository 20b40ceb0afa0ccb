package loader

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"path"
	"strings"
)

// Fetcher reads the raw bytes of an asset file.
type Fetcher interface {
	// Fetch reads path completely.
	//
	// Parameters:
	//   - ctx: cancels the read
	//   - path: slash-separated asset path, relative to the fetcher root
	//   - progress: optional progress callback, only called when the length is known
	//
	// Returns:
	//   - []byte: the file contents
	//   - error: *FetchError when the file cannot be read, or the context error
	Fetch(ctx context.Context, path string, progress ProgressFunc) ([]byte, error)
}

type fsFetcher struct {
	fsys fs.FS
}

var _ Fetcher = &fsFetcher{}

// NewFSFetcher creates a Fetcher over a filesystem, typically os.DirFS of the asset directory.
//
// Parameters:
//   - fsys: the filesystem holding the assets
//
// Returns:
//   - Fetcher: the fetcher
func NewFSFetcher(fsys fs.FS) Fetcher {
	return &fsFetcher{fsys: fsys}
}

func (f *fsFetcher) Fetch(ctx context.Context, name string, progress ProgressFunc) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := cleanAssetPath(name)
	if !fs.ValidPath(p) {
		return nil, &FetchError{Path: name, Err: fs.ErrInvalid}
	}

	file, err := f.fsys.Open(p)
	if err != nil {
		return nil, &FetchError{Path: name, Err: err}
	}
	defer file.Close()

	var total int64 = -1
	if info, err := file.Stat(); err == nil {
		if info.IsDir() {
			return nil, &FetchError{Path: name, Err: errors.New("is a directory")}
		}
		total = info.Size()
	}

	data, err := io.ReadAll(newProgressReader(ctx, file, name, total, progress))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &FetchError{Path: name, Err: err}
	}
	return data, nil
}

// cleanAssetPath turns manifest paths such as "./Resources/Tank.obj" into fs.FS form.
func cleanAssetPath(name string) string {
	p := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimPrefix(p, "/")
}

// resolveRelative resolves a path referenced from inside another asset, such as a map_Kd inside an MTL file.
func resolveRelative(from, ref string) string {
	ref = strings.ReplaceAll(ref, "\\", "/")
	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "/") {
		return ref
	}
	return path.Join(path.Dir(cleanAssetPath(from)), ref)
}
