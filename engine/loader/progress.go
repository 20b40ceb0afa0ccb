package loader

import (
	"context"
	"io"
	"log"
	"math"
)

// Progress is a snapshot of one fetch. Total is the expected byte count and is always positive when reported.
type Progress struct {
	URL    string
	Loaded int64
	Total  int64
}

// Percent returns the completed share rounded to a whole percentage.
//
// Returns:
//   - int: 0..100
func (p Progress) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	return int(math.Round(float64(p.Loaded) / float64(p.Total) * 100))
}

// ProgressFunc receives fetch progress. It is never called for fetches of unknown length.
type ProgressFunc func(Progress)

// LogProgress returns a ProgressFunc that prints "<url> <n>% downloaded" lines.
//
// Parameters:
//   - logger: destination, log.Default() when nil
//
// Returns:
//   - ProgressFunc: the logging callback
func LogProgress(logger *log.Logger) ProgressFunc {
	if logger == nil {
		logger = log.Default()
	}
	return func(p Progress) {
		logger.Printf("[Loader] %s %d%% downloaded", p.URL, p.Percent())
	}
}

// progressReader reports Read progress whenever the whole percentage advances, and honours cancellation
// between reads.
type progressReader struct {
	ctx      context.Context
	r        io.Reader
	url      string
	total    int64
	loaded   int64
	reported int
	fn       ProgressFunc
}

func newProgressReader(ctx context.Context, r io.Reader, url string, total int64, fn ProgressFunc) *progressReader {
	if total <= 0 {
		fn = nil
	}
	return &progressReader{ctx: ctx, r: r, url: url, total: total, reported: -1, fn: fn}
}

func (pr *progressReader) Read(p []byte) (int, error) {
	if err := pr.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := pr.r.Read(p)
	pr.loaded += int64(n)
	if pr.fn != nil && (n > 0 || err == io.EOF) {
		snap := Progress{URL: pr.url, Loaded: min(pr.loaded, pr.total), Total: pr.total}
		if pct := snap.Percent(); pct > pr.reported {
			pr.reported = pct
			pr.fn(snap)
		}
	}
	return n, err
}
