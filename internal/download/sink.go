package download

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/CovenantEyes/winsparkle/internal/errs"
	"github.com/CovenantEyes/winsparkle/internal/logger"
)

// ProgressInterval is the minimum spacing between two progress reports,
// except for the final one.
const ProgressInterval = 100 * time.Millisecond

// ProgressReporter receives download progress. total is 0 when unknown.
type ProgressReporter interface {
	NotifyDownloadProgress(downloaded, total uint64)
}

// Sink streams an update artifact into a file inside dir. A Sink is driven by
// a single download and must not be shared between goroutines.
type Sink struct {
	ctx      context.Context
	dir      string
	progress ProgressReporter
	now      func() time.Time

	bindTried  bool
	file       *os.File
	path       string
	downloaded uint64
	total      uint64
	lastReport time.Time
	reported   bool

	closeOnce sync.Once
	closeErr  error
}

type SinkOption func(*Sink)

// WithClock replaces the time source used for progress throttling.
func WithClock(now func() time.Time) SinkOption {
	return func(s *Sink) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSink builds a sink writing into dir. ctx is the owning task's
// cancellation signal and is checked before every chunk. progress may be nil.
func NewSink(ctx context.Context, dir string, progress ProgressReporter, opts ...SinkOption) *Sink {
	if ctx == nil {
		ctx = context.Background()
	}
	s := &Sink{
		ctx:      ctx,
		dir:      dir,
		progress: progress,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetLength records the expected total size. 0 means unknown.
func (s *Sink) SetLength(total uint64) {
	s.total = total
}

// SetFilename binds the destination. Only the base name of name is used, and
// the file must not exist yet. It may be called once, even when that call
// fails.
func (s *Sink) SetFilename(name string) error {
	if s.bindTried {
		return errs.New(errs.AlreadyBound, "sink.set_filename", nil)
	}
	s.bindTried = true

	base := filepath.Base(filepath.Clean("/" + filepath.ToSlash(name)))
	if base == "" || base == "." || base == "/" || base == string(filepath.Separator) {
		return errs.Newf(errs.CannotWrite, "sink.set_filename", "invalid file name %q", name)
	}

	path := filepath.Join(s.dir, base)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o700)
	if err != nil {
		logger.Debug("Failed to create %s: %v", path, err)
		return errs.New(errs.CannotWrite, "sink.set_filename", err)
	}

	logger.Debug("Downloading update to %s", path)
	s.file = f
	s.path = path
	return nil
}

// Add appends a chunk to the destination file.
func (s *Sink) Add(p []byte) error {
	if s.file == nil {
		return errs.New(errs.NotBound, "sink.add", nil)
	}
	if err := s.ctx.Err(); err != nil {
		return errs.New(errs.Cancelled, "sink.add", err)
	}

	n, err := s.file.Write(p)
	if err == nil && n != len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return errs.New(errs.WriteFailure, "sink.add", err)
	}

	s.downloaded += uint64(n)
	s.report()
	return nil
}

// Write adapts the sink to io.Writer so it can be fed with io.Copy.
func (s *Sink) Write(p []byte) (int, error) {
	if err := s.Add(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close flushes and releases the file. Calling it more than once is safe.
func (s *Sink) Close() error {
	s.closeOnce.Do(func() {
		if s.file == nil {
			return
		}
		syncErr := s.file.Sync()
		closeErr := s.file.Close()
		switch {
		case syncErr != nil:
			s.closeErr = errs.New(errs.WriteFailure, "sink.close", syncErr)
		case closeErr != nil:
			s.closeErr = errs.New(errs.WriteFailure, "sink.close", closeErr)
		}
	})
	return s.closeErr
}

// FilePath is the destination path, empty until SetFilename succeeds.
func (s *Sink) FilePath() string { return s.path }

// Downloaded is the number of bytes written so far.
func (s *Sink) Downloaded() uint64 { return s.downloaded }

// Total is the expected size as last set by SetLength.
func (s *Sink) Total() uint64 { return s.total }

func (s *Sink) report() {
	if s.progress == nil {
		return
	}
	now := s.now()
	final := s.downloaded == s.total
	if s.reported && !final && now.Sub(s.lastReport) < ProgressInterval {
		return
	}
	s.reported = true
	s.lastReport = now
	s.progress.NotifyDownloadProgress(s.downloaded, s.total)
}
