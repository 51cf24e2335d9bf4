package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// backupStamp orders rotated files lexically by rotation time.
const backupStamp = "20060102-150405.000"

// FileRotator is an io.Writer over Config.FilePath. The file is rotated
// when a write would take it past MaxSize megabytes or when the day
// changes. Rotated files are named <name>-<stamp><ext>, gzipped when
// Compress is set, and pruned by MaxBackups and MaxAge.
type FileRotator struct {
	path       string
	maxBytes   int64
	maxAge     time.Duration
	maxBackups int
	compress   bool

	mu     sync.Mutex
	file   *os.File
	size   int64
	opened time.Time

	// archiving tracks background gzip and prune work.
	archiving sync.WaitGroup
}

// NewFileRotator opens cfg.FilePath for appending, creating its directory.
func NewFileRotator(cfg *Config) (*FileRotator, error) {
	r := &FileRotator{
		path:       cfg.FilePath,
		maxBytes:   cfg.MaxSize << 20,
		maxAge:     time.Duration(cfg.MaxAge) * 24 * time.Hour,
		maxBackups: cfg.MaxBackups,
		compress:   cfg.Compress,
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0750); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRotator) open() error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	r.file, r.size, r.opened = f, info.Size(), time.Now()
	return nil
}

// Write appends p, rotating first when p would not fit.
func (r *FileRotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		if err := r.open(); err != nil {
			return 0, err
		}
	}
	if r.due(int64(len(p)), time.Now()) {
		if err := r.rotate(); err != nil {
			return 0, fmt.Errorf("rotate log: %w", err)
		}
	}
	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// due reports whether the current file must be rotated before writing n
// more bytes. An empty file is never rotated.
func (r *FileRotator) due(n int64, now time.Time) bool {
	if r.size == 0 {
		return false
	}
	if r.maxBytes > 0 && r.size+n > r.maxBytes {
		return true
	}
	return now.YearDay() != r.opened.YearDay() || now.Year() != r.opened.Year()
}

func (r *FileRotator) rotate() error {
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	r.file = nil

	backup := r.backupName(time.Now())
	if err := os.Rename(r.path, backup); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rename log file: %w", err)
	}
	if err := r.open(); err != nil {
		return err
	}

	r.archiving.Add(1)
	go func() {
		defer r.archiving.Done()
		if r.compress {
			// A failed gzip leaves the plain backup in place.
			_ = gzipFile(backup)
		}
		r.prune(time.Now())
	}()
	return nil
}

// split returns the directory, the file name without extension and the
// extension of the live log file.
func (r *FileRotator) split() (dir, name, ext string) {
	dir, base := filepath.Split(r.path)
	ext = filepath.Ext(base)
	return filepath.Clean(dir), strings.TrimSuffix(base, ext), ext
}

func (r *FileRotator) backupName(t time.Time) string {
	dir, name, ext := r.split()
	return filepath.Join(dir, name+"-"+t.Format(backupStamp)+ext)
}

// backups returns rotated files, oldest first.
func (r *FileRotator) backups() ([]string, error) {
	dir, name, ext := r.split()
	matches, err := filepath.Glob(filepath.Join(dir, name+"-*"+ext+"*"))
	if err != nil {
		return nil, err
	}
	slices.Sort(matches)
	return matches, nil
}

// prune deletes backups beyond MaxBackups and those older than MaxAge.
func (r *FileRotator) prune(now time.Time) {
	files, err := r.backups()
	if err != nil {
		return
	}
	if r.maxBackups > 0 && len(files) > r.maxBackups {
		for _, f := range files[:len(files)-r.maxBackups] {
			os.Remove(f)
		}
		files = files[len(files)-r.maxBackups:]
	}
	if r.maxAge <= 0 {
		return
	}
	for _, f := range files {
		if info, err := os.Stat(f); err == nil && now.Sub(info.ModTime()) > r.maxAge {
			os.Remove(f)
		}
	}
}

// gzipFile replaces path with path.gz.
func gzipFile(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(path+".gz", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0640)
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(out)
	zw.Name = filepath.Base(path)

	_, err = io.Copy(zw, in)
	if cerr := zw.Close(); err == nil {
		err = cerr
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path + ".gz")
		return err
	}
	return os.Remove(path)
}

// Close closes the log file and waits for archiving to finish.
func (r *FileRotator) Close() error {
	r.mu.Lock()
	var err error
	if r.file != nil {
		err = r.file.Close()
		r.file = nil
	}
	r.mu.Unlock()
	r.archiving.Wait()
	return err
}

// Sync commits the log file to disk.
func (r *FileRotator) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	return r.file.Sync()
}

// Files lists the live log file followed by its backups, oldest first.
func (r *FileRotator) Files() ([]string, error) {
	backups, err := r.backups()
	return append([]string{r.path}, backups...), err
}
