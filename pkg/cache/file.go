package cache

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/matzehuels/reflow/pkg/observability"
)

// entryMagic starts every cache file. The rest of the first line is the
// expiry in Unix nanoseconds, 0 for none; the value follows verbatim.
const entryMagic = "reflow-cache/1 "

const entryExt = ".entry"

// FileCache stores one file per entry under dir, fanned out into 256
// subdirectories by the first byte of the key hash. Writes go through a
// temporary file and a rename, so readers never see partial entries.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache opens or creates a file cache in dir.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		observability.Cache().OnCacheMiss(ctx, "file")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	expires, data, err := readEntry(f)
	if err != nil || (!expires.IsZero() && c.now().After(expires)) {
		// Corrupt and expired entries are dropped and count as misses.
		_ = os.Remove(path)
		observability.Cache().OnCacheMiss(ctx, "file")
		return nil, false, nil
	}
	observability.Cache().OnCacheHit(ctx, "file")
	return data, true, nil
}

func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var expires int64
	if ttl > 0 {
		expires = c.now().Add(ttl).UnixNano()
	}
	path := c.path(key)
	if err := writeAtomic(path, func(w io.Writer) error {
		if _, err := fmt.Fprintf(w, "%s%d\n", entryMagic, expires); err != nil {
			return err
		}
		_, err := w.Write(data)
		return err
	}); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, "file", len(data))
	return nil
}

func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Clear removes every entry and returns how many there were.
func (c *FileCache) Clear() (int, error) {
	return c.sweep(func(string) bool { return true })
}

// Prune removes expired and unreadable entries and returns how many it
// removed.
func (c *FileCache) Prune() (int, error) {
	now := c.now()
	return c.sweep(func(path string) bool {
		f, err := os.Open(path)
		if err != nil {
			return false
		}
		defer f.Close()
		expires, err := readHeader(bufio.NewReader(f))
		return err != nil || (!expires.IsZero() && now.After(expires))
	})
}

// Stats reports the number of entries and their total size on disk.
func (c *FileCache) Stats() (entries int, size int64, err error) {
	err = c.walk(func(_ string, info fs.FileInfo) error {
		entries++
		size += info.Size()
		return nil
	})
	return entries, size, err
}

func (c *FileCache) Close() error { return nil }

// sweep removes the entries drop selects.
func (c *FileCache) sweep(drop func(path string) bool) (int, error) {
	removed := 0
	err := c.walk(func(path string, _ fs.FileInfo) error {
		if !drop(path) {
			return nil
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		removed++
		return nil
	})
	return removed, err
}

func (c *FileCache) walk(fn func(path string, info fs.FileInfo) error) error {
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != entryExt {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		return fn(path, info)
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+entryExt)
}

func readEntry(r io.Reader) (time.Time, []byte, error) {
	br := bufio.NewReader(r)
	expires, err := readHeader(br)
	if err != nil {
		return time.Time{}, nil, err
	}
	data, err := io.ReadAll(br)
	return expires, data, err
}

func readHeader(br *bufio.Reader) (time.Time, error) {
	line, err := br.ReadBytes('\n')
	if err != nil {
		return time.Time{}, err
	}
	rest, ok := bytes.CutPrefix(bytes.TrimSuffix(line, []byte("\n")), []byte(entryMagic))
	if !ok {
		return time.Time{}, errors.New("bad cache entry header")
	}
	ns, err := strconv.ParseInt(string(rest), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad cache entry expiry: %w", err)
	}
	if ns == 0 {
		return time.Time{}, nil
	}
	return time.Unix(0, ns), nil
}

// writeAtomic writes path through a temporary file in the same directory.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(tmp)
	err = write(bw)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
	}
	return err
}

var _ Cache = (*FileCache)(nil)
