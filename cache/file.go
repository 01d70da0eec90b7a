package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// File 每个键一个文件 文件名为键的 md5
//
// 过期条目按未命中处理 但文件不会被删除
type File struct {
	Dir string
	now func() time.Time
}

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &File{Dir: dir, now: time.Now}, nil
}

func (f *File) path(key string) string {
	sum := md5.Sum([]byte(key))
	return filepath.Join(f.Dir, hex.EncodeToString(sum[:]))
}

func (f *File) Fetch(_ context.Context, key string) (Rows, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	rows, expire, err := decode(data)
	if err != nil {
		return nil, false, err
	}
	if expired(f.now(), expire) {
		return nil, false, nil
	}
	return rows, true, nil
}

func (f *File) Store(_ context.Context, key string, rows Rows, ttl time.Duration) error {
	data, err := encode(rows, expireAt(f.now(), ttl))
	if err != nil {
		return err
	}
	return os.WriteFile(f.path(key), data, 0o644)
}

func (f *File) Clear(_ context.Context, key string) (bool, error) {
	err := os.Remove(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Flush 删除目录下所有文件
func (f *File) Flush(_ context.Context) error {
	entries, err := os.ReadDir(f.Dir)
	if err != nil {
		return err
	}
	var errs []error
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(f.Dir, e.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
