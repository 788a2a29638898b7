package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalSource opens import files from the local filesystem. Relative paths
// are resolved against BaseDir. A confined source only accepts relative
// paths and opens them through os.Root, so symlinks cannot leave BaseDir
// either.
type LocalSource struct {
	BaseDir  string
	Confined bool
}

func NewLocalSource(baseDir string, confined bool) *LocalSource {
	if baseDir == "" {
		baseDir = "."
	}
	return &LocalSource{BaseDir: baseDir, Confined: confined}
}

func (s *LocalSource) Open(ctx context.Context, sourcePath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		f   *os.File
		err error
	)
	if s.Confined {
		f, err = s.openConfined(sourcePath)
	} else {
		f, err = s.openAny(sourcePath)
	}
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat file %s: %w", sourcePath, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("open file %s: %w", sourcePath, ErrNotAFile)
	}
	return f, nil
}

func (s *LocalSource) openConfined(sourcePath string) (*os.File, error) {
	if !filepath.IsLocal(sourcePath) {
		return nil, fmt.Errorf("open file %s: %w", sourcePath, ErrPathOutsideBaseDir)
	}

	f, err := os.OpenInRoot(s.BaseDir, sourcePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("open file %s: %w", sourcePath, err)
		}
		// os.Root does not export its escape error; anything else here is a
		// path it refused to resolve inside BaseDir.
		return nil, fmt.Errorf("open file %s: %w: %w", sourcePath, ErrPathOutsideBaseDir, err)
	}
	return f, nil
}

func (s *LocalSource) openAny(sourcePath string) (*os.File, error) {
	path := sourcePath
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.BaseDir, sourcePath)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file %s: %w", path, err)
	}
	return f, nil
}
