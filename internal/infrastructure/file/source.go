package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	ErrNotAFile            = errors.New("not a regular file")
	ErrPathOutsideBaseDir  = errors.New("path escapes the import base directory")
	ErrInvalidS3URI        = errors.New("invalid s3 uri")
	ErrS3SourceUnavailable = errors.New("s3 source is not configured")
)

type opener interface {
	Open(ctx context.Context, sourcePath string) (io.ReadCloser, error)
}

// Source picks the backend for an import path: s3:// URIs go to S3 and
// everything else to the local filesystem.
type Source struct {
	local opener
	s3    opener
}

// NewSource returns a Source. s3 may be nil when no bucket access is
// configured.
func NewSource(local *LocalSource, s3 *S3Source) *Source {
	src := &Source{local: local}
	if s3 != nil {
		src.s3 = s3
	}
	return src
}

func IsS3URI(sourcePath string) bool {
	return strings.HasPrefix(sourcePath, "s3://")
}

func (s *Source) Open(ctx context.Context, sourcePath string) (io.ReadCloser, error) {
	if IsS3URI(sourcePath) {
		if s.s3 == nil {
			return nil, fmt.Errorf("open %s: %w", sourcePath, ErrS3SourceUnavailable)
		}
		return s.s3.Open(ctx, sourcePath)
	}
	return s.local.Open(ctx, sourcePath)
}

// FileName returns the last path element of a local path or S3 key.
func FileName(sourcePath string) string {
	if IsS3URI(sourcePath) {
		if _, key, err := ParseS3URI(sourcePath); err == nil {
			return path.Base(key)
		}
	}
	return path.Base(strings.ReplaceAll(sourcePath, "\\", "/"))
}
