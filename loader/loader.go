// Package loader reads YAML data files into documents.
//
// FileLoader reads the file on every call. CachedLoader keeps parsed files in
// a cache.Store and re-reads a file only when its modification time or size
// changes. Both enforce the same contract: an empty file is an empty Mapping
// and any other non-Mapping top level is ErrShapeMismatch.
package loader

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/KOMKZ/yogan-hiera/cache"
	"github.com/KOMKZ/yogan-hiera/document"
	"github.com/KOMKZ/yogan-hiera/logger"
	"go.uber.org/zap"
)

// Loader loads the data file at path
type Loader interface {
	Load(ctx context.Context, path string) (document.Document, error)
}

// New returns a CachedLoader over store when cacheable is set and a store is
// given, a FileLoader otherwise
func New(cacheable bool, store cache.Store, opts ...Option) Loader {
	if cacheable && store != nil {
		return NewCachedLoader(store, opts...)
	}
	probe := &CachedLoader{}
	for _, opt := range opts {
		opt(probe)
	}
	return NewFileLoader(probe.log)
}

// FileLoader reads data files straight from disk
type FileLoader struct {
	log *logger.CtxZapLogger
}

// NewFileLoader creates an uncached loader
func NewFileLoader(log *logger.CtxZapLogger) *FileLoader {
	return &FileLoader{log: logger.OrNop(log, "loader")}
}

// Load reads and decodes path
func (l *FileLoader) Load(ctx context.Context, path string) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return document.Document{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return document.Document{}, readError(path, err)
	}

	l.log.DebugCtx(ctx, "loaded datafile", zap.String("path", path), zap.Int("bytes", len(data)))
	return Decode(path, data)
}

// Decode parses data read from path and checks that it is a Mapping
func Decode(path string, data []byte) (document.Document, error) {
	doc, err := document.Parse(data)
	if err != nil {
		return document.Document{}, ErrParse.Wrapf(err, "数据文件解析失败: %s", path).WithData("path", path)
	}

	switch doc.Kind() {
	case document.KindNull:
		return document.EmptyMapping(), nil
	case document.KindMapping:
		return doc, nil
	default:
		return document.Document{}, ErrShapeMismatch.
			WithMsgf("data retrieved from %s is %s not Mapping", path, doc.ShapeName()).
			WithData("path", path)
	}
}

func readError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound.Wrapf(err, "数据文件不存在: %s", path).WithData("path", path)
	}
	return ErrRead.Wrapf(err, "数据文件读取失败: %s", path).WithData("path", path)
}
