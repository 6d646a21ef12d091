package loader

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/KOMKZ/yogan-hiera/logger"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 200 * time.Millisecond

// Watcher reports data files that changed under a directory tree.
// Rapid events are collapsed: onChange receives every path touched during the
// debounce window, sorted, once the tree has been quiet for that long.
type Watcher struct {
	root     string
	ext      string
	debounce time.Duration
	onChange func(ctx context.Context, paths []string)
	log      *logger.CtxZapLogger
}

// NewWatcher watches root recursively. Only files ending in "."+ext are
// reported; an empty ext reports everything.
func NewWatcher(root, ext string, onChange func(ctx context.Context, paths []string), log *logger.CtxZapLogger) *Watcher {
	return &Watcher{
		root:     root,
		ext:      strings.TrimPrefix(ext, "."),
		debounce: defaultDebounce,
		onChange: onChange,
		log:      logger.OrNop(log, "loader"),
	}
}

// WithDebounce sets the quiet period
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Run blocks until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return ErrWatch.Wrapf(err, "文件监听失败: %s", w.root)
	}
	w.log.DebugCtx(ctx, "watching datadir", zap.String("root", w.root))

	pending := make(map[string]struct{})
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				// new subdirectories are watched too
				_ = w.addTree(fw, event.Name)
			}
			if (event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write)) || !w.matches(event.Name) {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(w.debounce)

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			sort.Strings(paths)
			if len(paths) > 0 && w.onChange != nil {
				w.onChange(ctx, paths)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.WarnCtx(ctx, "文件监听错误", zap.Error(err))
		}
	}
}

func (w *Watcher) matches(path string) bool {
	if w.ext == "" {
		return true
	}
	return strings.HasSuffix(path, "."+w.ext)
}

// addTree adds dir and every directory below it
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
}
