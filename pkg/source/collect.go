package source

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

// DefaultExclude lists name fragments skipped by Collect.
var DefaultExclude = []string{"Makefile"}

// DirInfo resolves dir to an absolute path and opens it as a file system.
func DirInfo(dir string) (fsys fs.FS, abs string, err error) {
	abs, err = filepath.Abs(dir)
	if err != nil {
		return nil, "", errors.Wrap(err, "abs %v", dir)
	}

	st, err := os.Stat(abs)
	if err != nil {
		return nil, "", errors.Wrap(err, "stat")
	}
	if !st.IsDir() {
		return nil, "", errors.New("%v: not a directory", abs)
	}

	return os.DirFS(abs), abs, nil
}

// Collect lists every regular file under root, skipping paths that contain
// any of the exclude fragments. The result is sorted lexically, which fixes
// label line numbers and therefore branch offsets across runs.
func Collect(fsys fs.FS, root string, exclude []string) ([]string, error) {
	var paths []string

	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		for _, ex := range exclude {
			if ex != "" && strings.Contains(p, ex) {
				return nil
			}
		}

		paths = append(paths, p)

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "walk %v", root)
	}

	sort.Strings(paths)

	return paths, nil
}

// Load reads the named files in order.
func Load(ctx context.Context, fsys fs.FS, paths []string) ([]File, error) {
	tr := tlog.SpanFromContext(ctx)

	files := make([]File, 0, len(paths))

	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, errors.Wrap(err, "read %v", p)
		}

		tr.V("source").Printw("read file", "name", p, "size", len(data))

		files = append(files, File{Name: p, Data: data})
	}

	return files, nil
}
