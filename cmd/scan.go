package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// BundleFileName is the bundle file searched for when a directory is given.
const BundleFileName = "cli.js"

// errBundleNotFound reports a directory without a bundle file.
var errBundleNotFound = errors.New("bundle not found")

// FindBundleImpl returns path itself when it names a file. When it names a
// directory, the directory is walked for BundleFileName, preferring the
// shallowest match and then the lexically first. It is an Impl function: it performs OS filesystem
// operations and is excluded from unit test coverage calculations.
func FindBundleImpl(_ context.Context, path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !fi.IsDir() {
		return path, nil
	}

	var found string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Name() == BundleFileName && (found == "" || depth(p) < depth(found)) {
			found = p
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("%s in %s: %w", BundleFileName, path, errBundleNotFound)
	}
	return found, nil
}

func depth(p string) int {
	n := 0
	for _, r := range filepath.ToSlash(p) {
		if r == '/' {
			n++
		}
	}
	return n
}
