package images

import (
	"io"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
)

// copyFile copies src to dst through a temporary file in the destination
// directory and carries over the source mode and modification time.
func copyFile(src, dst string) (err error) {
	fail := func(msg string, cause error) error {
		return ferrors.FileSystemError(msg).
			WithCause(cause).
			WithContext("source", src).
			WithContext("destination", dst).
			Build()
	}

	in, err := os.Open(src)
	if err != nil {
		return fail("open image", err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return fail("stat image", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fail("create image directory", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".blogsync-*")
	if err != nil {
		return fail("create temporary image", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return fail("copy image", err)
	}
	if err = tmp.Close(); err != nil {
		return fail("close temporary image", err)
	}
	if err = os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		return fail("chmod image", err)
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return fail("install image", err)
	}
	if err = os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fail("preserve image mtime", err)
	}
	return nil
}
