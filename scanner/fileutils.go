package scanner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
)

// CopyError reports a failed copy into a group directory. It is fatal to the scan.
type CopyError struct {
	Src string
	Dst string
	Err error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("cannot copy %s to %s: %v", e.Src, e.Dst, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// GroupDir returns the directory that collects duplicate group ordinal under base
func GroupDir(base string, ordinal int) string {
	return filepath.Join(base, strconv.Itoa(ordinal))
}

// isRegularFile reports whether the entry is a regular file, following symlinks
func isRegularFile(fs afero.Fs, path string, info os.FileInfo) bool {
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := fs.Stat(path)
		if err != nil {
			return false
		}
		return target.Mode().IsRegular()
	}
	return info.Mode().IsRegular()
}

// copyFile copies src to dst, overwriting dst
func copyFile(fs afero.Fs, src, dst string) error {
	if err := copyContents(fs, src, dst); err != nil {
		return &CopyError{Src: src, Dst: dst, Err: err}
	}
	return nil
}

func copyContents(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	perm := os.FileMode(0644)
	if info, err := in.Stat(); err == nil {
		perm = info.Mode().Perm()
	}

	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
