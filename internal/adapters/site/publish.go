package site

import (
	"fmt"
	"os"
	"path/filepath"
)

// Publish lets fn fill a staging directory created next to dir and, only if
// fn succeeds, swaps it in place of dir. On any failure dir is left as it
// was and the staging directory is removed.
func Publish(dir string, fn func(staging string) error) error {
	dir = filepath.Clean(dir)
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, dirMode); err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	staging, err := os.MkdirTemp(parent, "."+filepath.Base(dir)+".staging-")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}
	if err := fn(staging); err != nil {
		_ = os.RemoveAll(staging)
		return err
	}
	if err := os.Chmod(staging, dirMode); err != nil {
		_ = os.RemoveAll(staging)
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	var backup string
	if _, err := os.Stat(dir); err == nil {
		backup = staging + ".old"
		if err := os.Rename(dir, backup); err != nil {
			_ = os.RemoveAll(staging)
			return fmt.Errorf("%w: %v", ErrPublish, err)
		}
	}
	if err := os.Rename(staging, dir); err != nil {
		if backup != "" {
			_ = os.Rename(backup, dir)
		}
		_ = os.RemoveAll(staging)
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}
	if backup != "" {
		_ = os.RemoveAll(backup)
	}
	return nil
}
