// Package diskusage reports the disk space consumed by a directory tree.
package diskusage

import (
	"errors"
	"io/fs"
	"path/filepath"
)

// Size returns the total size in bytes of all regular files under path. A
// missing path reports zero usage.
func Size(path string) (int64, error) {
	var total int64
	err := filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return total, nil
}
