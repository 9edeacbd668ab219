package declari

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/dustin/go-humanize"
)

// readSource loads a template source file. limit is the maximum size
// in bytes, zero disables the check.
func readSource(name, path string, limit uint64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("cannot open '%s' (%s): %w", name, path, ErrSourceNotFound)
		}
		return nil, fmt.Errorf("cannot open '%s': %w", name, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cannot stat '%s': %w", name, err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("'%s' is a directory: %w", name, ErrSourceNotFound)
	}
	if limit > 0 && uint64(st.Size()) > limit {
		return nil, fmt.Errorf("'%s' is %s, the limit is %s: %w", name, humanize.IBytes(uint64(st.Size())), humanize.IBytes(limit), ErrSourceTooLarge)
	}

	var r io.Reader = f
	if limit > 0 {
		// the file may grow between Stat and Read
		r = io.LimitReader(f, int64(limit)+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read '%s': %w", name, err)
	}
	if limit > 0 && uint64(len(data)) > limit {
		return nil, fmt.Errorf("'%s' exceeds %s: %w", name, humanize.IBytes(limit), ErrSourceTooLarge)
	}
	return data, nil
}
