package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/leapstack-labs/horizon/pkg/core"
	"github.com/leapstack-labs/horizon/pkg/csvgrid"
)

// MaxUploadBytes caps a single uploaded file.
const MaxUploadBytes = 32 << 20

var (
	errBinary   = errors.New("file is not UTF-8 text")
	errTooLarge = fmt.Errorf("file exceeds %d MiB", MaxUploadBytes>>20)
)

// ParseUpload reads one uploaded file into a grid. Every failure is an
// *UploadError naming the file.
func ParseUpload(name string, r io.Reader) (*core.Grid, error) {
	body, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, &UploadError{File: name, Err: err}
	}
	if len(body) > MaxUploadBytes {
		return nil, &UploadError{File: name, Err: errTooLarge}
	}

	body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(body) || bytes.IndexByte(body, 0) >= 0 {
		return nil, &UploadError{File: name, Err: errBinary}
	}

	text := string(body)
	if csvgrid.IsProbablyHTML(text) {
		return nil, &UploadError{File: name, Err: ErrHTML}
	}
	return core.NewGrid(csvgrid.Parse(text)), nil
}
