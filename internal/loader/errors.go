// Package loader reads CSV sources over HTTP or from the data directory
// and reports failures in terms a viewer can show.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
)

// Sentinel errors.
var (
	// ErrHTML means an HTML document arrived where CSV was expected.
	ErrHTML = errors.New("got HTML instead of CSV")
	// ErrOutsideDataDir means a local path escaped the data directory.
	ErrOutsideDataDir = errors.New("path escapes the data directory")
	// ErrNoSource means nothing was selected to load.
	ErrNoSource = errors.New("no data source selected")
)

const htmlHint = "Got HTML instead of CSV. Put your file under the data directory " +
	"(e.g. runs/latest/telemetry.csv) and load it via /runs/latest/telemetry.csv"

// HTTPError is a non-2xx response.
type HTTPError struct {
	URL    string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Status)
}

// UploadError is a failure to read one uploaded file.
type UploadError struct {
	File string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Describe turns a load error into the message shown to the user.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var upload *UploadError
	if errors.As(err, &upload) {
		if errors.Is(upload.Err, ErrHTML) {
			return fmt.Sprintf("Failed to parse CSV %q: %s", upload.File, htmlHint)
		}
		return fmt.Sprintf("Failed to parse CSV %q: %v", upload.File, upload.Err)
	}

	var httpErr *HTTPError
	switch {
	case errors.Is(err, ErrHTML):
		return htmlHint
	case errors.As(err, &httpErr):
		return httpErr.Error()
	case errors.Is(err, fs.ErrNotExist):
		return "HTTP 404"
	case errors.Is(err, ErrOutsideDataDir):
		return "Path escapes the data directory"
	case errors.Is(err, ErrNoSource):
		return "No data source selected"
	}
	return err.Error()
}
