// Package resources serves the viewer's static assets.
package resources

// StaticDirectoryPath is the static asset directory relative to the module root.
const StaticDirectoryPath = "internal/ui/resources/static"

// StaticPath returns the URL path for a static asset.
func StaticPath(path string) string {
	return "/static/" + path
}
