package pipeline

import "path"

// LibraryPaths are the destinations of the generated artifacts for one
// library, relative to the output root.
type LibraryPaths struct {
	HTMLPath string
	JSONPath string
	XMLPath  string
}

func DocPaths(libName string) LibraryPaths {
	base := path.Join("libraries", libName)
	return LibraryPaths{
		HTMLPath: base + ".html",
		JSONPath: base + ".json",
		XMLPath:  base + ".xml",
	}
}
