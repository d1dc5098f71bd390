// package assets reads glTF documents and the files they reference from disk, and watches those files for
// changes.
package assets

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-gl/engine/loader"
)

// ErrUnsafeURI is returned for a resource URI that is absolute or leaves the document's directory.
var ErrUnsafeURI = errors.New("resource URI escapes the asset directory")

// Asset is a document with its resource table, ready for loader.Load.
type Asset struct {
	// Name is the document's file name.
	Name      string
	Path      string
	Document  []byte
	Resources map[string][]byte
	// Files lists the document and every resource file on disk.
	Files []string
}

// ReadResources reads a glTF or GLB file and every external buffer and image it references. Resource paths
// are resolved against the document's directory and keyed by their URI as written in the document.
//
// Parameters:
//   - path: the .gltf or .glb file
//
// Returns:
//   - Asset: the document and its resources
//   - error: error if a file cannot be read or a URI is unsafe
func ReadResources(path string) (Asset, error) {
	document, err := os.ReadFile(path)
	if err != nil {
		return Asset{}, fmt.Errorf("failed to read asset: %w", err)
	}
	uris, err := loader.ExternalURIs(document)
	if err != nil {
		return Asset{}, fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	a := Asset{
		Name:      filepath.Base(path),
		Path:      path,
		Document:  document,
		Resources: make(map[string][]byte, len(uris)),
		Files:     []string{path},
	}
	for _, uri := range uris {
		file, err := resolve(dir, uri)
		if err != nil {
			return Asset{}, err
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return Asset{}, fmt.Errorf("failed to read resource %q: %w", uri, err)
		}
		a.Resources[uri] = data
		a.Files = append(a.Files, file)
	}
	return a, nil
}

// resolve maps a relative, possibly percent-encoded URI onto a file below dir.
func resolve(dir, uri string) (string, error) {
	decoded, err := url.PathUnescape(uri)
	if err != nil {
		return "", fmt.Errorf("resource %q: %w", uri, err)
	}
	rel := filepath.FromSlash(decoded)
	if filepath.IsAbs(rel) || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeURI, uri)
	}
	return filepath.Join(dir, rel), nil
}
