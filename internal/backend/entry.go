// Package backend implements the REST client for the file service the daemon
// fronts. The backend speaks the Filebrowser HTTP API; every file operation a
// session performs is proxied through this client.
package backend

// Kind classifies a backend entry.
type Kind string

const (
	// KindDirectory is a directory entry.
	KindDirectory Kind = "directory"
	// KindFile is a regular file entry.
	KindFile Kind = "file"
	// KindSymlink is a symbolic link entry. The Filebrowser API does not
	// distinguish symlinks, so listings never yield this kind today.
	KindSymlink Kind = "symlink"
)

// FileEntry describes a single file or directory as reported by the backend.
type FileEntry struct {
	// Name is the base name of the entry.
	Name string

	// Path is the backend-absolute path of the entry.
	Path string

	// Kind classifies the entry.
	Kind Kind

	// Size is the entry size in bytes.
	Size uint64

	// Modified is the last modification time as Unix seconds, 0 when the
	// backend timestamp could not be parsed.
	Modified int64

	// MimeType is the backend-reported MIME type, nil when unknown.
	MimeType *string
}

// IsDir returns true for directory entries.
func (e *FileEntry) IsDir() bool {
	return e.Kind == KindDirectory
}
