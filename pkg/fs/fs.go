// Package fs provides a small filesystem abstraction so the pipeline stages
// can create, open, and remove their run files through an interface instead
// of calling the os package directly, and tests can substitute a fake.
//
// The main types are:
//   - [FS]: interface for the filesystem operations the stages need
//   - [File]: interface for open files (satisfied by [os.File])
//   - [Real]: production implementation using the [os] package
package fs

import (
	"io"
	"os"
)

// File represents an OS-backed open file descriptor.
//
// This interface is satisfied by [os.File] and can be used with all
// standard library functions that accept [io.Reader], [io.Writer],
// [io.Seeker], or [io.Closer].
type File interface {
	io.ReadWriteCloser
	io.Seeker

	// Fd returns the file descriptor. Used for advisory locking and
	// readahead hints on the unix build (see internal/cooccur/runfile_unix.go).
	Fd() uintptr

	// Stat returns the [os.FileInfo] for this file. See [os.File.Stat].
	Stat() (os.FileInfo, error)
}

// FS defines the filesystem operations the pipeline stages need.
//
// All methods mirror their [os] package equivalents. Paths use OS semantics,
// not the slash-separated paths used by the standard library io/fs package.
type FS interface {
	// Open opens a file for reading. See [os.Open].
	Open(path string) (File, error)

	// Create creates or truncates a file for writing. See [os.Create].
	Create(path string) (File, error)

	// OpenFile opens a file with specified flags and permissions. See [os.OpenFile].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)

	// Remove deletes a file. See [os.Remove].
	Remove(path string) error
}

// Compile-time interface check.
var _ File = (*os.File)(nil)
