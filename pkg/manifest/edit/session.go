package edit

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/matzehuels/featprune/pkg/errors"
)

// Session ties a [Document] to the manifest file it came from.
//
// The bytes read by [Open] are kept aside. Until [Session.Commit] is called,
// [Session.Close] writes them back, so a run that fails or is interrupted
// leaves the manifest exactly as it found it:
//
//	s, err := edit.Open(path)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
type Session struct {
	path     string
	perm     os.FileMode
	original []byte
	doc      *Document
	written  bool
	done     bool
}

// Open reads and parses the manifest at path.
func Open(path string) (*Session, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeManifestNotFound, err, "stat %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeManifestNotFound, err, "read %s", path)
	}
	doc, err := Parse(string(data))
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "parse %s", path)
	}
	return &Session{path: path, perm: info.Mode().Perm(), original: data, doc: doc}, nil
}

// Path returns the manifest path.
func (s *Session) Path() string { return s.path }

// Document returns the in-memory document.
func (s *Session) Document() *Document { return s.doc }

// SetFeatures edits the in-memory document. See [Document.SetFeatures].
func (s *Session) SetFeatures(name string, features []string) error {
	return s.doc.SetFeatures(name, features)
}

// Restore resets the in-memory dependency tables. The file is not touched
// until the next Flush.
func (s *Session) Restore() { s.doc.Restore() }

// Flush writes the current document to disk.
func (s *Session) Flush() error {
	if s.done {
		return errors.New(errors.ErrCodeInternal, "flush after close of %s", s.path)
	}
	if err := writeFile(s.path, []byte(s.doc.String()), s.perm); err != nil {
		return err
	}
	s.written = true
	return nil
}

// Commit flushes the document and keeps it: Close will not restore.
func (s *Session) Commit() error {
	if err := s.Flush(); err != nil {
		return err
	}
	s.done = true
	return nil
}

// Close restores the original bytes if anything was written. It is safe to
// call more than once.
func (s *Session) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	if !s.written {
		return nil
	}
	current, err := os.ReadFile(s.path)
	if err == nil && bytes.Equal(current, s.original) {
		return nil
	}
	return writeFile(s.path, s.original, s.perm)
}

// writeFile replaces path through a temporary file in the same directory so
// that readers never observe a partial manifest.
func writeFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".featprune-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeManifestWrite, err, "write %s", path)
	}
	name := tmp.Name()
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Chmod(name, perm)
	}
	if werr == nil {
		werr = os.Rename(name, path)
	}
	if werr != nil {
		_ = os.Remove(name)
		return errors.Wrap(errors.ErrCodeManifestWrite, werr, "write %s", path)
	}
	return nil
}
