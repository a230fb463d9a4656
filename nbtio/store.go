// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package nbtio

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/SnellerInc/tagtree/compr"
	"github.com/SnellerInc/tagtree/nbt"
)

const (
	// Ext is the extension of stored documents.
	Ext = ".dat"
	// BackupExt is the extension of the
	// previous version of a document.
	BackupExt = ".dat_old"
	// CorruptExt is appended to the name of
	// a document that failed to decode.
	CorruptExt = ".corrupt"
)

// Store is a directory of compound documents
// addressed by slash-separated keys. The
// document for key "a/b" lives in Root/a/b.dat.
//
// A Store is safe for concurrent use by
// multiple goroutines. Separate Store values
// must not share a Root.
type Store struct {
	// Root is the directory holding the documents.
	Root string

	codec  compr.Codec
	limits nbt.Limits
	backup bool
	logger *log.Logger

	lock sync.Mutex
	// hashes of the documents as last
	// loaded or saved, by key
	saved map[string]uint64
}

// Option is an optional argument
// to NewStore to indicate optional
// Store configuration.
type Option func(s *Store)

// WithLogger is an option that
// can be passed to NewStore to
// have it log recovery from corrupt
// or missing documents. If no logger
// is set, the store does not write out
// any diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithCompression sets the codec used for
// writing documents. Documents are always
// read with the codec they were written with.
// The default is gzip.
func WithCompression(c compr.Codec) Option {
	return func(s *Store) {
		s.codec = c
	}
}

// WithLimits sets the decoding limits.
// The default is nbt.Unlimited.
func WithLimits(lim nbt.Limits) Option {
	return func(s *Store) {
		s.limits = lim
	}
}

// WithBackup determines whether saving a
// document keeps the previous version.
// Backups are enabled by default.
func WithBackup(b bool) Option {
	return func(s *Store) {
		s.backup = b
	}
}

// NewStore returns a Store rooted at dir.
// The directory is created when the first
// document is saved.
func NewStore(dir string, opt ...Option) *Store {
	gz, _ := compr.Lookup("gzip")
	s := &Store{
		Root:   dir,
		codec:  gz,
		limits: nbt.Unlimited,
		backup: true,
		saved:  make(map[string]uint64),
	}
	for _, o := range opt {
		o(s)
	}
	return s
}

func (s *Store) logf(f string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(f, args...)
	}
}

func (s *Store) path(key string) (string, error) {
	if key == "." || !fs.ValidPath(key) {
		return "", fmt.Errorf("nbtio: invalid key %q", key)
	}
	return filepath.Join(s.Root, filepath.FromSlash(key)) + Ext, nil
}

// Save stores c under key. If c is
// unchanged since it was last loaded or
// saved through s, the write is skipped.
//
// When backups are enabled, the current
// document becomes the backup once the
// new one has been written out in full.
func (s *Store) Save(key string, c *nbt.Compound) error {
	fp, err := s.path(key)
	if err != nil {
		return err
	}
	h := nbt.Hash(c)

	s.lock.Lock()
	defer s.lock.Unlock()
	if prev, ok := s.saved[key]; ok && prev == h {
		if _, err := os.Stat(fp); err == nil {
			return nil
		}
	}
	buf, err := Encode(s.codec, "", c)
	if err != nil {
		return fmt.Errorf("nbtio: encoding %s: %w", key, err)
	}
	if s.backup {
		// keep the current version until the
		// new one is complete
		tmp := fp + ".new"
		if err := writeAtomic(tmp, buf); err != nil {
			return err
		}
		err := os.Rename(fp, strings.TrimSuffix(fp, Ext)+BackupExt)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			os.Remove(tmp)
			return err
		}
		if err := os.Rename(tmp, fp); err != nil {
			os.Remove(tmp)
			return err
		}
	} else if err := writeAtomic(fp, buf); err != nil {
		return err
	}
	s.saved[key] = h
	return nil
}

// Load returns the document stored under key.
//
// If the document is missing or corrupt
// (the error wraps nbt.ErrMalformed) and a
// backup exists, the backup is returned
// instead. A corrupt document is renamed with
// CorruptExt so that the next Save does not
// make it the backup. Any other error, such
// as an *nbt.LimitError, is returned with the
// document left untouched. If neither version
// can be read, the returned error wraps
// fs.ErrNotExist or the decoding error.
func (s *Store) Load(key string) (*nbt.Compound, error) {
	fp, err := s.path(key)
	if err != nil {
		return nil, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	c, err := s.read(fp)
	if err == nil {
		s.saved[key] = nbt.Hash(c)
		return c, nil
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case errors.Is(err, nbt.ErrMalformed):
		s.logf("%s: %s", fp, err)
		if rerr := os.Rename(fp, fp+CorruptExt); rerr != nil {
			s.logf("moving corrupt document aside: %s", rerr)
		} else {
			s.logf("moved %s to %s", fp, fp+CorruptExt)
		}
	default:
		// limit violations and I/O errors
		// leave the document in place
		return nil, err
	}
	old := strings.TrimSuffix(fp, Ext) + BackupExt
	c, berr := s.read(old)
	if berr != nil {
		if errors.Is(berr, fs.ErrNotExist) {
			return nil, err
		}
		return nil, berr
	}
	s.logf("%s: using backup %s", key, old)
	// the backup differs from what is on
	// disk, so the next Save must not be skipped
	delete(s.saved, key)
	return c, nil
}

func (s *Store) read(fp string) (*nbt.Compound, error) {
	_, c, _, err := ReadFile(fp, s.limits)
	return c, err
}

// Remove deletes the document stored
// under key along with its backup.
// It returns an error wrapping fs.ErrNotExist
// if neither exists.
func (s *Store) Remove(key string) error {
	fp, err := s.path(key)
	if err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.saved, key)
	err = os.Remove(fp)
	berr := os.Remove(strings.TrimSuffix(fp, Ext) + BackupExt)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if berr != nil && !errors.Is(berr, fs.ErrNotExist) {
		return berr
	}
	if err != nil && berr != nil {
		return err
	}
	return nil
}

// Keys returns the keys of all stored
// documents in sorted order. Documents that
// only exist as a backup are included.
func (s *Store) Keys() ([]string, error) {
	var out []string
	err := filepath.WalkDir(s.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == s.Root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		var stem string
		switch name := d.Name(); {
		case strings.HasSuffix(name, Ext):
			stem = strings.TrimSuffix(p, Ext)
		case strings.HasSuffix(name, BackupExt):
			stem = strings.TrimSuffix(p, BackupExt)
		default:
			return nil
		}
		rel, err := filepath.Rel(s.Root, stem)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}
