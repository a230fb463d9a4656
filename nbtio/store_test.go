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
	"bytes"
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/SnellerInc/tagtree/nbt"
)

func TestStoreSaveLoad(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	doc := testDoc(t)
	if err := s.Save("level", doc); err != nil {
		t.Fatal(err)
	}
	if err := s.Save("playerdata/alice", nbt.NewCompound()); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load("level")
	if err != nil {
		t.Fatal(err)
	}
	if !nbt.Equal(got, doc) {
		t.Errorf("got %s", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "playerdata", "alice.dat")); err != nil {
		t.Fatal(err)
	}
	keys, err := s.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(keys, ",") != "level,playerdata/alice" {
		t.Errorf("keys %q", keys)
	}

	// a second store sees the same documents
	got, err = NewStore(dir).Load("playerdata/alice")
	if err != nil || got.Len() != 0 {
		t.Errorf("got %s %v", got, err)
	}

	for _, key := range []string{"", ".", "../x", "/abs", "a//b", "a/"} {
		if err := s.Save(key, doc); err == nil {
			t.Errorf("saved invalid key %q", key)
		}
	}
}

func TestStoreBackup(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	v1 := nbt.NewCompound()
	v1.PutInt("version", 1)
	v2 := nbt.NewCompound()
	v2.PutInt("version", 2)
	if err := s.Save("level", v1); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "level"+BackupExt)); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("backup after the first save: %v", err)
	}
	if err := s.Save("level", v2); err != nil {
		t.Fatal(err)
	}
	_, old, _, err := ReadFile(filepath.Join(dir, "level"+BackupExt), nbt.Unlimited)
	if err != nil {
		t.Fatal(err)
	}
	if !nbt.Equal(old, v1) {
		t.Errorf("backup holds %s", old)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("%d files after two saves", len(entries))
	}

	// without backups only the primary exists
	dir = t.TempDir()
	s = NewStore(dir, WithBackup(false))
	s.Save("level", v1)
	s.Save("level", v2)
	entries, _ = os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("%d files without backups", len(entries))
	}
}

func TestStoreSkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, WithBackup(false))
	doc := testDoc(t)
	if err := s.Save("level", doc); err != nil {
		t.Fatal(err)
	}
	fp := filepath.Join(dir, "level.dat")
	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	if err := os.Chtimes(fp, past, past); err != nil {
		t.Fatal(err)
	}
	if err := s.Save("level", testDoc(t)); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(fp)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(past) {
		t.Error("unchanged document was rewritten")
	}
	doc.PutByte("dirty", 1)
	if err := s.Save("level", doc); err != nil {
		t.Fatal(err)
	}
	if info, _ := os.Stat(fp); info.ModTime().Equal(past) {
		t.Error("changed document was not rewritten")
	}

	// a deleted file is written again
	os.Remove(fp)
	if err := s.Save("level", doc); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(fp); err != nil {
		t.Error(err)
	}
}

func TestStoreRecovery(t *testing.T) {
	dir := t.TempDir()
	var logbuf bytes.Buffer
	s := NewStore(dir, WithLogger(log.New(&logbuf, "", 0)))
	v1 := nbt.NewCompound()
	v1.PutString("v", "one")
	v2 := nbt.NewCompound()
	v2.PutString("v", "two")
	if err := s.Save("level", v1); err != nil {
		t.Fatal(err)
	}
	if err := s.Save("level", v2); err != nil {
		t.Fatal(err)
	}

	// corrupt the primary
	fp := filepath.Join(dir, "level.dat")
	if err := os.WriteFile(fp, []byte{0x0a, 0, 0, 0x63}, 0644); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load("level")
	if err != nil {
		t.Fatal(err)
	}
	if !nbt.Equal(got, v1) {
		t.Errorf("recovered %s", got)
	}
	if _, err := os.Stat(fp + CorruptExt); err != nil {
		t.Errorf("corrupt file not moved aside: %s", err)
	}
	if !strings.Contains(logbuf.String(), "using backup") {
		t.Errorf("log output: %q", logbuf.String())
	}
	// saving the recovered document does not
	// replace the backup with the corrupt file
	if err := s.Save("level", got); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(fp); err != nil {
		t.Fatal(err)
	}

	// a missing primary falls back as well
	os.Remove(fp)
	got, err = s.Load("level")
	if err != nil || !nbt.Equal(got, v1) {
		t.Errorf("missing primary: %s %v", got, err)
	}

	if _, err := s.Load("nothing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing document: %v", err)
	}

	// a corrupt primary without a backup
	// reports the decoding error
	if err := os.WriteFile(filepath.Join(dir, "bad.dat"), []byte{0x0a, 0, 0, 0x01}, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load("bad"); !errors.Is(err, nbt.ErrMalformed) {
		t.Errorf("corrupt document: %v", err)
	}
}

func TestStoreLimits(t *testing.T) {
	dir := t.TempDir()
	small := nbt.NewCompound()
	small.PutInt("v", 1)
	big := nbt.NewCompound()
	big.PutByteArray("data", make([]byte, 4096))
	s := NewStore(dir)
	if err := s.Save("player", small); err != nil {
		t.Fatal(err)
	}
	if err := s.Save("player", big); err != nil {
		t.Fatal(err)
	}

	var logbuf bytes.Buffer
	limited := NewStore(dir, WithLimits(nbt.Limits{MaxBytes: 1024}), WithLogger(log.New(&logbuf, "", 0)))
	_, err := limited.Load("player")
	var le *nbt.LimitError
	if !errors.As(err, &le) || errors.Is(err, nbt.ErrMalformed) {
		t.Fatalf("expected a limit error, got %v", err)
	}
	// the document stays where it is and
	// the backup is not used in its place
	fp := filepath.Join(dir, "player.dat")
	if _, err := os.Stat(fp); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(fp + CorruptExt); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("document moved aside: %v", err)
	}
	if logbuf.Len() != 0 {
		t.Errorf("log output: %q", logbuf.String())
	}
	got, err := s.Load("player")
	if err != nil || !nbt.Equal(got, big) {
		t.Errorf("unlimited load: %v", err)
	}
}

func TestStoreRemove(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	doc := testDoc(t)
	s.Save("a", doc)
	doc.PutInt("x", 1)
	s.Save("a", doc)
	s.Save("b", doc)
	if err := s.Remove("a"); err != nil {
		t.Fatal(err)
	}
	keys, err := s.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || keys[0] != "b" {
		t.Errorf("keys after remove: %q", keys)
	}
	if err := s.Remove("a"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("second remove: %v", err)
	}
	// a removed document is saved again
	// even though its contents did not change
	if err := s.Save("b", doc); err != nil {
		t.Fatal(err)
	}
	s.Remove("b")
	if err := s.Save("b", doc); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load("b"); err != nil {
		t.Error(err)
	}

	keys, err = NewStore(filepath.Join(dir, "missing")).Keys()
	if err != nil || len(keys) != 0 {
		t.Errorf("missing root: %q %v", keys, err)
	}
}
