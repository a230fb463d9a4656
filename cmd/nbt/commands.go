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

package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/SnellerInc/tagtree/nbt"
)

// entry point for 'nbt snbt ...'
func snbt(fp string) {
	_, root := load(fp)
	output(func(w io.Writer) error {
		var text string
		if compact {
			text = nbt.ToString(root)
		} else {
			text = nbt.Pretty(root, &config.Pretty)
		}
		_, err := io.WriteString(w, text+"\n")
		return err
	})
}

// entry point for 'nbt compile ...'
func compile(fp string) {
	buf, done := readInput(fp)
	root, err := nbt.ParseSNBT(string(buf))
	done()
	if err != nil {
		exitf("%s: %s", fp, err)
	}
	writeDocument("", root)
}

// entry point for 'nbt dump ...'
func dump(fp string) {
	name, root := load(fp)
	output(func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%q: %s\n", name, nbt.Describe(root, arrays))
		return err
	})
}

// entry point for 'nbt json ...'
func tojson(fp string) {
	_, root := load(fp)
	output(func(w io.Writer) error {
		if err := nbt.ToJSON(w, root); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	})
}

// entry point for 'nbt fromjson ...'
func fromjson(fp string) {
	buf, done := readInput(fp)
	root, err := nbt.FromJSON(bytes.NewReader(buf))
	done()
	if err != nil {
		exitf("%s: %s", fp, err)
	}
	writeDocument("", root)
}

// parseSelector parses <type>:<key>.<key>...
func parseSelector(s string) (nbt.FieldSelector, error) {
	typ, path, ok := strings.Cut(s, ":")
	if !ok || path == "" {
		return nbt.FieldSelector{}, fmt.Errorf("selector %q: expected <type>:<path>", s)
	}
	t, err := nbt.ParseType(typ)
	if err != nil {
		return nbt.FieldSelector{}, err
	}
	if t == nbt.EndType {
		return nbt.FieldSelector{}, fmt.Errorf("selector %q: cannot select %s", s, t)
	}
	return nbt.Select(t, strings.Split(path, ".")...), nil
}

// entry point for 'nbt get ...'
//
// The document is decoded only as far as
// needed to find the selected fields.
func get(fp string, selectors []string) {
	sel := make([]nbt.FieldSelector, len(selectors))
	for i := range selectors {
		s, err := parseSelector(selectors[i])
		if err != nil {
			exitf("%s", err)
		}
		sel[i] = s
	}
	fc := nbt.CollectFields(sel...)
	r, done := openDocument(fp)
	err := nbt.NewReader(r).Parse(fc, nbt.NewAccounter(config.Limits))
	done()
	if err != nil {
		exitf("%s: %s", fp, err)
	}
	if dashv {
		logf("%s: %d of %d fields missing", fp, fc.Missing(), len(sel))
	}
	root, _ := fc.Result().(*nbt.Compound)
	missing := 0
	output(func(w io.Writer) error {
		for i := range sel {
			v := lookup(root, &sel[i])
			if v == nil {
				missing++
				fmt.Fprintf(os.Stderr, "%s: not found\n", selectors[i])
				continue
			}
			if _, err := fmt.Fprintf(w, "%s\n", nbt.ToString(v)); err != nil {
				return err
			}
		}
		return nil
	})
	if missing > 0 {
		os.Exit(1)
	}
}

func lookup(root *nbt.Compound, sel *nbt.FieldSelector) nbt.Tag {
	c := root
	for _, key := range sel.Path {
		if c == nil {
			return nil
		}
		c, _ = c.Get(key).(*nbt.Compound)
	}
	if c == nil || !c.ContainsType(sel.Name, sel.Type) {
		return nil
	}
	return c.Get(sel.Name)
}

// entry point for 'nbt digest ...'
func digest(files []string) {
	output(func(w io.Writer) error {
		for _, fp := range files {
			_, root := load(fp)
			sum := nbt.Fingerprint(root)
			_, err := fmt.Fprintf(w, "b2sum:%s  %016x  %s\n",
				hex.EncodeToString(sum[:]), nbt.Hash(root), fp)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// entry point for 'nbt match ...'
func match(pattern, fp string) {
	p, err := nbt.ParseSNBT(pattern)
	if err != nil {
		exitf("pattern: %s", err)
	}
	_, root := load(fp)
	if !nbt.Matches(p, root, true) {
		if dashv {
			logf("%s: no match", fp)
		}
		os.Exit(1)
	}
	if dashv {
		logf("%s: match", fp)
	}
}
