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

// Command nbt converts, inspects and
// queries NBT documents.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/SnellerInc/tagtree/compr"
	"github.com/SnellerInc/tagtree/nbt"
	"github.com/SnellerInc/tagtree/nbtio"
)

var (
	dashc       string
	dasho       string
	dashz       string
	dashv       bool
	dashh       bool
	compact     bool
	arrays      bool
	maxBytes    int64
	maxDepth    int
	compression compr.Codec
	config      *nbtio.Config
)

func init() {
	pflag.StringVarP(&dashc, "config", "c", "", "configuration file (.json, .yaml or .yml)")
	pflag.StringVarP(&dasho, "output", "o", "-", "output file (or - for stdout)")
	pflag.StringVarP(&dashz, "compression", "z", "", "compression for binary output ("+strings.Join(compr.Names(), ", ")+")")
	pflag.BoolVarP(&dashv, "verbose", "v", false, "verbose")
	pflag.BoolVarP(&dashh, "help", "h", false, "show usage help")
	pflag.BoolVar(&compact, "compact", false, "print SNBT on a single line with sorted keys")
	pflag.BoolVar(&arrays, "arrays", false, "include array contents in dump output")
	pflag.Int64Var(&maxBytes, "max-bytes", 0, "decode quota in bytes (0 uses the configuration)")
	pflag.IntVar(&maxDepth, "max-depth", 0, "maximum nesting depth (0 uses the configuration)")
}

func exitf(f string, args ...interface{}) {
	if !strings.HasSuffix(f, "\n") {
		f += "\n"
	}
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func logf(f string, args ...interface{}) {
	if f[len(f)-1] != '\n' {
		f += "\n"
	}
	fmt.Fprintf(os.Stderr, f, args...)
}

// setup loads the configuration and
// applies the flags that override it
func setup() {
	config = nbtio.DefaultConfig()
	if dashc != "" {
		c, err := nbtio.OpenConfig(dashc)
		if err != nil {
			exitf("loading config: %s", err)
		}
		config = c
	}
	if pflag.CommandLine.Changed("compression") {
		config.Compression = dashz
	}
	if maxBytes != 0 {
		config.Limits.MaxBytes = maxBytes
	}
	if maxDepth != 0 {
		config.Limits.MaxDepth = maxDepth
	}
	if err := config.Validate(); err != nil {
		exitf("%s", err)
	}
	c, err := config.Codec()
	if err != nil {
		exitf("%s", err)
	}
	compression = c
}

// readInput returns the contents of the named
// file, or of stdin for "-". Regular files are
// mapped into memory when possible; call the
// returned function once the contents are no
// longer needed.
func readInput(fp string) ([]byte, func()) {
	if fp == "-" {
		buf, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitf("reading stdin: %s", err)
		}
		return buf, func() {}
	}
	f, err := os.Open(fp)
	if err != nil {
		exitf("%s", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		exitf("%s", err)
	}
	if info.Mode().IsRegular() && info.Size() > 0 {
		if mem, ok := mmap(f, info.Size()); ok {
			return mem, func() { unmap(mem) }
		}
	}
	buf, err := io.ReadAll(f)
	if err != nil {
		exitf("reading %s: %s", fp, err)
	}
	return buf, func() {}
}

// openDocument returns a decompressed
// stream for the named input
func openDocument(fp string) (io.Reader, func()) {
	buf, done := readInput(fp)
	codec, r, err := compr.DetectReader(bytes.NewReader(buf))
	if err != nil {
		exitf("%s: %s", fp, err)
	}
	dec, err := codec.NewReader(r)
	if err != nil {
		exitf("%s: %s: %s", fp, codec.Name(), err)
	}
	if dashv {
		logf("%s: %d bytes, compression %s", fp, len(buf), codec.Name())
	}
	return dec, func() {
		dec.Close()
		done()
	}
}

// load decodes the named binary document
func load(fp string) (string, nbt.Tag) {
	r, done := openDocument(fp)
	defer done()
	acc := nbt.NewAccounter(config.Limits)
	name, root, err := nbt.NewReader(r).ReadNamed(acc)
	if err != nil {
		exitf("%s: %s", fp, err)
	}
	if dashv {
		logf("%s: root %q (%s), decode cost %d", fp, name, root.Type().PrettyName(), acc.Usage())
	}
	return name, root
}

// output calls fn with the output file,
// or stdout when no file is named
func output(fn func(w io.Writer) error) {
	if dasho == "-" {
		if err := fn(os.Stdout); err != nil {
			exitf("%s", err)
		}
		return
	}
	f, err := os.Create(dasho)
	if err != nil {
		exitf("%s", err)
	}
	err = fn(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		exitf("writing %s: %s", dasho, err)
	}
}

// writeDocument writes root as a binary
// document with the configured compression
func writeDocument(name string, root nbt.Tag) {
	if dasho != "-" {
		if err := nbtio.WriteFile(dasho, compression, name, root); err != nil {
			exitf("writing %s: %s", dasho, err)
		}
		if dashv {
			logf("wrote %s (%s)", dasho, compression.Name())
		}
		return
	}
	if err := nbtio.WriteCompressed(os.Stdout, compression, name, root); err != nil {
		exitf("%s", err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "    %s [flags] snbt <file>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        print a binary document as SNBT\n")
	fmt.Fprintf(os.Stderr, "    %s [flags] compile <file.snbt>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        convert SNBT text into a binary document\n")
	fmt.Fprintf(os.Stderr, "    %s [flags] dump <file>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        describe the structure of a binary document\n")
	fmt.Fprintf(os.Stderr, "    %s [flags] json <file>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        convert a binary document to JSON\n")
	fmt.Fprintf(os.Stderr, "    %s [flags] fromjson <file.json>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        convert JSON into a binary document\n")
	fmt.Fprintf(os.Stderr, "    %s [flags] get <file> <type>:<path>...\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        print selected fields, e.g. string:Data.LevelName\n")
	fmt.Fprintf(os.Stderr, "    %s [flags] digest <file>...\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        print the content digest of each document\n")
	fmt.Fprintf(os.Stderr, "    %s [flags] match <pattern> <file>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        exit 0 if the document contains the SNBT pattern\n")
	fmt.Fprintf(os.Stderr, "flag usage:\n")
	pflag.PrintDefaults()
}

func main() {
	pflag.Parse()
	args := pflag.Args()
	if len(args) == 0 || dashh {
		usage()
		os.Exit(1)
	}
	setup()

	switch args[0] {
	case "snbt":
		if len(args) != 2 {
			exitf("usage: snbt <file>")
		}
		snbt(args[1])
	case "compile":
		if len(args) != 2 {
			exitf("usage: compile <file.snbt>")
		}
		compile(args[1])
	case "dump":
		if len(args) != 2 {
			exitf("usage: dump <file>")
		}
		dump(args[1])
	case "json":
		if len(args) != 2 {
			exitf("usage: json <file>")
		}
		tojson(args[1])
	case "fromjson":
		if len(args) != 2 {
			exitf("usage: fromjson <file.json>")
		}
		fromjson(args[1])
	case "get":
		if len(args) < 3 {
			exitf("usage: get <file> <type>:<path>...")
		}
		get(args[1], args[2:])
	case "digest":
		if len(args) < 2 {
			exitf("usage: digest <file>...")
		}
		digest(args[1:])
	case "match":
		if len(args) != 3 {
			exitf("usage: match <pattern> <file>")
		}
		match(args[1], args[2])
	default:
		exitf("commands: snbt, compile, dump, json, fromjson, get, digest, match")
	}
}
