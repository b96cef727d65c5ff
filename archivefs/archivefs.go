// This file is part of sdcart.
//
// sdcart is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// sdcart is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with sdcart.  If not, see <https://www.gnu.org/licenses/>.

package archivefs

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bodgit/sevenzip"
)

// Entry is a file found in an archive.
type Entry struct {
	Name string
	Size int64
}

func (e Entry) String() string {
	return e.Name
}

// member is a file in an archive regardless of the archive type.
type member struct {
	name string
	size int64
	dir  bool
	open func() (io.ReadCloser, error)
}

// archive is a list of members and the function to close the underlying
// archive file.
type archive struct {
	members []member
	close   func() error
}

func openZip(filename string) (*archive, error) {
	zf, err := zip.OpenReader(filename)
	if err != nil {
		return nil, err
	}

	arc := &archive{close: zf.Close}
	for _, f := range zf.File {
		arc.members = append(arc.members, member{
			name: filepath.ToSlash(filepath.Clean(f.Name)),
			size: int64(f.UncompressedSize64),
			dir:  f.FileInfo().IsDir(),
			open: f.Open,
		})
	}

	return arc, nil
}

func openSevenZip(filename string) (*archive, error) {
	sz, err := sevenzip.OpenReader(filename)
	if err != nil {
		return nil, err
	}

	arc := &archive{close: sz.Close}
	for _, f := range sz.File {
		arc.members = append(arc.members, member{
			name: filepath.ToSlash(filepath.Clean(f.Name)),
			size: int64(f.UncompressedSize),
			dir:  f.FileInfo().IsDir(),
			open: f.Open,
		})
	}

	return arc, nil
}

func openArchive(filename string) (*archive, error) {
	var arc *archive
	var err error

	switch strings.ToUpper(filepath.Ext(filename)) {
	case ".ZIP":
		arc, err = openZip(filename)
	case ".7Z":
		arc, err = openSevenZip(filename)
	default:
		return nil, fmt.Errorf("archivefs: not an archive: %s", filename)
	}

	if err != nil {
		return nil, fmt.Errorf("archivefs: %w", err)
	}
	return arc, nil
}

// List returns the files in the archive, sorted by name. Directories are not
// listed.
func List(filename string) ([]Entry, error) {
	arc, err := openArchive(filename)
	if err != nil {
		return nil, err
	}
	defer arc.close()

	var ent []Entry
	for _, m := range arc.members {
		if m.dir {
			continue
		}
		ent = append(ent, Entry{Name: m.name, Size: m.size})
	}

	sort.Slice(ent, func(i, j int) bool {
		return ent[i].Name < ent[j].Name
	})

	return ent, nil
}

// Open a file. The path may lead into an archive, in which case the file is
// extracted from the archive:
//
//	games.7z/food fight.a78
//
// Returns the file contents and the size of the file.
func Open(path string) (io.ReadSeeker, int, error) {
	outer, inner := Split(path)

	if inner == "" {
		f, err := os.Open(outer)
		if err != nil {
			return nil, 0, fmt.Errorf("archivefs: %w", err)
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, 0, fmt.Errorf("archivefs: %w", err)
		}
		if info.IsDir() {
			f.Close()
			return nil, 0, fmt.Errorf("archivefs: is a directory: %s", outer)
		}
		return f, int(info.Size()), nil
	}

	arc, err := openArchive(outer)
	if err != nil {
		return nil, 0, err
	}
	defer arc.close()

	for _, m := range arc.members {
		if m.dir || m.name != inner {
			continue
		}

		r, err := m.open()
		if err != nil {
			return nil, 0, fmt.Errorf("archivefs: %w", err)
		}
		defer r.Close()

		b, err := io.ReadAll(r)
		if err != nil {
			return nil, 0, fmt.Errorf("archivefs: %w", err)
		}

		return bytes.NewReader(b), len(b), nil
	}

	return nil, 0, fmt.Errorf("archivefs: %s not found in %s", inner, outer)
}

// ReadFile is like Open() but returns the entire file.
func ReadFile(path string) ([]byte, error) {
	r, sz, err := Open(path)
	if err != nil {
		return nil, err
	}
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}

	b := make([]byte, sz)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("archivefs: %w", err)
	}

	return b, nil
}
