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

package archivefs_test

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/sdcart/archivefs"
	"github.com/jetsetilly/sdcart/test"
)

// createZip writes a zip archive containing the named files. a name ending
// with a slash is a directory.
func createZip(t *testing.T, filename string, files map[string]string) {
	t.Helper()

	f, err := os.Create(filename)
	test.DemandSuccess(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, contents := range files {
		fw, err := w.Create(name)
		test.DemandSuccess(t, err)
		_, err = io.WriteString(fw, contents)
		test.DemandSuccess(t, err)
	}
	test.DemandSuccess(t, w.Close())
}

func TestSplit(t *testing.T) {
	outer, inner := archivefs.Split(filepath.Join("games", "collection.7z", "arcade", "food fight.a78"))
	test.ExpectEquality(t, outer, filepath.Join("games", "collection.7z"))
	test.ExpectEquality(t, inner, "arcade/food fight.a78")

	outer, inner = archivefs.Split(filepath.Join("games", "food fight.a78"))
	test.ExpectEquality(t, outer, filepath.Join("games", "food fight.a78"))
	test.ExpectEquality(t, inner, "")

	// an archive at the end of the path is not split
	outer, inner = archivefs.Split(filepath.Join("games", "collection.zip"))
	test.ExpectEquality(t, outer, filepath.Join("games", "collection.zip"))
	test.ExpectEquality(t, inner, "")

	test.ExpectSuccess(t, archivefs.IsArchive("GAMES.ZIP"))
	test.ExpectFailure(t, archivefs.IsArchive("game.a78"))
	test.ExpectEquality(t, archivefs.TrimArchiveExt("games.7z"), "games")
}

func TestZipArchive(t *testing.T) {
	dir := t.TempDir()
	arc := filepath.Join(dir, "games.zip")
	createZip(t, arc, map[string]string{
		"b.a78":        "game b",
		"a.a78":        "game a",
		"extra/":       "",
		"extra/c.a78":  "game c contents",
	})

	entries, err := archivefs.List(arc)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, fmt.Sprintf("%s", entries), "[a.a78 b.a78 extra/c.a78]")
	test.ExpectEquality(t, entries[2].Size, int64(15))

	b, err := archivefs.ReadFile(filepath.Join(arc, "extra", "c.a78"))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(b), "game c contents")

	_, _, err = archivefs.Open(filepath.Join(arc, "missing.a78"))
	test.ExpectFailure(t, err)
}

func TestPlainFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "game.bin")
	test.DemandSuccess(t, os.WriteFile(fn, []byte{1, 2, 3}, 0o600))

	r, sz, err := archivefs.Open(fn)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, sz, 3)
	r.(io.Closer).Close()

	_, err = archivefs.ReadFile(filepath.Join(t.TempDir(), "nofile"))
	test.ExpectFailure(t, err)

	// directories cannot be opened
	_, _, err = archivefs.Open(t.TempDir())
	test.ExpectFailure(t, err)
}

func TestNotAnArchive(t *testing.T) {
	_, err := archivefs.List("game.a78")
	test.ExpectFailure(t, err)

	_, err = archivefs.List(filepath.Join(t.TempDir(), "missing.7z"))
	test.ExpectFailure(t, err)
}
