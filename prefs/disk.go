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

package prefs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/jetsetilly/sdcart/curated"
)

// Sentinal error patterns.
const (
	NoPrefsFile = "prefs: no preferences file (%s)"
	ParseError  = "prefs: parse error in line %d (%s)"
)

// WarningBoilerPlate is placed at the top of every preferences file.
const WarningBoilerPlate = "*** do not edit this file by hand ***"

// the separator between key and value in the preferences file
const separator = " :: "

// Disk represents preference values as stored on disk.
type Disk struct {
	path    string
	entries map[string]pref
}

func (dsk Disk) String() string {
	s := strings.Builder{}
	for _, k := range dsk.keys() {
		s.WriteString(fmt.Sprintf("%s%s%s\n", k, separator, dsk.entries[k]))
	}
	return s.String()
}

// NewDisk is the preferred method of initialisation for the Disk type. The
// file is not created until Save() is called.
func NewDisk(path string) (*Disk, error) {
	return &Disk{
		path:    path,
		entries: make(map[string]pref),
	}, nil
}

// Add preference value to list of values to store/load from disk. The key
// is the name of the value in the preferences file. Keys are usually of the
// form "section.name".
func (dsk *Disk) Add(key string, p pref) error {
	if strings.Contains(key, separator) || strings.TrimSpace(key) != key || key == "" {
		return fmt.Errorf("prefs: illegal key %q", key)
	}
	if _, ok := dsk.entries[key]; ok {
		return fmt.Errorf("prefs: key %q already added", key)
	}
	dsk.entries[key] = p
	return nil
}

func (dsk Disk) keys() []string {
	keys := make([]string, 0, len(dsk.entries))
	for k := range dsk.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// value returns the string to store in the file for the preference.
func value(p pref) string {
	if s, ok := p.(*String); ok {
		return strconv.Quote(s.String())
	}
	return p.String()
}

// Save current preference values to disk. Entries in the existing file that
// do not belong to this Disk are preserved, unless the key is defunct.
func (dsk *Disk) Save() error {
	if dsk.path == "" {
		return nil
	}

	data := make(map[string]string)

	err := load(dsk.path, func(key string, val string) error {
		if !isDefunct(key) {
			data[key] = val
		}
		return nil
	})
	if err != nil && !curated.Is(err, NoPrefsFile) {
		return err
	}

	for k, p := range dsk.entries {
		data[k] = value(p)
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f, err := os.Create(dsk.path)
	if err != nil {
		return fmt.Errorf("prefs: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, WarningBoilerPlate)
	for _, k := range keys {
		fmt.Fprintf(w, "%s%s%s\n", k, separator, data[k])
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("prefs: %w", err)
	}

	return nil
}

// Load preference values from disk. Values for keys that are not in the file
// are left unchanged. Values on the command line preference stack override
// the values in the file.
//
// A missing file is reported with the NoPrefsFile pattern after the command
// line values have been applied. Callers will normally ignore that error.
func (dsk *Disk) Load() error {
	var fileErr error

	if dsk.path == "" {
		fileErr = curated.Errorf(NoPrefsFile, "no path")
	} else {
		fileErr = load(dsk.path, func(key string, val string) error {
			if p, ok := dsk.entries[key]; ok {
				if err := p.Set(val); err != nil {
					return fmt.Errorf("%s: %w", key, err)
				}
			}
			return nil
		})
		if fileErr != nil && !curated.Is(fileErr, NoPrefsFile) {
			return fileErr
		}
	}

	for _, k := range dsk.keys() {
		if ok, v := GetCommandLinePref(k); ok {
			if err := dsk.entries[k].Set(v); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
		}
	}

	return fileErr
}

// Reset all preferences in the Disk to their default values. The file on
// disk is not changed.
func (dsk *Disk) Reset() error {
	for _, k := range dsk.keys() {
		if err := dsk.entries[k].Reset(); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	return nil
}

// load the preferences file and call the function for every key/value pair
// in it.
func load(path string, f func(key string, val string) error) error {
	fh, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return curated.Errorf(NoPrefsFile, path)
		}
		return fmt.Errorf("prefs: %w", err)
	}
	defer fh.Close()

	return parse(fh, f)
}

func parse(r io.Reader, f func(key string, val string) error) error {
	scanner := bufio.NewScanner(r)

	// the boilerplate line is optional
	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Text()
		if n == 1 && line == WarningBoilerPlate {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		key, val, ok := strings.Cut(line, separator)
		if !ok {
			return curated.Errorf(ParseError, n, line)
		}

		if err := f(strings.TrimSpace(key), strings.TrimSpace(val)); err != nil {
			return err
		}
	}

	return scanner.Err()
}
