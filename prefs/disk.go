// This file is part of Scenepipe.
//
// Scenepipe is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Scenepipe is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Scenepipe.  If not, see <https://www.gnu.org/licenses/>.

package prefs

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// DefaultPrefsFile is the default filename of the global preferences file.
const DefaultPrefsFile = "preferences"

// WarningBoilerPlate is inserted at the beginning of a preferences file.
const WarningBoilerPlate = "*** do not edit this file by hand ***"

// separator between key and value in the preferences file.
const separator = " :: "

// NoPrefsFile is returned by Load() when the preferences file does not
// exist. In most situations this isn't an error worth reporting.
var NoPrefsFile = errors.New("prefs: no prefs file")

// Disk represents preference values as stored on disk.
type Disk struct {
	crit    sync.Mutex
	path    string
	entries map[string]Preference
}

// NewDisk is the preferred method of initialisation for the Disk type.
func NewDisk(path string) (*Disk, error) {
	if path == "" {
		return nil, fmt.Errorf("prefs: no path for preferences file")
	}
	return &Disk{
		path:    path,
		entries: make(map[string]Preference),
	}, nil
}

// Add preference value to list of values to store/load from disk.
func (dsk *Disk) Add(key string, p Preference) error {
	dsk.crit.Lock()
	defer dsk.crit.Unlock()

	if key == "" || strings.ContainsAny(key, " \t\n:;") {
		return fmt.Errorf("prefs: illegal key (%q)", key)
	}
	if _, ok := dsk.entries[key]; ok {
		return fmt.Errorf("prefs: key already added (%s)", key)
	}
	dsk.entries[key] = p

	return nil
}

func (dsk *Disk) String() string {
	dsk.crit.Lock()
	defer dsk.crit.Unlock()

	s := strings.Builder{}
	for _, k := range dsk.sortedKeys() {
		s.WriteString(fmt.Sprintf("%s%s%s\n", k, separator, dsk.entries[k]))
	}
	return s.String()
}

func (dsk *Disk) sortedKeys() []string {
	keys := make([]string, 0, len(dsk.entries))
	for k := range dsk.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// read the preferences file into a map of key/value strings. a missing file
// is reported with the NoPrefsFile error
func (dsk *Disk) read() (map[string]string, error) {
	f, err := os.Open(dsk.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, NoPrefsFile
		}
		return nil, fmt.Errorf("prefs: %w", err)
	}
	defer f.Close()

	data := make(map[string]string)

	scanner := bufio.NewScanner(f)

	// check validity of file by checking the first line
	if !scanner.Scan() {
		return data, nil
	}
	if scanner.Text() != WarningBoilerPlate {
		return nil, fmt.Errorf("prefs: not a valid prefs file (%s)", dsk.path)
	}

	for scanner.Scan() {
		k, v, ok := strings.Cut(scanner.Text(), separator)
		if !ok {
			continue
		}
		data[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("prefs: %w", err)
	}

	return data, nil
}

// Save current preference values to disk. Entries in the file that have not
// been added to this Disk instance are preserved.
func (dsk *Disk) Save() error {
	dsk.crit.Lock()
	defer dsk.crit.Unlock()

	data, err := dsk.read()
	if err != nil && !errors.Is(err, NoPrefsFile) {
		return err
	}

	for k, p := range dsk.entries {
		data[k] = p.String()
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if err := os.MkdirAll(filepath.Dir(dsk.path), 0o700); err != nil {
		return fmt.Errorf("prefs: %w", err)
	}

	f, err := os.Create(dsk.path)
	if err != nil {
		return fmt.Errorf("prefs: %w", err)
	}

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%s\n", WarningBoilerPlate)
	for _, k := range keys {
		fmt.Fprintf(w, "%s%s%s\n", k, separator, data[k])
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("prefs: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("prefs: %w", err)
	}

	return nil
}

// Load preference values from disk. Values on the command line stack take
// priority over values in the file.
//
// If saveIfMissing is true and the preferences file does not exist then the
// current values are saved to create it. The NoPrefsFile error is still
// returned in that case.
func (dsk *Disk) Load(saveIfMissing bool) error {
	data, readErr := dsk.read()
	if readErr != nil && !errors.Is(readErr, NoPrefsFile) {
		return readErr
	}

	err := func() error {
		dsk.crit.Lock()
		defer dsk.crit.Unlock()

		for _, k := range dsk.sortedKeys() {
			p := dsk.entries[k]
			if v, ok := data[k]; ok {
				if err := p.Set(v); err != nil {
					return fmt.Errorf("prefs: %s: %w", k, err)
				}
			}
			if ok, v := GetCommandLinePref(k); ok {
				if err := p.Set(v); err != nil {
					return fmt.Errorf("prefs: %s: %w", k, err)
				}
			}
		}
		return nil
	}()
	if err != nil {
		return err
	}

	if readErr != nil && saveIfMissing {
		if err := dsk.Save(); err != nil {
			return err
		}
	}

	return readErr
}

// Reset all preference values to their zero value. The file on disk is not
// changed until Save() is called.
func (dsk *Disk) Reset() error {
	dsk.crit.Lock()
	defer dsk.crit.Unlock()

	for _, k := range dsk.sortedKeys() {
		if err := dsk.entries[k].Reset(); err != nil {
			return fmt.Errorf("prefs: %s: %w", k, err)
		}
	}
	return nil
}
