package hub

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const jsonNodeTablePath = "nodes.json"

// NodeEntry is the persistent id assignment of one node name.
type NodeEntry struct {
	Name string
	ID   uint16
}

// JSONNodeTable is used to persist node id assignments on disk in the form
// of a JSON file. This allows human operators to manipulate the file.
type JSONNodeTable struct {
	l    sync.Mutex
	path string
}

// NewJSONNodeTable creates a JSONNodeTable with reference to a base directory
// where the JSON file resides.
func NewJSONNodeTable(base string) *JSONNodeTable {
	return &JSONNodeTable{
		path: filepath.Join(base, jsonNodeTablePath),
	}
}

// Path ...
func (j *JSONNodeTable) Path() string {
	return j.path
}

// Entries parses the underlying JSON file. A missing or empty file yields no
// entries and no error.
func (j *JSONNodeTable) Entries() ([]NodeEntry, error) {
	j.l.Lock()
	defer j.l.Unlock()

	buf, err := ioutil.ReadFile(j.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if len(buf) == 0 {
		return nil, nil
	}

	var entries []NodeEntry
	dec := json.NewDecoder(bytes.NewReader(buf))
	if err := dec.Decode(&entries); err != nil {
		return nil, err
	}

	return entries, nil
}

// Write persists the entries, sorted by id.
func (j *JSONNodeTable) Write(entries []NodeEntry) error {
	j.l.Lock()
	defer j.l.Unlock()

	sorted := append([]NodeEntry(nil), entries...)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].ID < sorted[b].ID })

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "\t")
	if err := enc.Encode(sorted); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(j.path), 0755); err != nil {
		return err
	}

	return ioutil.WriteFile(j.path, buf.Bytes(), 0644)
}
