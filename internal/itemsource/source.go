// Package itemsource loads practice items from JSON or YAML files.
package itemsource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/vocabdrill/internal/quiz"
)

// Format is an item file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension. Unknown
// extensions are treated as YAML, which also accepts JSON.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// FileError reports an unreadable or invalid item file.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("item file %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// itemFile is the on-disk layout. File-level level and lesson apply to
// items that leave them unset.
type itemFile struct {
	Level  int        `json:"level"`
	Lesson int        `json:"lesson"`
	Items  []fileItem `json:"items"`
}

type fileItem struct {
	ID      itemID   `json:"id"`
	Prompt  string   `json:"prompt"`
	Answers []string `json:"answers"`
	Kind    string   `json:"kind"`
	Level   int      `json:"level"`
	Lesson  int      `json:"lesson"`
	Hint    string   `json:"hint"`
}

// itemID accepts both string and numeric IDs.
type itemID string

func (id *itemID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = itemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("item id must be a string or integer: %w", err)
	}
	*id = itemID(n.String())
	return nil
}

// LoadFile reads, validates and converts the items in path. Items without
// an ID get "<file base name>#<position>".
func LoadFile(path string) ([]quiz.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	defer f.Close()

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	items, err := Load(f, FormatFromPath(path), base)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	return items, nil
}

// Load parses an item document from r. idPrefix names generated IDs.
func Load(r io.Reader, format Format, idPrefix string) ([]quiz.Item, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	if format == FormatYAML {
		raw, err = yamlToJSON(raw)
		if err != nil {
			return nil, err
		}
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate(doc); err != nil {
		return nil, err
	}

	var file itemFile
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}

	items := make([]quiz.Item, 0, len(file.Items))
	seen := make(map[string]int, len(file.Items))
	for i, fi := range file.Items {
		it := quiz.Item{
			ID:      string(fi.ID),
			Prompt:  fi.Prompt,
			Answers: fi.Answers,
			Kind:    quiz.Kind(fi.Kind),
			Level:   fi.Level,
			Lesson:  fi.Lesson,
			Hint:    fi.Hint,
		}
		if it.ID == "" {
			it.ID = idPrefix + "#" + strconv.Itoa(i+1)
		}
		if it.Kind == "" {
			it.Kind = quiz.KindSentence
		}
		if it.Level == 0 {
			it.Level = file.Level
		}
		if it.Lesson == 0 {
			it.Lesson = file.Lesson
		}
		if prev, dup := seen[it.ID]; dup {
			return nil, fmt.Errorf("duplicate item id %q at positions %d and %d", it.ID, prev+1, i+1)
		}
		seen[it.ID] = i
		items = append(items, it)
	}
	return items, nil
}

// yamlToJSON re-encodes a YAML document as JSON so both formats share one
// validation path.
func yamlToJSON(raw []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert YAML: %w", err)
	}
	return out, nil
}

// Filter keeps items in the given level and lesson. Zero matches any.
func Filter(items []quiz.Item, level, lesson int) []quiz.Item {
	var out []quiz.Item
	for _, it := range items {
		if level != 0 && it.Level != level {
			continue
		}
		if lesson != 0 && it.Lesson != lesson {
			continue
		}
		out = append(out, it)
	}
	return out
}
