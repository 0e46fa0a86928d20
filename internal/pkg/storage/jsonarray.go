package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

const (
	indent  = "    "
	closing = "\n]"
)

// ArrayFile is a JSON array on disk that grows one element at a time. After
// every Append the file holds a complete, pretty printed array; only the
// closing bracket is rewritten, so appends cost the size of the element.
// The file is created on the first Append.
type ArrayFile struct {
	path  string
	file  *os.File
	count int
}

func NewArrayFile(path string) *ArrayFile {
	return &ArrayFile{path: path}
}

func (a *ArrayFile) Path() string {
	return a.path
}

func (a *ArrayFile) Len() int {
	return a.count
}

// Append encodes v as the next array element and syncs the file.
func (a *ArrayFile) Append(v any) error {
	body, err := encodeElement(v)
	if err != nil {
		return fmt.Errorf("encode %s element: %w", a.path, err)
	}

	var buf bytes.Buffer
	if a.file == nil {
		file, err := os.OpenFile(a.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("create %s: %w", a.path, err)
		}
		a.file = file

		buf.WriteString("[\n")
	} else {
		if _, err := a.file.Seek(-int64(len(closing)), io.SeekEnd); err != nil {
			return fmt.Errorf("seek %s: %w", a.path, err)
		}

		buf.WriteString(",\n")
	}

	buf.WriteString(indent)
	buf.Write(body)
	buf.WriteString(closing)

	if _, err := a.file.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", a.path, err)
	}

	if err := a.file.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", a.path, err)
	}

	a.count++

	return nil
}

func (a *ArrayFile) Close() error {
	if a.file == nil {
		return nil
	}

	err := a.file.Close()
	a.file = nil

	return err
}

// encodeElement renders v the way it sits inside the top level array: nested
// lines are indented one level deeper and nothing is HTML escaped.
func encodeElement(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(indent, indent)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
