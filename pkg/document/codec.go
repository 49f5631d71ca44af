package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/reflow/pkg/errors"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFor returns the format implied by a file name's extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat,
			"unsupported document extension %q (use .json or .toml)", filepath.Ext(path))
	}
}

// Read decodes a document in the given format from r and validates it.
// Read does not close r.
func Read(r io.Reader, f Format) (*Document, error) {
	var d Document
	switch f {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&d); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode json")
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&d); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode toml")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Write encodes d in the given format to w.
func Write(d *Document, w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(d); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
	}
}

// ReadFile reads and validates the document at path, choosing the codec
// from the extension.
func ReadFile(path string) (*Document, error) {
	f, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	d, err := Read(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// WriteFile writes d to path, choosing the codec from the extension.
func WriteFile(d *Document, path string) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()
	return Write(d, file, f)
}

// Marshal returns the compact JSON encoding of d.
func Marshal(d *Document) ([]byte, error) {
	return json.Marshal(d)
}

// Unmarshal decodes and validates a JSON document.
func Unmarshal(data []byte) (*Document, error) {
	return Read(bytes.NewReader(data), FormatJSON)
}
