package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format is a report encoding. A report file is a stream of reports in one
// format.
type Format string

const (
	// FormatYAML is a stream of YAML documents.
	FormatYAML Format = "yaml"
	// FormatJSON is a stream of JSON values.
	FormatJSON Format = "json"
	// FormatMsgpack is a stream of MessagePack values.
	FormatMsgpack Format = "msgpack"
)

// Formats lists the supported formats.
var Formats = []Format{FormatYAML, FormatJSON, FormatMsgpack}

// ParseFormat parses a format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	}

	return "", fmt.Errorf("unsupported report format: %q", name)
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer report format of %s: no extension", path)
	}

	return ParseFormat(ext)
}

type encoder interface {
	Encode(v any) error
}

type decoder interface {
	Decode(v any) error
}

func newEncoder(w io.Writer, format Format) (encoder, func() error, error) {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		return enc, enc.Close, nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc, func() error { return nil }, nil
	case FormatMsgpack:
		return msgpack.NewEncoder(w), func() error { return nil }, nil
	}

	return nil, nil, fmt.Errorf("unsupported report format: %q", format)
}

func newDecoder(r io.Reader, format Format) (decoder, error) {
	switch format {
	case FormatYAML:
		return yaml.NewDecoder(r), nil
	case FormatJSON:
		return json.NewDecoder(r), nil
	case FormatMsgpack:
		return msgpack.NewDecoder(r), nil
	}

	return nil, fmt.Errorf("unsupported report format: %q", format)
}

// Encode writes reports to w as one stream.
func Encode(w io.Writer, format Format, reports ...Report) error {
	enc, closeFn, err := newEncoder(w, format)
	if err != nil {
		return err
	}

	if len(reports) == 0 {
		return nil
	}

	for i, r := range reports {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode report %d: %w", i, err)
		}
	}

	if err := closeFn(); err != nil {
		return fmt.Errorf("failed to flush reports: %w", err)
	}

	return nil
}

// Decode reads every report of the stream in r.
func Decode(r io.Reader, format Format) ([]Report, error) {
	var reports []Report

	err := decodeEach(r, format, func(rep Report) error {
		reports = append(reports, rep)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return reports, nil
}

func decodeEach(r io.Reader, format Format, fn func(Report) error) error {
	dec, err := newDecoder(r, format)
	if err != nil {
		return err
	}

	for i := 0; ; i++ {
		var rep Report
		if err := dec.Decode(&rep); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("failed to decode report %d: %w", i, err)
		}

		if err := fn(rep); err != nil {
			return err
		}
	}
}

// Marshal encodes a single report.
func Marshal(format Format, r Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, format, r); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
