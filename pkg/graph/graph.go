package graph

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/strata/pkg/errors"
)

// =============================================================================
// Diagram Serialization API
// =============================================================================

// MarshalDiagram converts a diagram to indented JSON bytes.
func MarshalDiagram(d *Diagram) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDiagram(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDiagramFile writes a diagram to a JSON file.
// The file is created with 0644 permissions.
func WriteDiagramFile(d *Diagram, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDiagram(d, f)
}

// WriteDiagram writes a diagram as JSON to an io.Writer.
func WriteDiagram(d *Diagram, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadDiagramFile reads and decodes a JSON diagram file.
func ReadDiagramFile(path string) (*Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDiagram(f)
}

// ReadDiagram decodes a JSON diagram from an io.Reader. Unknown fields are
// rejected so typos in hand-written diagrams do not pass silently.
func ReadDiagram(r io.Reader) (*Diagram, error) {
	var d Diagram
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode diagram")
	}
	dir, err := ParseDirection(string(d.Direction))
	if err != nil {
		return nil, err
	}
	d.Direction = dir
	return &d, nil
}

// UnmarshalDiagram decodes a diagram from JSON bytes.
func UnmarshalDiagram(data []byte) (*Diagram, error) {
	return ReadDiagram(bytes.NewReader(data))
}

// Hash returns a hex sha256 digest of the diagram's canonical JSON encoding.
// Equal diagrams always hash equally.
func (d *Diagram) Hash() string {
	data, err := json.Marshal(d)
	if err != nil {
		// Diagram holds only plain values; Marshal cannot fail.
		panic(err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
