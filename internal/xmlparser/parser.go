// =============================================================================
// ERP Sales Reconciler - XML Export Parser Module
// =============================================================================
//
// This module parses the tree-structured export files produced by the ERP.
// Each export is an XML document whose root element contains a sequence of
// uniform row elements; each row's child elements are named leaf fields with
// plain-text content:
//
//   <NewDataSet>
//     <Table>
//       <TransCode>1</TransCode>
//       <VoucherName>Cash Sale Invoice</VoucherName>
//       ...
//     </Table>
//     ...
//   </NewDataSet>
//
// The parser carries no business logic: one row element in, one flat Record
// out, in document order. Field typing, candidate-column resolution, and
// every lenient-coercion policy live in the normalizer.
//
// Legacy exporter versions emit single-byte encodings (the Arabic deployments
// use Windows-1256); the decoder resolves those through x/text charmaps.
//
// =============================================================================

package xmlparser

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// =============================================================================
// RECORD AND ERROR TYPES
// =============================================================================

// Record is one exported row as a flat field-name to field-text mapping.
// A field absent from the row is absent from the map; an empty element is
// present with an empty string. Records are ephemeral: the normalizer
// consumes them immediately.
type Record map[string]string

// MalformedInputError reports an export document that could not be parsed as
// XML. It is fatal for the run; the extractor performs no recovery and the
// caller surfaces the underlying syntax error verbatim.
type MalformedInputError struct {
	// Source identifies the input, usually a file path.
	Source string

	// Err is the underlying XML syntax error.
	Err error
}

// Error implements the error interface.
func (e *MalformedInputError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("malformed export document: %v", e.Err)
	}
	return fmt.Sprintf("malformed export document %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying syntax error.
func (e *MalformedInputError) Unwrap() error { return e.Err }

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads an entire export document from r and returns its rows in
// document order.
//
// The reader is consumed from its current position; callers re-reading the
// same handle (cached re-invocations share input handles) must reset it
// before calling Parse again.
//
// Row detection follows the export shape: every child element of the root is
// one row, and every child element of a row is one leaf field whose character
// data becomes the field text. Nested structure below a field is flattened
// into its text, which matches how the ERP serializes the few rich fields it
// has. An empty document (root with no rows) yields an empty, non-nil slice.
func Parse(r io.Reader, enc string) ([]Record, error) {
	return parse(r, enc, "")
}

// ParseFile opens and parses a single export file.
func ParseFile(path string, enc string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export file: %w", err)
	}
	defer file.Close()

	return parse(bufio.NewReader(file), enc, path)
}

func parse(r io.Reader, enc, source string) ([]Record, error) {
	decoder := newDecoder(r, enc)

	records := []Record{}
	depth := 0

	var (
		current   Record
		fieldName string
		fieldText strings.Builder
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedInputError{Source: source, Err: err}
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch depth {
			case 2: // row element
				current = Record{}
			case 3: // leaf field
				fieldName = t.Name.Local
				fieldText.Reset()
			}
		case xml.CharData:
			if depth >= 3 {
				fieldText.Write(t)
			}
		case xml.EndElement:
			switch depth {
			case 3:
				if current != nil {
					current[fieldName] = strings.TrimSpace(fieldText.String())
				}
			case 2:
				if current != nil {
					records = append(records, current)
					current = nil
				}
			}
			depth--
		}
	}

	return records, nil
}

// newDecoder builds an XML decoder honoring both the configured encoding and
// any charset declared in the document's XML prolog.
func newDecoder(r io.Reader, enc string) *xml.Decoder {
	if cm := lookupCharmap(enc); cm != nil {
		r = transform.NewReader(r, cm.NewDecoder())
	}

	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if cm := lookupCharmap(charset); cm != nil {
			return transform.NewReader(input, cm.NewDecoder()), nil
		}
		return nil, fmt.Errorf("unsupported document charset %q", charset)
	}
	return decoder
}

// lookupCharmap maps an encoding name to its charmap decoder. UTF-8 and
// unknown names return nil, meaning the bytes pass through untouched.
func lookupCharmap(name string) encoding.Encoding {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "windows-1256", "cp1256":
		return charmap.Windows1256
	case "windows-1252", "cp1252":
		return charmap.Windows1252
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1
	default:
		return nil
	}
}

// =============================================================================
// STREAMING EXTRACTOR FOR LARGE EXPORTS
// =============================================================================

// StreamingExtractor yields one Record at a time without holding the whole
// document in memory. The batch pipeline reads exports whole, but month-end
// ledger exports run to hundreds of thousands of rows and reporting-only
// consumers iterate them through this interface.
//
// USAGE:
//   ex, err := NewStreamingExtractor(path, "UTF-8")
//   if err != nil { ... }
//   defer ex.Close()
//   for ex.Next() {
//       record := ex.Record()
//       ...
//   }
//   if err := ex.Err(); err != nil { ... }
type StreamingExtractor struct {
	file    *os.File
	decoder *xml.Decoder
	source  string

	depth   int
	current Record
	rowNum  int
	err     error
}

// NewStreamingExtractor opens an export file for streaming extraction.
func NewStreamingExtractor(path string, enc string) (*StreamingExtractor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export file: %w", err)
	}

	return &StreamingExtractor{
		file:    file,
		decoder: newDecoder(bufio.NewReader(file), enc),
		source:  path,
	}, nil
}

// Next advances to the next row. It returns false at end of input or on the
// first syntax error; check Err afterwards.
func (e *StreamingExtractor) Next() bool {
	if e.err != nil {
		return false
	}

	var (
		record    Record
		fieldName string
		fieldText strings.Builder
	)

	for {
		token, err := e.decoder.Token()
		if err == io.EOF {
			return false
		}
		if err != nil {
			e.err = &MalformedInputError{Source: e.source, Err: err}
			return false
		}

		// Same depth convention as Parse: 1 = root, 2 = row, 3 = leaf field.
		switch t := token.(type) {
		case xml.StartElement:
			e.depth++
			switch e.depth {
			case 2:
				record = Record{}
			case 3:
				fieldName = t.Name.Local
				fieldText.Reset()
			}
		case xml.CharData:
			if e.depth >= 3 {
				fieldText.Write(t)
			}
		case xml.EndElement:
			switch e.depth {
			case 3:
				if record != nil {
					record[fieldName] = strings.TrimSpace(fieldText.String())
				}
			case 2:
				e.depth--
				if record != nil {
					e.current = record
					e.rowNum++
					return true
				}
				continue
			}
			e.depth--
		}
	}
}

// Record returns the current row.
func (e *StreamingExtractor) Record() Record { return e.current }

// RowNumber returns the number of rows yielded so far.
func (e *StreamingExtractor) RowNumber() int { return e.rowNum }

// Err returns the first error encountered, if any.
func (e *StreamingExtractor) Err() error { return e.err }

// Close closes the underlying file.
func (e *StreamingExtractor) Close() error { return e.file.Close() }

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// Columns returns the set of field names present anywhere in the record set.
// The normalizer uses column presence, not per-row presence, to decide which
// candidate a logical field resolves to.
func Columns(records []Record) map[string]bool {
	columns := make(map[string]bool)
	for _, record := range records {
		for name := range record {
			columns[name] = true
		}
	}
	return columns
}
