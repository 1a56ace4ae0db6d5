// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package qvs20

import (
	"golang.org/x/exp/slices"

	"github.com/bestia-dev/qvs20/internal/fingerprint"
)

// maxDepth bounds sub-table nesting: the row-delimiter alphabet is a single
// ASCII digit '1'..'9', so depth cannot exceed 9.
const maxDepth = 9

// TableSchema is the five-row metadata block describing a table's columns.
// It is built once during parsing and is immutable thereafter.
type TableSchema struct {
	TableName        string
	TableDescription string

	DataTypes             []DataType
	SubSchemas            []*TableSchema // SubSchemas[i] != nil iff DataTypes[i] == SubTable
	AdditionalProperties  []string
	ColumnNames           []string

	RowDelimiter byte // 0x0A at top level, '1'..'9' for a sub-schema
}

// ColumnCount returns C, the schema's column count.
func (s *TableSchema) ColumnCount() int {
	return len(s.DataTypes)
}

// ColumnIndex returns the index of the column named name, or -1 if s has no
// such column.
func (s *TableSchema) ColumnIndex(name string) int {
	return columnIndex(s.ColumnNames, name)
}

// Fingerprint returns a structural hash of the schema's shape (data types,
// column names, nesting), for cheap equality checks and tests that assert
// two independently parsed schemas are structurally identical.
func (s *TableSchema) Fingerprint() [2]uint64 {
	var b fingerprint.Builder
	s.writeFingerprint(&b)
	return b.Sum()
}

func (s *TableSchema) writeFingerprint(b *fingerprint.Builder) {
	b.WriteString(s.TableName)
	b.WriteInt(len(s.DataTypes))
	for i, dt := range s.DataTypes {
		b.WriteInt(int(dt))
		b.WriteString(s.ColumnNames[i])
		if sub := s.SubSchemas[i]; sub != nil {
			sub.writeFingerprint(b)
		}
	}
}

// readSchema reads the five fixed logical rows of a schema at the given
// nesting depth (0 = top level) using rowDelim as the row terminator. It
// returns the schema together with the file-type tag read from the header
// row, so callers can validate it against the entry point they used (S/R/T
// at depth 0, U when nested).
func readSchema(l *Lexer, rowDelim byte, depth int) (*TableSchema, FileType, error) {
	if depth > maxDepth {
		return nil, 0, newShapeError(MaxDepthExceeded, -1, -1,
			"sub-table nesting exceeds the maximum depth of %d", maxDepth)
	}

	header, err := readFieldRow(l, rowDelim, 3, SchemaShape)
	if err != nil {
		return nil, 0, err
	}
	tagBytes := header[0]
	if len(tagBytes) != 1 || !FileType(tagBytes[0]).valid() {
		return nil, 0, newShapeError(FileTypeMismatch, -1, -1, "invalid file-type tag %q", tagBytes)
	}
	tag := FileType(tagBytes[0])

	name, err := Unescape(header[1])
	if err != nil {
		return nil, 0, err
	}
	desc, err := Unescape(header[2])
	if err != nil {
		return nil, 0, err
	}

	dtFields, err := readFieldRowVar(l, rowDelim, SchemaShape)
	if err != nil {
		return nil, 0, err
	}
	c := len(dtFields)
	dataTypes := make([]DataType, c)
	for i, f := range dtFields {
		dt, ok := ParseDataType(string(f))
		if !ok {
			return nil, 0, newShapeError(TypeConversion, -1, i, "unknown data type %q", f)
		}
		dataTypes[i] = dt
	}

	subSchemas, err := readSubSchemaRow(l, rowDelim, depth, dataTypes)
	if err != nil {
		return nil, 0, err
	}

	propFields, err := readFieldRow(l, rowDelim, c, SchemaShape)
	if err != nil {
		return nil, 0, err
	}
	additionalProperties := make([]string, c)
	for i, f := range propFields {
		s, err := Unescape(f)
		if err != nil {
			return nil, 0, err
		}
		additionalProperties[i] = s
	}

	nameFields, err := readFieldRow(l, rowDelim, c, SchemaShape)
	if err != nil {
		return nil, 0, err
	}
	columnNames := make([]string, c)
	for i, f := range nameFields {
		s, err := Unescape(f)
		if err != nil {
			return nil, 0, err
		}
		columnNames[i] = s
	}
	if dup, ok := firstDuplicate(columnNames); ok {
		return nil, 0, newShapeError(DuplicateColumn, -1, -1, "duplicate column name %q", dup)
	}

	return &TableSchema{
		TableName:            name,
		TableDescription:      desc,
		DataTypes:             dataTypes,
		SubSchemas:            subSchemas,
		AdditionalProperties:  additionalProperties,
		ColumnNames:           columnNames,
		RowDelimiter:          rowDelim,
	}, tag, nil
}

func firstDuplicate(names []string) (string, bool) {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return n, true
		}
		seen[n] = struct{}{}
	}
	return "", false
}

// readSubSchemaRow reads the sub-schema row: for each column, either an
// empty field (no sub-schema) or a sub-table cell whose body is a nested
// 5-row schema with file-type U and row-delimiter equal to the enclosing
// StartSubTable digit.
func readSubSchemaRow(l *Lexer, rowDelim byte, depth int, dataTypes []DataType) ([]*TableSchema, error) {
	c := len(dataTypes)
	result := make([]*TableSchema, c)
	for i := 0; i < c; i++ {
		tok, ok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, newShapeError(SchemaShape, -1, i, "sub-schema row ended early, expected %d columns", c)
		}
		switch tok.Kind {
		case TokenField:
			if len(tok.Bytes()) != 0 {
				return nil, newShapeError(SchemaShape, -1, i, "sub-schema cell must be empty or a nested sub-table")
			}
			if dataTypes[i] == SubTable {
				return nil, newShapeError(SubSchemaMissing, -1, i, "column %d declares SubTable but has no sub-schema", i)
			}
		case TokenStartSubTable:
			if dataTypes[i] != SubTable {
				return nil, newShapeError(SchemaShape, -1, i, "column %d has a sub-schema but is not declared SubTable", i)
			}
			d := tok.Delim
			sub, tag, err := readSchema(l, d, depth+1)
			if err != nil {
				return nil, err
			}
			if tag != FileTypeSubSchema {
				return nil, newShapeError(FileTypeMismatch, -1, i, "sub-schema header must use file-type U, found %q", tag)
			}
			end, ok, err := l.Next()
			if err != nil {
				return nil, err
			}
			if !ok || end.Kind != TokenEndSubTable {
				return nil, newShapeError(SubDelimiterMismatch, -1, i, "sub-schema cell is missing its closing delimiter")
			}
			if end.Delim != d {
				return nil, newShapeError(SubDelimiterMismatch, -1, i, "sub-schema closing delimiter %q does not match opening %q", end.Delim, d)
			}
			result[i] = sub
		default:
			return nil, newShapeError(SchemaShape, -1, i, "unexpected token %s in sub-schema row", tok.Kind)
		}
	}
	if _, err := expectRowDelimiterKind(l, rowDelim, SchemaShape); err != nil {
		return nil, err
	}
	return result, nil
}

// readFieldRow reads exactly n plain Field tokens followed by a matching
// RowDelimiter, unescaping nothing (callers decide). Returns the raw bytes.
func readFieldRow(l *Lexer, rowDelim byte, n int, shapeKind ErrorKind) ([][]byte, error) {
	fields := make([][]byte, 0, n)
	for len(fields) < n {
		tok, ok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if !ok || tok.Kind != TokenField {
			return nil, newShapeError(shapeKind, -1, len(fields), "expected %d fields, row ended early", n)
		}
		fields = append(fields, tok.Bytes())
	}
	if _, err := expectRowDelimiterKind(l, rowDelim, shapeKind); err != nil {
		return nil, err
	}
	return fields, nil
}

// readFieldRowVar reads plain Field tokens until the row delimiter,
// returning however many were found (used for the data-type row, whose
// length determines the column count C).
func readFieldRowVar(l *Lexer, rowDelim byte, shapeKind ErrorKind) ([][]byte, error) {
	var fields [][]byte
	for {
		tok, ok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, newShapeError(shapeKind, -1, len(fields), "row ended without a delimiter")
		}
		if tok.Kind == TokenRowDelimiter {
			if tok.Delim != rowDelim {
				return nil, newShapeError(WrongRowDelimiter, -1, len(fields), "wrong row delimiter %q, expected %q", tok.Delim, rowDelim)
			}
			if len(fields) == 0 {
				return nil, newShapeError(shapeKind, -1, 0, "row has no fields")
			}
			return fields, nil
		}
		if tok.Kind != TokenField {
			return nil, newShapeError(shapeKind, -1, len(fields), "unexpected token %s", tok.Kind)
		}
		fields = append(fields, tok.Bytes())
	}
}

func expectRowDelimiter(l *Lexer, rowDelim byte) (byte, error) {
	return expectRowDelimiterKind(l, rowDelim, RowShape)
}

func expectRowDelimiterKind(l *Lexer, rowDelim byte, shapeKind ErrorKind) (byte, error) {
	tok, ok, err := l.Next()
	if err != nil {
		return 0, err
	}
	if !ok || tok.Kind != TokenRowDelimiter {
		return 0, newShapeError(shapeKind, -1, -1, "expected row delimiter, row has too many fields")
	}
	if tok.Delim != rowDelim {
		return 0, newShapeError(WrongRowDelimiter, -1, -1, "wrong row delimiter %q, expected %q", tok.Delim, rowDelim)
	}
	return tok.Delim, nil
}

// columnIndex returns the index of name within names, or -1.
func columnIndex(names []string, name string) int {
	return slices.Index(names, name)
}
