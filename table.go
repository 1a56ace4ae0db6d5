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

// Table composes a schema with its rows, for the "full" file variant.
type Table struct {
	Schema *TableSchema
	Rows   []Row
}

// ParseSchema parses a schema-only ("S") file.
func ParseSchema(src []byte, fileName string) (*TableSchema, error) {
	l := NewLexer(src, fileName)
	schema, tag, err := readSchema(l, '\n', 0)
	if err != nil {
		return nil, err
	}
	if tag != FileTypeSchema {
		return nil, newShapeError(FileTypeMismatch, -1, -1, "expected file-type S, found %q", tag)
	}
	if _, ok, err := l.Next(); err != nil {
		return nil, err
	} else if ok {
		return nil, newShapeError(SchemaShape, -1, -1, "trailing data after schema-only file")
	}
	return schema, nil
}

// ParseRows parses a rows-only ("R") file driven by an externally supplied
// schema. The file's table_name must match schema.TableName
// (FileTypeMismatch otherwise).
func ParseRows(src []byte, fileName string, schema *TableSchema) ([]Row, error) {
	l := NewLexer(src, fileName)

	header, err := readFieldRow(l, schema.RowDelimiter, 2, SchemaShape)
	if err != nil {
		return nil, err
	}
	if len(header[0]) != 1 || FileType(header[0][0]) != FileTypeRows {
		return nil, newShapeError(FileTypeMismatch, -1, -1, "expected file-type R, found %q", header[0])
	}
	name, err := Unescape(header[1])
	if err != nil {
		return nil, err
	}
	if name != schema.TableName {
		return nil, newShapeError(FileTypeMismatch, -1, -1,
			"rows file names table %q, external schema names %q", name, schema.TableName)
	}

	return readRows(l, schema, 0)
}

// ParseTable parses a full ("T") file: a schema followed by its rows,
// sharing the schema's row delimiter.
func ParseTable(src []byte, fileName string) (*Table, error) {
	l := NewLexer(src, fileName)
	schema, tag, err := readSchema(l, '\n', 0)
	if err != nil {
		return nil, err
	}
	if tag != FileTypeFull {
		return nil, newShapeError(FileTypeMismatch, -1, -1, "expected file-type T, found %q", tag)
	}
	rows, err := readRows(l, schema, 0)
	if err != nil {
		return nil, err
	}
	return &Table{Schema: schema, Rows: rows}, nil
}

// Parse dispatches on the header row's file-type tag: S parses a schema
// only, T parses schema+rows, and R requires an externally supplied schema
// (ParseRows). U is never valid standalone.
//
// externalSchema is used only when the file turns out to be rows-only; it
// may be nil otherwise.
func Parse(src []byte, fileName string, externalSchema *TableSchema) (*Table, error) {
	tag, err := peekFileType(src)
	if err != nil {
		return nil, err
	}
	switch tag {
	case FileTypeSchema:
		schema, err := ParseSchema(src, fileName)
		if err != nil {
			return nil, err
		}
		return &Table{Schema: schema}, nil
	case FileTypeFull:
		return ParseTable(src, fileName)
	case FileTypeRows:
		if externalSchema == nil {
			return nil, newShapeError(FileTypeMismatch, -1, -1, "rows-only file requires an external schema")
		}
		rows, err := ParseRows(src, fileName, externalSchema)
		if err != nil {
			return nil, err
		}
		return &Table{Schema: externalSchema, Rows: rows}, nil
	default:
		return nil, newShapeError(FileTypeMismatch, -1, -1, "file-type %q is never valid standalone", tag)
	}
}

// peekFileType reads just the header row's first field without disturbing
// the caller's ability to parse the file from the start afterward.
func peekFileType(src []byte) (FileType, error) {
	l := NewLexer(src, "")
	tok, ok, err := l.Next()
	if err != nil {
		return 0, err
	}
	if !ok || tok.Kind != TokenField || len(tok.Bytes()) != 1 {
		return 0, newShapeError(SchemaShape, -1, -1, "expected a single-byte file-type tag as the first field")
	}
	tag := FileType(tok.Bytes()[0])
	if !tag.valid() {
		return 0, newShapeError(FileTypeMismatch, -1, -1, "invalid file-type tag %q", tok.Bytes())
	}
	return tag, nil
}
