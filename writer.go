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
	"bytes"
	"io"
	"strconv"

	"github.com/bestia-dev/qvs20/internal/qdate"
)

// writer accumulates bytes exclusively; its buffer is moved out once, at
// Bytes/WriteTo, and must not be reused afterward.
type writer struct {
	buf bytes.Buffer
}

func (w *writer) field(s string) {
	w.buf.WriteByte('[')
	w.buf.WriteString(Escape(s))
	w.buf.WriteByte(']')
}

func (w *writer) delim(d byte) {
	w.buf.WriteByte(d)
}

// WriteSchemaFile serialises a schema-only ("S") file.
func WriteSchemaFile(dst io.Writer, s *TableSchema) error {
	var w writer
	w.writeSchemaRows(s, FileTypeSchema)
	_, err := dst.Write(w.buf.Bytes())
	return err
}

// WriteRowsFile serialises a rows-only ("R") file: a two-field header row
// naming the table, followed by data rows, driven by an externally supplied
// schema.
func WriteRowsFile(dst io.Writer, tableName string, schema *TableSchema, rows []Row) error {
	var w writer
	w.field("R")
	w.field(tableName)
	w.delim(schema.RowDelimiter)
	for _, row := range rows {
		if err := w.writeRowFields(row, schema); err != nil {
			return err
		}
		w.delim(schema.RowDelimiter)
	}
	_, err := dst.Write(w.buf.Bytes())
	return err
}

// WriteTable serialises a full ("T") file: schema followed by rows sharing
// the same delimiter.
func WriteTable(dst io.Writer, t *Table) error {
	var w writer
	w.writeSchemaRows(t.Schema, FileTypeFull)
	for _, row := range t.Rows {
		if err := w.writeRowFields(row, t.Schema); err != nil {
			return err
		}
		w.delim(t.Schema.RowDelimiter)
	}
	_, err := dst.Write(w.buf.Bytes())
	return err
}

// writeSchemaRows emits the five fixed rows of s, each terminated by
// s.RowDelimiter. tag is the file-type tag to put in the header row ("S",
// "T" at top level, "U" when writing a nested sub-schema).
func (w *writer) writeSchemaRows(s *TableSchema, tag FileType) {
	d := s.RowDelimiter

	w.field(tag.String())
	w.field(s.TableName)
	w.field(s.TableDescription)
	w.delim(d)

	for _, dt := range s.DataTypes {
		w.field(dt.String())
	}
	w.delim(d)

	for i, sub := range s.SubSchemas {
		if sub == nil {
			w.buf.WriteString("[]")
			continue
		}
		w.writeSubSchemaCell(sub, s.DataTypes[i])
	}
	w.delim(d)

	for _, p := range s.AdditionalProperties {
		w.field(p)
	}
	w.delim(d)

	for _, n := range s.ColumnNames {
		w.field(n)
	}
	w.delim(d)
}

// writeSubSchemaCell writes "[" + D + (nested 5 rows, each already ending
// in D) + "]": the D right after "[" is the StartSubTable depth digit the
// lexer consumes to enter the body, and the last row's own trailing D
// doubles as the byte immediately before the closing bracket. There is no
// extra, separately emitted delimiter token on either end.
func (w *writer) writeSubSchemaCell(sub *TableSchema, _ DataType) {
	w.buf.WriteByte('[')
	w.buf.WriteByte(sub.RowDelimiter)
	w.writeSchemaRows(sub, FileTypeSubSchema)
	w.buf.WriteByte(']')
}

// writeRowFields writes one row's C fields/sub-table cells with no trailing
// delimiter; the caller appends it.
func (w *writer) writeRowFields(row Row, schema *TableSchema) error {
	for i, v := range row {
		if schema.DataTypes[i] == SubTable {
			if err := checkSubSchemaMatch(schema.SubSchemas[i], v.Sub, i); err != nil {
				return err
			}
			if err := w.writeSubTableCell(v.Sub); err != nil {
				return err
			}
			continue
		}
		text, err := renderValue(v)
		if err != nil {
			return err
		}
		w.field(text)
	}
	return nil
}

// checkSubSchemaMatch guards against a caller building a row's sub-table
// value against a different schema than the one its column declares: the
// two are cheaply compared by structural fingerprint rather than a deep
// field-by-field walk.
func checkSubSchemaMatch(declared *TableSchema, sub *Table, col int) error {
	if sub == nil {
		return newShapeError(RowShape, -1, col, "sub-table cell must contain at least one row")
	}
	if declared == nil {
		return newShapeError(SubSchemaMissing, -1, col, "column %d has no declared sub-schema", col)
	}
	if sub.Schema == nil || sub.Schema.Fingerprint() != declared.Fingerprint() {
		return newShapeError(SchemaShape, -1, col,
			"sub-table value's schema does not match the declared sub-schema for column %d", col)
	}
	return nil
}

func (w *writer) writeSubTableCell(sub *Table) error {
	if sub == nil || len(sub.Rows) == 0 {
		return newShapeError(RowShape, -1, -1, "sub-table cell must contain at least one row")
	}
	d := sub.Schema.RowDelimiter
	w.buf.WriteByte('[')
	w.buf.WriteByte(d)
	for _, row := range sub.Rows {
		if err := w.writeRowFields(row, sub.Schema); err != nil {
			return err
		}
		w.buf.WriteByte(d)
	}
	w.buf.WriteByte(']')
	return nil
}

// renderValue renders a value to its canonical textual form (unescaped;
// the caller's field() call escapes it). Integers render as signed
// decimal; decimals preserve the scale/trailing zeros they were parsed
// with; floats use the shortest round-trip decimal form.
func renderValue(v Value) (string, error) {
	switch v.Type {
	case String:
		return v.Str, nil
	case Integer:
		return strconv.FormatInt(v.Int, 10), nil
	case Decimal:
		// String() trims trailing fractional zeros; StringFixed at the
		// value's own scale keeps them.
		if exp := v.Dec.Exponent(); exp < 0 {
			return v.Dec.StringFixed(-exp), nil
		}
		return v.Dec.String(), nil
	case Float:
		return strconv.FormatFloat(v.Float64, 'g', -1, 64), nil
	case Bool:
		if v.Bool {
			return "T", nil
		}
		return "F", nil
	case Date:
		return string(qdate.AppendDate(nil, v.DateVal)), nil
	case Time:
		return string(qdate.AppendTimeOfDay(nil, v.TimeVal)), nil
	case DateTimeFixedOffset:
		return string(qdate.AppendDateTime(nil, v.DTVal)), nil
	default:
		return "", newShapeError(TypeConversion, -1, -1, "cannot render value of type %s", v.Type)
	}
}
