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
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bestia-dev/qvs20/internal/qdate"
)

// Row is one ordered sequence of typed values, length equal to the
// governing schema's column count.
type Row []Value

// ValueByName returns the value of row's column named name under schema, or
// false if schema has no such column.
func (row Row) ValueByName(schema *TableSchema, name string) (Value, bool) {
	i := schema.ColumnIndex(name)
	if i < 0 {
		return Value{}, false
	}
	return row[i], true
}

// readRows reads rows driven by schema until end-of-input (top level) or an
// EndSubTable token (nested table body).
//
// rowIndex0 is the logical index of the first row read, used to enrich
// TypeConversion/RowShape errors with their logical row position.
func readRows(l *Lexer, schema *TableSchema, rowIndex0 int) ([]Row, error) {
	var rows []Row
	idx := rowIndex0
	for {
		tok, ok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return rows, nil
		}
		if tok.Kind == TokenEndSubTable {
			return rows, nil
		}
		row, err := readRow(l, schema, tok, idx)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
		idx++
	}
}

// readRow reads a single row. first is the already-consumed first token of
// the row (readRows must peek one token to know whether the body has
// ended), which must be the first column's token.
func readRow(l *Lexer, schema *TableSchema, first Token, rowIndex int) (Row, error) {
	c := schema.ColumnCount()
	row := make(Row, c)
	tok := first
	haveTok := true
	for i := 0; i < c; i++ {
		if !haveTok {
			next, ok, err := l.Next()
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, newShapeError(RowShape, rowIndex, i, "row ended early, expected %d columns", c)
			}
			tok = next
		}
		haveTok = false

		dt := schema.DataTypes[i]
		if dt == SubTable {
			if tok.Kind != TokenStartSubTable {
				return nil, newShapeError(SubSchemaMissing, rowIndex, i, "expected a sub-table cell for column %d", i)
			}
			d := tok.Delim
			sub := schema.SubSchemas[i]
			if sub == nil {
				return nil, newShapeError(SubSchemaMissing, rowIndex, i, "column %d has no sub-schema", i)
			}
			if d != sub.RowDelimiter {
				return nil, newShapeError(SubDelimiterMismatch, rowIndex, i,
					"sub-table opening delimiter %q does not match its schema's delimiter %q", d, sub.RowDelimiter)
			}
			// readRows returns either after consuming the body's EndSubTable
			// token or at end of input; the lexer state tells the two apart.
			subRows, err := readRows(l, sub, 0)
			if err != nil {
				return nil, err
			}
			if l.mode == modeEof {
				return nil, newShapeError(SubDelimiterMismatch, rowIndex, i, "sub-table cell is missing its closing delimiter")
			}
			if endDelim := l.pendingDelim; endDelim != d {
				return nil, newShapeError(SubDelimiterMismatch, rowIndex, i,
					"sub-table closing delimiter %q does not match opening %q", endDelim, d)
			}
			row[i] = Value{Type: SubTable, Sub: &Table{Schema: sub, Rows: subRows}}
			continue
		}

		if tok.Kind != TokenField {
			return nil, newShapeError(RowShape, rowIndex, i, "expected a field for column %d, found %s", i, tok.Kind)
		}
		v, err := decodeValue(dt, tok.Bytes(), rowIndex, i)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}

	delimTok, ok, err := l.Next()
	if err != nil {
		return nil, err
	}
	if !ok || delimTok.Kind != TokenRowDelimiter {
		return nil, newShapeError(RowShape, rowIndex, c, "row has more than %d columns", c)
	}
	if delimTok.Delim != schema.RowDelimiter {
		return nil, newShapeError(WrongRowDelimiter, rowIndex, -1,
			"wrong row delimiter %q, expected %q", delimTok.Delim, schema.RowDelimiter)
	}
	return row, nil
}

func decodeValue(dt DataType, raw []byte, rowIndex, col int) (Value, error) {
	switch dt {
	case String:
		s, err := Unescape(raw)
		if err != nil {
			return Value{}, withShapePos(err, rowIndex, col)
		}
		return Value{Type: String, Str: s}, nil

	case Integer:
		if !isValidInteger(raw) {
			return Value{}, newShapeError(TypeConversion, rowIndex, col, "invalid digit in integer %q", raw)
		}
		i, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return Value{}, newShapeError(TypeConversion, rowIndex, col, "integer out of range: %q", raw)
		}
		return Value{Type: Integer, Int: i}, nil

	case Decimal:
		if !isValidDecimal(raw) {
			return Value{}, newShapeError(TypeConversion, rowIndex, col, "invalid decimal %q", raw)
		}
		d, err := decimal.NewFromString(string(raw))
		if err != nil {
			return Value{}, newShapeError(TypeConversion, rowIndex, col, "invalid decimal %q", raw)
		}
		return Value{Type: Decimal, Dec: d}, nil

	case Float:
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return Value{}, newShapeError(TypeConversion, rowIndex, col, "invalid float %q", raw)
		}
		return Value{Type: Float, Float64: f}, nil

	case Bool:
		if len(raw) != 1 || (raw[0] != 'T' && raw[0] != 'F') {
			return Value{}, newShapeError(TypeConversion, rowIndex, col, "bool must be exactly 'T' or 'F', found %q", raw)
		}
		return Value{Type: Bool, Bool: raw[0] == 'T'}, nil

	case Date:
		d, ok := qdate.ParseDate(raw)
		if !ok {
			return Value{}, newShapeError(TypeConversion, rowIndex, col, "invalid date %q, expected YYYY-MM-DD", raw)
		}
		return Value{Type: Date, DateVal: d}, nil

	case Time:
		t, ok := qdate.ParseTimeOfDay(raw)
		if !ok {
			return Value{}, newShapeError(TypeConversion, rowIndex, col, "invalid time %q, expected hh:mm:ss", raw)
		}
		return Value{Type: Time, TimeVal: t}, nil

	case DateTimeFixedOffset:
		dt, ok := qdate.ParseDateTime(raw)
		if !ok {
			return Value{}, newShapeError(TypeConversion, rowIndex, col, "invalid date-time %q, expected RFC-3339 with offset", raw)
		}
		return Value{Type: DateTimeFixedOffset, DTVal: dt}, nil

	default:
		return Value{}, newShapeError(TypeConversion, rowIndex, col, "unsupported data type %s", dt)
	}
}

func withShapePos(err error, rowIndex, col int) error {
	if e, ok := err.(*Error); ok {
		e.RowIndex = rowIndex
		e.ColIndex = col
		return e
	}
	return err
}

// isValidInteger enforces "signed 64-bit; optional leading +/-; digits
// only", rejecting anything strconv.ParseInt would otherwise accept loosely
// (it doesn't accept much loosely, but this keeps the grammar check
// explicit and independently testable).
func isValidInteger(raw []byte) bool {
	if len(raw) == 0 {
		return false
	}
	i := 0
	if raw[0] == '+' || raw[0] == '-' {
		i = 1
	}
	if i == len(raw) {
		return false
	}
	for ; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return false
		}
	}
	return true
}

// isValidDecimal enforces "optional sign; single '.'; no thousands
// separators, no exponent, no currency" -- in particular it rejects the
// scientific notation shopspring/decimal would otherwise accept.
func isValidDecimal(raw []byte) bool {
	s := string(raw)
	if s == "" {
		return false
	}
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	if strings.ContainsAny(s, "eE") {
		return false
	}
	dot := strings.IndexByte(s, '.')
	digits := s
	if dot >= 0 {
		digits = s[:dot] + s[dot+1:]
		if strings.IndexByte(s[dot+1:], '.') >= 0 {
			return false
		}
	}
	if digits == "" {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	return true
}
