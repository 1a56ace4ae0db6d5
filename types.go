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
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bestia-dev/qvs20/internal/qdate"
)

// FileType is the header row's file-type tag.
type FileType byte

const (
	FileTypeSchema    FileType = 'S' // schema only
	FileTypeRows      FileType = 'R' // rows only, driven by an external schema
	FileTypeFull      FileType = 'T' // schema + rows
	FileTypeSubSchema FileType = 'U' // sub-schema; never valid standalone
)

func (f FileType) valid() bool {
	switch f {
	case FileTypeSchema, FileTypeRows, FileTypeFull, FileTypeSubSchema:
		return true
	default:
		return false
	}
}

func (f FileType) String() string {
	return string(byte(f))
}

// DataType is QVS20's closed enumeration of column types. The identifier
// text ("String", "Integer", ...) is exactly what appears in a schema's
// data-type row.
type DataType int

const (
	String DataType = iota
	Integer
	Decimal
	Float
	Bool
	DateTimeFixedOffset
	Date
	Time
	SubTable
)

var dataTypeNames = [...]string{
	String:              "String",
	Integer:             "Integer",
	Decimal:             "Decimal",
	Float:               "Float",
	Bool:                "Bool",
	DateTimeFixedOffset: "DateTimeFixedOffset",
	Date:                "Date",
	Time:                "Time",
	SubTable:            "SubTable",
}

func (d DataType) String() string {
	if int(d) < 0 || int(d) >= len(dataTypeNames) {
		return "Unknown"
	}
	return dataTypeNames[d]
}

// ParseDataType maps a schema's data-type row text back to a DataType.
func ParseDataType(s string) (DataType, bool) {
	for i, name := range dataTypeNames {
		if name == s {
			return DataType(i), true
		}
	}
	return 0, false
}

// Value is a closed tagged union over the nine data types a column may
// declare, per the design note preferring a tagged union over polymorphic
// classes. Only the field matching Type is meaningful.
type Value struct {
	Type DataType

	Str      string
	Int      int64
	Dec      decimal.Decimal
	Float64  float64
	Bool     bool
	DateVal  qdate.Date
	TimeVal  qdate.TimeOfDay
	DTVal    qdate.DateTime
	Sub      *Table // populated when Type == SubTable
}

func (v Value) String() string {
	switch v.Type {
	case String:
		return v.Str
	case Integer:
		return fmt.Sprintf("%d", v.Int)
	case Decimal:
		return v.Dec.String()
	case Float:
		return fmt.Sprintf("%g", v.Float64)
	case Bool:
		if v.Bool {
			return "T"
		}
		return "F"
	case Date:
		return v.DateVal.String()
	case Time:
		return v.TimeVal.String()
	case DateTimeFixedOffset:
		return v.DTVal.String()
	case SubTable:
		return "<sub-table>"
	default:
		return ""
	}
}
