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
	"testing"
)

func TestWriteSchemaFileMatchesCanonicalForm(t *testing.T) {
	src := "[S][orders][order table]\n[Integer][String]\n[][]\n[][]\n[id][name]\n"
	schema, err := ParseSchema([]byte(src), "t.qvs20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteSchemaFile(&buf, schema); err != nil {
		t.Fatalf("WriteSchemaFile: %v", err)
	}
	if buf.String() != src {
		t.Errorf("got %q, want %q", buf.String(), src)
	}
}

func TestWriteTableRoundTrip(t *testing.T) {
	src := "[T][nums][desc]\n[Integer]\n[]\n[]\n[n]\n[1]\n[2]\n"
	tbl, err := ParseTable([]byte(src), "t.qvs20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteTable(&buf, tbl); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if buf.String() != src {
		t.Errorf("got %q, want %q", buf.String(), src)
	}
}

func TestWriteTableNestedSubTableRoundTrip(t *testing.T) {
	src := "[T][orders][]\n[SubTable]\n[1[U][item][]1[String]1[]1[]1[sku]1]\n[]\n[items]\n" +
		"[1[apple]1[banana]1]\n"
	tbl, err := ParseTable([]byte(src), "t.qvs20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteTable(&buf, tbl); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if buf.String() != src {
		t.Errorf("got %q, want %q", buf.String(), src)
	}
}

func TestWriteRowsFile(t *testing.T) {
	schemaSrc := "[S][nums][desc]\n[Integer]\n[]\n[]\n[n]\n"
	schema, err := ParseSchema([]byte(schemaSrc), "t.qvs20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := []Row{
		{{Type: Integer, Int: 1}},
		{{Type: Integer, Int: 2}},
	}
	var buf bytes.Buffer
	if err := WriteRowsFile(&buf, "nums", schema, rows); err != nil {
		t.Fatalf("WriteRowsFile: %v", err)
	}
	want := "[R][nums]\n[1]\n[2]\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}

	got, err := ParseRows([]byte(buf.String()), "t.qvs20", schema)
	if err != nil {
		t.Fatalf("ParseRows: %v", err)
	}
	if len(got) != 2 || got[0][0].Int != 1 || got[1][0].Int != 2 {
		t.Errorf("got rows %+v", got)
	}
}

func TestWriteSubTableCellRejectsEmpty(t *testing.T) {
	if err := (&writer{}).writeSubTableCell(&Table{Schema: &TableSchema{RowDelimiter: '1'}}); err == nil {
		t.Errorf("expected an error writing a sub-table cell with no rows")
	}
}

func TestWriteRowFieldsRejectsMismatchedSubSchema(t *testing.T) {
	schemaSrc := "[S][orders][]\n[SubTable]\n[1[U][item][]1[String]1[]1[]1[sku]1]\n[]\n[items]\n"
	schema, err := ParseSchema([]byte(schemaSrc), "t.qvs20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	otherSub := &TableSchema{
		TableName:             "item",
		DataTypes:             []DataType{String},
		SubSchemas:            []*TableSchema{nil},
		AdditionalProperties:  []string{""},
		ColumnNames:           []string{"other-name"},
		RowDelimiter:          '1',
	}
	row := Row{{Type: SubTable, Sub: &Table{
		Schema: otherSub,
		Rows:   []Row{{{Type: String, Str: "apple"}}},
	}}}
	var w writer
	if err := w.writeRowFields(row, schema); err == nil {
		t.Fatalf("expected an error writing a sub-table cell whose schema does not match the declared one")
	} else if e, ok := err.(*Error); !ok || e.Kind != SchemaShape {
		t.Errorf("got %v, want a SchemaShape error", err)
	}
}

func TestRenderValueFloatShortestForm(t *testing.T) {
	got, err := renderValue(Value{Type: Float, Float64: 1.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "1.5" {
		t.Errorf("got %q, want %q", got, "1.5")
	}
}
