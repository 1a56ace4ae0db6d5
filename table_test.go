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

import "testing"

func TestParseDispatchSchemaOnly(t *testing.T) {
	src := "[S][orders][order table]\n[Integer][String]\n[][]\n[][]\n[id][name]\n"
	tbl, err := Parse([]byte(src), "t.qvs20", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.Schema == nil || tbl.Schema.TableName != "orders" {
		t.Errorf("got %+v", tbl)
	}
	if tbl.Rows != nil {
		t.Errorf("schema-only file should have no rows, got %v", tbl.Rows)
	}
}

func TestParseDispatchFullTable(t *testing.T) {
	src := "[T][nums][desc]\n[Integer]\n[]\n[]\n[n]\n[1]\n"
	tbl, err := Parse([]byte(src), "t.qvs20", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tbl.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(tbl.Rows))
	}
}

func TestParseDispatchRowsRequiresExternalSchema(t *testing.T) {
	src := "[R][nums]\n[1]\n"
	if _, err := Parse([]byte(src), "t.qvs20", nil); err == nil {
		t.Fatalf("expected an error: rows-only file needs an external schema")
	}
}

func TestParseRowsTableNameMismatch(t *testing.T) {
	schemaSrc := "[S][nums][desc]\n[Integer]\n[]\n[]\n[n]\n"
	schema, err := ParseSchema([]byte(schemaSrc), "t.qvs20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rowsSrc := "[R][wrong_name]\n[1]\n"
	_, err = ParseRows([]byte(rowsSrc), "t.qvs20", schema)
	if err == nil {
		t.Fatalf("expected FileTypeMismatch for a table-name mismatch")
	}
	e, ok := err.(*Error)
	if !ok || e.Kind != FileTypeMismatch {
		t.Fatalf("got %v, want *Error{Kind: FileTypeMismatch}", err)
	}
}

func TestParseDispatchSubSchemaRejectedStandalone(t *testing.T) {
	src := "[U][item][]\n[String]\n[]\n[]\n[sku]\n"
	if _, err := Parse([]byte(src), "t.qvs20", nil); err == nil {
		t.Fatalf("expected file-type U to be rejected at top level")
	}
}
