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

func TestParseTableMinimal(t *testing.T) {
	src := "[T][nums][desc]\n[Integer]\n[]\n[]\n[n]\n[1]\n[2]\n"
	tbl, err := ParseTable([]byte(src), "t.qvs20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(tbl.Rows))
	}
	if tbl.Rows[0][0].Int != 1 || tbl.Rows[1][0].Int != 2 {
		t.Errorf("got rows %+v", tbl.Rows)
	}
}

func TestRowValueByName(t *testing.T) {
	src := "[T][nums][desc]\n[Integer][String]\n[][]\n[][]\n[id][name]\n[1][alice]\n"
	tbl, err := ParseTable([]byte(src), "t.qvs20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row := tbl.Rows[0]
	v, ok := row.ValueByName(tbl.Schema, "name")
	if !ok || v.Str != "alice" {
		t.Errorf("got %+v, %v, want \"alice\", true", v, ok)
	}
	if _, ok := row.ValueByName(tbl.Schema, "missing"); ok {
		t.Errorf("expected no value for an unknown column name")
	}
}

func TestParseTableTypeConversionError(t *testing.T) {
	src := "[T][nums][desc]\n[Integer]\n[]\n[]\n[n]\n[1,2]\n"
	_, err := ParseTable([]byte(src), "t.qvs20")
	if err == nil {
		t.Fatalf("expected a TypeConversion error")
	}
	e, ok := err.(*Error)
	if !ok || e.Kind != TypeConversion {
		t.Fatalf("got %v, want *Error{Kind: TypeConversion}", err)
	}
	if e.RowIndex != 0 || e.ColIndex != 0 {
		t.Errorf("got row=%d col=%d, want row=0 col=0", e.RowIndex, e.ColIndex)
	}
}

func TestParseTableTooManyColumns(t *testing.T) {
	src := "[T][nums][desc]\n[Integer]\n[]\n[]\n[n]\n[1][2]\n"
	_, err := ParseTable([]byte(src), "t.qvs20")
	if err == nil {
		t.Fatalf("expected a RowShape error for an over-wide row")
	}
}

func TestParseTableNestedSubTable(t *testing.T) {
	src := "[T][orders][]\n[SubTable]\n[1[U][item][]1[String]1[]1[]1[sku]1]\n[]\n[items]\n" +
		"[1[apple]1[banana]1]\n"
	tbl, err := ParseTable([]byte(src), "t.qvs20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tbl.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(tbl.Rows))
	}
	sub := tbl.Rows[0][0].Sub
	if sub == nil {
		t.Fatalf("expected a sub-table value")
	}
	if len(sub.Rows) != 2 {
		t.Fatalf("got %d sub-rows, want 2", len(sub.Rows))
	}
	if sub.Rows[0][0].Str != "apple" || sub.Rows[1][0].Str != "banana" {
		t.Errorf("got sub-rows %+v", sub.Rows)
	}
}

func TestDecodeValueAllTypes(t *testing.T) {
	cases := []struct {
		dt  DataType
		raw string
	}{
		{Integer, "-42"},
		{Decimal, "19.99"},
		{Float, "3.5e10"},
		{Bool, "T"},
		{Date, "2019-10-12"},
		{Time, "07:20:50"},
		{DateTimeFixedOffset, "2019-10-12T07:20:50Z"},
	}
	for _, c := range cases {
		if _, err := decodeValue(c.dt, []byte(c.raw), 0, 0); err != nil {
			t.Errorf("decodeValue(%s, %q): %v", c.dt, c.raw, err)
		}
	}
}

func TestDecodeDecimalRejectsScientificNotation(t *testing.T) {
	if _, err := decodeValue(Decimal, []byte("1e10"), 0, 0); err == nil {
		t.Errorf("expected scientific notation to be rejected for Decimal")
	}
}

func TestDecodeBoolRejectsAnythingElse(t *testing.T) {
	for _, raw := range []string{"true", "t", "1", "TRUE", ""} {
		if _, err := decodeValue(Bool, []byte(raw), 0, 0); err == nil {
			t.Errorf("expected %q to be rejected as Bool", raw)
		}
	}
}
