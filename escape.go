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
	"strings"
	"unicode/utf8"

	"golang.org/x/exp/slices"
)

// escapeAlphabet is the six logical characters QVS20 strings may need
// escaped.
var escapeAlphabet = []byte{'\\', '[', ']', 'n', 'r', 't'}

func escapedForm(raw byte) (byte, bool) {
	switch raw {
	case '\\':
		return '\\', true
	case '[':
		return '[', true
	case ']':
		return ']', true
	case '\n':
		return 'n', true
	case '\r':
		return 'r', true
	case '\t':
		return 't', true
	default:
		return 0, false
	}
}

func unescapedForm(c byte) (byte, bool) {
	if !slices.Contains(escapeAlphabet, c) {
		return 0, false
	}
	switch c {
	case '\\':
		return '\\', true
	case '[':
		return '[', true
	case ']':
		return ']', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	default:
		return 0, false
	}
}

// Escape replaces every byte in s that belongs to the escape alphabet with
// its two-byte escaped form. It is the writer's counterpart to Unescape.
func Escape(s string) string {
	needsEscape := false
	for i := 0; i < len(s); i++ {
		if _, ok := escapedForm(s[i]); ok {
			needsEscape = true
			break
		}
	}
	if !needsEscape {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		if e, ok := escapedForm(s[i]); ok {
			b.WriteByte('\\')
			b.WriteByte(e)
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Unescape decodes a raw field payload (still escape-bearing) into its
// logical string content, per the fixed six-character escape alphabet:
// scan for '\', verify the successor is one of the six recognized
// characters, and substitute; any other successor is WrongEscape.
func Unescape(raw []byte) (string, error) {
	if !containsBackslash(raw) {
		if !utf8.Valid(raw) {
			return "", &Error{Kind: Utf8Decode, Pos: -1, RowIndex: -1, ColIndex: -1,
				Message: "field is not valid UTF-8"}
		}
		return string(raw), nil
	}
	var b strings.Builder
	b.Grow(len(raw))
	start := 0
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' {
			continue
		}
		b.Write(raw[start:i])
		if i+1 >= len(raw) {
			return "", &Error{Kind: WrongEscape, Pos: -1, RowIndex: -1, ColIndex: -1,
				Message: "trailing backslash with no escape character"}
		}
		decoded, ok := unescapedForm(raw[i+1])
		if !ok {
			return "", &Error{Kind: WrongEscape, Pos: -1, RowIndex: -1, ColIndex: -1,
				Message: "wrong escape sequence: \\" + string(raw[i+1])}
		}
		b.WriteByte(decoded)
		i++
		start = i + 1
	}
	b.Write(raw[start:])
	s := b.String()
	if !utf8.ValidString(s) {
		return "", &Error{Kind: Utf8Decode, Pos: -1, RowIndex: -1, ColIndex: -1,
			Message: "field is not valid UTF-8"}
	}
	return s, nil
}

func containsBackslash(b []byte) bool {
	for _, c := range b {
		if c == '\\' {
			return true
		}
	}
	return false
}
