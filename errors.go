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
	"regexp"
)

// ErrorKind is a closed enumeration of the codec's error taxonomy. Tests and
// callers should switch on Kind rather than match on formatted messages.
type ErrorKind int

const (
	SyntaxFieldStart ErrorKind = iota
	MissingClosingBracket
	PrematureEof
	MissingFinalRowDelimiter
	MultibyteRowDelimiter
	WrongRowDelimiter
	WrongEscape
	Utf8Decode
	TypeConversion
	RowShape
	SchemaShape
	DuplicateColumn
	FileTypeMismatch
	SubSchemaMissing
	SubDelimiterMismatch
	// MaxDepthExceeded is not named in the format's error taxonomy text but
	// is required by the "depth is bounded at 9" design note: a sub-schema
	// cannot recurse past depth 9 because the row delimiter alphabet is a
	// single ASCII digit.
	MaxDepthExceeded
)

func (k ErrorKind) String() string {
	switch k {
	case SyntaxFieldStart:
		return "SyntaxFieldStart"
	case MissingClosingBracket:
		return "MissingClosingBracket"
	case PrematureEof:
		return "PrematureEof"
	case MissingFinalRowDelimiter:
		return "MissingFinalRowDelimiter"
	case MultibyteRowDelimiter:
		return "MultibyteRowDelimiter"
	case WrongRowDelimiter:
		return "WrongRowDelimiter"
	case WrongEscape:
		return "WrongEscape"
	case Utf8Decode:
		return "Utf8Decode"
	case TypeConversion:
		return "TypeConversion"
	case RowShape:
		return "RowShape"
	case SchemaShape:
		return "SchemaShape"
	case DuplicateColumn:
		return "DuplicateColumn"
	case FileTypeMismatch:
		return "FileTypeMismatch"
	case SubSchemaMissing:
		return "SubSchemaMissing"
	case SubDelimiterMismatch:
		return "SubDelimiterMismatch"
	case MaxDepthExceeded:
		return "MaxDepthExceeded"
	default:
		return "Unknown"
	}
}

// Error is the codec's single error type, modeled on
// expr/partiql.LexerError: a Kind test code can switch on, plus a
// human-readable, located message.
//
// Syntax errors (produced by the Lexer) locate themselves by byte Pos/Line/
// Column within the file. Semantic errors (produced by the schema and row
// readers) additionally set RowIndex/ColIndex to the logical data row and
// column they were found in; RowIndex/ColIndex are -1 when not applicable.
type Error struct {
	Kind ErrorKind

	File   string
	Pos    int // byte offset, -1 if not applicable
	Line   int // 1-based, 0 if not applicable
	Column int // 1-based, 0 if not applicable

	RowIndex int // 0-based logical data row, -1 if not applicable
	ColIndex int // 0-based column, -1 if not applicable

	Message string
}

func (e *Error) Error() string {
	loc := ""
	switch {
	case e.Line > 0 && e.Column > 0:
		loc = fmt.Sprintf("%s:%d:%d: ", e.fileOrDefault(), e.Line, e.Column)
	case e.RowIndex >= 0 && e.ColIndex >= 0:
		loc = fmt.Sprintf("row=%d col=%d: ", e.RowIndex, e.ColIndex)
	}
	return fmt.Sprintf("%s%s: %s", loc, e.Kind, e.Message)
}

func (e *Error) fileOrDefault() string {
	if e.File == "" {
		return "./file.qvs20"
	}
	return e.File
}

func newLocError(kind ErrorKind, file string, pos, line, col int, msg string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		File:     file,
		Pos:      pos,
		Line:     line,
		Column:   col,
		RowIndex: -1,
		ColIndex: -1,
		Message:  fmt.Sprintf(msg, args...),
	}
}

func newShapeError(kind ErrorKind, rowIndex, colIndex int, msg string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		Pos:      -1,
		RowIndex: rowIndex,
		ColIndex: colIndex,
		Message:  fmt.Sprintf(msg, args...),
	}
}

// reLocationPrefix matches the "file:line:col: " or "row=N col=N: " prefix
// Error() prepends, so tests can compare error text across unrelated runs
// without it drifting with position.
var reLocationPrefix = regexp.MustCompile(`^(?:\S+:\d+:\d+: |row=-?\d+ col=-?\d+: )`)

// StripLocation removes the leading location prefix from an Error's message,
// leaving "Kind: text". Intended for test comparisons.
func StripLocation(msg string) string {
	return reLocationPrefix.ReplaceAllString(msg, "")
}
