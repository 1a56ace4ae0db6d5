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

// Package fingerprint computes a cheap structural hash of a schema's shape:
// data types, column names, nesting.
package fingerprint

import "github.com/dchest/siphash"

// fixed key: this fingerprint is used for cheap equality/identity checks
// within a single process, not as a cryptographic or cross-process hash.
const k0, k1 = 0, 0

// Builder accumulates the bytes of a schema's shape description and
// produces a 128-bit fingerprint.
type Builder struct {
	buf []byte
}

func (fp *Builder) WriteByte(b byte) {
	fp.buf = append(fp.buf, b)
}

func (fp *Builder) WriteString(s string) {
	fp.buf = append(fp.buf, s...)
	fp.buf = append(fp.buf, 0) // length-separate entries
}

func (fp *Builder) WriteInt(i int) {
	fp.buf = append(fp.buf,
		byte(i), byte(i>>8), byte(i>>16), byte(i>>24),
		byte(i>>32), byte(i>>40), byte(i>>48), byte(i>>56))
}

// Sum returns the fingerprint of everything written so far.
func (fp *Builder) Sum() [2]uint64 {
	lo, hi := siphash.Hash128(k0, k1, fp.buf)
	return [2]uint64{lo, hi}
}
