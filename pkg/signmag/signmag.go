// * Copyright 2003-2005 Colin Percival
// * All rights reserved
// *
// * Redistribution and use in source and binary forms, with or without
// * modification, are permitted providing that the following conditions
// * are met:
// * 1. Redistributions of source code must retain the above copyright
// *    notice, this list of conditions and the following disclaimer.
// * 2. Redistributions in binary form must reproduce the above copyright
// *    notice, this list of conditions and the following disclaimer in the
// *    documentation and/or other materials provided with the distribution.
// *
// * THIS SOFTWARE IS PROVIDED BY THE AUTHOR ``AS IS'' AND ANY EXPRESS OR
// * IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE IMPLIED
// * WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// * ARE DISCLAIMED.  IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY
// * DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL
// * DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS
// * OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION)
// * HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT,
// * STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING
// * IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// * POSSIBILITY OF SUCH DAMAGE.

// Package signmag implements the sign-magnitude 64-bit integer encoding used
// by the BSDIFF40 header and control stream. It is deliberately not
// two's-complement: the magnitude occupies the low 63 bits of a little-endian
// 8-byte run and the sign lives in the top bit of the last byte.
package signmag

// Decode reads a sign-magnitude int64 from the first 8 bytes of buf.
// Accepts the redundant negative-zero encoding (all magnitude bytes zero,
// sign bit set) as the value 0.
func Decode(buf []byte) int64 {
	_ = buf[7]
	y := int64(buf[7] & 0x7f)
	y = y*256 + int64(buf[6])
	y = y*256 + int64(buf[5])
	y = y*256 + int64(buf[4])
	y = y*256 + int64(buf[3])
	y = y*256 + int64(buf[2])
	y = y*256 + int64(buf[1])
	y = y*256 + int64(buf[0])

	if buf[7]&0x80 != 0 {
		y = -y
	}
	return y
}

// Encode writes x into the first 8 bytes of buf in sign-magnitude form.
func Encode(x int64, buf []byte) {
	_ = buf[7]
	var y int64
	if x < 0 {
		y = -x
	} else {
		y = x
	}

	buf[0] = byte(y)
	y >>= 8
	buf[1] = byte(y)
	y >>= 8
	buf[2] = byte(y)
	y >>= 8
	buf[3] = byte(y)
	y >>= 8
	buf[4] = byte(y)
	y >>= 8
	buf[5] = byte(y)
	y >>= 8
	buf[6] = byte(y)
	y >>= 8
	buf[7] = byte(y)

	if x < 0 {
		buf[7] |= 0x80
	}
}
