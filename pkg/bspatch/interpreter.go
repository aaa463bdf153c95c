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

package bspatch

import (
	"io"

	"github.com/patchkit-go/bsdiff/pkg/errs"
	"github.com/patchkit-go/bsdiff/pkg/signmag"
)

// ctrlTriple is one (X, Y, Z) instruction: "add X bytes of old into X bytes
// of diff; append Y bytes of extra; shift old cursor by Z".
type ctrlTriple struct {
	X, Y, Z int64
}

func readCtrlTriple(r io.Reader) (ctrlTriple, error) {
	var raw [24]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return ctrlTriple{}, errs.Corrupt("control stream: %v", err)
	}
	return ctrlTriple{
		X: signmag.Decode(raw[0:8]),
		Y: signmag.Decode(raw[8:16]),
		Z: signmag.Decode(raw[16:24]),
	}, nil
}

// Interpret replays c's control stream against old (positioned by oldSize,
// the logical length of old) and produces the reconstructed new image as a
// single buffer of exactly c.Header.NewSize bytes.
//
// Each iteration reads a control triple, copies X bytes of diff with the
// overlapping old-byte run added in mod 256 (old positions outside
// [0, oldSize) contribute zero), then appends Y extra bytes before shifting
// oldpos by Z.
func Interpret(old io.ReadSeeker, oldSize int64, c *Container) ([]byte, error) {
	newSize := c.Header.NewSize
	out := make([]byte, newSize)
	if newSize == 0 {
		return out, nil
	}

	var oldpos, newpos int64
	for newpos < newSize {
		ctrl, err := readCtrlTriple(c.ctrl)
		if err != nil {
			return nil, err
		}
		if ctrl.X < 0 || ctrl.Y < 0 {
			return nil, errs.Corrupt("negative control length (X=%d Y=%d)", ctrl.X, ctrl.Y)
		}
		if newpos+ctrl.X > newSize {
			return nil, errs.Corrupt("diff block runs past new_size (newpos=%d X=%d new_size=%d)", newpos, ctrl.X, newSize)
		}

		if _, err := io.ReadFull(c.diff, out[newpos:newpos+ctrl.X]); err != nil {
			return nil, errs.Corrupt("diff stream: %v", err)
		}
		if err := addOldBytes(old, oldSize, out[newpos:newpos+ctrl.X], oldpos); err != nil {
			return nil, err
		}
		newpos += ctrl.X
		oldpos += ctrl.X

		if newpos+ctrl.Y > newSize {
			return nil, errs.Corrupt("extra block runs past new_size (newpos=%d Y=%d new_size=%d)", newpos, ctrl.Y, newSize)
		}
		if _, err := io.ReadFull(c.extra, out[newpos:newpos+ctrl.Y]); err != nil {
			return nil, errs.Corrupt("extra stream: %v", err)
		}
		newpos += ctrl.Y

		oldpos += ctrl.Z
	}
	return out, nil
}

// addOldBytes adds, modulo 256, the run of old bytes starting at oldpos
// into window (which already holds the freshly read diff bytes). Positions
// outside [0, oldSize) contribute zero. Only the clamped overlapping range
// is actually read from old, via a single seek plus a single contiguous
// read.
func addOldBytes(old io.ReadSeeker, oldSize int64, window []byte, oldpos int64) error {
	lo := oldpos
	hi := oldpos + int64(len(window))
	start := lo
	if start < 0 {
		start = 0
	}
	end := hi
	if end > oldSize {
		end = oldSize
	}
	if start >= end {
		return nil
	}

	if _, err := old.Seek(start, io.SeekStart); err != nil {
		return errs.Io("seek old file", err)
	}
	run := make([]byte, end-start)
	n, err := io.ReadFull(old, run)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return errs.Io("read old file", err)
	}
	offsetInWindow := start - lo
	for i := 0; i < n; i++ {
		window[offsetInWindow+int64(i)] += run[i]
	}
	return nil
}
