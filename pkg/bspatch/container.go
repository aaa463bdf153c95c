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

// Package bspatch implements the BSDIFF40 patch container reader and
// interpreter: parsing the fixed 32-byte header, attaching three
// independent bzip2 decompressors to the control/diff/extra sub-streams,
// and replaying the control-triple loop that reconstructs the new image.
package bspatch

import (
	"bytes"
	"io"
	"os"

	"github.com/dsnet/compress/bzip2"

	"github.com/patchkit-go/bsdiff/pkg/errs"
	"github.com/patchkit-go/bsdiff/pkg/signmag"
)

const headerSize = 32

var magic = []byte("BSDIFF40")

// header is the fixed 32-byte BSDIFF40 preamble.
type header struct {
	CtrlLen int64
	DataLen int64
	NewSize int64
}

func parseHeader(raw []byte) (header, error) {
	if len(raw) < headerSize {
		return header{}, errs.Corrupt("header: only %d of %d bytes available", len(raw), headerSize)
	}
	if !bytes.Equal(raw[:8], magic) {
		return header{}, errs.Corrupt("bad magic %q", raw[:8])
	}
	h := header{
		CtrlLen: signmag.Decode(raw[8:16]),
		DataLen: signmag.Decode(raw[16:24]),
		NewSize: signmag.Decode(raw[24:32]),
	}
	if h.CtrlLen < 0 || h.DataLen < 0 || h.NewSize < 0 {
		return header{}, errs.Corrupt("negative header length (ctrl=%d data=%d new=%d)", h.CtrlLen, h.DataLen, h.NewSize)
	}
	return h, nil
}

// subStream wraps the bzip2 decompressor reading one sub-stream through its
// section reader; only the decompressor is kept, so Close releases it
// without touching the underlying file.
type subStream struct {
	*bzip2.Reader
}

func openSubStream(at io.ReaderAt, offset, length int64) (*subStream, error) {
	sr := io.NewSectionReader(at, offset, length)
	r, err := bzip2.NewReader(sr, nil)
	if err != nil {
		return nil, errs.Io("open bzip2 sub-stream", err)
	}
	return &subStream{Reader: r}, nil
}

// Container is an opened BSDIFF40 patch: the decoded header plus the three
// independent decompressors for the control, diff and extra sub-streams,
// exposed as an explicit, closeable resource.
type Container struct {
	Header header

	ctrl  *subStream
	diff  *subStream
	extra *subStream

	f *os.File // owned when opened via OpenContainer, nil via OpenContainerAt
}

// OpenContainer opens path, reads and validates the BSDIFF40 header, and
// attaches three independent bzip2 readers at the control/diff/extra
// sub-stream offsets. The header is validated, including its magic bytes,
// before the old file is ever touched.
func OpenContainer(path string) (*Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Io("open "+path, err)
	}
	c, err := openContainerAt(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	c.f = f
	return c, nil
}

// OpenContainerAt builds a Container over an already-open ReaderAt (e.g. an
// in-memory patch for testing), without taking ownership of it.
func OpenContainerAt(at io.ReaderAt) (*Container, error) {
	return openContainerAt(at)
}

func openContainerAt(at io.ReaderAt) (*Container, error) {
	raw := make([]byte, headerSize)
	if _, err := io.ReadFull(io.NewSectionReader(at, 0, headerSize), raw); err != nil {
		return nil, errs.Corrupt("reading header: %v", err)
	}
	h, err := parseHeader(raw)
	if err != nil {
		return nil, err
	}

	ctrl, err := openSubStream(at, headerSize, h.CtrlLen)
	if err != nil {
		return nil, err
	}
	diff, err := openSubStream(at, headerSize+h.CtrlLen, h.DataLen)
	if err != nil {
		ctrl.Close()
		return nil, err
	}
	// The extra stream runs unbounded to EOF; bound it generously since
	// io.SectionReader requires a finite length.
	const unbounded = 1 << 62
	extra, err := openSubStream(at, headerSize+h.CtrlLen+h.DataLen, unbounded)
	if err != nil {
		ctrl.Close()
		diff.Close()
		return nil, err
	}

	return &Container{Header: h, ctrl: ctrl, diff: diff, extra: extra}, nil
}

// Close releases the three sub-stream decompressors and, if OpenContainer
// opened the backing file, the file itself.
func (c *Container) Close() error {
	var firstErr error
	for _, s := range []*subStream{c.ctrl, c.diff, c.extra} {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = errs.Io("close bzip2 sub-stream", err)
		}
	}
	if c.f != nil {
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = errs.Io("close patch file", err)
		}
	}
	return firstErr
}
