// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package invoker

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrFailedToCreatePipe is returned when an operating system pipe could not be created.
var ErrFailedToCreatePipe = errors.New("failed to create pipe")

// pipes holds both ends of the child's standard streams.
// The child ends are closed in the host right after the process starts so the
// host-side readers see EOF once the child exits.
type pipes struct {
	childIn, childOut, childErr *os.File
	in, out, err                *os.File // in is nil when there is no stdin payload
}

func openPipes(withStdin bool) (*pipes, error) {
	p := &pipes{}

	var err error

	if withStdin {
		p.childIn, p.in, err = os.Pipe()
	} else {
		p.childIn, err = os.Open(os.DevNull)
	}

	if err != nil {
		return nil, errors.Join(ErrFailedToCreatePipe, err)
	}

	if p.out, p.childOut, err = os.Pipe(); err != nil {
		p.closeAll()
		return nil, errors.Join(ErrFailedToCreatePipe, err)
	}

	if p.err, p.childErr, err = os.Pipe(); err != nil {
		p.closeAll()
		return nil, errors.Join(ErrFailedToCreatePipe, err)
	}

	return p, nil
}

func (p *pipes) childFiles() []*os.File {
	return []*os.File{p.childIn, p.childOut, p.childErr}
}

func (p *pipes) closeChildEnds() {
	closeFiles(p.childIn, p.childOut, p.childErr)
}

func (p *pipes) closeAll() {
	closeFiles(p.childIn, p.childOut, p.childErr, p.in, p.out, p.err)
}

func closeFiles(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			_ = f.Close()
		}
	}
}

// readAllUpToMax reads r to EOF. With a positive limit only the first limit bytes are kept,
// the remainder is discarded so the child never blocks on a full pipe, and ErrOutputLimit is returned.
func readAllUpToMax(r io.Reader, limit int64) ([]byte, error) {
	var buf bytes.Buffer

	if limit <= 0 {
		if _, err := io.Copy(&buf, r); err != nil {
			return buf.Bytes(), fmt.Errorf("read output: %w", err)
		}

		return buf.Bytes(), nil
	}

	n, err := io.CopyN(&buf, r, limit+1)
	if err != nil && !errors.Is(err, io.EOF) {
		return buf.Bytes(), fmt.Errorf("read output: %w", err)
	}

	if n > limit {
		_, _ = io.Copy(io.Discard, r)
		return buf.Bytes()[:limit], fmt.Errorf("%w of %d bytes", ErrOutputLimit, limit)
	}

	return buf.Bytes(), nil
}

// writeInput writes s to the child's stdin and closes it.
// A child that exits without reading all of its input is not an error.
func writeInput(w io.WriteCloser, s string) error {
	_, werr := io.WriteString(w, s)
	cerr := w.Close()

	if werr != nil && !isBrokenPipe(werr) {
		return fmt.Errorf("write stdin: %w", werr)
	}

	if cerr != nil && !isBrokenPipe(cerr) {
		return fmt.Errorf("close stdin: %w", cerr)
	}

	return nil
}
