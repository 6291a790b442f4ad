package kernel

// pipeCB is the Pipe Control Block: a fixed-capacity circular byte buffer
// with two endpoints, each either open or closed. The pipe's "liveness" is
// whether at least one endpoint is still open. Per spec.md's Open Question
// #1, the Go core actually frees the pipe once both endpoints have closed
// (the reference implementation deliberately leaks it) — in Go this simply
// means the last holder of a *pipeCB lets it become garbage once
// closeReader/closeWriter has run on both sides; there is no separate
// "free" step to perform.
type pipeCB struct {
	k *Kernel

	buf        [PipeCapacity]byte
	readIndex  int
	writeIndex int
	bufferSize int

	readOpen  bool
	writeOpen bool

	hasData  *condVar
	hasSpace *condVar
}

func newPipe(k *Kernel) *pipeCB {
	return &pipeCB{
		k:         k,
		readOpen:  true,
		writeOpen: true,
		hasData:   newCondVar(),
		hasSpace:  newCondVar(),
	}
}

// read implements the reader endpoint. Must be called with k.mu held.
func (p *pipeCB) read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	for p.bufferSize == 0 && p.writeOpen {
		p.k.wait(p.hasData, schedPipe)
	}

	if p.bufferSize == 0 && !p.writeOpen {
		return 0, nil // EOF
	}

	n := 0
	for n < len(buf) {
		buf[n] = p.buf[p.readIndex]
		p.readIndex = (p.readIndex + 1) % PipeCapacity
		n++
		p.bufferSize--
		if p.bufferSize == 0 {
			break
		}
	}

	p.k.broadcast(p.hasSpace)
	return n, nil
}

// write implements the writer endpoint. Must be called with k.mu held.
func (p *pipeCB) write(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	for p.bufferSize == PipeCapacity && p.readOpen {
		p.k.wait(p.hasSpace, schedPipe)
	}

	if !p.readOpen {
		return -1, ErrBrokenPipe
	}

	n := 0
	for n < len(buf) {
		p.buf[p.writeIndex] = buf[n]
		p.writeIndex = (p.writeIndex + 1) % PipeCapacity
		n++
		p.bufferSize++
		if p.bufferSize == PipeCapacity {
			break
		}
	}

	p.k.broadcast(p.hasData)
	return n, nil
}

// closeReader marks the read endpoint gone. Must be called with k.mu held.
func (p *pipeCB) closeReader() {
	if !p.readOpen {
		return
	}
	p.readOpen = false
	p.k.broadcast(p.hasSpace) // release any blocked writer onto the EOF check
}

// closeWriter marks the write endpoint gone. Must be called with k.mu held.
func (p *pipeCB) closeWriter() {
	if !p.writeOpen {
		return
	}
	p.writeOpen = false
	p.k.broadcast(p.hasData) // so blocked readers observe EOF
}

// pipeReaderOps and pipeWriterOps are installed on the two FCBs a pipe
// creates. Cross-role calls (write on the reader fid, read on the writer
// fid) are rejected at this seam, the same contract the reference kernel's
// pipe_reader_write/pipe_writer_read stubs enforce by always returning -1.
var pipeReaderOps = &streamOps{
	read: func(obj interface{}, buf []byte) (int, error) {
		return obj.(*pipeCB).read(buf)
	},
	write: func(obj interface{}, buf []byte) (int, error) {
		return -1, ErrWrongDirection
	},
	close: func(obj interface{}) error {
		obj.(*pipeCB).closeReader()
		return nil
	},
}

var pipeWriterOps = &streamOps{
	read: func(obj interface{}, buf []byte) (int, error) {
		return -1, ErrWrongDirection
	},
	write: func(obj interface{}, buf []byte) (int, error) {
		return obj.(*pipeCB).write(buf)
	},
	close: func(obj interface{}) error {
		obj.(*pipeCB).closeWriter()
		return nil
	},
}

// PipeEndpoints names the two Fids a Pipe() call returns.
type PipeEndpoints struct {
	Read  Fid
	Write Fid
}

// Pipe reserves two FCBs and wires them to a new pipeCB's reader and writer
// endpoints, the Fid-facing form of create_pipe for direct use by callers
// (as opposed to the internal two-pipe wiring Accept performs for sockets).
func (k *Kernel) Pipe() (PipeEndpoints, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	fids, fcbs, ok := k.fcbs.reserve(2)
	if !ok {
		return PipeEndpoints{}, ErrBadFid
	}

	pipe := newPipe(k)
	fcbs[0].ops = pipeReaderOps
	fcbs[0].obj = pipe
	fcbs[1].ops = pipeWriterOps
	fcbs[1].obj = pipe

	return PipeEndpoints{Read: fids[0], Write: fids[1]}, nil
}
