package kernel

import (
	"sync"
	"testing"
)

func TestPipeRoundTrip(t *testing.T) {
	k := Boot()
	ep, err := k.Pipe()
	if err != nil {
		t.Fatalf("Pipe returned error: %v", err)
	}

	msg := []byte("hello")
	n, err := k.Write(ep.Write, msg)
	if err != nil || n != len(msg) {
		t.Fatalf("Write = %d, %v; want %d, nil", n, err, len(msg))
	}

	buf := make([]byte, 100)
	n, err = k.Read(ep.Read, buf)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if string(buf[:n]) != "hello" {
		t.Fatalf("Read = %q, want %q", buf[:n], "hello")
	}
}

func TestPipeEOF(t *testing.T) {
	k := Boot()
	ep, err := k.Pipe()
	if err != nil {
		t.Fatalf("Pipe returned error: %v", err)
	}

	if _, err := k.Write(ep.Write, []byte("hello")); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if err := k.Close(ep.Write); err != nil {
		t.Fatalf("Close(write) returned error: %v", err)
	}

	buf := make([]byte, 100)
	n, err := k.Read(ep.Read, buf)
	if err != nil || n != 5 || string(buf[:n]) != "hello" {
		t.Fatalf("first Read = %d, %q, %v; want 5, hello, nil", n, buf[:n], err)
	}

	n, err = k.Read(ep.Read, buf)
	if err != nil || n != 0 {
		t.Fatalf("second Read = %d, %v; want 0, nil (EOF)", n, err)
	}
}

func TestPipeBrokenPipe(t *testing.T) {
	k := Boot()
	ep, err := k.Pipe()
	if err != nil {
		t.Fatalf("Pipe returned error: %v", err)
	}

	if err := k.Close(ep.Read); err != nil {
		t.Fatalf("Close(read) returned error: %v", err)
	}

	n, err := k.Write(ep.Write, make([]byte, 10))
	if err != ErrBrokenPipe || n != -1 {
		t.Fatalf("Write on broken pipe = %d, %v; want -1, ErrBrokenPipe", n, err)
	}
}

func TestPipeBackpressure(t *testing.T) {
	k := Boot()
	ep, err := k.Pipe()
	if err != nil {
		t.Fatalf("Pipe returned error: %v", err)
	}

	data := make([]byte, 5000)
	for i := range data {
		data[i] = byte(i % 251)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		total := 0
		for total < len(data) {
			n, err := k.Write(ep.Write, data[total:])
			if err != nil {
				t.Errorf("Write returned error: %v", err)
				return
			}
			total += n
		}
	}()

	first := readN(t, k, ep.Read, 1000)
	second := readN(t, k, ep.Read, 4000)
	wg.Wait()

	for i, b := range first {
		if b != data[i] {
			t.Fatalf("first[%d] = %d, want %d", i, b, data[i])
		}
	}
	for i, b := range second {
		if b != data[1000+i] {
			t.Fatalf("second[%d] = %d, want %d", i, b, data[1000+i])
		}
	}
}

func readN(t *testing.T, k *Kernel, fid Fid, n int) []byte {
	t.Helper()
	out := make([]byte, 0, n)
	for len(out) < n {
		chunk := make([]byte, n-len(out))
		r, err := k.Read(fid, chunk)
		if err != nil {
			t.Fatalf("Read returned error: %v", err)
		}
		if r == 0 {
			t.Fatalf("unexpected EOF after %d of %d bytes", len(out), n)
		}
		out = append(out, chunk[:r]...)
	}
	return out
}

func TestPipeBufferSizeInvariant(t *testing.T) {
	k := Boot()
	ep, err := k.Pipe()
	if err != nil {
		t.Fatalf("Pipe returned error: %v", err)
	}

	fcb := k.fcbs.get(ep.Read)
	p := fcb.obj.(*pipeCB)

	if _, err := k.Write(ep.Write, make([]byte, PipeCapacity)); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if p.bufferSize != PipeCapacity {
		t.Fatalf("bufferSize = %d, want %d", p.bufferSize, PipeCapacity)
	}
	if p.bufferSize < 0 || p.bufferSize > PipeCapacity {
		t.Fatalf("bufferSize %d out of [0, %d]", p.bufferSize, PipeCapacity)
	}
}
