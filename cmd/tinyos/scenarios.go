package main

import (
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/coredump-io/tinyos/kernel"
)

// writeAll loops Write until every byte of data has been accepted, since
// Write (like the POSIX write() it models) may accept fewer bytes than
// asked for when the pipe fills.
func writeAll(k *kernel.Kernel, fid kernel.Fid, data []byte) error {
	for len(data) > 0 {
		n, err := k.Write(fid, data)
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// readExactly loops Read until n bytes have been collected or EOF (a zero
// return) is observed first.
func readExactly(k *kernel.Kernel, fid kernel.Fid, n int) ([]byte, error) {
	buf := make([]byte, 0, n)
	for len(buf) < n {
		chunk := make([]byte, n-len(buf))
		r, err := k.Read(fid, chunk)
		if err != nil {
			return buf, err
		}
		if r == 0 {
			break
		}
		buf = append(buf, chunk[:r]...)
	}
	return buf, nil
}

// runScenario dispatches to one of the concrete stories this demo can walk
// through, each a direct reenactment of a documented testable scenario.
func runScenario(name string, timeout time.Duration) (string, error) {
	switch name {
	case "pipe-backpressure":
		return "pipe-backpressure", scenarioPipeBackpressure()
	case "pipe-eof":
		return "pipe-eof", scenarioPipeEOF()
	case "pipe-broken":
		return "pipe-broken", scenarioPipeBroken()
	case "socket-echo":
		return "socket-echo", scenarioSocketEcho(timeout)
	case "connect-timeout":
		return "connect-timeout", scenarioConnectTimeout(timeout)
	case "process-reap":
		return "process-reap", scenarioProcessReap()
	case "thread-detach":
		return "thread-detach", scenarioThreadDetach()
	default:
		return name, fmt.Errorf("unknown scenario %q", name)
	}
}

func scenarioPipeBackpressure() error {
	k := kernel.Boot()
	ep, err := k.Pipe()
	if err != nil {
		return err
	}

	data := make([]byte, 5000)
	for i := range data {
		data[i] = byte(i % 251)
	}

	var g errgroup.Group
	g.Go(func() error {
		return writeAll(k, ep.Write, data)
	})

	first, err := readExactly(k, ep.Read, 1000)
	if err != nil {
		return err
	}
	second, err := readExactly(k, ep.Read, 4000)
	if err != nil {
		return err
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, b := range first {
		if b != data[i] {
			return fmt.Errorf("first read mismatch at %d: got %d want %d", i, b, data[i])
		}
	}
	for i, b := range second {
		if b != data[1000+i] {
			return fmt.Errorf("second read mismatch at %d: got %d want %d", i, b, data[1000+i])
		}
	}
	return k.Close(ep.Read)
}

func scenarioPipeEOF() error {
	k := kernel.Boot()
	ep, err := k.Pipe()
	if err != nil {
		return err
	}
	if err := writeAll(k, ep.Write, []byte("hello")); err != nil {
		return err
	}
	if err := k.Close(ep.Write); err != nil {
		return err
	}

	buf := make([]byte, 100)
	n, err := k.Read(ep.Read, buf)
	if err != nil {
		return err
	}
	if n != 5 || string(buf[:n]) != "hello" {
		return fmt.Errorf("unexpected read: %q (%d bytes)", buf[:n], n)
	}

	n, err = k.Read(ep.Read, buf)
	if err != nil {
		return err
	}
	if n != 0 {
		return fmt.Errorf("expected EOF, got %d bytes", n)
	}
	return nil
}

func scenarioPipeBroken() error {
	k := kernel.Boot()
	ep, err := k.Pipe()
	if err != nil {
		return err
	}
	if err := k.Close(ep.Read); err != nil {
		return err
	}

	n, err := k.Write(ep.Write, make([]byte, 10))
	if err == nil || n != -1 {
		return fmt.Errorf("expected broken pipe, got n=%d err=%v", n, err)
	}
	return nil
}

func scenarioSocketEcho(timeout time.Duration) error {
	k := kernel.Boot()

	const port = 42
	listener, err := k.Socket(port)
	if err != nil {
		return err
	}
	if err := k.Listen(listener); err != nil {
		return err
	}

	connector, err := k.Socket(kernel.NoPort)
	if err != nil {
		return err
	}

	var g errgroup.Group
	var server kernel.Fid
	g.Go(func() error {
		var err error
		server, err = k.Accept(listener)
		return err
	})
	g.Go(func() error {
		return k.Connect(connector, port, timeout)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := writeAll(k, server, []byte("ping")); err != nil {
		return err
	}
	got, err := readExactly(k, connector, 4)
	if err != nil {
		return err
	}
	if string(got) != "ping" {
		return fmt.Errorf("connector got %q, want %q", got, "ping")
	}

	if err := writeAll(k, connector, []byte("pong")); err != nil {
		return err
	}
	got, err = readExactly(k, server, 4)
	if err != nil {
		return err
	}
	if string(got) != "pong" {
		return fmt.Errorf("server got %q, want %q", got, "pong")
	}

	if err := k.Shutdown(server, kernel.ShutdownBoth); err != nil {
		return err
	}
	if err := k.Shutdown(connector, kernel.ShutdownBoth); err != nil {
		return err
	}

	buf := make([]byte, 1)
	n, err := k.Read(connector, buf)
	if err != nil {
		return err
	}
	if n != 0 {
		return fmt.Errorf("expected EOF after shutdown, got %d bytes", n)
	}

	if err := k.Close(server); err != nil {
		return err
	}
	return k.Close(connector)
}

func scenarioConnectTimeout(timeout time.Duration) error {
	k := kernel.Boot()

	const port = 7
	listener, err := k.Socket(port)
	if err != nil {
		return err
	}
	if err := k.Listen(listener); err != nil {
		return err
	}

	connector, err := k.Socket(kernel.NoPort)
	if err != nil {
		return err
	}

	err = k.Connect(connector, port, timeout)
	if err != kernel.ErrTimeout {
		return fmt.Errorf("expected timeout, got %v", err)
	}
	return nil
}

func scenarioProcessReap() error {
	k := kernel.Boot()
	done := make(chan error, 1)

	parentTask := func(self *kernel.Thread, argl int, args []byte) int {
		parentPid := k.GetPid(self)

		var childSelfPid, childPPid kernel.Pid
		childTask := func(childSelf *kernel.Thread, argl int, args []byte) int {
			childSelfPid = k.GetPid(childSelf)
			childPPid = k.GetPPid(childSelf)
			return 42
		}

		childPid := k.Exec(self, childTask, 0, nil)
		if childPid == kernel.NoProc {
			done <- fmt.Errorf("exec failed")
			return 1
		}

		pid, status := k.WaitChild(self, kernel.NoProc)
		if childSelfPid != childPid {
			done <- fmt.Errorf("child GetPid = %v, want %v", childSelfPid, childPid)
			return 1
		}
		if childPPid != parentPid {
			done <- fmt.Errorf("child GetPPid = %v, want %v", childPPid, parentPid)
			return 1
		}
		if pid != childPid || status != 42 {
			done <- fmt.Errorf("unexpected reap: pid=%v status=%v", pid, status)
			return 1
		}

		pid2, _ := k.WaitChild(self, kernel.NoProc)
		if pid2 != kernel.NoProc {
			done <- fmt.Errorf("expected NoProc on second wait, got %v", pid2)
			return 1
		}

		done <- nil
		return 0
	}

	if pid := k.Exec(nil, parentTask, 0, nil); pid == kernel.NoProc {
		return fmt.Errorf("exec failed")
	}
	return <-done
}

func scenarioThreadDetach() error {
	k := kernel.Boot()
	done := make(chan error, 1)

	rootTask := func(self *kernel.Thread, argl int, args []byte) int {
		var workerSelfTid kernel.Tid
		recorded := make(chan struct{})
		workerTask := func(workerSelf *kernel.Thread, argl int, args []byte) int {
			workerSelfTid = k.Self(workerSelf)
			close(recorded)
			time.Sleep(10 * time.Millisecond)
			return 7
		}

		tid := k.CreateThread(self, workerTask, 0, nil)
		<-recorded // let the worker record its own Self() first
		if workerSelfTid != tid {
			done <- fmt.Errorf("worker Self() = %v, want %v", workerSelfTid, tid)
			return 1
		}

		if err := k.Detach(self, tid); err != nil {
			done <- fmt.Errorf("detach failed: %v", err)
			return 1
		}

		_, err := k.Join(self, tid)
		if err != kernel.ErrBadState {
			done <- fmt.Errorf("expected join-on-detached to fail, got %v", err)
			return 1
		}

		done <- nil
		return 0
	}

	if pid := k.Exec(nil, rootTask, 0, nil); pid == kernel.NoProc {
		return fmt.Errorf("exec failed")
	}
	return <-done
}
