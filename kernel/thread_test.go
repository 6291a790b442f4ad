package kernel

import (
	"testing"
	"time"
)

func TestThreadJoin(t *testing.T) {
	k := Boot()
	done := make(chan struct{})

	rootTask := func(self *Thread, argl int, args []byte) int {
		workerTask := func(workerSelf *Thread, argl int, args []byte) int {
			return 9
		}

		tid := k.CreateThread(self, workerTask, 0, nil)
		exitval, err := k.Join(self, tid)
		if err != nil {
			t.Errorf("Join returned error: %v", err)
		}
		if exitval != 9 {
			t.Errorf("Join exitval = %d, want 9", exitval)
		}

		close(done)
		return 0
	}

	if pid := k.Exec(nil, rootTask, 0, nil); pid == NoProc {
		t.Fatalf("Exec returned NoProc")
	}
	<-done
}

func TestSelfResolvesToRunningThread(t *testing.T) {
	k := Boot()
	done := make(chan struct{})

	rootTask := func(self *Thread, argl int, args []byte) int {
		var workerTid, workerSelfTid Tid
		workerDone := make(chan struct{})
		workerTask := func(workerSelf *Thread, argl int, args []byte) int {
			workerSelfTid = k.Self(workerSelf)
			close(workerDone)
			return 0
		}

		workerTid = k.CreateThread(self, workerTask, 0, nil)
		<-workerDone

		if workerSelfTid != workerTid {
			t.Errorf("worker's Self() = %v, want %v", workerSelfTid, workerTid)
		}
		if k.Self(self) == workerTid {
			t.Errorf("root's Self() collided with the worker's tid")
		}

		k.Join(self, workerTid)
		close(done)
		return 0
	}

	if pid := k.Exec(nil, rootTask, 0, nil); pid == NoProc {
		t.Fatalf("Exec returned NoProc")
	}
	<-done
}

func TestThreadDetachThenJoinFails(t *testing.T) {
	k := Boot()
	done := make(chan struct{})

	rootTask := func(self *Thread, argl int, args []byte) int {
		workerTask := func(workerSelf *Thread, argl int, args []byte) int {
			time.Sleep(10 * time.Millisecond)
			return 7
		}

		tid := k.CreateThread(self, workerTask, 0, nil)
		if err := k.Detach(self, tid); err != nil {
			t.Errorf("Detach returned error: %v", err)
		}

		if _, err := k.Join(self, tid); err != ErrBadState {
			t.Errorf("Join on detached thread = %v, want ErrBadState", err)
		}

		close(done)
		return 0
	}

	if pid := k.Exec(nil, rootTask, 0, nil); pid == NoProc {
		t.Fatalf("Exec returned NoProc")
	}
	<-done
}

func TestThreadJoinAlreadyExitedReturnsImmediately(t *testing.T) {
	k := Boot()
	done := make(chan struct{})

	rootTask := func(self *Thread, argl int, args []byte) int {
		workerTask := func(workerSelf *Thread, argl int, args []byte) int {
			return 3
		}

		tid := k.CreateThread(self, workerTask, 0, nil)
		time.Sleep(10 * time.Millisecond) // let the worker exit first

		if _, err := k.Join(self, tid); err != nil {
			t.Errorf("Join on already-exited thread returned error: %v", err)
		}

		close(done)
		return 0
	}

	if pid := k.Exec(nil, rootTask, 0, nil); pid == NoProc {
		t.Fatalf("Exec returned NoProc")
	}
	<-done
}

func TestJoinCrossProcessThreadFails(t *testing.T) {
	k := Boot()
	done := make(chan struct{})
	tidCh := make(chan Tid, 1)

	otherProcTask := func(self *Thread, argl int, args []byte) int {
		workerTask := func(workerSelf *Thread, argl int, args []byte) int {
			time.Sleep(50 * time.Millisecond)
			return 1
		}
		tidCh <- k.CreateThread(self, workerTask, 0, nil)
		time.Sleep(100 * time.Millisecond)
		return 0
	}

	rootTask := func(self *Thread, argl int, args []byte) int {
		if pid := k.Exec(self, otherProcTask, 0, nil); pid == NoProc {
			t.Errorf("Exec returned NoProc")
		}
		tid := <-tidCh

		if _, err := k.Join(self, tid); err != ErrBadState {
			t.Errorf("cross-process Join = %v, want ErrBadState", err)
		}

		close(done)
		return 0
	}

	if pid := k.Exec(nil, rootTask, 0, nil); pid == NoProc {
		t.Fatalf("Exec returned NoProc")
	}
	<-done
}
