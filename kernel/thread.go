package kernel

// ptcb is the Process Thread Control Block: the per-thread bookkeeping that
// outlives the thread itself just long enough for a joiner to collect its
// exit value, mirroring the reference kernel's PTCB.
type ptcb struct {
	n node

	tid Tid

	task Task
	argl int
	args []byte

	exitValue  int
	exitedFlag bool
	isDetached bool
	isMain     bool
	refCount   int

	joinVar *condVar
	pcb     *processCB
}

// Thread is a Go goroutine standing in for the reference kernel's TCB: the
// gated goroutine created by spawnThread, paired with the PTCB that carries
// its task/join bookkeeping.
type Thread struct {
	pcb  *processCB
	ptcb *ptcb
	gate chan struct{}
}

// CreateThread starts a new thread in caller's process running task, and
// returns a Tid a later Join or Detach call can use to refer to it.
func (k *Kernel) CreateThread(caller *Thread, task Task, argl int, args []byte) Tid {
	k.mu.Lock()
	defer k.mu.Unlock()

	proc := caller.pcb
	newThread := k.spawnThread(proc, k.runAnotherThread)

	pt := &ptcb{task: task, argl: argl, args: args, joinVar: newCondVar(), pcb: proc}
	initNode(&pt.n, pt)
	newThread.ptcb = pt

	k.nextTid++
	pt.tid = k.nextTid
	k.threads[pt.tid] = pt

	proc.numThreads++
	proc.ptcbHead.pushBack(&pt.n)

	k.wakeup(newThread)
	return pt.tid
}

// runAnotherThread is the trampoline spawnThread runs for every
// CreateThread'd thread, mirroring start_another_thread.
func (k *Kernel) runAnotherThread(t *Thread) {
	pt := t.ptcb
	if pt.task == nil {
		return
	}
	exitval := pt.task(t, pt.argl, pt.args)
	k.ThreadExit(t, exitval)
}

// Self returns t's own Tid.
func (k *Kernel) Self(t *Thread) Tid {
	return t.ptcb.tid
}

// Join blocks until tid exits, returning its exit value, as long as tid
// names a live, non-detached thread of the caller's own process. If tid has
// already exited by the time Join is called, Join returns immediately with
// success but (matching the reference kernel's own sys_ThreadJoin, which
// only fills the out-param on the waiting path) no usable exit value. A Join
// blocked on a thread that is then detached returns ErrBadState.
func (k *Kernel) Join(caller *Thread, tid Tid) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	pt, ok := k.threads[tid]
	if !ok {
		return 0, ErrNoSuchThread
	}

	if !pt.isDetached && !pt.exitedFlag && pt.pcb == caller.pcb {
		pt.refCount++
		for !pt.exitedFlag && !pt.isDetached {
			k.wait(pt.joinVar, schedUser)
		}
		pt.refCount--
		if pt.isDetached {
			return 0, ErrBadState
		}

		exitval := pt.exitValue
		if pt.refCount <= 0 {
			unlink(&pt.n)
			delete(k.threads, tid)
		}
		return exitval, nil
	}

	if pt.exitedFlag {
		return 0, nil
	}
	return 0, ErrBadState
}

// Detach marks tid as detached: no future Join call will block waiting for
// it, and any Join already blocked on it is released. Only legal against a
// live thread of the caller's own process.
func (k *Kernel) Detach(caller *Thread, tid Tid) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	pt, ok := k.threads[tid]
	if !ok {
		return ErrNoSuchThread
	}
	if pt.exitedFlag || pt.pcb != caller.pcb {
		return ErrBadState
	}

	pt.isDetached = true
	k.broadcast(pt.joinVar)
	return nil
}

// ThreadExit terminates the calling thread, waking any joiners and, if it
// is the last thread of its process, freeing every PTCB still on that
// process's thread list.
func (k *Kernel) ThreadExit(t *Thread, exitval int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.threadExitLocked(t, exitval)
}

func (k *Kernel) threadExitLocked(t *Thread, exitval int) {
	pt := t.ptcb
	pt.exitedFlag = true
	pt.exitValue = exitval
	k.broadcast(pt.joinVar)

	proc := t.pcb
	proc.numThreads--
	if pt.isMain {
		proc.exitVal = exitval
	}

	if proc.numThreads == 0 {
		for !proc.ptcbHead.empty() {
			n := proc.ptcbHead.popFront()
			finished := n.owner.(*ptcb)
			delete(k.threads, finished.tid)
		}
	}

	k.sleep(threadExited, schedUser)
}
