package kernel

// Task is the entry point of a process's main thread or of a thread created
// by CreateThread. self is the Thread the task is running as, needed since
// Go has no notion of "current thread" the way CURTHREAD/CURPROC are
// available implicitly in the reference kernel: any further syscall a task
// body wants to make (Exec, CreateThread, WaitChild, ...) takes self as its
// first argument. The return value becomes the thread's (or, for a main
// thread, the process's) exit value, exactly as call's return value does in
// start_main_thread/start_another_thread.
type Task func(self *Thread, argl int, args []byte) int

type processState int

const (
	processFree processState = iota
	processAlive
	processZombie
)

// processCB is the Process Control Block, one per table slot. Its pid is
// fixed for the slot's lifetime (the slot's index); only state and the rest
// of the fields are reset between occupants.
type processCB struct {
	pid    Pid
	state  processState
	parent *processCB

	argl     int
	args     []byte
	mainTask Task

	mainThread *Thread
	numThreads int
	exitVal    int

	fidt [MaxFileID]Fid

	childrenList list
	childrenNode node
	exitedList   list
	exitedNode   node

	ptcbHead  list
	childExit *condVar
}

func initProcessCB(pcb *processCB, pid Pid) {
	*pcb = processCB{pid: pid, state: processFree}
	for i := range pcb.fidt {
		pcb.fidt[i] = NoFile
	}
	initList(&pcb.childrenList)
	initNode(&pcb.childrenNode, pcb)
	initList(&pcb.exitedList)
	initNode(&pcb.exitedNode, pcb)
	initList(&pcb.ptcbHead)
	pcb.childExit = newCondVar()
}

// procTable is the fixed-size process table plus its free list, the Go
// stand-in for PT[MAX_PROC] and the reference kernel's pcb_freelist.
type procTable struct {
	table        [MaxProc]processCB
	freeList     []Pid
	processCount int
}

func newProcTable() *procTable {
	t := &procTable{}
	for p := 0; p < MaxProc; p++ {
		initProcessCB(&t.table[p], Pid(p))
	}
	t.freeList = make([]Pid, MaxProc)
	for i := range t.freeList {
		t.freeList[i] = Pid(MaxProc - 1 - i)
	}
	return t
}

// acquire pops a free slot and marks it Alive, or returns nil once the
// table is exhausted. Must be called with the owning Kernel's mutex held.
func (t *procTable) acquire() *processCB {
	if len(t.freeList) == 0 {
		return nil
	}
	pid := t.freeList[len(t.freeList)-1]
	t.freeList = t.freeList[:len(t.freeList)-1]
	pcb := &t.table[pid]
	pcb.state = processAlive
	t.processCount++
	return pcb
}

// release resets pcb to Free and returns its slot to the free list.
func (t *procTable) release(pcb *processCB) {
	pid := pcb.pid
	initProcessCB(pcb, pid)
	t.freeList = append(t.freeList, pid)
	t.processCount--
}

// get returns the PCB for pid, or nil if pid is out of range or the slot is
// currently Free.
func (t *procTable) get(pid Pid) *processCB {
	if pid < 0 || int(pid) >= MaxProc {
		return nil
	}
	pcb := &t.table[pid]
	if pcb.state == processFree {
		return nil
	}
	return pcb
}

// Exec creates a new process running task as its main thread, inheriting
// caller's open files. caller may be nil only when the new process lands on
// pid 0 or 1 (the idle process Boot creates, and the first process Exec'd
// after it), which are parentless; every other call must supply the calling
// thread, since a new process's parent and inherited file table come from it.
func (k *Kernel) Exec(caller *Thread, task Task, argl int, args []byte) Pid {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.execLocked(caller, task, argl, args)
}

func (k *Kernel) execLocked(caller *Thread, task Task, argl int, args []byte) Pid {
	newproc := k.procs.acquire()
	if newproc == nil {
		return NoProc
	}

	if newproc.pid <= 1 {
		// Processes with pid<=1 (the idle process and init) are parentless
		// and treated specially, whatever caller happened to invoke Exec.
		newproc.parent = nil
	} else {
		parent := caller.pcb
		newproc.parent = parent
		parent.childrenList.pushFront(&newproc.childrenNode)

		for i := range parent.fidt {
			fid := parent.fidt[i]
			if fid == NoFile {
				continue
			}
			if fcb := k.fcbs.get(fid); fcb != nil {
				k.fcbs.incref(fcb)
			}
			newproc.fidt[i] = fid
		}
	}

	newproc.mainTask = task
	newproc.argl = argl
	if args != nil {
		newproc.args = append([]byte(nil), args...)
	}

	if task != nil {
		newproc.mainThread = k.spawnThread(newproc, k.runMainThread)
		newproc.numThreads++

		pt := &ptcb{joinVar: newCondVar(), pcb: newproc, isMain: true}
		initNode(&pt.n, pt)
		newproc.mainThread.ptcb = pt
		k.nextTid++
		pt.tid = k.nextTid
		k.threads[pt.tid] = pt
		newproc.ptcbHead.pushBack(&pt.n)

		k.wakeup(newproc.mainThread)
	}

	return newproc.pid
}

// runMainThread is the trampoline spawnThread runs for a process's main
// thread: it reads the task/argl/args the PCB was given and, once the task
// returns, calls Exit with its result. This mirrors start_main_thread
// exactly.
func (k *Kernel) runMainThread(t *Thread) {
	call := t.pcb.mainTask
	argl := t.pcb.argl
	args := t.pcb.args
	exitval := call(t, argl, args)
	k.Exit(t, exitval)
}

// GetPid returns the pid of the process owning t.
func (k *Kernel) GetPid(t *Thread) Pid {
	return t.pcb.pid
}

// GetPPid returns the pid of t's process's parent, or NoProc if it has
// none (pid 0 or 1). A process reparented by Exit reports init's pid 1.
func (k *Kernel) GetPPid(t *Thread) Pid {
	k.mu.Lock()
	defer k.mu.Unlock()
	if t.pcb.parent == nil {
		return NoProc
	}
	return t.pcb.parent.pid
}

// WaitChild waits for the child identified by cpid to exit, or for any
// child if cpid is NoProc, and returns its pid and exit status. It returns
// NoProc if cpid does not name a legal child, or (for the "any child" form)
// if the caller currently has no children at all.
func (k *Kernel) WaitChild(t *Thread, cpid Pid) (Pid, int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	pid, status, _ := k.waitChildLocked(t, cpid)
	return pid, status
}

func (k *Kernel) waitChildLocked(t *Thread, cpid Pid) (Pid, int, error) {
	if cpid != NoProc {
		return k.waitSpecificChildLocked(t.pcb, cpid)
	}
	return k.waitAnyChildLocked(t.pcb)
}

func (k *Kernel) waitSpecificChildLocked(parent *processCB, cpid Pid) (Pid, int, error) {
	if cpid < 0 || int(cpid) >= MaxProc {
		return NoProc, 0, ErrBadFid
	}
	child := &k.procs.table[cpid]
	if child.state == processFree || child.parent != parent {
		return NoProc, 0, ErrBadFid
	}

	for child.state == processAlive {
		k.wait(parent.childExit, schedUser)
	}

	status := child.exitVal
	k.cleanupZombieLocked(child)
	return cpid, status, nil
}

func (k *Kernel) waitAnyChildLocked(parent *processCB) (Pid, int, error) {
	if parent.childrenList.empty() {
		return NoProc, 0, nil
	}

	for parent.exitedList.empty() {
		k.wait(parent.childExit, schedUser)
	}

	n := parent.exitedList.front()
	child := n.owner.(*processCB)
	cpid := child.pid
	status := child.exitVal
	k.cleanupZombieLocked(child)
	return cpid, status, nil
}

func (k *Kernel) cleanupZombieLocked(child *processCB) {
	unlink(&child.childrenNode)
	unlink(&child.exitedNode)
	k.procs.release(child)
}

// Exit terminates the calling thread's process: the pid-1 (init) process
// first drains every child by waiting for all of them, file descriptors are
// released, surviving children are reparented onto init, already-exited
// children are spliced onto init's exited list, and the process itself is
// pushed onto its own parent's exited list before becoming a zombie.
func (k *Kernel) Exit(t *Thread, exitval int) {
	k.mu.Lock()
	defer k.mu.Unlock()

	curproc := t.pcb

	if curproc.pid == 1 {
		for {
			cpid, _, _ := k.waitChildLocked(t, NoProc)
			if cpid == NoProc {
				break
			}
		}
	}

	curproc.args = nil

	for i := range curproc.fidt {
		fid := curproc.fidt[i]
		if fid == NoFile {
			continue
		}
		if fcb := k.fcbs.get(fid); fcb != nil {
			k.fcbs.decref(fid, fcb)
		}
		curproc.fidt[i] = NoFile
	}

	initpcb := &k.procs.table[1]

	for !curproc.childrenList.empty() {
		n := curproc.childrenList.popFront()
		child := n.owner.(*processCB)
		child.parent = initpcb
		initpcb.childrenList.pushFront(&child.childrenNode)
	}

	if !curproc.exitedList.empty() {
		initpcb.exitedList.appendList(&curproc.exitedList)
		k.broadcast(initpcb.childExit)
	}

	if curproc.parent != nil {
		curproc.parent.exitedList.pushFront(&curproc.exitedNode)
		k.broadcast(curproc.parent.childExit)
	}

	curproc.mainThread = nil
	curproc.state = processZombie
	curproc.exitVal = exitval

	k.threadExitLocked(t, exitval)
}
