package kernel

// streamOps is the vtable every open file id dispatches through: Read,
// Write and Close each take the FCB's opaque stream object. A pipe's reader
// and writer endpoints install different vtables so that a wrong-direction
// call (write on a reader fid, read on a writer fid) is a runtime error
// rather than something the type system could catch — this mirrors the
// reference kernel's file_ops dispatch exactly. (The core keeps this one
// dynamic-dispatch seam instead of the distinct-
// handle-type refactor §9 of spec.md suggests for the pipe halves: sockets
// and the info stream share the same FCB table and need the same seam, so
// splitting only the pipe would leave two dispatch mechanisms side by side.)
type streamOps struct {
	read  func(obj interface{}, buf []byte) (int, error)
	write func(obj interface{}, buf []byte) (int, error)
	close func(obj interface{}) error
}

// fileControlBlock is a table entry: a reference-counted binding from a Fid
// to a vtable and an opaque stream object (PIPCB, SCB or the info-stream
// object).
type fileControlBlock struct {
	refCount int
	ops      *streamOps
	obj      interface{}
}

// maxFCB bounds the system-wide open-file table: every process's fidt slots
// point into this shared pool, refcounted across fork/exec inheritance
// exactly like the reference FCB table.
const maxFCB = MaxProc * MaxFileID

// fcbTable is the system-wide file-control-block pool. It is the Go
// stand-in for the reference kernel's (externally supplied) FCB_reserve /
// FCB_get / FCB_incref / FCB_decref machinery: out of spec.md's scope as an
// "external collaborator", but something has to back it in a runnable
// program, so it lives here, shaped like the reference kernel's own fixed
// FCB array (a flat array of slots plus a free list, rather than a map,
// since the table size is fixed up front).
type fcbTable struct {
	slots    [maxFCB]fileControlBlock
	used     [maxFCB]bool
	freeList []int
}

func newFCBTable() *fcbTable {
	t := &fcbTable{freeList: make([]int, maxFCB)}
	for i := range t.freeList {
		t.freeList[i] = maxFCB - 1 - i
	}
	return t
}

// reserve allocates n fresh file ids. It either returns all n, or none (on
// exhaustion), matching FCB_reserve's all-or-nothing contract.
func (t *fcbTable) reserve(n int) ([]Fid, []*fileControlBlock, bool) {
	if len(t.freeList) < n {
		return nil, nil, false
	}
	fids := make([]Fid, n)
	fcbs := make([]*fileControlBlock, n)
	for i := 0; i < n; i++ {
		idx := t.freeList[len(t.freeList)-1]
		t.freeList = t.freeList[:len(t.freeList)-1]
		t.used[idx] = true
		t.slots[idx] = fileControlBlock{refCount: 1}
		fids[i] = Fid(idx)
		fcbs[i] = &t.slots[idx]
	}
	return fids, fcbs, true
}

// get returns the live FCB for fid, or nil if fid is out of range or not
// currently allocated.
func (t *fcbTable) get(fid Fid) *fileControlBlock {
	if fid < 0 || int(fid) >= maxFCB || !t.used[fid] {
		return nil
	}
	return &t.slots[fid]
}

func (t *fcbTable) incref(fcb *fileControlBlock) {
	fcb.refCount++
}

// decref drops one reference; once it reaches zero the stream is closed
// (its vtable Close is invoked) and its slot returned to the free list.
func (t *fcbTable) decref(fid Fid, fcb *fileControlBlock) {
	fcb.refCount--
	if fcb.refCount > 0 {
		return
	}
	if fcb.ops != nil && fcb.ops.close != nil {
		fcb.ops.close(fcb.obj)
	}
	t.used[fid] = false
	fcb.ops = nil
	fcb.obj = nil
	t.freeList = append(t.freeList, int(fid))
}

// Read and Write are the generic syscall-surface entry points every open
// fid answers to, whatever kind of stream backs it (pipe endpoint, socket,
// info cursor): they look fid up in the FCB table and dispatch through its
// vtable, under the kernel's single lock, exactly the way the reference
// kernel's sys_Read/sys_Write go through FCB->streamfunc->Read/Write rather
// than switching on stream type themselves.
func (k *Kernel) Read(fid Fid, buf []byte) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	fcb := k.fcbs.get(fid)
	if fcb == nil || fcb.ops == nil || fcb.ops.read == nil {
		return -1, ErrBadFid
	}
	return fcb.ops.read(fcb.obj, buf)
}

func (k *Kernel) Write(fid Fid, buf []byte) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	fcb := k.fcbs.get(fid)
	if fcb == nil || fcb.ops == nil || fcb.ops.write == nil {
		return -1, ErrBadFid
	}
	return fcb.ops.write(fcb.obj, buf)
}

// Close closes fid directly (as opposed to going through fcb refcounting
// via process exit). It is exposed for callers, such as the demo CLIs, that
// manage a fid outside of any process's fidt.
func (k *Kernel) Close(fid Fid) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	fcb := k.fcbs.get(fid)
	if fcb == nil {
		return ErrBadFid
	}
	k.fcbs.decref(fid, fcb)
	return nil
}
