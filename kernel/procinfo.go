package kernel

import "io"

// ProcInfo is one process table snapshot record, the Go analogue of the
// reference kernel's procinfo struct, returned in pid order by repeated
// ReadInfo calls against the Fid OpenInfo hands back. It carries no main
// task field.
type ProcInfo struct {
	Pid         Pid
	ParentPid   Pid
	Alive       bool
	ArgLen      int
	Args        []byte
	ThreadCount int
}

// infoStream is the OCB (open-info control block): just the cursor over
// the process table that the reference kernel's info_read advances one
// slot per call.
type infoStream struct {
	k       *Kernel
	nextPid Pid
	done    bool
}

// OpenInfo reserves an FCB bound to a fresh process-table cursor. Each
// ReadInfo against the returned Fid decodes exactly one ProcInfo; ReadInfo
// returns io.EOF once the cursor runs past the last allocated pid or lands
// on a Free slot, the same two distinct EOF causes info_read distinguishes.
// The generic Read and Write on this Fid fail with ErrWrongDirection.
func (k *Kernel) OpenInfo() (Fid, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	fids, fcbs, ok := k.fcbs.reserve(1)
	if !ok {
		return NoFile, ErrBadFid
	}

	fcbs[0].ops = infoOps
	fcbs[0].obj = &infoStream{k: k, nextPid: 0}
	return fids[0], nil
}

// ReadInfo decodes the next ProcInfo record from fid, previously obtained
// from OpenInfo. It returns io.EOF once the process table has been
// exhausted.
func (k *Kernel) ReadInfo(fid Fid) (ProcInfo, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	fcb := k.fcbs.get(fid)
	if fcb == nil || fcb.ops != infoOps {
		return ProcInfo{}, ErrBadFid
	}
	st := fcb.obj.(*infoStream)
	return st.next()
}

func (st *infoStream) next() (ProcInfo, error) {
	if st.done {
		return ProcInfo{}, io.EOF
	}

	pcb := &st.k.procs.table[st.nextPid]

	info := ProcInfo{
		Pid:         st.nextPid,
		ParentPid:   NoProc,
		Alive:       pcb.state == processAlive,
		ArgLen:      pcb.argl,
		Args:        append([]byte(nil), pcb.args...),
		ThreadCount: pcb.numThreads,
	}
	if pcb.parent != nil {
		info.ParentPid = pcb.parent.pid
	}

	st.nextPid++
	if int(st.nextPid) >= MaxProc {
		st.done = true // ran off the end of the table
	} else if st.k.procs.table[st.nextPid].state == processFree {
		st.done = true // landed on an unallocated slot
	}

	return info, nil
}

var infoOps = &streamOps{
	read: func(obj interface{}, buf []byte) (int, error) {
		return -1, ErrWrongDirection
	},
	write: func(obj interface{}, buf []byte) (int, error) {
		return -1, ErrWrongDirection
	},
	close: func(obj interface{}) error {
		return nil
	},
}
