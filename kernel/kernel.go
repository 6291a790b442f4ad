package kernel

// Boot constructs a fresh Kernel and runs the one piece of bootstrap the
// reference kernel's initialize_processes performs directly: Exec'ing a
// task-less "idle" process that must land on pid 0. Everything past that
// (creating an init process on pid 1, accepting further Execs) is left to
// the caller, since this package has no boot.c of its own to mirror.
func Boot() *Kernel {
	k := &Kernel{
		procs:   *newProcTable(),
		fcbs:    *newFCBTable(),
		threads: make(map[Tid]*ptcb),
	}
	// Each PCB's lists are sentinel-headed and point at their own address,
	// so the copied table's slots are re-initialised in place.
	for p := range k.procs.table {
		initProcessCB(&k.procs.table[p], Pid(p))
	}

	if pid := k.execLocked(nil, nil, 0, nil); pid != 0 {
		panic("kernel: bootstrap idle process did not land on pid 0")
	}
	return k
}
