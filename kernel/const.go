package kernel

// Fixed table sizes and sentinel values, mirroring the reference kernel's
// constants (MAX_PROC, MAX_FILEID, MAX_PORT, CAP, NOPROC, NOFILE, NOPORT).
// There is no CLOSED endpoint sentinel: pipe endpoints track liveness with
// booleans.
const (
	// MaxProc is the size of the process table.
	MaxProc = 256

	// MaxFileID is the number of file descriptors a single process may hold.
	MaxFileID = 64

	// MaxPort is the highest legal port number; ports run [0, MaxPort].
	MaxPort = 1023

	// PipeCapacity is the fixed size of a pipe's circular byte buffer.
	PipeCapacity = 4096
)

// Pid identifies a process; it is an index into the process table.
type Pid int

// Tid identifies a thread; it is the identity of a PTCB.
type Tid uintptr

// Fid identifies an open file/stream, indexing the FCB table.
type Fid int

const (
	// NoProc is returned where a Pid is expected but there is none.
	NoProc Pid = -1
	// NoFile is returned where a Fid is expected but allocation failed.
	NoFile Fid = -1
	// NoPort marks a socket that is not bound to any port.
	NoPort = -1
)

// ShutdownMode selects which half of a peer socket Shutdown disables.
type ShutdownMode int

const (
	ShutdownRead ShutdownMode = iota
	ShutdownWrite
	ShutdownBoth
)
