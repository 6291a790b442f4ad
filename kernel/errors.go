package kernel

import "github.com/pkg/errors"

// Sentinel errors of the syscall surface. Exec and WaitChild report failure
// only through NoProc; the stream (Read/Write/Close), socket and thread calls
// return one of these errors, alongside NoFile or -1 where they also return a
// Fid or a byte count.
var (
	// ErrBrokenPipe is returned by a pipe write once its reader has closed.
	ErrBrokenPipe = errors.New("kernel: broken pipe")
	// ErrWrongDirection is returned when a reader endpoint is asked to write,
	// or a writer endpoint is asked to read.
	ErrWrongDirection = errors.New("kernel: wrong direction on pipe endpoint")
	// ErrClosed names a closed stream. No operation in this package returns
	// it: a closed socket reports ErrNotPeer and a released Fid ErrBadFid.
	ErrClosed = errors.New("kernel: stream is closed")
	// ErrBadState is returned when a socket operation requires a state the
	// socket is not in (e.g. Listen on a socket already listening).
	ErrBadState = errors.New("kernel: socket in wrong state for operation")
	// ErrPortInUse is returned by Listen when another socket already owns
	// the requested port.
	ErrPortInUse = errors.New("kernel: port already bound")
	// ErrNoListener is returned by Connect when the target port has no
	// listening socket.
	ErrNoListener = errors.New("kernel: no listener on port")
	// ErrTimeout is returned by Connect when the accept rendezvous does not
	// complete before the timeout elapses.
	ErrTimeout = errors.New("kernel: connect timed out")
	// ErrNotPeer is returned by Read/Write on a non-Peer socket, and by Write
	// on a Peer socket whose write direction has been shut down.
	ErrNotPeer = errors.New("kernel: socket is not connected")
	// ErrBadFid is returned when a Fid does not name a live FCB.
	ErrBadFid = errors.New("kernel: invalid file id")
	// ErrNoSuchThread is returned by Join/Detach when the given Tid names no
	// currently tracked thread.
	ErrNoSuchThread = errors.New("kernel: no such thread")
)
