// Package kernel is the core of a small teaching operating system: process
// and thread lifecycle, a byte-pipe primitive, and a stream-socket primitive
// built on top of the pipe.
//
// Sockets are realized as two back-to-back pipes; peer sockets multiplex
// pipe operations, and accept/connect rendezvous through the condition
// variables exposed by Kernel. Every exported syscall-shaped method
// (Exec, Exit, WaitChild, Socket, Listen, Accept, Connect, ...) executes
// with the Kernel's single big lock held across its critical section,
// exactly like the reference scheduler's "kernel mutex" model: condition
// waits release the lock and re-acquire it on wakeup.
package kernel
