package kernel

import "time"

// socketState is the tagged payload of a Socket Control Block, modeled as a
// Go sum type per spec.md §9's redesign guidance ("operations pattern-match
// rather than consulting a separate tag and union") instead of the
// reference kernel's SOCK_TYPE enum + STU union.
type socketState interface {
	isSocketState()
}

type unboundState struct{}

func (unboundState) isSocketState() {}

type listeningState struct {
	queue    list
	incoming *condVar
}

func (*listeningState) isSocketState() {}

type peerState struct {
	send, recv *pipeCB
	peer       *socketCB
	canRead    bool
	canWrite   bool
}

func (*peerState) isSocketState() {}

type closedState struct{}

func (closedState) isSocketState() {}

// socketCB is the Socket Control Block.
type socketCB struct {
	k     *Kernel
	port  int // NoPort if unbound to a port
	state socketState
}

// request is a pending connection request, queued on a listener's backlog
// by Connect and dequeued by Accept. Per spec.md §9, the connector owns the
// request's storage and frees it (here: simply stops referencing it) after
// waking, whether accepted or timed out; listeners never dereference one
// after broadcasting its connCV.
type request struct {
	n        node
	sock     *socketCB
	connCV   *condVar
	accepted bool
}

// portTable binds port numbers to the listening socket currently on them.
type portTable struct {
	bindings [MaxPort + 1]*socketCB
}

// Socket reserves an FCB and allocates a new Unbound socket, optionally
// associated with port (pass NoPort for none). Invalid ports or FCB
// exhaustion return NoFile.
func (k *Kernel) Socket(port int) (Fid, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.socketLocked(port)
}

func (k *Kernel) socketLocked(port int) (Fid, error) {
	if port != NoPort && (port < 0 || port > MaxPort) {
		return NoFile, ErrBadFid
	}

	fids, fcbs, ok := k.fcbs.reserve(1)
	if !ok {
		return NoFile, ErrBadFid
	}

	sock := &socketCB{k: k, port: port, state: unboundState{}}
	fcbs[0].ops = socketOps
	fcbs[0].obj = sock
	return fids[0], nil
}

func (k *Kernel) socketAt(fid Fid) (*socketCB, error) {
	fcb := k.fcbs.get(fid)
	if fcb == nil || fcb.ops != socketOps {
		return nil, ErrBadFid
	}
	return fcb.obj.(*socketCB), nil
}

// Listen transitions an Unbound socket with a valid, free port into
// Listening.
func (k *Kernel) Listen(fid Fid) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	sock, err := k.socketAt(fid)
	if err != nil {
		return err
	}
	if _, ok := sock.state.(unboundState); !ok {
		return ErrBadState
	}
	if sock.port == NoPort {
		return ErrBadState
	}
	if k.ports.bindings[sock.port] != nil {
		return ErrPortInUse
	}

	ls := &listeningState{incoming: newCondVar()}
	initList(&ls.queue)
	sock.state = ls
	k.ports.bindings[sock.port] = sock
	return nil
}

// Accept blocks until a connection request is pending on a Listening
// socket, then wires up two pipes and two Peer sockets: one for the new
// connection (returned) and one for the connector, which Connect is
// blocked waiting on.
func (k *Kernel) Accept(fid Fid) (Fid, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	sock, err := k.socketAt(fid)
	if err != nil {
		return NoFile, err
	}
	ls, ok := sock.state.(*listeningState)
	if !ok {
		return NoFile, ErrBadState
	}

	for ls.queue.empty() {
		if _, stillListening := sock.state.(*listeningState); !stillListening {
			return NoFile, ErrBadFid
		}
		k.wait(ls.incoming, schedUser)
		if _, stillListening := sock.state.(*listeningState); !stillListening {
			return NoFile, ErrBadFid
		}
		ls, ok = sock.state.(*listeningState)
		if !ok {
			return NoFile, ErrBadFid
		}
	}

	n := ls.queue.popFront()
	req := n.owner.(*request)

	newFid, err := k.socketLocked(sock.port)
	if err != nil {
		return NoFile, err
	}
	server, _ := k.socketAt(newFid)

	p1 := newPipe(k) // server -> client
	p2 := newPipe(k) // client -> server

	server.state = &peerState{send: p1, recv: p2, peer: req.sock, canRead: true, canWrite: true}
	req.sock.state = &peerState{send: p2, recv: p1, peer: server, canRead: true, canWrite: true}

	req.accepted = true
	k.broadcast(req.connCV)

	return newFid, nil
}

// Connect queues a Request on the listener bound to port and waits (bounded
// by timeout, or indefinitely if timeout <= 0) for an Accept to consume it.
// On timeout the request is dequeued by the connector before returning, per
// spec.md §9 Open Question #2 (the reference implementation leaves it
// dangling on the listener's queue, which the spec explicitly overrides).
func (k *Kernel) Connect(fid Fid, port int, timeout time.Duration) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	sock, err := k.socketAt(fid)
	if err != nil {
		return err
	}
	if _, ok := sock.state.(unboundState); !ok {
		return ErrBadState
	}
	if port < 0 || port > MaxPort {
		return ErrBadState
	}
	listener := k.ports.bindings[port]
	if listener == nil {
		return ErrNoListener
	}
	ls, ok := listener.state.(*listeningState)
	if !ok {
		return ErrNoListener
	}

	req := &request{sock: sock, connCV: newCondVar()}
	initNode(&req.n, req)
	ls.queue.pushBack(&req.n)
	k.broadcast(ls.incoming)

	k.timedWait(req.connCV, schedUser, timeout)

	if req.accepted {
		return nil
	}

	// Timed out (or the listener closed without accepting): remove our own
	// request from whatever queue it is still sitting on so a later Accept
	// never dereferences it.
	ls.queue.remove(&req.n)
	return ErrTimeout
}

// Shutdown disables one or both directions of a Peer socket. It is a no-op
// returning success on any non-Peer socket.
func (k *Kernel) Shutdown(fid Fid, how ShutdownMode) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	sock, err := k.socketAt(fid)
	if err != nil {
		return err
	}
	ps, ok := sock.state.(*peerState)
	if !ok {
		return nil
	}

	if how == ShutdownRead || how == ShutdownBoth {
		if peerPS, ok := ps.peer.state.(*peerState); ok {
			peerPS.canWrite = false
		}
		ps.canRead = false
		// Nothing will ever drain this pipe again, so a peer currently
		// blocked in write() waiting for space would wait forever without
		// this: force its reader side closed so write() wakes to broken
		// pipe instead of hanging. This is the chosen resolution to
		// spec.md's Open Question #3.
		ps.recv.closeReader()
	}

	if how == ShutdownWrite || how == ShutdownBoth {
		ps.canWrite = false
		// Force the peer's reader onto EOF rather than leaving it to notice
		// canRead on its own.
		ps.send.closeWriter()
	}

	return nil
}

// socketOps is the vtable installed on every socket FCB. Read/Write dispatch
// through the generic Kernel.Read/Kernel.Write in fcb.go, which already
// holds k.mu by the time these run.
var socketOps = &streamOps{
	read: func(obj interface{}, buf []byte) (int, error) {
		sock := obj.(*socketCB)
		ps, ok := sock.state.(*peerState)
		if !ok {
			return -1, ErrNotPeer
		}
		if !ps.canRead {
			return 0, nil // read half shut down: EOF
		}
		return ps.recv.read(buf)
	},
	write: func(obj interface{}, buf []byte) (int, error) {
		sock := obj.(*socketCB)
		ps, ok := sock.state.(*peerState)
		if !ok || !ps.canWrite {
			return -1, ErrNotPeer
		}
		return ps.send.write(buf)
	},
	close: func(obj interface{}) error {
		sock := obj.(*socketCB)
		return sock.k.closeSocketLocked(sock)
	},
}

// closeSocketLocked performs the Close transition; it assumes k.mu is
// already held, since it is invoked from fcbTable.decref which always runs
// under the big lock.
func (k *Kernel) closeSocketLocked(sock *socketCB) error {
	switch st := sock.state.(type) {
	case *listeningState:
		k.ports.bindings[sock.port] = nil
		k.broadcast(st.incoming)
	case *peerState:
		st.recv.closeReader()
		st.send.closeWriter()
		// Avoid a dangling peer_ref: if the other side is still a live Peer,
		// it keeps functioning against its own pipe endpoints (which are
		// now one-sided), but it must never be walked back into a freed
		// socketCB. Since Go garbage-collects socketCB once unreferenced,
		// there is nothing further to clear here; the peer pointer simply
		// becomes the only reference keeping this (now-Closed) socketCB
		// alive, which is harmless.
	}
	sock.state = closedState{}
	return nil
}
