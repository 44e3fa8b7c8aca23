// Package transport implements the FIFO-pair, signal-rendezvous client
// handshake: a connecting client writes its PID to the FIFO_CONNECT file;
// the server creates a pair of named pipes keyed by that PID, signals back,
// and both sides open them.
package transport

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// ClientConnectSignal is the real-time signal a connecting client may send
// to the server (SIGRTMIN); its PID itself travels over FIFO_CONNECT.
var ClientConnectSignal = syscall.Signal(unix.SIGRTMIN)

// ServerReadySignal is the real-time signal the server sends back once the
// FIFO pair exists, telling the client it may open them (SIGRTMIN+1).
var ServerReadySignal = syscall.Signal(unix.SIGRTMIN + 1)

// fifoMode matches the source's mkfifo(..., 0666): any local user may open
// either end, since the role file — not filesystem permissions — is the
// access-control boundary.
const fifoMode = 0o666

// Names returns the well-known FIFO pair names for a client PID.
func Names(pid int) (c2s, s2c string) {
	return fmt.Sprintf("FIFO_C2S_%d", pid), fmt.Sprintf("FIFO_S2C_%d", pid)
}

// Pipe is one side's view of an established client connection: the server
// reads commands from C2S and writes replies/broadcasts to S2C.
type Pipe struct {
	PID int
	C2S *os.File
	S2C *os.File

	c2sName, s2cName string
}

// CreatePair creates both named pipes for pid, removing any stale pipes left
// behind by a prior run first. It does not open them — the server opens
// C2S read-only and S2C write-only only after signalling the client, to
// avoid blocking on a FIFO open with no peer yet.
func CreatePair(pid int) (c2sName, s2cName string, err error) {
	c2sName, s2cName = Names(pid)
	_ = unix.Unlink(c2sName)
	_ = unix.Unlink(s2cName)

	if err := unix.Mkfifo(c2sName, fifoMode); err != nil {
		return "", "", fmt.Errorf("mkfifo %s: %w", c2sName, err)
	}
	if err := unix.Mkfifo(s2cName, fifoMode); err != nil {
		_ = unix.Unlink(c2sName)
		return "", "", fmt.Errorf("mkfifo %s: %w", s2cName, err)
	}
	return c2sName, s2cName, nil
}

// Open opens both ends of the pair for the server side: C2S read-only (the
// server receives client commands on it) and S2C write-only (replies and
// broadcasts).
func Open(pid int, c2sName, s2cName string) (*Pipe, error) {
	c2s, err := os.OpenFile(c2sName, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c2sName, err)
	}
	s2c, err := os.OpenFile(s2cName, os.O_WRONLY, 0)
	if err != nil {
		c2s.Close()
		return nil, fmt.Errorf("open %s: %w", s2cName, err)
	}
	return &Pipe{PID: pid, C2S: c2s, S2C: s2c, c2sName: c2sName, s2cName: s2cName}, nil
}

// Notify sends ServerReadySignal to the client so it knows the FIFO pair now
// exists and can be opened on its end.
func Notify(pid int) error {
	return syscall.Kill(pid, ServerReadySignal)
}

// Close closes both ends and removes the FIFO files.
func (p *Pipe) Close() error {
	p.C2S.Close()
	p.S2C.Close()
	_ = unix.Unlink(p.c2sName)
	_ = unix.Unlink(p.s2cName)
	return nil
}
