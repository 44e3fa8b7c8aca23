package transport

import (
	"bufio"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// connectFIFO is the well-known rendezvous channel a client writes its PID
// to in order to request a session. The source signals the server with
// SIGRTMIN and reads the PID out of the kernel's siginfo_t; Go's os/signal
// has no equivalent (signal.Notify delivers only the signal number, never
// siginfo), so the PID travels over this FIFO line instead. The server still
// registers for the signal, so a client that sends it does not terminate
// the server, but a received signal is not otherwise acted on.
const connectFIFO = "FIFO_CONNECT"

// Listener accepts client connect requests and produces their PIDs in
// arrival order.
type Listener struct {
	requests chan int
	errs     chan error
	sigCh    chan os.Signal
}

// Listen creates the connect FIFO and starts reading PID lines from it in
// the background. Each connecting client's PID arrives on Requests.
func Listen() (*Listener, error) {
	_ = os.Remove(connectFIFO)
	if err := unix.Mkfifo(connectFIFO, fifoMode); err != nil {
		return nil, err
	}

	l := &Listener{
		requests: make(chan int),
		errs:     make(chan error, 1),
		sigCh:    make(chan os.Signal, 8),
	}
	signal.Notify(l.sigCh, ClientConnectSignal)
	go l.readLoop()
	return l, nil
}

func (l *Listener) readLoop() {
	for {
		f, err := os.OpenFile(connectFIFO, os.O_RDONLY, 0)
		if err != nil {
			l.errs <- err
			return
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			pid, err := strconv.Atoi(line)
			if err != nil {
				continue
			}
			l.requests <- pid
		}
		f.Close()
	}
}

// Requests returns the channel of connecting client PIDs.
func (l *Listener) Requests() <-chan int { return l.requests }

// Errs returns the channel the background reader reports fatal errors on.
func (l *Listener) Errs() <-chan error { return l.errs }

// Close stops signal delivery and removes the connect FIFO.
func (l *Listener) Close() error {
	signal.Stop(l.sigCh)
	return os.Remove(connectFIFO)
}
