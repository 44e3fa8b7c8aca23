// Package console implements the operator's stdin commands: DOC?, LOG?, and
// QUIT.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/scribe-md/scribe/document"
	"github.com/scribe-md/scribe/session"
)

// Console reads operator commands from an input stream and reports results
// to an output stream.
type Console struct {
	Doc          *document.Document
	Clients      *session.Registry
	History      *History
	SnapshotPath string

	in  io.Reader
	out io.Writer
}

// History is the subset of session.History's API the LOG? command needs,
// expressed as an interface so Console doesn't import session's concrete
// bounded-log type directly into its own public surface.
type History interface {
	Snapshot() []session.Entry
}

// New returns a Console reading from in and writing replies to out.
func New(doc *document.Document, clients *session.Registry, history History, snapshotPath string, in io.Reader, out io.Writer) *Console {
	return &Console{Doc: doc, Clients: clients, History: history, SnapshotPath: snapshotPath, in: in, out: out}
}

// quitErr is returned by Run when QUIT succeeded, signalling the caller to
// shut the process down.
var quitErr = fmt.Errorf("console: quit requested")

// IsQuit reports whether err is the sentinel Run returns after a successful
// QUIT; the caller should terminate the server when this is true.
func IsQuit(err error) bool { return err == quitErr }

// Run reads one command per line until the input closes or QUIT succeeds.
func (c *Console) Run() error {
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "DOC?":
			c.doc()
		case "LOG?":
			c.log()
		case "QUIT":
			if err := c.quit(); err != nil {
				return err
			}
		case "":
		default:
			fmt.Fprintf(c.out, "[SERVER] unknown command %q\n", line)
		}
	}
	return scanner.Err()
}

func (c *Console) doc() {
	fmt.Fprintf(c.out, "[SERVER] Current document (version %d, length %d):\n", c.Doc.Version(), c.Doc.TotalLength())
	fmt.Fprintln(c.out, c.Doc.Flatten())
}

func (c *Console) log() {
	fmt.Fprintln(c.out, "[SERVER] Current commands log:")
	for _, e := range c.History.Snapshot() {
		status := "SUCCESS"
		if !e.Success {
			status = "Reject"
		}
		fmt.Fprintf(c.out, "EDIT %s %s %s %s\n", e.User, e.Command, status, e.Reason)
	}
}

func (c *Console) quit() error {
	if n := c.Clients.Count(); n > 0 {
		fmt.Fprintf(c.out, "QUIT rejected, %d clients still connected.\n", n)
		return nil
	}
	fmt.Fprintln(c.out, "[SERVER] Received QUIT command. Exiting...")
	chg := &snapshotWrite{Path: c.SnapshotPath, Contents: c.Doc.Flatten()}
	if err := chg.ExecuteUsing(osFileWriter{}); err != nil {
		fmt.Fprintf(c.out, "[SERVER] snapshot failed: %v\n", err)
	}
	return quitErr
}
