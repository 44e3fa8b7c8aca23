// Package session drives one connected client from handshake through
// command dispatch to disconnect.
package session

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/scribe-md/scribe/auth"
	"github.com/scribe-md/scribe/document"
	"github.com/scribe-md/scribe/transport"
	"github.com/scribe-md/scribe/wire"
)

// Server bundles the shared state a session needs: the document engine, the
// role table, the client registry, and the command history. One Server is
// shared by every session goroutine.
type Server struct {
	Doc      *document.Document
	Roles    *auth.Roles
	Clients  *Registry
	History  *History
	Logger   *log.Logger
	OnCommit func() // invoked after every successful commit; broadcasts the new snapshot
}

// Run executes one client session to completion: reads the username,
// authenticates, writes the role and initial snapshot, then dispatches
// command lines until DISCONNECT or the pipe closes. It always cleans up
// pipe's registry entry before returning.
func (s *Server) Run(pipe *transport.Pipe) error {
	username, err := readLine(pipe.C2S)
	if err != nil {
		pipe.Close()
		return fmt.Errorf("read username: %w", err)
	}

	role, err := s.Roles.Role(username)
	if err != nil {
		io.WriteString(pipe.S2C, wire.Reject("UNAUTHORISED"))
		pipe.Close()
		s.Logger.Warn("session rejected", "user", username, "pid", pipe.PID)
		return nil
	}

	s.Clients.Add(pipe)
	defer s.Clients.Remove(pipe.PID)

	if _, err := io.WriteString(pipe.S2C, role+"\n"); err != nil {
		return err
	}

	version, doc := s.snapshot()
	if _, err := io.WriteString(pipe.S2C, wire.Snapshot(version, doc)); err != nil {
		return err
	}

	s.Logger.Info("session established", "user", username, "role", role, "pid", pipe.PID)

	reader := bufio.NewReader(pipe.C2S)
	for {
		line, err := reader.ReadString('\n')
		if line == "" && err != nil {
			break
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		if strings.EqualFold(line, "DISCONNECT") {
			io.WriteString(pipe.S2C, wire.Success)
			s.History.Record(Entry{User: username, Command: line, Success: true})
			s.Logger.Info("client disconnected", "user", username, "pid", pipe.PID)
			return nil
		}

		reply, entry := s.dispatch(username, line)
		io.WriteString(pipe.S2C, reply)
		s.History.Record(entry)

		if err != nil {
			break
		}
	}
	return nil
}

func (s *Server) snapshot() (uint64, string) {
	return s.Doc.Snapshot()
}

// dispatch parses and executes one command line against the document,
// committing and firing OnCommit on success.
func (s *Server) dispatch(user, line string) (reply string, entry Entry) {
	cmd, err := wire.Parse(line)
	if err != nil {
		reason := err.Error()
		return wire.Reject(reason), Entry{User: user, Command: line, Reason: reason}
	}

	v := s.Doc.Version()
	if execErr := s.execute(cmd, v); execErr != nil {
		reason := "INVALID_POSITION"
		if execErr == document.ErrOutdatedVersion {
			reason = "outdated-version"
		}
		return wire.Reject(reason), Entry{User: user, Command: line, Reason: reason}
	}

	s.Doc.Commit()
	if s.OnCommit != nil {
		s.OnCommit()
	}
	return wire.Success, Entry{User: user, Command: line, Success: true}
}

func (s *Server) execute(cmd wire.Command, v uint64) error {
	d := s.Doc
	switch cmd.Kind {
	case wire.Insert:
		return d.Insert(v, cmd.Pos, cmd.Text)
	case wire.Delete:
		return d.Delete(v, cmd.Pos, cmd.Len)
	case wire.Newline:
		return d.Newline(v, cmd.Pos)
	case wire.Heading:
		return d.Heading(v, cmd.Level, cmd.Pos)
	case wire.Bold:
		return d.Bold(v, cmd.Pos, cmd.End)
	case wire.Italic:
		return d.Italic(v, cmd.Pos, cmd.End)
	case wire.Code:
		return d.Code(v, cmd.Pos, cmd.End)
	case wire.UnorderedList:
		return d.UnorderedList(v, cmd.Pos)
	case wire.OrderedList:
		return d.OrderedList(v, cmd.Pos)
	case wire.Blockquote:
		return d.Blockquote(v, cmd.Pos)
	case wire.HorizontalRule:
		return d.HorizontalRule(v, cmd.Pos)
	case wire.Link:
		return d.Link(v, cmd.Pos, cmd.End, cmd.URL)
	}
	return document.ErrInvalidPosition
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
