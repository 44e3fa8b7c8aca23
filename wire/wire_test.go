package wire

import "testing"

func TestParseInsert(t *testing.T) {
	cmd, err := Parse("INSERT 4 hello world")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.Kind != Insert || cmd.Pos != 4 || cmd.Text != "hello world" {
		t.Fatalf("Parse: got %+v", cmd)
	}
}

func TestParseDelete(t *testing.T) {
	cmd, err := Parse("DELETE 2 3")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.Kind != Delete || cmd.Pos != 2 || cmd.Len != 3 {
		t.Fatalf("Parse: got %+v", cmd)
	}

	if _, err := Parse("DELETE 2 -1"); err == nil {
		t.Fatalf("Parse: expected error for negative length")
	}
}

func TestParseHeading(t *testing.T) {
	cmd, err := Parse("HEADING 2 6")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.Kind != Heading || cmd.Level != 2 || cmd.Pos != 6 {
		t.Fatalf("Parse: got %+v", cmd)
	}

	if _, err := Parse("HEADING 9 6"); err == nil {
		t.Fatalf("Parse: expected error for out-of-range level")
	}
}

func TestParseLink(t *testing.T) {
	cmd, err := Parse("LINK 0 5 http://example.com")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.Kind != Link || cmd.Pos != 0 || cmd.End != 5 || cmd.URL != "http://example.com" {
		t.Fatalf("Parse: got %+v", cmd)
	}
}

func TestParseDisconnect(t *testing.T) {
	cmd, err := Parse("DISCONNECT")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.Kind != Disconnect {
		t.Fatalf("Parse: got %+v", cmd)
	}
}

func TestParseUnknown(t *testing.T) {
	if _, err := Parse("FROBNICATE 1 2"); err == nil {
		t.Fatalf("Parse: expected error for unknown command")
	}
}

func TestSnapshotFrame(t *testing.T) {
	got := Snapshot(3, "hello")
	want := "VERSION\n3\nDOC\n5\nhello\nEND\n"
	if got != want {
		t.Fatalf("Snapshot: got %q, want %q", got, want)
	}
}

func TestBroadcastFrame(t *testing.T) {
	got := Broadcast(3, "hello")
	want := "3\n5\nhello"
	if got != want {
		t.Fatalf("Broadcast: got %q, want %q", got, want)
	}
}
