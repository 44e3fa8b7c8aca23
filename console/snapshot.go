package console

import "os"

// fileWriter is the one filesystem capability QUIT's snapshot needs —
// godoctor's FileSystem interface trimmed to a single whole-file write.
type fileWriter interface {
	CreateFile(path, contents string) error
}

// osFileWriter writes through the real filesystem.
type osFileWriter struct{}

func (osFileWriter) CreateFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}

// snapshotWrite describes the one change a clean QUIT makes to the
// filesystem: writing the document's flattened content to Path. Expressing
// it as a change value executed with ExecuteUsing, rather than calling
// os.WriteFile inline, keeps the describe-then-execute shape filesystem
// changes use elsewhere in the ancestry of this code.
type snapshotWrite struct {
	Path, Contents string
}

func (chg *snapshotWrite) ExecuteUsing(fs fileWriter) error {
	return fs.CreateFile(chg.Path, chg.Contents)
}
