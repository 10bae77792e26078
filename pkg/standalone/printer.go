package standalone

// StatusPrinter is the interface used to print provisioning progress.
type StatusPrinter interface {
	// Printf performs formatted printing.
	Printf(format string, args ...any)
	// Println performs line-based printing.
	Println(args ...any)
	// Write implements io.Writer for stream-based output.
	Write(p []byte) (n int, err error)
	// GetFdInfo returns the file descriptor and terminal status for the
	// output, used by the image pull progress display.
	GetFdInfo() (fd uintptr, isTerminal bool)
}

// noopPrinter silences provisioning progress.
type noopPrinter struct{}

// Printf implements StatusPrinter.Printf.
func (*noopPrinter) Printf(format string, args ...any) {}

// Println implements StatusPrinter.Println.
func (*noopPrinter) Println(args ...any) {}

// Write implements StatusPrinter.Write.
func (*noopPrinter) Write(p []byte) (n int, err error) {
	return len(p), nil
}

// GetFdInfo implements StatusPrinter.GetFdInfo.
func (*noopPrinter) GetFdInfo() (fd uintptr, isTerminal bool) {
	return 0, false
}

// NoopPrinter returns a StatusPrinter that does nothing.
func NoopPrinter() StatusPrinter {
	return &noopPrinter{}
}
