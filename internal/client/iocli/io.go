package iocli

// IO abstracts terminal input/output so commands can be tested without a
// real terminal.
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
	// ReadKey reads a single keypress without waiting for enter.
	ReadKey() (byte, error)
	Write(p []byte) (n int, err error)
}
