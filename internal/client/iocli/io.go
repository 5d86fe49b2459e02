// Package iocli is the terminal input and output of the client commands.
package iocli

//go:generate moq -out io_mock.go . IO

// IO is what the client commands print to and read from
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	// ReadPassword reads a line without echo when the input is a terminal
	ReadPassword(prompt string) (string, error)
	Write(p []byte) (n int, err error)
}
