package output

import (
	"fmt"
	"io"
)

// Console routes status lines to stdout and diagnostics to stderr.
type Console struct {
	Out io.Writer
	Err io.Writer
}

func (c *Console) PrintInfo(text string) {
	fmt.Fprintln(c.Out, FInfo(text))
}

func (c *Console) PrintPending(text string) {
	fmt.Fprintln(c.Out, FPending(text))
}

func (c *Console) PrintSuccess(text string) {
	fmt.Fprintln(c.Out, FSuccess(text))
}

func (c *Console) PrintError(text string) {
	fmt.Fprintln(c.Err, FError(text))
}
