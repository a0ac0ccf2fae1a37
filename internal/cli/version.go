package cli

import (
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/cruciblehq/backlightd/internal"
)

// Prints the build the binary was made from. Both roles share one binary,
// so this also identifies the daemon a client is talking to.
type VersionCmd struct{}

// Writes the version line to the parser's standard output.
func (c *VersionCmd) Run(kctx *kong.Context) error {
	_, err := fmt.Fprintln(kctx.Stdout, internal.VersionString())
	return err
}
