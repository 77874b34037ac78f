// Command tzatlas compiles IANA tzdata source files into fully-resolved
// UTC transition timelines and sinks them to RFC 8536 TZif binaries.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
