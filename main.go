// Command meshsplit partitions meshes into parts along an axis. Meshes come
// from OBJ/STL files or from Lisp recipes that build and split them.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newCLI().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
