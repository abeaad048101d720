// The main package for the filmcast executable.
package main

import (
	"os"

	"github.com/JakeFAU/filmcast/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
