package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vexlang/vexc/internal/driver"
)

// runLink implements `vexc link <build-dir> <main-class> <main-method>`,
// spec.md §6's separate link subcommand: generate and compile a small
// entry point calling MainClass::MainMethod(), then link it against
// every object file already produced by `vexc compile` in build-dir.
func runLink(cmd *cobra.Command, args []string) error {
	buildDir, mainClass, mainMethod := args[0], args[1], args[2]
	cxx := mustFlagString(cmd, "cxx")
	output := mustFlagString(cmd, "output")

	opts := driver.LinkOptions{
		BuildDir:   buildDir,
		MainClass:  mainClass,
		MainMethod: mainMethod,
		Output:     output,
		CXX:        cxx,
	}

	if err := driver.Link(cmd.Context(), opts); err != nil {
		printError(err)
		os.Exit(1)
		return nil
	}

	dest := output
	if dest == "" {
		dest = fmt.Sprintf("%s/%s", buildDir, mainClass)
	}
	printSuccess(fmt.Sprintf("linked %s", dest))
	return nil
}
