// Command vexc compiles Vex source files into C++ translation units.
//
// Grounded on the teacher's cmd/glyph/main.go: a cobra root command with
// version string, one subcommand per driver operation, flags bound
// directly on each subcommand rather than through a shared flag set.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:     "vexc",
		Short:   "Vex compiler front-end and C++ emitter",
		Long:    `vexc compiles a single Vex class file into a C++ translation unit, optionally caching interfaces and streaming diagnostics to connected editors.`,
		Version: version,
	}

	compileCmd := &cobra.Command{
		Use:   "compile <source-root> <build-dir> <file>",
		Short: "Compile one Vex source file into the build directory",
		Args:  cobra.ExactArgs(3),
		RunE:  runCompile,
	}
	compileCmd.Flags().String("config", "vexc.yaml", "project configuration file")
	compileCmd.Flags().String("cxx", "", "host C++ compiler invoked to produce a .o file (empty skips this step)")
	compileCmd.Flags().Bool("color", true, "colorize diagnostic output")

	linkCmd := &cobra.Command{
		Use:   "link <build-dir> <main-class> <main-method>",
		Short: "Link compiled object files into an executable",
		Args:  cobra.ExactArgs(3),
		RunE:  runLink,
	}
	linkCmd.Flags().String("cxx", "g++", "host C++ compiler/linker")
	linkCmd.Flags().StringP("output", "o", "", "output executable path (default <build-dir>/<main-class>)")

	watchCmd := &cobra.Command{
		Use:   "watch <source-root> <build-dir>",
		Short: "Recompile Vex source files on save and push diagnostics to connected editors",
		Args:  cobra.ExactArgs(2),
		RunE:  runWatch,
	}
	watchCmd.Flags().String("config", "vexc.yaml", "project configuration file")
	watchCmd.Flags().String("cxx", "", "host C++ compiler invoked to produce a .o file (empty skips this step)")
	watchCmd.Flags().String("livefeed-addr", "", "address to serve the diagnostic livefeed websocket on (empty disables it)")

	rootCmd.AddCommand(compileCmd, linkCmd, watchCmd)

	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func exitCode(hadErrors bool) int {
	if hadErrors {
		return 1
	}
	return 0
}

func mustFlagString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("vexc: flag %q not registered: %v", name, err))
	}
	return v
}

func mustFlagBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(fmt.Sprintf("vexc: flag %q not registered: %v", name, err))
	}
	return v
}
