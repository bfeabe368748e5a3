package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vexlang/vexc/internal/buildcache"
	"github.com/vexlang/vexc/internal/buildsession"
	"github.com/vexlang/vexc/internal/config"
	"github.com/vexlang/vexc/internal/diagnostics"
	"github.com/vexlang/vexc/internal/driver"
	"github.com/vexlang/vexc/internal/logging"
	"github.com/vexlang/vexc/internal/telemetry"
)

// runCompile implements `vexc compile <source-root> <build-dir> <file>`,
// the three-positional-argument contract named by spec.md §6: the source
// root directory, the build output directory, and the source file path
// relative to the root.
//
// Grounded on the teacher's cmd/glyph/commands.go runCompile: resolve
// flags, read the project config, run the pipeline, report
// success/failure with a colorized summary and a non-zero exit code on
// any diagnostic.
func runCompile(cmd *cobra.Command, args []string) error {
	sourceRoot, buildDir, relPath := args[0], args[1], args[2]
	cfgPath := mustFlagString(cmd, "config")
	cxx := mustFlagString(cmd, "cxx")
	color.NoColor = !mustFlagBool(cmd, "color")

	proj, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if sourceRoot == "" {
		sourceRoot = proj.SourceRoot
	}
	if buildDir == "" {
		buildDir = proj.BuildDir
	}

	session := buildsession.New()
	logger := logging.New(os.Stdout, logging.Text, logging.Info, session.String())
	metrics := telemetry.New()

	cache, err := buildcache.Open(proj)
	if err != nil {
		printWarning(fmt.Sprintf("build cache unavailable, continuing without it: %v", err))
		cache = nil
	} else {
		defer cache.Close()
	}

	opts := driver.Options{
		SourceRoot: sourceRoot,
		BuildDir:   buildDir,
		Session:    session,
		Log:        logger,
		Metrics:    metrics,
		Cache:      cache,
		CXX:        cxx,
	}

	res, err := driver.CompileFile(cmd.Context(), opts, relPath)
	if err != nil {
		printError(err)
		return err
	}

	for _, d := range res.Diagnostics {
		printWarning(d.String())
	}

	hadErrors := hasErrorDiagnostics(res.Diagnostics)
	if hadErrors {
		printError(fmt.Errorf("%s: %d diagnostic(s), no output produced", relPath, len(res.Diagnostics)))
	} else {
		printSuccess(fmt.Sprintf("compiled %s -> %s", relPath, filepath.Join(buildDir, res.ClassName+".cpp")))
		printDuration(res.Duration)
	}

	os.Exit(exitCode(hadErrors))
	return nil
}

func hasErrorDiagnostics(ds []diagnostics.Diagnostic) bool {
	return len(ds) > 0
}
