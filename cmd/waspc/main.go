// Command waspc is the Wasp compiler CLI: build/check a project, and
// scaffold/vendor dependencies. It is the only package in this module
// that logs (internal packages return errors up the stack silently) and
// the only one that touches os.Exit, matching the teacher's convention
// of keeping internal/* silent and letting cmd/ own user-facing output.
package main

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/wasplang/waspc/internal/compileerr"
	"github.com/wasplang/waspc/internal/compiler"
	"github.com/wasplang/waspc/internal/discover"
	"github.com/wasplang/waspc/internal/profile"
	"github.com/wasplang/waspc/internal/project"
)

var log = logrus.New()

var (
	profileFlag string
	dialectFlag string
	verboseFlag bool
	outputFlag  string
	noStdFlag   bool
)

func main() {
	root := &cobra.Command{
		Use:           "waspc",
		Short:         "A lisp for web assembly",
		Version:       "dev",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	build := &cobra.Command{
		Use:   "build",
		Short: "compile a wasp project to a wasm binary",
		RunE:  runBuild,
	}
	build.Flags().StringVar(&profileFlag, "profile", "f64", "numeric profile: i32 or f64")
	build.Flags().StringVar(&dialectFlag, "dialect", "sexpr", "surface dialect: sexpr or curly")
	build.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "log each discovered source file and a build summary")
	build.Flags().StringVarP(&outputFlag, "output", "o", "", "output path (default: <dir-name>.wasm)")

	check := &cobra.Command{
		Use:   "check <file.w>",
		Short: "parse and run all compiler passes without writing output",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}
	check.Flags().StringVar(&profileFlag, "profile", "f64", "numeric profile: i32 or f64")
	check.Flags().StringVar(&dialectFlag, "dialect", "sexpr", "surface dialect: sexpr or curly")

	initCmd := &cobra.Command{
		Use:   "init <NAME>",
		Short: "initialize a directory to be a wasp project",
		Args:  cobra.ExactArgs(1),
		RunE:  runInit,
	}
	initCmd.Flags().BoolVar(&noStdFlag, "no-std", false, "don't add the standard library")

	addCmd := &cobra.Command{
		Use:   "add <NAME> <LOCATION>",
		Short: "add a dependency package to this project",
		Args:  cobra.ExactArgs(2),
		RunE:  runAdd,
	}

	vendorCmd := &cobra.Command{
		Use:   "vendor",
		Short: "fetch dependencies listed in project.wasp",
		Args:  cobra.NoArgs,
		RunE:  runVendor,
	}

	root.AddCommand(build, check, initCmd, addCmd, vendorCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	prof, dialect, err := parseProfileAndDialect()
	if err != nil {
		return logAndFail(err)
	}

	fs := afero.NewOsFs()
	source, files, err := discover.Discover(fs, ".")
	if err != nil {
		return logAndFail(err)
	}

	if verboseFlag {
		for _, f := range files {
			log.Infof("compiling %s", f)
		}
	}

	out, err := compiler.Compile(prof, dialect, source)
	if err != nil {
		return logAndFail(err)
	}

	outPath := outputFlag
	if outPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return logAndFail(compileerr.IOf(err, "getting working directory"))
		}
		outPath = filepath.Base(cwd) + ".wasm"
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return logAndFail(compileerr.IOf(err, "writing %s", outPath))
	}

	if verboseFlag {
		log.Infof("wrote %s (%d source files, %d bytes)", outPath, len(files), len(out))
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	prof, dialect, err := parseProfileAndDialect()
	if err != nil {
		return logAndFail(err)
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		return logAndFail(compileerr.IOf(err, "reading %s", args[0]))
	}

	if _, err := compiler.Compile(prof, dialect, string(source)); err != nil {
		return logAndFail(err)
	}
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := project.Init(args[0], noStdFlag); err != nil {
		return logAndFail(err)
	}
	log.Info("created package")
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	if err := project.Add(args[0], args[1]); err != nil {
		return logAndFail(err)
	}
	log.Info("added dependency")
	return nil
}

func runVendor(cmd *cobra.Command, args []string) error {
	if err := project.Vendor(); err != nil {
		return logAndFail(err)
	}
	log.Info("vendored dependencies")
	return nil
}

func parseProfileAndDialect() (profile.Profile, compiler.Dialect, error) {
	prof, ok := profile.Parse(profileFlag)
	if !ok {
		return 0, 0, compileerr.Misusef("unknown profile %q (want i32 or f64)", profileFlag)
	}
	var dialect compiler.Dialect
	switch dialectFlag {
	case "sexpr":
		dialect = compiler.SExpr
	case "curly":
		dialect = compiler.Curly
	default:
		return 0, 0, compileerr.Misusef("unknown dialect %q (want sexpr or curly)", dialectFlag)
	}
	return prof, dialect, nil
}

func logAndFail(err error) error {
	if ce, ok := err.(*compileerr.Error); ok {
		log.Errorf("%s: %s", ce.Kind, ce.Message)
	} else {
		log.Error(err)
	}
	return err
}
