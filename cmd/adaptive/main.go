package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"adaptive/config"
	"adaptive/convert"
	"adaptive/misc"
	"adaptive/state"
)

const sourceHelp = `
SOURCE:
    path to stylesheet(s) to process, following forms are supported:
        path to a file: "[path_to_file]file.css"
        path to a directory: "[path_to_directory]directory" - recursively process all stylesheets and archives under directory (symbolic links are not followed)
        path to archive with path inside archive: "[path_to_archive]archive.zip[path_in_archive]" - process stylesheets under archive path

	Stylesheets are recognized by name using "processing.pattern" from
	configuration. For every processed archive its copy with compiled
	stylesheets is written to destination, archives inside archives are not
	supported.

DESTINATION:
    always a path, output file names are derived from source names
    if absent - current working directory
`

const watchHelp = `
SOURCE:
    path to a directory to watch, all stylesheets under it are compiled first

DESTINATION:
    path to a directory outside of SOURCE, results are always overwritten
    if absent - current working directory

Changes are collected for "processing.watch_delay" before compilation starts.
Program runs until interrupted.
`

const dumpHelp = `
DESTINATION:
    file name to write configuration to, if absent - STDOUT

Produces file with actual "active" configuration values which is composition of
default values and values specified in configuration file. To see default
configuration embedded into the program use --default flag.
`

// compileFlags are shared by convert and watch.
func compileFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "nodirs", Aliases: []string{"nd"}, Usage: "when producing output do not keep input directory structure"},
		&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Usage: "number of stylesheets compiled in parallel, 0 - number of CPUs"},
		&cli.StringFlag{Name: "charset",
			Usage: "`ENCODING` of stylesheets without @charset rule (see IANA.org for character set names), UTF-8 when absent"},
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "compiles stylesheets for high density displays: px to rem conversion and hairlines",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          setupEnv,
		After:           teardownEnv,
		OnUsageError:    passUsageError,
		ExitErrHandler:  logCommandError,
		CommandNotFound: unknownCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:         "convert",
				Usage:        "Compiles stylesheet(s)",
				OnUsageError: passUsageError,
				Action:       convert.Run,
				Flags: append(compileFlags(),
					&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "continue even if destination exits, overwrite files"},
					&cli.StringFlag{Name: "force-zip-cp",
						Usage: "Force `ENCODING` for ALL non UTF-8 file names in processed archives (see IANA.org for character set names)"},
				),
				ArgsUsage:          "SOURCE [DESTINATION]",
				CustomHelpTemplate: cli.CommandHelpTemplate + sourceHelp,
			},
			{
				Name:               "watch",
				Usage:              "Compiles stylesheets in directory and keeps compiling them as they change",
				OnUsageError:       passUsageError,
				Action:             convert.Watch,
				Flags:              compileFlags(),
				ArgsUsage:          "SOURCE [DESTINATION]",
				CustomHelpTemplate: cli.CommandHelpTemplate + watchHelp,
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError:       passUsageError,
				Action:             dumpConfiguration,
				ArgsUsage:          "DESTINATION",
				CustomHelpTemplate: cli.CommandHelpTemplate + dumpHelp,
			},
		},
	}
}

func main() {
	// watch runs until interrupted, convert stops between stylesheets
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	err := newApp().Run(ctx, os.Args)
	stop()

	if err != nil {
		// log is either not ready yet (argument parsing) or already closed
		if !errLogged {
			fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
		}
		os.Exit(1)
	}
}

func dumpConfiguration(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	which, data := "actual", []byte(nil)
	if cmd.Bool("default") {
		which = "default"
		data, err = config.Prepare()
	} else {
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	fname := cmd.Args().Get(0)
	if len(fname) == 0 {
		env.Log.Info("Outputting configuration", zap.String("state", which), zap.String("file", "STDOUT"))
		_, err = os.Stdout.Write(data)
	} else {
		env.Log.Info("Outputting configuration", zap.String("state", which), zap.String("file", fname))
		err = os.WriteFile(fname, data, 0644)
	}
	if err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
