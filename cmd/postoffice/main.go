// Package main implements the post office command line tool.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/google/subcommands"
	"github.com/inbucket/postoffice/pkg/config"
	"github.com/inbucket/postoffice/pkg/extension"
	"github.com/inbucket/postoffice/pkg/extension/luahost"
	"github.com/inbucket/postoffice/pkg/postoffice"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// version contains the build version number, populated during linking.
	version = "undefined"

	// date contains the build date, populated during linking.
	date = "undefined"
)

var logfile = flag.String("logfile", "stderr", "Write out log into the specified file.")
var logjson = flag.Bool("logjson", false, "Logs are written in JSON format.")

func main() {
	// Important top-level flags
	subcommands.ImportantFlag("logfile")
	subcommands.ImportantFlag("logjson")

	// Setup standard helpers
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&envCmd{out: os.Stdout}, "")

	// Setup my commands
	subcommands.Register(&demoCmd{out: os.Stdout}, "")
	subcommands.Register(&runCmd{out: os.Stdout}, "")
	subcommands.Register(&importCmd{out: os.Stdout}, "")
	subcommands.Register(&countCmd{out: os.Stdout}, "")
	subcommands.Register(&decodeCmd{out: os.Stdout}, "")

	flag.Parse()

	config.Version = version
	config.BuildDate = date
	conf, err := config.Process()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(int(subcommands.ExitUsageError))
	}
	closeLog, err := openLog(conf.LogLevel, *logfile, *logjson)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Log error: %v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}
	log.Debug().Str("phase", "startup").Str("version", config.Version).
		Str("buildDate", config.BuildDate).Msg("Post office starting")

	ctx := context.Background()
	status := subcommands.Execute(ctx, conf)
	closeLog()
	os.Exit(int(status))
}

// openLog configures zerolog output, returns func to close logfile.
func openLog(level string, logfile string, json bool) (close func(), err error) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		return nil, fmt.Errorf("Log level %q not one of: debug, info, warn, error", level)
	}
	close = func() {}
	var w io.Writer
	color := runtime.GOOS != "windows"
	switch logfile {
	case "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		logf, err := os.OpenFile(logfile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
		if err != nil {
			return nil, err
		}
		bw := bufio.NewWriter(logf)
		w = bw
		color = false
		close = func() {
			_ = bw.Flush()
			_ = logf.Close()
		}
	}
	if json {
		log.Logger = log.Output(w)
		return close, nil
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:     w,
		NoColor: !color,
	})
	return close, nil
}

// rootConfig extracts the configuration passed to subcommands.Execute.
func rootConfig(args []interface{}) *config.Root {
	if len(args) > 0 {
		if conf, ok := args[0].(*config.Root); ok {
			return conf
		}
	}
	return &config.Root{}
}

// newOffice builds a post office for users, with the configured Lua hook script attached.  The
// returned func releases the script.
func newOffice(conf *config.Root, users []string) (*postoffice.Directory, func(), error) {
	extHost := extension.NewHost()
	office := postoffice.New(users, extHost)
	hooks, err := luahost.New(conf.Lua, log.Logger, extHost, office)
	if err != nil {
		return nil, nil, err
	}
	if hooks == nil {
		return office, func() {}, nil
	}
	return office, hooks.Close, nil
}

func fatal(msg string, err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	return subcommands.ExitFailure
}

func usage(msg string) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, msg)
	return subcommands.ExitUsageError
}
