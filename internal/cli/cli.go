package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Serve  *ServeCommand
	Detect *DetectCommand
	Encode *EncodeCommand
	Decode *DecodeCommand
	Ratio  *RatioCommand
}

var errCommandRequired = errors.New("a command is required, see --help")

// streams are the reader and writers commands talk to.
type streams struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func stdStreams() streams {
	return streams{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string, s streams) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "gazeseg"
	parser.LongDescription = "Blink and out-of-screen event detection for eye-tracking recordings."

	cmds := &commands{
		Serve:  &ServeCommand{globals: &globals, version: version, streams: s},
		Detect: &DetectCommand{globals: &globals, streams: s},
		Encode: &EncodeCommand{globals: &globals, streams: s},
		Decode: &DecodeCommand{globals: &globals, streams: s},
		Ratio:  &RatioCommand{globals: &globals, streams: s},
	}

	// --version is valid without a command and wins over any command given.
	parser.SubcommandsOptional = true
	parser.CommandHandler = func(cmd goflags.Commander, args []string) error {
		if globals.Version {
			fmt.Fprintf(s.out, "gazeseg %s\n", version)
			return nil
		}
		if cmd == nil {
			if len(args) > 0 {
				return fmt.Errorf("%w: unknown command %q", errCommandRequired, args[0])
			}
			return errCommandRequired
		}
		return cmd.Execute(args)
	}

	parser.AddCommand("serve", "Start the HTTP service", "Start the HTTP service for event detection and segmentation.", cmds.Serve)
	parser.AddCommand("detect", "Detect events in a samples file", "Run a detection method over a JSON samples file and print the event table.", cmds.Detect)
	parser.AddCommand("encode", "Convert events to a segmentation mask", "Convert a JSON event table with sample-index bounds into a binary segmentation mask.", cmds.Encode)
	parser.AddCommand("decode", "Convert a segmentation mask to events", "Convert a binary segmentation mask into an event table.", cmds.Decode)
	parser.AddCommand("ratio", "Compute the event time ratio", "Compute the share of recorded time covered by events, overall or per trial.", cmds.Ratio)

	return parser, &globals, cmds
}

// Run is the main entry point for the CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	return runWithStreams(version, args, stdStreams())
}

func runWithStreams(version string, args []string, s streams) error {
	parser, _, _ := buildParser(version, s)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
