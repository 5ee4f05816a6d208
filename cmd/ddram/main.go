package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/juju/loggo/v2"
	"github.com/spf13/pflag"

	"github.com/larsks/ddram/internal/config"
	"github.com/larsks/ddram/internal/ramdisk"
	"github.com/larsks/ddram/internal/runner"
	"github.com/larsks/ddram/internal/version"
)

type (
	Options struct {
		check   bool
		debug   bool
		version bool
		help    bool
	}
)

var options Options

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nCreate a RAM disk and mount it on Xcode's Derived Data directory.\n")
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  %s\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s --check\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	pflag.PrintDefaults()
}

func init() {
	pflag.BoolVarP(&options.check, "check", "c", false, "only report whether the RAM disk is mounted")
	pflag.BoolVarP(&options.debug, "debug", "d", false, "enable debug logging")
	pflag.BoolVarP(&options.version, "version", "V", false, "show version and exit")
	pflag.BoolVarP(&options.help, "help", "h", false, "show this help message")
}

func setupLogging(debug bool) error {
	writer := loggo.NewSimpleWriter(os.Stderr, func(entry loggo.Entry) string {
		return fmt.Sprintf("[ddram] %s %s", entry.Level.Short(), entry.Message)
	})
	if _, err := loggo.ReplaceDefaultWriter(writer); err != nil {
		return err
	}

	level := "INFO"
	if debug {
		level = "DEBUG"
	}
	return loggo.ConfigureLoggers("<root>=" + level)
}

func main() {
	pflag.Parse()

	if options.help {
		printUsage()
		os.Exit(0)
	}

	if options.version {
		fmt.Println(version.GetVersion("ddram"))
		os.Exit(0)
	}

	if len(pflag.Args()) != 0 {
		fmt.Fprintf(os.Stderr, "Error: unexpected arguments: %v\n", pflag.Args())
		printUsage()
		os.Exit(1)
	}

	if err := setupLogging(options.debug); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to configure logging: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	r, err := runner.NewExecRunner(cfg.Encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	manager, err := ramdisk.NewManager(cfg, r, ramdisk.WithMountLister(ramdisk.NewSystemMountLister()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if options.check {
		if manager.Exists() {
			fmt.Printf("RAM disk is mounted on %s.\n", cfg.MountPath)
			os.Exit(0)
		}
		fmt.Printf("RAM disk is not mounted on %s.\n", cfg.MountPath)
		os.Exit(1)
	}

	fmt.Println("Setting up RAM disk for Xcode.")

	outcome, err := manager.Setup()
	switch {
	case err != nil:
		fmt.Printf("Unable to create RAM disk: %v\n", err)
		os.Exit(1)
	case outcome.State == ramdisk.StateAlreadyMounted:
		fmt.Println("RAM disk is already mounted.")
		for _, out := range outcome.Output {
			fmt.Print(out)
		}
		fmt.Println("RAM disk for Derived Data already exists.")
	default:
		fmt.Printf("Created %s RAM disk (%s) on %s.\n",
			humanize.IBytes(cfg.CapacityBytes()), manager.Profile().Name(), cfg.MountPath)
	}
}
