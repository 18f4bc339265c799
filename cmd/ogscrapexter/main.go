// cmd/ogscrapexter/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cli carries the streams a command reads from and writes to
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr})
	stop()
	os.Exit(code)
}

// run dispatches a command and returns the exit status
func run(ctx context.Context, args []string, c *cli) int {
	if len(args) < 1 {
		c.printUsage()
		return exitGeneral
	}

	command, rest := args[0], args[1:]

	var err error
	switch command {
	case "extract":
		err = c.runExtract(rest)
	case "fetch":
		err = c.runFetch(ctx, rest)
	case "bulk":
		err = c.runBulk(ctx, rest)
	case "validate":
		err = c.runValidate(rest)
	case "template":
		err = c.runTemplate(rest)
	case "version", "--version":
		c.printVersion()
		return exitOK
	case "help", "--help", "-h":
		c.printUsage()
		return exitOK
	default:
		fmt.Fprintf(c.stderr, "Error: unknown command '%s'\n", command)
		c.printUsage()
		return exitGeneral
	}

	if err != nil {
		if partial, ok := err.(*partialFailure); ok {
			fmt.Fprintln(c.stderr, partial.Error())
			return exitPartial
		}
		fmt.Fprint(c.stderr, formatError(err, hasFlag(rest, "-v", "--v", "-verbose", "--verbose")))
		return exitCode(err)
	}
	return exitOK
}

// hasFlag checks if any of the flags is present in the arguments
func hasFlag(args []string, flags ...string) bool {
	for _, arg := range args {
		for _, flag := range flags {
			if arg == flag {
				return true
			}
		}
	}
	return false
}

// printUsage displays help information
func (c *cli) printUsage() {
	fmt.Fprintln(c.stdout, "OGScrapexter - Open Graph and Twitter Card metadata extractor")
	fmt.Fprintln(c.stdout)
	fmt.Fprintln(c.stdout, "Usage:")
	fmt.Fprintln(c.stdout, "  ogscrapexter extract [flags] <file.html|->   Extract metadata from a local document")
	fmt.Fprintln(c.stdout, "  ogscrapexter fetch [flags] <url>             Fetch a URL and extract its metadata")
	fmt.Fprintln(c.stdout, "  ogscrapexter bulk [flags] <urls.txt|->       Extract every URL listed, one per line")
	fmt.Fprintln(c.stdout, "  ogscrapexter validate <config.yaml>          Validate configuration file")
	fmt.Fprintln(c.stdout, "  ogscrapexter template [-type <type>]         Generate configuration template")
	fmt.Fprintln(c.stdout, "  ogscrapexter version                         Show version information")
	fmt.Fprintln(c.stdout, "  ogscrapexter help                            Show this help message")
	fmt.Fprintln(c.stdout)
	fmt.Fprintln(c.stdout, "Flags:")
	fmt.Fprintln(c.stdout, "  -config <file>        Configuration file")
	fmt.Fprintln(c.stdout, "  -format json|yaml|csv Output format")
	fmt.Fprintln(c.stdout, "  -o <file>             Output file (default stdout)")
	fmt.Fprintln(c.stdout, "  -pretty               Indent JSON output")
	fmt.Fprintln(c.stdout, "  -all-media            Keep every image, video and song instead of the best one")
	fmt.Fprintln(c.stdout, "  -only-og              Skip fallbacks to non Open Graph tags")
	fmt.Fprintln(c.stdout, "  -img-fallback         Use <img> elements when no image tag exists")
	fmt.Fprintln(c.stdout, "  -best-image           Report the best scored image")
	fmt.Fprintln(c.stdout, "  -check                Validate the extracted metadata")
	fmt.Fprintln(c.stdout, "  -tag property=field   Extract a custom meta tag (repeatable, prefix + for lists)")
	fmt.Fprintln(c.stdout, "  -concurrency <n>      Parallel requests for bulk")
	fmt.Fprintln(c.stdout, "  -v                    Verbose output")
	fmt.Fprintln(c.stdout)
	fmt.Fprintln(c.stdout, "Template types:")
	fmt.Fprintln(c.stdout, "  basic    Single URL extraction (default)")
	fmt.Fprintln(c.stdout, "  bulk     Rate limited bulk extraction")
	fmt.Fprintln(c.stdout, "  server   API server with Redis cache and metrics")
	fmt.Fprintln(c.stdout)
	fmt.Fprintln(c.stdout, "Exit codes: 1 general, 2 config, 3 network, 4 content, 5 output, 6 URL rejected, 7 some bulk URLs failed")
}

// printVersion displays version information
func (c *cli) printVersion() {
	fmt.Fprintf(c.stdout, "OGScrapexter %s\n", version)
	fmt.Fprintf(c.stdout, "Build time: %s\n", buildTime)
	fmt.Fprintf(c.stdout, "Git commit: %s\n", gitCommit)
}
