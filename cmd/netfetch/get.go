package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vertextoedge/netfetch/internal/domain"
	"github.com/vertextoedge/netfetch/internal/service/fetch"
	"github.com/vertextoedge/netfetch/internal/service/runtime"
)

var errCancelled = errors.New("download cancelled, rerun with --append to resume")

var getCmd = &cobra.Command{
	Use:   "get <url>",
	Short: "Download a binary payload to a file",
	Long: "Streams the response body to a file. With --append an existing file is " +
		"continued with a byte-range request. Ctrl-C stops at the next block and " +
		"keeps the partial file.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawURL := args[0]

		output, _ := cmd.Flags().GetString("output")
		appendMode, _ := cmd.Flags().GetBool("append")
		headerFlags, _ := cmd.Flags().GetStringArray("header")
		quiet, _ := cmd.Flags().GetBool("quiet")

		if output == "" {
			output = defaultOutputName(rawURL)
		}
		output, err := filepath.Abs(output)
		if err != nil {
			return err
		}

		header, err := parseHeaders(headerFlags)
		if err != nil {
			return err
		}

		eng, err := newEngine(cfg, filepath.Dir(output), log)
		if err != nil {
			return err
		}
		defer eng.Close() //nolint:errcheck

		printer := newProgressPrinter(cmd.ErrOrStderr(), quiet)
		var failure string
		completed := false
		handle, err := eng.runtime.SubmitBinary(
			runtime.Request{URL: rawURL, Header: header},
			output,
			appendMode,
			fetch.BinaryFuncs{
				Progress: printer.Update,
				Complete: func() {
					printer.Done()
					completed = true
				},
				Error: func(msg string) {
					printer.Done()
					failure = msg
				},
			},
		)
		if err != nil {
			return err
		}

		waitOrCancel(cmd.Context(), handle)

		switch {
		case failure != "":
			return errors.New(failure)
		case !completed:
			printer.Done()
			return errCancelled
		}

		info, err := os.Stat(output)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "saved %s (%s)\n", output, humanize.IBytes(uint64(info.Size())))
		return nil
	},
}

func init() {
	getCmd.Flags().StringP("output", "o", "", "output file (default: last URL path segment)")
	getCmd.Flags().BoolP("append", "a", false, "resume an existing file instead of replacing it")
	getCmd.Flags().StringArrayP("header", "H", nil, "extra request header 'Name: value' (repeatable)")
	getCmd.Flags().BoolP("quiet", "q", false, "do not print progress")
	rootCmd.AddCommand(getCmd)
}

// waitOrCancel blocks until the task finished. SIGINT and SIGTERM request
// cooperative cancellation.
func waitOrCancel(ctx context.Context, h *runtime.Handle) {
	sigCtx, stop := signalContext(ctx)
	defer stop()

	select {
	case <-h.Done():
		return
	case <-sigCtx.Done():
		h.Cancel()
	}
	<-h.Done()
}

func defaultOutputName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" && base != "" {
			return base
		}
	}
	return "download"
}

// progressPrinter renders a single updating progress line
type progressPrinter struct {
	out   io.Writer
	quiet bool
	start time.Time
	last  time.Time
	base  int64
	shown bool
	seen  bool
}

func newProgressPrinter(out io.Writer, quiet bool) *progressPrinter {
	return &progressPrinter{out: out, quiet: quiet, start: time.Now()}
}

// Update redraws the line at most ten times per second
func (p *progressPrinter) Update(progress domain.Progress) {
	if p.quiet {
		return
	}
	now := time.Now()
	if !p.seen {
		// Bytes already on disk do not count towards the rate
		p.base, p.seen = progress.Downloaded, true
		p.start = now
	}
	if p.shown && now.Sub(p.last) < 100*time.Millisecond && progress.Downloaded != progress.Total {
		return
	}
	p.last = now
	p.shown = true

	line := humanize.IBytes(uint64(progress.Downloaded))
	if progress.TotalKnown() {
		line = fmt.Sprintf("%s / %s (%.1f%%)",
			line, humanize.IBytes(uint64(progress.Total)), progress.Fraction()*100)
	}
	if elapsed := now.Sub(p.start).Seconds(); elapsed > 0 {
		rate := float64(progress.Downloaded-p.base) / elapsed
		line += fmt.Sprintf("  %s/s", humanize.IBytes(uint64(rate)))
	}
	fmt.Fprintf(p.out, "\r\033[K%s", line)
}

// Done ends the progress line
func (p *progressPrinter) Done() {
	if p.shown {
		fmt.Fprintln(p.out)
		p.shown = false
	}
}
