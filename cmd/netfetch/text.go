package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/vertextoedge/netfetch/internal/domain"
	"github.com/vertextoedge/netfetch/internal/service/fetch"
	"github.com/vertextoedge/netfetch/internal/service/runtime"
)

var textCmd = &cobra.Command{
	Use:   "text <url>",
	Short: "Print a response body as text",
	Long:  "Prints the body to stdout and the ETag, if any, to stderr.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		header, err := headersFlag(cmd)
		if err != nil {
			return err
		}

		eng, err := newEngine(cfg, cfg.Download.OutputDir, log)
		if err != nil {
			return err
		}
		defer eng.Close() //nolint:errcheck

		var failure string
		done := false
		handle, err := eng.runtime.SubmitText(runtime.Request{URL: args[0], Header: header}, fetch.TextFuncs{
			Complete: func(text, validationToken string) {
				done = true
				fmt.Fprint(cmd.OutOrStdout(), text)
				if validationToken != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "ETag: %s\n", validationToken)
				}
			},
			Error: func(msg string) { failure = msg },
		})
		if err != nil {
			return err
		}

		waitOrCancel(cmd.Context(), handle)
		return resultError(done, failure)
	},
}

var jsonCmd = &cobra.Command{
	Use:   "json <url>",
	Short: "Fetch a JSON object or array and pretty-print it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		header, err := headersFlag(cmd)
		if err != nil {
			return err
		}

		eng, err := newEngine(cfg, cfg.Download.OutputDir, log)
		if err != nil {
			return err
		}
		defer eng.Close() //nolint:errcheck

		var failure string
		var value domain.TaggedValue
		done := false
		handle, err := eng.runtime.SubmitJSON(runtime.Request{URL: args[0], Header: header}, fetch.JSONFuncs{
			Complete: func(v domain.TaggedValue) {
				done = true
				value = v
			},
			Error: func(msg string) { failure = msg },
		})
		if err != nil {
			return err
		}

		waitOrCancel(cmd.Context(), handle)
		if err := resultError(done, failure); err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "shape: %s\n", value.Kind)
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(value.Value())
	},
}

func init() {
	for _, c := range []*cobra.Command{textCmd, jsonCmd} {
		c.Flags().StringArrayP("header", "H", nil, "extra request header 'Name: value' (repeatable)")
		rootCmd.AddCommand(c)
	}
}

func headersFlag(cmd *cobra.Command) (http.Header, error) {
	values, _ := cmd.Flags().GetStringArray("header")
	return parseHeaders(values)
}

func resultError(done bool, failure string) error {
	switch {
	case failure != "":
		return errors.New(failure)
	case !done:
		return errors.New("request cancelled")
	}
	return nil
}
