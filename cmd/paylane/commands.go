package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/DanielPopoola/paylane-go/paylane"
	"github.com/spf13/cobra"
)

// errNotSuccessful marks a call that completed but whose response did not
// carry a truthy "success" field.
var errNotSuccessful = errors.New("response not successful")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "paylane",
		Short:         "Command line client for the PayLane REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("base-url", "", "API root (env PAYLANE_API__BASE_URL)")
	pf.String("username", "", "API username (env PAYLANE_API__USERNAME)")
	pf.String("password", "", "API password (env PAYLANE_API__PASSWORD)")
	pf.Bool("insecure", false, "skip TLS certificate verification")
	pf.Duration("timeout", 30*time.Second, "HTTP timeout per call")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.Bool("journal", false, "record calls in the journal database")

	root.AddCommand(
		newOperationsCmd(),
		newCallCmd(),
		newRawCmd(),
		newJournalCmd(),
	)
	return root
}

func newOperationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "operations",
		Short: "List the supported operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMETHOD\tPATH")
			for _, op := range paylane.Operations() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", op.Name, op.Method, op.Path)
			}
			return w.Flush()
		},
	}
}

func newCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <operation> [-]",
		Short: "Invoke a named operation and print the response",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := readParams(cmd, args[1:])
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.client.Do(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}
	addParamsFlags(cmd)
	return cmd
}

func newRawCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "raw <method> <path> [-]",
		Short: "Send a request to any API path",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := readParams(cmd, args[2:])
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.client.Call(cmd.Context(), args[1], args[0], params)
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}
	addParamsFlags(cmd)
	return cmd
}

func newJournalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show the most recent journaled calls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, err := cmd.Flags().GetInt("limit")
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.journal == nil {
				return errors.New("journal is disabled; set PAYLANE_JOURNAL__ENABLED=true or pass --journal")
			}

			entries, err := a.journal.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STARTED\tOPERATION\tMETHOD\tPATH\tSTATUS\tSUCCESS\tDURATION\tERROR")
			for _, e := range entries {
				errText := ""
				if e.Error != nil {
					errText = *e.Error
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%t\t%s\t%s\n",
					e.StartedAt.Format(time.RFC3339), e.Operation, e.Method, e.Path,
					e.StatusCode, e.Success, e.Duration, errText)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int("limit", 20, "number of entries to show")
	return cmd
}

func addParamsFlags(cmd *cobra.Command) {
	cmd.Flags().String("params", "", "request parameters as a JSON object")
	cmd.Flags().String("params-file", "", "read parameters from a JSON file, - for stdin")
	cmd.MarkFlagsMutuallyExclusive("params", "params-file")
}

// readParams decodes the JSON object given through --params, --params-file
// or a trailing "-" argument meaning stdin. Numbers are kept as json.Number
// so amounts are sent back exactly as written.
func readParams(cmd *cobra.Command, rest []string) (paylane.Params, error) {
	inline, _ := cmd.Flags().GetString("params")
	file, _ := cmd.Flags().GetString("params-file")

	if len(rest) > 0 {
		if rest[0] != "-" {
			return nil, fmt.Errorf("unexpected argument %q; only - (stdin) may follow", rest[0])
		}
		if inline != "" || file != "" {
			return nil, errors.New("- cannot be combined with --params or --params-file")
		}
		file = "-"
	}

	var raw []byte
	switch {
	case inline != "":
		raw = []byte(inline)
	case file == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read params from stdin: %w", err)
		}
		raw = b
	case file != "":
		b, err := os.ReadFile(file) //nolint:gosec // path supplied by the operator
		if err != nil {
			return nil, fmt.Errorf("read params file: %w", err)
		}
		raw = b
	default:
		return nil, nil
	}

	if strings.TrimSpace(string(raw)) == "" {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var params paylane.Params
	if err := dec.Decode(&params); err != nil {
		return nil, fmt.Errorf("params must be a JSON object: %w", err)
	}
	return params, nil
}

func printResponse(w io.Writer, resp paylane.Response) error {
	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding response: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(out)); err != nil {
		return err
	}
	if !resp.Success() {
		return errNotSuccessful
	}
	return nil
}
