package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maxviazov/soccer-scout-service/internal/config"
	"github.com/maxviazov/soccer-scout-service/internal/repository"
	"github.com/maxviazov/soccer-scout-service/internal/service"
	"github.com/maxviazov/soccer-scout-service/pkg/response"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd(open openFunc) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "scoutctl",
		Short:        "Ask scouting questions about the loaded player data",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.Path(), "Path to the config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log pipeline progress to stderr")

	root.AddCommand(queryCmd(open, opts))
	root.AddCommand(capabilitiesCmd(open, opts))
	root.AddCommand(healthCmd(open, opts))
	root.AddCommand(recentCmd(open, opts))
	return root
}

// withService opens the pipeline, runs fn and releases it.
func withService(cmd *cobra.Command, open openFunc, opts *rootOptions, fn func(svc service.ScoutService) error) error {
	svc, release, err := open(cmd.Context(), opts.configPath, opts.verbose)
	if err != nil {
		return err
	}
	defer release()
	return fn(svc)
}

func queryCmd(open openFunc, opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Answer a natural-language scouting question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return withService(cmd, open, opts, func(svc service.ScoutService) error {
				out, err := svc.Query(cmd.Context(), text)
				if err != nil {
					if fe := service.FieldErrors(err); len(fe) > 0 {
						return fmt.Errorf("%s %s", fe[0].Field, fe[0].Message)
					}
					return err
				}
				p := response.Format(out)
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), p)
				}
				printPayload(cmd.OutOrStdout(), p)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the API response payload as JSON")
	return cmd
}

func capabilitiesCmd(open openFunc, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "List query categories, example questions and leagues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, open, opts, func(svc service.ScoutService) error {
				return writeJSON(cmd.OutOrStdout(), svc.Capabilities())
			})
		},
	}
}

func healthCmd(open openFunc, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Report data coverage and model availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, open, opts, func(svc service.ScoutService) error {
				h := svc.Health(cmd.Context())
				if err := writeJSON(cmd.OutOrStdout(), h); err != nil {
					return err
				}
				if h.Status == "unavailable" {
					return errors.New("player data unavailable")
				}
				return nil
			})
		},
	}
}

func recentCmd(open openFunc, opts *rootOptions) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the most recent logged queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, open, opts, func(svc service.ScoutService) error {
				res, err := svc.RecentQueries(cmd.Context(), repository.Page{Limit: limit, Offset: offset})
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Entries to skip")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printPayload(w io.Writer, p response.Payload) {
	fmt.Fprintln(w, p.ResponseText)
	if p.Summary != "" && p.Summary != p.ResponseText {
		fmt.Fprintf(w, "\n%s\n", p.Summary)
	}
	if len(p.Recommendations) > 0 {
		fmt.Fprintln(w)
	}
	for i, r := range p.Recommendations {
		age := "?"
		if r.Age != nil {
			age = fmt.Sprint(*r.Age)
		}
		fmt.Fprintf(w, "%2d. %-28s %-10s %-3s %-22s %s (%.3f)\n", i+1, r.Name, r.Position, age, r.Club, r.League, r.Score)
		if r.Reasoning != "" {
			fmt.Fprintf(w, "    %s\n", r.Reasoning)
		}
	}
	for _, s := range p.Metadata.Suggestions {
		fmt.Fprintf(w, "  - %s\n", s)
	}
}
