package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dtroode/confreg-server/internal/api/http/handler"
	"github.com/dtroode/confreg-server/internal/dashboard"
)

// Output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func newAdminCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Inspect registrations",
	}
	cmd.AddCommand(newAdminStatsCommand(a), newAdminListCommand(a))
	return cmd
}

func newAdminStatsCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show registration counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := a.client().Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case formatJSON, formatYAML:
				return encode(out, format, stats)
			default:
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintf(tw, "Total\t%d\n", stats.Total)
				fmt.Fprintf(tw, "Students\t%d\n", stats.Students)
				fmt.Fprintf(tw, "Professionals\t%d\n", stats.Professionals)
				return tw.Flush()
			}
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "output format: table, json, yaml")
	return cmd
}

func newAdminListCommand(a *app) *cobra.Command {
	var (
		regType string
		sort    string
		search  string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := dashboard.New(a.client(), dashboard.WithSort(sort))
			if err := d.Load(cmd.Context()); err != nil {
				return err
			}
			d.SetType(regType)
			d.SetSearch(search)

			regs := d.View().Registrations
			out := cmd.OutOrStdout()
			switch format {
			case formatJSON, formatYAML:
				return encode(out, format, regs)
			default:
				return writeTable(out, regs)
			}
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&regType, "type", "all", "registration type: all, student, professional")
	flags.StringVar(&sort, "sort", "desc", "sort by creation time: asc or desc")
	flags.StringVar(&search, "search", "", "case-insensitive filter on name or email")
	flags.StringVarP(&format, "output", "o", formatTable, "output format: table, json, yaml")
	return cmd
}

func encode(w io.Writer, format string, v any) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

func writeTable(w io.Writer, regs []handler.RegistrationResponse) error {
	if len(regs) == 0 {
		_, err := fmt.Fprintln(w, "No registrations found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tEMAIL\tTYPE\tCOMPANY\tPHONE\tREGISTERED")
	for _, r := range regs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Name, r.Email, r.RegistrationType, deref(r.Company), deref(r.Phone),
			r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
