package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/saturnines/factsheet-tools/pkg/factsheet"
	"github.com/saturnines/factsheet-tools/pkg/report"
)

func checkCmd(flags *globalFlags) *cobra.Command {
	cmd := cobra.Command{
		Use:   "check",
		Short: "Validate the workspace credentials.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			s.Close()

			_, _ = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Authenticated against %s\n", s.cfg.Workspace.Host)
			return nil
		},
	}
	return &cmd
}

func archiveAllCmd(flags *globalFlags) *cobra.Command {
	var comment string

	cmd := cobra.Command{
		Use:   "archive-all",
		Short: "Archive every factsheet in the workspace.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer s.Close()

			if !cmd.Flags().Changed("comment") {
				comment = s.cfg.Archive.Comment
			}

			ids, err := s.service.ListIDs(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = color.New(color.FgBlue).Fprintf(out, "There are %s in the workspace\n", plural(len(ids), "factsheet"))

			res, err := s.service.ArchiveIDs(cmd.Context(), ids, comment)
			_, _ = fmt.Fprintf(out, "%s have been archived\n", plural(res.Archived, "factsheet"))
			return err
		},
	}

	cmd.Flags().StringVar(&comment, "comment", "archived", "Comment recorded with each archive.")

	return &cmd
}

func seedCmd(flags *globalFlags) *cobra.Command {
	var (
		count int
		typ   string
	)

	cmd := cobra.Command{
		Use:   "seed",
		Short: "Create randomly tagged test factsheets.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer s.Close()

			if !cmd.Flags().Changed("count") {
				count = s.cfg.Seed.Count
			}
			if !cmd.Flags().Changed("type") {
				typ = s.cfg.Seed.Type
			}

			res, err := s.service.Seed(cmd.Context(), factsheet.SeedOptions{Count: count, Type: typ})
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s have been created\n", plural(res.Created, "factsheet"))
			return err
		},
	}

	cmd.Flags().IntVar(&count, "count", 300, "Number of factsheets to create.")
	cmd.Flags().StringVar(&typ, "type", "Application", "Type of the created factsheets.")

	return &cmd
}

func tagsCmd(flags *globalFlags) *cobra.Command {
	cmd := cobra.Command{
		Use:   "tags",
		Short: "List the tags of the workspace.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer s.Close()

			tags, err := s.service.ListTags(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, t := range tags {
				group := "-"
				if t.TagGroup != nil {
					group = t.TagGroup.Name
				}
				_, _ = fmt.Fprintf(out, "%s\t%s%s%s\t%s\n", t.ID, group, report.PathSeparator, t.Name, t.Color)
			}
			return nil
		},
	}
	return &cmd
}

func reportCmd(flags *globalFlags) *cobra.Command {
	var (
		format  string
		noColor bool
	)

	cmd := cobra.Command{
		Use:   "report",
		Short: "Build the tag report tree.",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "json", "text", "paths":
			default:
				return fmt.Errorf("unknown format %q", format)
			}

			s, err := newSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer s.Close()

			root, err := s.service.Report(cmd.Context(), s.cfg.Report)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(root)
			case "paths":
				for _, p := range report.Paths(root) {
					_, _ = fmt.Fprintf(out, "%s\t%d\n", p.Path, p.Size)
				}
				return nil
			default:
				return report.Render(out, root, report.RenderOptions{Color: !noColor && !color.NoColor})
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: json, text or paths.")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output.")

	return &cmd
}
