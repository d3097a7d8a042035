package main

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/resume-rag/internal/observability"
	"github.com/jonathan/resume-rag/internal/pipeline"
	"github.com/jonathan/resume-rag/internal/types"
	"github.com/spf13/cobra"
)

func mustMarkRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}
}

// withApp builds the app for one command run and closes it afterwards.
func (c *cli) withApp(cmd *cobra.Command, withRewriter bool, run func(a *app) error) error {
	a, err := newApp(cmd.Context(), c.cfg, c.logger, nil, withRewriter)
	if err != nil {
		return err
	}
	defer a.close()
	return run(a)
}

func newIndexCmd(c *cli) *cobra.Command {
	var pointsPath string
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Add resume points to the vector store",
		Long:  "Reads resume points from a JSON array of strings or a plain text file with one point per line, embeds them and adds them to the vector store.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			points, err := pipeline.LoadPoints(pointsPath)
			if err != nil {
				return err
			}
			return c.withApp(cmd, false, func(a *app) error {
				added, err := a.service.Index(cmd.Context(), points)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d points\n", added)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&pointsPath, "points", "p", "", "Path to a points file (required)")
	mustMarkRequired(cmd, "points")
	return cmd
}

func newClearCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every point from the vector store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, false, func(a *app) error {
				if err := a.service.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Vector store cleared")
				return nil
			})
		},
	}
}

func newRankCmd(c *cli) *cobra.Command {
	var (
		jobSource    string
		topK         int
		semanticOnly bool
	)
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank indexed points against a job description",
		Long:  "Retrieves the indexed points closest to a job description using hybrid semantic and keyword scoring, without rewriting them.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if topK < 1 {
				return fmt.Errorf("--top-k must be at least 1, got %d", topK)
			}
			return c.withApp(cmd, false, func(a *app) error {
				job, err := a.resolveJob(cmd.Context(), jobSource)
				if err != nil {
					return err
				}
				ranked, err := a.service.Rank(cmd.Context(), job, topK, !semanticOnly)
				if err != nil {
					return err
				}
				title := fmt.Sprintf("Top %d points (hybrid)", topK)
				if semanticOnly {
					title = fmt.Sprintf("Top %d points (semantic)", topK)
				}
				observability.NewPrinter(cmd.OutOrStdout()).PrintRanked(title, ranked)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&jobSource, "job", "j", "", "Job description file path or URL (required)")
	cmd.Flags().IntVarP(&topK, "top-k", "k", types.DefaultTopK, "Number of points to return")
	cmd.Flags().BoolVar(&semanticOnly, "semantic-only", false, "Rank by semantic similarity only")
	mustMarkRequired(cmd, "job")
	return cmd
}

func newStatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show vector store and model statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, false, func(a *app) error {
				stats, err := a.service.Stats(cmd.Context())
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			})
		},
	}
}
