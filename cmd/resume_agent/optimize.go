package main

import (
	"fmt"

	"github.com/jonathan/resume-rag/internal/observability"
	"github.com/jonathan/resume-rag/internal/types"
	"github.com/spf13/cobra"
)

// sectionFlags are the per-section bullet limits shared by select and optimize.
type sectionFlags struct {
	experience, education, project, custom int
}

func (f *sectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.experience, "bullets-per-experience", types.DefaultBulletsPerExperience, "Bullets kept per experience")
	cmd.Flags().IntVar(&f.education, "bullets-per-education", types.DefaultBulletsPerEducation, "Bullets kept per education entry")
	cmd.Flags().IntVar(&f.project, "bullets-per-project", types.DefaultBulletsPerProject, "Bullets kept per project")
	cmd.Flags().IntVar(&f.custom, "bullets-per-custom", types.DefaultBulletsPerCustom, "Bullets kept per custom section")
}

func (f *sectionFlags) request(resume types.StructuredResume, job string) types.SelectionRequest {
	return types.SelectionRequest{
		Resume:               resume,
		JobDescription:       job,
		BulletsPerExperience: f.experience,
		BulletsPerEducation:  f.education,
		BulletsPerProject:    f.project,
		BulletsPerCustom:     f.custom,
	}
}

func newSelectCmd(c *cli) *cobra.Command {
	var (
		resumePath, jobSource, outPath string
		limits                         sectionFlags
	)
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Select the most relevant bullets of a structured resume",
		Long:  "Selects the bullets of every resume section that best match a job description and reports the estimated line count and uncovered job terms.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resume, err := readResume(resumePath)
			if err != nil {
				return err
			}
			return c.withApp(cmd, false, func(a *app) error {
				job, err := a.resolveJob(cmd.Context(), jobSource)
				if err != nil {
					return err
				}
				resp, err := a.service.Select(cmd.Context(), limits.request(resume, job))
				if err != nil {
					return err
				}
				return emitSelection(cmd, outPath, resp)
			})
		},
	}
	cmd.Flags().StringVarP(&resumePath, "resume", "r", "", "Path to a structured resume JSON file (required)")
	cmd.Flags().StringVarP(&jobSource, "job", "j", "", "Job description file path or URL (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the JSON response to this path")
	limits.register(cmd)
	mustMarkRequired(cmd, "resume", "job")
	return cmd
}

func newOptimizeCmd(c *cli) *cobra.Command {
	var (
		resumePath, jobSource, outPath, style string
		limits                                sectionFlags
	)
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Select and rewrite the bullets of a structured resume",
		Long:  "Selects the best bullets per section like select, then rewrites each section's selection for the job description. Sections whose rewrite fails keep their selected text.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resume, err := readResume(resumePath)
			if err != nil {
				return err
			}
			return c.withApp(cmd, true, func(a *app) error {
				job, err := a.resolveJob(cmd.Context(), jobSource)
				if err != nil {
					return err
				}
				resp, err := a.service.Optimize(cmd.Context(), types.OptimizationRequest{
					SelectionRequest: limits.request(resume, job),
					RewriteStyle:     style,
				})
				if err != nil {
					return err
				}
				return emitSelection(cmd, outPath, resp)
			})
		},
	}
	cmd.Flags().StringVarP(&resumePath, "resume", "r", "", "Path to a structured resume JSON file (required)")
	cmd.Flags().StringVarP(&jobSource, "job", "j", "", "Job description file path or URL (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the JSON response to this path")
	cmd.Flags().StringVar(&style, "style", types.DefaultRewriteStyle, "Rewrite style")
	limits.register(cmd)
	mustMarkRequired(cmd, "resume", "job")
	return cmd
}

func emitSelection(cmd *cobra.Command, outPath string, resp *types.SelectionResponse) error {
	if outPath != "" {
		if err := writeJSON(outPath, resp); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
		return nil
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintSelection(resp)
	return nil
}

func newOptimizeFlatCmd(c *cli) *cobra.Command {
	var (
		jobSource, outPath, mode, style string
		topK                            int
		semanticOnly                    bool
	)
	cmd := &cobra.Command{
		Use:   "optimize-flat",
		Short: "Retrieve indexed points for a job and rewrite them",
		Long:  "Retrieves the indexed points closest to a job description and rewrites them with one LLM call. Creative mode also suggests new bullets that cover gaps.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, true, func(a *app) error {
				job, err := a.resolveJob(cmd.Context(), jobSource)
				if err != nil {
					return err
				}
				hybrid := !semanticOnly
				resp, err := a.service.OptimizeFlat(cmd.Context(), types.RAGRequest{
					JobDescription:   job,
					TopK:             topK,
					RewriteStyle:     style,
					OptimizationMode: types.Mode(mode),
					UseHybrid:        &hybrid,
				})
				if err != nil {
					return err
				}
				if outPath != "" {
					if err := writeJSON(outPath, resp); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
					return nil
				}
				observability.NewPrinter(cmd.OutOrStdout()).PrintRAGResponse(resp)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&jobSource, "job", "j", "", "Job description file path or URL (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the JSON response to this path")
	cmd.Flags().StringVarP(&mode, "mode", "m", string(types.ModeStrict), "Optimization mode: strict or creative")
	cmd.Flags().StringVar(&style, "style", types.DefaultRewriteStyle, "Rewrite style")
	cmd.Flags().IntVarP(&topK, "top-k", "k", types.DefaultTopK, "Number of points to retrieve")
	cmd.Flags().BoolVar(&semanticOnly, "semantic-only", false, "Retrieve by semantic similarity only")
	mustMarkRequired(cmd, "job")
	return cmd
}
