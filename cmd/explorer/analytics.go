package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"fieldexplorer/internal/models"
)

var trendCmd = &cobra.Command{
	Use:   "trend <keyword>",
	Short: "Publications per year for a keyword (1980-2020)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printRows(opened.Explorer.Trend(cmd.Context(), args[0]))
	},
}

var topProfessorsCmd = &cobra.Command{
	Use:   "top-professors <keyword>",
	Short: "Top 10 professors by keyword-relevant citations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetInt("start")
		end, _ := cmd.Flags().GetInt("end")
		return printRows(opened.Explorer.TopProfessors(cmd.Context(), args[0], start, end))
	},
}

var universityKeywordsCmd = &cobra.Command{
	Use:   "university-keywords <institute>",
	Short: "Top 10 keywords by number of interested faculty at an institute",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printRows(opened.Explorer.TopKeywordsForUniversity(cmd.Context(), args[0]))
	},
}

var professorKeywordsCmd = &cobra.Command{
	Use:   "professor-keywords <professor>",
	Short: "Top 10 keywords by citations for a professor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printRows(opened.Explorer.TopKeywordsForProfessor(cmd.Context(), args[0]))
	},
}

var catalogCmd = &cobra.Command{
	Use:       "catalog <keywords|universities|professors>",
	Short:     "List every keyword, university or professor name",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"keywords", "universities", "professors"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var load func(context.Context) ([]string, error)
		switch args[0] {
		case "keywords":
			load = opened.Explorer.KeywordCatalog
		case "universities":
			load = opened.Explorer.UniversityCatalog
		case "professors":
			load = opened.Explorer.ProfessorCatalog
		default:
			return fmt.Errorf("unknown catalog %q", args[0])
		}
		return printRows(load(cmd.Context()))
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Top 5 professors and universities over the favorite keywords",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		professors, err := opened.Explorer.RecommendedProfessors(ctx)
		if err := printRows(professors, err); err != nil {
			return err
		}
		return printRows(opened.Explorer.RecommendedUniversities(ctx))
	},
}

func init() {
	topProfessorsCmd.Flags().Int("start", models.TrendMinYear, "first publication year (inclusive)")
	topProfessorsCmd.Flags().Int("end", models.TrendMaxYear, "last publication year (inclusive)")

	rootCmd.AddCommand(trendCmd, topProfessorsCmd, universityKeywordsCmd, professorKeywordsCmd, catalogCmd, recommendCmd)
}
