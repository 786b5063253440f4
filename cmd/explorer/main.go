// Package main is the entry point for the explorer CLI, a terminal client
// for the same operations the HTTP API serves.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"fieldexplorer/internal/app"
	"fieldexplorer/internal/config"
	"fieldexplorer/internal/explorer"
	"fieldexplorer/internal/models"
)

// opened holds the connected stores for the running command.
var opened *app.App

// rootCmd is the base command for the explorer CLI.
var rootCmd = &cobra.Command{
	Use:   "explorer",
	Short: "Explore research fields across the publication, faculty and favorites stores",
	Long: `explorer queries the academic world stores directly. Publication trends come
from MongoDB, faculty and keyword rankings from Neo4j, and recommendations over
the favorite keywords from PostgreSQL.

Store connections are configured with the same environment variables as the
server (DATABASE_URL, MONGO_URI, NEO4J_URI, ...).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Open(cmd.Context(), config.Load())
		if err != nil {
			return err
		}
		opened = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if opened != nil {
			opened.Close(context.Background())
		}
	},
}

// printRows writes rows as indented JSON. A degraded read still prints its
// empty result and reports the condition on stderr.
func printRows(v any, err error) error {
	if err != nil {
		if !explorer.IsDegraded(err) {
			return err
		}
		fmt.Fprintf(os.Stderr, "warning: degraded result: %v\n", err)
	}
	return printJSON(v)
}

// printView writes a favorites view. Any error fails the command.
func printView(v models.FavoritesView, err error) error {
	if err != nil {
		return err
	}
	if v.Degraded {
		fmt.Fprintln(os.Stderr, "warning: recommendations could not be recomputed")
	}
	return printJSON(v)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
