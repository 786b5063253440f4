package main

import (
	"github.com/spf13/cobra"
)

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Manage the favorite keyword list",
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the favorites and their recommendations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printView(opened.Favorites.View(cmd.Context()))
	},
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add <keyword>",
	Short: "Add a favorite keyword",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printView(opened.Favorites.Add(cmd.Context(), args[0]))
	},
}

var favoritesRemoveCmd = &cobra.Command{
	Use:   "remove <keyword>",
	Short: "Remove a favorite keyword",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printView(opened.Favorites.Remove(cmd.Context(), args[0]))
	},
}

var favoritesKeepCmd = &cobra.Command{
	Use:   "keep [keyword...]",
	Short: "Remove every favorite keyword not listed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printView(opened.Favorites.Reconcile(cmd.Context(), args))
	},
}

func init() {
	favoritesCmd.AddCommand(favoritesListCmd, favoritesAddCmd, favoritesRemoveCmd, favoritesKeepCmd)
	rootCmd.AddCommand(favoritesCmd)
}
