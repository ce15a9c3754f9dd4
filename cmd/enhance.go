package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance [thesis]",
	Short: "Refine a raw thesis into a sharper search query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initScout()
		if err != nil {
			return err
		}

		enhanced, err := env.Discoverer.EnhanceThesis(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), enhanced)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(enhanceCmd)
}
