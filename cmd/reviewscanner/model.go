package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ReviewScanner/internal/model"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect classifier artifacts",
}

var modelValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Validate a classifier artifact without loading it into a server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		art, err := model.LoadFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "artifact: %s\n", args[0])
		if art.Name != "" {
			fmt.Fprintf(out, "name:     %s\n", art.Name)
		}
		fmt.Fprintf(out, "version:  %s\n", art.Version)
		fmt.Fprintf(out, "terms:    %d (ngram max %d)\n", len(art.Vectorizer.Vocabulary), art.Vectorizer.NgramMax)
		fmt.Fprintf(out, "checksum: %s\n", art.Checksum())
		return nil
	},
}

func init() {
	modelCmd.AddCommand(modelValidateCmd)
}
