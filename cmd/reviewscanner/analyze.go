package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ReviewScanner/internal/app"
	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/infrastructure/parser"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyse the reviews of one product",
	Long: `Analyse reviews from a JSON/NDJSON file (--input) or fetch them for a product
through the configured review source (--url or --asin). The result is printed to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		productURL, _ := cmd.Flags().GetString("url")
		asinFlag, _ := cmd.Flags().GetString("asin")
		format, _ := cmd.Flags().GetString("format")

		set := 0
		for _, v := range []string{input, productURL, asinFlag} {
			if v != "" {
				set++
			}
		}
		if set != 1 {
			return errors.New("exactly one of --input, --url or --asin is required")
		}

		cfg := loadConfig(cmd)
		logger := newLogger(cfg, cmd)
		application := app.New(cmd.Context(), cfg, logger)
		defer application.Close()

		var (
			result domain.AnalysisResult
			err    error
		)
		switch {
		case input != "":
			reviews, readErr := parser.ReadReviews(input)
			if readErr != nil {
				return readErr
			}
			product, _ := cmd.Flags().GetString("product")
			if product == "" {
				product = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
			}
			result, err = application.Service().AnalyzeReviews(cmd.Context(), product, reviews)
		case productURL != "":
			result, err = application.Service().AnalyzeProduct(cmd.Context(), productURL)
		default:
			result, err = application.Service().AnalyzeProduct(cmd.Context(), asinFlag)
		}
		if err != nil {
			return err
		}

		return writeResult(cmd.OutOrStdout(), result, format)
	},
}

func init() {
	analyzeCmd.Flags().String("input", "", "JSON array or NDJSON file of reviews")
	analyzeCmd.Flags().String("product", "", "Product identifier for --input (default: file name)")
	analyzeCmd.Flags().String("url", "", "Product page URL")
	analyzeCmd.Flags().String("asin", "", "Product ASIN")
	analyzeCmd.Flags().String("format", "json", "Output format: json, ndjson or summary")
}

func writeResult(w io.Writer, result domain.AnalysisResult, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "ndjson":
		return parser.WriteNDJSON(w, result.Reviews)
	case "summary":
		m := result.Metrics
		_, err := fmt.Fprintf(w, "Product %s: grade %s (%s)\n%s\n", result.ProductID, m.Grade, m.GradeDescription, result.Summary)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
