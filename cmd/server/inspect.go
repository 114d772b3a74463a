package main

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/platewise/backend/internal/domain"
	"github.com/platewise/backend/internal/infrastructure/usda"
	"github.com/platewise/backend/internal/usecase"
)

var normalizeNutrientsOnly bool

var normalizeCmd = &cobra.Command{
	Use:         "normalize <detail.json>",
	Short:       "Print the detail view of a dumped FDC food record",
	Long:        "Reads one FoodData Central detail record (use - for stdin) and prints its detail view or, with --nutrients-only, its canonical nutrient table.",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{offlineAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}

		rec, err := domain.DecodeFoodRecord(data)
		if err != nil {
			return eris.Wrapf(err, "decode %s", args[0])
		}

		if normalizeNutrientsOnly {
			return writeJSON(cmd.OutOrStdout(), usda.NormalizeNutrients(rec))
		}
		return writeJSON(cmd.OutOrStdout(), usecase.BuildFoodDetail(0, rec))
	},
}

var compactCmd = &cobra.Command{
	Use:         "compact <query> <search.json>",
	Short:       "Print ranked compact rows for a dumped FDC search response",
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{offlineAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args[1])
		if err != nil {
			return err
		}

		var page domain.SearchPage
		if err := json.Unmarshal(data, &page); err != nil {
			return eris.Wrapf(errors.Join(domain.ErrInvalidInput, err), "decode %s", args[1])
		}

		return writeJSON(cmd.OutOrStdout(), usecase.CompactSearchResults(args[0], page.Records))
	},
}

func init() {
	normalizeCmd.Flags().BoolVar(&normalizeNutrientsOnly, "nutrients-only", false, "print only the canonical nutrient table")
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(compactCmd)
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, eris.Wrap(err, "read stdin")
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode output")
	}
	return nil
}
