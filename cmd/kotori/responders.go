package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kotori-ai/kotori/internal/config"
	"github.com/kotori-ai/kotori/pkg/models"
)

var respondersVerbose bool

var respondersCmd = &cobra.Command{
	Use:   "responders",
	Short: "List the responder catalog",
	Long: `List every responder in the catalog with its category and
routing keywords. The catalog comes from catalog.path in the
configuration, or the built-in catalog when unset.`,
	RunE: runResponders,
}

func init() {
	respondersCmd.Flags().BoolVarP(&respondersVerbose, "verbose", "v", false, "Show keywords and domain contract terms")
}

func runResponders(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	reg, watcher, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	if watcher != nil {
		defer watcher.Close()
	}

	for _, d := range reg.All() {
		marker := " "
		if d.ID == reg.DefaultID() {
			marker = "*"
		}
		fmt.Printf("%s %s %s %s\n",
			marker,
			color.CyanString("%-12s", d.ID),
			categoryColor(d.Category)("%-10s", string(d.Category)),
			d.DisplayName)

		if respondersVerbose {
			if len(d.Keywords) > 0 {
				fmt.Printf("    keywords: %s\n", strings.Join(d.Keywords, ", "))
			}
			if len(d.ForcedKeywords) > 0 {
				fmt.Printf("    contract: %s\n", strings.Join(d.ForcedKeywords, ", "))
			}
		}
	}

	fmt.Printf("\n%d responders (* = default)\n", reg.Count())
	return nil
}

// categoryColor picks a sprint function per responder category.
func categoryColor(c models.Category) func(format string, a ...interface{}) string {
	switch c {
	case models.CategorySpecialist:
		return color.GreenString
	case models.CategoryUtility:
		return color.YellowString
	default:
		return color.HiBlackString
	}
}
