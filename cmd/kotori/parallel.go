package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kotori-ai/kotori/internal/config"
)

var (
	parallelTo      []string
	parallelUser    string
	parallelSession string
)

var parallelCmd = &cobra.Command{
	Use:   "parallel [message]",
	Short: "Fan a consultation out to several responders in parallel",
	Long: `Dispatch one consultation to a set of responders concurrently
and print each answer plus a synthesized composite.

All responders run under a single shared deadline; a slow responder is
reported as timed out without discarding the other answers.

Examples:
  kotori parallel --to nutrition,sleep "離乳食の後に寝てくれません"
  kotori parallel --to health,sleep,development "全体的に心配です"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParallel,
}

func init() {
	parallelCmd.Flags().StringSliceVar(&parallelTo, "to", nil, "Responder ids to dispatch to (required, at most 3)")
	parallelCmd.Flags().StringVar(&parallelUser, "user", "", "User id recorded with the request")
	parallelCmd.Flags().StringVar(&parallelSession, "session", "", "Session id recorded with the request")
	parallelCmd.MarkFlagRequired("to")
}

func runParallel(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	eng, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	message := strings.Join(args, " ")
	resp, err := eng.coordinator.Dispatch(context.Background(), message, parallelTo, parallelUser, parallelSession)
	if err != nil {
		return err
	}

	for _, res := range resp.Results {
		if res.Succeeded {
			fmt.Printf("%s %s (%s)\n", color.GreenString("✓"), color.CyanString(res.ResponderID), res.Latency.Round(time.Millisecond))
			fmt.Println(indent(res.ResponseText))
		} else {
			fmt.Printf("%s %s: %s\n", color.RedString("✗"), color.CyanString(res.ResponderID), res.ErrorDetail)
		}
		fmt.Println()
	}

	if resp.MergedSummary != "" {
		color.New(color.Bold).Println("まとめ")
		fmt.Println(indent(resp.MergedSummary))
	} else {
		color.Yellow("No responder produced an answer.")
	}
	return nil
}

// indent prefixes each line with two spaces for display.
func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}
