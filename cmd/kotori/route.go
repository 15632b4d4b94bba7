package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kotori-ai/kotori/internal/config"
	"github.com/kotori-ai/kotori/internal/executor"
	"github.com/kotori-ai/kotori/internal/strategy"
	"github.com/kotori-ai/kotori/pkg/models"
)

var (
	routeResponder  string
	routePipeline   string
	routeImage      bool
	routeAudio      bool
	routeUser       string
	routeSession    string
	routeDecideOnly bool
	routeShowPath   bool
)

var routeCmd = &cobra.Command{
	Use:   "route [message]",
	Short: "Route a consultation to the best responder and answer it",
	Long: `Route a free-text consultation message through the routing
strategy, dispatch it to the selected responder, and print the answer.

Examples:
  kotori route "夜泣きがひどくて眠れません"
  kotori route --responder nutrition "離乳食の進め方は?"
  kotori route --pipeline care_team "生活リズム全般を見てほしい"
  kotori route --decide-only "公園を調べて"   # print the decision, no API call
  kotori route --image "この発疹を見てください"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRoute,
}

func init() {
	routeCmd.Flags().StringVar(&routeResponder, "responder", "", "Pin an explicit responder id, skipping the routing decision")
	routeCmd.Flags().StringVar(&routePipeline, "pipeline", "", "Run a named multi-responder pipeline instead of single routing")
	routeCmd.Flags().BoolVar(&routeImage, "image", false, "Mark the message as carrying an image attachment")
	routeCmd.Flags().BoolVar(&routeAudio, "audio", false, "Mark the message as carrying an audio attachment")
	routeCmd.Flags().StringVar(&routeUser, "user", "", "User id recorded with the request")
	routeCmd.Flags().StringVar(&routeSession, "session", "", "Session id recorded with the request")
	routeCmd.Flags().BoolVar(&routeDecideOnly, "decide-only", false, "Print the routing decision without invoking a responder")
	routeCmd.Flags().BoolVar(&routeShowPath, "show-path", false, "Print the routing path after the answer")
}

func runRoute(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	req := models.DispatchRequest{
		Message:   strings.Join(args, " "),
		UserID:    routeUser,
		SessionID: routeSession,
		MediaFlags: models.MediaFlags{
			Image: routeImage,
			Audio: routeAudio,
		},
	}

	// Decide-only needs no API client.
	if routeDecideOnly {
		reg, watcher, err := buildRegistry(cfg)
		if err != nil {
			return err
		}
		if watcher != nil {
			defer watcher.Close()
		}
		router := strategy.NewRouter(reg, strategy.Config{
			KeywordWeight:     cfg.Routing.KeywordWeight,
			SemanticWeight:    cfg.Routing.SemanticWeight,
			DomainBoosts:      cfg.Routing.DomainBoosts,
			DefaultConfidence: cfg.Routing.DefaultConfidence,
		})
		printDecision(router.Decide(req))
		return nil
	}

	eng, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	out, err := eng.executor.RouteAndDispatch(context.Background(), req, executor.Options{
		ResponderID: routeResponder,
		Pipeline:    routePipeline,
	})
	if err != nil {
		return err
	}

	printOutcome(eng, out)
	return nil
}

// printDecision renders a routing decision without dispatching.
func printDecision(d models.Decision) {
	fmt.Printf("responder:  %s\n", color.CyanString(d.ResponderID))
	fmt.Printf("confidence: %.2f\n", d.Confidence)
	fmt.Printf("strategy:   %s\n", d.Strategy)
	fmt.Printf("urgency:    %s\n", d.Urgency)
	fmt.Printf("emotion:    %s\n", d.EmotionTone)
	fmt.Printf("rationale:  %s\n", d.Rationale)
}

// printOutcome renders a dispatch outcome, annotating exhaustion.
func printOutcome(eng *engine, out *executor.Outcome) {
	if out.ResponderUsed == "" {
		color.Yellow("No responder produced an acceptable answer.")
	} else if desc, err := eng.registry.Describe(firstID(out.ResponderUsed)); err == nil {
		fmt.Printf("%s %s\n\n", color.CyanString(out.ResponderUsed), color.HiBlackString("("+desc.DisplayName+")"))
	} else {
		fmt.Printf("%s\n\n", color.CyanString(out.ResponderUsed))
	}

	fmt.Println(out.ResponseText)

	if routeShowPath {
		fmt.Println()
		for _, step := range out.Path {
			fmt.Fprintf(os.Stderr, "%s %s %s\n",
				color.HiBlackString(step.At.Format("15:04:05.000")), step.Step, step.ResponderID)
		}
	}
}

// firstID returns the first id of a possibly "+"-joined pipeline set.
func firstID(ids string) string {
	if i := strings.IndexByte(ids, '+'); i >= 0 {
		return ids[:i]
	}
	return ids
}
