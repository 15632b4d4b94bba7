package main

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/kotori-ai/kotori/internal/config"
	"github.com/kotori-ai/kotori/internal/executor"
	"github.com/kotori-ai/kotori/internal/parallel"
	"github.com/kotori-ai/kotori/internal/promptctx"
	"github.com/kotori-ai/kotori/internal/registry"
	"github.com/kotori-ai/kotori/internal/responder"
	"github.com/kotori-ai/kotori/internal/strategy"
)

// engine bundles the wired routing components behind the CLI commands.
type engine struct {
	registry    *registry.Registry
	executor    *executor.Executor
	coordinator *parallel.Coordinator
	watcher     *registry.Watcher
}

// buildRegistry loads the responder catalog, preferring a configured
// YAML file over the built-in catalog.
func buildRegistry(cfg *config.Config) (*registry.Registry, *registry.Watcher, error) {
	reg := registry.NewDefault()

	if cfg.Catalog.Path == "" {
		return reg, nil, nil
	}

	if err := registry.LoadCatalog(reg, cfg.Catalog.Path); err != nil {
		return nil, nil, fmt.Errorf("loading responder catalog: %w", err)
	}

	if !cfg.Catalog.Watch {
		return reg, nil, nil
	}
	w, err := registry.Watch(reg, cfg.Catalog.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("watching responder catalog: %w", err)
	}
	return reg, w, nil
}

// buildEngine assembles the full routing stack: registry, Claude-backed
// responders, strategy router, parallel coordinator, and executor.
func buildEngine(cfg *config.Config) (*engine, error) {
	reg, watcher, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	client, err := responder.NewClient(responder.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		if watcher != nil {
			watcher.Close()
		}
		return nil, fmt.Errorf("creating API client: %w", err)
	}

	factory := responder.NewClaudeFactory(client)
	mux := responder.NewMux()
	for _, d := range reg.All() {
		mux.Register(factory.NewResponder(d.ID))
	}

	builder := promptctx.NewBuilder()
	router := strategy.NewRouter(reg, strategy.Config{
		KeywordWeight:     cfg.Routing.KeywordWeight,
		SemanticWeight:    cfg.Routing.SemanticWeight,
		DomainBoosts:      cfg.Routing.DomainBoosts,
		DefaultConfidence: cfg.Routing.DefaultConfidence,
	})

	coord := parallel.NewCoordinator(reg, mux, builder, parallel.Config{
		MaxResponders: cfg.Parallel.MaxResponders,
		Timeout:       cfg.Parallel.Timeout,
		Synthesizer:   parallel.NewInvokerSynthesizer(mux, reg.DefaultID()),
	})

	exec := executor.New(reg, router, mux, builder, coord, executor.Config{
		RetryBudget:       cfg.Executor.RetryBudget,
		MinResponseLength: cfg.Executor.MinResponseLength,
		FallbackChain:     cfg.Executor.FallbackChain,
	})

	return &engine{
		registry:    reg,
		executor:    exec,
		coordinator: coord,
		watcher:     watcher,
	}, nil
}

// Close releases the catalog watcher, if one is running.
func (e *engine) Close() {
	if e.watcher != nil {
		e.watcher.Close()
	}
}
