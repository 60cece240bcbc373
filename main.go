package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"auto_blog_publisher/generator"
	"auto_blog_publisher/publisher"
	"auto_blog_publisher/server"
	"auto_blog_publisher/workflow"
)

var verbose bool

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	configPath := flag.String("config", "config/config.json", "path to config.json")
	tone := flag.String("tone", "", "override the article tone")
	var instructions string
	flag.StringVar(&instructions, "instructions", "", "custom instructions for the article")
	flag.StringVar(&instructions, "i", "", "custom instructions for the article (shorthand)")
	visualize := flag.Bool("visualize", false, "print the workflow topology and exit")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	flag.BoolVar(&verbose, "v", false, "enable debug logs")
	flag.Parse()

	// Visualize mode renders the fixed topology without executing it.
	if *visualize {
		fmt.Print(workflow.Mermaid())
		return
	}

	cfg, err := publisher.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	exec, err := buildExecutor(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Web server mode
	if *serve {
		srv, err := server.New(exec, 0, log.Default())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		if listen == "" {
			listen = ":8080"
		}
		log.Printf("Starting web server on %s", listen)
		if err := http.ListenAndServe(listen, srv.Routes()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	topic := strings.TrimSpace(flag.Arg(0))
	if topic == "" {
		fmt.Fprintln(os.Stderr, "a topic argument is required")
		os.Exit(1)
	}

	runTone := cfg.Tone
	if *tone != "" {
		runTone = *tone
	}

	log.Printf("[cli] starting workflow topic=%q tone=%q", topic, runTone)
	state := workflow.NewState(topic, runTone, instructions)
	final, outcome, err := exec.Run(context.Background(), state)
	if err != nil {
		log.Printf("[cli] run error: %v", err)
	}
	printSummary(final, outcome)

	if outcome != workflow.OutcomePublished {
		os.Exit(1)
	}
}

func buildLLM(cfg publisher.Config) (generator.LLMClient, error) {
	if cfg.LLM == nil || cfg.LLM.Provider == "" {
		return nil, fmt.Errorf("llm config missing; please set llm.provider/model/api_key in config")
	}
	settings := &generator.LLMSettings{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
	}
	switch cfg.LLM.Provider {
	case "openai":
		return generator.NewOpenAILLMFromConfig(settings)
	case "openrouter":
		// OpenRouter exposes an OpenAI-compatible interface; base_url is required.
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("llm provider openrouter requires base_url")
		}
		return generator.NewOpenAILLMFromConfig(settings)
	case "mock":
		return generator.MockLLM{
			TargetWords: cfg.Content.WordCountTarget,
			MinLinks:    cfg.Content.MinInlineLinks,
			MinSections: cfg.Content.MinSections,
		}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}

func buildExecutor(cfg publisher.Config) (*workflow.Executor, error) {
	llm, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}

	spec := generator.ContentSpec{
		TargetWords: cfg.Content.WordCountTarget,
		MinLinks:    cfg.Content.MinInlineLinks,
		MinSections: cfg.Content.MinSections,
	}

	var research workflow.ResearchProvider
	if cfg.LLM.Provider == "mock" {
		research = generator.MockResearch{}
	} else {
		research, err = generator.NewResearchClient(llm, nil, generator.SearchSettings{
			APIKey:  cfg.Search.APIKey,
			BaseURL: cfg.Search.BaseURL,
		})
		if err != nil {
			return nil, err
		}
	}

	writer, err := generator.NewWriter(llm, spec)
	if err != nil {
		return nil, err
	}
	formatter, err := generator.NewFormatter(llm)
	if err != nil {
		return nil, err
	}
	annotator, err := generator.NewAnnotator(llm, cfg.DefaultTags)
	if err != nil {
		return nil, err
	}
	sink, err := publisher.New(cfg, nil, verbose, log.Default())
	if err != nil {
		return nil, err
	}

	var notifier workflow.Notifier
	if cfg.WebhookURL != "" {
		notifier = publisher.NewWebhook(cfg.WebhookURL, nil)
	}

	return workflow.NewExecutor(research, writer, formatter, annotator, sink, notifier, workflow.Options{
		Thresholds:   cfg.GateThresholds(),
		MaxRevisions: cfg.Content.MaxRevisions,
		StageTimeout: cfg.StageTimeout(),
		Verbose:      verbose,
		Logger:       log.Default(),
	})
}

func printSummary(state workflow.State, outcome workflow.Outcome) {
	metrics := workflow.AnalyzeContent(state.Formatted)

	fmt.Println("\nRUN SUMMARY")
	fmt.Printf("  Topic:     %s\n", state.Topic)
	title := state.Meta.Title
	if title == "" {
		title = state.Title
	}
	fmt.Printf("  Title:     %s\n", title)
	fmt.Printf("  Words:     %d\n", metrics.WordCount)
	fmt.Printf("  Links:     %d\n", metrics.LinkCount)
	fmt.Printf("  Tags:      %s\n", strings.Join(state.Meta.Tags, ", "))
	fmt.Printf("  Revisions: %d\n", state.RevisionCount)
	fmt.Printf("  Approval:  %s\n", state.Approval)
	fmt.Printf("  Outcome:   %s\n", outcome)
	if state.PostURL != "" {
		fmt.Printf("  URL:       %s\n", state.PostURL)
	}

	if len(state.Checks) > 0 {
		fmt.Println("\nQuality checks:")
		for _, c := range state.Checks {
			mark := "PASS"
			if !c.Passed {
				mark = "FAIL"
			}
			fmt.Printf("  [%s] %s: %s\n", mark, c.Name, c.Message)
		}
	}

	if len(state.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(state.Errors))
		for _, e := range state.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	if len(state.Warnings) > 0 {
		fmt.Printf("\nWarnings (%d):\n", len(state.Warnings))
		for _, w := range state.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
}
