package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/citare/internal/app"
	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/models"
)

var (
	queryText    = flag.String("query", "", "Question to answer (required)")
	queryTextQ   = flag.String("q", "", "Question to answer (shorthand)")
	configFile   = flag.String("config", "", "Configuration file path")
	mode         = flag.String("mode", "", "Pipeline mode: live or offline (overrides config)")
	company      = flag.String("company", "", "Restrict retrieval to one company")
	section      = flag.String("section", "", "Restrict retrieval to one transcript section")
	topK         = flag.Int("top-k", 0, "Result count per retrieval call (overrides config)")
	noClassifier = flag.Bool("no-classifier", false, "Disable the LLM routing classifier")
	debug        = flag.Bool("debug", false, "Print the routing and timing trace to stderr")
	showVersion  = flag.Bool("version", false, "Print version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Citare version %s\n", common.GetVersion())
		os.Exit(0)
	}

	question := strings.TrimSpace(*queryText)
	if question == "" {
		question = strings.TrimSpace(*queryTextQ)
	}
	if question == "" {
		fmt.Fprintln(os.Stderr, "a question is required: citare -query \"...\"")
		flag.Usage()
		os.Exit(1)
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	// 4. Print banner

	path := *configFile
	if path == "" {
		if _, err := os.Stat("citare.toml"); err == nil {
			path = "citare.toml"
		}
	}

	config, err := common.LoadFromFile(path)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Error().Str("path", path).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	applyFlagOverrides(config)

	if err := config.Validate(); err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Error().Err(err).Msg("Invalid configuration")
		os.Exit(1)
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, config, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	query := models.NewQuery(question, queryFilters())

	state, err := application.Runner.Run(ctx, query)
	if *debug && state != nil {
		printTrace(state)
	}
	if err != nil {
		logger.Error().Err(err).Msg("Query failed")
		os.Exit(1)
	}

	output, err := json.MarshalIndent(state.Answer, "", "  ")
	if err != nil {
		logger.Error().Err(err).Msg("Failed to encode answer")
		os.Exit(1)
	}
	fmt.Println(string(output))
}

// applyFlagOverrides applies command-line settings on top of the loaded
// configuration. Flags win over both file and environment values.
func applyFlagOverrides(config *common.Config) {
	if *mode != "" {
		config.Mode = *mode
	}
	if *topK > 0 {
		config.Retrieval.TopK = *topK
	}
	if *noClassifier {
		config.Router.UseClassifier = false
	}
	if *debug {
		config.Logging.Level = "debug"
	}
}

// queryFilters collects user-supplied retrieval constraints. These win
// over any filters the router proposes.
func queryFilters() map[string]string {
	filters := make(map[string]string)
	if *company != "" {
		filters["company"] = strings.ToLower(*company)
	}
	if *section != "" {
		filters["section"] = strings.ToLower(*section)
	}
	return filters
}

// printTrace writes the routing decision and per-node timings to stderr
// so the JSON answer on stdout stays machine-readable
func printTrace(state *models.PipelineState) {
	header := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgYellow)

	header.Fprintln(os.Stderr, "--- pipeline trace ---")
	fmt.Fprintf(os.Stderr, "%s %s\n", label.Sprint("request:"), state.RequestID)
	if state.Decision != nil {
		fmt.Fprintf(os.Stderr, "%s %s (%s: %s)\n",
			label.Sprint("route:"), state.Decision.Route, state.Decision.Source, state.Decision.Reason)
		for k, v := range state.Decision.Filters {
			fmt.Fprintf(os.Stderr, "%s %s=%s\n", label.Sprint("filter:"), k, v)
		}
	}
	for _, timing := range state.Timings {
		fmt.Fprintf(os.Stderr, "%s %-16s %s\n", label.Sprint("node:"), timing.Node, timing.Duration)
	}
	fmt.Fprintf(os.Stderr, "%s %d\n", label.Sprint("chunks:"), len(state.Chunks))
	if state.Failed() {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %s\n", state.Error)
	}
}
