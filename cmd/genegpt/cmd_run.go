package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/genegpt-go/genegpt/internal/config"
	"github.com/genegpt-go/genegpt/internal/execution"
	"github.com/genegpt-go/genegpt/internal/models"
	"github.com/genegpt-go/genegpt/internal/ncbi"
	"github.com/genegpt-go/genegpt/internal/orchestration"
	"github.com/genegpt-go/genegpt/internal/projectconfig"
	"github.com/genegpt-go/genegpt/internal/prompt"
	"github.com/genegpt-go/genegpt/internal/results"
	"github.com/genegpt-go/genegpt/internal/session"
	"github.com/genegpt-go/genegpt/internal/transcript"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	inputFile    string
	modelID      string
	maskArg      string
	outputRoot   string
	executorName string
	taskFilters  []string
	verbose      bool
	sessionLog   bool
	envFile      string
)

// waitFunc performs every fixed wait of a run: fetch spacing, the
// post-query pause and the BLAST result delay.
var waitFunc ncbi.Sleeper = ncbi.Sleep

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Answer every question of a task file",
		Long: `Run the tool-use loop over every question of a task file.

The task file maps each task category to its questions and expected answers.
The mask selects which instruction and example blocks the preamble carries.
Results go to <output-root>/model=<model>/file=<input stem>/mask=<mask>/.
A category whose result file is already complete is skipped, so an
interrupted run can simply be started again.`,
		Args: cobra.NoArgs,
		RunE: runCommandE,
	}

	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Task file (JSON) to answer")
	cmd.Flags().StringVarP(&modelID, "model", "m", "", "Model identifier (default from .genegpt.yaml, else "+projectconfig.DefaultModel+")")
	cmd.Flags().StringVar(&maskArg, "mask", "", "6-digit binary string selecting preamble blocks (see 'genegpt mask')")
	cmd.Flags().StringVar(&outputRoot, "output-root", "", "Directory under which run output is written (default "+projectconfig.DefaultOutputRoot+")")
	cmd.Flags().StringVar(&executorName, "executor", "", "Model backend: openrouter or mock (default "+projectconfig.DefaultExecutor+")")
	cmd.Flags().StringArrayVar(&taskFilters, "task", nil, "Only run task categories matching this glob pattern (can be repeated)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output with every model response and fetch")
	cmd.Flags().BoolVar(&sessionLog, "session-log", false, "Write an NDJSON session log into the output directory")
	cmd.Flags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "File to read API keys from when they are not in the environment")

	_ = cmd.MarkFlagRequired("input") //nolint:errcheck
	_ = cmd.MarkFlagRequired("mask")  //nolint:errcheck

	return cmd
}

func runCommandE(cmd *cobra.Command, _ []string) error {
	// Reject a malformed mask before touching anything else.
	mask, err := models.ParseMask(maskArg)
	if err != nil {
		return err
	}

	pc, err := loadProjectConfig()
	if err != nil {
		return err
	}
	cfg := resolveRunConfig(pc, mask)

	creds, err := config.LoadCredentials(envFile, os.Getenv)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}
	slog.Debug("credentials loaded", "openai_key_present", creds.OpenAIKeyPresent)

	engine, err := newEngine(cfg, creds)
	if err != nil {
		return err
	}

	ts, err := models.LoadTaskSet(cfg.InputFile())
	if err != nil {
		return fmt.Errorf("failed to load task file: %w", err)
	}
	ts, err = orchestration.FilterTasks(ts, cfg.TaskFilters())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	layout := results.NewLayout(cfg.OutputDir())

	fmt.Fprintf(out, "Task file: %s\n", cfg.InputFile())
	fmt.Fprintf(out, "Model: %s (%s)\n", cfg.Model(), cfg.Executor())
	fmt.Fprintf(out, "Mask: %s\n", cfg.Mask())
	fmt.Fprintf(out, "Output: %s\n\n", layout.Dir)

	client := newNCBIClient(cfg.Delays().Fetch)
	composer := prompt.NewComposer(client,
		prompt.WithSleeper(waitFunc),
		prompt.WithBlastWait(cfg.Delays().BlastResult),
	)
	preamble, err := composer.Compose(ctx, cfg.Mask())
	if err != nil {
		return fmt.Errorf("composing preamble: %w", err)
	}

	var sessLogger session.Logger = session.NopLogger{}
	if cfg.SessionLogPath() != "" {
		jl, err := session.NewJSONLogger(cfg.SessionLogPath())
		if err != nil {
			return err
		}
		defer jl.Close() //nolint:errcheck
		sessLogger = jl
		fmt.Fprintf(out, "Session log: %s\n\n", jl.Path())
	}

	loop := orchestration.NewLoop(engine, client, cfg.Model(),
		orchestration.WithLimits(cfg.Limits()),
		orchestration.WithAllowlist(ncbi.NewAllowlist(cfg.AllowedHosts()...)),
		orchestration.WithLoopSleeper(waitFunc),
		orchestration.WithDelays(cfg.Delays().PostQuery, cfg.Delays().BlastResult),
		orchestration.WithAuditWriter(transcript.NewWriter(layout.RawIOPath())),
		orchestration.WithSessionLogger(sessLogger),
	)
	runner := orchestration.NewTaskRunner(loop, layout, preamble,
		orchestration.WithMetadata(cfg.Metadata(uuid.NewString(), time.Now())),
		orchestration.WithRunSessionLogger(sessLogger),
	)

	if cfg.Verbose() {
		runner.OnProgress(newVerboseProgressListener(out, terminalWidth(out)))
	} else {
		runner.OnProgress(newSimpleProgressListener(out))
	}

	summary, err := runner.Run(ctx, ts)
	if summary != nil {
		printSummary(out, summary)
	}
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}

// loadProjectConfig reads .genegpt.yaml from the working directory upwards.
func loadProjectConfig() (*projectconfig.ProjectConfig, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	return projectconfig.Load(cwd)
}

// resolveRunConfig layers the command-line flags over the project config.
func resolveRunConfig(pc *projectconfig.ProjectConfig, mask models.Mask) *config.RunConfig {
	model := firstNonEmpty(modelID, pc.Defaults.Model)
	executor := firstNonEmpty(executorName, pc.Defaults.Executor)
	root := firstNonEmpty(outputRoot, pc.Defaults.OutputRoot)

	opts := []config.Option{
		config.WithModel(model),
		config.WithExecutor(executor),
		config.WithOutputRoot(root),
		config.WithAPI(pc.OpenRouter.BaseURL, pc.OpenRouterTimeout()),
		config.WithLimits(pc.Limits),
		config.WithDelays(config.Delays{
			Fetch:       pc.Delays.Fetch,
			PostQuery:   pc.Delays.PostQuery,
			BlastResult: pc.Delays.BlastResult,
		}),
		config.WithAllowedHosts(pc.Services.AllowedHosts...),
		config.WithTaskFilters(taskFilters...),
		config.WithVerbose(verbose || derefBool(pc.Defaults.Verbose)),
	}
	if sessionLog || derefBool(pc.Defaults.SessionLog) {
		dir := results.DirFor(root, model, inputFile, mask)
		opts = append(opts, config.WithSessionLogPath(session.DefaultLogPath(dir)))
	}
	return config.NewRunConfig(inputFile, mask, opts...)
}

// newEngine builds the model backend named by the run config.
func newEngine(cfg *config.RunConfig, creds config.Credentials) (execution.Engine, error) {
	switch cfg.Executor() {
	case "mock":
		return execution.NewMockEngine(), nil
	case "openrouter":
		if err := creds.RequireOpenRouter(); err != nil {
			return nil, err
		}
		return execution.NewOpenRouterEngine(creds.OpenRouterAPIKey, &execution.OpenRouterOptions{
			BaseURL: cfg.BaseURL(),
			Timeout: cfg.APITimeout(),
		})
	default:
		return nil, fmt.Errorf("unknown executor: %s (supported: openrouter, mock)", cfg.Executor())
	}
}

func newNCBIClient(fetchDelay time.Duration) *ncbi.Client {
	return ncbi.NewClient(
		ncbi.WithFetchDelay(fetchDelay),
		ncbi.WithSleeper(waitFunc),
	)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func derefBool(b *bool) bool {
	return b != nil && *b
}
