package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/alecthomas/kong"
	"github.com/helpcomp/camt-harmonizer/config"
	"github.com/helpcomp/camt-harmonizer/harmonize"
	"github.com/helpcomp/camt-harmonizer/llm"
	"github.com/helpcomp/camt-harmonizer/present"
	"github.com/helpcomp/camt-harmonizer/prom"
	"github.com/helpcomp/camt-harmonizer/source"
	"github.com/prometheus/client_golang/prometheus"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/version"
	"github.com/prometheus/exporter-toolkit/web"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

const AppName = "camt-harmonizer"
const AppDesc = "Reads a camt.053 bank statement, extracts its transactions and rewrites their labels into readable French with an LLM."

// Prometheus names cannot contain dashes.
const metricsNamespace = "camt_harmonizer"

var cli struct {
	FilePath            string        `env:"FILE_PATH" help:"${env} - Path or http(s) URL of the camt.053 statement" required:""`
	ConfigPath          string        `env:"CONFIG_PATH" help:"${env} - Path to config file" default:"./config.yml"`
	LLMProvider         string        `env:"LLM_PROVIDER" help:"${env} - Label service provider (gemini, openai, azure)" default:"gemini"`
	LLMAPIKey           string        `env:"LLM_API_KEY" help:"${env} - API Key for the label service. If none is provided, harmonization is disabled"`
	LLMBaseURL          string        `env:"LLM_API_BASE_URL" help:"${env} - Override the label service base URL"`
	LLMModel            string        `env:"LLM_MODEL" help:"${env} - Model name. Defaults depend on the provider"`
	AzureEndpoint       string        `env:"AZURE_ENDPOINT" help:"${env} - Azure OpenAI Endpoint"`
	LLMTimeout          time.Duration `env:"LLM_TIMEOUT" help:"${env} - Timeout of a single label service call" default:"60s"`
	BatchSize           int           `env:"HARMONIZE_BATCH_SIZE" help:"${env} - Transactions per label service call (Default 10)"`
	BatchDelay          time.Duration `env:"HARMONIZE_BATCH_DELAY" help:"${env} - Pause between label service calls (Default 2s)"`
	OutputFormat        string        `env:"OUTPUT_FORMAT" help:"${env} - Output format (table, json, xlsx)"`
	OutputFile          string        `env:"OUTPUT_FILE" help:"${env} - Write results to this file instead of stdout"`
	LogLevel            string        `env:"LOG_LEVEL" help:"${env} - Log level" default:"info"`
	LogConsole          bool          `env:"LOG_CONSOLE" help:"${env} - Human readable logs" default:"false"`
	RefreshTime         uint16        `env:"REFRESH_TIME" help:"${env} - Time in minutes between runs. 0 runs once and exits" default:"0"`
	EnablePrometheus    bool          `env:"ENABLE_PROMETHEUS" help:"${env} - Enable Prometheus metrics (refresh mode only)" default:"false"`
	ListenAddress       string        `env:"EXPORTER_LISTEN_ADDRESS" help:"${env} - Address to listen on for web interface and telemetry" default:"9717"`
	MetricsPath         string        `env:"EXPORTER_METRICS_PATH" help:"${env} - Path under which to expose metrics" default:"/metrics"`
}

func main() {
	// Variable Setup //
	///////////////////
	kong.Parse(&cli,
		kong.Name(AppName),
		kong.Description(AppDesc),
	)
	setupLogger(cli.LogLevel, cli.LogConsole)

	if !slices.Contains(llm.Providers, cli.LLMProvider) {
		log.Fatal().Str("Provider", cli.LLMProvider).Msgf("Provider must be one of %v", llm.Providers)
	}

	cfg, err := config.InitConfig(cli.ConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to load config")
	}

	settings, err := resolveSettings(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid settings")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	service, err := llm.New(ctx, llm.Config{
		Provider:      cli.LLMProvider,
		APIKey:        cli.LLMAPIKey,
		BaseURL:       cli.LLMBaseURL,
		AzureEndpoint: cli.AzureEndpoint,
		Model:         cli.LLMModel,
		Timeout:       cli.LLMTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to set up label service")
	}

	app := NewApp(source.New(&http.Client{Timeout: 30 * time.Second}), service, prom.Stats, settings, os.Stdout)

	// Start //
	///////////
	log.Logger.Info().
		Str("version", version.Info()).
		Msg("Starting " + AppName)

	if cli.RefreshTime == 0 {
		if err := app.Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("Harmonization failed")
		}
		return
	}

	watch(ctx, app)
}

func setupLogger(level string, console bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if console {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Caller().Logger()
	} else {
		log.Logger = log.Output(os.Stderr).With().Caller().Logger()
	}
	if err != nil {
		log.Warn().Str("Level", level).Msg("Unknown log level, using info")
	}
}

// resolveSettings merges flags over the YAML file over the built-in defaults.
func resolveSettings(cfg *config.MasterConfig) (RunSettings, error) {
	delay, err := cfg.BatchDelay()
	if err != nil {
		return RunSettings{}, err
	}
	if cli.BatchDelay > 0 {
		delay = cli.BatchDelay
	}
	if delay == 0 {
		delay = harmonize.DefaultDelay
	}

	batchSize := cfg.Harmonize.BatchSize
	if cli.BatchSize > 0 {
		batchSize = cli.BatchSize
	}

	format := firstSet(cli.OutputFormat, cfg.Output.Format, present.FormatTable)
	if !slices.Contains(present.Formats, format) {
		return RunSettings{}, errors.New("output format must be one of table, json, xlsx")
	}
	outputFile := firstSet(cli.OutputFile, cfg.Output.File)
	if format == present.FormatXLSX && outputFile == "" {
		return RunSettings{}, errors.New("xlsx output needs an output file")
	}

	return RunSettings{
		Location:   cli.FilePath,
		Format:     format,
		OutputFile: outputFile,
		Options: harmonize.Options{
			BatchSize:     batchSize,
			Delay:         delay,
			Substitutions: cfg.Harmonize.Substitutions,
			Overrides:     cfg.LabelOverrides,
		},
	}, nil
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// watch re-runs the app on every tick until ctx is cancelled, serving metrics when enabled.
func watch(ctx context.Context, app *App) {
	ticker := time.NewTicker(time.Duration(cli.RefreshTime) * time.Minute)
	defer ticker.Stop()

	runLoop := func() {
		// Errors are logged and counted by Run; the next tick tries again.
		_ = app.Run(ctx)
		for {
			select {
			case <-ticker.C:
				_ = app.Run(ctx)
			case <-ctx.Done():
				return
			}
		}
	}

	// No Prometheus Support, refresh only
	if !cli.EnablePrometheus {
		log.Info().Msg("Prometheus metrics are disabled. Refresh only.")
		runLoop()
		log.Info().Msg("Shutdown Signal Received. Exiting...")
		return
	}

	// Prometheus Support. Refresh and Metrics
	go runLoop()

	// Metric Registration
	prometheus.MustRegister(
		versioncollector.NewCollector(metricsNamespace),
		prom.NewExporter(metricsNamespace, prom.Stats),
	)

	// HTTP Server
	http.Handle(cli.MetricsPath, promhttp.Handler())
	if cli.MetricsPath != "/" && cli.MetricsPath != "" {
		landingConfig := web.LandingConfig{
			Name:        AppName,
			Description: AppDesc,
			Version:     version.Print(AppName),
			Links: []web.LandingLinks{
				{
					Address: cli.MetricsPath,
					Text:    "Metrics",
				},
				{
					Address: "/health",
					Text:    "Health",
				},
			},
		}
		landingPage, err := web.NewLandingPage(landingConfig)

		if err != nil {
			log.Fatal().Err(err).Msg("")
		}
		http.Handle("/", landingPage)
		http.HandleFunc("/health", prom.HealthHandler(prom.Stats))
	}

	log.Info().Msgf("Starting HTTP server on listen address :%s and metric path %s", cli.ListenAddress, cli.MetricsPath)

	server := &http.Server{
		Addr:         ":" + cli.ListenAddress,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Listen and serve
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Error starting HTTP server")
		}
	}()

	// Handle shutdown
	<-ctx.Done()
	log.Info().Msg("Shutdown Signal Received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	log.Info().Msg("Shutting down HTTP server...")
	_ = server.Shutdown(shutdownCtx)
	log.Info().Msg("Shutdown Complete; Exiting...")
}
