package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pixeldrift/pixeldrift/pkg/config"
	"github.com/pixeldrift/pixeldrift/pkg/cursor"
	"github.com/pixeldrift/pixeldrift/pkg/fpcache"
	"github.com/pixeldrift/pixeldrift/pkg/imagediff"
	"github.com/pixeldrift/pixeldrift/pkg/regress"
	"github.com/pixeldrift/pixeldrift/pkg/render"
	"github.com/pixeldrift/pixeldrift/pkg/tolerance"
)

const (
	defaultConfigFile = "pixeldrift.toml" // picked up from the working directory when present
	defaultWorkDir    = "workdir"
)

// runOpts holds the command-line flags for the run command.
// Renderer commands cannot be expressed as flags; they come from the config file.
type runOpts struct {
	configPath       string        // config file path (empty: pixeldrift.toml if present)
	workDir          string        // scratch directory for render artifacts
	corpusExt        string        // corpus file extension filter
	allowFile        string        // CSV of per-entry AE allowances
	crashAllowedFile string        // entries expected to crash the renderer
	noiseFloor       int           // AE absorbed as anti-aliasing jitter
	ciMode           bool          // fingerprint mismatches are fatal
	differ           string        // "native" or "magick"
	cacheBackend     string        // "file", "redis", or "none"
	cachePath        string        // file backend: cache file path
	redisAddr        string        // redis backend: host:port
	redisKey         string        // redis backend: hash key
	timeout          time.Duration // per-render timeout
	tui              bool          // full-screen progress display
}

// newRunCmd creates the run command, the main entry point of the tool.
//
// Configuration is layered: defaults, then the config file, then any flag
// explicitly set on the command line. The corpus directory can be given as
// a positional argument or via the config file.
func newRunCmd() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "run [corpus-dir]",
		Short: "Compare candidate and reference renderers over a corpus",
		Long: `Run renders every corpus entry with the candidate renderer, compares the
result against the reference renderer, and halts on the first entry whose
pixel difference exceeds tolerance. Entries whose normalized output is
unchanged since the last accepted run are skipped via fingerprints, and an
interrupted run resumes at the entry that halted it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags(), &opts, args)
			if err != nil {
				return err
			}
			return runRegression(cmd.Context(), cfg, opts.tui)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "config file (default pixeldrift.toml if present)")
	cmd.Flags().StringVarP(&opts.workDir, "work-dir", "w", "", "scratch directory for render artifacts")
	cmd.Flags().StringVar(&opts.corpusExt, "ext", "", "corpus file extension filter")
	cmd.Flags().StringVar(&opts.allowFile, "allow", "", "CSV file of per-entry pixel allowances")
	cmd.Flags().StringVar(&opts.crashAllowedFile, "crash-allowed", "", "file listing entries expected to crash")
	cmd.Flags().IntVar(&opts.noiseFloor, "noise-floor", config.DefaultNoiseFloor, "pixel difference absorbed as noise")
	cmd.Flags().BoolVar(&opts.ciMode, "ci", false, "treat fingerprint mismatches as fatal")
	cmd.Flags().StringVar(&opts.differ, "differ", "", "image differ: native (default), magick")
	cmd.Flags().StringVar(&opts.cacheBackend, "cache", "", "fingerprint cache backend: file (default), redis, none")
	cmd.Flags().StringVar(&opts.cachePath, "cache-path", "", "fingerprint cache file (file backend)")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", "", "redis address (redis backend)")
	cmd.Flags().StringVar(&opts.redisKey, "redis-key", "", "redis hash key (redis backend)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", config.DefaultRenderTimeout, "per-render timeout")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "full-screen progress display")

	return cmd
}

// loadConfigFile reads the config at path, or the default config file when
// path is empty and one exists. With neither, it returns plain defaults.
func loadConfigFile(path string) (config.Config, error) {
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err != nil {
			return config.Default(), nil
		}
		path = defaultConfigFile
	}
	return config.Load(path)
}

// resolveConfig layers flag overrides and the positional corpus argument on
// top of the config file, fills in derived defaults, and validates.
func resolveConfig(flags *pflag.FlagSet, opts *runOpts, args []string) (config.Config, error) {
	cfg, err := loadConfigFile(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}

	applyFlagOverrides(&cfg, flags, opts)

	if len(args) > 0 {
		cfg.CorpusDir = args[0]
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = defaultWorkDir
	}
	if cfg.Cache.Backend == config.CacheFile && cfg.Cache.Path == "" {
		cfg.Cache.Path = filepath.Join(cfg.WorkDir, fpcache.DefaultFilename)
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// applyFlagOverrides copies explicitly set flags into cfg. Unset flags keep
// the config file's values.
func applyFlagOverrides(cfg *config.Config, flags *pflag.FlagSet, opts *runOpts) {
	if flags.Changed("work-dir") {
		cfg.WorkDir = opts.workDir
	}
	if flags.Changed("ext") {
		cfg.CorpusExt = opts.corpusExt
	}
	if flags.Changed("allow") {
		cfg.AllowFile = opts.allowFile
	}
	if flags.Changed("crash-allowed") {
		cfg.CrashAllowedFile = opts.crashAllowedFile
	}
	if flags.Changed("noise-floor") {
		cfg.NoiseFloor = opts.noiseFloor
	}
	if flags.Changed("ci") {
		cfg.CIMode = opts.ciMode
	}
	if flags.Changed("differ") {
		cfg.Differ = opts.differ
	}
	if flags.Changed("cache") {
		cfg.Cache.Backend = opts.cacheBackend
	}
	if flags.Changed("cache-path") {
		cfg.Cache.Path = opts.cachePath
	}
	if flags.Changed("redis-addr") {
		cfg.Cache.Addr = opts.redisAddr
	}
	if flags.Changed("redis-key") {
		cfg.Cache.Key = opts.redisKey
	}
	if flags.Changed("timeout") {
		cfg.SetTimeout(opts.timeout)
	}
}

// newDiffer selects the image comparison backend.
func newDiffer(cfg config.Config) imagediff.Differ {
	if cfg.Differ == config.DifferMagick {
		return imagediff.NewMagick()
	}
	return imagediff.NewNative()
}

// newCacheStore selects the fingerprint cache backend.
func newCacheStore(ctx context.Context, cfg config.Config) (fpcache.Store, error) {
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		return fpcache.NewRedisStore(ctx, fpcache.RedisConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			Key:      cfg.Cache.Key,
		})
	case config.CacheNone:
		return fpcache.NewMemStore(nil), nil
	default:
		return fpcache.NewFileStore(cfg.Cache.Path), nil
	}
}

// newRegistry builds the tolerance registry from the configured files.
func newRegistry(cfg config.Config) (*tolerance.Registry, error) {
	registry := tolerance.New()
	if cfg.AllowFile != "" {
		if err := registry.LoadAllowances(cfg.AllowFile); err != nil {
			return nil, err
		}
	}
	if cfg.CrashAllowedFile != "" {
		if err := registry.LoadCrashAllowed(cfg.CrashAllowedFile); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// runRegression wires the engine together from the resolved config and runs
// the full corpus.
func runRegression(ctx context.Context, cfg config.Config, useTUI bool) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	registry, err := newRegistry(cfg)
	if err != nil {
		return err
	}

	var store fpcache.Store
	if cfg.Cache.Backend == config.CacheRedis && !useTUI {
		sp := newSpinnerWithContext(ctx, "Connecting to "+cfg.Cache.Addr)
		sp.Start()
		store, err = newCacheStore(ctx, cfg)
		sp.Stop()
	} else {
		store, err = newCacheStore(ctx, cfg)
	}
	if err != nil {
		return err
	}
	defer store.Close()

	runner := regress.New(regress.Config{
		CorpusDir:  cfg.CorpusDir,
		CorpusExt:  cfg.CorpusExt,
		WorkDir:    cfg.WorkDir,
		NoiseFloor: cfg.NoiseFloor,
		CIMode:     cfg.CIMode,
	})
	runner.Candidate = render.NewExec(
		render.Command{Argv: cfg.Candidate.Simplify, Dir: cfg.Candidate.Dir},
		render.Command{Argv: cfg.Candidate.Rasterize, Dir: cfg.Candidate.Dir},
		cfg.Timeout(),
	)
	runner.Reference = render.NewExec(
		render.Command{},
		render.Command{Argv: cfg.Reference.Rasterize, Dir: cfg.Reference.Dir},
		cfg.Timeout(),
	)
	runner.Differ = newDiffer(cfg)
	runner.Tolerance = registry
	runner.Cache = store
	runner.Cursor = cursor.NewFile(cfg.WorkDir)
	runner.Logger = logger

	var result *regress.Result
	if useTUI {
		result, err = runWithTUI(ctx, runner)
	} else {
		runner.Events = consoleEvents{}
		result, err = runner.Run(ctx)
	}

	if result != nil {
		printNewline()
		printSummary(result)
		if result.Halt != nil {
			printHalt(cfg, result.Halt)
		} else {
			prog.done(fmt.Sprintf("Compared %d entries", result.Total))
		}
	}
	return err
}

// printHalt reports the halting entry and where its artifacts were kept.
func printHalt(cfg config.Config, halt *regress.Halt) {
	printNewline()
	switch halt.Status {
	case regress.StatusRegressed:
		printError("%s regressed: images differ by %s pixels",
			StyleHighlight.Render(halt.Stem), StyleError.Render(fmt.Sprintf("%d", halt.AE)))
		printDetail("Artifacts kept for inspection:")
		for _, suffix := range []string{"_orig.png", "_cand.png", "_diff.png"} {
			path := filepath.Join(cfg.WorkDir, halt.Stem+suffix)
			if _, err := os.Stat(path); err == nil {
				printFile(path)
			}
		}
	case regress.StatusRenderFailed:
		printError("%s: renderer failed", StyleHighlight.Render(halt.Stem))
		if halt.Err != nil {
			printDetail("%v", halt.Err)
		}
	default:
		printError("run halted at %s", StyleHighlight.Render(halt.Stem))
		if halt.Err != nil {
			printDetail("%v", halt.Err)
		}
	}
	printNewline()
	if halt.Status == regress.StatusRegressed {
		printNextStep("Accept a known difference", fmt.Sprintf("echo '%s,%d' >> allow.csv", halt.Stem, halt.AE))
	}
	printNextStep("Re-run after fixing", "pixeldrift run")
}

// consoleEvents prints a line per processed entry.
type consoleEvents struct{}

func (consoleEvents) OnEntry(index, total int, stem string) {}

func (consoleEvents) OnStatus(index int, stem string, status regress.Status, ae int) {
	switch status {
	case regress.StatusAccepted:
		if ae > 0 {
			printSuccess("%s %s", stem, StyleDim.Render(fmt.Sprintf("(ae=%d)", ae)))
		} else {
			printSuccess("%s", stem)
		}
	case regress.StatusSkippedUnchanged:
		printDetail("%s unchanged", stem)
	case regress.StatusSkippedAllowedCrash:
		printDetail("%s skipped (expected crash)", stem)
	case regress.StatusRenderFailed:
		printError("%s render failed", stem)
	case regress.StatusRegressed:
		printError("%s regressed (ae=%d)", stem, ae)
	}
}

func (consoleEvents) OnDone(result *regress.Result) {}
