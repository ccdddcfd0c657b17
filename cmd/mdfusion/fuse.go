package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-mdfusion"
	"github.com/alnah/go-mdfusion/internal/config"
	"github.com/alnah/go-mdfusion/internal/dateutil"
	"github.com/alnah/go-mdfusion/internal/logging"
)

// defaultHeaderTex is picked up from the working directory when no header
// is configured.
const defaultHeaderTex = "header.tex"

// runFuse runs the merge command: flags, environment and config file are
// combined into a Job which is handed to the library. Errors carry a hint
// when one applies.
func runFuse(ctx context.Context, args []string, env *Environment) (err error) {
	var chromiumPath string
	defer func() {
		if err != nil {
			if hint := hintFor(err, chromiumPath); hint != "" {
				err = fmt.Errorf("%w%s", err, hint)
			}
		}
	}()

	flags, positional, extra, err := parseFuseFlags(args, env.Stdout)
	if err != nil {
		return err
	}

	cwd, err := env.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	envCfg := loadEnvConfig()
	cfg, err := loadConfig(flags.common.config, envCfg.ConfigPath, cwd)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: environment: %v", ErrUsage, err)
	}

	job, err := buildJob(flags, positional, extra, cfg, cwd)
	if err != nil {
		return err
	}
	chromiumPath = job.ChromiumPath

	job.Metadata.Date, err = dateutil.Resolve(job.Metadata.Date, env.Now())
	if err != nil {
		return fmt.Errorf("%w: --date: %v", ErrUsage, err)
	}

	log := logging.New(env.Stderr, logging.LevelFor(flags.common.quiet, job.Verbose))
	defer func() { _ = log.Sync() }()

	warnUnknownEnvVars(log)
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	_, _ = maxprocs.Set(maxprocs.Logger(log.Debugf))

	if cfg.Path != "" {
		log.Debugf("using config %s", cfg.Path)
	}

	opts := append([]mdfusion.Option{
		mdfusion.WithLogger(log),
		mdfusion.WithWorkingDir(cwd),
		mdfusion.WithMetadataEnv(mdfusion.MetadataEnv{Now: env.Now, User: mdfusion.CurrentUser}),
	}, env.FuserOptions...)

	res, err := mdfusion.NewFuser(opts...).Run(ctx, job)
	if err != nil {
		return err
	}

	printResult(env.Stdout, res, job.Presentation)
	return nil
}

// loadConfig loads the config file named by the flag or MDFUSION_CONFIG,
// else the first default file in cwd. No file at all yields an empty Config.
func loadConfig(flagPath, envPath, cwd string) (*config.Config, error) {
	path := flagPath
	if path == "" {
		path = envPath
	}
	if path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(cwd, path)
		}
		return config.Load(path)
	}
	if found := config.Find(cwd); found != "" {
		return config.Load(found)
	}
	return &config.Config{}, nil
}

// buildJob merges flags over config values. Config values already include
// environment overrides.
func buildJob(flags *fuseFlags, positional, extra []string, cfg *config.Config, cwd string) (mdfusion.Job, error) {
	m, p := cfg.MDFusion, cfg.Presentation

	job := mdfusion.Job{
		Output:    pickString(flags.output, flags.set("output"), m.Output),
		TOC:       pickBool(flags.pandoc.toc, flags.set("toc"), m.TOC),
		TitlePage: pickBool(flags.metadata.titlePage, flags.set("title-page"), m.TitlePage),
		Metadata: mdfusion.Metadata{
			Title:  pickString(flags.metadata.title, flags.set("title"), m.Title),
			Author: pickString(flags.metadata.author, flags.set("author"), m.Author),
			Date:   pickString(flags.metadata.date, flags.set("date"), m.Date),
		},
		HeaderTex:        pickString(flags.pandoc.headerTex, flags.set("header-tex"), m.HeaderTex),
		MergedDir:        pickString(flags.pandoc.mergedMD, flags.set("merged-md"), m.MergedMD),
		StripFrontMatter: pickBool(flags.content.stripFrontMatter, flags.set("strip-front-matter"), m.StripFrontMatter),
		StrictImages:     pickBool(flags.content.strictImages, flags.set("strict-images"), m.StrictImages),
		Verbose:          pickBool(flags.common.verbose, flags.set("verbose"), m.Verbose),

		Presentation: pickBool(flags.presentation.enabled, flags.set("presentation"), p.Presentation),
		Deck: mdfusion.DeckConfig{
			FooterText:      pickString(flags.presentation.footerText, flags.set("footer-text"), p.FooterText),
			AnimateAllLines: pickBool(flags.presentation.animateAllLines, flags.set("animate-all-lines"), p.AnimateAllLines),
		},
		ChromiumPath: pickString(flags.presentation.chromiumPath, flags.set("chromium-path"), p.ChromiumPath),
	}

	job.RootDir = resolveRootDir(positional, m.RootDir, cfg.Path)

	if job.HeaderTex == "" {
		job.HeaderTex = filepath.Join(cwd, defaultHeaderTex)
		job.HeaderTexOptional = true
	}

	// Relative paths from flags and the environment are taken from the
	// working directory. Config paths are already absolute.
	for _, path := range []*string{&job.RootDir, &job.Output, &job.HeaderTex, &job.MergedDir} {
		if *path != "" && !filepath.IsAbs(*path) {
			*path = filepath.Join(cwd, *path)
		}
	}

	job.PandocArgs = append(job.PandocArgs, m.PandocArgs...)
	job.PandocArgs = append(job.PandocArgs, strings.Fields(flags.pandoc.args)...)
	job.PandocArgs = append(job.PandocArgs, extra...)

	job.RemoveAltTexts = resolveAltTexts(m.RemoveAltTexts, flags.content.removeAltTexts, flags.set("remove-alt-texts"))

	timeout, err := resolveTimeout(flags.presentation.timeout, cfg)
	if err != nil {
		return job, err
	}
	job.Timeout = timeout

	return job, nil
}

// resolveAltTexts merges the configured and flag lists. Nil leaves the
// library default in place; an empty list keeps every alt text. That happens
// for "remove_alt_texts = []" or an explicitly empty --remove-alt-texts,
// which also discards the configured list.
func resolveAltTexts(fromConfig, fromFlag []string, flagSet bool) []string {
	if flagSet && len(fromFlag) == 0 {
		return []string{}
	}
	if fromConfig == nil && !flagSet {
		return nil
	}
	return append([]string{}, config.MergeList(fromConfig, fromFlag)...)
}

// resolveRootDir picks the positional argument, then the configured root,
// then the directory of the config file. Empty means the working directory.
func resolveRootDir(positional []string, fromConfig *string, configPath string) string {
	switch {
	case len(positional) > 0:
		return positional[0]
	case fromConfig != nil && *fromConfig != "":
		return *fromConfig
	case configPath != "":
		return filepath.Dir(configPath)
	}
	return ""
}

// resolveTimeout parses the --timeout flag, falling back to the config.
func resolveTimeout(flagValue string, cfg *config.Config) (time.Duration, error) {
	if flagValue == "" {
		return cfg.TimeoutOr(mdfusion.DefaultPrintTimeout), nil
	}
	d, err := time.ParseDuration(flagValue)
	if err != nil {
		return 0, fmt.Errorf("%w: --timeout: %v", ErrUsage, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: --timeout must be positive, got %s", ErrUsage, d)
	}
	return d, nil
}

// pickString returns the flag value when the flag was given, else the
// config value, else "".
func pickString(flagValue string, flagSet bool, fromConfig *string) string {
	if flagSet {
		return flagValue
	}
	if fromConfig != nil {
		return *fromConfig
	}
	return ""
}

// pickBool is pickString for booleans.
func pickBool(flagValue, flagSet bool, fromConfig *bool) bool {
	if flagSet {
		return flagValue
	}
	if fromConfig != nil {
		return *fromConfig
	}
	return false
}

// printResult reports the produced artifacts on stdout.
func printResult(w io.Writer, res *mdfusion.Result, presentation bool) {
	if presentation {
		fmt.Fprintf(w, "Presentation written to %s\n", res.Output)
		if res.DeckPDF != "" {
			fmt.Fprintf(w, "Presentation PDF written to %s%s\n", res.DeckPDF, pagesSuffix(res.Pages))
		}
		return
	}
	if mdfusion.IsPDF(res.Output) {
		fmt.Fprintf(w, "Merged PDF written to %s%s\n", res.Output, pagesSuffix(res.Pages))
		return
	}
	fmt.Fprintf(w, "Merged document written to %s\n", res.Output)
}

func pagesSuffix(pages int) string {
	if pages <= 0 {
		return ""
	}
	if pages == 1 {
		return " (1 page)"
	}
	return fmt.Sprintf(" (%d pages)", pages)
}
