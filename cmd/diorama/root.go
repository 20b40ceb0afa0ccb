package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Carmen-Shannon/tank-diorama/config"
	"github.com/Carmen-Shannon/tank-diorama/engine"
	"github.com/Carmen-Shannon/tank-diorama/engine/loader"
	"github.com/Carmen-Shannon/tank-diorama/engine/renderer"
	"github.com/spf13/cobra"
)

// rootOptions holds the parsed command line flags.
type rootOptions struct {
	configPath string
	assets     string
	profile    bool
	vsync      bool
	msaa       int
	logFile    string
	software   bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "diorama",
		Short:        "Render the tank diorama",
		Long:         "Loads the scene manifest, opens a window and renders the diorama while its assets stream in.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "scene manifest (.yaml, .yml or .toml); the built-in scene when empty")
	f.StringVar(&opts.assets, "assets", ".", "asset directory or http(s) base URL that manifest paths resolve against")
	f.BoolVar(&opts.profile, "profile", false, "log FPS, memory and load statistics every second")
	f.BoolVar(&opts.vsync, "vsync", true, "wait for vertical blank when presenting")
	f.IntVar(&opts.msaa, "msaa", 4, "multisample count: 1, 4, 8 or 16")
	f.StringVar(&opts.logFile, "log-file", "", "append log output to this file instead of stderr")
	f.BoolVar(&opts.software, "software", false, "force the software fallback adapter")
	return cmd
}

// run is the body of the root command. It returns once the window closes.
func run(cmd *cobra.Command, opts *rootOptions) error {
	logger, closeLog, err := newLogger(opts.logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadManifest(opts.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("vsync") {
		cfg.Renderer.VSync = opts.vsync
	}
	if cmd.Flags().Changed("msaa") {
		cfg.Renderer.MSAA = opts.msaa
	}

	fetcher, err := newFetcher(opts.assets)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := engine.Bootstrap(ctx, cfg,
		engine.WithLogger(logger),
		engine.WithFetcher(fetcher),
		engine.WithProfiling(opts.profile),
		engine.WithRendererOptions(renderer.WithForceSoftwareRenderer(opts.software)),
	)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		eng.Quit()
	}()
	eng.Run()
	return nil
}

// loadManifest reads the manifest at path, or the built-in scene when path is empty.
func loadManifest(path string) (config.Scene, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// newFetcher resolves asset paths against an http(s) base URL or a local directory.
func newFetcher(assets string) (loader.Fetcher, error) {
	if strings.HasPrefix(assets, "http://") || strings.HasPrefix(assets, "https://") {
		return loader.NewHTTPFetcher(assets, nil)
	}
	info, err := os.Stat(assets)
	if err != nil {
		return nil, fmt.Errorf("asset directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("asset directory: %s is not a directory", assets)
	}
	return loader.NewFSFetcher(os.DirFS(assets)), nil
}

// newLogger returns the standard logger, redirected to an append-only file when path is set.
func newLogger(path string) (*log.Logger, func(), error) {
	if path == "" {
		return log.Default(), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(f)
	return log.Default(), func() {
		log.SetOutput(io.Discard)
		_ = f.Close()
	}, nil
}
