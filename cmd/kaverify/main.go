// kaverify is the umbrella CLI over the verification suite: run scenarios
// (sequentially or one browser each in parallel), list them, or serve the
// stand-in app for harness development.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kaboard/kaverify/internal/capture"
	"github.com/kaboard/kaverify/internal/config"
	"github.com/kaboard/kaverify/internal/fixture"
	"github.com/kaboard/kaverify/internal/logging"
	"github.com/kaboard/kaverify/internal/reel"
	"github.com/kaboard/kaverify/internal/scenario"
	"github.com/kaboard/kaverify/internal/suite"
)

var (
	cfg config.Config

	baseURL   string
	artifacts string
	parallel  bool
	reelPath  string
	stubAddr  string
)

func main() {
	_ = godotenv.Load()
	cfg = config.FromEnv()

	rootCmd := &cobra.Command{
		Use:   "kaverify",
		Short: "Browser-driven verification harness for the Ka board app",
		Long: `kaverify drives a headless browser through scripted interactions against
a running Ka instance and captures screenshots as evidence that specific
UI states render correctly.

Scenario failures are reported through logs and artifacts; the process
still exits 0 unless KAVERIFY_STRICT=1 is set.`,
		SilenceUsage: true,
	}

	runCmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Run verification scenarios (all of them by default)",
		RunE:  runScenarios,
	}
	runCmd.Flags().StringVar(&baseURL, "base-url", cfg.BaseURL, "Address of the running app")
	runCmd.Flags().StringVar(&artifacts, "artifacts", cfg.ArtifactDir, "Artifact directory")
	runCmd.Flags().BoolVar(&parallel, "parallel", false, "Run scenarios concurrently, one browser each")
	runCmd.Flags().StringVar(&reelPath, "reel", "", "Record checkpoint frames into an animated GIF at this path")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available scenarios",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range suite.Names() {
				fmt.Println(name)
			}
		},
	}

	stubCmd := &cobra.Command{
		Use:   "stub",
		Short: "Serve the stand-in Ka app",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("→ Serving stand-in app on %s\n", stubAddr)
			return fixture.New().Listen(stubAddr)
		},
	}
	stubCmd.Flags().StringVar(&stubAddr, "addr", ":5173", "Listen address")

	rootCmd.AddCommand(runCmd, listCmd, stubCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScenarios(cmd *cobra.Command, args []string) error {
	log := logging.New(cfg.Debug)
	defer func() { _ = log.Sync() }()

	cfg.ArtifactDir = artifacts

	names := args
	if len(names) == 0 {
		names = suite.Names()
	}
	scripts := make([]scenario.Script, 0, len(names))
	for _, name := range names {
		script, err := suite.Build(name, baseURL)
		if err != nil {
			return err
		}
		scripts = append(scripts, script)
	}

	var rec *reel.Recorder
	var obs capture.Observer
	if reelPath != "" {
		rec = reel.NewRecorder(log)
		obs = rec.Observe
		if parallel {
			fmt.Println("⚠ --reel orders frames by scenario; running sequentially")
			parallel = false
		}
	}

	results := make([]scenario.Result, len(scripts))
	if parallel {
		var g errgroup.Group
		for i, script := range scripts {
			i, script := i, script
			g.Go(func() error {
				results[i] = suite.Run(script, cfg, log)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, script := range scripts {
			fmt.Printf("→ Running %s...\n", script.Name)
			results[i] = suite.RunWith(script, cfg, log, obs)
		}
	}

	for _, res := range results {
		suite.Report(res, cfg)
	}

	if rec != nil && rec.Len() > 0 {
		fmt.Printf("→ Writing reel (%d frames)... ", rec.Len())
		size, err := rec.Save(reelPath)
		if err != nil {
			fmt.Println("failed")
			log.Warn("reel save failed", zap.Error(err))
		} else {
			fmt.Printf("done (%.1f KB)\n", float64(size)/1024)
		}
	}

	if code := suite.ExitCode(cfg, results...); code != 0 {
		_ = log.Sync()
		os.Exit(code)
	}
	return nil
}
