// verify-nav places stones relative to the board container and steps back
// through the move list, leaving verification.png behind as evidence. No
// flags: the target URL and artifact names are scenario literals.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/kaboard/kaverify/internal/config"
	"github.com/kaboard/kaverify/internal/logging"
	"github.com/kaboard/kaverify/internal/suite"
)

const (
	targetURL   = "http://localhost:5173"
	artifactDir = "verification"
)

func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	cfg.ArtifactDir = artifactDir
	log := logging.New(cfg.Debug)
	defer func() { _ = log.Sync() }()

	res := suite.Run(suite.Navigation(targetURL), cfg, log)
	suite.Report(res, cfg)
	os.Exit(suite.ExitCode(cfg, res))
}
