package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/peezyagent/rfp-analyzer/internal/config"
	"github.com/peezyagent/rfp-analyzer/internal/models"
	"github.com/peezyagent/rfp-analyzer/internal/utils"
)

// rfpcheck validates RFP-review inputs without starting the host
// application: the process configuration, proposal record files, and
// analysis record files. Valid records are echoed back as normalized
// JSON on stdout; logs go to stderr.

func main() {
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	assignID := flag.Bool("assign-id", false, "generate an id for a proposal record that lacks one")
	flag.Usage = usage
	flag.Parse()

	logger := utils.NewLogger(*logLevel)

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "config":
		runConfig(logger)
	case "proposal":
		requireFileArg(args)
		runProposal(logger, args[1], *assignID)
	case "analysis":
		requireFileArg(args)
		runAnalysis(logger, args[1])
	default:
		usage()
		os.Exit(2)
	}
}

func runConfig(logger *utils.Logger) {
	cfg, err := config.Load(logger.Logger)
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}

	printJSON(logger, cfg.Redacted())
}

func runProposal(logger *utils.Logger, path string, assignID bool) {
	data := readRecordFile(logger, path)

	if assignID && data["id"] == nil {
		data["id"] = utils.GenerateID()
	}

	proposal, err := models.ProposalFromMap(data)
	if err != nil {
		logger.Fatal("invalid proposal record", "path", path, "error", err)
	}

	logger.Info("proposal record valid", "id", proposal.ID(), "filename", proposal.Filename())
	printJSON(logger, proposal.ToMap())
}

func runAnalysis(logger *utils.Logger, path string) {
	data := readRecordFile(logger, path)

	analysis, err := models.AnalysisFromMap(data)
	if err != nil {
		logger.Fatal("invalid analysis record", "path", path, "error", err)
	}

	logger.Info("analysis record valid",
		"proposal_id", analysis.ProposalID(),
		"overall_score", analysis.OverallScore())
	printJSON(logger, analysis.ToMap())
}

func readRecordFile(logger *utils.Logger, path string) map[string]any {
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Fatal("failed to read record file", "path", path, "error", err)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		logger.Fatal("record file is not a JSON object", "path", path, "error", err)
	}
	return data
}

func printJSON(logger *utils.Logger, v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.Fatal("failed to encode output", "error", err)
	}
}

func requireFileArg(args []string) {
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: rfpcheck [flags] <command>

Commands:
  config                  load configuration from the environment and print the redacted view
  proposal <file.json>    validate a proposal record file
  analysis <file.json>    validate an analysis record file and print the computed score

Flags:
`)
	flag.PrintDefaults()
}
