package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gpulens/internal/adapters/tabular"
	"gpulens/internal/modkit"
	"gpulens/internal/modkit/module"
	"gpulens/internal/platform/config"
	"gpulens/internal/platform/logger"

	classmod "gpulens/internal/services/classifier/module"
	pipedom "gpulens/internal/services/pipeline/domain"
	pipemod "gpulens/internal/services/pipeline/module"
)

func newScoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <batch-file>",
		Short: "Score a batch of listings",
		Long: `Score runs the full pipeline over one batch file (.csv, .jsonl, or
.ndjson) and writes per-stage artifacts plus scored.csv under the output
directory, one subdirectory per run.`,
		Args: cobra.ExactArgs(1),
		RunE: runScore,
	}
	cmd.Flags().String("out", "runs", "artifact output directory")
	cmd.Flags().String("run-id", "", "run id (generated when empty)")
	cmd.Flags().Int("workers", 0, "match/enrich concurrency (0 = config default)")
	cmd.Flags().Float64("fuzzy-threshold", 0, "fuzzy match acceptance threshold (0 = default)")
	cmd.Flags().String("registry", "", "model registry JSON (empty = embedded)")
	cmd.Flags().String("weights", "", "scoring weights YAML (empty = env/defaults)")
	cmd.Flags().String("quant-config", "", "quantization heuristic YAML (empty = env/defaults)")
	cmd.Flags().String("classifier-url", "", "external GPU classifier base URL (empty = disabled)")
	cmd.Flags().Bool("dry-run", false, "compute but write no artifacts")
	return cmd
}

func runScore(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	out, _ := flags.GetString("out")
	runID, _ := flags.GetString("run-id")
	workers, _ := flags.GetInt("workers")
	fuzzy, _ := flags.GetFloat64("fuzzy-threshold")
	regPath, _ := flags.GetString("registry")
	weightsPath, _ := flags.GetString("weights")
	quantPath, _ := flags.GetString("quant-config")
	classifierURL, _ := flags.GetString("classifier-url")
	dryRun, _ := flags.GetBool("dry-run")

	deps := modkit.Deps{
		Cfg: config.New(),
		Log: *logger.Get(),
	}

	cm := classmod.New(deps, classmod.Options{BaseURL: classifierURL})

	pm := pipemod.New(
		deps,
		pipemod.Options{
			Workers:         workers,
			FuzzyThreshold:  fuzzy,
			RegistryPath:    regPath,
			WeightsPath:     weightsPath,
			QuantConfigPath: quantPath,
		},
		modkit.WithPorts(pipedom.Ports{
			Reader:    tabular.NewReader(args[0]),
			Artifacts: tabular.NewArtifactWriter(out),
			Probe:     module.MustPortsOf[classmod.Ports](cm).Probe,
		}),
	)

	module.Register(cm.Name(), cm.Ports())
	module.Register(pm.Name(), pm.Ports())

	ports := pm.Ports().(pipemod.Ports)
	_, report, err := ports.Runner.Run(cmd.Context(), pipedom.RunInput{
		RunID:  runID,
		DryRun: dryRun,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	if !dryRun {
		fmt.Fprintf(os.Stderr, "artifacts: %s/%s\n", out, report.RunID)
	}
	return nil
}
