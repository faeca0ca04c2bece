package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/orchidautomation/playbook-cli/internal/artifact"
	"github.com/orchidautomation/playbook-cli/internal/model"
	"github.com/orchidautomation/playbook-cli/internal/pipeline"
	"github.com/orchidautomation/playbook-cli/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run <vendor-domain> <prospect-domain>",
	Short: "Generate a sales playbook for a vendor/prospect pair",
	Long: `Runs the full playbook pipeline: maps both websites, scrapes and
analyzes the highest-value pages, extracts vendor intelligence, profiles the
prospect, and generates persona-targeted playbook components.

The assembled playbook and research artifacts are written under the output
directory, and the run is recorded in the run-history store.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := model.NewRunInput(args[0], args[1])
		if err != nil {
			return err
		}

		st, err := initStore(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "init store")
		}
		defer st.Close()

		if err := st.Migrate(cmd.Context()); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		p, err := newPipeline()
		if err != nil {
			return err
		}

		result, err := executeRun(cmd.Context(), st, p, input)
		if result != nil {
			out, merr := json.MarshalIndent(result, "", "  ")
			if merr != nil {
				return eris.Wrap(merr, "marshal result")
			}
			os.Stdout.Write(append(out, '\n'))
		}
		return err
	},
}

// executeRun records the run in the store, drives the pipeline, and persists
// the outcome plus on-disk artifacts. The returned result is non-nil whenever
// the pipeline produced a report, even on fatal failure.
func executeRun(ctx context.Context, st store.Store, p *pipeline.Pipeline, input model.RunInput) (*model.RunResult, error) {
	run, err := st.CreateRun(ctx, input)
	if err != nil {
		return nil, eris.Wrap(err, "create run")
	}
	return processRun(ctx, st, p, run.ID, input)
}

// processRun drives the pipeline for an already-created run and persists the
// outcome plus on-disk artifacts.
func processRun(ctx context.Context, st store.Store, p *pipeline.Pipeline, runID string, input model.RunInput) (*model.RunResult, error) {
	log := zap.L().With(zap.String("run_id", runID),
		zap.String("vendor", input.VendorDomain),
		zap.String("prospect", input.ProspectDomain))

	if err := st.UpdateRunStatus(ctx, runID, model.RunStatusMapping); err != nil {
		log.Warn("failed to update run status", zap.Error(err))
	}

	result, runErr := p.Run(ctx, input)
	status := model.RunStatusComplete
	if runErr != nil || result == nil || result.Playbook == nil {
		status = model.RunStatusFailed
	}

	if result != nil {
		writer := artifact.NewWriter(cfg.Output.Dir)
		if dir, werr := writer.Save(input, result); werr != nil {
			log.Warn("failed to write artifacts", zap.Error(werr))
		} else {
			result.ArtifactPath = dir
			log.Info("artifacts written", zap.String("dir", dir))
		}
	}

	if err := st.UpdateRunResult(ctx, runID, status, result); err != nil {
		log.Warn("failed to persist run result", zap.Error(err))
	}

	if runErr != nil {
		return result, runErr
	}
	log.Info("run complete", zap.String("status", string(status)))
	return result, nil
}

func init() {
	rootCmd.AddCommand(runCmd)
}
