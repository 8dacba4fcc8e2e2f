package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"elevatr.app/predictor/internal/classifier"
	"elevatr.app/predictor/internal/http/dto"
	"elevatr.app/predictor/internal/service"
	"elevatr.app/predictor/internal/validate"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict grades for a student record or an array of records",
	Long: `Reads a JSON object (one student) or array (a batch) from --input, or
stdin when --input is "-", and prints the same response the HTTP API would.`,
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().StringP("input", "i", "-", "Path to a JSON file, or - for stdin")
	predictCmd.Flags().String("model-dir", "models", "Directory holding scaler.json, label_encoder.json and model.json")
	predictCmd.Flags().String("model-url", "", "Use a remote model server instead of local artifacts")
	predictCmd.Flags().Int("batch-concurrency", service.DefaultBatchConcurrency, "Records scored in parallel for array input")
}

func runPredict(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	raw, err := readInput(cmd)
	if err != nil {
		return err
	}

	clf, err := buildClassifier(cmd)
	if err != nil {
		return err
	}

	concurrency, _ := cmd.Flags().GetInt("batch-concurrency")
	svc := service.NewPredictionService(clf, nil, service.BatchOptions{Concurrency: concurrency})

	var out any
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("parsing input array: %w", err)
		}
		results, err := svc.Batch(ctx, items)
		if err != nil {
			return err
		}
		out = dto.NewBatchResponse(results)
	} else {
		record, err := validate.Decode(trimmed)
		if err != nil {
			return err
		}
		result, err := svc.Predict(ctx, record)
		if err != nil {
			return err
		}
		out = result
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func readInput(cmd *cobra.Command) ([]byte, error) {
	path, _ := cmd.Flags().GetString("input")
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return raw, nil
}

func buildClassifier(cmd *cobra.Command) (classifier.Classifier, error) {
	if url, _ := cmd.Flags().GetString("model-url"); url != "" {
		remote := classifier.NewRemote(classifier.RemoteConfig{BaseURL: url, Timeout: 30 * time.Second})
		if err := remote.Ready(cmd.Context()); err != nil {
			return nil, err
		}
		return remote, nil
	}
	dir, _ := cmd.Flags().GetString("model-dir")
	return classifier.NewLocal(dir)
}
