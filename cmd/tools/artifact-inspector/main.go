// cmd/tools/artifact-inspector/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"loan-approval/internal/artifacts"
	"loan-approval/internal/classifier"
	"loan-approval/internal/common/config"
	"loan-approval/internal/common/logger"
	"loan-approval/internal/common/observability"
	"loan-approval/internal/form"
	"loan-approval/internal/models"
	"loan-approval/internal/prediction"
)

func main() {
	modelCmd := flag.NewFlagSet("model", flag.ExitOnError)
	choicesCmd := flag.NewFlagSet("choices", flag.ExitOnError)
	scoreCmd := flag.NewFlagSet("score", flag.ExitOnError)

	// Model command flags
	modelPath := modelCmd.String("path", config.DefaultModelPath, "Path to the pipeline artifact (.json, .yaml)")

	// Choices command flags
	driver := choicesCmd.String("driver", "csv", "Reference driver (csv, sqlite)")
	refPath := choicesCmd.String("path", config.DefaultReferencePath, "CSV file or SQLite database")
	table := choicesCmd.String("table", "loan_applications", "Reference table (sqlite only)")

	// Score command flags
	scoreModel := scoreCmd.String("model", config.DefaultModelPath, "Path to the pipeline artifact")
	inputPath := scoreCmd.String("input", "", "JSON file with form input; defaults are used for missing fields")

	if len(os.Args) < 2 {
		help(os.Stdout)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "model":
		modelCmd.Parse(os.Args[2:])
		err = inspectModel(os.Stdout, *modelPath)

	case "choices":
		choicesCmd.Parse(os.Args[2:])
		err = listChoices(os.Stdout, *driver, *refPath, *table)

	case "score":
		scoreCmd.Parse(os.Args[2:])
		var raw []byte
		if *inputPath != "" {
			if raw, err = os.ReadFile(*inputPath); err != nil {
				break
			}
		}
		err = score(os.Stdout, *scoreModel, raw)

	case "help":
		help(os.Stdout)
		return

	default:
		help(os.Stdout)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type modelSummary struct {
	Path        string             `yaml:"path"`
	Name        string             `yaml:"name,omitempty"`
	Version     string             `yaml:"version,omitempty"`
	Features    []string           `yaml:"features"`
	Explainable bool               `yaml:"explainable"`
	Importances map[string]float64 `yaml:"importances,omitempty"`
}

func inspectModel(w io.Writer, path string) error {
	clf, err := classifier.LoadFile(path)
	if err != nil {
		return err
	}

	summary := modelSummary{Path: path}

	var pipeline *classifier.Pipeline
	switch p := clf.(type) {
	case *classifier.ExplainablePipeline:
		pipeline = p.Pipeline
		summary.Explainable = true
		values, err := p.FeatureImportances()
		if err != nil {
			return err
		}
		summary.Importances = make(map[string]float64, len(values))
		for i, name := range p.FeatureNames() {
			summary.Importances[name] = values[i]
		}
	case *classifier.Pipeline:
		pipeline = p
	default:
		return fmt.Errorf("unexpected classifier type %T", clf)
	}

	summary.Name = pipeline.Name()
	summary.Version = pipeline.Version()
	summary.Features = pipeline.Features()
	return writeYAML(w, summary)
}

func listChoices(w io.Writer, driver, path, table string) error {
	cfg := config.Config{
		Artifacts: config.ArtifactsConfig{
			Reference: config.ReferenceConfig{Driver: driver, Path: path, Table: table},
		},
		Database: config.DatabaseConfig{SQLite: config.SQLiteConfig{Path: path}},
	}

	choices, err := artifacts.LoadChoices(context.Background(), cfg, logger.NewNoOpLogger())
	if err != nil {
		return err
	}
	return writeYAML(w, choices.All())
}

type scoreOutput struct {
	Outcome     string                     `yaml:"outcome"`
	Confidence  string                     `yaml:"confidence"`
	Message     string                     `yaml:"message"`
	Warnings    []string                   `yaml:"warnings,omitempty"`
	Record      map[string]interface{}     `yaml:"record"`
	Importances []models.FeatureImportance `yaml:"importances,omitempty"`
}

// score runs one prediction without choice validation, so any category
// string can be tried against the pipeline.
func score(w io.Writer, modelPath string, rawInput []byte) error {
	clf, err := classifier.LoadFile(modelPath)
	if err != nil {
		return err
	}

	in := form.Defaults(nil)
	if len(rawInput) > 0 {
		if err := json.Unmarshal(rawInput, &in); err != nil {
			return fmt.Errorf("parse input: %w", err)
		}
	}

	svc := prediction.NewService(clf, nil, observability.NewNoop(), logger.NewNoOpLogger())
	result, err := svc.Submit(context.Background(), in)
	if err != nil {
		return err
	}

	return writeYAML(w, scoreOutput{
		Outcome:     result.Outcome,
		Confidence:  result.ConfidenceText,
		Message:     result.Message,
		Warnings:    result.Warnings,
		Record:      result.Record.Row().Map(),
		Importances: result.FeatureImportances,
	})
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

func help(w io.Writer) {
	fmt.Fprint(w, `
Usage: artifact-inspector <command> [flags]

Commands:
  model    Validate a pipeline artifact and print its features
  choices  Print the categorical choice sets of a reference table
  score    Score one application against a pipeline artifact
  help     Show this help message

Examples:
  artifact-inspector model -path artifacts/loan_approval_pipeline.json
  artifact-inspector choices -driver sqlite -path reference.db -table loan_applications
  artifact-inspector score -model artifacts/loan_approval_pipeline.json -input application.json

Use 'artifact-inspector <command> -h' for more information about a command.
`)
}
