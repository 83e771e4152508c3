package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huyxdang/doc-tracker-backend/internal/config"
	"github.com/huyxdang/doc-tracker-backend/internal/llm"
	"github.com/huyxdang/doc-tracker-backend/internal/observability"
	"github.com/huyxdang/doc-tracker-backend/internal/pipeline"
	"github.com/huyxdang/doc-tracker-backend/internal/types"
	"github.com/spf13/cobra"
)

var (
	compareConfigPath   string
	compareDocumentType string
	compareOut          string
	compareJSON         bool
	compareAPIKey       string
	compareVerbose      bool
)

var compareCmd = &cobra.Command{
	Use:   "compare <v1.docx> <v2.docx>",
	Short: "Compare two document versions and classify the changes",
	Long: `Compare two versions of a .docx document, classify every change by business impact, and optionally write an annotated copy of the new version.

Without an API key the reasoning layer is skipped and non-rule changes degrade to medium impact.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	compareCmd.Flags().StringVarP(&compareDocumentType, "type", "t", "general", "Document type: general, contract, policy, report, research_paper")
	compareCmd.Flags().StringVarP(&compareOut, "out", "o", "", "Path to write the annotated document (default: <v2>_annotated.docx)")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "Print the full comparison result as JSON")
	compareCmd.Flags().StringVar(&compareAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	compareCmd.Flags().BoolVarP(&compareVerbose, "verbose", "v", false, "Print detailed progress and timing information")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var cfg config.Config
	if compareConfigPath != "" {
		loadedCfg, err := config.LoadConfig(compareConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
	}

	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = compareAPIKey
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = compareVerbose
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	pathV1, pathV2 := args[0], args[1]
	for _, path := range []string{pathV1, pathV2} {
		if !strings.HasSuffix(strings.ToLower(path), ".docx") {
			return fmt.Errorf("not a .docx file: %s", path)
		}
	}

	req := types.CompareRequest{DocumentType: compareDocumentType}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid document type %q (expected one of: %s)",
			compareDocumentType, strings.Join(types.DocumentTypes, ", "))
	}

	bytesV1, err := os.ReadFile(pathV1)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", pathV1, err)
	}
	bytesV2, err := os.ReadFile(pathV2)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", pathV2, err)
	}

	var client llm.Client
	if cfg.APIKey != "" {
		llmCfg := llm.DefaultConfig()
		if cfg.Model != "" {
			llmCfg.Model = cfg.Model
		}
		client, err = llm.NewGeminiClient(ctx, llmCfg, cfg.APIKey)
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		defer func() { _ = client.Close() }()
	} else if cfg.Verbose {
		fmt.Fprintln(os.Stderr, "No API key configured; semantic classification degrades to medium")
	}

	opts := pipeline.CompareOptions{
		BytesV1:      bytesV1,
		BytesV2:      bytesV2,
		FilenameV1:   filepath.Base(pathV1),
		FilenameV2:   filepath.Base(pathV2),
		DocumentType: compareDocumentType,
		Client:       client,
	}
	if cfg.Verbose {
		opts.OnProgress = func(event pipeline.ProgressEvent) {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", event.Stage, event.Message)
		}
	}

	result, err := pipeline.Compare(ctx, opts)
	if err != nil {
		return err
	}

	if compareJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(types.CompareResponse{
			Success:          true,
			Summary:          result.Summary,
			Changes:          result.Changes,
			ProcessingTimeMS: result.Timing.TotalMS,
			Timing:           &result.Timing,
			Metadata:         result.Metadata,
		}); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	} else {
		printer := observability.NewPrinter(os.Stdout)
		printer.PrintSummary(result.Summary)
		printer.PrintChanges(result.Changes)
		if cfg.Verbose {
			printer.PrintTiming(result.Timing)
		}
	}

	if result.AnnotatedBytes != nil {
		outPath := compareOut
		if outPath == "" {
			outPath = strings.TrimSuffix(pathV2, filepath.Ext(pathV2)) + "_annotated.docx"
		}
		if err := os.WriteFile(outPath, result.AnnotatedBytes, 0644); err != nil {
			return fmt.Errorf("failed to write annotated document: %w", err)
		}
		if !compareJSON {
			fmt.Printf("Annotated document written to %s\n", outPath)
		}
	}

	return nil
}
