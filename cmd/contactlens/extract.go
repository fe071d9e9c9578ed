package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/contactlens/internal/config"
	"github.com/jonathan/contactlens/internal/extraction"
	"github.com/jonathan/contactlens/internal/llm"
	"github.com/jonathan/contactlens/internal/observability"
	"github.com/jonathan/contactlens/internal/pipeline"
	"github.com/jonathan/contactlens/internal/store"
)

var (
	extractImprove bool
	extractConfirm bool
	extractMask    bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <image>",
	Short: "Extract contact data from a business-card image",
	Long: `Run the extraction pipeline once against a card image and print the result.
With --improve the draft is normalized by the model before printing; with
--confirm it is saved to the session list after a duplicate check.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractImprove, "improve", false, "Normalize the extracted draft with the model")
	extractCmd.Flags().BoolVar(&extractConfirm, "confirm", false, "Confirm the draft into the session contact list")
	extractCmd.Flags().BoolVar(&extractMask, "mask", false, "Mask email and phone in the printed contact list")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	imagePath := args[0]
	image, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image %s: %w", imagePath, err)
	}

	format, err := imageFormat(imagePath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	modelConfig := llm.DefaultGeminiConfig().
		WithModel(llm.TierPro, cfg.ModelPro).
		WithModel(llm.TierFlash, cfg.ModelFlash)

	client, err := llm.NewClient(ctx, modelConfig, cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	contacts := store.New()
	p := pipeline.New(extraction.NewExtractor(client), contacts)
	printer := observability.NewPrinter(os.Stdout)

	fmt.Printf("Analyzing %s...\n", filepath.Base(imagePath))
	draft, err := p.Extract(ctx, filepath.Base(imagePath), image, format)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	printer.PrintDraft(draft)

	if extractImprove {
		fmt.Println("Normalizing data...")
		draft, err = p.Improve(ctx, nil)
		if err != nil {
			return fmt.Errorf("improve failed: %w", err)
		}
		printer.PrintDraft(draft)
	}

	if extractConfirm {
		fmt.Println("Checking for duplicates...")
		contact, err := p.Confirm(ctx, nil, nil)
		if err != nil {
			return fmt.Errorf("confirm failed: %w", err)
		}
		if contact.IsDuplicate {
			fmt.Printf("Flagged as duplicate: %s\n", contact.DuplicateReason)
		} else {
			fmt.Println("Contact saved.")
		}
		printer.PrintContactTable(contacts.Projection(extractMask))
	}

	return nil
}

// imageFormat maps a card image path to the subtype sent to the model.
func imageFormat(imagePath string) (string, error) {
	switch strings.ToLower(filepath.Ext(imagePath)) {
	case ".jpg", ".jpeg":
		return "jpeg", nil
	case ".png":
		return "png", nil
	default:
		return "", fmt.Errorf("unsupported image type %q; use jpg or png", filepath.Ext(imagePath))
	}
}
