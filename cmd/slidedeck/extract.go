package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/ai-slide-deck/internal/chat"
	"github.com/fpang/ai-slide-deck/internal/config"
	"github.com/fpang/ai-slide-deck/internal/logging"
	"github.com/fpang/ai-slide-deck/internal/registry"
)

var (
	extractImageFlag string
	extractOutFlag   string
)

// extractCmd regenerates a standalone illustration from a cropped slide
// region, so chart and diagram artwork can be reused outside the deck.
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Regenerate a clean illustration from a cropped slide region",
	Long: `extract takes a cropped region of a generated slide and asks the image
model to redraw it as a standalone illustration with all text removed.

Examples:
  slidedeck extract --image crop.png
  slidedeck extract -i region.jpg -o figure.png`,
	Run: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractImageFlag, "image", "i", "", "Cropped slide region image")
	extractCmd.Flags().StringVarP(&extractOutFlag, "out", "o", "illustration.png", "Output image path")
	extractCmd.MarkFlagRequired("image")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) {
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuration error")
	}

	data, err := os.ReadFile(extractImageFlag)
	if err != nil {
		log.Fatal().Err(err).Str("path", extractImageFlag).Msg("Failed to read region image")
	}
	mimeType := mime.TypeByExtension(filepath.Ext(extractImageFlag))
	if mimeType == "" {
		mimeType = "image/png"
	}

	client := chat.NewImageClient(cfg.GeminiAPIKey, cfg.ImageModel)

	fmt.Println("Extracting illustration...")
	payload, err := client.ExtractIllustration(context.Background(), registry.ImagePayload{
		Data:     data,
		MIMEType: mimeType,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Illustration extraction failed")
	}

	if err := os.WriteFile(extractOutFlag, payload.Data, 0o644); err != nil {
		log.Fatal().Err(err).Str("path", extractOutFlag).Msg("Failed to write illustration")
	}
	fmt.Printf("Illustration written: %s (%s, %d bytes)\n", extractOutFlag, payload.MIMEType, len(payload.Data))
}
