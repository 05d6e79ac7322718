// slidedeck turns a narration script into an AI-illustrated PowerPoint deck.
//
// Flow: load the script file, analyze it with Gemini to split pages and
// design visuals, generate one image per page through a bounded worker pool,
// then package the images as a 16:9 .pptx (or plain image files).
package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/ai-slide-deck/internal/chat"
	"github.com/fpang/ai-slide-deck/internal/config"
	"github.com/fpang/ai-slide-deck/internal/imaging"
	"github.com/fpang/ai-slide-deck/internal/logging"
	"github.com/fpang/ai-slide-deck/internal/pipeline"
	"github.com/fpang/ai-slide-deck/internal/pptx"
	"github.com/fpang/ai-slide-deck/internal/registry"
	"github.com/fpang/ai-slide-deck/internal/script"
	"github.com/fpang/ai-slide-deck/internal/session"
)

// CLI flags
var (
	scriptFlag    string
	templateFlag  string
	outFlag       string
	imagesDirFlag string
	coverFlag     bool
	endingFlag    bool
	modelFlag     string
)

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "slidedeck",
	Short: "AI-generated slide decks from narration scripts",
	Long: `slidedeck analyzes a narration script (spreadsheet or text), designs a
visual for every page with Gemini, renders the slides as AI-generated images,
and packages them into a 16:9 PowerPoint file.

An optional template image pins the visual style: every generated slide
copies its background, frame, and palette.

Examples:
  slidedeck --script lecture.xlsx --out lecture.pptx
  slidedeck -s script.csv -t template.png --cover --ending
  slidedeck -s notes.txt --images-dir ./slides  # images only, no deck`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&scriptFlag, "script", "s", "", "Narration script file (.xlsx, .csv, .tsv, .txt, .md)")
	rootCmd.Flags().StringVarP(&templateFlag, "template", "t", "", "Template image whose style every slide follows")
	rootCmd.Flags().StringVarP(&outFlag, "out", "o", "deck.pptx", "Output .pptx path")
	rootCmd.Flags().StringVar(&imagesDirFlag, "images-dir", "", "Also export slides as numbered image files into this directory")
	rootCmd.Flags().BoolVar(&coverFlag, "cover", false, "Add a dedicated cover page")
	rootCmd.Flags().BoolVar(&endingFlag, "ending", false, "Add a dedicated closing page")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Gemini text model override (e.g. gemini-3-flash-preview)")
	rootCmd.MarkFlagRequired("script")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuration error")
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}

	rows, err := script.ReadRows(scriptFlag)
	if err != nil {
		log.Fatal().Err(err).Str("path", scriptFlag).Msg("Failed to read script")
	}
	scriptText := script.RowsText(rows)
	if scriptText == "" {
		log.Fatal().Str("path", scriptFlag).Msg("Script file is empty")
	}

	ctx := context.Background()
	client, err := chat.NewClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	reference := loadTemplate(templateFlag)

	fmt.Println("============================================")
	fmt.Println("Slide Deck Generation")
	fmt.Println("============================================")
	fmt.Printf("Script: %s\n", scriptFlag)
	if templateFlag != "" {
		fmt.Printf("Template: %s\n", templateFlag)
	}
	fmt.Println("--------------------------------------------")
	fmt.Println("Analyzing script...")

	analysis, err := chat.AnalyzeScript(ctx, client, scriptText)
	if err != nil {
		log.Fatal().Err(err).Msg("Script analysis failed")
	}

	pages := script.BuildPages(analysis, script.BuildOptions{
		IncludeCover:  coverFlag,
		IncludeEnding: endingFlag,
	})
	if len(pages) == 0 {
		log.Fatal().Msg("Script produced no pages")
	}
	fmt.Printf("Pages: %d\n", len(pages))
	if course := analysis.CourseMetadata.CourseName; course != "" {
		fmt.Printf("Course: %s\n", course)
	}

	reg := registry.New(pages)
	guard := session.NewGuard()
	runner := pipeline.NewRunner(reg, guard,
		chat.NewDescriber(client, cfg.Model),
		chat.NewImageClient(cfg.GeminiAPIKey, cfg.ImageModel),
		pipeline.Options{
			DescribeTimeout: cfg.DescribeTimeout,
			ImageTimeout:    cfg.ImageTimeout,
			Reference:       reference,
			CourseInfo:      analysis.CourseMetadata.Format(),
		})

	installStopHandler(runner)

	fmt.Println("--------------------------------------------")
	fmt.Printf("Designing slides (%d workers)...\n", cfg.DescribeWorkers)
	report, err := runner.DescribeAll(ctx, cfg.DescribeWorkers)
	if err != nil {
		log.Fatal().Err(err).Msg("Describe stage failed to start")
	}
	fmt.Printf("Designed: %d ok, %d failed, %d skipped\n", report.Succeeded, report.Failed, report.Skipped)

	if guard.Stopped() {
		fmt.Println("Stopped before image generation.")
		return
	}

	fmt.Printf("Generating images (%d workers)...\n", cfg.ImageWorkers)
	report, err = runner.GenerateAll(ctx, cfg.ImageWorkers)
	if err != nil {
		log.Fatal().Err(err).Msg("Image stage failed to start")
	}
	fmt.Printf("Generated: %d ok, %d failed, %d skipped\n", report.Succeeded, report.Failed, report.Skipped)

	slides := pptx.FromPages(reg.Snapshot())
	if len(slides) == 0 {
		log.Fatal().Msg("No slide images were generated; nothing to export")
	}

	if imagesDirFlag != "" {
		if err := pptx.WriteImageFiles(imagesDirFlag, slides); err != nil {
			log.Fatal().Err(err).Msg("Failed to export slide images")
		}
		fmt.Printf("Images written to %s\n", imagesDirFlag)
	}

	out, err := os.Create(outFlag)
	if err != nil {
		log.Fatal().Err(err).Str("path", outFlag).Msg("Failed to create output file")
	}
	if err := pptx.Assemble(out, slides); err != nil {
		out.Close()
		log.Fatal().Err(err).Msg("Failed to assemble deck")
	}
	if err := out.Close(); err != nil {
		log.Fatal().Err(err).Msg("Failed to write output file")
	}

	fmt.Println("--------------------------------------------")
	fmt.Printf("Deck written: %s (%d slides)\n", outFlag, len(slides))
	if missing := reg.Len() - reg.CountWithImage(); missing > 0 {
		fmt.Printf("Note: %d page(s) have no image and were left out\n", missing)
	}
}

// loadTemplate reads and downscales the optional style template image.
// Returns nil when no template was given.
func loadTemplate(path string) *registry.ImagePayload {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to read template image")
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "image/png"
	}
	payload, err := imaging.Downscale(registry.ImagePayload{Data: data, MIMEType: mimeType}, imaging.DefaultMaxDimension)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to process template image")
	}
	return &payload
}

// installStopHandler wires SIGINT/SIGTERM to a cooperative stop. A second
// signal exits immediately.
func installStopHandler(runner *pipeline.Runner) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nStopping... (press Ctrl+C again to force quit)")
		runner.Stop()
		<-sigCh
		os.Exit(1)
	}()
}
