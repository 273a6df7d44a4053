package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the upload form and JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildPipeline(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		log.Printf("starting image translator on %s (ocr=%s, translator=%s)", cfg.Server.Port, cfg.OCR.Engine, cfg.Translator.Provider)
		return service.NewService(cfg, p).StartService(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
