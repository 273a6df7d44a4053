package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/models"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/pipeline"
)

var (
	translateLangs []string
	translateDest  string
)

var translateCmd = &cobra.Command{
	Use:   "translate <image>",
	Short: "Run the pipeline once on a local image and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildPipeline(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		res, err := p.ProcessUpload(cmd.Context(), args[0], models.NewLanguageSet(translateLangs...), translateDest)
		if err != nil {
			var f *pipeline.Failure
			if errors.As(err, &f) {
				return errors.New(f.Message())
			}
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Extracted text:    %s\n", res.ExtractedText)
		fmt.Fprintf(out, "Detected language: %s\n", res.DetectedLanguage)
		fmt.Fprintf(out, "Translated (%s):   %s\n", res.DestinationLanguage, res.TranslatedText)
		return nil
	},
}

func init() {
	translateCmd.Flags().StringSliceVarP(&translateLangs, "lang", "l", []string{"en"}, "languages expected in the image (repeatable)")
	translateCmd.Flags().StringVarP(&translateDest, "dest", "d", pipeline.DefaultDestLanguage, "destination language")
	rootCmd.AddCommand(translateCmd)
}
