package main

import "github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/cmd"

func main() {
	cmd.Execute()
}
