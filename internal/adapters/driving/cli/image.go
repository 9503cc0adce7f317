package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var imageCmd = &cobra.Command{
	Use:   "image <prompt>",
	Short: "Generate images from a prompt",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImage,
}

func init() {
	rootCmd.AddCommand(imageCmd)
}

func runImage(cmd *cobra.Command, args []string) error {
	if imageService == nil {
		return errNotConfigured("image service")
	}

	resp, err := imageService.Generate(commandContext(cmd), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("image generation failed: %w", err)
	}
	if resp == nil || len(resp.ImageURLs) == 0 {
		cmd.Println("No images returned.")
		return nil
	}
	for _, u := range resp.ImageURLs {
		cmd.Println(u)
	}
	return nil
}
