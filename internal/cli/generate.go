package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xeitosa/socialai/internal/copywriter"
	"github.com/xeitosa/socialai/internal/media"
	"github.com/xeitosa/socialai/internal/progress"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a post for an artist",
	Long:  "Generate a post in the voice of a stored artist persona, optionally analyzing a video or image.",
	RunE:  runGenerate,
}

var (
	flagArtist       string
	flagInstructions string
	flagMedia        string
	flagTUI          bool
)

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&flagArtist, "artist", "a", "", "Persona id")
	generateCmd.Flags().StringVarP(&flagInstructions, "instructions", "i", "", "What the post should be about")
	generateCmd.Flags().StringVarP(&flagMedia, "media", "f", "", "Video or image to analyze ("+strings.Join(media.Extensions, ", ")+")")
	generateCmd.Flags().BoolVarP(&flagTUI, "tui", "t", false, "Pick the artist and write instructions interactively")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := requireWriter(a); err != nil {
		return err
	}

	ctx := cmd.Context()
	if flagTUI {
		personas, err := a.Store.Load(ctx)
		if err != nil {
			return err
		}
		choice, err := runArtistPicker(personas, flagArtist, flagInstructions)
		if err != nil {
			return err
		}
		flagArtist = choice.ArtistID
		flagInstructions = choice.Instructions
	}

	if flagArtist == "" {
		return fmt.Errorf("--artist (-a) is required")
	}
	if strings.TrimSpace(flagInstructions) == "" && flagMedia == "" {
		return fmt.Errorf("either --instructions (-i) or --media (-f) is required")
	}

	p, err := a.Store.Get(ctx, flagArtist)
	if err != nil {
		return err
	}

	var asset *media.Asset
	if flagMedia != "" {
		asset, err = media.StageFile(flagMedia)
		if err != nil {
			return err
		}
	}

	if !flagVerbose {
		r := progress.NewStatusLine(os.Stderr)
		a.Writer.SetProgress(r.Handle)
		defer r.Finish()
	}

	res, err := a.Writer.Generate(ctx, copywriter.Request{
		Persona:      *p,
		Instructions: flagInstructions,
		Media:        asset,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.Text)
	return nil
}
