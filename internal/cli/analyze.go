package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xeitosa/socialai/internal/artist"
	"github.com/xeitosa/socialai/internal/ingest"
	"github.com/xeitosa/socialai/internal/progress"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Derive a persona from an artist's sample posts",
	Long: `Send sample posts to the model and print a persona draft as JSON.

Samples come from --text and from each --input, which may be a URL, a PDF,
or a text file. Review the draft, then store it with --save or with
"socialai artists create --from-file".`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

var (
	flagAnalyzeInputs   []string
	flagAnalyzeText     string
	flagAnalyzeName     string
	flagAnalyzeLanguage string
	flagAnalyzeID       string
	flagAnalyzeOut      string
	flagAnalyzeSave     bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringArrayVarP(&flagAnalyzeInputs, "input", "i", nil, "Sample source: URL, PDF path, or text file path (repeatable)")
	analyzeCmd.Flags().StringVar(&flagAnalyzeText, "text", "", "Sample posts as text")
	analyzeCmd.Flags().StringVarP(&flagAnalyzeName, "name", "n", "", "Artist name")
	analyzeCmd.Flags().StringVarP(&flagAnalyzeLanguage, "language", "l", string(artist.DefaultLanguage), "Galego, Español, or English")
	analyzeCmd.Flags().StringVar(&flagAnalyzeID, "id", "", "Persona id (default: name in lowercase with underscores)")
	analyzeCmd.Flags().StringVarP(&flagAnalyzeOut, "out", "o", "", "Write the draft to this file instead of stdout")
	analyzeCmd.Flags().BoolVar(&flagAnalyzeSave, "save", false, "Store the draft as a new persona")
	analyzeCmd.MarkFlagRequired("name")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	lang, err := artist.ParseLanguage(flagAnalyzeLanguage)
	if err != nil {
		return err
	}
	if len(flagAnalyzeInputs) == 0 && strings.TrimSpace(flagAnalyzeText) == "" {
		return fmt.Errorf("either --input (-i) or --text is required")
	}

	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := requireWriter(a); err != nil {
		return err
	}

	ctx := cmd.Context()
	samples := flagAnalyzeText
	if len(flagAnalyzeInputs) > 0 {
		text, contents, err := ingest.Samples(ctx, flagAnalyzeInputs...)
		if err != nil {
			return err
		}
		for _, c := range contents {
			a.Log.InfoContext(ctx, "Read samples", "source", c.Source, "type", c.Type.String(), "words", c.WordCount)
		}
		samples = strings.TrimSpace(samples + "\n\n" + text)
	}

	if !flagVerbose {
		r := progress.NewStatusLine(os.Stderr)
		a.Extractor.SetProgress(r.Handle)
		defer r.Finish()
	}

	name := strings.TrimSpace(flagAnalyzeName)
	draft, err := a.Extractor.Extract(ctx, name, samples, lang)
	if err != nil {
		return err
	}

	id := flagAnalyzeID
	if id == "" {
		id = artist.DefaultID(name)
	}
	p := draft.Persona(id, name, lang)

	if flagAnalyzeSave {
		res, err := a.Store.Create(ctx, p)
		if err != nil {
			return err
		}
		printWarnings(cmd, saveWarnings(res))
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved artist %s (%s)\n", p.Name, p.ID)
	}

	if flagAnalyzeOut == "" {
		return writeJSON(cmd, p)
	}
	data, err := json.MarshalIndent(p, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if err := os.WriteFile(flagAnalyzeOut, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Draft written to %s\n", flagAnalyzeOut)
	return nil
}
