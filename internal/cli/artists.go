package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xeitosa/socialai/internal/artist"
)

var artistsCmd = &cobra.Command{
	Use:     "artists",
	Aliases: []string{"artist"},
	Short:   "Manage artist personas",
}

var artistsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List personas",
	Args:  cobra.NoArgs,
	RunE:  runArtistsList,
}

var artistsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a persona as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runArtistsShow,
}

var artistsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a persona from flags or a JSON file",
	Args:  cobra.NoArgs,
	RunE:  runArtistsCreate,
}

var artistsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of a persona; only the flags given are applied",
	Args:  cobra.ExactArgs(1),
	RunE:  runArtistsUpdate,
}

var artistsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a persona",
	Args:  cobra.ExactArgs(1),
	RunE:  runArtistsDelete,
}

var artistsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the persona document to stdout or a file",
	Args:  cobra.NoArgs,
	RunE:  runArtistsExport,
}

var (
	flagPersonaID       string
	flagPersonaName     string
	flagPersonaLanguage string
	flagPersonaAudience string
	flagPersonaPrompt   string
	flagPersonaKeywords string
	flagPersonaExamples string
	flagFromFile        string
	flagExportOut       string
)

func init() {
	rootCmd.AddCommand(artistsCmd)
	artistsCmd.AddCommand(artistsListCmd, artistsShowCmd, artistsCreateCmd, artistsUpdateCmd, artistsDeleteCmd, artistsExportCmd)

	for _, c := range []*cobra.Command{artistsCreateCmd, artistsUpdateCmd} {
		c.Flags().StringVar(&flagPersonaID, "id", "", "Unique id without spaces (default: name in lowercase with underscores)")
		c.Flags().StringVar(&flagPersonaName, "name", "", "Display name")
		c.Flags().StringVar(&flagPersonaLanguage, "language", "", "Galego, Español, or English (default Galego)")
		c.Flags().StringVar(&flagPersonaAudience, "audience", "", "Target audience")
		c.Flags().StringVar(&flagPersonaPrompt, "prompt", "", "Base prompt describing the persona's voice")
		c.Flags().StringVar(&flagPersonaKeywords, "keywords", "", "Comma-separated keywords")
		c.Flags().StringVar(&flagPersonaExamples, "examples", "", "Style examples, one per line")
	}
	artistsCreateCmd.Flags().StringVar(&flagFromFile, "from-file", "", "Read the persona from a JSON file, such as the output of analyze --out")
	artistsExportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Output file (default stdout)")
}

func runArtistsList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	personas, err := a.Store.Load(cmd.Context())
	if err != nil {
		return err
	}
	if len(personas) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No artists configured.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLANGUAGE\tKEYWORDS")
	for _, p := range personas {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", p.ID, p.Name, p.LanguageOrDefault(), len(p.Keywords))
	}
	return w.Flush()
}

func runArtistsShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.Store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return writeJSON(cmd, p)
}

func runArtistsCreate(cmd *cobra.Command, args []string) error {
	var p artist.Persona
	if flagFromFile != "" {
		data, err := os.ReadFile(flagFromFile)
		if err != nil {
			return fmt.Errorf("read persona file: %w", err)
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("parse persona file %s: %w", flagFromFile, err)
		}
	}
	if err := applyPersonaFlags(cmd, &p); err != nil {
		return err
	}
	if p.ID == "" && p.Name != "" {
		p.ID = artist.DefaultID(p.Name)
	}

	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Store.Create(cmd.Context(), p)
	if err != nil {
		return err
	}
	printWarnings(cmd, saveWarnings(res))
	fmt.Fprintf(cmd.OutOrStdout(), "Created artist %s (%s)\n", p.Name, p.ID)
	return nil
}

func runArtistsUpdate(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.Store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := applyPersonaFlags(cmd, p); err != nil {
		return err
	}

	res, err := a.Store.Update(cmd.Context(), args[0], *p)
	if err != nil {
		return err
	}
	printWarnings(cmd, saveWarnings(res))
	fmt.Fprintf(cmd.OutOrStdout(), "Updated artist %s (%s)\n", p.Name, p.ID)
	return nil
}

func runArtistsDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Store.Delete(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printWarnings(cmd, saveWarnings(res))
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted artist %s\n", args[0])
	return nil
}

func runArtistsExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := a.Store.Export(cmd.Context())
	if err != nil {
		return err
	}
	if flagExportOut == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(flagExportOut, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", flagExportOut)
	return nil
}

// applyPersonaFlags copies the persona flags the user set onto p.
func applyPersonaFlags(cmd *cobra.Command, p *artist.Persona) error {
	flags := cmd.Flags()
	if flags.Changed("id") {
		p.ID = flagPersonaID
	}
	if flags.Changed("name") {
		p.Name = flagPersonaName
	}
	if flags.Changed("language") {
		lang, err := artist.ParseLanguage(flagPersonaLanguage)
		if err != nil {
			return err
		}
		p.Language = lang
	}
	if flags.Changed("audience") {
		p.TargetAudience = flagPersonaAudience
	}
	if flags.Changed("prompt") {
		p.BasePrompt = flagPersonaPrompt
	}
	if flags.Changed("keywords") {
		p.Keywords = artist.ParseKeywords(flagPersonaKeywords)
	}
	if flags.Changed("examples") {
		p.FewShotExamples = artist.ParseExamples(flagPersonaExamples)
	}
	return nil
}

func saveWarnings(res *artist.SaveResult) []string {
	if !res.HasWarnings() {
		return nil
	}
	out := make([]string, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		out = append(out, w.Error())
	}
	return out
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}
