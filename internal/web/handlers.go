package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/xeitosa/socialai/internal/artist"
	"github.com/xeitosa/socialai/internal/copywriter"
	"github.com/xeitosa/socialai/internal/history"
	"github.com/xeitosa/socialai/internal/media"
)

// loadPersonas returns the stored personas. A malformed document is shown on
// the page rather than failing the request.
func (s *Server) loadPersonas(ctx context.Context) ([]artist.Persona, string, error) {
	personas, err := s.app.Store.Load(ctx)
	var docErr *artist.DocumentError
	if errors.As(err, &docErr) {
		return personas, "Erro ao cargar a configuración: " + docErr.Error(), nil
	}
	if err != nil {
		return nil, "", err
	}
	return personas, "", nil
}

func findPersona(personas []artist.Persona, id string) *artist.Persona {
	for i := range personas {
		if personas[i].ID == id {
			return &personas[i]
		}
	}
	return nil
}

func (s *Server) newGeneratePage(c echo.Context) (*generatePage, error) {
	personas, loadErr, err := s.loadPersonas(c.Request().Context())
	if err != nil {
		return nil, err
	}
	page := &generatePage{
		base:     baseFrom(c, "Xerar Copy", "generate"),
		Personas: personas,
		Accept:   acceptList(),
	}
	page.Error = loadErr

	if s.app.Writer == nil {
		page.Fatal = msgNoAPIKey
		if s.app.ProviderErr != nil {
			page.Fatal += " (" + s.app.ProviderErr.Error() + ")"
		}
		return page, nil
	}
	page.Model = s.app.Writer.Model()
	page.MediaEnabled = s.app.Writer.AcceptsMedia()
	return page, nil
}

func (s *Server) handleGeneratePage(c echo.Context) error {
	page, err := s.newGeneratePage(c)
	if err != nil {
		return err
	}
	page.Selected = findPersona(page.Personas, c.QueryParam("artist"))
	if page.Selected == nil && len(page.Personas) > 0 {
		page.Selected = &page.Personas[0]
	}
	return c.Render(http.StatusOK, "generate", page)
}

func (s *Server) handleGenerate(c echo.Context) error {
	page, err := s.newGeneratePage(c)
	if err != nil {
		return err
	}
	if page.Fatal != "" {
		return c.Render(http.StatusServiceUnavailable, "generate", page)
	}

	page.Instructions = c.FormValue("instructions")
	page.Selected = findPersona(page.Personas, c.FormValue("artist"))
	if page.Selected == nil {
		page.Error = "Selecciona un perfil de artista."
		return c.Render(http.StatusUnprocessableEntity, "generate", page)
	}

	asset, err := stageUpload(c)
	if err != nil {
		page.Error = userError(err)
		return c.Render(http.StatusUnprocessableEntity, "generate", page)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), generateTimeout)
	defer cancel()

	res, err := s.app.Writer.Generate(ctx, copywriter.Request{
		Persona:      *page.Selected,
		Instructions: page.Instructions,
		Media:        asset,
	})
	switch {
	case errors.Is(err, copywriter.ErrEmptyRequest):
		page.Warnings = append(page.Warnings, msgEmptyRequest)
		return c.Render(http.StatusUnprocessableEntity, "generate", page)
	case err != nil:
		page.Error = "Ocorreu un erro: " + err.Error()
		return c.Render(http.StatusBadGateway, "generate", page)
	}
	page.Result = res
	return c.Render(http.StatusOK, "generate", page)
}

// stageUpload copies the optional "media" upload to a temp file. A missing
// or empty upload yields a nil asset.
func stageUpload(c echo.Context) (*media.Asset, error) {
	fh, err := c.FormFile("media")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if fh.Filename == "" || fh.Size == 0 {
		return nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return media.Stage(fh.Filename, fh.Header.Get(echo.HeaderContentType), f)
}

func (s *Server) newArtistsPage(c echo.Context, tab string) (*artistsPage, error) {
	personas, loadErr, err := s.loadPersonas(c.Request().Context())
	if err != nil {
		return nil, err
	}
	switch tab {
	case "edit", "create", "ai":
	default:
		tab = "edit"
	}
	page := &artistsPage{
		base:     baseFrom(c, "Xestión de Artistas", "artists"),
		Tab:      tab,
		Personas: personas,
		Create:   personaForm{Language: string(artist.DefaultLanguage)},
		AI:       aiForm{Language: string(artist.DefaultLanguage)},
	}
	page.Error = loadErr
	if s.app.Extractor == nil {
		page.AIUnavailable = msgNeedAPIKey
	}
	return page, nil
}

// selectForEdit fills the edit form with the persona id, or the first one.
func (p *artistsPage) selectForEdit(id string) {
	sel := findPersona(p.Personas, id)
	if sel == nil && len(p.Personas) > 0 {
		sel = &p.Personas[0]
	}
	if sel != nil {
		f := formFromPersona(*sel)
		p.Edit = &f
	}
}

func (s *Server) handleArtistsPage(c echo.Context) error {
	page, err := s.newArtistsPage(c, c.QueryParam("tab"))
	if err != nil {
		return err
	}
	page.selectForEdit(c.QueryParam("id"))
	return c.Render(http.StatusOK, "artists", page)
}

func (s *Server) handleCreateArtist(c echo.Context) error {
	fromAI := c.FormValue("from") == "ai"
	tab := "create"
	if fromAI {
		tab = "ai"
	}
	page, err := s.newArtistsPage(c, tab)
	if err != nil {
		return err
	}

	form := bindPersonaForm(c)
	reject := func(status int, msg string) error {
		page.Error = msg
		if fromAI {
			page.Draft = &form
		} else {
			page.Create = form
		}
		return c.Render(status, "artists", page)
	}

	if strings.TrimSpace(form.Name) == "" || strings.TrimSpace(form.ID) == "" {
		return reject(http.StatusUnprocessableEntity, msgNameRequired)
	}
	p := form.persona()
	res, err := s.app.Store.Create(c.Request().Context(), p)
	if status, ok := mutationStatus(err); ok {
		return reject(status, userError(err))
	}
	if err != nil {
		return err
	}

	notice := fmt.Sprintf("Artista %s creado correctamente!", p.Name)
	if fromAI {
		notice = fmt.Sprintf("Perfil de %s gardado!", p.Name)
	}
	q := url.Values{"tab": {"edit"}, "id": {p.ID}}
	return c.Redirect(http.StatusSeeOther, redirectURL("/artists", q, notice, res))
}

func (s *Server) handleUpdateArtist(c echo.Context) error {
	page, err := s.newArtistsPage(c, "edit")
	if err != nil {
		return err
	}

	form := bindPersonaForm(c)
	form.OriginalID = c.Param("id")
	if strings.TrimSpace(form.Name) == "" || strings.TrimSpace(form.ID) == "" {
		page.Error = msgNameRequired
		page.Edit = &form
		return c.Render(http.StatusUnprocessableEntity, "artists", page)
	}

	p := form.persona()
	res, err := s.app.Store.Update(c.Request().Context(), form.OriginalID, p)
	if status, ok := mutationStatus(err); ok {
		page.Error = userError(err)
		page.Edit = &form
		if status == http.StatusNotFound {
			page.selectForEdit("")
		}
		return c.Render(status, "artists", page)
	}
	if err != nil {
		return err
	}

	q := url.Values{"tab": {"edit"}, "id": {p.ID}}
	return c.Redirect(http.StatusSeeOther, redirectURL("/artists", q, fmt.Sprintf("Artista %s gardado.", p.Name), res))
}

func (s *Server) handleDeleteArtist(c echo.Context) error {
	id := c.Param("id")
	res, err := s.app.Store.Delete(c.Request().Context(), id)
	if status, ok := mutationStatus(err); ok {
		page, perr := s.newArtistsPage(c, "edit")
		if perr != nil {
			return perr
		}
		page.Error = userError(err)
		page.selectForEdit("")
		return c.Render(status, "artists", page)
	}
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, redirectURL("/artists", nil, "Artista eliminado.", res))
}

// mutationStatus maps store errors the operator can fix to a status code.
func mutationStatus(err error) (int, bool) {
	var docErr *artist.DocumentError
	switch {
	case err == nil:
		return 0, false
	case errors.Is(err, artist.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, artist.ErrValidation), errors.Is(err, artist.ErrDuplicateID):
		return http.StatusUnprocessableEntity, true
	case errors.As(err, &docErr):
		return http.StatusConflict, true
	}
	return 0, false
}

func (s *Server) handleAnalyze(c echo.Context) error {
	page, err := s.newArtistsPage(c, "ai")
	if err != nil {
		return err
	}
	page.AI = aiForm{
		Name:     c.FormValue("name"),
		Language: c.FormValue("language"),
		Samples:  c.FormValue("samples"),
	}
	if page.AIUnavailable != "" {
		return c.Render(http.StatusServiceUnavailable, "artists", page)
	}

	lang, err := artist.ParseLanguage(page.AI.Language)
	if err != nil {
		page.Error = userError(err)
		return c.Render(http.StatusUnprocessableEntity, "artists", page)
	}
	name := strings.TrimSpace(page.AI.Name)
	if name == "" || strings.TrimSpace(page.AI.Samples) == "" {
		page.Error = "Indica o nome do artista e pega algúns textos de exemplo."
		return c.Render(http.StatusUnprocessableEntity, "artists", page)
	}

	draft, err := s.app.Extractor.Extract(c.Request().Context(), name, page.AI.Samples, lang)
	if err != nil {
		page.Error = msgAnalysisError + " (" + err.Error() + ")"
		return c.Render(http.StatusBadGateway, "artists", page)
	}

	form := formFromPersona(draft.Persona(artist.DefaultID(name), name, lang))
	form.OriginalID = ""
	page.Draft = &form
	page.Notice = msgAnalysisDone
	return c.Render(http.StatusOK, "artists", page)
}

func (s *Server) handleExport(c echo.Context) error {
	data, err := s.app.Store.Export(c.Request().Context())
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="artist-config.json"`)
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, data)
}

func (s *Server) handleHistory(c echo.Context) error {
	records, err := s.app.History.Recent(c.Request().Context(), history.DefaultLimit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	return c.Render(http.StatusOK, "history", &historyPage{
		base:    baseFrom(c, "Historial", "history"),
		Records: records,
	})
}
