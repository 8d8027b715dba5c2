package web

import (
	"errors"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/xeitosa/socialai/internal/artist"
	"github.com/xeitosa/socialai/internal/backup"
	"github.com/xeitosa/socialai/internal/copywriter"
	"github.com/xeitosa/socialai/internal/history"
	"github.com/xeitosa/socialai/internal/media"
)

const (
	msgNoAPIKey       = "Non se atopou a API key do modelo nas variables de entorno. Por favor, revisa o teu ficheiro .env."
	msgNeedAPIKey     = "Necesitas configurar a API key do modelo para usar esta función."
	msgEmptyRequest   = "Por favor, escribe instrucións ou sube un ficheiro."
	msgNameRequired   = "O nome e o ID son obrigatorios."
	msgSMTPIncomplete = "Configuración SMTP incompleta. Non se enviou backup por email."
	msgSMTPAuth       = "Erro de Autenticación SMTP (535). Se usas Gmail, asegúrate de usar un 'Contrasinal de Aplicación' e non o teu contrasinal normal. Activa a verificación en 2 pasos e xera un en: https://myaccount.google.com/apppasswords"
	msgAnalysisDone   = "Análise completada! Revisa os datos abaixo e garda o perfil."
	msgAnalysisError  = "Non se puido realizar a análise."
)

// base carries what the layout renders on every page.
type base struct {
	Title    string
	Active   string
	Notice   string
	Warnings []string
	Error    string
}

func baseFrom(c echo.Context, title, active string) base {
	q := c.QueryParams()
	return base{
		Title:    title,
		Active:   active,
		Notice:   q.Get("notice"),
		Warnings: q["warn"],
	}
}

type generatePage struct {
	base
	Fatal        string
	Personas     []artist.Persona
	Selected     *artist.Persona
	Instructions string
	MediaEnabled bool
	Model        string
	Accept       string
	Result       *copywriter.Result
}

type artistsPage struct {
	base
	Tab           string
	Personas      []artist.Persona
	Edit          *personaForm
	Create        personaForm
	AI            aiForm
	AIUnavailable string
	Draft         *personaForm
}

func (artistsPage) Languages() []artist.Language { return artist.Languages }

type historyPage struct {
	base
	Records []history.Record
}

// personaForm is a persona in its editable text form.
type personaForm struct {
	OriginalID     string
	ID             string
	Name           string
	Language       string
	TargetAudience string
	BasePrompt     string
	Keywords       string
	Examples       string
}

func (personaForm) Languages() []artist.Language { return artist.Languages }

func formFromPersona(p artist.Persona) personaForm {
	return personaForm{
		OriginalID:     p.ID,
		ID:             p.ID,
		Name:           p.Name,
		Language:       string(p.LanguageOrDefault()),
		TargetAudience: p.TargetAudience,
		BasePrompt:     p.BasePrompt,
		Keywords:       artist.JoinKeywords(p.Keywords),
		Examples:       artist.JoinExamples(p.FewShotExamples),
	}
}

func bindPersonaForm(c echo.Context) personaForm {
	return personaForm{
		ID:             c.FormValue("id"),
		Name:           c.FormValue("name"),
		Language:       c.FormValue("language"),
		TargetAudience: c.FormValue("target_audience"),
		BasePrompt:     c.FormValue("base_prompt"),
		Keywords:       c.FormValue("keywords"),
		Examples:       c.FormValue("few_shot_examples"),
	}
}

func (f personaForm) persona() artist.Persona {
	return artist.Persona{
		ID:              strings.TrimSpace(f.ID),
		Name:            strings.TrimSpace(f.Name),
		Language:        artist.Language(f.Language),
		TargetAudience:  f.TargetAudience,
		BasePrompt:      f.BasePrompt,
		Keywords:        artist.ParseKeywords(f.Keywords),
		FewShotExamples: artist.ParseExamples(f.Examples),
	}
}

type aiForm struct {
	Name     string
	Language string
	Samples  string
}

// redirectURL builds a post-redirect-get target carrying the flash messages.
func redirectURL(path string, q url.Values, notice string, res *artist.SaveResult) string {
	if q == nil {
		q = url.Values{}
	}
	if notice != "" {
		q.Set("notice", notice)
	}
	for _, w := range saveWarnings(res) {
		q.Add("warn", w)
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// saveWarnings turns backup hook failures into operator-facing messages.
func saveWarnings(res *artist.SaveResult) []string {
	if !res.HasWarnings() {
		return nil
	}
	out := make([]string, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		switch {
		case errors.Is(w, backup.ErrNotConfigured):
			out = append(out, msgSMTPIncomplete)
		case errors.Is(w, backup.ErrAuth):
			out = append(out, msgSMTPAuth)
		default:
			out = append(out, "Erro ao enviar backup ("+w.Hook+"): "+w.Err.Error())
		}
	}
	return out
}

// userError renders an error for the page.
func userError(err error) string {
	switch {
	case errors.Is(err, copywriter.ErrEmptyRequest):
		return msgEmptyRequest
	case errors.Is(err, media.ErrUnsupportedType):
		return "Tipo de ficheiro non admitido: " + err.Error()
	}
	return err.Error()
}

func acceptList() string {
	exts := make([]string, len(media.Extensions))
	for i, e := range media.Extensions {
		exts[i] = "." + e
	}
	return strings.Join(exts, ",")
}
