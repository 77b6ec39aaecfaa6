// Package render turns a parsed newsletter document into the final HTML
// email body using Liquid templates.
package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/osteele/liquid"

	"github.com/atrapalo/newslettergen/internal/newsletter"
)

// MasterTemplate is the default template file name inside the template dir.
const MasterTemplate = "newsletter_master.liquid"

// Engine renders newsletter documents with a Liquid engine extended with
// the domain filters. Parsed templates are cached per path; the cache key
// never involves request data.
type Engine struct {
	engine      *liquid.Engine
	templateDir string
	cache       sync.Map // map[string]*liquid.Template
}

// NewEngine creates a render engine reading templates from dir.
func NewEngine(dir string) *Engine {
	e := &Engine{
		engine:      liquid.NewEngine(),
		templateDir: dir,
	}
	e.registerFilters()
	return e
}

// Render renders the master newsletter template with the document.
func (e *Engine) Render(doc *newsletter.Document) (string, error) {
	return e.RenderTemplate(MasterTemplate, doc)
}

// RenderTemplate renders a named template file with the document.
func (e *Engine) RenderTemplate(name string, doc *newsletter.Document) (string, error) {
	tpl, err := e.load(name)
	if err != nil {
		return "", err
	}

	ctx, err := bindings(doc)
	if err != nil {
		return "", err
	}

	out, err := tpl.RenderString(ctx)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return out, nil
}

// RenderString parses and renders an inline template, used by the preview
// endpoint where the template body comes with the request.
func (e *Engine) RenderString(templateStr string, doc *newsletter.Document) (string, error) {
	ctx, err := bindings(doc)
	if err != nil {
		return "", err
	}
	out, err := e.engine.ParseAndRenderString(templateStr, ctx)
	if err != nil {
		return "", fmt.Errorf("rendering inline template: %w", err)
	}
	return out, nil
}

func (e *Engine) load(name string) (*liquid.Template, error) {
	path := filepath.Join(e.templateDir, name)
	if cached, ok := e.cache.Load(path); ok {
		return cached.(*liquid.Template), nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", path, err)
	}
	tpl, err := e.engine.ParseString(string(src))
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", path, err)
	}
	e.cache.Store(path, tpl)
	return tpl, nil
}

// ClearCache drops all parsed templates, forcing a re-read from disk.
func (e *Engine) ClearCache() {
	e.cache = sync.Map{}
}

// bindings exposes the document to Liquid as plain maps/slices under the
// "newsletter" variable, so templates address fields by their JSON names.
func bindings(doc *newsletter.Document) (map[string]interface{}, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling document: %w", err)
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshaling document: %w", err)
	}
	return map[string]interface{}{"newsletter": data}, nil
}
