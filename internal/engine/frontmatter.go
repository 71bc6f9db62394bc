package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/nmaxcom/smartpad-go/internal/units"
)

// SheetMeta is the optional YAML front matter at the top of a sheet,
// mirroring per-document settings an editor would persist.
type SheetMeta struct {
	DecimalPlaces     *int              `yaml:"decimalPlaces"`
	GroupThousands    *bool             `yaml:"groupThousands"`
	DateLocale        string            `yaml:"dateLocale"`
	DateDisplayFormat string            `yaml:"dateDisplayFormat"`
	ListMaxLength     *int              `yaml:"listMaxLength"`
	Aliases           map[string]string `yaml:"aliases"`
}

// ExtractFrontMatter splits a sheet into its YAML front matter (between
// leading "---" fences) and the calculation body. No fence means no meta.
func ExtractFrontMatter(text string) (*SheetMeta, string, error) {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return nil, text, nil
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			block := strings.Join(lines[1:i], "\n")
			var meta SheetMeta
			if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
				return nil, "", fmt.Errorf("sheet front matter: %w", err)
			}
			return &meta, strings.Join(lines[i+1:], "\n"), nil
		}
	}
	// An unclosed fence is calculation text, not metadata.
	return nil, text, nil
}

// applyMeta folds front-matter settings into the engine's formatter,
// context, and unit registry.
func (e *Engine) applyMeta(meta *SheetMeta) error {
	if meta.DecimalPlaces != nil {
		e.ctx.Fmt.Opts.DecimalPlaces = *meta.DecimalPlaces
	}
	if meta.GroupThousands != nil {
		e.ctx.Fmt.Opts.GroupThousands = *meta.GroupThousands
	}
	if meta.DateLocale != "" {
		e.ctx.Fmt.Opts.DateLocale = meta.DateLocale
		e.ctx.DateLocale = meta.DateLocale
	}
	if meta.DateDisplayFormat != "" {
		e.ctx.Fmt.Opts.DateDisplayFormat = meta.DateDisplayFormat
	}
	if meta.ListMaxLength != nil {
		e.ctx.ListMaxLength = *meta.ListMaxLength
	}
	for name, def := range meta.Aliases {
		if err := e.defineMetaAlias(name, def); err != nil {
			return err
		}
	}
	return nil
}

// defineMetaAlias parses an alias definition of the form "40 h" or "12"
// from front matter and registers it.
func (e *Engine) defineMetaAlias(name, def string) error {
	fields := strings.Fields(strings.TrimSpace(def))
	if len(fields) == 0 {
		return fmt.Errorf("alias %q: empty definition", name)
	}
	factor, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return fmt.Errorf("alias %q: %w", name, err)
	}
	if len(fields) == 1 {
		return e.reg.DefineAlias(name, factor, units.Composite{})
	}
	composite, err := units.ParseComposite(strings.Join(fields[1:], " "))
	if err != nil {
		return fmt.Errorf("alias %q: %w", name, err)
	}
	return e.reg.DefineAlias(name, factor, composite)
}
