// Package analytics renders the optional Plausible script tag for the
// catalog page.
package analytics

import (
	"html/template"
	"slices"
	"strings"

	"github.com/mrlokans/librarydesk/internal/config"
	"github.com/mrlokans/librarydesk/internal/logger"
)

// ValidExtensions lists the known Plausible script extensions
var ValidExtensions = []string{
	"outbound-links",
	"file-downloads",
	"tagged-events",
	"hash",
	"compat",
	"local",
	"manual",
	"pageview-props",
	"revenue",
}

// Plausible is the effective tracker configuration.
type Plausible struct {
	Domain     string
	ScriptURL  string
	Extensions []string
}

// FromConfig reads the PLAUSIBLE_* settings. Unknown extensions are logged
// and skipped.
func FromConfig(cfg config.Analytics) Plausible {
	p := Plausible{
		Domain:    strings.TrimSpace(cfg.PlausibleDomain),
		ScriptURL: cfg.PlausibleScriptURL,
	}
	if p.ScriptURL == "" {
		p.ScriptURL = config.DefaultPlausibleScriptURL
	}

	for _, ext := range ParseExtensions(cfg.PlausibleExtensions) {
		if !IsValidExtension(ext) {
			logger.WithComponent("analytics").WithField("extension", ext).Warn("Ignoring unknown Plausible extension")
			continue
		}
		p.Extensions = append(p.Extensions, ext)
	}
	return p
}

// Enabled reports whether a tracking domain is set.
func (p Plausible) Enabled() bool {
	return p.Domain != ""
}

// ScriptTag returns the script element, or an empty string when disabled.
func (p Plausible) ScriptTag() template.HTML {
	if !p.Enabled() {
		return ""
	}
	src := BuildScriptURL(p.ScriptURL, p.Extensions)
	return template.HTML(`<script defer data-domain="` + template.HTMLEscapeString(p.Domain) + `" src="` + template.HTMLEscapeString(src) + `"></script>`)
}

// BuildScriptURL inserts extensions before the .js suffix:
// script.js becomes script.outbound-links.hash.js.
func BuildScriptURL(baseURL string, extensions []string) string {
	if len(extensions) == 0 {
		return baseURL
	}
	if base, found := strings.CutSuffix(baseURL, ".js"); found {
		return base + "." + strings.Join(extensions, ".") + ".js"
	}
	return baseURL
}

// ParseExtensions splits a comma-separated list and drops blanks.
func ParseExtensions(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func IsValidExtension(ext string) bool {
	return slices.Contains(ValidExtensions, ext)
}
