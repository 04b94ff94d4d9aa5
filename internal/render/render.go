// Package render turns assembled documents into PDF bytes.
package render

import (
	"context"
	"errors"
	"runtime/debug"

	"github.com/jwalitptl/pdf-api/internal/document"
)

// ErrEngineUnavailable is returned when the engine cannot produce output.
var ErrEngineUnavailable = errors.New("rendering engine unavailable")

// Renderer converts a document model into PDF bytes. Implementations must be
// deterministic for identical input and keep no state between calls.
type Renderer interface {
	Render(ctx context.Context, doc *document.Document) ([]byte, error)
	Engine() EngineInfo
	Ping(ctx context.Context) error
}

// EngineInfo describes the rendering engine.
type EngineInfo struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Formats []string `json:"supported_formats"`
}

// moduleVersion reports the version of a dependency from the build info.
func moduleVersion(path string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, dep := range info.Deps {
		if dep.Path != path {
			continue
		}
		if dep.Replace != nil {
			return dep.Replace.Version
		}
		return dep.Version
	}
	return "unknown"
}

func probeDocument() *document.Document {
	return &document.Document{
		Kind:     "probe",
		Title:    "probe",
		Filename: "probe.pdf",
		Sections: []document.Section{{
			Name:   "probe",
			Blocks: []document.Block{{Type: document.BlockParagraph, Text: "ok"}},
		}},
	}
}
