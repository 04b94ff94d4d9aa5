package pdf

import (
	"context"
	"fmt"

	"github.com/jwalitptl/pdf-api/internal/document"
	"github.com/jwalitptl/pdf-api/internal/render"
	"github.com/jwalitptl/pdf-api/pkg/errors"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// TemplateInfo describes one document kind.
type TemplateInfo struct {
	Name        document.Kind `json:"name"`
	Description string        `json:"description"`
	Sections    []string      `json:"sections"`
}

// TemplatesInfo lists the available document kinds.
type TemplatesInfo struct {
	AvailableTemplates []document.Kind   `json:"available_templates"`
	Templates          []TemplateInfo    `json:"templates"`
	Engine             render.EngineInfo `json:"engine"`
	Features           []string          `json:"features"`
}

// Health reports the state of the rendering pipeline.
type Health struct {
	Status    string            `json:"status"`
	Engine    render.EngineInfo `json:"engine"`
	Breaker   string            `json:"circuit_breaker"`
	Templates []document.Kind   `json:"templates"`
	Message   string            `json:"message,omitempty"`
}

var descriptions = map[document.Kind]string{
	document.KindPrescription: "Medical prescription with doctor, patient and medication details",
	document.KindInvoice:      "Invoice with line items, discounts, taxes and payment information",
}

func (s *Service) Templates() TemplatesInfo {
	info := TemplatesInfo{
		AvailableTemplates: document.Kinds,
		Engine:             s.renderer.Engine(),
		Features: []string{
			"Exact decimal arithmetic",
			"Automatic invoice totals",
			"Multi-page tables with repeated headers",
			"Base64 or binary download",
		},
	}
	for _, kind := range document.Kinds {
		sections := document.PrescriptionSections
		if kind == document.KindInvoice {
			sections = document.InvoiceSections
		}
		info.Templates = append(info.Templates, TemplateInfo{
			Name:        kind,
			Description: descriptions[kind],
			Sections:    sections,
		})
	}
	return info
}

// Health probes the renderer. The returned error is an AppError of kind
// unavailable whenever the status is unhealthy.
func (s *Service) Health(ctx context.Context) (Health, error) {
	h := Health{
		Status:    StatusHealthy,
		Engine:    s.renderer.Engine(),
		Breaker:   s.breaker.State(),
		Templates: document.Kinds,
	}

	if s.breaker.Open() {
		h.Status = StatusUnhealthy
		h.Message = "rendering engine circuit breaker is open"
		return h, errors.New(errors.KindUnavailable, h.Message, render.ErrEngineUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ProbeTimeout)
	defer cancel()
	if err := s.renderer.Ping(ctx); err != nil {
		h.Status = StatusUnhealthy
		h.Message = fmt.Sprintf("rendering engine unavailable: %v", err)
		return h, errors.New(errors.KindUnavailable, h.Message, err)
	}
	return h, nil
}
