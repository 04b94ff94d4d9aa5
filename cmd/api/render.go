package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/pdf-api/internal/config"
	"github.com/jwalitptl/pdf-api/internal/document"
	"github.com/jwalitptl/pdf-api/internal/model"
	"github.com/jwalitptl/pdf-api/internal/render"
	"github.com/jwalitptl/pdf-api/internal/service/audit"
	pdfService "github.com/jwalitptl/pdf-api/internal/service/pdf"
	"github.com/jwalitptl/pdf-api/pkg/errors"
	"github.com/jwalitptl/pdf-api/pkg/metrics"
	"github.com/jwalitptl/pdf-api/pkg/validator"
)

type renderOptions struct {
	kind   string
	input  string
	output string
}

// renderCmd renders a single document from a JSON request file without
// starting the server.
func renderCmd(configPath *string) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a prescription or invoice from a JSON request",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			return runRender(cmd, cfg, opts)
		},
	}
	cmd.Flags().StringVar(&opts.kind, "kind", string(document.KindPrescription), "document kind: prescription or invoice")
	cmd.Flags().StringVar(&opts.input, "in", "-", "request JSON file, - for stdin")
	cmd.Flags().StringVar(&opts.output, "out", "", "output file (default: generated filename)")
	return cmd
}

func runRender(cmd *cobra.Command, cfg *config.Config, opts renderOptions) error {
	raw, err := readInput(cmd, opts.input)
	if err != nil {
		return err
	}

	svc := newPDFService(cfg,
		render.NewFPDF(render.Options{PageSize: cfg.PDF.PageSize, Creator: cfg.Name}),
		metrics.New(metricsNamespace, prometheus.NewRegistry()),
		audit.NewService(zerolog.Nop()),
	)
	v := validator.New()

	var res pdfService.Result
	switch document.Kind(opts.kind) {
	case document.KindPrescription:
		var req model.PrescriptionRequest
		if err := decodeRequest(raw, &req, v.Struct); err != nil {
			return err
		}
		res = svc.GeneratePrescription(cmd.Context(), &req)
	case document.KindInvoice:
		var req model.InvoiceRequest
		if err := decodeRequest(raw, &req, v.Struct); err != nil {
			return err
		}
		res = svc.GenerateInvoice(cmd.Context(), &req)
	default:
		return fmt.Errorf("unknown document kind %q", opts.kind)
	}

	out := res.Output()
	if out == nil {
		return errors.New(res.Failure().Kind, res.Failure().Message, nil)
	}

	path := opts.output
	if path == "" {
		path = out.Filename
	}
	if err := os.WriteFile(path, out.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes)\n", path, len(out.Data))
	return nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return raw, nil
}

func decodeRequest(raw []byte, req interface{}, validate func(interface{}) error) error {
	if err := json.Unmarshal(raw, req); err != nil {
		return fmt.Errorf("invalid request JSON: %w", err)
	}
	if err := validate(req); err != nil {
		return errors.Validation(validator.FieldErrors(err), err)
	}
	return nil
}
