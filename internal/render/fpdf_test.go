package render

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/pdf-api/internal/document"
	"github.com/jwalitptl/pdf-api/internal/model/modeltest"
)

func TestFPDF_RendersDocuments(t *testing.T) {
	r := NewFPDF(Options{Creator: "pdf-api test"})

	rx, err := document.BuildPrescription(modeltest.Prescription())
	require.NoError(t, err)
	inv, err := document.BuildInvoice(modeltest.Invoice())
	require.NoError(t, err)

	for _, doc := range []*document.Document{rx, inv.Document} {
		t.Run(string(doc.Kind), func(t *testing.T) {
			out, err := r.Render(context.Background(), doc)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
			assert.True(t, bytes.Contains(out, []byte("%%EOF")))
		})
	}
}

func TestFPDF_Deterministic(t *testing.T) {
	r := NewFPDF(Options{})
	inv, err := document.BuildInvoice(modeltest.Invoice())
	require.NoError(t, err)

	first, err := r.Render(context.Background(), inv.Document)
	require.NoError(t, err)
	second, err := r.Render(context.Background(), inv.Document)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFPDF_LongTableSpansPages(t *testing.T) {
	req := modeltest.Invoice()
	for i := 0; i < 150; i++ {
		req.Items = append(req.Items, modeltest.Item(fmt.Sprintf("Item %d with a description long enough to wrap inside its cell", i), "1", "2.50", "0", "0"))
	}
	inv, err := document.BuildInvoice(req)
	require.NoError(t, err)

	out, err := NewFPDF(Options{PageSize: "Letter"}).Render(context.Background(), inv.Document)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestFPDF_UnsupportedBlock(t *testing.T) {
	doc := &document.Document{
		Title: "broken",
		Sections: []document.Section{{
			Name:   "body",
			Blocks: []document.Block{{Type: "hologram"}},
		}},
	}

	out, err := NewFPDF(Options{}).Render(context.Background(), doc)
	assert.Error(t, err)
	assert.Nil(t, out)
}

func TestFPDF_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFPDF(Options{}).Render(ctx, probeDocument())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFPDF_PingAndEngine(t *testing.T) {
	r := NewFPDF(Options{PageSize: "bogus"})
	assert.NoError(t, r.Ping(context.Background()))

	info := r.Engine()
	assert.Equal(t, "go-pdf/fpdf", info.Name)
	assert.Equal(t, []string{"PDF"}, info.Formats)
	assert.NotEmpty(t, info.Version)
	assert.Equal(t, "A4", r.opts.PageSize)
}
