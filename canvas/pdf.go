package canvas

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders a snapshot blob onto a single landscape A4 page. The
// snapshot keeps its aspect ratio within the page margins.
func WritePDF(w io.Writer, snap Snapshot) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("surface", opts, bytes.NewReader(snap))
	pageW, _ := pdf.GetPageSize()
	pdf.ImageOptions("surface", 10, 10, pageW-20, 0, false, opts, 0, "")
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
