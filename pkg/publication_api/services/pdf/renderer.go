package pdf

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/listtypes"
)

// MaxPDFBytes flags (but does not reject) oversize output; the caller
// decides whether to suppress the attachment.
const MaxPDFBytes = 2 << 20

// RenderContext carries the header fields printed on the first page.
type RenderContext struct {
	LocationName string
	ListTypeName string
	ContentDate  time.Time
	Language     string
}

// Result reports the outcome of one render. On failure Error is set and
// everything else is zero; rendering failures never propagate as errors
// because ingestion must continue without the PDF.
type Result struct {
	PDFPath        string `json:"pdfPath,omitempty"`
	SizeBytes      int64  `json:"sizeBytes,omitempty"`
	ExceedsMaxSize bool   `json:"exceedsMaxSize,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Renderer writes paginated PDFs for the civil and family daily cause
// list. Every other list type is a no-op.
type Renderer struct {
	tempRoot string
}

func NewRenderer(tempRoot string) *Renderer {
	return &Renderer{tempRoot: tempRoot}
}

// Render produces the PDF for an artefact. A non-cause-list list type
// returns an empty Result.
func (r *Renderer) Render(artefactID string, listType *listtypes.ListType, payload []byte, rc RenderContext) Result {
	if listType == nil || listType.Name != listtypes.CivilAndFamilyDailyCauseList {
		return Result{}
	}

	path, size, err := r.renderSafe(artefactID, payload, rc)
	if err != nil {
		return Result{Error: normaliseError(err)}
	}

	res := Result{PDFPath: path, SizeBytes: size}
	if size > MaxPDFBytes {
		res.ExceedsMaxSize = true
		log.Printf("[pdf] artefact=%s output %d bytes exceeds cap", artefactID, size)
	}
	return res
}

// renderSafe converts panics out of the PDF library into the normalized
// unknown-error result; ingestion records the failure and carries on.
func (r *Renderer) renderSafe(artefactID string, payload []byte, rc RenderContext) (path string, size int64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[pdf] artefact=%s render panic: %v", artefactID, rec)
			path, size = "", 0
			if e, ok := rec.(error); ok {
				err = e
			} else {
				err = errUnknown
			}
		}
	}()
	return r.write(artefactID, payload, rc)
}

func (r *Renderer) write(artefactID string, payload []byte, rc RenderContext) (string, int64, error) {
	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return "", 0, fmt.Errorf("payload is not a JSON object: %w", err)
	}

	if err := os.MkdirAll(r.tempRoot, 0o755); err != nil {
		return "", 0, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, rc.ListTypeName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, rc.LocationName, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, rc.ContentDate.Format("2 January 2006"), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	writeValue(pdf, "", doc, 0)

	path := filepath.Join(r.tempRoot, artefactID+".pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", 0, err
	}
	return path, info.Size(), nil
}

// writeValue flattens the hearing list into labelled lines. The cause list
// payload is a tree of courtLists/sessions/hearings; a generic walk keeps
// the renderer independent of any one schema revision.
func writeValue(pdf *fpdf.Fpdf, key string, value any, depth int) {
	if depth > 12 {
		return
	}
	indent := float64(depth * 4)

	switch v := value.(type) {
	case map[string]any:
		if key != "" {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.SetX(pdf.GetX() + indent)
			pdf.CellFormat(0, 6, key, "", 1, "L", false, 0, "")
		}
		for _, k := range sortedKeys(v) {
			writeValue(pdf, k, v[k], depth+1)
		}
	case []any:
		for _, item := range v {
			writeValue(pdf, key, item, depth+1)
		}
	case string:
		if v == "" {
			return
		}
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetX(pdf.GetX() + indent)
		pdf.MultiCell(0, 5, fmt.Sprintf("%s: %s", key, v), "", "L", false)
	case float64:
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetX(pdf.GetX() + indent)
		pdf.CellFormat(0, 5, fmt.Sprintf("%s: %v", key, v), "", 1, "L", false, 0, "")
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var errUnknown = errors.New("Unknown error")

func normaliseError(err error) string {
	if err == nil {
		return "Failed to generate PDF: Unknown error"
	}
	return "Failed to generate PDF: " + err.Error()
}
