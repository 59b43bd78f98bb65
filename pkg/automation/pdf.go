package automation

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// inspectPDF validates a downloaded document and returns its page count.
// Files without a .pdf extension are not inspected.
func inspectPDF(path string) (pages int, checked bool, err error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return 0, false, nil
	}
	if err := api.ValidateFile(path, nil); err != nil {
		return 0, true, fmt.Errorf("invalid PDF: %w", err)
	}
	pages, err = api.PageCountFile(path)
	if err != nil {
		return 0, true, fmt.Errorf("count PDF pages: %w", err)
	}
	return pages, true, nil
}
