package swissvotes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// brochureBaseLangs are the language codes that can appear in a brochure
// filename on the source site. URL rewriting probes them in this order.
var brochureBaseLangs = [3]string{"de", "fr", "it"}

// resolveBrochureURL derives the URL of a brochure's lang variant from the
// URL of any other variant by rewriting the brochure-<lang>.pdf suffix. URLs
// that carry no recognizable suffix are returned unchanged.
func resolveBrochureURL(pdfURL, lang string) string {
	for _, base := range brochureBaseLangs {
		needle := "brochure-" + base + ".pdf"
		if strings.Contains(pdfURL, needle) {
			return strings.ReplaceAll(pdfURL, needle, "brochure-"+lang+".pdf")
		}
	}
	return pdfURL
}

// ExtractBrochureText downloads the official voting brochure in every
// configured language and returns the extracted text keyed by language code.
// Languages whose variant cannot be downloaded or yields no text are left
// out; one bad variant never blocks the others.
func (s *Scraper) ExtractBrochureText(ctx context.Context, pdfURL string) map[string]string {
	texts := make(map[string]string)

	for _, lang := range s.cfg.Languages {
		langURL := resolveBrochureURL(pdfURL, lang)

		res, err := s.pdfs.R().SetContext(ctx).Get(langURL)
		if err != nil {
			s.logger.Warn("Failed to download brochure",
				slog.String("lang", lang),
				slog.String("url", langURL),
				slog.Any("error", err))
			continue
		}
		if res.StatusCode() != http.StatusOK {
			s.logger.Warn("Failed to download brochure",
				slog.String("lang", lang),
				slog.String("url", langURL),
				slog.Int("status", res.StatusCode()))
			continue
		}

		text, err := s.extractPDFText(res.Body())
		if err != nil {
			s.logger.Warn("Failed to extract brochure text",
				slog.String("lang", lang),
				slog.String("url", langURL),
				slog.Any("error", err))
			continue
		}

		texts[lang] = text
		s.logger.Debug("Extracted brochure text",
			slog.String("lang", lang),
			slog.Int("characters", len(text)))
	}

	return texts
}

// extractPDFText pulls the text layer out of a PDF held in memory. Pages
// that fail to render are skipped so a single corrupt page does not lose the
// rest of the document.
func (s *Scraper) extractPDFText(pdfData []byte) (string, error) {
	if len(pdfData) == 0 {
		return "", fmt.Errorf("PDF data is empty")
	}

	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return "", fmt.Errorf("failed to parse PDF document (%d bytes): %w", len(pdfData), err)
	}
	defer func() {
		if err := doc.Close(); err != nil {
			s.logger.Warn("Failed to close PDF document", slog.Any("error", err))
		}
	}()

	pageCount := doc.NumPage()
	var textBuilder strings.Builder
	var extractedPages int

	for i := 0; i < pageCount; i++ {
		text, err := doc.Text(i)
		if err != nil {
			s.logger.Warn("Failed to extract text from page",
				slog.Int("page", i+1),
				slog.Any("error", err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
		extractedPages++
	}

	extractedText := strings.TrimSpace(textBuilder.String())
	if extractedText == "" {
		return "", fmt.Errorf("no text could be extracted from PDF document (%d pages, %d with extractable text)", pageCount, extractedPages)
	}

	return extractedText, nil
}
