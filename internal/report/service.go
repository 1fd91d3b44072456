package report

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"github.com/signintech/gopdf"
)

// defaultFontPaths are the usual DejaVuSans locations across base images.
var defaultFontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

// Service renders referral letters to PDF.
type Service struct {
	fontPaths []string
}

func NewService(fontPaths ...string) *Service {
	if len(fontPaths) == 0 {
		fontPaths = defaultFontPaths
	}
	return &Service{fontPaths: fontPaths}
}

// Render lays the letter out on an A4 page and returns the PDF bytes.
func (s *Service) Render(letter Letter) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	var fontErr error
	fontLoaded := false
	for _, path := range s.fontPaths {
		if err := pdf.AddTTFFont("DejaVu", path); err == nil {
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return nil, errors.Wrap(fontErr, "failed to load a TTF font for the letter")
	}

	if err := pdf.SetFont("DejaVu", "", 20); err != nil {
		return nil, err
	}
	pdf.Cell(nil, letter.Title)
	pdf.Br(30)

	if err := pdf.SetFont("DejaVu", "", 12); err != nil {
		return nil, err
	}
	pdf.Cell(nil, fmt.Sprintf("Date: %s", letter.Date.Format("02.01.2006")))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Patient: %s", letter.PatientName))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Date of birth: %s", letter.DateOfBirth.Format("02.01.2006")))
	pdf.Br(25)

	if letter.Diagnosis != "" {
		if err := pdf.SetFont("DejaVu", "", 14); err != nil {
			return nil, err
		}
		pdf.Cell(nil, "Diagnosis:")
		pdf.Br(15)
		if err := pdf.SetFont("DejaVu", "", 11); err != nil {
			return nil, err
		}
		pdf.Cell(nil, letter.Diagnosis)
		pdf.Br(20)
	}

	if len(letter.Symptoms) > 0 {
		if err := pdf.SetFont("DejaVu", "", 14); err != nil {
			return nil, err
		}
		pdf.Cell(nil, "Observed symptoms:")
		pdf.Br(15)
		if err := pdf.SetFont("DejaVu", "", 11); err != nil {
			return nil, err
		}
		for _, symptom := range letter.Symptoms {
			pdf.Cell(nil, "- "+symptom)
			pdf.Br(12)
		}
		pdf.Br(10)
	}

	if err := s.writeParagraph(&pdf, "Notes:", letter.Notes); err != nil {
		return nil, err
	}
	if err := s.writeParagraph(&pdf, "Additional notes:", letter.AdditionalNotes); err != nil {
		return nil, err
	}

	// Signature block
	pdf.SetY(750)
	if err := pdf.SetFont("DejaVu", "", 11); err != nil {
		return nil, err
	}
	pdf.SetX(380)
	pdf.Cell(nil, letter.SignatureLine)
	pdf.Br(25)
	pdf.SetX(360)
	pdf.Cell(nil, "____________________")

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to write PDF")
	}
	return buf.Bytes(), nil
}

func (s *Service) writeParagraph(pdf *gopdf.GoPdf, heading, text string) error {
	if text == "" {
		return nil
	}
	if err := pdf.SetFont("DejaVu", "", 14); err != nil {
		return err
	}
	pdf.Cell(nil, heading)
	pdf.Br(15)
	if err := pdf.SetFont("DejaVu", "", 11); err != nil {
		return err
	}
	lines, _ := pdf.SplitText(text, 500)
	for _, line := range lines {
		pdf.Cell(nil, line)
		pdf.Br(12)
	}
	pdf.Br(10)
	return nil
}
