package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"

	"github.com/p-n-ai/pai-quiz/internal/locale"
	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

const (
	summarySheet = "Summary"
	xlsxType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeaders = map[language.Tag][]string{
	language.Arabic:  {"#", "السؤال", "إجابتك", "الإجابة الصحيحة", "النتيجة"},
	language.English: {"#", "Question", "Your answer", "Correct answer", "Result"},
}

func (s *Server) handleSummaryExport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sum, ok, err := s.sessions.Summary(id)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusConflict, "quiz not completed")
		return
	}

	f, err := s.summaryWorkbook(sum, s.lang(r))
	if err != nil {
		slog.Error("failed to build summary workbook", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-summary.xlsx"`, sum.QuizID))
	if err := f.Write(w); err != nil {
		slog.Error("failed to write summary workbook", "session_id", id, "error", err)
	}
}

// summaryWorkbook lays out the result screen as a single sheet: a score
// block followed by one review row per question.
func (s *Server) summaryWorkbook(sum quiz.Summary, tag language.Tag) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", summarySheet)

	rtl := locale.Dir(tag) == "rtl"
	if err := f.SetSheetView(summarySheet, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		f.Close()
		return nil, fmt.Errorf("setting sheet view: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating style: %w", err)
	}

	rows := [][]any{
		{sum.Title},
		{s.locale.Text(tag, locale.KeyScore, sum.Score, sum.Total), fmt.Sprintf("%d%%", sum.Percentage)},
		{s.locale.Tier(tag, sum.Tier)},
		{},
	}
	headers, ok := exportHeaders[tag]
	if !ok {
		headers = exportHeaders[language.English]
	}
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	rows = append(rows, header)
	headerRow := len(rows)

	for _, item := range sum.Review {
		result := s.locale.Text(tag, locale.KeyFalse)
		if item.Correct {
			result = s.locale.Text(tag, locale.KeyTrue)
		}
		rows = append(rows, []any{
			item.Position,
			item.Prompt,
			s.answerText(item, tag),
			item.CorrectText,
			result,
		})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	for _, cells := range [][2]string{{"A1", "A1"}, {"A3", "A3"}, {fmt.Sprintf("A%d", headerRow), fmt.Sprintf("E%d", headerRow)}} {
		if err := f.SetCellStyle(summarySheet, cells[0], cells[1], bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("styling %s: %w", cells[0], err)
		}
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 60); err != nil {
		f.Close()
		return nil, fmt.Errorf("sizing columns: %w", err)
	}
	if err := f.SetColWidth(summarySheet, "C", "E", 24); err != nil {
		f.Close()
		return nil, fmt.Errorf("sizing columns: %w", err)
	}
	return f, nil
}

// answerText renders a selected answer the way the question showed it.
func (s *Server) answerText(item quiz.ReviewItem, tag language.Tag) string {
	if truth, ok := item.Selected.Truth(); ok {
		if truth {
			return s.locale.Text(tag, locale.KeyTrue)
		}
		return s.locale.Text(tag, locale.KeyFalse)
	}
	return item.SelectedText
}
