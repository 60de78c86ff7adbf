package services

import (
	"bytes"
	"fmt"
	"time"

	"seo-content-ops/internal/similarity"

	"github.com/xuri/excelize/v2"
)

// ExportService renders similarity results as Excel workbooks for the
// content team.
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// ExportSearchResult builds a two-sheet workbook: per-candidate detail
// rows and a recommendation summary.
func (s *ExportService) ExportSearchResult(result *similarity.SearchResult) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Recommendations"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Similar Article ID", "Title", "Category", "Pageviews",
		"Final Score", "Avg Similarity", "Peak Similarity", "Matching Ratio",
		"Matching Base Chunks", "Matching Candidate Chunks",
		"Recommendation", "Priority", "Confidence", "Predicted Traffic", "Explanation",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, cand := range result.Candidates {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), cand.Article.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), cand.Article.Title)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), cand.Article.CategoryName)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), cand.Article.Pageviews)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), cand.FinalScore)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), cand.AvgSimilarity)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), cand.PeakSimilarity)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), cand.MatchingRatio)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), cand.MatchingBaseChunks)
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), cand.MatchingCandidateChunks)
		f.SetCellValue(sheetName, fmt.Sprintf("K%d", row), string(cand.Recommendation.Type))
		f.SetCellValue(sheetName, fmt.Sprintf("L%d", row), cand.Recommendation.Priority)
		f.SetCellValue(sheetName, fmt.Sprintf("M%d", row), cand.Recommendation.Confidence)
		f.SetCellValue(sheetName, fmt.Sprintf("N%d", row), PredictTrafficImpact(
			result.BaseArticle.Pageviews, cand.Article.Pageviews, cand.FinalScore))
		f.SetCellValue(sheetName, fmt.Sprintf("O%d", row), cand.Recommendation.Explanation)
	}

	if err := s.writeSummarySheet(f, result); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *ExportService) writeSummarySheet(f *excelize.File, result *similarity.SearchResult) error {
	sheetName := "Summary"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	f.SetCellValue(sheetName, "A1", "Base Article")
	f.SetCellValue(sheetName, "B1", result.BaseArticle.Title)
	f.SetCellValue(sheetName, "A2", "Base Article ID")
	f.SetCellValue(sheetName, "B2", result.BaseArticle.ID)
	f.SetCellValue(sheetName, "A3", "Base Pageviews")
	f.SetCellValue(sheetName, "B3", result.BaseArticle.Pageviews)
	f.SetCellValue(sheetName, "A4", "Candidates Found")
	f.SetCellValue(sheetName, "B4", result.TotalFound)
	f.SetCellValue(sheetName, "A5", "Exported At")
	f.SetCellValue(sheetName, "B5", time.Now().Format("2006-01-02 15:04:05"))

	byType := make(map[string]int)
	for _, cand := range result.Candidates {
		byType[string(cand.Recommendation.Type)]++
	}

	f.SetCellValue(sheetName, "A7", "Recommendation")
	f.SetCellValue(sheetName, "B7", "Count")
	row := 8
	for _, t := range []string{"MERGE_CONTENT", "REDIRECT_301", "CROSS_LINK", "REVIEW", "MONITOR"} {
		if count, ok := byType[t]; ok {
			f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), t)
			f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), count)
			row++
		}
	}

	return nil
}
