package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"examprep_backend/internal/model"
)

const exportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportService 把公平性报告渲染成 xlsx 并上传到存储后端，管理端与
// 周期任务共用。
type ExportService struct {
	Fairness *FairnessService
	Storage  *StorageService
}

func NewExportService(fairness *FairnessService, storage *StorageService) *ExportService {
	return &ExportService{Fairness: fairness, Storage: storage}
}

// BuildFairnessWorkbook 一个 (exam, subject) 一张工作表
func (s *ExportService) BuildFairnessWorkbook(reports []model.FairnessReport) (*excelize.File, error) {
	f := excelize.NewFile()

	for i, rep := range reports {
		sheet := fmt.Sprintf("%s_%s", rep.ExamCode, rep.Subject)
		if len(sheet) > 31 {
			sheet = sheet[:31]
		}
		if i == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, err
			}
		}

		headers := []interface{}{"Group", "Average", "Samples", "InDisparity"}
		if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
			return nil, err
		}

		for row, g := range rep.Groups {
			cell := fmt.Sprintf("A%d", row+2)
			values := []interface{}{g.GroupCode, g.Average, g.SampleCount, g.Included}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return nil, err
			}
		}

		summaryRow := len(rep.Groups) + 3
		summary := []interface{}{"Disparity", rep.Disparity, "Flagged", rep.Flagged}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", summaryRow), &summary); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// ExportFairnessReports 渲染全部键并上传，返回文件 URL
func (s *ExportService) ExportFairnessReports(ctx context.Context) (string, error) {
	reports, err := s.Fairness.AllReports(ctx)
	if err != nil {
		return "", err
	}
	if len(reports) == 0 {
		return "", nil
	}

	workbook, err := s.BuildFairnessWorkbook(reports)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("fairness/fairness_report_%s.xlsx", time.Now().Format("20060102_150405"))
	return s.Storage.Provider.Upload(ctx, filename, &buf, int64(buf.Len()), exportContentType)
}
