package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"profile-system/internal/entities"
	"profile-system/internal/services"
	"profile-system/pkg/utils"
)

type ReportController struct {
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, logger: logger}
}

func (c *ReportController) GetProfileReport(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	format := strings.ToLower(ctx.QueryParam("format"))
	c.logger.Debug("Запрос на выгрузку анкет", zap.String("format", format))

	if format == "xlsx" {
		data, err := c.reportService.GetReportForExcel(reqCtx)
		if err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
		return c.respondWithXLSX(ctx, data)
	}

	data, err := c.reportService.GetReportDTOs(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, data, "Отчёт по анкетам успешно сформирован", http.StatusOK)
}

var profileReportHeaders = []string{
	"ID анкеты", "ID пользователя", "Табельный номер", "Дата приёма", "Статус сотрудника",
	"Статус согласования", "Дата отправки", "Дата решения", "Статус разблокировки", "Заблокировано полей",
}

func profileRowToSlice(item entities.ProfileReportItem) []interface{} {
	dateFmt, stampFmt := "02.01.2006", "02.01.2006 15:04"
	var joiningDate, submittedAt, reviewedAt string
	if item.JoiningDate != nil {
		joiningDate = item.JoiningDate.Format(dateFmt)
	}
	if item.SubmittedAt != nil {
		submittedAt = item.SubmittedAt.Format(stampFmt)
	}
	if item.ReviewedAt != nil {
		reviewedAt = item.ReviewedAt.Format(stampFmt)
	}

	return []interface{}{
		item.ProfileID, item.UserID, item.EmployeeID, joiningDate, item.Status,
		item.ApprovalStatus, submittedAt, reviewedAt, item.UnlockStatus, item.LockedCount,
	}
}

func (c *ReportController) respondWithXLSX(ctx echo.Context, data []entities.ProfileReportItem) error {
	f := excelize.NewFile()
	sheet := "Анкеты сотрудников"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &profileReportHeaders)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "J1", style)

	for i, item := range data {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := profileRowToSlice(item)
		f.SetSheetRow(sheet, cell, &row)
	}
	f.SetColWidth(sheet, "C", "E", 20)
	f.SetColWidth(sheet, "F", "I", 22)

	fileName := fmt.Sprintf("profiles_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
