package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"ihya/config"
	"ihya/services"
	"ihya/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportsController serves the admin-facing exports and snapshot history.
type ReportsController struct {
	DB          *gorm.DB
	Cfg         *config.Config
	Leaderboard *services.LeaderboardService
	Snapshots   *services.SnapshotService
}

func NewReportsController(db *gorm.DB, cfg *config.Config) *ReportsController {
	return &ReportsController{
		DB:          db,
		Cfg:         cfg,
		Leaderboard: services.NewLeaderboardService(db),
		Snapshots:   services.NewSnapshotService(db),
	}
}

// LeaderboardReport exports the current leaderboard as an XLSX workbook.
func (rc *ReportsController) LeaderboardReport(c *fiber.Ctx) error {
	leaderboard, err := rc.Leaderboard.Leaderboard()
	if err != nil {
		return utils.InternalServerError(c, "Could not compute leaderboard")
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"

	headers := []string{"Rank", "Username", "Mentor", "XP", "Level", "Completion %"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}
	for i, entry := range leaderboard {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), entry.Rank)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), entry.Username)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), entry.MentorName)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), entry.XP)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), entry.Level)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), entry.Percentage)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return utils.InternalServerError(c, "Could not build report")
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="leaderboard.xlsx"`)
	return c.Send(buf.Bytes())
}

// MarksReport exports every stored assignment and exam score with the
// student's name attached.
func (rc *ReportsController) MarksReport(c *fiber.Ctx) error {
	type scoreRow struct {
		Username string
		Title    string
		Score    float64
	}

	var assignmentRows []scoreRow
	err := rc.DB.Raw(`
		SELECT u.username, a.title, s.score
		FROM assignment_scores s
		JOIN users u ON u.id = s.user_id
		JOIN assignments a ON a.id = s.assignment_id
		WHERE s.deleted_at IS NULL
		ORDER BY u.username, a.title`).Scan(&assignmentRows).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var examRows []scoreRow
	err = rc.DB.Raw(`
		SELECT u.username, e.title, s.score
		FROM exam_scores s
		JOIN users u ON u.id = s.user_id
		JOIN exams e ON e.id = s.exam_id
		WHERE s.deleted_at IS NULL
		ORDER BY u.username, e.title`).Scan(&examRows).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"

	headers := []string{"Student", "Kind", "Title", "Score"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	row := 2
	writeRow := func(kind string, r scoreRow) {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.Username)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), kind)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.Title)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.Score)
		row++
	}
	for _, r := range assignmentRows {
		writeRow("assignment", r)
	}
	for _, r := range examRows {
		writeRow("exam", r)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return utils.InternalServerError(c, "Could not build report")
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="marks.xlsx"`)
	return c.Send(buf.Bytes())
}

// SnapshotHistory lists recent daily platform snapshots.
func (rc *ReportsController) SnapshotHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 30)
	snapshots, err := rc.Snapshots.Recent(limit)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Success(c, fiber.StatusOK, snapshots)
}
