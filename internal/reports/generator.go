package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/fdg312/health-planner/internal/biometrics"
	"github.com/fdg312/health-planner/internal/scenarios"
	"github.com/jung-kurt/gofpdf"
)

// ReportData: всё, что попадает в отчёт по плану
type ReportData struct {
	ProfileName string
	GeneratedAt time.Time
	Snapshot    biometrics.Snapshot
	IdealWeight *biometrics.IdealWeight
	Result      *scenarios.Result // nil, если сценарии ещё не считались
}

// Generator generates PDF/CSV plan reports
type Generator struct{}

// NewGenerator creates a new report generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the report in the requested format
func (g *Generator) Generate(format string, data ReportData) ([]byte, error) {
	switch format {
	case FormatPDF:
		return g.generatePDF(data)
	case FormatCSV:
		return g.generateCSV(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, format)
	}
}

var csvHeader = []string{
	"name", "approach", "daily_deficit", "workout_frequency", "workout_calories",
	"total_daily_deficit", "weekly_weight_change", "time_to_goal_weeks", "time_to_goal_months",
	"goal_rmr", "difficulty", "sustainability_score", "meets_target", "recommended",
}

// generateCSV writes one row per ranked scenario
func (g *Generator) generateCSV(data ReportData) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	if data.Result != nil {
		for _, s := range data.Result.Scenarios {
			row := []string{
				s.Name,
				string(s.Approach),
				strconv.Itoa(s.DailyDeficit),
				strconv.Itoa(s.WorkoutFrequency),
				strconv.Itoa(s.WorkoutCalories),
				strconv.Itoa(s.TotalDailyDeficit),
				strconv.FormatFloat(s.WeeklyWeightChange, 'f', 2, 64),
				strconv.Itoa(s.TimeToGoalWeeks),
				strconv.FormatFloat(s.TimeToGoalMonths, 'f', 1, 64),
				strconv.Itoa(s.GoalRMR),
				string(s.Difficulty),
				strconv.Itoa(s.SustainabilityScore),
				strconv.FormatBool(s.MeetsTarget),
				strconv.FormatBool(s.Recommended),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// generatePDF draws an A4 report with core fonts only
func (g *Generator) generatePDF(data ReportData) ([]byte, error) {
	const fontName = "Helvetica"

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Health Plan", false)
	pdf.AddPage()

	s := data.Snapshot

	// Header
	pdf.SetFont(fontName, "B", 16)
	pdf.Cell(0, 10, "Health Plan: "+displayName(data.ProfileName, s.FullName))
	pdf.Ln(8)
	pdf.SetFont(fontName, "", 10)
	pdf.Cell(0, 6, "Generated "+data.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"))
	pdf.Ln(10)

	// Metrics
	sectionTitle(pdf, fontName, "Metrics")
	lines := []string{
		fmt.Sprintf("Height: %s   Weight: %.1f lbs   Age: %d   Gender: %s", s.HeightDisplay(), s.Weight, s.Age, s.Gender),
		fmt.Sprintf("BMI: %.1f (%s)", s.BMI, s.BMICategory),
		fmt.Sprintf("RMR: %.0f kcal   Total daily calories: %.0f kcal", s.RMR, s.TotalCalories),
		fmt.Sprintf("Skeletal muscle: %.1f lbs (%.0f%%, %s)   Protein: %.1f g/day", s.CurrentSMM, s.SMMPercent, s.SMMStatus, s.ProteinNeeds),
	}
	if s.BodyFat != nil {
		lines = append(lines, fmt.Sprintf("Body fat: %.1f%%   %s", *s.BodyFat, s.BodyFatGuidance))
	}
	textLines(pdf, fontName, lines)

	// Ideal weight
	if data.IdealWeight != nil {
		iw := data.IdealWeight
		sectionTitle(pdf, fontName, "Ideal Weight")
		textLines(pdf, fontName, []string{
			fmt.Sprintf("Underweight: below %d lbs   Normal: %d-%d lbs", iw.UnderweightBelow, iw.Normal.Min, iw.Normal.Max),
			fmt.Sprintf("Overweight: %d-%d lbs   Obese: %d+ lbs", iw.Overweight.Min, iw.Overweight.Max, iw.ObeseFrom),
			fmt.Sprintf("Healthy: %d-%d lbs   Athletic: %d-%d lbs", iw.Healthy.Min, iw.Healthy.Max, iw.Athletic.Min, iw.Athletic.Max),
		})
	}

	// Training zones
	if len(s.TrainingZones) > 0 {
		sectionTitle(pdf, fontName, "Training Zones")
		pdf.SetFont(fontName, "B", 9)
		pdf.CellFormat(30, 6, "Zone", "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, "Min bpm", "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, "Max bpm", "1", 1, "C", false, 0, "")
		pdf.SetFont(fontName, "", 9)
		for _, z := range s.TrainingZones {
			pdf.CellFormat(30, 6, strconv.Itoa(z.Zone), "1", 0, "C", false, 0, "")
			pdf.CellFormat(40, 6, strconv.Itoa(z.Min), "1", 0, "C", false, 0, "")
			pdf.CellFormat(40, 6, strconv.Itoa(z.Max), "1", 1, "C", false, 0, "")
		}
		pdf.Ln(4)
	}

	if data.Result != nil {
		drawScenarios(pdf, fontName, data.Result)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}

// drawScenarios prints the goal summary and the ranked table
func drawScenarios(pdf *gofpdf.Fpdf, fontName string, result *scenarios.Result) {
	goal := result.Goal
	sectionTitle(pdf, fontName, "Goal")
	textLines(pdf, fontName, []string{
		fmt.Sprintf("%.1f lbs -> %.1f lbs (%s) within %.0f months", goal.CurrentWeight, goal.GoalWeight, goal.Direction, goal.TargetMonths),
	})

	sectionTitle(pdf, fontName, "Scenarios")

	widths := []float64{62, 20, 22, 18, 18, 22, 14}
	headers := []string{"Scenario", "kcal/day", "lbs/week", "Weeks", "Months", "Difficulty", "Score"}

	pdf.SetFont(fontName, "B", 8)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(fontName, "", 8)
	pdf.SetFillColor(225, 240, 225)
	for _, s := range result.Scenarios {
		name := s.Name
		if s.Recommended {
			name = "* " + name
		}
		cells := []string{
			name,
			strconv.Itoa(s.TotalDailyDeficit),
			strconv.FormatFloat(s.WeeklyWeightChange, 'f', 2, 64),
			strconv.Itoa(s.TimeToGoalWeeks),
			strconv.FormatFloat(s.TimeToGoalMonths, 'f', 1, 64),
			string(s.Difficulty),
			strconv.Itoa(s.SustainabilityScore),
		}
		for i, c := range cells {
			align := "C"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, s.Recommended, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	pdf.SetFont(fontName, "", 10)
	if result.Recommended != nil {
		pdf.Cell(0, 6, fmt.Sprintf("* Recommended: %s. %s", result.Recommended.Name, result.Recommended.RecommendationReason))
	} else {
		pdf.Cell(0, 6, "No scenario is recommended for this goal.")
	}
	pdf.Ln(6)

	for _, e := range result.Excluded {
		pdf.Cell(0, 5, "Excluded: "+e.Name)
		pdf.Ln(5)
	}
}

func sectionTitle(pdf *gofpdf.Fpdf, fontName, title string) {
	pdf.SetFont(fontName, "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
}

func textLines(pdf *gofpdf.Fpdf, fontName string, lines []string) {
	pdf.SetFont(fontName, "", 10)
	for _, l := range lines {
		pdf.Cell(0, 6, l)
		pdf.Ln(5)
	}
	pdf.Ln(5)
}

func displayName(profileName, fullName string) string {
	if fullName != "" {
		return fullName
	}
	if profileName != "" {
		return profileName
	}
	return "Client"
}

// contentType returns the MIME type stored with the object
func contentType(format string) string {
	if format == FormatCSV {
		return "text/csv"
	}
	return "application/pdf"
}
