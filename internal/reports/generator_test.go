package reports

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/fdg312/health-planner/internal/biometrics"
	"github.com/fdg312/health-planner/internal/scenarios"
)

func sampleData(t *testing.T) ReportData {
	t.Helper()

	snapshot, err := biometrics.Build(biometrics.Input{
		FullName:      "Alex",
		Age:           30,
		Gender:        biometrics.GenderMale,
		HeightFeet:    5,
		HeightInches:  10,
		Weight:        200,
		ActivityLevel: 1.55,
	}, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	sustainable, aggressive := 300, 750
	result, err := scenarios.Plan(scenarios.BaselineFromSnapshot(*snapshot), scenarios.Goal{
		GoalWeight:         180,
		TargetMonths:       6,
		SustainableDeficit: &sustainable,
		AggressiveDeficit:  &aggressive,
		WorkoutFrequencies: []int{3},
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	ideal, _ := biometrics.CalculateIdealWeight(5, 10, nil)
	return ReportData{
		ProfileName: "Client",
		GeneratedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Snapshot:    *snapshot,
		IdealWeight: ideal,
		Result:      result,
	}
}

func TestGeneratePDF(t *testing.T) {
	data, err := NewGenerator().Generate(FormatPDF, sampleData(t))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected PDF header, got %q", data[:min(len(data), 8)])
	}
}

func TestGeneratePDFWithoutScenarios(t *testing.T) {
	in := sampleData(t)
	in.Result = nil
	in.IdealWeight = nil

	data, err := NewGenerator().Generate(FormatPDF, in)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("expected PDF header")
	}
}

func TestGenerateCSV(t *testing.T) {
	data, err := NewGenerator().Generate(FormatCSV, sampleData(t))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected header + 4 rows, got %d", len(records))
	}
	if records[0][0] != "name" || len(records[0]) != len(csvHeader) {
		t.Fatalf("unexpected header %v", records[0])
	}

	recommended := 0
	for _, row := range records[1:] {
		if row[13] == "true" {
			recommended++
			if row[0] != "Sustainable + 3x/week Exercise" {
				t.Fatalf("unexpected recommended row %v", row)
			}
		}
	}
	if recommended != 1 {
		t.Fatalf("expected exactly one recommended row, got %d", recommended)
	}
}

func TestGenerateUnknownFormat(t *testing.T) {
	if _, err := NewGenerator().Generate("xlsx", ReportData{}); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}
