package biometrics

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func floatPtr(v float64) *float64 { return &v }

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("%s: expected %.6f, got %.6f", name, want, got)
	}
}

func baseInput() Input {
	return Input{
		FullName:      "Alex",
		Age:           30,
		Gender:        GenderMale,
		HeightFeet:    5,
		HeightInches:  10,
		Weight:        180,
		ActivityLevel: 1.55,
	}
}

func TestBuild_CoreFormulas(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s, err := Build(baseInput(), now)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if s.HeightInches != 70 {
		t.Fatalf("expected 70 inches, got %d", s.HeightInches)
	}
	approx(t, "bmi", s.BMI, 180*703.0/4900)
	if s.BMICategory != "Overweight" {
		t.Errorf("expected Overweight, got %s", s.BMICategory)
	}
	approx(t, "rmr", s.RMR, 1980)
	approx(t, "total calories", s.TotalCalories, 3069)
	approx(t, "smm percent", s.SMMPercent, 49)
	approx(t, "current smm", s.CurrentSMM, 88.2)
	approx(t, "protein", s.ProteinNeeds, 132.3)
	if s.SMMStatus != "Within healthy range" {
		t.Errorf("unexpected smm status %q", s.SMMStatus)
	}
	if s.MaxHR != 190 {
		t.Errorf("expected max HR 190, got %d", s.MaxHR)
	}
	if s.RestingHR != nil || s.HRReserve != nil || s.TrainingZones != nil {
		t.Error("zones must be absent without resting HR")
	}
	if s.BodyFat != nil || s.BodyFatGuidance != "" {
		t.Error("body fat must be absent when not supplied")
	}
	if s.IdealWeightHealthy != (WeightRange{Min: 160, Max: 174}) {
		t.Errorf("unexpected healthy band %+v", s.IdealWeightHealthy)
	}
	if s.IdealWeightAthletic != (WeightRange{Min: 174, Max: 202}) {
		t.Errorf("unexpected athletic band %+v", s.IdealWeightAthletic)
	}
	if !s.ComputedAt.Equal(now) {
		t.Errorf("expected computed at %v, got %v", now, s.ComputedAt)
	}
	if s.HeightDisplay() != `5'10"` {
		t.Errorf("unexpected height display %q", s.HeightDisplay())
	}
}

func TestBuild_SMMEstimateFloors(t *testing.T) {
	in := baseInput()
	in.Age = 120
	s, err := Build(in, time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	approx(t, "male smm at 120", s.SMMPercent, 40)

	in.Gender = GenderFemale
	s, _ = Build(in, time.Now())
	approx(t, "female smm at 120", s.SMMPercent, 35)
	if s.SMMStatus != "Below ideal range" {
		t.Errorf("unexpected status %q", s.SMMStatus)
	}
}

func TestBuild_WithBodyFat(t *testing.T) {
	in := baseInput()
	in.BodyFat = floatPtr(20)

	s, err := Build(in, time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	approx(t, "current smm", s.CurrentSMM, 144*0.85)
	approx(t, "smm percent", s.SMMPercent, 68)
	if s.SMMStatus != "Above average" {
		t.Errorf("unexpected status %q", s.SMMStatus)
	}
	if s.BodyFatGuidance != GuidanceHealthy {
		t.Errorf("20%% male should be healthy, got %q", s.BodyFatGuidance)
	}
}

func TestBuild_ZeroBodyFatIsAValue(t *testing.T) {
	in := baseInput()
	in.BodyFat = floatPtr(0)

	s, err := Build(in, time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if s.BodyFat == nil || *s.BodyFat != 0 {
		t.Fatal("explicit 0 body fat must be kept")
	}
	approx(t, "current smm", s.CurrentSMM, 153)
	if s.BodyFatGuidance != GuidanceLean {
		t.Errorf("expected lean guidance, got %q", s.BodyFatGuidance)
	}
}

func TestBuild_BodyFatGuidanceByGender(t *testing.T) {
	tests := []struct {
		gender Gender
		bf     float64
		want   string
	}{
		{GenderMale, 25, GuidanceReduce},
		{GenderMale, 11, GuidanceLean},
		{GenderMale, 12, GuidanceHealthy},
		{GenderFemale, 31, GuidanceReduce},
		{GenderFemale, 21, GuidanceLean},
		{GenderFemale, 30, GuidanceHealthy},
	}

	for _, tt := range tests {
		in := baseInput()
		in.Gender = tt.gender
		in.BodyFat = floatPtr(tt.bf)
		s, err := Build(in, time.Now())
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if s.BodyFatGuidance != tt.want {
			t.Errorf("%s %.0f%%: expected %q, got %q", tt.gender, tt.bf, tt.want, s.BodyFatGuidance)
		}
	}
}

func TestBuild_TrainingZones(t *testing.T) {
	in := baseInput()
	in.RestingHR = floatPtr(60)

	s, err := Build(in, time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if s.HRReserve == nil || *s.HRReserve != 130 {
		t.Fatalf("expected HRR 130, got %v", s.HRReserve)
	}

	want := []TrainingZone{
		{Zone: 1, Min: 125, Max: 138},
		{Zone: 2, Min: 138, Max: 151},
		{Zone: 3, Min: 151, Max: 164},
		{Zone: 4, Min: 164, Max: 177},
		{Zone: 5, Min: 177, Max: 190},
	}
	if len(s.TrainingZones) != len(want) {
		t.Fatalf("expected %d zones, got %d", len(want), len(s.TrainingZones))
	}
	for i, z := range want {
		if s.TrainingZones[i] != z {
			t.Errorf("zone %d: expected %+v, got %+v", i+1, z, s.TrainingZones[i])
		}
	}
}

func TestBuild_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"age zero", func(in *Input) { in.Age = 0 }},
		{"age too high", func(in *Input) { in.Age = 121 }},
		{"unknown gender", func(in *Input) { in.Gender = "other" }},
		{"inches out of range", func(in *Input) { in.HeightInches = 12 }},
		{"zero height", func(in *Input) { in.HeightFeet, in.HeightInches = 0, 0 }},
		{"zero weight", func(in *Input) { in.Weight = 0 }},
		{"negative activity", func(in *Input) { in.ActivityLevel = -1 }},
		{"body fat 100", func(in *Input) { in.BodyFat = floatPtr(100) }},
		{"zero resting HR", func(in *Input) { in.RestingHR = floatPtr(0) }},
		{"resting HR above max", func(in *Input) { in.RestingHR = floatPtr(195) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			tt.mutate(&in)
			if _, err := Build(in, time.Now()); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestBuild_DefaultsNameAndNormalizesGender(t *testing.T) {
	in := baseInput()
	in.FullName = "  "
	in.Gender = " Female "

	s, err := Build(in, time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if s.FullName != "Client" {
		t.Errorf("expected default name, got %q", s.FullName)
	}
	if s.Gender != GenderFemale {
		t.Errorf("expected female, got %q", s.Gender)
	}
}

func TestBMICategory(t *testing.T) {
	tests := map[float64]string{
		18.4:  "Underweight",
		18.5:  "Normal Weight",
		24.99: "Normal Weight",
		25:    "Overweight",
		29.9:  "Overweight",
		30:    "Obese",
	}
	for bmi, want := range tests {
		if got := BMICategory(bmi); got != want {
			t.Errorf("BMI %.2f: expected %s, got %s", bmi, want, got)
		}
	}
}

func TestCalculateIdealWeight(t *testing.T) {
	res, err := CalculateIdealWeight(5, 10, floatPtr(22))
	if err != nil {
		t.Fatalf("CalculateIdealWeight: %v", err)
	}

	if res.HeightDisplay != `5'10"` {
		t.Errorf("unexpected height display %q", res.HeightDisplay)
	}
	if res.UnderweightBelow != 128 {
		t.Errorf("expected underweight below 128, got %d", res.UnderweightBelow)
	}
	if res.Normal != (WeightRange{Min: 129, Max: 174}) {
		t.Errorf("unexpected normal band %+v", res.Normal)
	}
	if res.Overweight != (WeightRange{Min: 175, Max: 208}) {
		t.Errorf("unexpected overweight band %+v", res.Overweight)
	}
	if res.ObeseFrom != 209 {
		t.Errorf("expected obese from 209, got %d", res.ObeseFrom)
	}
	if res.Custom == nil || res.Custom.Weight != 153 {
		t.Errorf("unexpected custom target %+v", res.Custom)
	}

	if _, err := CalculateIdealWeight(5, 10, floatPtr(0)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for zero BMI, got %v", err)
	}
	if _, err := CalculateIdealWeight(0, 0, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for zero height, got %v", err)
	}
}

func TestAnalyzeGoal_WeightAndMuscle(t *testing.T) {
	s, _ := Build(baseInput(), time.Now())

	res, err := AnalyzeGoal(*s, floatPtr(170), nil)
	if err != nil {
		t.Fatalf("AnalyzeGoal: %v", err)
	}

	w := res.Weight
	if w == nil {
		t.Fatal("expected weight analysis")
	}
	if w.Direction != "lose" {
		t.Errorf("expected lose, got %s", w.Direction)
	}
	approx(t, "difference", w.Difference, 10)
	approx(t, "daily calories", w.DailyCalories, 110)
	approx(t, "weekly change", w.WeeklyChange, 0.22)
	if w.TimelineWeeks != 46 || w.TimelineMonths != 12 {
		t.Errorf("expected 46 weeks / 12 months, got %d / %d", w.TimelineWeeks, w.TimelineMonths)
	}

	if res.BodyFat != nil {
		t.Error("body fat analysis needs a measured body fat")
	}
	if !res.Muscle.WithinIdeal || res.Muscle.AdditionalProtein != 0 {
		t.Errorf("expected within ideal muscle range, got %+v", res.Muscle)
	}
	approx(t, "ideal min", res.Muscle.IdealMin, 76.5)
	approx(t, "ideal max", res.Muscle.IdealMax, 93.5)
}

func TestAnalyzeGoal_FatLossAndMuscleGain(t *testing.T) {
	in := Input{
		Age:           30,
		Gender:        GenderFemale,
		HeightFeet:    5,
		HeightInches:  5,
		Weight:        150,
		ActivityLevel: 1.2,
		BodyFat:       floatPtr(50),
	}
	s, err := Build(in, time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	res, err := AnalyzeGoal(*s, floatPtr(160), floatPtr(30))
	if err != nil {
		t.Fatalf("AnalyzeGoal: %v", err)
	}

	if res.Weight.Direction != "gain" {
		t.Errorf("expected gain, got %s", res.Weight.Direction)
	}
	if res.BodyFat == nil {
		t.Fatal("expected body fat analysis")
	}
	approx(t, "fat to lose", res.BodyFat.FatToLose, 30)

	m := res.Muscle
	if m.WithinIdeal {
		t.Fatal("expected muscle to gain")
	}
	approx(t, "to gain min", m.ToGainMin, 0.25)
	approx(t, "to gain max", m.ToGainMax, 16.25)
	approx(t, "additional protein", m.AdditionalProtein, 24.375)
}

func TestAnalyzeGoal_SameWeight(t *testing.T) {
	s, _ := Build(baseInput(), time.Now())

	res, err := AnalyzeGoal(*s, floatPtr(180), floatPtr(25))
	if err != nil {
		t.Fatalf("AnalyzeGoal: %v", err)
	}
	if res.Weight.Direction != "maintain" || res.Weight.TimelineWeeks != 0 {
		t.Errorf("expected maintain with no timeline, got %+v", res.Weight)
	}
	if res.BodyFat != nil {
		t.Error("no body fat analysis without a measured value")
	}
}

func TestSummary(t *testing.T) {
	in := baseInput()
	in.RestingHR = floatPtr(60)
	s, _ := Build(in, time.Now())

	text := Summary(*s)
	for _, want := range []string{"Alex", "BMI: 25.8 (Overweight)", "Daily Calories: 3069", "Healthy Weight Range: 160-174 lbs", "151-164 bpm"} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}
