package biometrics

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var ErrInvalidInput = errors.New("invalid biometric input")

const (
	bmiFactor       = 703.0
	rmrPerPound     = 11.0
	kcalPerPound    = 3500.0
	leanToSMMRatio  = 0.85
	proteinPerSMM   = 1.5
	hrMaxBase       = 220
	defaultFullName = "Client"
)

type smmNorms struct {
	ideal       PercentRange
	estimateTop float64 // SMM% в 20 лет без данных о жире
	estimateMin float64
	fatHigh     float64 // выше: рекомендация снижать жир
	fatLean     float64 // ниже: сухой диапазон
}

var normsByGender = map[Gender]smmNorms{
	GenderMale: {
		ideal:       PercentRange{Min: 45, Max: 55},
		estimateTop: 50,
		estimateMin: 30,
		fatHigh:     20,
		fatLean:     12,
	},
	GenderFemale: {
		ideal:       PercentRange{Min: 40, Max: 50},
		estimateTop: 45,
		estimateMin: 25,
		fatHigh:     30,
		fatLean:     22,
	},
}

// Доли резерва ЧСС для нижних границ зон 1-5
var zoneFractions = []float64{0.5, 0.6, 0.7, 0.8, 0.9}

const (
	GuidanceReduce  = "Focus on creating a caloric deficit through balanced nutrition and resistance training."
	GuidanceLean    = "You are in a lean range. Focus on maintaining current levels."
	GuidanceHealthy = "Your body fat is within a healthy range. Maintain with consistent training and nutrition."
)

// ParseGender нормализует значение пола из запроса
func ParseGender(v string) (Gender, error) {
	g := Gender(strings.ToLower(strings.TrimSpace(v)))
	if _, ok := normsByGender[g]; !ok {
		return "", fmt.Errorf("%w: gender must be male or female", ErrInvalidInput)
	}
	return g, nil
}

// TotalHeightInches переводит рост в дюймы и проверяет диапазон
func TotalHeightInches(feet, inches int) (int, error) {
	if feet < 0 || inches < 0 || inches > 11 {
		return 0, fmt.Errorf("%w: height must be feet >= 0 and inches 0..11", ErrInvalidInput)
	}
	total := feet*12 + inches
	if total <= 0 {
		return 0, fmt.Errorf("%w: height must be positive", ErrInvalidInput)
	}
	return total, nil
}

func validate(in Input) (Gender, int, error) {
	if in.Age < 1 || in.Age > 120 {
		return "", 0, fmt.Errorf("%w: age must be between 1 and 120", ErrInvalidInput)
	}

	gender, err := ParseGender(string(in.Gender))
	if err != nil {
		return "", 0, err
	}

	height, err := TotalHeightInches(in.HeightFeet, in.HeightInches)
	if err != nil {
		return "", 0, err
	}

	if !isPositive(in.Weight) {
		return "", 0, fmt.Errorf("%w: weight must be positive", ErrInvalidInput)
	}
	if !isPositive(in.ActivityLevel) {
		return "", 0, fmt.Errorf("%w: activity level must be positive", ErrInvalidInput)
	}

	if in.BodyFat != nil {
		bf := *in.BodyFat
		if math.IsNaN(bf) || bf < 0 || bf >= 100 {
			return "", 0, fmt.Errorf("%w: body fat must be in [0, 100)", ErrInvalidInput)
		}
	}

	if in.RestingHR != nil {
		maxHR := float64(hrMaxBase - in.Age)
		hr := *in.RestingHR
		if !isPositive(hr) || hr >= maxHR {
			return "", 0, fmt.Errorf("%w: resting heart rate must be between 0 and %.0f", ErrInvalidInput, maxHR)
		}
	}

	return gender, height, nil
}

// Build считает снимок метрик из входных данных
func Build(in Input, now time.Time) (*Snapshot, error) {
	gender, height, err := validate(in)
	if err != nil {
		return nil, err
	}
	norms := normsByGender[gender]

	name := strings.TrimSpace(in.FullName)
	if name == "" {
		name = defaultFullName
	}

	bmi := in.Weight * bmiFactor / float64(height*height)
	rmr := in.Weight * rmrPerPound

	s := &Snapshot{
		FullName:      name,
		HeightInches:  height,
		Weight:        in.Weight,
		Age:           in.Age,
		Gender:        gender,
		ActivityLevel: in.ActivityLevel,
		BMI:           bmi,
		BMICategory:   BMICategory(bmi),
		RMR:           rmr,
		TotalCalories: rmr * in.ActivityLevel,
		IdealSMM:      norms.ideal,
		MaxHR:         hrMaxBase - in.Age,
		ComputedAt:    now.UTC(),
	}

	if in.BodyFat != nil {
		bf := *in.BodyFat
		lean := in.Weight * (100 - bf) / 100
		s.CurrentSMM = lean * leanToSMMRatio
		s.SMMPercent = s.CurrentSMM / in.Weight * 100
		s.BodyFat = &bf
		s.BodyFatGuidance = bodyFatGuidance(bf, norms)
	} else {
		s.SMMPercent = math.Max(norms.estimateMin, norms.estimateTop-float64(in.Age-20)*0.1)
		s.CurrentSMM = s.SMMPercent / 100 * in.Weight
	}

	s.SMMStatus = smmStatus(s.SMMPercent, norms.ideal)
	s.ProteinNeeds = s.CurrentSMM * proteinPerSMM

	if in.RestingHR != nil {
		rest := *in.RestingHR
		reserve := float64(s.MaxHR) - rest
		s.RestingHR = &rest
		s.HRReserve = &reserve
		s.TrainingZones = trainingZones(reserve, rest, s.MaxHR)
	}

	s.IdealWeightHealthy = weightRange(height, 23, 25)
	s.IdealWeightAthletic = weightRange(height, 25, 29)

	return s, nil
}

// BMICategory возвращает категорию BMI
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Normal Weight"
	case bmi < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}

func smmStatus(percent float64, ideal PercentRange) string {
	switch {
	case percent < ideal.Min:
		return "Below ideal range"
	case percent <= ideal.Max:
		return "Within healthy range"
	default:
		return "Above average"
	}
}

func bodyFatGuidance(bf float64, norms smmNorms) string {
	switch {
	case bf > norms.fatHigh:
		return GuidanceReduce
	case bf < norms.fatLean:
		return GuidanceLean
	default:
		return GuidanceHealthy
	}
}

// Зоны 1-4 идут от p до p+0.1 резерва, зона 5 упирается в максимальный пульс
func trainingZones(reserve, rest float64, maxHR int) []TrainingZone {
	zones := make([]TrainingZone, 0, len(zoneFractions))
	for i, p := range zoneFractions {
		upper := int(math.Round(reserve*(p+0.1) + rest))
		if i == len(zoneFractions)-1 {
			upper = maxHR
		}
		zones = append(zones, TrainingZone{
			Zone: i + 1,
			Min:  int(math.Round(reserve*p + rest)),
			Max:  upper,
		})
	}
	return zones
}

func weightForBMI(heightInches int, bmi float64) int {
	return int(math.Round(float64(heightInches*heightInches) * bmi / bmiFactor))
}

func weightRange(heightInches int, minBMI, maxBMI float64) WeightRange {
	return WeightRange{
		Min: weightForBMI(heightInches, minBMI),
		Max: weightForBMI(heightInches, maxBMI),
	}
}

// CalculateIdealWeight возвращает веса для стандартных диапазонов BMI и, если задан, для своего BMI
func CalculateIdealWeight(heightFeet, heightInches int, goalBMI *float64) (*IdealWeight, error) {
	height, err := TotalHeightInches(heightFeet, heightInches)
	if err != nil {
		return nil, err
	}

	normal := weightRange(height, 18.5, 24.9)
	res := &IdealWeight{
		HeightInches:     height,
		HeightDisplay:    formatHeight(height),
		UnderweightBelow: weightForBMI(height, 18.4),
		Normal:           normal,
		Overweight:       WeightRange{Min: normal.Max + 1, Max: weightForBMI(height, 29.9)},
		ObeseFrom:        weightForBMI(height, 30),
		Healthy:          weightRange(height, 23, 25),
		Athletic:         weightRange(height, 25, 29),
	}

	if goalBMI != nil {
		if !isPositive(*goalBMI) {
			return nil, fmt.Errorf("%w: goal BMI must be positive", ErrInvalidInput)
		}
		res.Custom = &CustomTarget{BMI: *goalBMI, Weight: weightForBMI(height, *goalBMI)}
	}

	return res, nil
}

// AnalyzeGoal сравнивает цель по весу и жиру с текущим снимком
func AnalyzeGoal(s Snapshot, goalWeight, goalBodyFat *float64) (*GoalAnalysis, error) {
	if goalWeight != nil && !isPositive(*goalWeight) {
		return nil, fmt.Errorf("%w: goal weight must be positive", ErrInvalidInput)
	}
	if goalBodyFat != nil && (math.IsNaN(*goalBodyFat) || *goalBodyFat < 0 || *goalBodyFat >= 100) {
		return nil, fmt.Errorf("%w: goal body fat must be in [0, 100)", ErrInvalidInput)
	}

	analysis := &GoalAnalysis{}

	if goalWeight != nil {
		analysis.Weight = weightGoal(s.Weight, *goalWeight)
	}

	if goalBodyFat != nil && s.BodyFat != nil && *s.BodyFat > *goalBodyFat {
		current := *s.BodyFat
		currentFat := s.Weight * current / 100
		goalFat := s.Weight * *goalBodyFat / 100
		analysis.BodyFat = &BodyFatGoal{
			Current:          current,
			Target:           *goalBodyFat,
			CurrentFatWeight: currentFat,
			GoalFatWeight:    goalFat,
			FatToLose:        currentFat - goalFat,
		}
	}

	target := s.Weight
	if goalWeight != nil {
		target = *goalWeight
	}
	norms := normsByGender[s.Gender]
	idealMin := target * norms.ideal.Min / 100
	idealMax := target * norms.ideal.Max / 100

	muscle := MuscleGoal{
		CurrentSMM:     s.CurrentSMM,
		CurrentPercent: s.SMMPercent,
		IdealMin:       idealMin,
		IdealMax:       idealMax,
		ToGainMin:      math.Max(0, idealMin-s.CurrentSMM),
		ToGainMax:      math.Max(0, idealMax-s.CurrentSMM),
	}
	if muscle.ToGainMin > 0 {
		muscle.AdditionalProtein = muscle.ToGainMax * proteinPerSMM
	} else {
		muscle.WithinIdeal = true
	}
	analysis.Muscle = muscle

	return analysis, nil
}

// Проекция держится на разнице RMR: скорость пропорциональна разнице весов,
// поэтому срок почти не зависит от величины цели.
func weightGoal(current, goal float64) *WeightGoal {
	diff := math.Abs(current - goal)
	currentRMR := current * rmrPerPound
	goalRMR := goal * rmrPerPound
	daily := math.Abs(currentRMR - goalRMR)
	weekly := daily * 7 / kcalPerPound

	wg := &WeightGoal{
		Direction:     "maintain",
		Difference:    diff,
		CurrentRMR:    currentRMR,
		GoalRMR:       goalRMR,
		DailyCalories: daily,
		WeeklyChange:  weekly,
	}
	switch {
	case current > goal:
		wg.Direction = "lose"
	case current < goal:
		wg.Direction = "gain"
	}

	if weekly > 0 {
		weeks := int(math.Ceil(diff / weekly))
		wg.TimelineWeeks = weeks
		wg.TimelineMonths = int(math.Ceil(float64(weeks) / 4))
	}

	return wg
}

func formatHeight(totalInches int) string {
	return fmt.Sprintf("%d'%d\"", totalInches/12, totalInches%12)
}

func isPositive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
