package scenarios

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrInvalidGoal      = errors.New("invalid goal")
	ErrInvalidBaseline  = errors.New("invalid baseline")
	ErrDivergentPlan    = errors.New("plan does not move weight toward the goal")
	ErrNoRecommendation = errors.New("no scenario qualifies for recommendation")
)

const (
	kcalPerPound      = 3500.0
	weeksPerMonth     = 4.33
	rmrPerPound       = 11.0
	referenceWeight   = 150.0
	minWorkoutFreq    = 2
	maxWorkoutFreq    = 6
	aggressiveMinFreq = 3

	// ceilEpsilon keeps float noise (6/0.6 = 10.000000000000002) from adding a week.
	ceilEpsilon = 1e-9
)

// Moderate-intensity burn per session at the reference weight.
var workoutBurnBaseline = map[Gender]float64{
	GenderMale:   400,
	GenderFemale: 350,
}

type difficultyRule struct {
	level Difficulty
	match func(dailyDeficit, workoutFreq int) bool
}

// Rules run top to bottom and the last match wins, so Low is checked after
// High and overrides it. With the current thresholds both cannot match at once.
var difficultyRules = []difficultyRule{
	{DifficultyHigh, func(d, f int) bool { return d >= 500 || f >= 5 }},
	{DifficultyLow, func(d, f int) bool { return d <= 300 && f <= 3 }},
}

// ResolveTimeline maps a timeline selection to target months.
func ResolveTimeline(preference string, customMonths *int, maxCustomMonths int) (float64, error) {
	preference = strings.TrimSpace(strings.ToLower(preference))
	if preference == TimelineCustom {
		if customMonths == nil || *customMonths <= 0 {
			return 0, fmt.Errorf("%w: custom timeline requires a positive number of months", ErrInvalidGoal)
		}
		if maxCustomMonths > 0 && *customMonths > maxCustomMonths {
			return 0, fmt.Errorf("%w: custom timeline exceeds %d months", ErrInvalidGoal, maxCustomMonths)
		}
		return float64(*customMonths), nil
	}

	months, ok := timelinePresets[preference]
	if !ok {
		return 0, fmt.Errorf("%w: unknown timeline %q", ErrInvalidGoal, preference)
	}
	return months, nil
}

// EstimateWorkoutCalories returns kcal burned per session, scaled linearly from
// the gender baseline at 150 lbs.
func EstimateWorkoutCalories(weight float64, gender Gender) (float64, error) {
	base, ok := workoutBurnBaseline[gender]
	if !ok {
		return 0, fmt.Errorf("%w: unknown gender %q", ErrInvalidBaseline, gender)
	}
	return math.Round(base * weight / referenceWeight), nil
}

func validateBaseline(base Baseline) error {
	if base.Weight <= 0 || math.IsNaN(base.Weight) || math.IsInf(base.Weight, 0) {
		return fmt.Errorf("%w: current weight must be positive", ErrInvalidBaseline)
	}
	if _, ok := workoutBurnBaseline[base.Gender]; !ok {
		return fmt.Errorf("%w: unknown gender %q", ErrInvalidBaseline, base.Gender)
	}
	return nil
}

func validateGoal(goal Goal) error {
	if goal.GoalWeight <= 0 || math.IsNaN(goal.GoalWeight) || math.IsInf(goal.GoalWeight, 0) {
		return fmt.Errorf("%w: goal weight must be positive", ErrInvalidGoal)
	}
	if goal.SustainableDeficit == nil || goal.AggressiveDeficit == nil {
		return fmt.Errorf("%w: sustainable and aggressive deficits are required", ErrInvalidGoal)
	}
	if goal.TargetMonths <= 0 {
		return fmt.Errorf("%w: target months must be positive", ErrInvalidGoal)
	}

	seen := make(map[int]bool, len(goal.WorkoutFrequencies))
	for _, f := range goal.WorkoutFrequencies {
		if f < minWorkoutFreq || f > maxWorkoutFreq {
			return fmt.Errorf("%w: workout frequency %d outside %d..%d", ErrInvalidGoal, f, minWorkoutFreq, maxWorkoutFreq)
		}
		if seen[f] {
			return fmt.Errorf("%w: duplicate workout frequency %d", ErrInvalidGoal, f)
		}
		seen[f] = true
	}
	return nil
}

// Enumerate builds the candidate plans for a goal: the two diet-only plans,
// then a sustainable plan per workout frequency and an aggressive one for
// frequencies of three or more.
func Enumerate(base Baseline, goal Goal) ([]Candidate, error) {
	if err := validateBaseline(base); err != nil {
		return nil, err
	}
	if err := validateGoal(goal); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, 2+2*len(goal.WorkoutFrequencies))
	candidates = append(candidates,
		Candidate{
			Name:         "Diet Only (Sustainable)",
			Approach:     ApproachSustainable,
			DailyDeficit: *goal.SustainableDeficit,
		},
		Candidate{
			Name:         "Diet Only (Aggressive)",
			Approach:     ApproachAggressive,
			DailyDeficit: *goal.AggressiveDeficit,
		},
	)

	perSession, err := EstimateWorkoutCalories(base.Weight, base.Gender)
	if err != nil {
		return nil, err
	}

	for _, freq := range goal.WorkoutFrequencies {
		daily := perSession * float64(freq) / 7

		candidates = append(candidates, Candidate{
			Name:             "Sustainable + " + strconv.Itoa(freq) + "x/week Exercise",
			Approach:         ApproachSustainable,
			DailyDeficit:     *goal.SustainableDeficit,
			WorkoutFrequency: freq,
			WorkoutCalories:  daily,
		})

		if freq >= aggressiveMinFreq {
			candidates = append(candidates, Candidate{
				Name:             "Aggressive + " + strconv.Itoa(freq) + "x/week Exercise",
				Approach:         ApproachAggressive,
				DailyDeficit:     *goal.AggressiveDeficit,
				WorkoutFrequency: freq,
				WorkoutCalories:  daily,
			})
		}
	}

	return candidates, nil
}

// Score turns a candidate into a scenario. It returns ErrDivergentPlan when the
// combined deficit does not produce a positive weekly change.
func Score(c Candidate, currentWeight float64, goal Goal) (Scenario, error) {
	workoutCalories := c.WorkoutCalories
	if c.WorkoutFrequency == 0 {
		workoutCalories = 0
	}

	totalDaily := float64(c.DailyDeficit) + workoutCalories
	weekly := totalDaily * 7 / kcalPerPound
	if weekly <= 0 || math.IsNaN(weekly) {
		return Scenario{}, fmt.Errorf("%w: %s has total daily deficit %.0f", ErrDivergentPlan, c.Name, totalDaily)
	}

	weeks := int(math.Ceil(math.Abs(currentWeight-goal.GoalWeight)/weekly - ceilEpsilon))
	if weeks < 0 {
		weeks = 0
	}
	months := roundTo(float64(weeks)/weeksPerMonth, 1)

	return Scenario{
		Name:                c.Name,
		Approach:            c.Approach,
		DailyDeficit:        c.DailyDeficit,
		WorkoutFrequency:    c.WorkoutFrequency,
		WorkoutCalories:     int(math.Round(workoutCalories)),
		TotalDailyDeficit:   int(math.Round(totalDaily)),
		WeeklyWeightChange:  roundTo(weekly, 2),
		TimeToGoalWeeks:     weeks,
		TimeToGoalMonths:    months,
		GoalRMR:             int(math.Round(goal.GoalWeight * rmrPerPound)),
		Difficulty:          classifyDifficulty(c.DailyDeficit, c.WorkoutFrequency),
		SustainabilityScore: sustainabilityScore(c.DailyDeficit, c.WorkoutFrequency),
		MeetsTarget:         months <= goal.TargetMonths,
	}, nil
}

func classifyDifficulty(dailyDeficit, workoutFreq int) Difficulty {
	level := DifficultyModerate
	for _, rule := range difficultyRules {
		if rule.match(dailyDeficit, workoutFreq) {
			level = rule.level
		}
	}
	return level
}

func sustainabilityScore(dailyDeficit, workoutFreq int) int {
	score := 8
	if dailyDeficit > 500 {
		score -= 2
	}
	if workoutFreq > 4 {
		score--
	}
	if workoutFreq == 0 {
		score--
	}
	return clamp(score, 1, 10)
}

// Rank sorts scenarios by time to goal, keeping enumeration order on ties.
func Rank(list []Scenario) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].TimeToGoalWeeks < list[j].TimeToGoalWeeks
	})
}

// Recommend flags at most one scenario of an already ranked list and returns
// its index. Plans that meet the target win on sustainability (first one on
// ties, i.e. the fastest); otherwise the fastest plan scoring 6 or more wins.
func Recommend(list []Scenario) (int, error) {
	for i := range list {
		list[i].Recommended = false
		list[i].RecommendationReason = ""
	}

	best := -1
	for i, s := range list {
		if !s.MeetsTarget {
			continue
		}
		if best < 0 || s.SustainabilityScore > list[best].SustainabilityScore {
			best = i
		}
	}
	if best >= 0 {
		list[best].Recommended = true
		list[best].RecommendationReason = ReasonBestBalance
		return best, nil
	}

	for i, s := range list {
		if s.SustainabilityScore >= 6 {
			list[i].Recommended = true
			list[i].RecommendationReason = ReasonFastestSustainable
			return i, nil
		}
	}

	return -1, ErrNoRecommendation
}

// Plan runs the whole pipeline for one snapshot and goal.
func Plan(base Baseline, goal Goal) (*Result, error) {
	candidates, err := Enumerate(base, goal)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Goal: GoalSummary{
			PrimaryGoal:   goal.PrimaryGoal,
			CurrentWeight: base.Weight,
			GoalWeight:    goal.GoalWeight,
			TargetMonths:  goal.TargetMonths,
			Direction:     direction(base.Weight, goal.GoalWeight),
		},
		Scenarios: make([]Scenario, 0, len(candidates)),
	}

	for _, c := range candidates {
		s, err := Score(c, base.Weight, goal)
		if errors.Is(err, ErrDivergentPlan) {
			result.Excluded = append(result.Excluded, Excluded{Name: c.Name, Reason: err.Error()})
			continue
		}
		if err != nil {
			return nil, err
		}
		result.Scenarios = append(result.Scenarios, s)
	}

	Rank(result.Scenarios)

	idx, err := Recommend(result.Scenarios)
	switch {
	case errors.Is(err, ErrNoRecommendation):
		result.RecommendationStatus = RecommendationNone
	case err != nil:
		return nil, err
	default:
		result.RecommendationStatus = RecommendationSelected
		rec := result.Scenarios[idx]
		result.Recommended = &rec
	}

	return result, nil
}

func direction(current, goal float64) string {
	switch {
	case current > goal:
		return "lose"
	case current < goal:
		return "gain"
	default:
		return "maintain"
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
