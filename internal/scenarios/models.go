package scenarios

import (
	"time"

	"github.com/fdg312/health-planner/internal/biometrics"
	"github.com/google/uuid"
)

// Approach identifies which configured deficit a plan uses.
type Approach string

const (
	ApproachSustainable Approach = "sustainable"
	ApproachAggressive  Approach = "aggressive"
)

// Difficulty is the qualitative effort rating of a plan.
type Difficulty string

const (
	DifficultyLow      Difficulty = "Low"
	DifficultyModerate Difficulty = "Moderate"
	DifficultyHigh     Difficulty = "High"
)

// Gender selects the per-session workout burn baseline.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// RecommendationStatus tells the caller whether a plan was recommended.
type RecommendationStatus string

const (
	RecommendationSelected RecommendationStatus = "recommended"
	RecommendationNone     RecommendationStatus = "none"
)

const (
	ReasonBestBalance        = "Best balance of results and sustainability."
	ReasonFastestSustainable = "Fastest sustainable approach."
)

// Timeline presets offered to the user; anything else must be "custom".
const TimelineCustom = "custom"

var timelinePresets = map[string]float64{
	"1":  1,
	"2":  2,
	"3":  3,
	"6":  6,
	"12": 12,
}

// Baseline is the slice of a metrics snapshot the engine needs.
type Baseline struct {
	Weight float64 // lbs
	Gender Gender
	RMR    float64 // kcal/day
}

// Goal describes what the user wants to reach and how hard they are willing to push.
type Goal struct {
	PrimaryGoal        string
	GoalWeight         float64
	GoalBodyFat        *float64
	TargetMonths       float64
	SustainableDeficit *int // nil means not supplied; 0 is a real value
	AggressiveDeficit  *int
	WorkoutFrequencies []int
}

// Candidate is one enumerated plan before scoring.
type Candidate struct {
	Name             string
	Approach         Approach
	DailyDeficit     int
	WorkoutFrequency int
	WorkoutCalories  float64 // kcal/day, weekly burn amortized over 7 days
}

// Scenario is a fully scored plan.
type Scenario struct {
	Name                 string     `json:"name"`
	Approach             Approach   `json:"approach"`
	DailyDeficit         int        `json:"daily_deficit"`
	WorkoutFrequency     int        `json:"workout_frequency"`
	WorkoutCalories      int        `json:"workout_calories"`
	TotalDailyDeficit    int        `json:"total_daily_deficit"`
	WeeklyWeightChange   float64    `json:"weekly_weight_change"`
	TimeToGoalWeeks      int        `json:"time_to_goal_weeks"`
	TimeToGoalMonths     float64    `json:"time_to_goal_months"`
	GoalRMR              int        `json:"goal_rmr"`
	Difficulty           Difficulty `json:"difficulty"`
	SustainabilityScore  int        `json:"sustainability_score"`
	MeetsTarget          bool       `json:"meets_target"`
	Recommended          bool       `json:"recommended"`
	RecommendationReason string     `json:"recommendation_reason,omitempty"`
}

// Excluded records a candidate dropped because it cannot reach the goal.
type Excluded struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// GoalSummary is echoed back for display next to the ranked list.
type GoalSummary struct {
	PrimaryGoal   string  `json:"primary_goal,omitempty"`
	CurrentWeight float64 `json:"current_weight"`
	GoalWeight    float64 `json:"goal_weight"`
	TargetMonths  float64 `json:"target_months"`
	Direction     string  `json:"direction"` // lose | gain | maintain
}

// Result is the output of Plan.
type Result struct {
	Goal                 GoalSummary          `json:"goal"`
	Scenarios            []Scenario           `json:"scenarios"`
	Excluded             []Excluded           `json:"excluded,omitempty"`
	RecommendationStatus RecommendationStatus `json:"recommendation_status"`
	Recommended          *Scenario            `json:"recommended,omitempty"`
}

// ---- API ----

// GoalRequest: тело POST /v1/scenarios/generate
type GoalRequest struct {
	ProfileID          uuid.UUID `json:"profile_id"`
	PrimaryGoal        string    `json:"primary_goal"`
	GoalWeight         *float64  `json:"goal_weight"`
	GoalBodyFat        *float64  `json:"goal_body_fat,omitempty"`
	Timeline           string    `json:"timeline"` // "1"|"2"|"3"|"6"|"12"|"custom"
	CustomMonths       *int      `json:"custom_months,omitempty"`
	SustainableDeficit *int      `json:"sustainable_deficit,omitempty"`
	AggressiveDeficit  *int      `json:"aggressive_deficit,omitempty"`
	WorkoutFrequencies []int     `json:"workout_frequencies"`

	// Biometrics, when set, are calculated first and replace the current snapshot.
	Biometrics *biometrics.Input `json:"biometrics,omitempty"`
}

// RunDTO: текущий результат планирования профиля
type RunDTO struct {
	ProfileID   uuid.UUID `json:"profile_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Result
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
