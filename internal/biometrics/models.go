package biometrics

import (
	"time"

	"github.com/google/uuid"
)

// Gender выбирает таблицы норм (SMM, пороги жира, калории тренировки)
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Input: исходные данные клиента в имперских единицах.
// Необязательные поля заданы указателями. nil значит "не указано", 0 валидируется как значение.
type Input struct {
	FullName      string   `json:"full_name,omitempty"`
	Age           int      `json:"age"`
	Gender        Gender   `json:"gender"`
	HeightFeet    int      `json:"height_feet"`
	HeightInches  int      `json:"height_inches"`
	Weight        float64  `json:"weight"`
	ActivityLevel float64  `json:"activity_level"`
	BodyFat       *float64 `json:"body_fat,omitempty"`
	RestingHR     *float64 `json:"resting_hr,omitempty"`
}

// WeightRange: диапазон веса в фунтах
type WeightRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// PercentRange: диапазон в процентах от массы тела
type PercentRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// TrainingZone: пульсовая зона тренировки
type TrainingZone struct {
	Zone int `json:"zone"`
	Min  int `json:"min"`
	Max  int `json:"max"`
}

// Snapshot: неизменяемый результат расчёта метрик
type Snapshot struct {
	FullName      string  `json:"full_name"`
	HeightInches  int     `json:"height_inches"`
	Weight        float64 `json:"weight"`
	Age           int     `json:"age"`
	Gender        Gender  `json:"gender"`
	ActivityLevel float64 `json:"activity_level"`

	BMI           float64 `json:"bmi"`
	BMICategory   string  `json:"bmi_category"`
	RMR           float64 `json:"rmr"`
	TotalCalories float64 `json:"total_calories"`

	SMMPercent   float64      `json:"smm_percent"`
	CurrentSMM   float64      `json:"current_smm"`
	SMMStatus    string       `json:"smm_status"`
	IdealSMM     PercentRange `json:"ideal_smm"`
	ProteinNeeds float64      `json:"protein_needs"`

	BodyFat         *float64 `json:"body_fat,omitempty"`
	BodyFatGuidance string   `json:"body_fat_guidance,omitempty"`

	RestingHR     *float64       `json:"resting_hr,omitempty"`
	MaxHR         int            `json:"max_hr"`
	HRReserve     *float64       `json:"hr_reserve,omitempty"`
	TrainingZones []TrainingZone `json:"training_zones,omitempty"`

	IdealWeightHealthy  WeightRange `json:"ideal_weight_healthy"`
	IdealWeightAthletic WeightRange `json:"ideal_weight_athletic"`

	ComputedAt time.Time `json:"computed_at"`
}

// HeightDisplay форматирует рост как 5'10"
func (s Snapshot) HeightDisplay() string {
	return formatHeight(s.HeightInches)
}

// IdealWeight: результат калькулятора идеального веса
type IdealWeight struct {
	HeightInches     int           `json:"height_inches"`
	HeightDisplay    string        `json:"height_display"`
	UnderweightBelow int           `json:"underweight_below"`
	Normal           WeightRange   `json:"normal"`
	Overweight       WeightRange   `json:"overweight"`
	ObeseFrom        int           `json:"obese_from"`
	Healthy          WeightRange   `json:"healthy"`
	Athletic         WeightRange   `json:"athletic"`
	Custom           *CustomTarget `json:"custom,omitempty"`
}

// CustomTarget: вес для произвольного целевого BMI
type CustomTarget struct {
	BMI    float64 `json:"bmi"`
	Weight int     `json:"weight"`
}

// GoalAnalysis: разбор цели относительно текущего снимка
type GoalAnalysis struct {
	Weight  *WeightGoal  `json:"weight,omitempty"`
	BodyFat *BodyFatGoal `json:"body_fat,omitempty"`
	Muscle  MuscleGoal   `json:"muscle"`
}

// WeightGoal: проекция по разнице RMR текущего и целевого веса
type WeightGoal struct {
	Direction      string  `json:"direction"` // lose | gain | maintain
	Difference     float64 `json:"difference"`
	CurrentRMR     float64 `json:"current_rmr"`
	GoalRMR        float64 `json:"goal_rmr"`
	DailyCalories  float64 `json:"daily_calories"` // дефицит или профицит
	WeeklyChange   float64 `json:"weekly_change"`
	TimelineWeeks  int     `json:"timeline_weeks"`
	TimelineMonths int     `json:"timeline_months"`
}

// BodyFatGoal: сколько жира нужно сбросить
type BodyFatGoal struct {
	Current          float64 `json:"current"`
	Target           float64 `json:"target"`
	CurrentFatWeight float64 `json:"current_fat_weight"`
	GoalFatWeight    float64 `json:"goal_fat_weight"`
	FatToLose        float64 `json:"fat_to_lose"`
}

// MuscleGoal: сравнение мышечной массы с нормой для целевого веса
type MuscleGoal struct {
	CurrentSMM        float64 `json:"current_smm"`
	CurrentPercent    float64 `json:"current_percent"`
	IdealMin          float64 `json:"ideal_min"`
	IdealMax          float64 `json:"ideal_max"`
	ToGainMin         float64 `json:"to_gain_min"`
	ToGainMax         float64 `json:"to_gain_max"`
	AdditionalProtein float64 `json:"additional_protein"`
	WithinIdeal       bool    `json:"within_ideal"`
}

// ---- API ----

// CalculateRequest: тело POST /v1/biometrics/calculate
type CalculateRequest struct {
	ProfileID uuid.UUID `json:"profile_id"`
	Input
}

// SnapshotDTO: текущий снимок профиля
type SnapshotDTO struct {
	ProfileID uuid.UUID `json:"profile_id"`
	Snapshot  Snapshot  `json:"snapshot"`
}

// IdealWeightRequest: тело POST /v1/biometrics/ideal-weight
type IdealWeightRequest struct {
	HeightFeet   int      `json:"height_feet"`
	HeightInches int      `json:"height_inches"`
	GoalBMI      *float64 `json:"goal_bmi,omitempty"`
}

// GoalAnalysisRequest: тело POST /v1/biometrics/goal-analysis
type GoalAnalysisRequest struct {
	ProfileID   uuid.UUID `json:"profile_id"`
	GoalWeight  *float64  `json:"goal_weight,omitempty"`
	GoalBodyFat *float64  `json:"goal_body_fat,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
