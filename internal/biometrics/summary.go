package biometrics

import (
	"fmt"
	"strings"
)

// Summary возвращает короткую текстовую сводку для отправки клиенту
func Summary(s Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "My Health Metrics Report (%s):\n", s.FullName)
	fmt.Fprintf(&b, "BMI: %.1f (%s)\n", s.BMI, shortCategory(s.BMICategory))
	fmt.Fprintf(&b, "Daily Calories: %.0f\n", s.TotalCalories)
	fmt.Fprintf(&b, "Muscle Mass: %.1f%% (%.1f lbs)\n", s.SMMPercent, s.CurrentSMM)
	fmt.Fprintf(&b, "Protein Target: %.0fg\n", s.ProteinNeeds)
	fmt.Fprintf(&b, "Healthy Weight Range: %d-%d lbs\n", s.IdealWeightHealthy.Min, s.IdealWeightHealthy.Max)

	if len(s.TrainingZones) >= 3 {
		z := s.TrainingZones[2]
		fmt.Fprintf(&b, "Target Heart Rate Zone: %d-%d bpm\n", z.Min, z.Max)
	}

	return b.String()
}

func shortCategory(category string) string {
	if category == "Normal Weight" {
		return "Normal"
	}
	return category
}
