// Package food holds the food diary domain model and calorie aggregation.
package food

import "math"

// DateLayout is the calendar-date format used throughout the food API.
const DateLayout = "2006-01-02"

// Entry is one logged meal.
type Entry struct {
	ID           string  `db:"id" json:"id"`
	ClientID     string  `db:"client_id" json:"client_id,omitempty"`
	Date         string  `db:"date" json:"date"`
	MealType     string  `db:"meal_type" json:"meal_type"`
	FoodCategory string  `db:"food_category" json:"food_category"`
	FoodName     string  `db:"food_name" json:"food_name"`
	Calories     int     `db:"calories" json:"calories"`
	MoodTag      *string `db:"mood_tag" json:"mood_tag"`
}

// EntryPatch is a partial update; nil fields are left unchanged.
type EntryPatch struct {
	Date         *string `json:"date"`
	MealType     *string `json:"meal_type"`
	FoodCategory *string `json:"food_category"`
	FoodName     *string `json:"food_name"`
	Calories     *int    `json:"calories"`
	MoodTag      *string `json:"mood_tag"`
}

// IsEmpty reports whether the patch carries no changes.
func (p EntryPatch) IsEmpty() bool {
	return p.Date == nil && p.MealType == nil && p.FoodCategory == nil &&
		p.FoodName == nil && p.Calories == nil && p.MoodTag == nil
}

// Meal is one entry in a day summary.
type Meal struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	Name     string  `json:"name"`
	Calories int     `json:"calories"`
	Category string  `json:"category"`
	MoodTag  *string `json:"moodTag"`
}

// DayEntry groups one calendar day's meals with a calorie total.
type DayEntry struct {
	Date          string `json:"date"`
	TotalCalories int    `json:"totalCalories"`
	Meals         []Meal `json:"meals"`
}

// WeeklyStats summarises the trailing week.
type WeeklyStats struct {
	AvgCalories int `json:"avgCalories"`
	DaysTracked int `json:"daysTracked"`
}

// GroupByDay folds entries into per-date summaries, preserving the order in
// which dates first appear.
func GroupByDay(entries []Entry) []DayEntry {
	index := make(map[string]int)
	days := make([]DayEntry, 0)

	for _, entry := range entries {
		i, ok := index[entry.Date]
		if !ok {
			i = len(days)
			index[entry.Date] = i
			days = append(days, DayEntry{Date: entry.Date})
		}
		days[i].Meals = append(days[i].Meals, Meal{
			ID:       entry.ID,
			Type:     entry.MealType,
			Name:     entry.FoodName,
			Calories: entry.Calories,
			Category: entry.FoodCategory,
			MoodTag:  entry.MoodTag,
		})
		days[i].TotalCalories += entry.Calories
	}

	return days
}

// ComputeWeeklyStats averages daily calorie totals over the days that have at
// least one entry.
func ComputeWeeklyStats(entries []Entry) WeeklyStats {
	daily := make(map[string]int)
	for _, entry := range entries {
		daily[entry.Date] += entry.Calories
	}

	if len(daily) == 0 {
		return WeeklyStats{}
	}

	total := 0
	for _, calories := range daily {
		total += calories
	}

	return WeeklyStats{
		AvgCalories: int(math.Round(float64(total) / float64(len(daily)))),
		DaysTracked: len(daily),
	}
}
