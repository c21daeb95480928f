package food

import "testing"

func TestGroupByDay(t *testing.T) {
	entries := []Entry{
		{ID: "1", Date: "2026-08-24", MealType: "breakfast", FoodName: "oats", Calories: 300},
		{ID: "2", Date: "2026-08-24", MealType: "lunch", FoodName: "dal", Calories: 550},
		{ID: "3", Date: "2026-08-25", MealType: "breakfast", FoodName: "idli", Calories: 250},
	}

	days := GroupByDay(entries)
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if days[0].Date != "2026-08-24" || days[0].TotalCalories != 850 {
		t.Fatalf("unexpected first day: %+v", days[0])
	}
	if len(days[0].Meals) != 2 || days[0].Meals[1].Name != "dal" {
		t.Fatalf("unexpected meals: %+v", days[0].Meals)
	}
	if days[1].TotalCalories != 250 {
		t.Fatalf("unexpected second day: %+v", days[1])
	}
}

func TestComputeWeeklyStats(t *testing.T) {
	entries := []Entry{
		{Date: "2026-08-24", Calories: 300},
		{Date: "2026-08-24", Calories: 500},
		{Date: "2026-08-25", Calories: 701},
	}

	stats := ComputeWeeklyStats(entries)
	if stats.DaysTracked != 2 {
		t.Fatalf("days tracked = %d, want 2", stats.DaysTracked)
	}
	// (800 + 701) / 2 = 750.5, rounded to 751.
	if stats.AvgCalories != 751 {
		t.Fatalf("avg calories = %d, want 751", stats.AvgCalories)
	}
}

func TestComputeWeeklyStatsEmpty(t *testing.T) {
	stats := ComputeWeeklyStats(nil)
	if stats.AvgCalories != 0 || stats.DaysTracked != 0 {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}
