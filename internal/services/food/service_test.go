package food

import (
	"context"
	"testing"
	"time"

	fooddomain "github.com/ornge/orange-services/internal/domain/food"
	svcerrors "github.com/ornge/orange-services/internal/errors"
	"github.com/ornge/orange-services/internal/storage/memory"
)

func fixedClock(date string) func() time.Time {
	t, err := time.Parse(fooddomain.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func seedEntry(t *testing.T, svc *Service, clientID, date, meal, name string, calories int) fooddomain.Entry {
	t.Helper()
	created, err := svc.CreateEntry(context.Background(), fooddomain.Entry{
		ClientID:     clientID,
		Date:         date,
		MealType:     meal,
		FoodCategory: "general",
		FoodName:     name,
		Calories:     calories,
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	return created
}

func TestCreateEntryValidation(t *testing.T) {
	svc := New(memory.New(), nil)

	cases := []struct {
		name  string
		entry fooddomain.Entry
	}{
		{"bad date", fooddomain.Entry{Date: "31-08-2026", MealType: "lunch", FoodCategory: "grain", FoodName: "rice", Calories: 200}},
		{"missing meal type", fooddomain.Entry{Date: "2026-08-31", FoodCategory: "grain", FoodName: "rice", Calories: 200}},
		{"missing name", fooddomain.Entry{Date: "2026-08-31", MealType: "lunch", FoodCategory: "grain", Calories: 200}},
		{"negative calories", fooddomain.Entry{Date: "2026-08-31", MealType: "lunch", FoodCategory: "grain", FoodName: "rice", Calories: -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.entry.ClientID = "client-1"
			if _, err := svc.CreateEntry(context.Background(), tc.entry); err == nil {
				t.Fatal("expected validation error")
			} else if svcerrors.Status(err) != 400 {
				t.Fatalf("expected status 400, got %d", svcerrors.Status(err))
			}
		})
	}
}

func TestEntriesByDateMealFilter(t *testing.T) {
	svc := New(memory.New(), nil)
	seedEntry(t, svc, "client-1", "2026-08-30", "breakfast", "toast", 250)
	seedEntry(t, svc, "client-1", "2026-08-30", "lunch", "rice", 500)
	seedEntry(t, svc, "client-2", "2026-08-30", "lunch", "soup", 300)

	all, err := svc.EntriesByDate(context.Background(), "client-1", "2026-08-30", "")
	if err != nil {
		t.Fatalf("entries by date: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}

	lunch, err := svc.EntriesByDate(context.Background(), "client-1", "2026-08-30", "lunch")
	if err != nil {
		t.Fatalf("entries by date and meal: %v", err)
	}
	if len(lunch) != 1 || lunch[0].FoodName != "rice" {
		t.Fatalf("unexpected lunch entries: %+v", lunch)
	}

	if _, err := svc.EntriesByDate(context.Background(), "client-1", "not-a-date", ""); err == nil {
		t.Fatal("expected validation error for malformed date")
	}
}

func TestUpdateEntryOwnership(t *testing.T) {
	svc := New(memory.New(), nil)
	created := seedEntry(t, svc, "client-1", "2026-08-30", "dinner", "pasta", 700)

	calories := 650
	updated, err := svc.UpdateEntry(context.Background(), created.ID, "client-1", fooddomain.EntryPatch{Calories: &calories})
	if err != nil {
		t.Fatalf("update entry: %v", err)
	}
	if updated.Calories != 650 {
		t.Fatalf("expected 650 calories, got %d", updated.Calories)
	}

	if _, err := svc.UpdateEntry(context.Background(), created.ID, "client-2", fooddomain.EntryPatch{Calories: &calories}); !svcerrors.IsNotFound(err) {
		t.Fatalf("expected not found for other client, got %v", err)
	}

	if _, err := svc.UpdateEntry(context.Background(), created.ID, "client-1", fooddomain.EntryPatch{}); err == nil {
		t.Fatal("expected validation error for empty patch")
	}
}

func TestDeleteEntry(t *testing.T) {
	svc := New(memory.New(), nil)
	created := seedEntry(t, svc, "client-1", "2026-08-30", "snack", "apple", 90)

	if err := svc.DeleteEntry(context.Background(), created.ID, "client-2"); !svcerrors.IsNotFound(err) {
		t.Fatalf("expected not found for other client, got %v", err)
	}
	if err := svc.DeleteEntry(context.Background(), created.ID, "client-1"); err != nil {
		t.Fatalf("delete entry: %v", err)
	}
	if err := svc.DeleteEntry(context.Background(), created.ID, "client-1"); !svcerrors.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestDayEntriesTrailingWeek(t *testing.T) {
	svc := New(memory.New(), nil).WithClock(fixedClock("2026-08-31"))

	seedEntry(t, svc, "client-1", "2026-08-25", "breakfast", "toast", 250)
	seedEntry(t, svc, "client-1", "2026-08-25", "lunch", "rice", 500)
	seedEntry(t, svc, "client-1", "2026-08-31", "dinner", "pasta", 700)
	// Outside the trailing seven days.
	seedEntry(t, svc, "client-1", "2026-08-20", "dinner", "pizza", 900)

	days, err := svc.DayEntries(context.Background(), "client-1")
	if err != nil {
		t.Fatalf("day entries: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	for _, day := range days {
		switch day.Date {
		case "2026-08-25":
			if day.TotalCalories != 750 || len(day.Meals) != 2 {
				t.Fatalf("unexpected day summary: %+v", day)
			}
		case "2026-08-31":
			if day.TotalCalories != 700 || len(day.Meals) != 1 {
				t.Fatalf("unexpected day summary: %+v", day)
			}
		default:
			t.Fatalf("unexpected date %q in summary", day.Date)
		}
	}
}

func TestWeeklyStatsAverage(t *testing.T) {
	svc := New(memory.New(), nil).WithClock(fixedClock("2026-08-31"))

	seedEntry(t, svc, "client-1", "2026-08-29", "lunch", "rice", 800)
	seedEntry(t, svc, "client-1", "2026-08-30", "lunch", "soup", 400)
	seedEntry(t, svc, "client-1", "2026-08-30", "dinner", "pasta", 303)

	stats, err := svc.WeeklyStats(context.Background(), "client-1")
	if err != nil {
		t.Fatalf("weekly stats: %v", err)
	}
	if stats.DaysTracked != 2 {
		t.Fatalf("expected 2 days tracked, got %d", stats.DaysTracked)
	}
	// (800 + 703) / 2 = 751.5, rounded to 752.
	if stats.AvgCalories != 752 {
		t.Fatalf("expected avg 752, got %d", stats.AvgCalories)
	}
}

func TestWeeklyStatsEmpty(t *testing.T) {
	svc := New(memory.New(), nil).WithClock(fixedClock("2026-08-31"))

	stats, err := svc.WeeklyStats(context.Background(), "client-1")
	if err != nil {
		t.Fatalf("weekly stats: %v", err)
	}
	if stats.AvgCalories != 0 || stats.DaysTracked != 0 {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}
