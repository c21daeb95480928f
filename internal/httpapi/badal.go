package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	fooddomain "github.com/ornge/orange-services/internal/domain/food"
	"github.com/ornge/orange-services/internal/domain/fridge"
	foodsvc "github.com/ornge/orange-services/internal/services/food"
	fridgesvc "github.com/ornge/orange-services/internal/services/fridge"
	"github.com/ornge/orange-services/pkg/logger"
)

// Badal serves the fridge and food diary endpoints.
type Badal struct {
	fridge *fridgesvc.Service
	food   *foodsvc.Service
	log    *logger.Logger
}

// NewBadalRouter mounts the badal-service HTTP surface.
func NewBadalRouter(fridgeSvc *fridgesvc.Service, foodSvc *foodsvc.Service, opts Options) http.Handler {
	r := newRouter(&opts)
	b := &Badal{fridge: fridgeSvc, food: foodSvc, log: opts.Log}

	r.HandleFunc("/fridge", b.createFridge).Methods(http.MethodPost)
	r.HandleFunc("/fridge", b.getFridge).Methods(http.MethodGet)
	r.HandleFunc("/fridge/items", b.listItems).Methods(http.MethodGet)
	r.HandleFunc("/fridge/items", b.addItem).Methods(http.MethodPost)
	r.HandleFunc("/fridge/items", b.updateItem).Methods(http.MethodPut)
	r.HandleFunc("/food/entries", b.listFoodEntries).Methods(http.MethodGet)
	r.HandleFunc("/food/entries", b.createFoodEntry).Methods(http.MethodPost)
	r.HandleFunc("/food/entries/{id}", b.updateFoodEntry).Methods(http.MethodPut)
	r.HandleFunc("/food/entries/{id}", b.deleteFoodEntry).Methods(http.MethodDelete)
	r.HandleFunc("/food/dayEntries", b.dayEntries).Methods(http.MethodGet)
	r.HandleFunc("/food/weeklyStats", b.weeklyStats).Methods(http.MethodGet)

	return finalize(r, opts)
}

func (b *Badal) createFridge(w http.ResponseWriter, r *http.Request) {
	clientID, okID := requireClientID(w, r, http.StatusBadRequest)
	if !okID {
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, b.log, err)
		return
	}

	created, err := b.fridge.CreateFridge(r.Context(), clientID, body.Name)
	if err != nil {
		writeError(w, b.log, err)
		return
	}
	ok(w, map[string]interface{}{"fridge": created})
}

func (b *Badal) getFridge(w http.ResponseWriter, r *http.Request) {
	clientID, okID := requireClientID(w, r, http.StatusBadRequest)
	if !okID {
		return
	}

	f, err := b.fridge.GetFridge(r.Context(), clientID)
	if err != nil {
		writeError(w, b.log, err)
		return
	}
	ok(w, map[string]interface{}{"fridge": f})
}

func (b *Badal) listItems(w http.ResponseWriter, r *http.Request) {
	clientID, okID := requireClientID(w, r, http.StatusBadRequest)
	if !okID {
		return
	}

	items, err := b.fridge.ListItems(r.Context(), clientID)
	if err != nil {
		writeError(w, b.log, err)
		return
	}
	ok(w, map[string]interface{}{"fridgeItems": items})
}

type addItemRequest struct {
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Quantity       int     `json:"quantity"`
	ExpiryDate     string  `json:"expiry_date"`
	Score          *int    `json:"score"`
	IsShoppingItem bool    `json:"is_shopping_item"`
	ScannerID      *string `json:"scanner_id"`
}

func (b *Badal) addItem(w http.ResponseWriter, r *http.Request) {
	clientID, okID := requireClientID(w, r, http.StatusBadRequest)
	if !okID {
		return
	}

	var body addItemRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, b.log, err)
		return
	}

	in := fridgesvc.NewItem{
		Name:           body.Name,
		Category:       body.Category,
		Quantity:       body.Quantity,
		Score:          body.Score,
		IsShoppingItem: body.IsShoppingItem,
		ScannerID:      body.ScannerID,
	}
	if body.ExpiryDate != "" {
		expiry, err := parseDate(body.ExpiryDate)
		if err != nil {
			fail(w, http.StatusBadRequest, "Item details are incomplete")
			return
		}
		in.ExpiryDate = &expiry
	}

	item, err := b.fridge.AddItem(r.Context(), clientID, in)
	if err != nil {
		writeError(w, b.log, err)
		return
	}
	ok(w, map[string]interface{}{"item": item})
}

type updateItemRequest struct {
	ID            string  `json:"id"`
	OperationType string  `json:"operation_type"`
	Quantity      *int    `json:"quantity"`
	Threshold     *int    `json:"threshold"`
	ExpiryDate    *string `json:"expiry_date"`
	ScannerID     *string `json:"scanner_id"`
}

func (b *Badal) updateItem(w http.ResponseWriter, r *http.Request) {
	clientID, okID := requireClientID(w, r, http.StatusBadRequest)
	if !okID {
		return
	}

	var body updateItemRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, b.log, err)
		return
	}
	if body.ID == "" || body.OperationType == "" {
		fail(w, http.StatusBadRequest, "Item update details are incomplete")
		return
	}

	op := fridge.Operation{
		Kind:      fridge.OperationKind(body.OperationType),
		Quantity:  body.Quantity,
		Threshold: body.Threshold,
		ScannerID: body.ScannerID,
	}
	if body.ExpiryDate != nil {
		expiry, err := parseDate(*body.ExpiryDate)
		if err != nil {
			fail(w, http.StatusBadRequest, "Item update details are incomplete")
			return
		}
		op.ExpiryDate = &expiry
	}

	item, err := b.fridge.UpdateItem(r.Context(), clientID, body.ID, op)
	if err != nil {
		writeError(w, b.log, err)
		return
	}
	ok(w, map[string]interface{}{"item": item})
}

func (b *Badal) listFoodEntries(w http.ResponseWriter, r *http.Request) {
	clientID, okID := requireClientID(w, r, http.StatusBadRequest)
	if !okID {
		return
	}

	q := r.URL.Query()
	date := q.Get("date")
	startDate := q.Get("start_date")
	endDate := q.Get("end_date")
	category := q.Get("category")

	if date == "" && (startDate == "" || endDate == "") {
		fail(w, http.StatusBadRequest, "Either date or date range (start_date and end_date) is required")
		return
	}

	var (
		entries []fooddomain.Entry
		err     error
	)
	if date != "" {
		entries, err = b.food.EntriesByDate(r.Context(), clientID, date, category)
	} else {
		entries, err = b.food.EntriesByDateRange(r.Context(), clientID, startDate, endDate)
	}
	if err != nil {
		writeError(w, b.log, err)
		return
	}
	ok(w, map[string]interface{}{"foodEntries": entries})
}

type createFoodEntryRequest struct {
	Date         string  `json:"date"`
	MealType     string  `json:"meal_type"`
	FoodCategory string  `json:"food_category"`
	FoodName     string  `json:"food_name"`
	Calories     *int    `json:"calories"`
	MoodTag      *string `json:"mood_tag"`
}

func (b *Badal) createFoodEntry(w http.ResponseWriter, r *http.Request) {
	clientID, okID := requireClientID(w, r, http.StatusBadRequest)
	if !okID {
		return
	}

	var body createFoodEntryRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, b.log, err)
		return
	}
	if body.Date == "" || body.MealType == "" || body.FoodCategory == "" ||
		body.FoodName == "" || body.Calories == nil {
		fail(w, http.StatusBadRequest, "Required fields: date, meal_type, food_category, food_name, calories")
		return
	}

	entry, err := b.food.CreateEntry(r.Context(), fooddomain.Entry{
		ClientID:     clientID,
		Date:         body.Date,
		MealType:     body.MealType,
		FoodCategory: body.FoodCategory,
		FoodName:     body.FoodName,
		Calories:     *body.Calories,
		MoodTag:      body.MoodTag,
	})
	if err != nil {
		writeError(w, b.log, err)
		return
	}
	ok(w, map[string]interface{}{"foodEntry": entry})
}

func (b *Badal) updateFoodEntry(w http.ResponseWriter, r *http.Request) {
	clientID, okID := requireClientID(w, r, http.StatusBadRequest)
	if !okID {
		return
	}

	var patch fooddomain.EntryPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, b.log, err)
		return
	}

	entry, err := b.food.UpdateEntry(r.Context(), mux.Vars(r)["id"], clientID, patch)
	if err != nil {
		writeError(w, b.log, err)
		return
	}
	ok(w, map[string]interface{}{"foodEntry": entry})
}

func (b *Badal) deleteFoodEntry(w http.ResponseWriter, r *http.Request) {
	clientID, okID := requireClientID(w, r, http.StatusBadRequest)
	if !okID {
		return
	}

	if err := b.food.DeleteEntry(r.Context(), mux.Vars(r)["id"], clientID); err != nil {
		writeError(w, b.log, err)
		return
	}
	ok(w, map[string]interface{}{"message": "Food entry deleted"})
}

func (b *Badal) dayEntries(w http.ResponseWriter, r *http.Request) {
	clientID, okID := requireClientID(w, r, http.StatusBadRequest)
	if !okID {
		return
	}
	if r.URL.Query().Get("date") == "" {
		fail(w, http.StatusBadRequest, "Date is required")
		return
	}

	days, err := b.food.DayEntries(r.Context(), clientID)
	if err != nil {
		writeError(w, b.log, err)
		return
	}
	ok(w, map[string]interface{}{"dayEntries": days})
}

func (b *Badal) weeklyStats(w http.ResponseWriter, r *http.Request) {
	clientID, okID := requireClientID(w, r, http.StatusBadRequest)
	if !okID {
		return
	}

	stats, err := b.food.WeeklyStats(r.Context(), clientID)
	if err != nil {
		writeError(w, b.log, err)
		return
	}
	ok(w, map[string]interface{}{"weeklyStats": stats})
}
