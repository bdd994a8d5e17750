package webserver

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/lastcallsoftware/trackeats/internal/domain/nutrition"
	"github.com/lastcallsoftware/trackeats/pkg/errors"
)

func (s *WebServer) handleFoodList(w http.ResponseWriter, r *http.Request) {
	foods, err := s.deps.Catalog.ListFoods(r.Context(), credentials(r))
	if err != nil {
		s.fail(w, r, err, "foods", map[string]interface{}{"Title": "Foods - TrackEats"})
		return
	}
	s.render(w, r, http.StatusOK, "foods", map[string]interface{}{
		"Title": "Foods - TrackEats",
		"Foods": foods,
		"Flash": s.takeFlash(r),
	})
}

func (s *WebServer) handleNewFood(w http.ResponseWriter, r *http.Request) {
	s.renderFoodForm(w, r, http.StatusOK, nutrition.Food{Servings: 1}, "")
}

func (s *WebServer) handleEditFood(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err, "error", nil)
		return
	}
	food, err := s.deps.Catalog.GetFood(r.Context(), credentials(r), id)
	if err != nil {
		s.fail(w, r, err, "error", nil)
		return
	}
	s.renderFoodForm(w, r, http.StatusOK, food, "")
}

func (s *WebServer) handleCreateFood(w http.ResponseWriter, r *http.Request) {
	s.saveFood(w, r, 0)
}

func (s *WebServer) handleUpdateFood(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err, "error", nil)
		return
	}
	s.saveFood(w, r, id)
}

func (s *WebServer) saveFood(w http.ResponseWriter, r *http.Request, id int) {
	food, err := parseFood(r)
	food.ID = id
	if err != nil {
		s.renderFoodForm(w, r, http.StatusBadRequest, food, errors.Message(err))
		return
	}

	saved, err := s.deps.Catalog.SaveFood(r.Context(), credentials(r), food)
	if err != nil {
		if errors.Is(err, errors.CodeUnauthorized) {
			s.fail(w, r, err, "food_form", nil)
			return
		}
		s.renderFoodForm(w, r, errors.HTTPStatus(err), food, errors.Message(err))
		return
	}

	s.setFlash(r, fmt.Sprintf("Saved %s", saved.DisplayName()))
	http.Redirect(w, r, "/foods", http.StatusSeeOther)
}

func (s *WebServer) handleDeleteFood(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err, "error", nil)
		return
	}
	if err := s.deps.Catalog.DeleteFood(r.Context(), credentials(r), id); err != nil {
		s.fail(w, r, err, "error", nil)
		return
	}
	s.setFlash(r, "Food deleted")
	http.Redirect(w, r, "/foods", http.StatusSeeOther)
}

func (s *WebServer) renderFoodForm(w http.ResponseWriter, r *http.Request, status int, food nutrition.Food, errMsg string) {
	title := "New food - TrackEats"
	action := "/foods"
	if food.ID != 0 {
		title = "Edit food - TrackEats"
		action = fmt.Sprintf("/foods/%d", food.ID)
	}
	s.render(w, r, status, "food_form", map[string]interface{}{
		"Title":  title,
		"Action": action,
		"Food":   food,
		"Fields": nutritionInputs(food.Nutrition),
		"Error":  errMsg,
	})
}

// nutritionInput is one editable nutrition value on the food form
type nutritionInput struct {
	Name  string
	Label string
	Unit  string
	Value float64
}

var nutritionFormNames = []string{
	"calories", "total_fat", "saturated_fat", "trans_fat", "cholesterol",
	"sodium", "total_carbs", "fiber", "total_sugar", "added_sugar",
	"protein", "vitamin_d", "calcium", "iron", "potassium",
}

func nutritionInputs(n nutrition.Nutrition) []nutritionInput {
	fields := n.Fields()
	inputs := make([]nutritionInput, len(fields))
	for i, f := range fields {
		inputs[i] = nutritionInput{Name: nutritionFormNames[i], Label: f.Label, Unit: f.Unit, Value: f.Value}
	}
	return inputs
}

// parseFood reads the food form. The returned food carries every value that
// parsed so the form can be shown again on error.
func parseFood(r *http.Request) (nutrition.Food, error) {
	p := formParser{r: r}
	food := nutrition.Food{
		Group:           strings.TrimSpace(r.PostFormValue("group")),
		Name:            strings.TrimSpace(r.PostFormValue("name")),
		Subtype:         strings.TrimSpace(r.PostFormValue("subtype")),
		Description:     strings.TrimSpace(r.PostFormValue("description")),
		Vendor:          strings.TrimSpace(r.PostFormValue("vendor")),
		SizeDescription: strings.TrimSpace(r.PostFormValue("size_description")),
		SizeOz:          p.float("size_oz", "Size (oz)"),
		SizeG:           p.float("size_g", "Size (g)"),
		Servings:        p.float("servings", "Servings"),
		Price:           p.float("price", "Price"),
		PriceDate:       strings.TrimSpace(r.PostFormValue("price_date")),
	}

	values := make([]float64, len(nutritionFormNames))
	labels := nutrition.Nutrition{}.Fields()
	for i, name := range nutritionFormNames {
		values[i] = p.float(name, labels[i].Label)
	}
	food.Nutrition = nutrition.Nutrition{
		Calories: values[0], TotalFat: values[1], SaturatedFat: values[2], TransFat: values[3],
		Cholesterol: values[4], Sodium: values[5], TotalCarbs: values[6], Fiber: values[7],
		TotalSugar: values[8], AddedSugar: values[9], Protein: values[10], VitaminD: values[11],
		Calcium: values[12], Iron: values[13], Potassium: values[14],
	}

	return food, p.err()
}

// formParser collects the names of numeric fields that failed to parse.
// NaN and infinities count as failures.
type formParser struct {
	r       *http.Request
	invalid []string
}

func (p *formParser) float(name, label string) float64 {
	raw := strings.TrimSpace(p.r.PostFormValue(name))
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		p.invalid = append(p.invalid, label)
		return 0
	}
	return v
}

func (p *formParser) err() error {
	if len(p.invalid) == 0 {
		return nil
	}
	return errors.NewAppError(errors.CodeValidationFailed, "Validation failed",
		"not a number: "+strings.Join(p.invalid, ", "))
}
