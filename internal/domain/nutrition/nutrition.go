// Package nutrition contains the core domain logic for foods, recipes and
// the ingredient ledger that keeps a recipe's running totals while it is
// being edited.
package nutrition

import "math"

// Nutrition holds nutrition-label values for one serving of the owning
// record. For a Recipe the stored vector is the whole-recipe total.
type Nutrition struct {
	Calories     float64 `json:"calories" yaml:"calories" validate:"gte=0"`
	TotalFat     float64 `json:"total_fat" yaml:"total_fat" validate:"gte=0"`
	SaturatedFat float64 `json:"saturated_fat" yaml:"saturated_fat" validate:"gte=0"`
	TransFat     float64 `json:"trans_fat" yaml:"trans_fat" validate:"gte=0"`
	Cholesterol  float64 `json:"cholesterol" yaml:"cholesterol" validate:"gte=0"` // mg
	Sodium       float64 `json:"sodium" yaml:"sodium" validate:"gte=0"`           // mg
	TotalCarbs   float64 `json:"total_carbs" yaml:"total_carbs" validate:"gte=0"`
	Fiber        float64 `json:"fiber" yaml:"fiber" validate:"gte=0"`
	TotalSugar   float64 `json:"total_sugar" yaml:"total_sugar" validate:"gte=0"`
	AddedSugar   float64 `json:"added_sugar" yaml:"added_sugar" validate:"gte=0"`
	Protein      float64 `json:"protein" yaml:"protein" validate:"gte=0"`
	VitaminD     float64 `json:"vitamin_d" yaml:"vitamin_d" validate:"gte=0"` // mcg
	Calcium      float64 `json:"calcium" yaml:"calcium" validate:"gte=0"`     // mg
	Iron         float64 `json:"iron" yaml:"iron" validate:"gte=0"`           // mg
	Potassium    float64 `json:"potassium" yaml:"potassium" validate:"gte=0"` // mg
}

// Field is a labelled nutrition value used for display.
type Field struct {
	Label string
	Unit  string
	Value float64
}

// fields returns pointers to every field in label order.
func (n *Nutrition) fields() [15]*float64 {
	return [15]*float64{
		&n.Calories,
		&n.TotalFat,
		&n.SaturatedFat,
		&n.TransFat,
		&n.Cholesterol,
		&n.Sodium,
		&n.TotalCarbs,
		&n.Fiber,
		&n.TotalSugar,
		&n.AddedSugar,
		&n.Protein,
		&n.VitaminD,
		&n.Calcium,
		&n.Iron,
		&n.Potassium,
	}
}

var fieldLabels = [15]struct{ label, unit string }{
	{"Calories", ""},
	{"Total Fat", "g"},
	{"Saturated Fat", "g"},
	{"Trans Fat", "g"},
	{"Cholesterol", "mg"},
	{"Sodium", "mg"},
	{"Total Carbohydrates", "g"},
	{"Dietary Fiber", "g"},
	{"Total Sugar", "g"},
	{"Added Sugar", "g"},
	{"Protein", "g"},
	{"Vitamin D", "mcg"},
	{"Calcium", "mg"},
	{"Iron", "mg"},
	{"Potassium", "mg"},
}

// Fields returns the labelled values in nutrition-label order.
func (n Nutrition) Fields() []Field {
	ptrs := n.fields()
	out := make([]Field, len(ptrs))
	for i, p := range ptrs {
		out[i] = Field{Label: fieldLabels[i].label, Unit: fieldLabels[i].unit, Value: *p}
	}
	return out
}

// Accumulate adds source*servings*modifier to target, field by field.
// A negative modifier reverses an earlier contribution. No rounding is
// applied.
func Accumulate(target *Nutrition, source Nutrition, servings, modifier float64) {
	dst := target.fields()
	src := source.fields()
	factor := servings * modifier
	for i := range dst {
		*dst[i] += *src[i] * factor
	}
}

// AccumulatePrice adds pricePerServing*servings*modifier to target.
func AccumulatePrice(target *float64, pricePerServing, servings, modifier float64) {
	*target += pricePerServing * servings * modifier
}

// Scale returns a copy of n with every field multiplied by k.
func (n Nutrition) Scale(k float64) Nutrition {
	out := n
	for _, p := range out.fields() {
		*p *= k
	}
	return out
}

// Divide returns n with every field divided by d. Dividing by zero yields
// the zero vector.
func (n Nutrition) Divide(d float64) Nutrition {
	if d == 0 {
		return Nutrition{}
	}
	return n.Scale(1 / d)
}

// Round rounds every field to the given number of decimal places.
func (n Nutrition) Round(places int) Nutrition {
	out := n
	for _, p := range out.fields() {
		*p = Round(*p, places)
	}
	return out
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
