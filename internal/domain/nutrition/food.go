package nutrition

// Food is a purchasable grocery item with label nutrition data. Nutrition
// is per serving; Price is for the whole package.
type Food struct {
	ID              int       `json:"id,omitempty" yaml:"id,omitempty"`
	Group           string    `json:"group" yaml:"group" validate:"max=100"`
	Name            string    `json:"name" yaml:"name" validate:"required,max=100"`
	Subtype         string    `json:"subtype" yaml:"subtype" validate:"max=100"`
	Description     string    `json:"description" yaml:"description" validate:"max=500"`
	Vendor          string    `json:"vendor" yaml:"vendor" validate:"max=100"`
	SizeDescription string    `json:"size_description" yaml:"size_description" validate:"max=100"`
	SizeOz          float64   `json:"size_oz" yaml:"size_oz" validate:"gte=0"`
	SizeG           float64   `json:"size_g" yaml:"size_g" validate:"gte=0"`
	Servings        float64   `json:"servings" yaml:"servings" validate:"gt=0"`
	Nutrition       Nutrition `json:"nutrition" yaml:"nutrition"`
	Price           float64   `json:"price" yaml:"price" validate:"gte=0"`
	PriceDate       string    `json:"price_date,omitempty" yaml:"price_date,omitempty"`
}

// PricePerServing returns Price / Servings, or 0 when Servings is 0.
func (f Food) PricePerServing() float64 {
	if f.Servings == 0 {
		return 0
	}
	return f.Price / f.Servings
}

// DisplayName returns "name, subtype", or just the name when there is no
// subtype.
func (f Food) DisplayName() string {
	if f.Subtype == "" {
		return f.Name
	}
	return f.Name + ", " + f.Subtype
}

// Validate checks the field constraints declared in the struct tags.
func (f Food) Validate() error {
	return validateStruct(f)
}
