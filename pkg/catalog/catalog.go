package catalog

import (
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/apperrors"
)

const (
	DISH_TYPE_VEG    = "veg"
	DISH_TYPE_NONVEG = "non-veg"
)

var ErrDishNotFound = apperrors.New(apperrors.KindNotFound, "dish not found")

type Dish struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Ingredients []string `json:"ingredients"`
	// CookingTime in minutes
	CookingTime int `json:"cookingTime"`
}

//go:embed dishes.json
var dishesData []byte

// Catalog is the static dish collection shipped with the app.
type Catalog struct {
	dishes []Dish
	byID   map[int]Dish
}

func Load() (*Catalog, error) {
	return loadFrom(dishesData)
}

func loadFrom(data []byte) (*Catalog, error) {
	var dishes []Dish
	if err := json.Unmarshal(data, &dishes); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "could not decode dish data", err)
	}

	byID := make(map[int]Dish, len(dishes))
	for _, d := range dishes {
		byID[d.ID] = d
	}
	return &Catalog{dishes: dishes, byID: byID}, nil
}

// All returns every dish in catalog order.
func (c *Catalog) All() []Dish {
	return c.dishes
}

func (c *Catalog) ByID(id int) (Dish, error) {
	dish, ok := c.byID[id]
	if !ok {
		return Dish{}, ErrDishNotFound
	}
	return dish, nil
}

// ByType filters by veg / non-veg. An empty type returns everything.
func (c *Catalog) ByType(dishType string) []Dish {
	if dishType == "" {
		return c.dishes
	}
	var out []Dish
	for _, d := range c.dishes {
		if d.Type == dishType {
			out = append(out, d)
		}
	}
	return out
}

// Search matches the query against dish names and ingredients, case
// insensitively.
func (c *Catalog) Search(query string) []Dish {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return c.dishes
	}

	var out []Dish
	for _, d := range c.dishes {
		if strings.Contains(strings.ToLower(d.Name), query) {
			out = append(out, d)
			continue
		}
		for _, ing := range d.Ingredients {
			if strings.Contains(strings.ToLower(ing), query) {
				out = append(out, d)
				break
			}
		}
	}
	return out
}
