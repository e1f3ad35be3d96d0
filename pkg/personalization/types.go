package personalization

// Profile is the per-account personalization document.
type Profile struct {
	Favorites    []FavoriteEntry `json:"favorites"`
	ShoppingList []ShoppingItem  `json:"shoppingList"`
}

// FavoriteEntry is one favorited dish. Set semantics are keyed by
// DishID, insertion order is kept for display.
type FavoriteEntry struct {
	DishID  int    `json:"dishId"`
	Name    string `json:"name"`
	AddedAt int64  `json:"addedAt"`
}

type ShoppingItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Quantity  string `json:"quantity,omitempty"`
	Purchased bool   `json:"purchased"`
	AddedAt   int64  `json:"addedAt"`
}

// Review is one rating with comment for a dish. Reviews are stored per
// dish and shared between accounts.
type Review struct {
	ID          string `json:"id"`
	DishID      int    `json:"dishId"`
	AuthorName  string `json:"authorName"`
	AuthorEmail string `json:"authorEmail"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
	CreatedAt   int64  `json:"createdAt"`
}

// DishRating is the aggregate over all reviews of one dish.
type DishRating struct {
	// Average is rounded to one decimal place, 0 without reviews.
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// AddItemResult tells whether a shopping list add took effect.
type AddItemResult int

const (
	ItemAdded AddItemResult = iota
	ItemDuplicateIgnored
)

func (r AddItemResult) String() string {
	switch r {
	case ItemAdded:
		return "added"
	case ItemDuplicateIgnored:
		return "duplicateIgnored"
	default:
		return "unknown"
	}
}
