package personalization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/apperrors"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/dualstore"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/session"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/usermanagement/types"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/utils"
)

var (
	ErrUnauthenticated = apperrors.New(apperrors.KindAuth, "not logged in")
	ErrInvalidRating   = apperrors.New(apperrors.KindValidation, "rating must be between 1 and 5")
	ErrEmptyComment    = apperrors.New(apperrors.KindValidation, "comment must not be empty")
	ErrEmptyItemName   = apperrors.New(apperrors.KindValidation, "item name must not be empty")
	ErrItemIndex       = apperrors.New(apperrors.KindNotFound, "no shopping list item at this position")
)

// Service manages the favorites, shopping list and reviews of the
// account that currently holds the device session.
type Service struct {
	store    *dualstore.Adapter
	sessions *session.Broadcaster
	now      func() time.Time

	// serializes read-modify-write cycles within this process
	mu sync.Mutex
}

func NewService(store *dualstore.Adapter, sessions *session.Broadcaster) *Service {
	return &Service{
		store:    store,
		sessions: sessions,
		now:      time.Now,
	}
}

func profilePath(accountID string) string {
	return "users/" + accountID
}

func reviewsPath(dishID int) string {
	return "reviews/" + strconv.Itoa(dishID)
}

func (s *Service) currentSession() (*types.Session, error) {
	current := s.sessions.Current()
	if current == nil {
		return nil, ErrUnauthenticated
	}
	return current, nil
}

// ToggleFavorite adds the dish to the favorites, or removes it when
// already present. Returns whether the dish is a favorite afterwards.
func (s *Service) ToggleFavorite(ctx context.Context, dishID int, dishName string) (bool, error) {
	current, err := s.currentSession()
	if err != nil {
		return false, err
	}

	var nowFavorite bool
	err = s.updateProfile(ctx, current.AccountID, func(p *Profile) error {
		for i, entry := range p.Favorites {
			if entry.DishID == dishID {
				p.Favorites = append(p.Favorites[:i], p.Favorites[i+1:]...)
				nowFavorite = false
				return nil
			}
		}
		p.Favorites = append(p.Favorites, FavoriteEntry{
			DishID:  dishID,
			Name:    dishName,
			AddedAt: s.now().Unix(),
		})
		nowFavorite = true
		return nil
	})
	return nowFavorite, err
}

// IsFavorite reports whether the dish is in the favorites. Without a
// session it is simply false.
func (s *Service) IsFavorite(ctx context.Context, dishID int) bool {
	current, err := s.currentSession()
	if err != nil {
		return false
	}
	profile, err := s.readProfile(ctx, current.AccountID)
	if err != nil {
		return false
	}
	for _, entry := range profile.Favorites {
		if entry.DishID == dishID {
			return true
		}
	}
	return false
}

// Favorites returns the favorite entries in insertion order.
func (s *Service) Favorites(ctx context.Context) ([]FavoriteEntry, error) {
	current, err := s.currentSession()
	if err != nil {
		return nil, err
	}
	profile, err := s.readProfile(ctx, current.AccountID)
	if err != nil {
		return nil, err
	}
	return profile.Favorites, nil
}

// AddToShoppingList appends an item unless an item with the same
// normalized name is already on the list.
func (s *Service) AddToShoppingList(ctx context.Context, item ShoppingItem) (AddItemResult, error) {
	return s.addItem(ctx, item, false)
}

// ForceAddToShoppingList appends the item even when a duplicate exists.
func (s *Service) ForceAddToShoppingList(ctx context.Context, item ShoppingItem) error {
	_, err := s.addItem(ctx, item, true)
	return err
}

func (s *Service) addItem(ctx context.Context, item ShoppingItem, force bool) (AddItemResult, error) {
	current, err := s.currentSession()
	if err != nil {
		return ItemDuplicateIgnored, err
	}

	key := utils.NormalizeItemName(item.Name)
	if key == "" {
		return ItemDuplicateIgnored, ErrEmptyItemName
	}

	item.ID = uuid.NewString()
	item.Purchased = false
	item.AddedAt = s.now().Unix()

	result := ItemAdded
	err = s.updateProfile(ctx, current.AccountID, func(p *Profile) error {
		if !force {
			for _, existing := range p.ShoppingList {
				if utils.NormalizeItemName(existing.Name) == key {
					result = ItemDuplicateIgnored
					return errNoChange
				}
			}
		}
		p.ShoppingList = append(p.ShoppingList, item)
		return nil
	})
	return result, err
}

// RemoveFromShoppingList deletes and returns the item at the given
// position of the current snapshot.
func (s *Service) RemoveFromShoppingList(ctx context.Context, index int) (ShoppingItem, error) {
	current, err := s.currentSession()
	if err != nil {
		return ShoppingItem{}, err
	}

	var removed ShoppingItem
	err = s.updateProfile(ctx, current.AccountID, func(p *Profile) error {
		if index < 0 || index >= len(p.ShoppingList) {
			return ErrItemIndex
		}
		removed = p.ShoppingList[index]
		p.ShoppingList = append(p.ShoppingList[:index], p.ShoppingList[index+1:]...)
		return nil
	})
	return removed, err
}

// MarkPurchased flips the purchased state of the item at the given
// position.
func (s *Service) MarkPurchased(ctx context.Context, index int, purchased bool) error {
	current, err := s.currentSession()
	if err != nil {
		return err
	}

	return s.updateProfile(ctx, current.AccountID, func(p *Profile) error {
		if index < 0 || index >= len(p.ShoppingList) {
			return ErrItemIndex
		}
		p.ShoppingList[index].Purchased = purchased
		return nil
	})
}

// ShoppingList returns the current list in insertion order.
func (s *Service) ShoppingList(ctx context.Context) ([]ShoppingItem, error) {
	current, err := s.currentSession()
	if err != nil {
		return nil, err
	}
	profile, err := s.readProfile(ctx, current.AccountID)
	if err != nil {
		return nil, err
	}
	return profile.ShoppingList, nil
}

// ShoppingListCount returns the number of items, 0 without a session.
func (s *Service) ShoppingListCount(ctx context.Context) int {
	items, err := s.ShoppingList(ctx)
	if err != nil {
		return 0
	}
	return len(items)
}

// AddReview appends a review for a dish. Reviews are never edited or
// removed afterwards, and resubmitting creates a second review.
func (s *Service) AddReview(ctx context.Context, dishID int, rating int, comment string) (Review, error) {
	current, err := s.currentSession()
	if err != nil {
		return Review{}, err
	}
	if rating < 1 || rating > 5 {
		return Review{}, ErrInvalidRating
	}
	if comment == "" {
		return Review{}, ErrEmptyComment
	}

	review := Review{
		ID:          uuid.NewString(),
		DishID:      dishID,
		AuthorName:  current.DisplayName,
		AuthorEmail: current.Email,
		Rating:      rating,
		Comment:     comment,
		CreatedAt:   s.now().Unix(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.store.Write(ctx, reviewsPath(dishID), func(cur []byte, found bool) ([]byte, error) {
		var reviews []Review
		if found {
			if err := json.Unmarshal(cur, &reviews); err != nil {
				return nil, fmt.Errorf("could not decode reviews of dish %d: %w", dishID, err)
			}
		}
		reviews = append(reviews, review)
		return json.Marshal(reviews)
	})
	if err != nil {
		return Review{}, unwrapMutate(err)
	}
	return review, nil
}

// GetDishReviews returns all reviews of a dish, oldest first. Works
// without a session.
func (s *Service) GetDishReviews(ctx context.Context, dishID int) ([]Review, error) {
	data, err := s.store.Read(ctx, reviewsPath(dishID))
	if err != nil {
		if errors.Is(err, dualstore.ErrNotFound) {
			return []Review{}, nil
		}
		return nil, err
	}
	var reviews []Review
	if err := json.Unmarshal(data, &reviews); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "could not decode reviews", err)
	}
	return reviews, nil
}

// GetDishRating aggregates the reviews of a dish.
func (s *Service) GetDishRating(ctx context.Context, dishID int) (DishRating, error) {
	reviews, err := s.GetDishReviews(ctx, dishID)
	if err != nil {
		return DishRating{}, err
	}
	if len(reviews) == 0 {
		return DishRating{}, nil
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(reviews))
	return DishRating{
		Average: math.Round(avg*10) / 10,
		Count:   len(reviews),
	}, nil
}

// errNoChange aborts a profile update without surfacing an error.
var errNoChange = errors.New("no change")

func (s *Service) readProfile(ctx context.Context, accountID string) (Profile, error) {
	data, err := s.store.Read(ctx, profilePath(accountID))
	if err != nil {
		if errors.Is(err, dualstore.ErrNotFound) {
			return Profile{}, nil
		}
		return Profile{}, err
	}
	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return Profile{}, apperrors.Wrap(apperrors.KindInternal, "could not decode personalization profile", err)
	}
	return profile, nil
}

func (s *Service) updateProfile(ctx context.Context, accountID string, apply func(p *Profile) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.store.Write(ctx, profilePath(accountID), func(cur []byte, found bool) ([]byte, error) {
		var profile Profile
		if found {
			if err := json.Unmarshal(cur, &profile); err != nil {
				return nil, fmt.Errorf("could not decode personalization profile: %w", err)
			}
		}
		if err := apply(&profile); err != nil {
			return nil, err
		}
		return json.Marshal(profile)
	})
	if err != nil {
		err = unwrapMutate(err)
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	return nil
}

func unwrapMutate(err error) error {
	var me *dualstore.MutateError
	if errors.As(err, &me) {
		return me.Unwrap()
	}
	return err
}
