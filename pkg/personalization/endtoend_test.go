package personalization

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/challenge"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/dualstore"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/messaging"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/session"
	"github.com/AbdullahSoftDev/Daily-Dish-img/pkg/usermanagement"
)

type capturedCode struct {
	code string
}

func (c *capturedCode) Send(ctx context.Context, address string, payload messaging.CodePayload) error {
	c.code = payload.Code
	return nil
}

// Full account lifecycle on one shared store: sign up with a
// verification code, log in, personalize, log out.
func TestAccountLifecycle(t *testing.T) {
	ctx := context.Background()

	local := dualstore.NewMemStore()
	adapter := dualstore.NewAdapter(dualstore.NewMemStore(), local)
	sender := &capturedCode{}
	sessions := session.NewBroadcaster()

	identity := usermanagement.NewIdentityService(adapter, challenge.NewStore(local), sender, sessions)
	personal := NewService(adapter, sessions)

	// sign up
	require.NoError(t, identity.RequestRegistrationCode(ctx, "cook@example.com"))
	require.NoError(t, identity.VerifyRegistrationCode(ctx, "cook@example.com", sender.code))
	_, err := identity.Register(ctx, "cook@example.com", "secret123", "Cook")
	require.NoError(t, err)

	// personalization stays locked before login
	_, err = personal.ToggleFavorite(ctx, 7, "Mutton Nihari")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// log in and personalize
	sess, err := identity.Login(ctx, "cook@example.com", "secret123")
	require.NoError(t, err)

	nowFavorite, err := personal.ToggleFavorite(ctx, 7, "Mutton Nihari")
	require.NoError(t, err)
	assert.True(t, nowFavorite)

	result, err := personal.AddToShoppingList(ctx, ShoppingItem{Name: "Basil"})
	require.NoError(t, err)
	assert.Equal(t, ItemAdded, result)

	_, err = personal.AddReview(ctx, 7, 5, "weeknight staple")
	require.NoError(t, err)

	// state is keyed by the account, not the session
	identity.Logout()
	assert.False(t, personal.IsFavorite(ctx, 7))

	sess2, err := identity.Login(ctx, "cook@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, sess.AccountID, sess2.AccountID)

	assert.True(t, personal.IsFavorite(ctx, 7))
	assert.Equal(t, 1, personal.ShoppingListCount(ctx))

	rating, err := personal.GetDishRating(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 5.0, rating.Average)
}
