package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/vente_shop/pkg/logging"
	"github.com/Skotchmaster/vente_shop/services/cart/internal/models"
	"github.com/Skotchmaster/vente_shop/services/cart/internal/repo"
)

var (
	ErrValidation   = errors.New("validation")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("authentication required")
	ErrConflict     = errors.New("conflict")
)

const maxQuantity = 999

type CartService struct {
	Store repo.Store
}

type Cart struct {
	Lines      []models.Line `json:"items"`
	TotalItems int           `json:"total_items"`
}

func newCart(lines []models.Line) *Cart {
	c := &Cart{Lines: lines}
	for _, l := range lines {
		c.TotalItems += l.Quantity
	}
	return c
}

func (s *CartService) GetCart(ctx context.Context, owner models.Owner) (*Cart, error) {
	lines, err := s.Store.Lines(ctx, owner.Key())
	if err != nil {
		return nil, err
	}
	return newCart(lines), nil
}

// normalize checks the line and fills the default rental period.
func normalize(owner models.Owner, l *models.Line) error {
	switch l.Type {
	case models.TypeProduct:
		if l.Days != 0 {
			return fmt.Errorf("%w: days only apply to equipment", ErrValidation)
		}
	case models.TypeEquipment:
		if !owner.Authenticated() {
			return ErrUnauthorized
		}
		if l.Days == 0 {
			l.Days = 1
		}
		if l.Days < 0 {
			return fmt.Errorf("%w: days must be positive", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: type must be product or equipment", ErrValidation)
	}
	if l.ID == 0 {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if l.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if l.Quantity > maxQuantity {
		return fmt.Errorf("%w: quantity is limited to %d", ErrValidation, maxQuantity)
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, repo.ErrConflict) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

// Add increases the quantity of an existing line. Days are replaced.
func (s *CartService) Add(ctx context.Context, owner models.Owner, line models.Line) (*models.Line, error) {
	if err := normalize(owner, &line); err != nil {
		return nil, err
	}

	var stored models.Line
	err := s.Store.Update(ctx, owner.Key(), line.Field(), func(cur *models.Line) (*models.Line, error) {
		stored = line
		if cur != nil {
			stored.Quantity += cur.Quantity
		}
		if stored.Quantity > maxQuantity {
			return nil, fmt.Errorf("%w: quantity is limited to %d", ErrValidation, maxQuantity)
		}
		return &stored, nil
	})
	if err != nil {
		return nil, translate(err)
	}

	logging.FromContext(ctx).Debug("cart_line_added", "field", line.Field(), "quantity", stored.Quantity)
	return &stored, nil
}

// Update sets quantity and days of an existing line.
func (s *CartService) Update(ctx context.Context, owner models.Owner, line models.Line) (*models.Line, error) {
	if err := normalize(owner, &line); err != nil {
		return nil, err
	}

	err := s.Store.Update(ctx, owner.Key(), line.Field(), func(cur *models.Line) (*models.Line, error) {
		if cur == nil {
			return nil, fmt.Errorf("%w: item is not in the cart", ErrNotFound)
		}
		return &line, nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return &line, nil
}

func (s *CartService) Remove(ctx context.Context, owner models.Owner, itemType string, id uint) error {
	return translate(s.Store.Update(ctx, owner.Key(), models.Field(itemType, id), func(cur *models.Line) (*models.Line, error) {
		if cur == nil {
			return nil, fmt.Errorf("%w: item is not in the cart", ErrNotFound)
		}
		return nil, nil
	}))
}

func (s *CartService) Clear(ctx context.Context, owner models.Owner) error {
	return s.Store.Clear(ctx, owner.Key())
}

// Merge moves an anonymous session cart into the user's cart. Quantities
// are summed, the longer rental period wins, and the session cart is removed.
func (s *CartService) Merge(ctx context.Context, userID uint, sessionID string) (*Cart, error) {
	user := models.Owner{UserID: userID}
	if !user.Authenticated() {
		return nil, ErrUnauthorized
	}

	if sessionID != "" {
		session := models.Owner{SessionID: sessionID}
		lines, err := s.Store.Lines(ctx, session.Key())
		if err != nil {
			return nil, err
		}

		for _, in := range lines {
			err := s.Store.Update(ctx, user.Key(), in.Field(), func(cur *models.Line) (*models.Line, error) {
				merged := in
				if cur != nil {
					merged.Quantity += cur.Quantity
					merged.Days = max(cur.Days, in.Days)
				}
				if merged.Quantity > maxQuantity {
					merged.Quantity = maxQuantity
				}
				return &merged, nil
			})
			if err != nil {
				return nil, translate(err)
			}
		}

		if err := s.Store.Clear(ctx, session.Key()); err != nil {
			return nil, err
		}
		logging.FromContext(ctx).Info("cart_merged", "user_id", userID, "lines", len(lines))
	}

	return s.GetCart(ctx, user)
}
