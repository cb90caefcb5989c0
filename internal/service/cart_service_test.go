package service

import (
	"errors"
	"testing"

	"github.com/atlas-shop/internal/constants"
)

func TestCartAddItemMergesAndChecksStock(t *testing.T) {
	env := setupServiceTest(t)
	user := env.createUser(t, "cart@atlas.ma")
	product := env.createProduct(t, "sneaker", "450.00", true)
	env.createVariant(t, product.ID, "42", constants.ColorWhite, 3)

	first, err := env.cart.AddItem(AddCartItemInput{UserID: user.ID, ProductID: product.ID, Size: "42", Color: "white", Quantity: 2})
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	merged, err := env.cart.AddItem(AddCartItemInput{UserID: user.ID, ProductID: product.ID, Size: "42", Color: "WHITE", Quantity: 1})
	if err != nil {
		t.Fatalf("merge item failed: %v", err)
	}
	if merged.ID != first.ID || merged.Quantity != 3 {
		t.Fatalf("lines should merge into qty 3, got id=%d qty=%d", merged.ID, merged.Quantity)
	}

	_, err = env.cart.AddItem(AddCartItemInput{UserID: user.ID, ProductID: product.ID, Size: "42", Color: "WHITE", Quantity: 1})
	var stockErr *StockError
	if !errors.As(err, &stockErr) || !errors.Is(err, ErrInsufficientStock) || stockErr.Requested != 4 || stockErr.Available != 3 {
		t.Fatalf("want itemized stock error for merged qty, got %v", err)
	}

	if _, err := env.cart.AddItem(AddCartItemInput{UserID: user.ID, ProductID: product.ID, Size: "44", Color: "WHITE", Quantity: 1}); !errors.Is(err, ErrVariantNotFound) {
		t.Fatalf("want ErrVariantNotFound got %v", err)
	}

	view, err := env.cart.GetCart(user.ID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(view.Items) != 1 || view.Subtotal.String() != "1350.00" {
		t.Fatalf("unexpected cart view: %+v", view)
	}
}

func TestCartUpdateAndRemove(t *testing.T) {
	env := setupServiceTest(t)
	user := env.createUser(t, "cart2@atlas.ma")
	product := env.createProduct(t, "hat", "60.00", true)
	env.createVariant(t, product.ID, "", constants.ColorGreen, 2)

	item, err := env.cart.AddItem(AddCartItemInput{UserID: user.ID, ProductID: product.ID, Color: "green", Quantity: 1})
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if err := env.cart.UpdateItemQuantity(user.ID, item.ID, 5); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock got %v", err)
	}
	if err := env.cart.UpdateItemQuantity(user.ID, item.ID, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("want ErrValidation got %v", err)
	}
	if err := env.cart.UpdateItemQuantity(user.ID, item.ID, 2); err != nil {
		t.Fatalf("update quantity failed: %v", err)
	}

	other := env.createUser(t, "intruder@atlas.ma")
	if err := env.cart.RemoveItem(other.ID, item.ID); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("foreign cart item must not be removable, got %v", err)
	}
	if err := env.cart.RemoveItem(user.ID, item.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	view, _ := env.cart.GetCart(user.ID)
	if len(view.Items) != 0 || view.Subtotal.String() != "0.00" {
		t.Fatalf("cart should be empty: %+v", view)
	}
}

func TestCartRejectsInactiveProduct(t *testing.T) {
	env := setupServiceTest(t)
	user := env.createUser(t, "cart3@atlas.ma")
	product := env.createProduct(t, "retired", "10.00", true)
	env.db.Model(product).Update("is_active", false)

	if _, err := env.cart.AddItem(AddCartItemInput{UserID: user.ID, ProductID: product.ID, Quantity: 1}); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("want ErrProductNotFound got %v", err)
	}
}
