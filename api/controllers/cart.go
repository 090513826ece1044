package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/rocketcart/api/middleware"
	"github.com/angelmondragon/rocketcart/api/responses"
	"github.com/angelmondragon/rocketcart/api/validators"
	"github.com/angelmondragon/rocketcart/internal/cart"
	"github.com/angelmondragon/rocketcart/internal/notifications"
	"github.com/angelmondragon/rocketcart/internal/session"
	pkgerrors "github.com/angelmondragon/rocketcart/pkg/errors"
	"github.com/angelmondragon/rocketcart/pkg/logger"
)

// SessionProvider resolves the cart session bound to a request.
type SessionProvider interface {
	Get(ctx context.Context, sessionID string) (*session.Session, error)
	End(ctx context.Context, sessionID string) error
}

type addItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,min=1"`
}

type updateAmountRequest struct {
	Amount *int `json:"amount" validate:"required"`
}

type cartResponse struct {
	Items         cart.Cart               `json:"items"`
	Notifications []notifications.Message `json:"notifications"`
}

type outcomeResponse struct {
	Kind    cart.OutcomeKind `json:"kind"`
	Message string           `json:"message,omitempty"`
}

type mutationResponse struct {
	Cart          cart.Cart               `json:"cart"`
	Outcome       outcomeResponse         `json:"outcome"`
	Notifications []notifications.Message `json:"notifications"`
}

// CartFetch returns the session cart and any pending notifications. A client
// without a session gets an empty cart and no session is opened for it.
func CartFetch(sessions SessionProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if middleware.SessionIssuedFromContext(r.Context()) {
			responses.WriteSuccess(w, cartResponse{
				Items:         cart.Cart{},
				Notifications: []notifications.Message{},
			})
			return
		}
		s, err := sessionFor(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartResponse{
			Items:         s.Cart.Cart(),
			Notifications: s.Inbox.Drain(),
		})
	}
}

// CartAddItem adds one unit of a product.
func CartAddItem(sessions SessionProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		s, err := sessionFor(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeMutation(w, s, s.Cart.AddProduct(r.Context(), payload.ProductID))
	}
}

// CartRemoveItem drops a product from the cart.
func CartRemoveItem(sessions SessionProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		s, err := sessionFor(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeMutation(w, s, s.Cart.RemoveProduct(r.Context(), productID))
	}
}

// CartUpdateItem sets a product's amount.
func CartUpdateItem(sessions SessionProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateAmountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		s, err := sessionFor(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := s.Cart.UpdateProductAmount(r.Context(), cart.UpdateAmountInput{
			ProductID: productID,
			Amount:    *payload.Amount,
		})
		writeMutation(w, s, out)
	}
}

// CartClear ends the session and deletes its persisted cart.
func CartClear(sessions SessionProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart sessions unavailable"))
			return
		}
		if err := sessions.End(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
			if pkgerrors.As(err) == nil {
				err = pkgerrors.Wrap(pkgerrors.CodeValidation, err, "cart session is required")
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartResponse{
			Items:         cart.Cart{},
			Notifications: []notifications.Message{},
		})
	}
}

// writeMutation always answers 200; the outcome and notifications tell the
// client whether the cart changed.
func writeMutation(w http.ResponseWriter, s *session.Session, out cart.Outcome) {
	responses.WriteSuccess(w, mutationResponse{
		Cart:          s.Cart.Cart(),
		Outcome:       outcomeResponse{Kind: out.Kind, Message: out.Message},
		Notifications: s.Inbox.Drain(),
	})
}

func sessionFor(r *http.Request, sessions SessionProvider) (*session.Session, error) {
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart sessions unavailable")
	}
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session is required")
	}
	s, err := sessions.Get(r.Context(), sessionID)
	if err != nil {
		if pkgerrors.As(err) == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open cart session")
		}
		return nil, err
	}
	return s, nil
}
