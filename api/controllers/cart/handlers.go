package cart

import (
	"context"
	"net/http"

	"github.com/gmihail/shop/api/middleware"
	"github.com/gmihail/shop/api/responses"
	"github.com/gmihail/shop/api/validators"
	cartsvc "github.com/gmihail/shop/internal/cart"
	pkgerrors "github.com/gmihail/shop/pkg/errors"
	"github.com/gmihail/shop/pkg/logger"
)

// cartErrorMessage replaces the message of every non user-facing cart error.
const cartErrorMessage = "could not update cart"

const (
	statusRemoved         = "removed"
	statusItemUnavailable = "item_unavailable"
)

type cartPresenter interface {
	Build(ctx context.Context, items []cartsvc.Item) cartsvc.Cart
}

// CartFetch returns the caller's cart joined with catalog data.
func CartFetch(svc cartsvc.Service, presenter cartPresenter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || presenter == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListForUser(r.Context(), userID)
		if err != nil {
			responses.WriteErrorWithMessage(r.Context(), logg, w, err, cartErrorMessage)
			return
		}

		responses.WriteSuccess(w, newCartResponse(presenter.Build(r.Context(), items)))
	}
}

// CartCount reports the number of cart lines. Anonymous callers and store
// failures both read as an empty cart.
func CartCount(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" || svc == nil {
			responses.WriteSuccess(w, countResponse{Count: 0})
			return
		}

		count, err := svc.Count(r.Context(), userID)
		if err != nil {
			if logg != nil {
				logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "cart.count.failed")
			}
			count = 0
		}
		responses.WriteSuccess(w, countResponse{Count: count})
	}
}

// CartAddItem adds a product to the caller's cart, merging with an existing line.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.AddItem(r.Context(), userID, payload.ProductID, payload.quantity())
		if err != nil {
			responses.WriteErrorWithMessage(r.Context(), logg, w, err, cartErrorMessage)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newItemResponse(item))
	}
}

// CartUpdateItem overwrites the quantity of one of the caller's items. An item
// that no longer exists is reported as unavailable instead of failing.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := validators.ParseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := ownedItem(r.Context(), svc, userID, itemID); err != nil {
			writeItemError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateQuantity(r.Context(), itemID, payload.Quantity)
		if err != nil {
			writeItemError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newItemResponse(item))
	}
}

// CartRemoveItem deletes one of the caller's items. Missing and foreign items
// are ignored.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := validators.ParseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := ownedItem(r.Context(), svc, userID, itemID); err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				responses.WriteSuccess(w, statusResponse{Status: statusRemoved})
				return
			}
			responses.WriteErrorWithMessage(r.Context(), logg, w, err, cartErrorMessage)
			return
		}

		if err := svc.RemoveItem(r.Context(), itemID); err != nil {
			responses.WriteErrorWithMessage(r.Context(), logg, w, err, cartErrorMessage)
			return
		}

		responses.WriteSuccess(w, statusResponse{Status: statusRemoved})
	}
}

// ownedItem loads itemID and hides items owned by someone else behind NOT_FOUND.
func ownedItem(ctx context.Context, svc cartsvc.Service, userID string, itemID int64) (cartsvc.Item, error) {
	item, err := svc.GetItem(ctx, itemID)
	if err != nil {
		return cartsvc.Item{}, err
	}
	if item.UserID != userID {
		return cartsvc.Item{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return item, nil
}

func writeItemError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		responses.WriteSuccess(w, statusResponse{Status: statusItemUnavailable})
		return
	}
	responses.WriteErrorWithMessage(ctx, logg, w, err, cartErrorMessage)
}

func userIDFromContext(r *http.Request) (string, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return userID, nil
}
