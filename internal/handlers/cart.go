package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CartHandler struct {
	Cart *service.CartService
}

func principal(c echo.Context) (service.Principal, error) {
	p, ok := authmw.PrincipalFromContext(c)
	if !ok {
		return service.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return p, nil
}

func (h *CartHandler) GetCart(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	lines, err := h.Cart.List(c.Request().Context(), p.UserID)
	if err != nil {
		return serviceError(c, "get_cart", err)
	}
	return c.JSON(http.StatusOK, lines)
}

// AddToCart defaults quantidade to 1 when it is omitted.
func (h *CartHandler) AddToCart(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req transport.AddToCartRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	productID, err := parseNumber(req.ProductID, "produto_id")
	if err != nil {
		return err
	}
	qty := 1
	if req.Quantity != nil {
		if qty, err = parseNumber(*req.Quantity, "quantidade"); err != nil {
			return err
		}
	}
	if productID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "produto_id is required")
	}

	if err := h.Cart.Add(c.Request().Context(), p.UserID, uint(productID), qty); err != nil {
		return serviceError(c, "add_to_cart", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Produto adicionado ao carrinho"})
}

func (h *CartHandler) UpdateCartItem(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req transport.UpdateCartRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	qty, err := parseNumber(req.Quantity, "quantidade")
	if err != nil {
		return err
	}

	if err := h.Cart.UpdateQuantity(c.Request().Context(), p.UserID, id, qty); err != nil {
		return serviceError(c, "update_cart", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Carrinho atualizado"})
}

func (h *CartHandler) DeleteCartItem(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Cart.Remove(c.Request().Context(), p.UserID, id); err != nil {
		return serviceError(c, "remove_from_cart", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Item removido do carrinho"})
}
