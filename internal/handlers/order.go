package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type OrderHandler struct {
	Orders *service.OrderService
}

func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	order, err := h.Orders.PlaceOrder(c.Request().Context(), p.UserID)
	if err != nil {
		return serviceError(c, "place_order", err)
	}
	return c.JSON(http.StatusOK, transport.PlaceOrderResponse{
		Message: "Pedido realizado com sucesso",
		OrderID: order.ID,
		Total:   order.Total,
	})
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	orders, err := h.Orders.ListOrders(c.Request().Context(), p.UserID)
	if err != nil {
		return serviceError(c, "list_orders", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) ListOrderItems(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	items, err := h.Orders.ListItems(c.Request().Context(), p.UserID, id)
	if err != nil {
		return serviceError(c, "list_order_items", err)
	}
	return c.JSON(http.StatusOK, items)
}
