package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type AdminHandler struct {
	Admin *service.AdminService
}

// productInput reads the admin product form. Fields that are absent stay nil.
func productInput(c echo.Context) (transport.ProductInput, error) {
	var in transport.ProductInput

	params, err := c.FormParams()
	if err != nil {
		return in, echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	field := func(name string) *string {
		vs, ok := params[name]
		if !ok || len(vs) == 0 {
			return nil
		}
		v := vs[0]
		return &v
	}
	in.Name = field("nome")
	in.Description = field("descricao")
	in.Price = field("preco")
	in.Stock = field("estoque")
	in.Category = field("categoria")

	fh, err := c.FormFile("imagem")
	switch {
	case err == nil:
		in.Image = fh
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return in, echo.NewHTTPError(http.StatusBadRequest, "invalid image upload")
	}
	return in, nil
}

func (h *AdminHandler) ListProducts(c echo.Context) error {
	items, err := h.Admin.ListProducts(c.Request().Context())
	if err != nil {
		return serviceError(c, "admin_list_products", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *AdminHandler) CreateProduct(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "CreateProduct")

	in, err := productInput(c)
	if err != nil {
		l.Warn("create_product_failed", "status", http.StatusBadRequest, "reason", "bad form")
		return err
	}

	prod, err := h.Admin.CreateProduct(c.Request().Context(), in)
	if err != nil {
		return serviceError(c, "create_product", err)
	}

	l.Info("product_created", "product_id", prod.ID)
	return c.JSON(http.StatusOK, transport.CreatedResponse{Message: "Produto criado com sucesso", ID: prod.ID})
}

func (h *AdminHandler) UpdateProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	in, err := productInput(c)
	if err != nil {
		return err
	}

	if _, err := h.Admin.UpdateProduct(c.Request().Context(), id, in); err != nil {
		return serviceError(c, "update_product", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Produto atualizado com sucesso"})
}

func (h *AdminHandler) DeleteProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Admin.DeleteProduct(c.Request().Context(), id); err != nil {
		return serviceError(c, "delete_product", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Produto excluído com sucesso"})
}

func (h *AdminHandler) ListOrders(c echo.Context) error {
	orders, err := h.Admin.ListOrders(c.Request().Context())
	if err != nil {
		return serviceError(c, "admin_list_orders", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *AdminHandler) ListOrderItems(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	items, err := h.Admin.ListOrderItems(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, "admin_list_order_items", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req transport.StatusRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Status) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "status is required")
	}

	if _, err := h.Admin.UpdateOrderStatus(c.Request().Context(), id, req.Status); err != nil {
		return serviceError(c, "update_order_status", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Status atualizado com sucesso"})
}

func (h *AdminHandler) SavePromotion(c echo.Context) error {
	var req transport.PromotionRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	productID, err := parseNumber(req.ProductID, "produto_id")
	if err != nil {
		return err
	}
	if productID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "produto_id is required")
	}

	if _, err := h.Admin.SavePromotion(c.Request().Context(), uint(productID), req.Discount, req.ValidUntil); err != nil {
		return serviceError(c, "save_promotion", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Promoção criada com sucesso"})
}
