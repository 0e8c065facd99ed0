package handlers

import (
	"net/http"
	"strconv"

	"github.com/unrolled/render"
	"go.uber.org/zap"

	"github.com/webshop-go/storefront/app/models"
	"github.com/webshop-go/storefront/app/repositories"
	"github.com/webshop-go/storefront/app/utils/format"
)

const productPageSize = 20

type ProductHandler struct {
	productRepo repositories.ProductRepositoryImpl
	render      *render.Render
	log         *zap.SugaredLogger
}

func NewProductHandler(productRepo repositories.ProductRepositoryImpl, r *render.Render, log *zap.SugaredLogger) *ProductHandler {
	return &ProductHandler{
		productRepo: productRepo,
		render:      r,
		log:         log,
	}
}

type productView struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Slug       string   `json:"slug"`
	Price      string   `json:"price"`
	Stock      int      `json:"stock"`
	Categories []string `json:"categories"`
}

func newProductView(p *models.Product) productView {
	view := productView{
		ID:         p.ID,
		Name:       p.Name,
		Slug:       p.Slug,
		Price:      format.Money(p.Price),
		Stock:      p.Stock,
		Categories: []string{},
	}
	for _, category := range p.Categories {
		view.Categories = append(view.Categories, category.Slug)
	}
	return view
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	products, total, err := h.productRepo.GetPaginated(r.Context(), productPageSize, (page-1)*productPageSize)
	if err != nil {
		h.log.Errorw("product listing failed", "page", page, "error", err)
		_ = h.render.JSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load products"})
		return
	}

	views := make([]productView, 0, len(products))
	for i := range products {
		views = append(views, newProductView(&products[i]))
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]interface{}{
		"products": views,
		"total":    total,
		"page":     page,
	})
}
