package http

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tiendatech/storefront/internal/auth"
	"github.com/tiendatech/storefront/internal/entities"
)

// ProductStore defines database operations for the product catalog.
type ProductStore interface {
	List(limit, offset int) ([]entities.Product, int64, error)
	GetByID(id uint) (*entities.Product, error)
	Create(product *entities.Product) (*entities.Product, error)
	Update(id uint, updates map[string]any) (*entities.Product, error)
	Delete(id uint) (bool, error)
}

// ProductAuditor records catalog mutations.
type ProductAuditor interface {
	LogProduct(userID uint, action string, productID uint, name string)
}

type ProductsController struct {
	store   ProductStore
	auditor ProductAuditor
}

func NewProductsController(store ProductStore, auditor ProductAuditor) *ProductsController {
	return &ProductsController{store: store, auditor: auditor}
}

// RegisterRoutes registers catalog routes. Reads are public; mutations sit
// under the gated admin API prefix.
func (pc *ProductsController) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/products", pc.ListProducts)
	router.GET("/api/products/:id", pc.GetProduct)
	router.POST("/api/admin/products", pc.CreateProduct)
	router.PUT("/api/admin/products/:id", pc.UpdateProduct)
	router.DELETE("/api/admin/products/:id", pc.DeleteProduct)
}

// ListProducts returns a page of products
// GET /api/products?page=1&limit=9
func (pc *ProductsController) ListProducts(c *gin.Context) {
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	products, total, err := pc.store.List(limit, offset)
	if err != nil {
		respondInternalError(c, err, "list products")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       products,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	})
}

// GetProduct returns a single product
// GET /api/products/:id
func (pc *ProductsController) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := pc.store.GetByID(id)
	if err != nil {
		respondInternalError(c, err, "get product")
		return
	}
	if product == nil {
		respondNotFound(c, "product")
		return
	}

	c.JSON(http.StatusOK, product)
}

type productRequest struct {
	Name        string  `json:"name" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Stock       int     `json:"stock" binding:"gte=0"`
	Description string  `json:"description"`
	Brand       string  `json:"brand"`
	Model       string  `json:"model"`
	Color       string  `json:"color"`
	Warranty    string  `json:"warranty"`
	ImageURL    string  `json:"image_url"`
}

// CreateProduct adds a product to the catalog
// POST /api/admin/products
func (pc *ProductsController) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name, category and a positive price are required")
		return
	}

	product, err := pc.store.Create(&entities.Product{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		Description: req.Description,
		Brand:       req.Brand,
		Model:       req.Model,
		Color:       req.Color,
		Warranty:    req.Warranty,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondInternalError(c, err, "create product")
		return
	}

	if pc.auditor != nil {
		pc.auditor.LogProduct(auth.GetUserID(c), "product_create", product.ID, product.Name)
	}

	respondCreated(c, product)
}

// UpdateProduct modifies an existing product
// PUT /api/admin/products/:id
func (pc *ProductsController) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name, category and a positive price are required")
		return
	}

	product, err := pc.store.Update(id, map[string]any{
		"name":        req.Name,
		"category":    req.Category,
		"price":       req.Price,
		"stock":       req.Stock,
		"description": req.Description,
		"brand":       req.Brand,
		"model":       req.Model,
		"color":       req.Color,
		"warranty":    req.Warranty,
		"image_url":   req.ImageURL,
	})
	if err != nil {
		respondInternalError(c, err, "update product")
		return
	}
	if product == nil {
		respondNotFound(c, "product")
		return
	}

	if pc.auditor != nil {
		pc.auditor.LogProduct(auth.GetUserID(c), "product_update", product.ID, product.Name)
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product from the catalog
// DELETE /api/admin/products/:id
func (pc *ProductsController) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	deleted, err := pc.store.Delete(id)
	if err != nil {
		respondInternalError(c, err, "delete product")
		return
	}
	if !deleted {
		respondNotFound(c, "product")
		return
	}

	if pc.auditor != nil {
		pc.auditor.LogProduct(auth.GetUserID(c), "product_delete", id, "")
	}

	respondSuccess(c, "product deleted")
}
