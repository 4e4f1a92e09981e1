package httpserver

import (
	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/vente_shop/pkg/middleware/auth"
)

type Deps struct {
	CatalogHandler *CatalogHTTP
	Auth           *middleware.Authenticator
}

func Register(e *echo.Echo, d *Deps) {
	catalog := e.Group("/catalog")
	catalog.GET("/search", d.CatalogHandler.Search)
	catalog.GET("/categories", d.CatalogHandler.ListCategories)

	products := catalog.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	equipment := catalog.Group("/equipment")
	equipment.GET("", d.CatalogHandler.ListEquipment)
	equipment.GET("/:id", d.CatalogHandler.GetEquipment)

	adminProducts := products.Group("", d.Auth.RequireAdmin)
	adminProducts.POST("", d.CatalogHandler.CreateProduct)
	adminProducts.PATCH("/:id", d.CatalogHandler.PatchProduct)
	adminProducts.DELETE("/:id", d.CatalogHandler.DeleteProduct)

	adminEquipment := equipment.Group("", d.Auth.RequireAdmin)
	adminEquipment.POST("", d.CatalogHandler.CreateEquipment)
	adminEquipment.PATCH("/:id", d.CatalogHandler.PatchEquipment)
	adminEquipment.DELETE("/:id", d.CatalogHandler.DeleteEquipment)

	adminCategories := catalog.Group("/categories", d.Auth.RequireAdmin)
	adminCategories.POST("", d.CatalogHandler.CreateCategory)
	adminCategories.DELETE("/:id", d.CatalogHandler.DeleteCategory)
}
