package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/archiv-tools/linkliste/locale"
	"github.com/archiv-tools/linkliste/models"
	"github.com/archiv-tools/linkliste/site"
)

// Categories returns a handler for GET /api/v1/categories.
func Categories() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"categories": site.Categories})
	}
}

// GetSchema returns a handler for GET /api/v1/schema/:category.
// The discovered exposed-filter form is what a front-end renders its search
// widgets from; the optional ?locale=de|cs query selects the label language.
func GetSchema(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		cat, ok := site.ByKey(c.Param("category"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "unknown category: " + c.Param("category"),
				},
			})
			return
		}

		loc := locale.Locale(c.DefaultQuery("locale", string(locale.German)))
		if !loc.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "locale must be de or cs",
				},
			})
			return
		}

		sch, cerr := discoverSchema(c.Request.Context(), deps, cat, loc)
		if cerr != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": cerr.ToDetail()})
			return
		}

		c.JSON(http.StatusOK, sch)
	}
}
