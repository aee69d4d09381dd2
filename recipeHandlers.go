package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/opsdine/resto_backend/models"
	"github.com/sirupsen/logrus"
)

func listRecipesHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := getServices()
		var recipes []*models.Recipe
		var err error
		switch {
		case strings.TrimSpace(c.Query("category")) != "":
			recipes, err = s.catalog.ListByCategory(c.Request.Context(), strings.TrimSpace(c.Query("category")))
		case strings.TrimSpace(c.Query("order_type")) != "":
			recipes, err = s.catalog.ListByOrderType(c.Request.Context(), strings.TrimSpace(c.Query("order_type")))
		default:
			recipes, err = s.catalog.List(c.Request.Context())
		}
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"recipes": recipes})
	}
}

func getRecipeHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		recipe, err := getServices().catalog.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, recipe)
	}
}

func createRecipeHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewRecipe
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		recipe, err := getServices().catalog.Create(c.Request.Context(), &input)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, recipe)
	}
}

func updateRecipeHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var input models.UpdateRecipe
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		recipe, err := getServices().catalog.Update(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, recipe)
	}
}

func listRecipeItemsHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		s := getServices()
		ingredients, err := s.catalog.IngredientsOf(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		cost := models.RecipeCost(ingredients)
		c.JSON(http.StatusOK, gin.H{
			"items":          ingredients,
			"estimated_cost": cost,
		})
	}
}

func addRecipeItemHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var input models.NewRecipeItem
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		item, err := getServices().catalog.AddIngredient(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

func updateRecipeItemHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var input models.UpdateRecipeItem
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		item, err := getServices().catalog.UpdateIngredient(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func deleteRecipeItemHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := getServices().catalog.RemoveIngredient(c.Request.Context(), id); err != nil {
			respondError(c, logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
