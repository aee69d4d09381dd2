package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opsdine/resto_backend/utils"
	"github.com/sirupsen/logrus"
)

type orderRequest struct {
	DishName  string `json:"dish_name" validate:"required,min=2"`
	OrderType string `json:"order_type" validate:"required,oneof=dine-in takeaway"`
}

// createOrderHandler runs fulfillment for one ordered dish. A recipe
// miss leaves inventory untouched; a mid-recipe deduction failure
// responds 409 with the partial result so the kitchen can reconcile.
func createOrderHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req orderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			respondError(c, logger, err)
			return
		}

		s := getServices()
		result, err := s.engine.Process(c.Request.Context(), req.DishName, req.OrderType)
		if err != nil {
			if result != nil && len(result.Applied) > 0 {
				// Partial fulfillment: some ingredients were already
				// deducted before the failure.
				c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "result": result})
				return
			}
			respondError(c, logger, err)
			return
		}

		s.dispatcher.OrderFulfilled(c.Request.Context(), result)
		c.JSON(http.StatusOK, result)
	}
}
