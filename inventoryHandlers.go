package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opsdine/resto_backend/models"
	"github.com/opsdine/resto_backend/utils"
	"github.com/sirupsen/logrus"
)

func listInventoryHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := getServices()
		var items []*models.InventoryItem
		var err error
		if category := strings.TrimSpace(c.Query("category")); category != "" {
			items, err = s.ledger.ListByCategory(c.Request.Context(), category)
		} else {
			items, err = s.ledger.List(c.Request.Context())
		}
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

// lowStockEntry decorates an item with its display bucket.
type lowStockEntry struct {
	*models.InventoryItem
	Status string `json:"status"`
}

func lowStockHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := getServices()
		items, err := s.ledger.LowStock(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		entries := make([]lowStockEntry, 0, len(items))
		for _, item := range items {
			entries = append(entries, lowStockEntry{InventoryItem: item, Status: item.StockStatus()})
		}
		c.JSON(http.StatusOK, gin.H{"items": entries})
	}
}

func getInventoryHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		item, err := getServices().ledger.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func createInventoryHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewInventoryItem
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		item, err := getServices().ledger.Create(c.Request.Context(), &input)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

func updateInventoryHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var input models.UpdateInventoryItem
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		item, err := getServices().ledger.Update(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func adjustStockHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var adj models.StockAdjustment
		if err := c.ShouldBindJSON(&adj); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if adj.QuantityChange.IsZero() && adj.UnitPrice == nil && adj.TotalPrice == nil {
			respondError(c, logger, utils.NewValidationError("quantityChange"))
			return
		}
		item, err := getServices().ledger.AdjustStock(c.Request.Context(), id, &adj)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

type bulkUploadRequest struct {
	Data string `json:"data"`
}

func bulkUploadHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req bulkUploadRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Data) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "request body must carry CSV text in \"data\""})
			return
		}
		result, err := getServices().ledger.ImportCSV(c.Request.Context(), req.Data)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		resp := gin.H{"imported": result.Imported}
		if len(result.Errors) > 0 {
			resp["errors"] = result.Errors
		}
		c.JSON(http.StatusOK, resp)
	}
}

func exportInventoryHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := getServices().ledger.ExportXLSX(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		filename := fmt.Sprintf("inventory-%s.xlsx", time.Now().Format("2006-01-02"))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := f.Write(c.Writer); err != nil {
			respondError(c, logger, err)
		}
	}
}
