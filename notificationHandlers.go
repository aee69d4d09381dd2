package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func listNotificationsHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		unreadOnly := strings.EqualFold(strings.TrimSpace(c.Query("unread")), "true")
		notifications, err := getServices().store.Notifications(c.Request.Context(), unreadOnly)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"notifications": notifications})
	}
}

func markNotificationReadHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		n, err := getServices().store.MarkNotificationRead(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, n)
	}
}
