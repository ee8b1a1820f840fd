package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"webmaker-events-api/middleware"
	"webmaker-events-api/models"
	"webmaker-events-api/services"
	"webmaker-events-api/utils"
)

type ConfirmationController struct {
	db    *gorm.DB
	users services.IdentityClient
}

func NewConfirmationController(db *gorm.DB, users services.IdentityClient) *ConfirmationController {
	return &ConfirmationController{db: db, users: users}
}

type confirmationBody struct {
	Confirmation string `json:"confirmation"`
}

// ConfirmMentor converts a pending mentor request into a mentor record, or
// flags it denied. The token is single-use: conversion deletes the request.
func (cc *ConfirmationController) ConfirmMentor(c *gin.Context) {
	user := middleware.SessionFromContext(c)

	var body confirmationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.SendValidationError(c, map[string]string{"body": err.Error()})
		return
	}
	confirmed := body.Confirmation == "yes"

	var request models.MentorRequest
	err := cc.db.Where("token = ?", c.Param("token")).First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.SendError(c, http.StatusNotFound, "No mentor request found for token")
		return
	}
	if err != nil {
		utils.SendDatastoreError(c, err)
		return
	}

	if request.Denied {
		utils.SendError(c, http.StatusForbidden, "Mentor request was already denied")
		return
	}

	if !confirmed {
		err := cc.db.Model(&request).Update("denied", true).Error
		if err != nil {
			utils.SendDatastoreError(c, err)
			return
		}
		utils.SendSuccess(c, "Mentor denied request", nil)
		return
	}

	// Confirm the invited address still maps to an account; the mentor
	// record uses the session identity in case the email differs.
	account, err := cc.users.ByEmail(c.Request.Context(), request.Email)
	if err != nil {
		utils.SendUpstreamError(c, "identity-service", err)
		return
	}
	if account == nil {
		utils.SendError(c, http.StatusNotFound, "No account found for mentor request email")
		return
	}

	mentor := models.Mentor{
		UserID:  user.ID,
		EventID: request.EventID,
	}
	if err := cc.db.Create(&mentor).Error; err != nil {
		utils.SendDatastoreError(c, err)
		return
	}

	if err := cc.db.Delete(&request).Error; err != nil {
		utils.SendDatastoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, mentor)
}

// VerifyToken checks whether a mentor-request token is still valid for an
// event, so the frontend can render the right confirmation page.
func (cc *ConfirmationController) VerifyToken(c *gin.Context) {
	eventID := c.Query("eventId")
	if eventID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "eventId param is required"})
		return
	}
	id, err := strconv.ParseUint(eventID, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "eventId must be numeric"})
		return
	}

	var count int64
	err = cc.db.Model(&models.MentorRequest{}).
		Where("token = ? AND event_id = ? AND denied = ?", c.Param("token"), uint(id), false).
		Count(&count).Error
	if err != nil {
		utils.SendDatastoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": count > 0})
}
