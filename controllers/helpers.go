package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookingpro-backend/utils"
)

// organizationID reads the tenant of the authenticated user. It writes the
// error response itself when the claim is missing.
func organizationID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := utils.ContextUUID(c, "organizationId")
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Organization ID not found in context")
	}
	return id, ok
}

func userID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := utils.ContextUUID(c, "userId")
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
	}
	return id, ok
}

// paramID parses the :id path parameter.
func paramID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+what+" ID format")
		return uuid.Nil, false
	}
	return id, true
}
