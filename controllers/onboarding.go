package controllers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookingpro-backend/services"
	"bookingpro-backend/utils"
)

// maxStepBody bounds the payload of one onboarding step.
const maxStepBody = 64 << 10

type OnboardingController struct {
	Onboarding *services.OnboardingService
}

func (oc *OnboardingController) GetStatus(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	status, err := oc.Onboarding.Get(c.Request.Context(), uid)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, status)
}

// SubmitStep takes the step's payload as the raw request body. Its shape
// depends on the step, so decoding is left to the onboarding service.
func (oc *OnboardingController) SubmitStep(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid step number")
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxStepBody))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Failed to read request body")
		return
	}

	status, err := oc.Onboarding.SubmitStep(c.Request.Context(), uid, step, body)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, status)
}

// Reset starts onboarding over. Owners only.
func (oc *OnboardingController) Reset(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	status, err := oc.Onboarding.Reset(c.Request.Context(), uid)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, status, "Onboarding reset")
}
