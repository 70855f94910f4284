package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	identityapp "github.com/pozinox/backend/internal/application/identity"
)

// VerificationHandler handles email verification by code and by link
type VerificationHandler struct {
	BaseHandler
	verificationService *identityapp.VerificationService
}

// NewVerificationHandler creates a new VerificationHandler
func NewVerificationHandler(verificationService *identityapp.VerificationService) *VerificationHandler {
	return &VerificationHandler{verificationService: verificationService}
}

// SendCode godoc
// @Summary      Send a verification code
// @Description  Mails a 6-digit code valid for 10 minutes to an address that is not yet registered. "sent" is false when the mail could not be delivered.
// @Tags         verification
// @Accept       json
// @Produce      json
// @Param        request body identityapp.SendCodeRequest true "Email"
// @Success      200 {object} APIResponse[identityapp.SendCodeResult]
// @Failure      409 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /auth/verification/send-code [post]
func (h *VerificationHandler) SendCode(c *gin.Context) {
	var req identityapp.SendCodeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.verificationService.SendCode(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// VerifyCode godoc
// @Summary      Verify a code
// @Description  Accepts the latest code once, within 10 minutes and 5 attempts, and returns the email proof used at registration
// @Tags         verification
// @Accept       json
// @Produce      json
// @Param        request body identityapp.VerifyCodeRequest true "Email and code"
// @Success      200 {object} APIResponse[identityapp.VerifyCodeResult]
// @Failure      422 {object} ErrorResponse
// @Router       /auth/verification/verify-code [post]
func (h *VerificationHandler) VerifyCode(c *gin.Context) {
	var req identityapp.VerifyCodeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.verificationService.VerifyCode(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// VerifyLink consumes a link token mailed to an existing account
func (h *VerificationHandler) VerifyLink(c *gin.Context) {
	token, ok := parseUUIDParam(c, "token")
	if !ok {
		h.Error(c, http.StatusUnprocessableEntity, "VERIFICATION_TOKEN_INVALID", "Invalid verification link")
		return
	}
	user, err := h.verificationService.VerifyLink(c.Request.Context(), token)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Resend mails a fresh verification link to the signed-in user
func (h *VerificationHandler) Resend(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	result, err := h.verificationService.SendVerificationLink(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
