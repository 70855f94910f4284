package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/pozinox/backend/internal/application/identity"
)

// APITokenHandler manages personal API tokens used by integrations
type APITokenHandler struct {
	BaseHandler
	tokenService *identityapp.APITokenService
}

// NewAPITokenHandler creates a new APITokenHandler
func NewAPITokenHandler(tokenService *identityapp.APITokenService) *APITokenHandler {
	return &APITokenHandler{tokenService: tokenService}
}

// Generate godoc
// @Summary      Generate an API token
// @Description  Issues a token valid for 30 days and invalidates the previous one. The token is shown only once.
// @Tags         api-token
// @Produce      json
// @Success      201 {object} APIResponse[identityapp.APITokenResponse]
// @Security     BearerAuth
// @Router       /auth/api-token [post]
func (h *APITokenHandler) Generate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	token, err := h.tokenService.Generate(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, token)
}

// Validate reports whether a token is currently valid
func (h *APITokenHandler) Validate(c *gin.Context) {
	var req identityapp.ValidateAPITokenRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.tokenService.Validate(c.Request.Context(), req.Token)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Revoke clears the signed-in user's token
func (h *APITokenHandler) Revoke(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if err := h.tokenService.Revoke(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
