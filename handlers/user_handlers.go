package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fadhlanhapp/tripplanner-backend/middleware"
	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

const refreshTokenCookie = "refreshToken"

func setSessionCookies(c *gin.Context, resp *models.AuthResponse) {
	secure := gin.Mode() == gin.ReleaseMode
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, resp.AccessToken, 0, "/", "", secure, true)
	c.SetCookie(refreshTokenCookie, resp.RefreshToken, 0, "/", "", secure, true)
}

func clearSessionCookies(c *gin.Context) {
	secure := gin.Mode() == gin.ReleaseMode
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", secure, true)
}

// Register creates an account
func (h *Handler) Register(c *gin.Context) {
	var request models.RegisterRequest
	if !bindJSON(c, &request) {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	user, err := h.svc.Auth.Register(ctx, request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleCreated(c, user)
}

// Login starts a session and sets the token cookies
func (h *Handler) Login(c *gin.Context) {
	var request models.LoginRequest
	if !bindJSON(c, &request) {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	resp, err := h.svc.Auth.Login(ctx, request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	setSessionCookies(c, resp)
	utils.HandleSuccess(c, resp)
}

// RefreshToken rotates the session tokens. The refresh token comes from the
// cookie or the request body.
func (h *Handler) RefreshToken(c *gin.Context) {
	token, _ := c.Cookie(refreshTokenCookie)
	if token == "" {
		var request models.RefreshTokenRequest
		_ = c.ShouldBindJSON(&request)
		token = request.RefreshToken
	}
	if token == "" {
		utils.HandleError(c, utils.NewUnauthorizedError("Refresh token is required"))
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	resp, err := h.svc.Auth.Refresh(ctx, token)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	setSessionCookies(c, resp)
	utils.HandleSuccess(c, resp)
}

// Logout ends the session
func (h *Handler) Logout(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.svc.Auth.Logout(ctx, userID(c)); err != nil {
		utils.HandleError(c, err)
		return
	}
	clearSessionCookies(c)
	utils.HandleSuccess(c, gin.H{"message": "User logged out"})
}

// CurrentUser returns the caller's profile
func (h *Handler) CurrentUser(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	user, err := h.svc.Auth.CurrentUser(ctx, userID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, user)
}

// SearchUsers finds other users by name prefix
func (h *Handler) SearchUsers(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	users, err := h.svc.Auth.SearchUsers(ctx, userID(c), searchParameter(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, users)
}

// TripsCreated lists the trips the caller created
func (h *Handler) TripsCreated(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	trips, err := h.svc.Trips.TripsCreatedBy(ctx, userID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, trips)
}

// TripsJoined lists the trips the caller joined
func (h *Handler) TripsJoined(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	trips, err := h.svc.Trips.TripsJoinedBy(ctx, userID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, trips)
}

// Invitations lists the caller's pending invitations
func (h *Handler) Invitations(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	views, err := h.svc.Invitations.ForUser(ctx, userID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, views)
}

// AcceptInvitation joins the invitation's trip
func (h *Handler) AcceptInvitation(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	trip, err := h.svc.Invitations.Accept(ctx, c.Param("inviteId"), userID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, trip)
}

// DeclineInvitation drops the invitation
func (h *Handler) DeclineInvitation(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.svc.Invitations.Decline(ctx, c.Param("inviteId"), userID(c)); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, gin.H{"message": "Invitation declined"})
}
