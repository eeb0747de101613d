package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studio-desk/dto"
	"github.com/studio-desk/middleware"
	"github.com/studio-desk/services"
)

// AuthController handles sign-in state endpoints
type AuthController struct {
	auth          *services.AuthService
	secureCookies bool
}

func NewAuthController(auth *services.AuthService, secureCookies bool) *AuthController {
	return &AuthController{auth: auth, secureCookies: secureCookies}
}

// RegisterPublicRoutes registers endpoints reachable without a session
func (ac *AuthController) RegisterPublicRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", ac.Register)
		auth.POST("/login", ac.Login)
	}
}

// RegisterRoutes registers session-gated endpoints
func (ac *AuthController) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/logout", ac.Logout)
		auth.POST("/refresh", ac.Refresh)
		auth.GET("/session", ac.GetSession)
		auth.GET("/me", ac.GetMe)
	}
	router.GET("/me", ac.GetMe)
	router.PATCH("/me", ac.UpdateMe)
}

// Register handles user registration
func (ac *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bind(c, &req) {
		return
	}

	user, err := ac.auth.Register(c.Request.Context(), req)
	if err != nil {
		mutationError(c, err)
		return
	}
	success(c, http.StatusCreated, user)
}

// Login handles user authentication
func (ac *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bind(c, &req) {
		return
	}

	authResponse, err := ac.auth.Login(c.Request.Context(), req)
	if err != nil {
		mutationError(c, err)
		return
	}

	ac.setCookie(c, authResponse)
	// Also return token in response body for clients that prefer Bearer auth
	success(c, http.StatusOK, authResponse)
}

// Logout revokes the current session and clears the cookie.
// With ?scope=global every session of the user is revoked.
func (ac *AuthController) Logout(c *gin.Context) {
	session, _ := middleware.CurrentSession(c)
	signOut := ac.auth.SignOut
	if c.Query("scope") == "global" {
		signOut = ac.auth.SignOutEverywhere
	}
	if err := signOut(c.Request.Context(), session); err != nil {
		mutationError(c, err)
		return
	}

	middleware.ClearAccessCookie(c)
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Logged out successfully",
	})
}

// Refresh extends the current session and issues a fresh token
func (ac *AuthController) Refresh(c *gin.Context) {
	session, _ := middleware.CurrentSession(c)
	user, _ := middleware.CurrentUser(c)

	authResponse, err := ac.auth.Refresh(c.Request.Context(), session, user)
	if err != nil {
		mutationError(c, err)
		return
	}
	ac.setCookie(c, authResponse)
	success(c, http.StatusOK, authResponse)
}

// GetSession reports the active session and its user
func (ac *AuthController) GetSession(c *gin.Context) {
	session, _ := middleware.CurrentSession(c)
	user, _ := middleware.CurrentUser(c)
	success(c, http.StatusOK, gin.H{"session": session, "user": user})
}

// GetMe returns the current user with what they can see and do
func (ac *AuthController) GetMe(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	user, _ := middleware.CurrentUser(c)

	success(c, http.StatusOK, dto.MeResponse{
		User:               user,
		UserType:           caps.UserType,
		IsAdmin:            caps.IsAdmin,
		IsClient:           caps.IsClient(),
		CanCreateProject:   caps.CanCreateProject(),
		CanViewConsultants: caps.CanViewConsultants(),
		CanViewAdmin:       caps.CanViewAdmin(),
		Tabs:               caps.Tabs(),
	})
}

// UpdateMe edits the current user's own profile
func (ac *AuthController) UpdateMe(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if !bind(c, &req) {
		return
	}
	current, _ := middleware.CurrentUser(c)
	user, err := ac.auth.UpdateProfile(c.Request.Context(), current.ID, req)
	if err != nil {
		mutationError(c, err)
		return
	}
	success(c, http.StatusOK, user)
}

func (ac *AuthController) setCookie(c *gin.Context, resp dto.AuthResponse) {
	maxAge := int(time.Until(resp.ExpiresAt).Seconds())
	c.SetCookie(
		middleware.AccessTokenCookie,
		resp.Token,
		maxAge,
		"/",
		"",
		ac.secureCookies,
		true,
	)
}
