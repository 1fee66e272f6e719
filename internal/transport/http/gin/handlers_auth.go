package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kirinyoku/cinebook/internal/service"
	"github.com/kirinyoku/cinebook/internal/service/auth"
)

// @Summary  Sign up
// @Param    req body  SignUpRequest true "payload"
// @Success  201 {object} AuthResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "email taken"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /auth/sign-up [post]
func handleSignUp(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignUpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svcs.Auth.SignUp(c.Request.Context(), req.Email, req.Password, req.Username)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeAuthResult(c, http.StatusCreated, res)
	}
}

// @Summary  Sign in
// @Param    req body  SignInRequest true "payload"
// @Success  200 {object} AuthResponse
// @Failure  401 {object} ErrorResponse
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /auth/sign-in [post]
func handleSignIn(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignInRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svcs.Auth.SignIn(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeAuthResult(c, http.StatusOK, res)
	}
}

// @Summary  Sign out of the current session
// @Security BearerAuth
// @Success  204
// @Failure  401 {object} ErrorResponse
// @Router   /auth/session [delete]
func handleSignOut(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svcs.Auth.SignOut(c.Request.Context(), sessionSecret(c)); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Signed-in user
// @Security BearerAuth
// @Success  200 {object} UserResponse
// @Failure  401 {object} ErrorResponse
// @Router   /auth/me [get]
func handleMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := mapTo[UserResponse](currentUser(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// @Summary  Preferred city
// @Security BearerAuth
// @Success  200 {object} PreferredCityResponse
// @Router   /preferences/city [get]
func handleGetPreferredCity(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		city, ok, err := svcs.Selection.PreferredCity(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, PreferredCityResponse{City: city, Set: ok})
	}
}

// @Summary  Remember the preferred city
// @Description Later flows start with this city already selected. The city is also stored on the profile.
// @Security BearerAuth
// @Param    req body  CityRequest true "payload"
// @Success  200 {object} PreferredCityResponse
// @Failure  400 {object} ErrorResponse
// @Router   /preferences/city [put]
func handlePutPreferredCity(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		user := currentUser(c)
		if err := svcs.Selection.RememberCity(c.Request.Context(), user.ID, req.City); err != nil {
			respondErr(c, err)
			return
		}
		if _, err := svcs.Auth.UpdateCity(c.Request.Context(), user.ID, req.City); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, PreferredCityResponse{City: req.City, Set: true})
	}
}

func writeAuthResult(c *gin.Context, status int, res auth.Result) {
	user, err := mapTo[UserResponse](res.User)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(status, AuthResponse{User: user, Token: res.Secret, ExpiresAt: res.ExpiresAt})
}
