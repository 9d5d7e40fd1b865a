package controller

import (
	"log/slog"
	"net/http"

	"github.com/Vansh983/ai-ta/dao"
	"github.com/Vansh983/ai-ta/middleware"
	"github.com/Vansh983/ai-ta/model"
	"github.com/Vansh983/ai-ta/request"
	"github.com/Vansh983/ai-ta/response"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type AuthController struct {
	users *dao.UserDAO
}

func NewAuthController(users *dao.UserDAO) *AuthController {
	return &AuthController{users: users}
}

// Register creates an instructor account and returns a signed token.
func (ac *AuthController) Register(c *gin.Context) {
	var req request.UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	if req.Email == "" || req.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: "email and password are required",
		})
		return
	}

	existing, err := ac.users.ByEmail(c.Request.Context(), req.Email)
	if err != nil {
		slog.Error(ErrUserRegister.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrUserRegister.Error(),
		})
		return
	}
	if existing != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrEmailInUse.Error(),
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error(ErrUserRegister.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrUserRegister.Error(),
		})
		return
	}

	user := &model.User{
		Email:        req.Email,
		Name:         req.Name,
		Role:         model.RoleInstructor,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := ac.users.Create(c.Request.Context(), user); err != nil {
		slog.Error(ErrUserRegister.Error(), "email", req.Email, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrUserRegister.Error(),
		})
		return
	}

	token, err := middleware.GenerateToken(user.Email, string(user.Role))
	if err != nil {
		slog.Error(ErrGenerateToken.Error(), "email", user.Email, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGenerateToken.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, response.Response{
		Data: response.UserAuthResponse{
			Email: user.Email,
			Name:  user.Name,
			Token: token,
		},
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var req request.UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	user, err := ac.users.ByEmail(c.Request.Context(), req.Email)
	if err != nil {
		slog.Error(ErrUserLogin.Error(),
			"email", req.Email,
			"err", err,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrUserLogin.Error(),
		})
		return
	}

	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		slog.Info("login rejected", "email", req.Email)
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Response{
			Msg: ErrBadCredentials.Error(),
		})
		return
	}

	if err := ac.users.TouchLastLogin(c.Request.Context(), user.ID); err != nil {
		slog.Warn("failed to record login time", "email", user.Email, "err", err)
	}

	token, err := middleware.GenerateToken(user.Email, string(user.Role))
	if err != nil {
		slog.Error(ErrGenerateToken.Error(),
			"email", user.Email,
			"err", err,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGenerateToken.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.UserAuthResponse{
			Email: user.Email,
			Name:  user.Name,
			Token: token,
		},
	})
}
