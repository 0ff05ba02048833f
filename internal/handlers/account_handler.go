package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace/internal/auth"
	"marketplace/internal/models"
	"marketplace/internal/response"
	"marketplace/internal/service"
)

type AccountHandler struct {
	accounts *service.AccountService
	cookie   auth.SessionCookie
	maxAge   int
}

// NewAccountHandler sets session cookies that expire together with the
// tokens they carry.
func NewAccountHandler(accounts *service.AccountService, cookie auth.SessionCookie) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		cookie:   cookie,
		maxAge:   int(accounts.SessionTTL().Seconds()),
	}
}

func (h *AccountHandler) Register(c *gin.Context) {
	var in service.RegisterInput
	if !bind(c, &in) {
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user.Public(),
	})
}

func (h *AccountHandler) Login(c *gin.Context) {
	var in service.LoginInput
	if !bind(c, &in) {
		return
	}

	user, token, err := h.accounts.Login(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.cookie.Set(c, token, h.maxAge)
	response.OK(c, http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user.Public(),
	})
}

func (h *AccountHandler) Logout(c *gin.Context) {
	h.cookie.Clear(c)
	response.OK(c, http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AccountHandler) Me(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	response.OK(c, http.StatusOK, gin.H{"user": user.Public()})
}

func (h *AccountHandler) GetUser(c *gin.Context) {
	user, err := h.accounts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"user": user.Public()})
}

func (h *AccountHandler) UpdateUser(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	var update models.UserUpdate
	if !bind(c, &update) {
		return
	}

	user, err := h.accounts.Update(c.Request.Context(), me, c.Param("id"), update)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"message": "User updated",
		"user":    user.Public(),
	})
}

func (h *AccountHandler) DeleteUser(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	if err := h.accounts.Delete(c.Request.Context(), me, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"message": "User deleted"})
}

func (h *AccountHandler) ListUsers(c *gin.Context) {
	h.list(c, "")
}

func (h *AccountHandler) ListSellers(c *gin.Context) {
	h.list(c, models.RoleSeller)
}

func (h *AccountHandler) list(c *gin.Context, role models.Role) {
	users, err := h.accounts.List(c.Request.Context(), role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"count": len(users),
		"users": models.PublicUsers(users),
	})
}
