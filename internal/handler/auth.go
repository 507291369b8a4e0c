package handler

import (
	"strings"

	"tasksync/internal/middleware"
	"tasksync/internal/models"
	"tasksync/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 12

type userResp struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func toUserResp(u *models.User) userResp {
	return userResp{ID: u.ID, Email: u.Email, Name: u.Name}
}

// ---------- LoginUser ----------

// login verifies the password and issues a JWT. The same message covers
// unknown email and wrong password.
func (h *GraphQLHandler) login(c *gin.Context, vars map[string]interface{}) {
	email := strings.ToLower(strings.TrimSpace(strVar(vars, "email")))
	password := strVar(vars, "password")
	if email == "" || password == "" {
		util.GraphQLError(c, "email and password are required")
		return
	}

	var user models.User
	if err := h.DB.Where("LOWER(email) = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.GraphQLError(c, "invalid email or password")
		} else {
			util.GraphQLError(c, "failed to query user")
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		util.GraphQLError(c, "invalid email or password")
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, h.JWTIssuer, user.ID, user.Email, h.TokenTTL)
	if err != nil {
		util.GraphQLError(c, "failed to generate token")
		return
	}

	util.GraphQLData(c, util.Data{
		"login": gin.H{
			"token": token,
			"user":  toUserResp(&user),
		},
	})
}

// ---------- FindUserByEmail ----------

// findUserByEmail serves the development lookup login. It sits behind the
// admin-secret trust boundary and never exposes password hashes.
func (h *GraphQLHandler) findUserByEmail(c *gin.Context, vars map[string]interface{}) {
	if !middleware.IsAdmin(c) {
		util.GraphQLError(c, "permission denied")
		return
	}

	email := strings.ToLower(strings.TrimSpace(strVar(vars, "email")))
	if email == "" {
		util.GraphQLError(c, "email is required")
		return
	}

	var users []models.User
	if err := h.DB.Where("LOWER(email) = ?", email).Limit(1).Find(&users).Error; err != nil {
		util.GraphQLError(c, "failed to query user")
		return
	}

	resp := make([]userResp, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResp(&users[i]))
	}
	util.GraphQLData(c, util.Data{"users": resp})
}

// ---------- CreateUser ----------

func (h *GraphQLHandler) createUser(c *gin.Context, vars map[string]interface{}) {
	email := strings.ToLower(strings.TrimSpace(strVar(vars, "email")))
	name := strings.TrimSpace(strVar(vars, "name"))
	password := strVar(vars, "password")

	if err := util.ValidateEmail(email); err != nil {
		util.GraphQLError(c, err.Error())
		return
	}
	if name == "" {
		util.GraphQLError(c, "name is required")
		return
	}
	if err := util.ValidatePassword(password); err != nil {
		util.GraphQLError(c, err.Error())
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("LOWER(email) = ?", email).
		Count(&count).Error; err != nil {
		util.GraphQLError(c, "failed to query user")
		return
	}
	if count > 0 {
		util.GraphQLError(c, "email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		util.GraphQLError(c, "failed to hash password")
		return
	}

	user := models.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := h.DB.Create(&user).Error; err != nil {
		util.GraphQLError(c, "failed to create user")
		return
	}

	util.GraphQLData(c, util.Data{
		"insert_users_one": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"name":       user.Name,
			"created_at": user.CreatedAt,
		},
	})
}
