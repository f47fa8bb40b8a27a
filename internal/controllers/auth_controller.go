package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"zaplog/internal/config"
	"zaplog/internal/middleware"
	"zaplog/internal/models"
	"zaplog/internal/repository"
)

type registerInput struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register creates a new account on the free plan and returns it together
// with a signed access token.
func Register(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if input.Password != input.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"message": "passwords do not match"})
		return
	}

	users := repository.NewUserRepository(config.DB)

	if _, err := users.GetByEmail(input.Email); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email already in use"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "database error: " + err.Error()})
		return
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not hash password"})
		return
	}

	user := models.User{
		Email:    input.Email,
		Password: hashedPassword,
		Name:     input.Name,
		Plan:     models.PlanFree,
	}
	if err := users.Create(&user); err != nil {
		// The uniqueness check above races with concurrent registers; the
		// unique index is the backstop.
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "email already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not create user: " + err.Error()})
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not generate token"})
		return
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email}).Info("user registered")

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  user,
	})
}

// Login verifies credentials and returns a fresh token. Unknown email and
// wrong password are deliberately indistinguishable.
func Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	users := repository.NewUserRepository(config.DB)

	user, err := users.GetByEmail(input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "database error: " + err.Error()})
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Me returns the authenticated caller's public record.
func Me(c *gin.Context) {
	userID := uint(c.MustGet("user_id").(float64))

	user, err := repository.NewUserRepository(config.DB).GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "database error: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type updateMeInput struct {
	Name *string `json:"name"`
	Plan *string `json:"plan"`
}

// UpdateMe applies a partial profile update (name, plan). Upgrading the plan
// is what lifts the free-tier trip quota.
func UpdateMe(c *gin.Context) {
	userID := uint(c.MustGet("user_id").(float64))

	var input updateMeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		if *input.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "name cannot be empty"})
			return
		}
		updates["name"] = *input.Name
	}
	if input.Plan != nil {
		if !models.ValidPlan(*input.Plan) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid plan"})
			return
		}
		updates["plan"] = *input.Plan
	}

	users := repository.NewUserRepository(config.DB)

	if _, err := users.GetByID(userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}

	if len(updates) == 0 {
		user, _ := users.GetByID(userID)
		c.JSON(http.StatusOK, gin.H{"user": user})
		return
	}

	user, err := users.Update(userID, updates)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not update user: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
