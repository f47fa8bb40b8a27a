// Seeds a local account for dashboard and extension testing. Idempotent:
// re-running with an existing email leaves the account alone.
package main

import (
	"errors"
	"flag"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"zaplog/internal/config"
	"zaplog/internal/models"
	"zaplog/internal/repository"
)

func main() {
	email := flag.String("email", "teste@zaplog.com", "account email")
	password := flag.String("password", "123456", "account password")
	name := flag.String("name", "Teste Local", "account name")
	flag.Parse()

	config.InitDB()
	users := repository.NewUserRepository(config.DB)

	if user, err := users.GetByEmail(*email); err == nil {
		log.Printf("user already exists: id=%d email=%s", user.ID, user.Email)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("lookup failed: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("could not hash password: %v", err)
	}

	user := models.User{
		Email:    *email,
		Password: string(hash),
		Name:     *name,
		Plan:     models.PlanFree,
	}
	if err := users.Create(&user); err != nil {
		log.Fatalf("could not create user: %v", err)
	}

	log.Printf("created user: id=%d email=%s", user.ID, user.Email)
}
