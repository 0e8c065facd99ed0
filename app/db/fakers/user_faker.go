package fakers

import (
	"log"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"

	"github.com/webshop-go/storefront/app/helpers"
	"github.com/webshop-go/storefront/app/models"
)

func UserFaker() *models.User {
	password, err := helpers.HashPassword("password")
	if err != nil {
		log.Fatal("failed to hash faker password:", err)
	}

	return &models.User{
		ID:        uuid.New().String(),
		FirstName: faker.FirstName(),
		LastName:  faker.LastName(),
		Email:     faker.Email(),
		Password:  password,
		Role:      models.RoleCustomer,
	}
}

// DemoUser has a fixed login for trying out the API.
func DemoUser() *models.User {
	password, err := helpers.HashPassword("password")
	if err != nil {
		log.Fatal("failed to hash demo password:", err)
	}

	return &models.User{
		ID:        uuid.New().String(),
		FirstName: "Demo",
		LastName:  "Shopper",
		Email:     "demo@example.com",
		Password:  password,
		Role:      models.RoleCustomer,
	}
}
