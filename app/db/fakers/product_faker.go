package fakers

import (
	"math/rand"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"

	"github.com/webshop-go/storefront/app/models"
)

func ProductFaker(categories ...models.Category) *models.Product {
	name := faker.Word() + " " + faker.Word()

	price := decimal.NewFromInt(int64(rand.Intn(9000)+500)).Div(decimal.NewFromInt(100))

	return &models.Product{
		ID:          uuid.New().String(),
		Name:        name,
		Slug:        slug.Make(name + "-" + uuid.NewString()[:6]),
		Description: faker.Sentence(),
		Sku:         uuid.NewString()[:8],
		Price:       price,
		Stock:       rand.Intn(50) + 1,
		Categories:  categories,
	}
}

func CategoryFaker(name string) *models.Category {
	return &models.Category{
		ID:   uuid.New().String(),
		Name: name,
		Slug: slug.Make(name),
	}
}
