package configs

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type ENV struct {
	DBHost                string
	DBUser                string
	DBPassword            string
	DBName                string
	DBPort                string
	Port                  string
	SESSION_KEY           string
	AppAuthKey            string
	AppEncKey             string
	APP_ENV               string
	FREE_SHIPPING_MINIMUM string
	FLAT_SHIPPING_FEE     string
	CART_SYNC_DEBOUNCE_MS string
}

func LoadEnv() ENV {

	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: No .env file found ")
	}

	return ENV{
		DBHost:                os.Getenv("DB_HOST"),
		DBUser:                os.Getenv("DB_USER"),
		DBPassword:            os.Getenv("DB_PASSWORD"),
		DBName:                os.Getenv("DB_NAME"),
		DBPort:                os.Getenv("DB_PORT"),
		Port:                  os.Getenv("APP_PORT"),
		SESSION_KEY:           os.Getenv("SESSION_KEY"),
		AppAuthKey:            os.Getenv("APP_AUTH_KEY"),
		AppEncKey:             os.Getenv("APP_ENC_KEY"),
		APP_ENV:               os.Getenv("APP_ENV"),
		FREE_SHIPPING_MINIMUM: os.Getenv("FREE_SHIPPING_MINIMUM"),
		FLAT_SHIPPING_FEE:     os.Getenv("FLAT_SHIPPING_FEE"),
		CART_SYNC_DEBOUNCE_MS: os.Getenv("CART_SYNC_DEBOUNCE_MS"),
	}

}

var LoadENV = LoadEnv()
