package routes

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/webshop-go/storefront/app/configs"
	"github.com/webshop-go/storefront/app/handlers"
	"github.com/webshop-go/storefront/app/middlewares"
	"github.com/webshop-go/storefront/app/repositories"
	"github.com/webshop-go/storefront/app/services"
	"github.com/webshop-go/storefront/app/utils/renderer"
	"github.com/webshop-go/storefront/app/utils/sessions"
)

// NewRouter wires the storefront API. Everything is constructed and injected
// here; no package holds ambient state.
func NewRouter(db *gorm.DB, log *zap.SugaredLogger) (http.Handler, *services.CartSessionManager, error) {
	keys, err := configs.LoadSessionKeysFromEnv()
	if err != nil {
		return nil, nil, err
	}
	sessionStore := sessions.NewCookieSessionStore(keys.AuthKey, keys.EncKey)

	productRepo := repositories.NewProductRepository(db)
	couponRepo := repositories.NewCouponRepository(db)
	cartRepo := repositories.NewCartRepository(db)
	userRepo := repositories.NewUserRepository(db)
	cartCache := repositories.NewCartCache()

	carts := services.NewCartSessionManager(
		productRepo,
		couponRepo,
		cartCache,
		cartRepo,
		configs.LoadPricingConfig(),
		configs.LoadSyncDebounce(),
		log,
	)

	rnd := renderer.New()
	validate := validator.New()

	cartHandler := handlers.NewCartHandler(carts, rnd, validate, log)
	authHandler := handlers.NewAuthHandler(rnd, userRepo, sessionStore, carts, validate, log)
	productHandler := handlers.NewProductHandler(productRepo, rnd, log)

	router := mux.NewRouter()
	router.Use(middlewares.RequestLogger(log))
	router.Use(middlewares.ClientSessionMiddleware(sessionStore, log))

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/products", productHandler.ListProducts).Methods("GET")

	api.HandleFunc("/cart", cartHandler.GetCart).Methods("GET")
	api.HandleFunc("/cart", cartHandler.ClearCart).Methods("DELETE")
	api.HandleFunc("/cart/items", cartHandler.AddItem).Methods("POST")
	api.HandleFunc("/cart/items/{productID}", cartHandler.SetQuantity).Methods("PUT")
	api.HandleFunc("/cart/items/{productID}", cartHandler.RemoveItem).Methods("DELETE")
	api.HandleFunc("/cart/coupon", cartHandler.ApplyCoupon).Methods("POST")

	api.HandleFunc("/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/logout", authHandler.Logout).Methods("POST")

	protect := csrf.Protect(keys.AuthKey,
		csrf.Path("/"),
		csrf.Secure(configs.LoadENV.APP_ENV == "production"),
	)
	return protect(router), carts, nil
}
