package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"
	"storefront/internal/session"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Auth     *handler.AuthHandler
	Address  *handler.AddressHandler
	Cart     *handler.CartHandler
	Order    *handler.OrderHandler
	Product  *handler.ProductHandler
	Wishlist *handler.WishlistHandler
	Checkout *handler.CheckoutHandler
}

// Options configures the middleware chain.
type Options struct {
	AllowOrigins     []string
	DefaultLocale    string
	SupportedLocales []string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, sessions session.Manager, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> RequestID -> Logging -> CORS -> Locale -> Session
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(opts.AllowOrigins))
	r.Use(middleware.Locale(opts.DefaultLocale, opts.SupportedLocales))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(sessions, logger))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/register", h.Auth.Register)
			r.Post("/logout", h.Auth.Logout)
		})

		r.Get("/profile", h.Auth.Profile)
		r.Put("/profile", h.Auth.UpdateProfile)

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", h.Address.List)
			r.Post("/", h.Address.Create)
			r.Get("/{id}", h.Address.Get)
			r.Put("/{id}", h.Address.Update)
			r.Delete("/{id}", h.Address.Delete)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.Get)
			r.Post("/", h.Cart.Add)
			r.Delete("/", h.Cart.Clear)
			r.Put("/{id}", h.Cart.Update)
			r.Delete("/{id}", h.Cart.Remove)
		})

		r.Get("/coupons/{code}", h.Checkout.Coupon)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Order.List)
			r.Post("/", h.Order.Create)
			r.Get("/{id}", h.Order.GetByID)
		})

		r.Get("/products", h.Product.List)
		r.Get("/products/{id}", h.Product.GetByID)
		r.Get("/home/{section}", h.Product.Home)

		r.Route("/wishlists", func(r chi.Router) {
			r.Get("/", h.Wishlist.List)
			r.Post("/", h.Wishlist.Add)
			r.Delete("/{id}", h.Wishlist.Remove)
		})

		r.Get("/config", h.Checkout.Config)
		r.Post("/checkout/quote", h.Checkout.Quote)
		r.Post("/checkout", h.Checkout.Submit)
	})

	return r
}
