package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/efarmaplus/storefront/api/controllers"
	"github.com/efarmaplus/storefront/api/middleware"
	"github.com/efarmaplus/storefront/api/views"
	"github.com/efarmaplus/storefront/pkg/auth"
	"github.com/efarmaplus/storefront/pkg/config"
	"github.com/efarmaplus/storefront/pkg/logger"
)

const (
	loginPath    = "/login"
	registerPath = "/register"
)

// AdminState is the per-session admin registry.
type AdminState interface {
	controllers.AdminPages
	controllers.SessionEnder
}

// Deps carries everything the HTTP surface talks to.
type Deps struct {
	Products   controllers.ProductCatalog
	Categories controllers.CategorySource
	Users      controllers.AccountStore
	Roles      controllers.RoleSource
	Carts      controllers.CartFactory
	Admin      AdminState
	Stats      controllers.StatsSource
	Sessions   *middleware.SessionCodec
	// Observer records request metrics; MetricsHandler exposes them.
	Observer       middleware.RequestObserver
	MetricsHandler http.Handler
	// Readiness lists the stores /health/ready pings.
	Readiness map[string]controllers.Pinger
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.Observer),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness))
	})
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", views.Static()))
	if cfg.Storage.Driver == "" || strings.EqualFold(cfg.Storage.Driver, config.StorageDriverLocal) {
		prefix := "/" + strings.Trim(cfg.Storage.LocalURL, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix+"/", http.FileServer(http.Dir(cfg.Storage.LocalDir))))
	}

	r.Group(func(r chi.Router) {
		r.Use(
			middleware.Session(deps.Sessions, logg),
			middleware.Auth(cfg.JWT, logg),
		)

		r.Get("/", controllers.Home(deps.Products, deps.Carts, logg))
		r.Get("/products", controllers.ProductList(deps.Products, deps.Categories, deps.Carts, logg))
		r.Get("/products/{productID}", controllers.ProductDetail(deps.Products, deps.Carts, logg))

		r.Get(loginPath, controllers.LoginPage(deps.Carts, logg))
		r.Post(loginPath, controllers.Login(cfg, deps.Users, deps.Carts, logg))
		r.Get(registerPath, controllers.RegisterPage(deps.Carts, logg))
		r.Post(registerPath, controllers.Register(cfg, deps.Users, deps.Roles, deps.Carts, logg))
		r.Post("/logout", controllers.Logout(deps.Admin, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartPage(deps.Carts, logg))
			r.Post("/add", controllers.CartAdd(deps.Products, deps.Carts, logg))
			r.Post("/items/{itemID}/increment", controllers.CartStep(deps.Carts, 1))
			r.Post("/items/{itemID}/decrement", controllers.CartStep(deps.Carts, -1))
			r.Post("/items/{itemID}/remove", controllers.CartRemove(deps.Carts))
			r.Post("/clear", controllers.CartClear(deps.Carts))
			r.Get("/checkout", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/cart", http.StatusSeeOther)
			})
			r.With(middleware.RequireAuth(loginPath, logg)).Post("/checkout", controllers.CartCheckout(deps.Carts, logg))
		})

		r.Route(controllers.AdminBase, func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin, loginPath, logg))
			r.Get("/", controllers.AdminDashboard(deps.Stats, deps.Admin, deps.Carts, logg))
			r.Post("/key", controllers.AdminKey(deps.Admin))
			r.Route("/{resource}", func(r chi.Router) {
				r.Get("/", controllers.AdminResource(deps.Admin, deps.Carts, logg))
				r.Post("/new", controllers.AdminCreate(deps.Admin, logg))
				r.Get("/rows/{rowID}", controllers.AdminRowClick(deps.Admin, logg))
				r.Post("/rows/{rowID}/{action}", controllers.AdminRowClick(deps.Admin, logg))
				r.Post("/form", controllers.AdminSubmit(deps.Admin, logg))
				r.Post("/form/cancel", controllers.AdminCancel(deps.Admin, logg))
				r.Post("/modal/dismiss", controllers.AdminDismiss(deps.Admin, logg))
				r.Post("/status/{orderID}/{statusID}", controllers.AdminChangeStatus(deps.Admin, logg))
			})
		})

		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Use(middleware.CORS(cfg.App.CORSOrigins))
			r.Get("/", controllers.CartFetch(deps.Carts))
			r.Delete("/", controllers.CartDelete(deps.Carts))
			r.Post("/items", controllers.CartAddItem(deps.Products, deps.Carts, logg))
			r.Put("/items/{itemID}", controllers.CartUpdateItem(deps.Carts, logg))
			r.Delete("/items/{itemID}", controllers.CartDeleteItem(deps.Carts))
		})
	})

	return r
}
