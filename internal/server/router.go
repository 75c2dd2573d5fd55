package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/mohit-pareek09/smart-erp/internal/auth"
	"github.com/mohit-pareek09/smart-erp/internal/handlers"
	"github.com/mohit-pareek09/smart-erp/internal/httpx"
	"github.com/mohit-pareek09/smart-erp/internal/models"
	"github.com/mohit-pareek09/smart-erp/internal/services"

	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// RequireAuth double-checks that the token's user still exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	//revive:enable:unused-parameter

	authHandler := handlers.NewAuthHandler(db)
	authHandler.Register(mux)

	protect := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(h))
	}

	invSvc := services.NewInvoiceService(db)
	retSvc := services.NewReturnService(db)

	ih := handlers.NewInventoryHandler(db)
	mux.Handle("/api/inventory", protect(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if _, ok := r.URL.Query()["id"]; ok {
				ih.Get(w, r)
				return
			}
			ih.List(w, r)
		case http.MethodPost:
			ih.Create(w, r)
		case http.MethodPut, http.MethodPatch:
			ih.Update(w, r)
		case http.MethodDelete:
			ih.Delete(w, r)
		default:
			allow(w, "GET,POST,PUT,PATCH,DELETE")
		}
	}))
	mux.Handle("/api/inventory/quantity", protect(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch && r.Method != http.MethodPost {
			allow(w, "POST,PATCH")
			return
		}
		ih.Quantity(w, r)
	}))
	mux.Handle("/api/inventory/stats", protect(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			allow(w, "GET")
			return
		}
		ih.Stats(w, r)
	}))

	ch := handlers.NewCategoryHandler(db)
	mux.Handle("/api/categories", protect(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if _, ok := r.URL.Query()["id"]; ok {
				ch.Get(w, r)
				return
			}
			ch.List(w, r)
		case http.MethodPost:
			ch.Create(w, r)
		case http.MethodPut, http.MethodPatch:
			ch.Update(w, r)
		case http.MethodDelete:
			ch.Delete(w, r)
		default:
			allow(w, "GET,POST,PUT,PATCH,DELETE")
		}
	}))

	cuh := handlers.NewCustomerHandler(db)
	mux.Handle("/api/customers", protect(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if _, ok := r.URL.Query()["id"]; ok {
				cuh.Get(w, r)
				return
			}
			cuh.List(w, r)
		case http.MethodPost:
			cuh.Create(w, r)
		case http.MethodPut, http.MethodPatch:
			cuh.Update(w, r)
		case http.MethodDelete:
			cuh.Delete(w, r)
		default:
			allow(w, "GET,POST,PUT,PATCH,DELETE")
		}
	}))

	invh := handlers.NewInvoiceHandler(db, invSvc)
	mux.Handle("/api/invoices", protect(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if _, ok := r.URL.Query()["id"]; ok {
				invh.Get(w, r)
				return
			}
			invh.List(w, r)
		case http.MethodPost:
			invh.Create(w, r)
		case http.MethodPut:
			invh.Update(w, r)
		case http.MethodDelete:
			invh.Delete(w, r)
		default:
			allow(w, "GET,POST,PUT,DELETE")
		}
	}))
	mux.Handle("/api/invoices/delete", protect(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete && r.Method != http.MethodPost {
			allow(w, "POST,DELETE")
			return
		}
		invh.Delete(w, r)
	}))
	mux.Handle("/api/invoices/payment-status", protect(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch && r.Method != http.MethodPost {
			allow(w, "POST,PATCH")
			return
		}
		invh.PaymentStatus(w, r)
	}))
	mux.Handle("/api/invoices/stats", protect(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			allow(w, "GET")
			return
		}
		invh.Stats(w, r)
	}))

	rh := handlers.NewReturnHandler(db, retSvc)
	mux.Handle("/api/returns", protect(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if _, ok := r.URL.Query()["id"]; ok {
				rh.Get(w, r)
				return
			}
			rh.List(w, r)
		case http.MethodPost:
			rh.Create(w, r)
		case http.MethodPut, http.MethodPatch:
			rh.Update(w, r)
		case http.MethodDelete:
			rh.Delete(w, r)
		default:
			allow(w, "GET,POST,PUT,PATCH,DELETE")
		}
	}))
	mux.Handle("/api/returns/update", protect(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut && r.Method != http.MethodPost {
			allow(w, "POST,PUT")
			return
		}
		rh.Update(w, r)
	}))
	mux.Handle("/api/returns/delete", protect(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete && r.Method != http.MethodPost {
			allow(w, "POST,DELETE")
			return
		}
		rh.Delete(w, r)
	}))
	mux.Handle("/api/returns/stats", protect(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			allow(w, "GET")
			return
		}
		rh.Stats(w, r)
	}))

	dh := handlers.NewDashboardHandler(db)
	mux.Handle("/api/dashboard/summary", protect(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			allow(w, "GET")
			return
		}
		dh.Summary(w, r)
	}))
	mux.Handle("/api/dashboard/expiring-products", protect(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			allow(w, "GET")
			return
		}
		dh.ExpiringProducts(w, r)
	}))
	mux.Handle("/api/dashboard/low-stock", protect(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			allow(w, "GET")
			return
		}
		dh.LowStock(w, r)
	}))

	return withRecover(withLogging(mux))
}

func allow(w http.ResponseWriter, methods string) {
	w.Header().Set("Allow", methods)
	httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
