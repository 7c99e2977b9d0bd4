package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/davquintana/contactbook-backend/internal/api/httpx"
	"github.com/davquintana/contactbook-backend/internal/api/validate"
	"github.com/davquintana/contactbook-backend/internal/auth"
	"github.com/davquintana/contactbook-backend/internal/config"
	"github.com/davquintana/contactbook-backend/internal/middleware"
	"github.com/davquintana/contactbook-backend/internal/models"
	"github.com/davquintana/contactbook-backend/internal/services"
)

// Route shapes and status codes follow the legacy backend so the existing
// browser client keeps working; auth and admin gating are new.
func NewRouter(cfg config.Config, tm *auth.TokenManager, accounts *services.AccountService, contacts *services.ContactService) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics)
	r.Use(middleware.RateLimit(cfg.RateRPS), middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	authMW := middleware.NewAuthMiddleware(tm)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", promhttp.Handler())

	// ---------- public ----------

	r.Post("/register", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Usuario     string `json:"usuario"`
			Correo      string `json:"correo"`
			Contrasenia string `json:"contrasenia"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
			return
		}
		if err := validate.Collect(
			validate.Required("usuario", req.Usuario),
			validate.Required("correo", req.Correo),
			validate.Required("contrasenia", req.Contrasenia),
		); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "bad_request", "validation failed", err)
			return
		}
		u, err := accounts.Register(r.Context(), req.Usuario, req.Correo, req.Contrasenia)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, u)
	})

	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UsuarioCorreo string `json:"usuarioCorreo"`
			Contrasenia   string `json:"contrasenia"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
			return
		}
		u, err := accounts.Authenticate(r.Context(), req.UsuarioCorreo, req.Contrasenia)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		access, refresh, exp, err := tm.GeneratePair(u.ID, u.Handle, u.Role)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, loginResp{
			ID:           u.ID,
			Usuario:      u.Handle,
			Correo:       u.Email,
			Role:         u.Role,
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresIn:    int64(time.Until(exp).Seconds()),
		})
	})

	r.Post("/refresh", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
			httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request", nil)
			return
		}
		claims, isRefresh, err := tm.ParseAny(req.RefreshToken)
		if err != nil || !isRefresh {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid refresh token", nil)
			return
		}
		access, refresh, exp, err := tm.GeneratePair(claims.UserID, claims.Handle, claims.Role)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, loginResp{
			ID:           claims.UserID,
			Usuario:      claims.Handle,
			Role:         claims.Role,
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresIn:    int64(time.Until(exp).Seconds()),
		})
	})

	// ---------- owner (token identity must match the path id) ----------

	r.Group(func(r chi.Router) {
		r.Use(authMW.Auth)

		r.With(middleware.RequireSelfOrAdmin("userId")).
			Put("/user/{userId}", func(w http.ResponseWriter, r *http.Request) {
				var req struct {
					Usuario string `json:"usuario"`
					Correo  string `json:"correo"`
				}
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
					return
				}
				u, err := accounts.UpdateProfile(r.Context(), chi.URLParam(r, "userId"), req.Usuario, req.Correo)
				if err != nil {
					writeServiceError(w, r, err)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, u)
			})

		r.With(middleware.RequireSelfOrAdmin("userId")).
			Post("/user/{userId}/contact", func(w http.ResponseWriter, r *http.Request) {
				var req contactReq
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
					return
				}
				if err := validate.Collect(
					validate.Required("apellido", req.Apellido),
					validate.Required("nombre", req.Nombre),
					validate.Required("email", req.Email),
				); err != nil {
					httpx.WriteError(w, http.StatusBadRequest, "bad_request", "validation failed", err)
					return
				}
				c, err := contacts.Add(r.Context(), chi.URLParam(r, "userId"), req.toContact())
				if err != nil {
					writeServiceError(w, r, err)
					return
				}
				httpx.WriteJSON(w, http.StatusCreated, c)
			})

		r.With(middleware.RequireSelfOrAdmin("userId")).
			Get("/user/{userId}/contactos", func(w http.ResponseWriter, r *http.Request) {
				list, err := contacts.ListVisible(r.Context(), chi.URLParam(r, "userId"))
				if err != nil {
					writeServiceError(w, r, err)
					return
				}
				if list == nil {
					list = []models.Contact{}
				}
				httpx.WriteJSON(w, http.StatusOK, list)
			})

		r.With(middleware.RequireSelfOrAdmin("userId")).
			Put("/user/{userId}/contact/{contactId}", func(w http.ResponseWriter, r *http.Request) {
				var patch models.ContactPatch
				if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
					httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
					return
				}
				c, err := contacts.Update(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "contactId"), patch)
				if err != nil {
					writeServiceError(w, r, err)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, c)
			})

		r.With(middleware.RequireSelfOrAdmin("userId")).
			Delete("/user/{userId}/contact/{contactId}", func(w http.ResponseWriter, r *http.Request) {
				if err := contacts.Delete(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "contactId")); err != nil {
					writeServiceError(w, r, err)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "contacto eliminado"})
			})
	})

	// ---------- administrator ----------

	r.Group(func(r chi.Router) {
		r.Use(authMW.Auth, middleware.RequireRole(models.RoleAdmin))

		r.Get("/contactos", func(w http.ResponseWriter, r *http.Request) {
			list, err := contacts.ListAll(r.Context())
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			if list == nil {
				list = []models.Contact{}
			}
			httpx.WriteJSON(w, http.StatusOK, list)
		})

		r.Put("/contacto/{id}", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				EsPublico bool `json:"esPublico"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
				return
			}
			c, err := contacts.SetPublic(r.Context(), chi.URLParam(r, "id"), req.EsPublico)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, c)
		})
	})

	return r
}

type loginResp struct {
	ID           string `json:"_id"`
	Usuario      string `json:"usuario"`
	Correo       string `json:"correo,omitempty"`
	Role         string `json:"role"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// contactReq is the create payload. esVisible defaults to true and
// esPublico to false when omitted; a client-supplied propietario is
// accepted and discarded.
type contactReq struct {
	Apellido    string `json:"apellido"`
	Nombre      string `json:"nombre"`
	Empresa     string `json:"empresa"`
	Domicilio   string `json:"domicilio"`
	Telefonos   string `json:"telefonos"`
	Email       string `json:"email"`
	Propietario string `json:"propietario"`
	EsPublico   *bool  `json:"esPublico"`
	EsVisible   *bool  `json:"esVisible"`
	Contrasenia string `json:"contrasenia"`
}

func (r contactReq) toContact() models.Contact {
	c := models.Contact{
		Surname:        r.Apellido,
		GivenName:      r.Nombre,
		Company:        r.Empresa,
		Address:        r.Domicilio,
		Phone:          r.Telefonos,
		Email:          r.Email,
		Public:         false,
		Visible:        true,
		LegacyPassword: r.Contrasenia,
	}
	if r.EsPublico != nil {
		c.Public = *r.EsPublico
	}
	if r.EsVisible != nil {
		c.Visible = *r.EsVisible
	}
	return c
}

// writeServiceError maps the service taxonomy onto wire statuses. Unknown
// errors are logged with the request id and surfaced as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalid):
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
	case errors.Is(err, services.ErrUnauthorized):
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "usuario o contraseña incorrectos", nil)
	case errors.Is(err, services.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "forbidden", nil)
	case errors.Is(err, services.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "no encontrado", nil)
	case errors.Is(err, services.ErrConflict):
		httpx.WriteError(w, http.StatusConflict, "conflict", "usuario y/o correo ya registrado", nil)
	case errors.Is(err, context.DeadlineExceeded):
		httpx.WriteError(w, http.StatusServiceUnavailable, "unavailable", "request timed out", nil)
	default:
		slog.Error("request failed", "err", err, "path", r.URL.Path,
			"request_id", middleware.RequestIDFrom(r.Context()))
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
