package http

import (
	"errors"
	"net/http"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"association-portal/backend/internal/config"
	"association-portal/backend/internal/domain/donations"
	"association-portal/backend/internal/domain/notifications"
	"association-portal/backend/internal/domain/profile"
	"association-portal/backend/internal/handlers"
	"association-portal/backend/internal/httpjson"
	"association-portal/backend/internal/middleware"
	"association-portal/backend/internal/models"
	"association-portal/backend/internal/resource"
	"association-portal/backend/internal/store"
)

// attendancePoints is awarded to a member whose event registration gets
// confirmed.
const attendancePoints = 10

type RouterDeps struct {
	Cfg              config.Config
	Logger           *zap.Logger
	AuthClient       *auth.Client
	Store            *store.Store
	ProfileSvc       *profile.Service
	DonationsSvc     *donations.Service
	NotificationsSvc *notifications.Service
	Uploads          *handlers.Uploads
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(d.Cfg.AllowedOrigins))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, 200, map[string]any{"ok": true, "ts": time.Now().UTC().Format(time.RFC3339)})
	})

	// ===== Payment webhook (no auth, signature-verified) =====
	if d.DonationsSvc != nil && d.DonationsSvc.CardEnabled() {
		r.Post("/v1/stripe/webhook", d.DonationsSvc.HandleWebhook)
	}

	// ===== Public content (served from the synchronized store) =====
	r.Get("/v1/content", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, 200, map[string]any{
			"news":         d.Store.News(),
			"programs":     d.Store.Programs(),
			"events":       d.Store.Events(),
			"projects":     d.Store.Projects(),
			"testimonials": d.Store.Testimonials(),
			"partners":     d.Store.Partners(),
			"branches":     d.Store.Branches(),
		})
	})
	r.Get("/v1/news", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, 200, d.Store.News())
	})
	r.Get("/v1/programs", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, 200, d.Store.Programs())
	})
	r.Get("/v1/events", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, 200, d.Store.Events())
	})
	r.Get("/v1/projects", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, 200, d.Store.Projects())
	})
	r.Get("/v1/testimonials", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, 200, d.Store.Testimonials())
	})
	r.Get("/v1/partners", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, 200, d.Store.Partners())
	})
	r.Get("/v1/branches", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, 200, d.Store.Branches())
	})

	// ===== Event registration (guests allowed) =====
	r.Post("/v1/events/{id}/register", func(w http.ResponseWriter, r *http.Request) {
		eventID := chi.URLParam(r, "id")

		var in store.RegistrationInput
		if err := httpjson.Read(r, &in); err != nil {
			Fail(w, 400, "invalid request body")
			return
		}

		att, err := d.Store.RegisterForEvent(r.Context(), store.KindEvents, eventID, in)
		if err != nil {
			failFromErr(w, err)
			return
		}
		WriteJSON(w, 201, att)
	})

	r.Delete("/v1/events/{id}/register", func(w http.ResponseWriter, r *http.Request) {
		eventID := chi.URLParam(r, "id")
		email := r.URL.Query().Get("email")

		if err := d.Store.CancelRegistration(r.Context(), store.KindEvents, eventID, email); err != nil {
			failFromErr(w, err)
			return
		}
		WriteJSON(w, 200, map[string]any{"success": true})
	})

	// ===== Donations (public create) =====
	r.Post("/v1/donations", func(w http.ResponseWriter, r *http.Request) {
		var in donations.AddDonationInput
		if err := httpjson.Read(r, &in); err != nil {
			Fail(w, 400, "invalid request body")
			return
		}

		if in.Method == donations.MethodCard && d.DonationsSvc.CardEnabled() {
			url, err := d.DonationsSvc.CreateCheckoutSession(r.Context(), in)
			if err != nil {
				failFromErr(w, err)
				return
			}
			WriteJSON(w, 201, map[string]any{"checkoutUrl": url})
			return
		}

		donation, err := d.DonationsSvc.Add(r.Context(), in)
		if err != nil {
			failFromErr(w, err)
			return
		}
		WriteJSON(w, 201, donation)
	})

	// ===== Authenticated routes =====
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.WithAuth(d.AuthClient))

		pr.Get("/v1/me", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			name, _ := au.Claims["name"].(string)
			prof, err := d.ProfileSvc.Ensure(r.Context(), au.UID, au.Email, name)
			if err != nil {
				failFromErr(w, err)
				return
			}
			// Merged identity+profile view: auth fields win on overlap.
			WriteJSON(w, 200, map[string]any{
				"uid":     au.UID,
				"email":   au.Email,
				"admin":   middleware.IsAdmin(au.Claims),
				"profile": prof,
			})
		})

		pr.Patch("/v1/me", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			var in profile.UpdateProfileInput
			if err := httpjson.Read(r, &in); err != nil {
				Fail(w, 400, "invalid request body")
				return
			}
			prof, err := d.ProfileSvc.Update(r.Context(), au.UID, in)
			if err != nil {
				failFromErr(w, err)
				return
			}
			WriteJSON(w, 200, prof)
		})

		pr.Post("/v1/membership/apply", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			prof, err := d.ProfileSvc.ApplyForMembership(r.Context(), au.UID)
			if err != nil {
				failFromErr(w, err)
				return
			}
			WriteJSON(w, 200, prof)
		})

		pr.Get("/v1/notifications", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			res, err := d.NotificationsSvc.List(r.Context(), au.UID, 50)
			if err != nil {
				failFromErr(w, err)
				return
			}
			WriteJSON(w, 200, res)
		})

		pr.Post("/v1/notifications/read", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			var body struct {
				IDs []string `json:"ids"`
			}
			if err := httpjson.Read(r, &body); err != nil {
				Fail(w, 400, "invalid request body")
				return
			}
			count, err := d.NotificationsSvc.MarkRead(r.Context(), au.UID, body.IDs)
			if err != nil {
				failFromErr(w, err)
				return
			}
			WriteJSON(w, 200, map[string]any{"marked": count})
		})

		// ===== Admin routes =====
		pr.Group(func(ar chi.Router) {
			ar.Use(middleware.RequireAdmin)

			ar.Post("/v1/admin/posts/{kind}", func(w http.ResponseWriter, r *http.Request) {
				kind, err := store.ParseKind(chi.URLParam(r, "kind"))
				if err != nil {
					failFromErr(w, err)
					return
				}
				var data resource.Row
				if err := httpjson.Read(r, &data); err != nil {
					Fail(w, 400, "invalid request body")
					return
				}
				row, err := d.Store.AddPost(r.Context(), kind, data)
				if err != nil {
					failFromErr(w, err)
					return
				}
				WriteJSON(w, 201, row)
			})

			ar.Patch("/v1/admin/posts/{kind}/{id}", func(w http.ResponseWriter, r *http.Request) {
				kind, err := store.ParseKind(chi.URLParam(r, "kind"))
				if err != nil {
					failFromErr(w, err)
					return
				}
				var patch resource.Row
				if err := httpjson.Read(r, &patch); err != nil {
					Fail(w, 400, "invalid request body")
					return
				}
				row, err := d.Store.UpdatePost(r.Context(), kind, chi.URLParam(r, "id"), patch)
				if err != nil {
					failFromErr(w, err)
					return
				}
				WriteJSON(w, 200, row)
			})

			ar.Delete("/v1/admin/posts/{kind}/{id}", func(w http.ResponseWriter, r *http.Request) {
				kind, err := store.ParseKind(chi.URLParam(r, "kind"))
				if err != nil {
					failFromErr(w, err)
					return
				}
				if err := d.Store.DeletePost(r.Context(), kind, chi.URLParam(r, "id")); err != nil {
					failFromErr(w, err)
					return
				}
				WriteJSON(w, 200, map[string]any{"success": true})
			})

			ar.Post("/v1/admin/posts/{kind}/{id}/pin", func(w http.ResponseWriter, r *http.Request) {
				kind, err := store.ParseKind(chi.URLParam(r, "kind"))
				if err != nil {
					failFromErr(w, err)
					return
				}
				var body struct {
					Current bool `json:"current"`
				}
				if err := httpjson.Read(r, &body); err != nil {
					Fail(w, 400, "invalid request body")
					return
				}
				if err := d.Store.TogglePin(r.Context(), kind, chi.URLParam(r, "id"), body.Current); err != nil {
					failFromErr(w, err)
					return
				}
				WriteJSON(w, 200, map[string]any{"pinned": !body.Current})
			})

			ar.Patch("/v1/admin/attendees/{id}", func(w http.ResponseWriter, r *http.Request) {
				attendeeID := chi.URLParam(r, "id")
				var body struct {
					Status string `json:"status"`
				}
				if err := httpjson.Read(r, &body); err != nil {
					Fail(w, 400, "invalid request body")
					return
				}

				att, item, known := d.Store.FindAttendee(attendeeID)
				if err := d.Store.UpdateAttendanceStatus(r.Context(), attendeeID, body.Status); err != nil {
					failFromErr(w, err)
					return
				}

				// Confirmed attendance earns points and a notification for
				// signed-in members; both are best-effort.
				if known && att.UserID != "" && body.Status == string(models.AttendeeConfirmed) {
					if _, err := d.ProfileSvc.AwardPoints(r.Context(), att.UserID, attendancePoints); err != nil {
						d.Logger.Warn("award points failed", zap.String("uid", att.UserID), zap.Error(err))
					}
					title := "Registration confirmed: " + item.Title.Resolve("en")
					if _, err := d.NotificationsSvc.Create(r.Context(), notifications.CreateInput{
						UserID: att.UserID,
						Title:  title,
						Type:   "attendance",
					}, ""); err != nil {
						d.Logger.Warn("notify attendee failed", zap.String("uid", att.UserID), zap.Error(err))
					}
				}
				WriteJSON(w, 200, map[string]any{"success": true})
			})

			ar.Get("/v1/admin/donations", func(w http.ResponseWriter, r *http.Request) {
				list, err := d.DonationsSvc.ListAll(r.Context())
				if err != nil {
					failFromErr(w, err)
					return
				}
				WriteJSON(w, 200, list)
			})

			ar.Patch("/v1/admin/donations/{id}", func(w http.ResponseWriter, r *http.Request) {
				var body struct {
					Status string `json:"status"`
				}
				if err := httpjson.Read(r, &body); err != nil {
					Fail(w, 400, "invalid request body")
					return
				}
				if err := d.DonationsSvc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), body.Status); err != nil {
					failFromErr(w, err)
					return
				}
				WriteJSON(w, 200, map[string]any{"success": true})
			})

			ar.Delete("/v1/admin/donations/{id}", func(w http.ResponseWriter, r *http.Request) {
				if err := d.DonationsSvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
					failFromErr(w, err)
					return
				}
				WriteJSON(w, 200, map[string]any{"success": true})
			})

			ar.Get("/v1/admin/memberships/pending", func(w http.ResponseWriter, r *http.Request) {
				list, err := d.ProfileSvc.PendingMemberships(r.Context())
				if err != nil {
					failFromErr(w, err)
					return
				}
				WriteJSON(w, 200, list)
			})

			ar.Post("/v1/admin/memberships/{uid}/review", func(w http.ResponseWriter, r *http.Request) {
				var body struct {
					Approve bool `json:"approve"`
				}
				if err := httpjson.Read(r, &body); err != nil {
					Fail(w, 400, "invalid request body")
					return
				}
				prof, err := d.ProfileSvc.ReviewMembership(r.Context(), chi.URLParam(r, "uid"), body.Approve)
				if err != nil {
					failFromErr(w, err)
					return
				}
				WriteJSON(w, 200, prof)
			})

			if d.Uploads != nil {
				ar.Post("/v1/admin/uploads/signed-url", d.Uploads.CreateSignedUploadURL)
			}

			ar.Post("/v1/admin/reload", func(w http.ResponseWriter, r *http.Request) {
				if err := d.Store.Load(r.Context()); err != nil {
					// Partial loads commit what succeeded; report the rest.
					Fail(w, 502, err.Error())
					return
				}
				WriteJSON(w, 200, map[string]any{"success": true})
			})
		})
	})

	return r
}

func failFromErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrBadRequest),
		errors.Is(err, profile.ErrBadRequest),
		errors.Is(err, donations.ErrBadRequest),
		errors.Is(err, notifications.ErrBadRequest):
		Fail(w, 400, err.Error())
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, profile.ErrNotFound),
		errors.Is(err, donations.ErrNotFound),
		errors.Is(err, resource.ErrNotFound):
		Fail(w, 404, err.Error())
	case errors.Is(err, profile.ErrAlreadyApplied),
		errors.Is(err, profile.ErrAlreadyActive),
		errors.Is(err, profile.ErrNotPending):
		Fail(w, 409, err.Error())
	default:
		Fail(w, 500, err.Error())
	}
}
