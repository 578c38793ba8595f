package pushnotification

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/kazz187/wbsgantt/internal/config"
	"github.com/kazz187/wbsgantt/internal/pushsubscription"
	"github.com/kazz187/wbsgantt/pkg/cerr"
)

type Server struct {
	vapidEnv *config.VAPIDEnv
	repo     pushsubscription.Repository
	notifier Notifier
}

func NewServer(vapidEnv *config.VAPIDEnv, repo pushsubscription.Repository, notifier Notifier) *Server {
	return &Server{
		vapidEnv: vapidEnv,
		repo:     repo,
		notifier: notifier,
	}
}

// Routes mounts the push endpoints behind cerr.NewJSONResponseChiMiddleware.
func (s *Server) Routes(r chi.Router) {
	r.Route("/push", func(r chi.Router) {
		r.Get("/vapid-public-key", s.getVAPIDPublicKey)
		r.Post("/subscriptions", s.registerSubscription)
		r.Delete("/subscriptions", s.unregisterSubscription)
		r.Post("/test", s.sendTestNotification)
	})
}

type vapidPublicKeyResponse struct {
	PublicKey string `json:"public_key"`
}

func (s *Server) getVAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.vapidEnv.VAPIDPublicKey == "" {
		cerr.SetNewJSONError(ctx, cerr.FailedPrecondition, "VAPID keys not configured", nil)
		return
	}
	cerr.SetJSONResponse(ctx, &vapidPublicKeyResponse{PublicKey: s.vapidEnv.VAPIDPublicKey})
}

type subscriptionRequest struct {
	Endpoint  string `json:"endpoint"`
	P256dhKey string `json:"p256dh_key"`
	AuthKey   string `json:"auth_key"`
}

// registerSubscription is idempotent per endpoint: a known endpoint gets its
// keys replaced.
func (s *Server) registerSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.Endpoint == "" || req.P256dhKey == "" || req.AuthKey == "" {
		e := cerr.NewError(cerr.InvalidArgument, "incomplete subscription", nil)
		for _, f := range []struct{ name, value string }{
			{"endpoint", req.Endpoint},
			{"p256dh_key", req.P256dhKey},
			{"auth_key", req.AuthKey},
		} {
			if f.value == "" {
				e.AddViolation(f.name, "is required")
			}
		}
		cerr.SetJSONError(ctx, e)
		return
	}

	existing, err := s.repo.FindByEndpoint(ctx, req.Endpoint)
	switch {
	case err == nil:
		existing.P256dhKey = req.P256dhKey
		existing.AuthKey = req.AuthKey
		if err := s.repo.Update(ctx, existing); err != nil {
			cerr.SetJSONError(ctx, err)
		}
		return
	case !cerr.IsCode(err, cerr.NotFound):
		cerr.SetJSONError(ctx, err)
		return
	}

	sub := &pushsubscription.Subscription{
		ID:        ulid.Make().String(),
		Endpoint:  req.Endpoint,
		P256dhKey: req.P256dhKey,
		AuthKey:   req.AuthKey,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		cerr.SetJSONError(ctx, err)
	}
}

func (s *Server) unregisterSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.Endpoint == "" {
		cerr.SetJSONError(ctx, cerr.NewError(cerr.InvalidArgument, "endpoint is required", nil).
			AddViolation("endpoint", "is required"))
		return
	}
	if err := s.repo.DeleteByEndpoint(ctx, req.Endpoint); err != nil {
		cerr.SetJSONError(ctx, err)
	}
}

func (s *Server) sendTestNotification(w http.ResponseWriter, r *http.Request) {
	s.notifier.SendToAll(r.Context(), &NotificationPayload{
		Title: "WBS Gantt",
		Body:  "Push notifications are working!",
	})
}
