package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/auth"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/job"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/lead"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/resource"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/user"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/http/handlers"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

func newUUID() string {
	return uuid.NewString()
}

// fake token verifier so middleware-protected routes can be exercised
// without minting real JWTs

type fakeVerifier struct {
	claims *auth.Claims
	err    error
}

func (f *fakeVerifier) VerifyAccessToken(token string) (*auth.Claims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

type fakeUsersRepo struct {
	getFn func(ctx context.Context, id string) (user.User, error)
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return user.User{}, user.ErrNotFound
}

type fakeResourcesGetter struct {
	getFn func(ctx context.Context, id string) (resource.Resource, error)
}

func (f *fakeResourcesGetter) GetByID(ctx context.Context, id string) (resource.Resource, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return resource.Resource{}, resource.ErrNotFound
}

type fakeLeadRecorder struct {
	recordFn func(ctx context.Context, req lead.CreateLeadRequest, resourceID, resourceTitle string) (lead.Lead, error)
	markFn   func(ctx context.Context, userID, resourceID string) error
}

func (f *fakeLeadRecorder) RecordLead(ctx context.Context, req lead.CreateLeadRequest, resourceID, resourceTitle string) (lead.Lead, error) {
	if f.recordFn != nil {
		return f.recordFn(ctx, req, resourceID, resourceTitle)
	}
	return lead.New(req, resourceID, resourceTitle), nil
}

func (f *fakeLeadRecorder) MarkInterested(ctx context.Context, userID, resourceID string) error {
	if f.markFn != nil {
		return f.markFn(ctx, userID, resourceID)
	}
	return nil
}

type fakeJobStore struct {
	created []job.CreateRequest
	err     error
}

func (f *fakeJobStore) Create(ctx context.Context, req job.CreateRequest) (job.Job, error) {
	if f.err != nil {
		return job.Job{}, f.err
	}
	f.created = append(f.created, req)
	return job.New(req), nil
}

func investorUser(id string) user.User {
	return user.User{
		ID:    id,
		Name:  "Ada Investor",
		Email: "ada@example.com",
		Phone: "+15550001",
		Role:  user.RoleInvestor,
	}
}

func TestCheckAccessHandler(t *testing.T) {
	resourceID := newUUID()
	userID := newUUID()

	tests := []struct {
		name       string
		claims     *auth.Claims
		userSetup  func(*fakeUsersRepo)
		resSetup   func(*fakeResourcesGetter)
		wantStatus int
		wantState  string
	}{
		{
			name:   "anonymous_gets_authentication_required",
			claims: nil,
			resSetup: func(f *fakeResourcesGetter) {
				f.getFn = func(ctx context.Context, id string) (resource.Resource, error) {
					return resource.Resource{ID: id, Title: "Seed Round"}, nil
				}
			},
			wantStatus: http.StatusOK,
			wantState:  "authentication_required",
		},
		{
			name:   "limited_gets_role_restricted",
			claims: &auth.Claims{UserID: userID, Email: "l@example.com", Role: "limited"},
			userSetup: func(f *fakeUsersRepo) {
				f.getFn = func(ctx context.Context, id string) (user.User, error) {
					u := investorUser(id)
					u.Role = user.RoleLimited
					return u, nil
				}
			},
			resSetup: func(f *fakeResourcesGetter) {
				f.getFn = func(ctx context.Context, id string) (resource.Resource, error) {
					return resource.Resource{ID: id, Title: "Seed Round"}, nil
				}
			},
			wantStatus: http.StatusOK,
			wantState:  "role_restricted",
		},
		{
			name:   "investor_gets_form_pending",
			claims: &auth.Claims{UserID: userID, Email: "ada@example.com", Role: "investor"},
			userSetup: func(f *fakeUsersRepo) {
				f.getFn = func(ctx context.Context, id string) (user.User, error) {
					return investorUser(id), nil
				}
			},
			resSetup: func(f *fakeResourcesGetter) {
				f.getFn = func(ctx context.Context, id string) (resource.Resource, error) {
					return resource.Resource{ID: id, Title: "Seed Round"}, nil
				}
			},
			wantStatus: http.StatusOK,
			wantState:  "form_pending",
		},
		{
			name:       "missing_resource",
			claims:     nil,
			resSetup:   nil, // default fake returns ErrNotFound
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			users := &fakeUsersRepo{}
			resources := &fakeResourcesGetter{}

			if tt.userSetup != nil {
				tt.userSetup(users)
			}
			if tt.resSetup != nil {
				tt.resSetup(resources)
			}

			h := handlers.NewGateHandler(users, resources, &fakeLeadRecorder{}, nil, nil, nil)

			verifier := &fakeVerifier{claims: tt.claims}
			if tt.claims == nil {
				verifier.err = errors.New("no token")
			}
			authMW := middlewares.NewAuthMiddleware(verifier)

			r := gin.New()
			r.POST("/resources/:id/access", authMW.OptionalAuth(), h.CheckAccess)

			req := httptest.NewRequest(http.MethodPost, "/resources/"+resourceID+"/access", nil)
			if tt.claims != nil {
				req.Header.Set("Authorization", "Bearer test-token")
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantState != "" {
				var resp struct {
					State string `json:"state"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.State != tt.wantState {
					t.Fatalf("got state %q, want %q", resp.State, tt.wantState)
				}
			}
		})
	}
}

func TestSubmitLeadHandler(t *testing.T) {
	resourceID := newUUID()
	userID := newUUID()

	docRef := "s3://decks/deck.pdf"

	goodResource := func(f *fakeResourcesGetter) {
		f.getFn = func(ctx context.Context, id string) (resource.Resource, error) {
			return resource.Resource{ID: id, Title: "Seed Round", DocumentRef: &docRef}, nil
		}
	}
	goodUser := func(f *fakeUsersRepo) {
		f.getFn = func(ctx context.Context, id string) (user.User, error) {
			return investorUser(id), nil
		}
	}

	tests := []struct {
		name        string
		body        string
		claims      *auth.Claims
		userSetup   func(*fakeUsersRepo)
		resSetup    func(*fakeResourcesGetter)
		recSetup    func(*fakeLeadRecorder)
		wantStatus  int
		wantEnqueue int
	}{
		{
			name:        "success_records_lead_and_enqueues_alert",
			body:        `{"name":"Typed Name","email":"typed@example.com","phone":"+15550009"}`,
			claims:      &auth.Claims{UserID: userID, Email: "ada@example.com", Role: "investor"},
			userSetup:   goodUser,
			resSetup:    goodResource,
			wantStatus:  http.StatusCreated,
			wantEnqueue: 1,
		},
		{
			name:       "no_token_rejected",
			body:       `{"name":"Typed Name","email":"typed@example.com","phone":"+15550009"}`,
			claims:     nil,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "limited_role_forbidden",
			body:   `{"name":"Typed Name","email":"typed@example.com","phone":"+15550009"}`,
			claims: &auth.Claims{UserID: userID, Email: "l@example.com", Role: "limited"},
			userSetup: func(f *fakeUsersRepo) {
				f.getFn = func(ctx context.Context, id string) (user.User, error) {
					u := investorUser(id)
					u.Role = user.RoleLimited
					return u, nil
				}
			},
			resSetup:   goodResource,
			wantStatus: http.StatusForbidden,
		},
		{
			name:   "missing_phone_everywhere",
			body:   `{"name":"Typed Name","email":"typed@example.com","phone":"+15550009"}`,
			claims: &auth.Claims{UserID: userID, Email: "ada@example.com", Role: "investor"},
			userSetup: func(f *fakeUsersRepo) {
				f.getFn = func(ctx context.Context, id string) (user.User, error) {
					u := investorUser(id)
					u.Phone = ""
					return u, nil
				}
			},
			resSetup: goodResource,
			recSetup: nil,
			// account phone empty, but form phone present -> still fine
			wantStatus:  http.StatusCreated,
			wantEnqueue: 1,
		},
		{
			name:       "validation_error",
			body:       `{"name":"T"}`,
			claims:     &auth.Claims{UserID: userID, Email: "ada@example.com", Role: "investor"},
			userSetup:  goodUser,
			resSetup:   goodResource,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing_resource",
			body:       `{"name":"Typed Name","email":"typed@example.com","phone":"+15550009"}`,
			claims:     &auth.Claims{UserID: userID, Email: "ada@example.com", Role: "investor"},
			userSetup:  goodUser,
			resSetup:   nil, // default: ErrNotFound
			wantStatus: http.StatusNotFound,
		},
		{
			name:      "store_failure_is_retryable",
			body:      `{"name":"Typed Name","email":"typed@example.com","phone":"+15550009"}`,
			claims:    &auth.Claims{UserID: userID, Email: "ada@example.com", Role: "investor"},
			userSetup: goodUser,
			resSetup:  goodResource,
			recSetup: func(f *fakeLeadRecorder) {
				f.recordFn = func(ctx context.Context, req lead.CreateLeadRequest, resourceID, resourceTitle string) (lead.Lead, error) {
					return lead.Lead{}, lead.ErrNotRecorded
				}
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			users := &fakeUsersRepo{}
			resources := &fakeResourcesGetter{}
			recorder := &fakeLeadRecorder{}
			jobStore := &fakeJobStore{}

			if tt.userSetup != nil {
				tt.userSetup(users)
			}
			if tt.resSetup != nil {
				tt.resSetup(resources)
			}
			if tt.recSetup != nil {
				tt.recSetup(recorder)
			}

			h := handlers.NewGateHandler(users, resources, recorder, jobStore, nil, nil)

			verifier := &fakeVerifier{claims: tt.claims}
			if tt.claims == nil {
				verifier.err = errors.New("no token")
			}
			authMW := middlewares.NewAuthMiddleware(verifier)

			r := gin.New()
			r.POST("/resources/:id/leads", authMW.RequireAuth(), h.SubmitLead)

			req := httptest.NewRequest(http.MethodPost, "/resources/"+resourceID+"/leads", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.claims != nil {
				req.Header.Set("Authorization", "Bearer test-token")
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			if len(jobStore.created) != tt.wantEnqueue {
				t.Fatalf("got %d enqueued jobs, want %d", len(jobStore.created), tt.wantEnqueue)
			}
		})
	}
}

func TestSubmitLead_IdentityOverridesForm(t *testing.T) {
	resourceID := newUUID()
	userID := newUUID()

	users := &fakeUsersRepo{
		getFn: func(ctx context.Context, id string) (user.User, error) {
			return investorUser(id), nil
		},
	}
	resources := &fakeResourcesGetter{
		getFn: func(ctx context.Context, id string) (resource.Resource, error) {
			return resource.Resource{ID: id, Title: "Seed Round"}, nil
		},
	}

	var captured lead.CreateLeadRequest
	recorder := &fakeLeadRecorder{
		recordFn: func(ctx context.Context, req lead.CreateLeadRequest, resourceID, resourceTitle string) (lead.Lead, error) {
			captured = req
			return lead.New(req, resourceID, resourceTitle), nil
		},
	}

	h := handlers.NewGateHandler(users, resources, recorder, nil, nil, nil)

	authMW := middlewares.NewAuthMiddleware(&fakeVerifier{
		claims: &auth.Claims{UserID: userID, Email: "ada@example.com", Role: "investor"},
	})

	r := gin.New()
	r.POST("/resources/:id/leads", authMW.RequireAuth(), h.SubmitLead)

	body := `{"name":"Impostor","email":"impostor@example.com","phone":"+15550000"}`
	req := httptest.NewRequest(http.MethodPost, "/resources/"+resourceID+"/leads", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if captured.Email != "ada@example.com" || captured.Phone != "+15550001" || captured.Name != "Ada Investor" {
		t.Fatalf("account identity must win over typed values, got %+v", captured)
	}
}
