package authmw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, claims Claims, secret []byte) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func doctorClaims() Claims {
	return Claims{
		Role:       "doctor",
		Name:       "Perry",
		Surname:    "Cox",
		License:    "MP-100",
		NationalID: "20-11111111-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "cox@hospital.test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

// echoIdentity writes 200 and records the identity it saw.
func echoIdentity(got *Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := FromContext(r.Context())
		if err != nil {
			http.Error(w, "no identity", http.StatusInternalServerError)
			return
		}
		*got = id
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_ValidToken(t *testing.T) {
	t.Parallel()

	var got Identity
	h := Authenticate(testSecret)(echoIdentity(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, doctorClaims(), testSecret))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.Role != RoleDoctor {
		t.Errorf("Role = %q, want %q", got.Role, RoleDoctor)
	}
	if got.Email != "cox@hospital.test" {
		t.Errorf("Email = %q, want subject claim", got.Email)
	}
	if got.License != "MP-100" {
		t.Errorf("License = %q, want MP-100", got.License)
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	t.Parallel()

	wrongAlgToken := func(t *testing.T) string {
		t.Helper()
		// alg=none is never acceptable.
		tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, doctorClaims()).SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("sign none token: %v", err)
		}
		return tok
	}

	expiredClaims := doctorClaims()
	expiredClaims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	rolelessClaims := doctorClaims()
	rolelessClaims.Role = ""

	janitorClaims := doctorClaims()
	janitorClaims.Role = "janitor"

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + signToken(t, doctorClaims(), []byte("other-secret"))},
		{"none algorithm", "Bearer " + wrongAlgToken(t)},
		{"expired", "Bearer " + signToken(t, expiredClaims, testSecret)},
		{"missing role", "Bearer " + signToken(t, rolelessClaims, testSecret)},
		{"unknown role", "Bearer " + signToken(t, janitorClaims, testSecret)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				t.Error("handler reached with invalid credentials")
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		identity *Identity
		require  Role
		want     int
	}{
		{"doctor allowed", &Identity{Role: RoleDoctor}, RoleDoctor, http.StatusOK},
		{"nurse allowed", &Identity{Role: RoleNurse}, RoleNurse, http.StatusOK},
		{"nurse cannot claim", &Identity{Role: RoleNurse}, RoleDoctor, http.StatusForbidden},
		{"doctor cannot register", &Identity{Role: RoleDoctor}, RoleNurse, http.StatusForbidden},
		{"unauthenticated", nil, RoleDoctor, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := RequireRole(tt.require)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.identity != nil {
				req = req.WithContext(WithIdentity(req.Context(), *tt.identity))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestFromContext_NoIdentity(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := FromContext(req.Context()); err != ErrNoIdentity {
		t.Errorf("err = %v, want ErrNoIdentity", err)
	}
}
