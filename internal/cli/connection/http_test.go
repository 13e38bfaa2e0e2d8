package connection

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NDP4/CompanyLock-Manager/internal/core/domain"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		server  string
		apiBase string
		want    string
	}{
		{"with http prefix", "http://localhost:8000", "/api", "http://localhost:8000/api"},
		{"with https prefix", "https://localhost:8000", "/api", "https://localhost:8000/api"},
		{"without prefix", "localhost:8000", "/api", "http://localhost:8000/api"},
		{"trailing slash", "http://localhost:8000/", "api/", "http://localhost:8000/api"},
		{"already prefixed", "http://localhost:8000/api", "/api", "http://localhost:8000/api"},
		{"no api base", "api.example.com", "", "http://api.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeBaseURL(tt.server, tt.apiBase); got != tt.want {
				t.Errorf("NormalizeBaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateServer(t *testing.T) {
	tests := []struct {
		server  string
		wantErr bool
	}{
		{"localhost:8000", false},
		{"https://lock.example.com", false},
		{"", true},
		{"   ", true},
	}
	for _, tt := range tests {
		if err := ValidateServer(tt.server); (err != nil) != tt.wantErr {
			t.Errorf("ValidateServer(%q) error = %v, wantErr %v", tt.server, err, tt.wantErr)
		}
	}
}

func TestHTTPClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %q, want GET", r.Method)
		}
		if r.URL.Path != "/api/test/path" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/api/test/path")
		}
		if r.Header.Get("Authorization") != "Bearer abc" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	p := NewPipeline(PipelineConfig{Session: &fakeSession{cred: "abc"}})
	client := NewHTTPClient(server.URL, DefaultAPIBase, p)

	resp, err := client.Get(context.Background(), "/test/path")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	var out map[string]string
	if err := ParseResponse(resp, &out); err != nil {
		t.Fatal(err)
	}
	if out["status"] != "ok" {
		t.Errorf("status = %q", out["status"])
	}
}

func TestHTTPClient_Post(t *testing.T) {
	type requestBody struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}

		var body requestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Name != "test" || body.Value != 42 {
			t.Errorf("body = %+v", body)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "", NewPipeline(PipelineConfig{}))
	resp, err := client.Post(context.Background(), "/create", requestBody{Name: "test", Value: 42})
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if err := ParseResponse(resp, nil); err != nil {
		t.Errorf("ParseResponse(nil) = %v", err)
	}
}

func TestHTTPClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "", NewPipeline(PipelineConfig{}))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.Get(ctx, "/slow"); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestAPI_Endpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "admin" || body["password"] != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"Username atau password salah"}`))
			return
		}
		w.Write([]byte(`{"access_token":"jwt","token_type":"bearer","user":{"id":1,"username":"admin","full_name":"Admin","role":"Admin","is_active":true,"must_change_password":true}}`))
	})
	mux.HandleFunc("/api/tokens/generate", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"tok","expires_at":"2026-10-16T10:30:00.123456","duration_minutes":30,"user_id":7}`))
	})
	mux.HandleFunc("/api/tokens/use", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["username"]; ok && body["username"] != "alice" {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"detail":"Username tidak sesuai dengan pemilik token!"}`))
			return
		}
		w.Write([]byte(`{"user":{"id":7,"username":"alice","full_name":"Alice","is_active":true},"password":"s3cret"}`))
	})
	mux.HandleFunc("/api/users", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"users":[{"id":7,"username":"alice","full_name":"Alice","department":"IT","role":"User","is_active":true,"created_at":"2026-01-02T03:04:05"}]}`))
	})
	mux.HandleFunc("/api/audit-logs", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "5" {
			t.Errorf("limit = %q", r.URL.Query().Get("limit"))
		}
		w.Write([]byte(`{"logs":[{"id":1,"action":"TOKEN_GENERATED","admin_id":1,"target_user_id":null,"details":{"duration":30},"client_host":"127.0.0.1","created_at":null}]}`))
	})
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"healthy","timestamp":"2026-10-16T00:00:00Z","encryption_status":"ok"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx := context.Background()
	api := NewAPI(NewHTTPClient(server.URL, DefaultAPIBase, NewPipeline(PipelineConfig{})))

	user, cred, err := api.Login(ctx, "admin", "pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if cred != "jwt" || !user.IsAdmin() || !user.MustChangePassword {
		t.Errorf("Login() = %+v, %q", user, cred)
	}

	_, _, err = api.Login(ctx, "admin", "wrong")
	if !errors.Is(err, domain.ErrAuthentication) {
		t.Errorf("bad login error = %v", err)
	}

	gen, err := api.GenerateToken(ctx, 7, 30)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	wantExp := time.Date(2026, 10, 16, 10, 30, 0, 123456000, time.UTC)
	if gen.Token != "tok" || gen.TargetID != 7 || gen.DurationMinutes != 30 {
		t.Errorf("GenerateToken() = %+v", gen)
	}
	if !gen.ExpiresAt.Equal(wantExp) {
		t.Errorf("ExpiresAt = %v, want %v", gen.ExpiresAt, wantExp)
	}

	used, err := api.UseToken(ctx, "tok", "alice")
	if err != nil {
		t.Fatalf("UseToken() error = %v", err)
	}
	if used.Secret != "s3cret" || used.Identity.ID != 7 {
		t.Errorf("UseToken() = %+v", used)
	}
	if _, err := api.UseToken(ctx, "tok", "bob"); !errors.Is(err, domain.ErrAuthorization) {
		t.Errorf("mismatched username error = %v", err)
	}

	users, err := api.ListUsers(ctx)
	if err != nil || len(users) != 1 {
		t.Fatalf("ListUsers() = %v, %v", users, err)
	}
	if users[0].Department != "IT" || users[0].CreatedAt.Year() != 2026 {
		t.Errorf("user = %+v", users[0])
	}

	logs, err := api.AuditLogs(ctx, 5)
	if err != nil || len(logs) != 1 {
		t.Fatalf("AuditLogs() = %v, %v", logs, err)
	}
	if logs[0].TargetUserID != nil || logs[0].AdminID == nil || !logs[0].CreatedAt.IsZero() {
		t.Errorf("log = %+v", logs[0])
	}

	health, err := api.Health(ctx)
	if err != nil || health.Status != "healthy" {
		t.Errorf("Health() = %+v, %v", health, err)
	}
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{`"2026-10-16T10:00:00Z"`, time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC), false},
		{`"2026-10-16T12:00:00+02:00"`, time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC), false},
		{`"2026-10-16T10:00:00"`, time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC), false},
		{`"2026-10-16 10:00:00"`, time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC), false},
		{`null`, time.Time{}, false},
		{`""`, time.Time{}, false},
		{`"yesterday"`, time.Time{}, true},
		{`42`, time.Time{}, true},
	}
	for _, tt := range tests {
		var ts Timestamp
		err := json.Unmarshal([]byte(tt.in), &ts)
		if (err != nil) != tt.wantErr {
			t.Errorf("Unmarshal(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !ts.Equal(tt.want) {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, ts.Time, tt.want)
		}
	}

	if got := (Timestamp{}).String(); got != "-" {
		t.Errorf("zero String() = %q", got)
	}
	b, _ := json.Marshal(Timestamp{})
	if string(b) != "null" {
		t.Errorf("zero MarshalJSON = %s", b)
	}
}
