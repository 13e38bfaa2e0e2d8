package service

import (
	"context"
	"errors"
	"testing"

	"github.com/NDP4/CompanyLock-Manager/internal/core/domain"
)

func directoryFixture() *fakeRemote {
	inactive := domain.Identity{ID: 9, Username: "carol", Role: domain.RoleUser, IsActive: false}
	admin := *adminIdentity()
	return &fakeRemote{users: []domain.UserRecord{
		{Identity: admin},
		{Identity: alice()},
		{Identity: bob()},
		{Identity: inactive},
	}}
}

func TestDirectory_Users(t *testing.T) {
	d := NewDirectory(directoryFixture(), nil)
	ctx := context.Background()

	all, err := d.Users(ctx, true)
	if err != nil || len(all) != 4 {
		t.Fatalf("Users(all) = %d, %v", len(all), err)
	}
	employees, err := d.Employees(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(employees) != 2 || employees[0].Username != "alice" || employees[1].Username != "bob" {
		t.Errorf("Employees() = %+v", employees)
	}
}

func TestDirectory_Resolve(t *testing.T) {
	tests := []struct {
		ref     string
		wantID  int64
		wantErr bool
	}{
		{"7", 7, false},
		{" bob ", 8, false},
		{"alice", 7, false},
		{"Alice", 0, true},
		{"1", 0, true},  // admin is not an employee
		{"9", 0, true},  // inactive
		{"42", 0, true}, // unknown id
		{"nobody", 0, true},
		{"", 0, true},
	}

	d := NewDirectory(directoryFixture(), nil)
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			id, err := d.Resolve(context.Background(), tt.ref)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Errorf("Resolve(%q) error = %v, want ErrValidation", tt.ref, err)
				}
				return
			}
			if err != nil || id.ID != tt.wantID {
				t.Errorf("Resolve(%q) = %+v, %v", tt.ref, id, err)
			}
		})
	}
}

func TestDirectory_ResolvePropagatesRemoteErrors(t *testing.T) {
	remote := directoryFixture()
	remote.err = domain.ErrServer.WithStatus(500)
	d := NewDirectory(remote, nil)

	if _, err := d.Resolve(context.Background(), "7"); !errors.Is(err, domain.ErrServer) {
		t.Errorf("Resolve() error = %v, want ErrServer", err)
	}
	if _, err := d.Resolve(context.Background(), "alice"); !errors.Is(err, domain.ErrServer) {
		t.Errorf("Resolve() error = %v, want ErrServer", err)
	}
}

func TestDirectory_AuditLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultAuditLimit},
		{-5, DefaultAuditLimit},
		{1, 1},
		{250, 250},
		{5000, MaxAuditLimit},
	}
	for _, tt := range tests {
		remote := &fakeRemote{audit: []domain.AuditEntry{{ID: 1, Action: domain.AuditLogin}}}
		d := NewDirectory(remote, nil)
		logs, err := d.AuditLogs(context.Background(), tt.in)
		if err != nil || len(logs) != 1 {
			t.Fatalf("AuditLogs() = %v, %v", logs, err)
		}
		if remote.lastLimit != tt.want {
			t.Errorf("limit %d sent as %d, want %d", tt.in, remote.lastLimit, tt.want)
		}
	}
}

func TestDirectory_Health(t *testing.T) {
	remote := &fakeRemote{health: &domain.HealthStatus{Status: "healthy", EncryptionStatus: "ok"}}
	h, err := NewDirectory(remote, nil).Health(context.Background())
	if err != nil || !h.Healthy() {
		t.Errorf("Health() = %+v, %v", h, err)
	}
}
