// bootstrap-user creates a user that can log in immediately: the branch and
// application rows are created if missing and both entitlements are granted.
//
//	go run ./scripts/bootstrap-user.go -usuario admin -clave secret -sucursal "Casa Matriz"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gestion/authsvc/internal/auth"
	"github.com/gestion/authsvc/internal/repository"
	"github.com/gestion/authsvc/internal/service"
)

type output struct {
	UserID     string `json:"user_id"`
	Username   string `json:"usuario"`
	BranchID   int64  `json:"id_sucursal"`
	BranchName string `json:"sucursal_nombre"`
	AppID      int64  `json:"id_app"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		username    = flag.String("usuario", "admin", "Username")
		password    = flag.String("clave", os.Getenv("BOOTSTRAP_PASSWORD"), "Password (defaults to BOOTSTRAP_PASSWORD)")
		email       = flag.String("correo", "admin@example.com", "Email")
		firstName   = flag.String("nombre", "Admin", "First name")
		surname     = flag.String("apellido", "Sistema", "Paternal surname")
		branchName  = flag.String("sucursal", "Casa Matriz", "Active branch name")
		appID       = flag.Int64("app-id", 2, "Application id the user is entitled to")
		roleID      = flag.Int64("rol", 1, "Role id")
		hasher      = flag.String("hasher", "bcrypt", "Password hasher: bcrypt or argon2id")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *password == "" {
		fmt.Fprintln(os.Stderr, "a password is required (-clave or BOOTSTRAP_PASSWORD)")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	branchID, err := repo.EnsureBranch(ctx, *branchName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := repo.EnsureApp(ctx, *appID, fmt.Sprintf("app-%d", *appID)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	svc := service.NewAuthService(service.AuthDeps{
		Store:     repo,
		Passwords: auth.NewPasswords(*hasher, 12),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, service.AuthConfig{
		AppID:            *appID,
		DefaultStatusID:  1,
		DefaultRoleID:    3,
		DefaultProfileID: 1,
	})

	user, err := svc.Register(ctx, service.RegisterInput{
		Email:           *email,
		Password:        *password,
		Username:        *username,
		FirstName:       *firstName,
		PaternalSurname: *surname,
		ActiveBranchID:  branchID,
		RoleID:          roleID,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "create user:", err)
		os.Exit(1)
	}

	if err := repo.GrantApp(ctx, user.ID, *appID); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := repo.GrantBranch(ctx, user.ID, branchID); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	out := output{
		UserID:     user.ID,
		Username:   user.Username,
		BranchID:   branchID,
		BranchName: *branchName,
		AppID:      *appID,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.UserID)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}
