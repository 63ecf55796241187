package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/noah-isme/rugby-club-api/internal/models"
	"github.com/noah-isme/rugby-club-api/internal/repository"
	"github.com/noah-isme/rugby-club-api/internal/service"
	"github.com/noah-isme/rugby-club-api/pkg/config"
	"github.com/noah-isme/rugby-club-api/pkg/database"
	"github.com/noah-isme/rugby-club-api/pkg/logger"
)

// create-admin bootstraps the first SUPERADMIN account. It refuses to run when
// one already exists unless -force is given.
func main() {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)
	email := fs.String("email", "", "Account email (prompted when empty)")
	name := fs.String("name", "Club Administrator", "Display name")
	role := fs.String("role", string(models.RoleSuperAdmin), "Role to grant")
	force := fs.Bool("force", false, "Create even if a SUPERADMIN already exists")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: create-admin [OPTIONS]\n\n")
		fmt.Fprintf(os.Stderr, "Creates a club staff account. The password is read from the terminal.\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load()
	if err != nil {
		fail("load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		fail("init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		fail("connect database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repo := repository.NewUserRepository(db)
	if !*force {
		count, err := repo.CountByRole(ctx, models.RoleSuperAdmin)
		if err != nil {
			fail("count superadmins: %v", err)
		}
		if count > 0 {
			fail("a SUPERADMIN already exists, use -force to add another account")
		}
	}

	if strings.TrimSpace(*email) == "" {
		*email = prompt("Email: ")
	}
	password := readPassword("Password: ")
	confirm := readPassword("Confirm password: ")
	if password != confirm {
		fail("passwords do not match")
	}

	users := service.NewUserService(repo, nil, logr)
	user, err := users.Create(ctx, service.CreateUserRequest{
		Email:    *email,
		FullName: *name,
		Role:     models.UserRole(strings.ToUpper(*role)),
		Active:   true,
		Password: password,
	}, "", models.LoginRequest{UserAgent: "create-admin"})
	if err != nil {
		fail("create user: %v", err)
	}
	fmt.Printf("created %s %s (%s)\n", user.Role, user.Email, user.ID)
}

var stdin = bufio.NewReader(os.Stdin)

func prompt(label string) string {
	fmt.Print(label)
	line, err := stdin.ReadString('\n')
	if err != nil {
		fail("read input: %v", err)
	}
	return strings.TrimSpace(line)
}

func readPassword(label string) string {
	fmt.Print(label)
	if !term.IsTerminal(int(syscall.Stdin)) {
		return prompt("")
	}
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fail("read password: %v", err)
	}
	return string(raw)
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
