package validator

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/praetorian-inc/policyscan/pkg/types"
)

// PostgresValidator validates PostgreSQL connection URIs.
// Uses pgx/v5 pgconn for low-level connection testing without connection pooling.
type PostgresValidator struct {
	timeout time.Duration
}

// NewPostgresValidator creates a new PostgreSQL credential validator.
func NewPostgresValidator() *PostgresValidator {
	return &PostgresValidator{timeout: 5 * time.Second}
}

// Name returns the validator name.
func (v *PostgresValidator) Name() string {
	return "postgres"
}

// CanValidate accepts postgres:// and postgresql:// URIs carrying a password.
func (v *PostgresValidator) CanValidate(secret string) bool {
	_, _, _, _, err := parsePostgresURI(secret)
	return err == nil
}

// Validate checks PostgreSQL credentials by attempting a connection.
func (v *PostgresValidator) Validate(ctx context.Context, secret string, _ *types.LineContext) (*types.ValidationResult, error) {
	username, password, host, port, err := parsePostgresURI(secret)
	if err != nil {
		return types.NewValidationResult(types.StatusUndetermined, 0, fmt.Sprintf("cannot validate: %v", err)), nil
	}

	if isLocalhost(host) {
		return types.NewValidationResult(types.StatusUndetermined, 0, "skipping localhost address - cannot validate"), nil
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(username, password),
		Host:     net.JoinHostPort(host, port),
		Path:     "/postgres",
		RawQuery: fmt.Sprintf("connect_timeout=%d", int(v.timeout.Seconds())),
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	conn, err := pgconn.Connect(ctx, u.String())
	if err != nil {
		return analyzeConnectionError(err), nil
	}
	defer conn.Close(ctx)

	return types.NewValidationResult(types.StatusValid, 1.0,
		fmt.Sprintf("valid PostgreSQL credentials for user %s@%s:%s", username, host, port)), nil
}

func parsePostgresURI(s string) (username, password, host, port string, err error) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", "", "", "", err
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", "", "", "", fmt.Errorf("not a postgres URI")
	}
	if u.User == nil || u.User.Username() == "" {
		return "", "", "", "", fmt.Errorf("username not found")
	}
	password, ok := u.User.Password()
	if !ok || password == "" {
		return "", "", "", "", fmt.Errorf("password not found")
	}
	host = u.Hostname()
	if host == "" {
		return "", "", "", "", fmt.Errorf("host not found")
	}
	port = u.Port()
	if port == "" {
		port = "5432"
	}
	return u.User.Username(), password, host, port, nil
}

// isLocalhost returns true if the host is a localhost address.
func isLocalhost(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// analyzeConnectionError maps authentication failures to StatusInvalid and
// anything else (DNS, refused, timeout) to StatusUndetermined.
func analyzeConnectionError(err error) *types.ValidationResult {
	if strings.Contains(err.Error(), "authentication failed") {
		return types.NewValidationResult(types.StatusInvalid, 1.0, fmt.Sprintf("credentials rejected: %v", err))
	}
	return types.NewValidationResult(types.StatusUndetermined, 0.5,
		fmt.Sprintf("connection failed (unable to verify credentials): %v", err))
}
