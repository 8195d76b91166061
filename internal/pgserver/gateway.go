package pgserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	// ErrUnknownVariable marks SHOW failures for settings the server does not know.
	ErrUnknownVariable = errors.New("unknown configuration variable")
	// ErrConnection marks any other database fault.
	ErrConnection = errors.New("database connection error")
)

// sqlstateUndefinedObject is what the server reports for SHOW on an
// unrecognized variable.
const sqlstateUndefinedObject = "42704"

var identPattern = regexp.MustCompile(`^\w+$`)

// ConnParams identifies the target server. The password, when required,
// reaches the driver through PGPASSWORD or ~/.pgpass.
type ConnParams struct {
	Host     string
	Port     int
	User     string
	Database string
}

// DSN renders the params in key=value form, omitting unset fields so the
// driver defaults (local socket, current user) apply.
func (p ConnParams) DSN() string {
	parts := make([]string, 0, 4)
	if strings.TrimSpace(p.Host) != "" {
		parts = append(parts, "host="+p.Host)
	}
	if p.Port > 0 {
		parts = append(parts, fmt.Sprintf("port=%d", p.Port))
	}
	if strings.TrimSpace(p.User) != "" {
		parts = append(parts, "user="+p.User)
	}
	if strings.TrimSpace(p.Database) != "" {
		parts = append(parts, "dbname="+p.Database)
	}
	return strings.Join(parts, " ")
}

// Gateway reads live settings over a single reused connection.
type Gateway struct {
	params ConnParams
	db     *sql.DB
}

// New prepares a gateway; no connection is made until the first read.
func New(params ConnParams) *Gateway {
	return &Gateway{params: params}
}

func (g *Gateway) ensure(ctx context.Context) (*sql.DB, error) {
	if g.db != nil {
		return g.db, nil
	}
	db, err := sql.Open("pgx", g.params.DSN())
	if err != nil {
		return nil, fmt.Errorf("%w: open: %w", ErrConnection, err)
	}
	// Single threaded, single session for the whole run.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: connect %q: %w", ErrConnection, g.params.DSN(), err)
	}
	g.db = db
	return db, nil
}

// Show runs SHOW <name> and returns the live value as the server reports it.
func (g *Gateway) Show(ctx context.Context, name string) (string, error) {
	if !identPattern.MatchString(name) {
		return "", fmt.Errorf("invalid setting name %q", name)
	}
	db, err := g.ensure(ctx)
	if err != nil {
		return "", err
	}

	var value string
	// SHOW takes no bind parameters; the identifier is validated above.
	if err := db.QueryRowContext(ctx, "SHOW "+name).Scan(&value); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == sqlstateUndefinedObject {
			return "", fmt.Errorf("%w: %s", ErrUnknownVariable, name)
		}
		return "", fmt.Errorf("%w: show %s: %w", ErrConnection, name, err)
	}
	return value, nil
}

// DataDirectory reports the server's data directory.
func (g *Gateway) DataDirectory(ctx context.Context) (string, error) {
	return g.Show(ctx, "data_directory")
}

// Close releases the connection. Safe to call before any read happened.
func (g *Gateway) Close() error {
	if g == nil || g.db == nil {
		return nil
	}
	db := g.db
	g.db = nil
	return db.Close()
}
