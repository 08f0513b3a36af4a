package clickhouse

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed schema.sql
var schemaSQL string

// Migrate applies the embedded tick schema. Statements are executed one
// at a time; the driver does not support multiquery Exec.
func Migrate(ctx context.Context, conn *Conn) error {
	for _, stmt := range splitStatements(schemaSQL) {
		if err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply tick schema: %w", err)
		}
	}
	return nil
}

// splitStatements splits SQL into statements by semicolon, dropping
// comment lines. Schema files must not put semicolons inside string
// literals.
func splitStatements(input string) []string {
	var filtered []string
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		filtered = append(filtered, line)
	}
	joined := strings.Join(filtered, "\n")

	var stmts []string
	for _, part := range strings.Split(joined, ";") {
		stmt := strings.TrimSpace(part)
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
