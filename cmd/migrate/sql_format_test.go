package main

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	createTableRe = regexp.MustCompile(`(?i)CREATE TABLE IF NOT EXISTS (\w+)`)
	dropTableRe   = regexp.MustCompile(`(?i)DROP TABLE IF EXISTS (\w+)`)
)

func TestSQLMigrations_DownReversesUp(t *testing.T) {
	dir := repoMigrationsDir(t)
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, path := range files {
		name := filepath.Base(path)
		t.Run(name, func(t *testing.T) {
			b, err := os.ReadFile(path)
			require.NoError(t, err)
			s := string(b)

			up := strings.Index(s, "-- +goose Up")
			down := strings.Index(s, "-- +goose Down")
			require.NotEqual(t, -1, up, "missing Up directive")
			require.NotEqual(t, -1, down, "missing Down directive")
			require.Less(t, up, down, "Up must precede Down")

			var created, dropped []string
			for _, m := range createTableRe.FindAllStringSubmatch(s[up:down], -1) {
				created = append(created, m[1])
			}
			for _, m := range dropTableRe.FindAllStringSubmatch(s[down:], -1) {
				dropped = append(dropped, m[1])
			}
			assert.ElementsMatch(t, created, dropped, "every table created in Up is dropped in Down")
		})
	}
}
