package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	authdomain "github.com/railzwaylabs/waterworks/internal/auth/domain"
	"github.com/railzwaylabs/waterworks/internal/auth/password"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"github.com/railzwaylabs/waterworks/internal/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "user", "db"}, names)

	user, _, err := root.Find([]string{"user", "passwd"})
	require.NoError(t, err)
	assert.Equal(t, "passwd", user.Name())
}

func TestUserHash(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"user", "hash", "secreto"})

	require.NoError(t, root.Execute())

	hash := strings.TrimSpace(out.String())
	assert.True(t, password.Verify(hash, "secreto"))
	assert.False(t, password.Verify(hash, "otro"))
}

func TestUserHash_RequiresOneArg(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"user", "hash"})

	assert.Error(t, root.Execute())
}

func TestCheckDatabase(t *testing.T) {
	db := dbtest.New(t)
	dbtest.User(t, db, "Ana", "Lopez", authzdomain.RoleAdmin)
	sector := dbtest.Sector(t, db, "Centro")
	dbtest.Customer(t, db, sector.ID, "Juan", "Perez", "M-001")
	dbtest.Customer(t, db, sector.ID, "Rosa", "Diaz", "M-002")

	var out bytes.Buffer
	require.NoError(t, checkDatabase(context.Background(), db, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "database version: "))
	assert.Equal(t, []string{"users", "1"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"customers", "2"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"sectors", "1"}, strings.Fields(lines[3]))
	assert.Equal(t, []string{"readings", "0"}, strings.Fields(lines[4]))
	assert.Equal(t, []string{"payments", "0"}, strings.Fields(lines[5]))
}

func TestPrintUsers(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printUsers(&out, []authdomain.Response{
		{ID: "1", FirstName: "Ana", LastName: "Lopez", Email: "ana@corinto.org", Role: "ADMIN", Active: true, CreatedAt: time.Now()},
	}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"ID", "NAME", "EMAIL", "ROLE", "ACTIVE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1", "Ana", "Lopez", "ana@corinto.org", "ADMIN", "true"}, strings.Fields(lines[1]))
}
