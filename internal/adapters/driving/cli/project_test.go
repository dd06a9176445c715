package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus/internal/core/domain"
)

func TestProjectCmd_Use(t *testing.T) {
	assert.Equal(t, "project", projectCmd.Use)
}

func TestProjectCreateCmd_RequiresExactlyOneArg(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "project", "create")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestProjectCreateAndList(t *testing.T) {
	env := setupTestServices(t)

	out, err := execute(t, "project", "create", "Research")
	require.NoError(t, err)
	assert.Contains(t, out, "Created project")
	assert.Contains(t, out, "(Research)")

	_, err = execute(t, "--owner", "someone-else", "project", "create", "Other")
	require.NoError(t, err)

	out, err = execute(t, "project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Research")
	assert.NotContains(t, out, "Other")
	assert.Contains(t, out, "Total: 1 projects")

	out, err = execute(t, "project", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Other")

	all, err := env.services.Projects.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestProjectListCmd_Empty(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "project", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No projects found.")
}

func TestProjectGetCmd(t *testing.T) {
	env := setupTestServices(t)
	p := env.createProject(t, "Research")
	_, err := execute(t, "document", "upload", "--no-ingest", p.ID, writeFile(t, t.TempDir(), "a.txt", "apples"))
	require.NoError(t, err)

	out, err := execute(t, "project", "get", p.ID)

	require.NoError(t, err)
	assert.Contains(t, out, "Name:     Research")
	assert.Contains(t, out, "Documents: 1 (0 processed, 1 pending, 0 failed)")

	_, err = execute(t, "project", "get", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectDeleteCmd(t *testing.T) {
	env := setupTestServices(t)
	p := env.createProject(t, "Research")
	_, err := execute(t, "document", "upload", p.ID, writeFile(t, t.TempDir(), "a.txt", "apples are fruit"))
	require.NoError(t, err)

	out, err := execute(t, "project", "delete", p.ID)

	require.NoError(t, err)
	assert.Contains(t, out, "deleted")
	_, err = env.services.Projects.Get(context.Background(), p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	n, err := env.vectors.Count(context.Background(), p.ID, "")
	require.NoError(t, err)
	assert.Zero(t, n)
}
