package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCmd_HasSubcommands(t *testing.T) {
	commandNames := make([]string, 0)
	for _, cmd := range rootCmd.Commands() {
		commandNames = append(commandNames, cmd.Name())
	}

	for _, name := range []string{
		"project", "document", "ingest", "retrieve", "ask", "chat",
		"history", "settings", "watch", "serve", "version",
	} {
		assert.Contains(t, commandNames, name)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("owner"))
}

func TestSetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)

	SetVersion("")
	assert.Equal(t, "1.2.3", version, "empty version keeps the current one")
}

func TestCommands_ErrorWithoutServices(t *testing.T) {
	clearServices(t)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"project", "list"}, "project service not configured"},
		{[]string{"document", "list", "p"}, "document service not configured"},
		{[]string{"document", "reindex", "d"}, "ingestion service not configured"},
		{[]string{"ingest", "p"}, "document service not configured"},
		{[]string{"retrieve", "p", "q"}, "retrieval service not configured"},
		{[]string{"ask", "p", "q"}, "answer service not configured"},
		{[]string{"chat", "p", "q"}, "chat service not configured"},
		{[]string{"history", "p"}, "chat service not configured"},
		{[]string{"settings", "show"}, "settings service not configured"},
		{[]string{"serve"}, "retrieval service is required"},
	}

	for _, tt := range tests {
		t.Run(tt.args[0]+" "+tt.args[1%len(tt.args)], func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
