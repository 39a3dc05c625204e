package main

import (
	"os"

	"code.cloudfoundry.org/dbx/cmd"
	flags "github.com/jessevdk/go-flags"
)

func main() {
	parser := flags.NewNamedParser("dbx", flags.Default)
	parser.NamespaceDelimiter = "-"

	commands := []struct {
		name  string
		short string
		long  string
		data  interface{}
	}{
		{"up", "Apply pending migrations", "Apply every pending schema migration, retrying on lock timeouts.", &cmd.UpCommand{}},
		{"down", "Roll back migrations", "Roll back the most recently applied migration, or all of them with --all.", &cmd.DownCommand{}},
		{"status", "Verify applied migrations", "Verify that the database matches the known migration set.", &cmd.StatusCommand{}},
		{"create", "Create all tables", "Bring a fresh database to the latest schema, unless it is already managed.", &cmd.CreateCommand{}},
		{"drop", "Drop all tables", "Roll back every migration and remove the version table.", &cmd.DropCommand{}},
		{"init", "Create the database", "Create the configured database if it does not exist.", &cmd.InitCommand{}},
		{"destroy", "Drop the database", "Drop the configured database.", &cmd.DestroyCommand{}},
	}

	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.data); err != nil {
			panic(err)
		}
	}

	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}
}
