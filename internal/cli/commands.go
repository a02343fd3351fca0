package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// newQueryCommand runs SQL text (argument or stdin) against a profile.
func newQueryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [sql]",
		Short: "Execute SQL against a profile",
		Long: `Execute one or more SQL statements against the selected profile.
Statements are split on semicolons (quote- and comment-aware) and run
in order; execution stops at the first failure. With no argument the
SQL text is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sqlText string
			if len(args) == 1 {
				sqlText = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read SQL from stdin: %w", err)
				}
				sqlText = string(data)
			}
			if strings.TrimSpace(sqlText) == "" {
				return fmt.Errorf("no SQL to execute")
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			result := s.Execute(cmd.Context(), sqlText)
			return renderBatch(cmd.OutOrStdout(), result, outputFormat(cmd))
		},
	}
	return cmd
}

// newTablesCommand lists tables and views.
func newTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables and views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			tables, err := s.ListTables(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, len(tables))
			for i, t := range tables {
				rows[i] = []string{t.Schema, t.Name, string(t.Kind)}
			}
			renderTable(cmd.OutOrStdout(), []string{"schema", "name", "kind"}, rows)
			return nil
		},
	}
}

// newColumnsCommand shows column metadata for a table.
func newColumnsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "columns <table>",
		Short: "Show columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			columns, err := s.GetColumns(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, len(columns))
			for i, c := range columns {
				nullable := "NO"
				if c.Nullable {
					nullable = "YES"
				}
				pk := ""
				if c.PrimaryKey {
					pk = "PK"
				}
				def := ""
				if c.Default != nil {
					def = *c.Default
				}
				rows[i] = []string{c.Name, c.Type, nullable, def, pk}
			}
			renderTable(cmd.OutOrStdout(), []string{"name", "type", "nullable", "default", "key"}, rows)
			return nil
		},
	}
}

// newIndexesCommand shows index metadata for a table.
func newIndexesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "indexes <table>",
		Short: "Show indexes of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			indexes, err := s.GetIndexes(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, len(indexes))
			for i, idx := range indexes {
				rows[i] = []string{
					idx.Name,
					strconv.FormatBool(idx.Primary),
					strconv.FormatBool(idx.Unique),
					idx.Definition,
				}
			}
			renderTable(cmd.OutOrStdout(), []string{"name", "primary", "unique", "definition"}, rows)
			return nil
		},
	}
}

// newSelectCommand previews the contents of a table.
func newSelectCommand() *cobra.Command {
	var limit int
	var schema string
	cmd := &cobra.Command{
		Use:   "select <table>",
		Short: "Preview rows of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			query := s.GenerateSelect(schema, args[0], limit)
			getLogger(cmd.Context()).Debug("running preview query")
			result := s.Execute(cmd.Context(), query)
			return renderBatch(cmd.OutOrStdout(), result, outputFormat(cmd))
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "maximum rows to fetch")
	cmd.Flags().StringVar(&schema, "schema", "", "schema to qualify the table with")
	return cmd
}

// newPingCommand checks that the profile's database answers.
func newPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test connectivity of a profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if !s.TestConnection(cmd.Context()) {
				return fmt.Errorf("profile %q did not answer", s.Profile)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", s.Profile)
			return nil
		},
	}
}

// newInfoCommand shows server facts for a profile.
func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show server version and database facts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			meta, err := s.Metadata(cmd.Context())
			if err != nil {
				return err
			}

			rows := [][]string{
				{"version", meta.Version},
				{"database", meta.Database},
				{"size_bytes", strconv.FormatInt(meta.SizeBytes, 10)},
				{"encoding", meta.Encoding},
			}
			renderTable(cmd.OutOrStdout(), []string{"fact", "value"}, rows)
			return nil
		},
	}
}

// newProfilesCommand lists configured profiles.
func newProfilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List configured connection profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd.Context())
			names := make([]string, 0, len(cfg.Profiles))
			for name := range cfg.Profiles {
				names = append(names, name)
			}
			sort.Strings(names)

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				p := cfg.Profiles[name]
				def := ""
				if name == cfg.DefaultProfile {
					def = "*"
				}
				target := p.Database
				if p.Host != "" {
					target = fmt.Sprintf("%s@%s/%s", p.Username, p.Host, p.Database)
				}
				rows = append(rows, []string{name, string(p.Kind), target, def})
			}
			renderTable(cmd.OutOrStdout(), []string{"name", "kind", "target", "default"}, rows)
			return nil
		},
	}
}

// newVersionCommand prints version information.
func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dbdeck %s (%s)\n", Version, GitCommit)
		},
	}
}
