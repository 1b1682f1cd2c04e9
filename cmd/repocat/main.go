package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"repocat/internal/app"
	"repocat/internal/config"
	"repocat/internal/credentials"
	"repocat/internal/model"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "ShowRecord").
func newApp(ctx context.Context, operation, parameters string) (*app.App, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewApp(ctx, cfg, operation, parameters)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid repository id %q", arg)
	}
	return id, nil
}

var rootCmd = &cobra.Command{
	Use:   "repocat",
	Short: "Repository metadata catalog",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		hostedService, _ := cmd.Flags().GetString("hosted-service")

		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(hostedService, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Hosted Service: %s\n", hostedService)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Hosted Service: %s\n", cfg.HostedService)
		fmt.Printf("Base Dir:       %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:        %s\n", cfg.LogDir)
		fmt.Printf("Repos Dir:      %s\n", cfg.ReposDir)
		fmt.Printf("Store:          %s\n", cfg.Database.Type)
		fmt.Printf("Archive:        %s\n", cfg.Archive.Type)
		return nil
	},
}

// repo command
var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Inspect repository records",
}

var repoShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a repository record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "ShowRecord", args[0])
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.ShowRecord(cmd.Context(), id)
		if err != nil {
			a.Fail()
			return err
		}

		doc, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			a.Fail()
			return fmt.Errorf("encoding record: %w", err)
		}
		fmt.Println(string(doc))
		return nil
	},
}

var repoPathCmd = &cobra.Command{
	Use:   "path ID",
	Short: "Print the owner/name path of a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "RepoPath", args[0])
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.ShowRecord(cmd.Context(), id)
		if err != nil {
			a.Fail()
			return err
		}
		path, err := rec.Path()
		if err != nil {
			a.Fail()
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var repoDirCmd = &cobra.Command{
	Use:   "dir ID",
	Short: "Print the primary data directory of a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "RepoDir", args[0])
		if err != nil {
			return err
		}
		defer a.Close()

		dir, err := a.RepoDir(id)
		if err != nil {
			a.Fail()
			return err
		}
		fmt.Println(dir)
		return nil
	},
}

var repoLanguagesCmd = &cobra.Command{
	Use:   "languages ID",
	Short: "List a repository's programming languages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "Languages", args[0])
		if err != nil {
			return err
		}
		defer a.Close()

		names, err := a.Languages(cmd.Context(), id)
		if err != nil {
			a.Fail()
			return err
		}

		if len(names) == 0 {
			fmt.Println("No languages recorded.")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var repoFindCmd = &cobra.Command{
	Use:   "find",
	Short: "Find repositories by language or owner",
	RunE: func(cmd *cobra.Command, args []string) error {
		language, _ := cmd.Flags().GetString("language")
		owner, _ := cmd.Flags().GetString("owner")

		if (language == "") == (owner == "") {
			return fmt.Errorf("exactly one of --language or --owner is required")
		}

		filter := "language=" + language
		if owner != "" {
			filter = "owner=" + owner
		}

		a, err := newApp(cmd.Context(), "FindRecords", filter)
		if err != nil {
			return err
		}
		defer a.Close()

		var found []*model.Record
		if language != "" {
			found, err = a.FindByLanguage(cmd.Context(), language)
		} else {
			found, err = a.FindByOwner(cmd.Context(), owner)
		}
		if err != nil {
			a.Fail()
			return err
		}

		if len(found) == 0 {
			fmt.Println("No repositories found.")
			return nil
		}
		for _, r := range found {
			summary, err := r.Summary()
			if err != nil {
				// Partially enriched records have no owner/name path yet.
				summary = fmt.Sprintf("(#%d)", r.ID)
			}
			fmt.Println(summary)
		}
		return nil
	},
}

var repoRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Remove a repository record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "RemoveRecord", args[0])
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.RemoveRecord(cmd.Context(), id); err != nil {
			a.Fail()
			return err
		}
		fmt.Printf("Removed record #%d\n", id)
		return nil
	},
}

// cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the derived-data cache",
}

var cacheDirCmd = &cobra.Command{
	Use:   "dir ID",
	Short: "Print the cache directory of a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "CacheDir", args[0])
		if err != nil {
			return err
		}
		defer a.Close()

		dir, err := a.CacheDir(id)
		if err != nil {
			a.Fail()
			return err
		}
		fmt.Println(dir)
		return nil
	},
}

var cacheRefreshCmd = &cobra.Command{
	Use:   "refresh [ID...]",
	Short: "Recompute cached language stats for the given records, or all with --all",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if all == (len(args) > 0) {
			return fmt.Errorf("either list record IDs or pass --all")
		}

		ids := make([]int64, len(args))
		for i, arg := range args {
			id, err := parseID(arg)
			if err != nil {
				return err
			}
			ids[i] = id
		}

		a, err := newApp(cmd.Context(), "RefreshLanguageStats", strings.Join(args, ","))
		if err != nil {
			return err
		}
		defer a.Close()

		var refreshed int64
		if all {
			refreshed, err = a.RefreshAllLanguageStats(cmd.Context())
		} else {
			refreshed, err = a.RefreshLanguageStats(cmd.Context(), ids)
		}
		if err != nil {
			a.Fail()
			return err
		}
		fmt.Printf("Refreshed %d record(s)\n", refreshed)
		return nil
	},
}

// dataset command
var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Export and archive dataset snapshots",
}

var datasetExportCmd = &cobra.Command{
	Use:   "export PATH",
	Short: "Export all records to a compressed snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "ExportDataset", args[0])
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.ExportDataset(cmd.Context(), args[0])
		if err != nil {
			a.Fail()
			return err
		}
		fmt.Printf("Exported %d record(s) to %s\n", n, args[0])
		return nil
	},
}

var datasetImportCmd = &cobra.Command{
	Use:   "import PATH",
	Short: "Load records from a snapshot into the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "ImportDataset", args[0])
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.ImportDataset(cmd.Context(), args[0])
		if err != nil {
			a.Fail()
			return err
		}
		fmt.Printf("Imported %d record(s) from %s\n", n, args[0])
		return nil
	},
}

var datasetPushCmd = &cobra.Command{
	Use:   "push PATH NAME",
	Short: "Upload a snapshot to the archive",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "PushDataset", args[1])
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.PushDataset(cmd.Context(), args[0], args[1]); err != nil {
			a.Fail()
			return err
		}
		fmt.Printf("Pushed %s as %s\n", args[0], args[1])
		return nil
	},
}

var datasetPullCmd = &cobra.Command{
	Use:   "pull NAME PATH",
	Short: "Download a snapshot from the archive",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "PullDataset", args[0])
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.PullDataset(cmd.Context(), args[0], args[1]); err != nil {
			a.Fail()
			return err
		}
		fmt.Printf("Pulled %s to %s\n", args[0], args[1])
		return nil
	},
}

// credentials command
var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage database credentials",
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store database credentials in the encrypted file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		creds, err := credentials.PromptCredentials()
		if err != nil {
			return err
		}
		passphrase, err := credentials.PromptPassphrase(true)
		if err != nil {
			return err
		}

		store := credentials.NewStore(cfg.Credentials.Path)
		if err := store.Save(creds, passphrase); err != nil {
			return err
		}
		fmt.Printf("Credentials saved to %s\n", cfg.Credentials.Path)
		return nil
	},
}

var credentialsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Decrypt and display the stored database credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		store := credentials.NewStore(cfg.Credentials.Path)
		if !store.Exists() {
			return fmt.Errorf("no credentials file at %s", cfg.Credentials.Path)
		}

		passphrase, err := credentials.PromptPassphrase(false)
		if err != nil {
			return err
		}
		creds, err := store.Load(passphrase)
		if err != nil {
			return err
		}

		fmt.Printf("User: %s\n", creds.User)
		fmt.Printf("Host: %s\n", creds.Host)
		fmt.Printf("Port: %d\n", creds.Port)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configInitCmd.Flags().String("hosted-service", "github", "Source hosting platform this catalog tracks")

	// repo subcommands
	repoCmd.AddCommand(repoShowCmd)
	repoCmd.AddCommand(repoPathCmd)
	repoCmd.AddCommand(repoDirCmd)
	repoCmd.AddCommand(repoLanguagesCmd)
	repoCmd.AddCommand(repoFindCmd)
	repoCmd.AddCommand(repoRmCmd)
	repoFindCmd.Flags().String("language", "", "Find repositories written in this language")
	repoFindCmd.Flags().String("owner", "", "Find repositories belonging to this account")

	// cache subcommands
	cacheCmd.AddCommand(cacheDirCmd)
	cacheCmd.AddCommand(cacheRefreshCmd)
	cacheRefreshCmd.Flags().Bool("all", false, "Refresh every record in the store")

	// dataset subcommands
	datasetCmd.AddCommand(datasetExportCmd)
	datasetCmd.AddCommand(datasetImportCmd)
	datasetCmd.AddCommand(datasetPushCmd)
	datasetCmd.AddCommand(datasetPullCmd)

	// credentials subcommands
	credentialsCmd.AddCommand(credentialsSetCmd)
	credentialsCmd.AddCommand(credentialsShowCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(repoCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(datasetCmd)
	rootCmd.AddCommand(credentialsCmd)
}
