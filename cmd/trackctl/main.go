// trackctl drives the client core from the terminal, playing the role the
// web UI plays in production. Every command goes through the synchronizer,
// so the full login, load, mutate and mirror path is exercised end to end.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pro-prioritet/tracker/internal/apiclient"
	"github.com/pro-prioritet/tracker/internal/auth"
	"github.com/pro-prioritet/tracker/internal/cache"
	"github.com/pro-prioritet/tracker/internal/projects/domain"
	"github.com/pro-prioritet/tracker/internal/sync"
)

var (
	flagAPIURL    string
	flagAuthURL   string
	flagAnonKey   string
	flagCachePath string
	flagEmail     string
	flagPassword  string
)

func main() {
	root := &cobra.Command{
		Use:           "trackctl",
		Short:         "Project tracker client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagAPIURL, "api", envOr("API_BASE_URL", "http://localhost:8080"), "API base URL")
	root.PersistentFlags().StringVar(&flagAuthURL, "auth", envOr("AUTH_BASE_URL", "http://localhost:9999/auth/v1"), "auth service base URL")
	root.PersistentFlags().StringVar(&flagAnonKey, "anon-key", os.Getenv("PUBLIC_ANON_KEY"), "public anon credential")
	root.PersistentFlags().StringVar(&flagCachePath, "cache", envOr("CACHE_PATH", "tracker-cache.db"), "local cache file")
	root.PersistentFlags().StringVar(&flagEmail, "email", os.Getenv("TRACKER_EMAIL"), "account email")
	root.PersistentFlags().StringVar(&flagPassword, "password", os.Getenv("TRACKER_PASSWORD"), "account password")

	root.AddCommand(healthCmd(), listCmd(), addCmd(), setStatusCmd(), deleteCmd(), watchCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newSyncer builds the client core. When credentials are present it logs in;
// otherwise it starts anonymously against the local cache.
func newSyncer(ctx context.Context) (*sync.Syncer, func(), error) {
	store, err := cache.OpenFileStore(flagCachePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}
	cleanup := func() { _ = store.Close() }

	remote := apiclient.New(flagAPIURL, flagAnonKey)
	provider := auth.NewHTTPProvider(flagAuthURL, flagAnonKey)
	s := sync.New(remote, store, auth.NewManager(provider))

	if flagEmail != "" && flagPassword != "" {
		if _, err := s.Login(ctx, flagEmail, flagPassword); err != nil {
			cleanup()
			return nil, nil, err
		}
	} else {
		s.Start(ctx)
	}
	return s, cleanup, nil
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the remote API",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := apiclient.New(flagAPIURL, flagAnonKey)
			if err := client.Health(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects (cached view when offline)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := newSyncer(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			printProjects(s)
			return nil
		},
	}
}

func addCmd() *cobra.Command {
	var draft domain.Draft
	var priority, status string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			draft.Status = domain.Status(status)
			draft.Priority = domain.Priority(priority)

			s, cleanup, err := newSyncer(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := s.Add(cmd.Context(), draft)
			if err != nil {
				return err
			}
			fmt.Printf("created %s (%s)\n", p.ID, s.Mode())
			return nil
		},
	}

	cmd.Flags().StringVar(&draft.Title, "title", "", "project title")
	cmd.Flags().StringVar(&draft.Description, "description", "", "description")
	cmd.Flags().StringVar(&draft.Assignee, "assignee", "", "assignee")
	cmd.Flags().StringVar(&draft.Manager, "manager", "", "manager")
	cmd.Flags().StringVar(&draft.Deadline, "deadline", "", "deadline (ISO-8601)")
	cmd.Flags().IntVar(&draft.Progress, "progress", 0, "progress 0-100")
	cmd.Flags().StringVar(&status, "status", "", "status")
	cmd.Flags().StringVar(&priority, "priority", "", "priority")
	return cmd
}

func setStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Change a project's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := newSyncer(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			for _, p := range s.Projects() {
				if p.ID == args[0] {
					p.Status = domain.Status(args[1])
					if err := s.Update(cmd.Context(), p); err != nil {
						return err
					}
					fmt.Printf("updated %s (%s)\n", p.ID, s.Mode())
					return nil
				}
			}
			return fmt.Errorf("project %s not found", args[0])
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := newSyncer(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := s.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted %s (%s)\n", args[0], s.Mode())
			return nil
		},
	}
}

func watchCmd() *cobra.Command {
	var every string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the local view in sync until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := newSyncer(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			printProjects(s)

			refresher, err := sync.NewRefresher(s, "@every "+every)
			if err != nil {
				return err
			}
			refresher.Start()
			defer refresher.Stop()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop
			return nil
		},
	}

	cmd.Flags().StringVar(&every, "every", "5m", "refresh interval")
	return cmd
}

func printProjects(s *sync.Syncer) {
	if s.Mode() == sync.ModeDemo {
		fmt.Println("demo mode: server unavailable, showing locally saved data")
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tPROGRESS\tASSIGNEE\tDEADLINE")
	for _, p := range s.Projects() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d%%\t%s\t%s\n",
			p.ID, p.Title, p.Status, p.Priority, p.Progress, p.Assignee, p.Deadline)
	}
	w.Flush()
}
