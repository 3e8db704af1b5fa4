package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/tmarchal/pagegrid/pkg/cache"
	"github.com/tmarchal/pagegrid/pkg/client"
	"github.com/tmarchal/pagegrid/pkg/grid"
	"github.com/tmarchal/pagegrid/pkg/observability"
	"github.com/tmarchal/pagegrid/pkg/registry"
	"github.com/tmarchal/pagegrid/pkg/store"
)

// pullCacheTTL bounds how stale a locally cached record may be.
const pullCacheTTL = 5 * time.Minute

// hitTracker reports whether the fetch was served from the local cache.
type hitTracker struct{ hit bool }

func (h *hitTracker) OnCacheHit(context.Context, string)      { h.hit = true }
func (h *hitTracker) OnCacheMiss(context.Context, string)     {}
func (h *hitTracker) OnCacheSet(context.Context, string, int) {}

// pullCommand creates the pull command fetching saved layout records.
func (c *CLI) pullCommand() *cobra.Command {
	var (
		serverURL string
		username  string
		password  string
		pageKey   string
		noCache   bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Fetch a saved layout record from a running service",
		Long: `Fetch a saved layout record from a running service.

Pull logs in with the given credentials, fetches the user's saved record
for a page, and prints the stored geometry per breakpoint. Without --page
an interactive picker lists the registered console pages. Fetches are
served from a local per-user cache when fresh; pass --no-cache to always
hit the service.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(withLogger(ctx, c.Logger))

			if pageKey == "" {
				selected, err := selectPage(registry.Default())
				if err != nil {
					return err
				}
				if selected == "" {
					printInfo("No page selected")
					return nil
				}
				pageKey = selected
			}

			spin := newSpinnerWithContext(ctx, "Authenticating...")
			spin.Start()
			sess, err := client.Login(ctx, serverURL, username, password)
			if err != nil {
				spin.StopWithError(fmt.Sprintf("Login failed: %v", err))
				return err
			}
			spin.Stop()
			logger.Debug("authenticated", "user", username, "expires", sess.ExpiresAt)

			tracker := &hitTracker{}
			observability.SetCacheHooks(tracker)
			defer observability.SetCacheHooks(nil)

			cl := client.New(serverURL, sess.Token,
				client.WithCache(
					newPullCache(noCache),
					cache.NewScopedKeyer(nil, "user:"+username+":"),
					pullCacheTTL,
				),
				client.WithRetries(3),
			)
			defer cl.Close()

			p := newProgress(logger)
			spin = newSpinnerWithContext(ctx, fmt.Sprintf("Fetching %s...", pageKey))
			spin.Start()
			rec, err := cl.Get(ctx, pageKey)
			if err != nil {
				spin.StopWithError(fmt.Sprintf("Fetch failed: %v", err))
				return err
			}
			spin.Stop()

			if rec == nil {
				printWarning("No saved layout for %s", pageKey)
				printDetail("The page will render its default layout")
				return nil
			}
			p.done(fmt.Sprintf("Fetched %s", pageKey))

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			}

			printRecord(rec, pageKey, tracker.hit)
			return nil
		},
	}

	cmd.Flags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "service base URL")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username to authenticate as")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	cmd.Flags().StringVar(&pageKey, "page", "", "page key (interactive picker when omitted)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the local record cache")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw record as JSON")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// printRecord renders a fetched record breakpoint by breakpoint.
func printRecord(rec *store.Record, pageKey string, cached bool) {
	printKeyValue("Page", pageKey)
	if rec.UpdatedAt != nil {
		printKeyValue("Updated", rec.UpdatedAt.Local().Format("Jan 2, 2006 15:04"))
	}

	blockCount := 0
	for _, bp := range grid.Breakpoints {
		if n := len(rec.Layout[bp]); n > blockCount {
			blockCount = n
		}
	}
	printRecordStats(blockCount, len(rec.HiddenBlocks), cached)
	printNewline()

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	for _, bp := range grid.Breakpoints {
		items, ok := rec.Layout[bp]
		if !ok || len(items) == 0 {
			continue
		}

		fmt.Println(StyleTitle.Render(fmt.Sprintf("%s (%d columns)", bp, bp.Columns())))
		rows := make([][]string, 0, len(items))
		for _, item := range items {
			rows = append(rows, []string{
				item.ID,
				fmt.Sprintf("%d,%d", item.X, item.Y),
				fmt.Sprintf("%d×%d", item.W, item.H),
			})
		}
		fmt.Println(table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
			Headers("Block", "Pos", "Size").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == -1 {
					return headerStyle
				}
				if col == 0 {
					return StyleValue
				}
				return StyleDim
			}).
			Render())
	}

	if len(rec.HiddenBlocks) > 0 {
		printNewline()
		for _, id := range rec.HiddenBlocks {
			fmt.Println("  " + StyleDim.Render(iconHidden+" "+id+" (hidden)"))
		}
	}
}
