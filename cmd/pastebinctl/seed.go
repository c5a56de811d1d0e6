package main

import (
	"context"
	"fmt"
	"io"

	"github.com/ErlanBelekov/rich-pastebin/internal/infrastructure/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

const seedEmail = "seed@test.local"

type pasteSpec struct {
	title    string
	content  string
	isPublic bool
	inFolder bool
}

var seedPastes = []pasteSpec{
	{"Welcome", "<h1>Hello</h1><p>First paste from the seed script.</p>", true, false},
	{"Shopping list", "<ul><li>milk</li><li>bread</li></ul>", false, false},
	{"Go snippet", "<pre><code>fmt.Println(\"hi\")</code></pre>", true, true},
	{"Meeting notes", "<p>Ship the billing page on Friday.</p>", false, true},
	{"Quote", "<blockquote>Simplicity is prerequisite for reliability.</blockquote>", true, false},
}

func newSeedCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert a seed user with a profile, a folder and sample pastes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.requireDatabaseURL(); err != nil {
				return err
			}
			pool, err := postgres.NewPool(cmd.Context(), opts.databaseURL)
			if err != nil {
				return fmt.Errorf("db connect: %w", err)
			}
			defer pool.Close()

			res, err := seed(cmd.Context(), pool)
			if err != nil {
				return err
			}
			res.print(cmd.OutOrStdout())
			return nil
		},
	}
}

type seedResult struct {
	userID   string
	username string
	folderID string
	inserted int
	skipped  int
}

// seed is idempotent: re-runs reuse the user and folder and skip pastes whose
// title already exists for the seed user.
func seed(ctx context.Context, pool *pgxpool.Pool) (*seedResult, error) {
	users := postgres.NewUserRepository(pool)
	profiles := postgres.NewProfileRepository(pool)

	user, err := users.FindOrCreate(ctx, seedEmail)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	profile, err := profiles.Ensure(ctx, user.ID, "seed")
	if err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}

	res := &seedResult{userID: user.ID, username: profile.Username}

	err = pool.QueryRow(ctx, `
		INSERT INTO folders (user_id, name)
		VALUES ($1, 'Seeded')
		ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`,
		user.ID,
	).Scan(&res.folderID)
	if err != nil {
		return nil, fmt.Errorf("upsert folder: %w", err)
	}

	for _, spec := range seedPastes {
		var folderID *string
		if spec.inFolder {
			folderID = &res.folderID
		}
		tag, err := pool.Exec(ctx, `
			INSERT INTO pastes (user_id, title, content, is_public, folder_id)
			SELECT $1, $2, $3, $4, $5
			WHERE NOT EXISTS (SELECT 1 FROM pastes WHERE user_id = $1 AND title = $2)`,
			user.ID, spec.title, spec.content, spec.isPublic, folderID,
		)
		if err != nil {
			return nil, fmt.Errorf("insert paste %q: %w", spec.title, err)
		}
		if tag.RowsAffected() == 0 {
			res.skipped++
		} else {
			res.inserted++
		}
	}
	return res, nil
}

func (r *seedResult) print(w io.Writer) {
	fmt.Fprintln(w, "Seed complete")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  User:     %s (%s)\n", seedEmail, r.username)
	fmt.Fprintf(w, "  User ID:  %s\n", r.userID)
	fmt.Fprintf(w, "  Folder:   %s\n", r.folderID)
	fmt.Fprintf(w, "  Pastes:   %d created (skipped %d already existing)\n", r.inserted, r.skipped)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sign in by requesting a magic link for the seed email:")
	fmt.Fprintf(w, "  curl -X POST localhost:8080/auth/magic-link -d '{\"email\":\"%s\"}'\n", seedEmail)
	fmt.Fprintln(w, "The link is printed by the server log when ENV=local.")
}
