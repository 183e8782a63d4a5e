package sync

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/dstrand/tally/internal/remote"
	"github.com/dstrand/tally/internal/store"
)

// Loader converges the local mirror to remote truth with a one-shot
// fetch-and-overwrite.
type Loader struct {
	db     *sql.DB
	remote Remote
	logger *slog.Logger
}

func NewLoader(db *sql.DB, rc Remote, logger *slog.Logger) *Loader {
	return &Loader{db: db, remote: rc, logger: logger}
}

// Refresh pulls a full snapshot and applies it. A fetch failure returns
// an error and leaves the local mirror untouched.
func (l *Loader) Refresh(ctx context.Context) error {
	snap, err := l.remote.Pull(ctx)
	if err != nil {
		return err
	}
	return l.Apply(snap)
}

// Apply destructively overwrites the local collections with the
// snapshot, marking every record clean. The snapshot is authoritative at
// the moment of fetch, so prior local contents do not survive.
func (l *Loader) Apply(snap *remote.Snapshot) error {
	err := store.WithTx(l.db, func(st *store.Stores) error {
		if err := st.Categories.Clear(); err != nil {
			return err
		}
		for _, c := range snap.Categories {
			if err := st.Categories.Put(c); err != nil {
				return err
			}
		}

		if err := st.Products.Clear(); err != nil {
			return err
		}
		for _, p := range snap.Products {
			p.Synced = true
			if err := st.Products.Put(p); err != nil {
				return err
			}
		}

		if err := st.Sales.Clear(); err != nil {
			return err
		}
		for _, s := range snap.Sales {
			s.Synced = true
			if err := st.Sales.Put(s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.logger.Info("snapshot applied",
		"categories", len(snap.Categories),
		"products", len(snap.Products),
		"sales", len(snap.Sales))
	return nil
}
