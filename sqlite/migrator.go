package sqlite

import (
	"context"
	"embed"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// migrationsTableName records which migration scripts have been applied. The
// authoritative migration state is the user_version pragma; the table exists
// so the history survives a Flush and is inspectable.
const migrationsTableName = "migrations"

type Migrator struct {
	store *SqlStore
	log   *zap.Logger
}

func NewMigrator(store *SqlStore, log *zap.Logger) *Migrator {
	return &Migrator{
		store: store,
		log:   log,
	}
}

// Up applies, in order, every migration script in source whose numeric
// prefix is greater than the database's current user_version.
func (m *Migrator) Up(ctx context.Context, source embed.FS) error {
	list, err := source.ReadDir(".")
	if err != nil {
		return err
	}
	// sort the list according to the version number to ensure the migrations
	// are applied in the correct order
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})

	if err := m.store.execTrans(ctx, `CREATE TABLE IF NOT EXISTS `+migrationsTableName+` (
	name TEXT NOT NULL PRIMARY KEY,
	applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ'))
)`); err != nil {
		return errors.Wrap(err, "unable to create migrations table")
	}

	current, err := m.store.userVersion()
	if err != nil {
		return err
	}

	final, err := scriptVersion(list[len(list)-1].Name())
	if err != nil {
		return err
	}

	// log this message only if there are migrations to run
	if final > current {
		m.log.Info("Bringing up metadata migrations", zap.Int("migration_count", final-current))
	}

	for _, f := range list {
		n := f.Name()
		v, err := scriptVersion(n)
		if err != nil {
			return err
		}

		// re-read user_version inside the loop so out-of-order scripts can
		// never be applied after newer ones
		c, err := m.store.userVersion()
		if err != nil {
			return err
		}

		if v > c {
			m.log.Debug("Executing metadata migration", zap.String("migration_name", n))
			mBytes, err := source.ReadFile(n)
			if err != nil {
				return err
			}

			stmt := string(mBytes) +
				"\nINSERT INTO " + migrationsTableName + " (name) VALUES ('" + n + "');" +
				"\nPRAGMA user_version = " + strconv.Itoa(v) + ";"
			if err := m.store.execTrans(ctx, stmt); err != nil {
				return errors.Wrapf(err, "migration %q failed", n)
			}
		}
	}

	return nil
}

// extract the version number as an integer from a file named like
// "0002_migration_name.sql"
func scriptVersion(filename string) (int, error) {
	vString := strings.Split(filename, "_")[0]
	vInt, err := strconv.Atoi(vString)
	if err != nil {
		return 0, err
	}

	return vInt, nil
}
