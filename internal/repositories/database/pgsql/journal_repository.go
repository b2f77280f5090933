package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finbooks/ledger-core/internal/apperrors"
	"github.com/finbooks/ledger-core/internal/core/domain"
	portsrepo "github.com/finbooks/ledger-core/internal/core/ports/repositories"
)

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for the committed ledger
// and its revision trail.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepository {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepository
var _ portsrepo.JournalRepository = (*PgxJournalRepository)(nil)

// SaveEntry appends a committed entry and its items in one transaction.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	entryQuery := `
		INSERT INTO journal_entries (entry_id, entry_date, description, version, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err = tx.Exec(ctx, entryQuery,
		entry.EntryID,
		entry.EntryDate,
		entry.Description,
		entry.Version,
		entry.CreatedAt,
		entry.LastUpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: journal entry %s already exists", apperrors.ErrDuplicate, entry.EntryID)
		}
		return fmt.Errorf("failed to insert journal entry %s: %w", entry.EntryID, err)
	}

	if err := insertItemsTx(ctx, tx, entry); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// ReplaceEntry archives the committed version in the revision trail and swaps
// in the replacement, all in one transaction.
func (r *PgxJournalRepository) ReplaceEntry(ctx context.Context, replacement domain.JournalEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := archiveEntryTx(ctx, tx, replacement.EntryID, replacement.LastUpdatedAt); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM journal_items WHERE entry_id = $1;`, replacement.EntryID); err != nil {
		return fmt.Errorf("failed to clear items of journal entry %s: %w", replacement.EntryID, err)
	}

	updateQuery := `
		UPDATE journal_entries
		SET entry_date = $2, description = $3, version = $4, last_updated_at = $5
		WHERE entry_id = $1;
	`
	tag, err := tx.Exec(ctx, updateQuery,
		replacement.EntryID,
		replacement.EntryDate,
		replacement.Description,
		replacement.Version,
		replacement.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update journal entry %s: %w", replacement.EntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, replacement.EntryID)
	}

	if err := insertItemsTx(ctx, tx, replacement); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// DeleteEntry archives the final version in the revision trail and removes the
// entry from the active ledger. Items go with it via ON DELETE CASCADE.
func (r *PgxJournalRepository) DeleteEntry(ctx context.Context, entryID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := archiveEntryTx(ctx, tx, entryID, time.Now().UTC()); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM journal_entries WHERE entry_id = $1;`, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
	}
	return r.Commit(ctx, tx)
}

// insertItemsTx inserts the entry's items, preserving their order via line_no.
func insertItemsTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	batch := &pgx.Batch{}
	itemQuery := `
		INSERT INTO journal_items (item_id, entry_id, line_no, account_id, debit, credit)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	for i, item := range entry.Items {
		batch.Queue(itemQuery, item.ItemID, entry.EntryID, i, item.AccountID, item.Debit, item.Credit)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range entry.Items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert journal items for entry %s: %w", entry.EntryID, err)
		}
	}
	return nil
}

// archiveEntryTx copies the committed version of an entry, items included,
// into the revision tables. Returns apperrors.ErrNotFound if there is no
// committed entry with that ID.
func archiveEntryTx(ctx context.Context, tx pgx.Tx, entryID string, archivedAt time.Time) error {
	entryArchive := `
		INSERT INTO journal_revisions (entry_id, version, entry_date, description, created_at, last_updated_at, archived_at)
		SELECT entry_id, version, entry_date, description, created_at, last_updated_at, $2
		FROM journal_entries
		WHERE entry_id = $1;
	`
	tag, err := tx.Exec(ctx, entryArchive, entryID, archivedAt)
	if err != nil {
		return fmt.Errorf("failed to archive journal entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
	}

	itemsArchive := `
		INSERT INTO journal_revision_items (entry_id, version, item_id, line_no, account_id, debit, credit)
		SELECT i.entry_id, e.version, i.item_id, i.line_no, i.account_id, i.debit, i.credit
		FROM journal_items i
		JOIN journal_entries e ON e.entry_id = i.entry_id
		WHERE i.entry_id = $1;
	`
	if _, err := tx.Exec(ctx, itemsArchive, entryID); err != nil {
		return fmt.Errorf("failed to archive journal items for entry %s: %w", entryID, err)
	}
	return nil
}

// FindEntryByID retrieves a committed entry with its items in line order.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entryQuery := `
		SELECT entry_id, entry_date, description, version, created_at, last_updated_at
		FROM journal_entries
		WHERE entry_id = $1;
	`
	var entry domain.JournalEntry
	err := r.Pool.QueryRow(ctx, entryQuery, entryID).Scan(
		&entry.EntryID,
		&entry.EntryDate,
		&entry.Description,
		&entry.Version,
		&entry.CreatedAt,
		&entry.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
		}
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}

	itemsQuery := `
		SELECT item_id, entry_id, account_id, debit, credit
		FROM journal_items
		WHERE entry_id = $1
		ORDER BY line_no;
	`
	rows, err := r.Pool.Query(ctx, itemsQuery, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items for journal entry %s: %w", entryID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.JournalItem
		if err := rows.Scan(&item.ItemID, &item.EntryID, &item.AccountID, &item.Debit, &item.Credit); err != nil {
			return nil, fmt.Errorf("failed to scan journal item row: %w", err)
		}
		entry.Items = append(entry.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journal item rows: %w", err)
	}
	return &entry, nil
}

// ListEntries retrieves all committed entries with their items, in commit
// order.
func (r *PgxJournalRepository) ListEntries(ctx context.Context) ([]domain.JournalEntry, error) {
	entriesQuery := `
		SELECT entry_id, entry_date, description, version, created_at, last_updated_at
		FROM journal_entries
		ORDER BY created_at, entry_id;
	`
	rows, err := r.Pool.Query(ctx, entriesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	index := map[string]int{}
	for rows.Next() {
		var entry domain.JournalEntry
		if err := rows.Scan(&entry.EntryID, &entry.EntryDate, &entry.Description, &entry.Version, &entry.CreatedAt, &entry.LastUpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry row: %w", err)
		}
		index[entry.EntryID] = len(entries)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journal entry rows: %w", err)
	}
	if len(entries) == 0 {
		return entries, nil
	}

	itemsQuery := `
		SELECT item_id, entry_id, account_id, debit, credit
		FROM journal_items
		ORDER BY entry_id, line_no;
	`
	itemRows, err := r.Pool.Query(ctx, itemsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to load journal items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item domain.JournalItem
		if err := itemRows.Scan(&item.ItemID, &item.EntryID, &item.AccountID, &item.Debit, &item.Credit); err != nil {
			return nil, fmt.Errorf("failed to scan journal item row: %w", err)
		}
		if i, ok := index[item.EntryID]; ok {
			entries[i].Items = append(entries[i].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journal item rows: %w", err)
	}
	return entries, nil
}

// ListRevisions retrieves the superseded versions of an entry, oldest first.
func (r *PgxJournalRepository) ListRevisions(ctx context.Context, entryID string) ([]domain.JournalEntry, error) {
	existsQuery := `
		SELECT EXISTS (SELECT 1 FROM journal_entries WHERE entry_id = $1)
			OR EXISTS (SELECT 1 FROM journal_revisions WHERE entry_id = $1);
	`
	var known bool
	if err := r.Pool.QueryRow(ctx, existsQuery, entryID).Scan(&known); err != nil {
		return nil, fmt.Errorf("failed to check journal entry %s: %w", entryID, err)
	}
	if !known {
		return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
	}

	revisionsQuery := `
		SELECT entry_id, entry_date, description, version, created_at, last_updated_at
		FROM journal_revisions
		WHERE entry_id = $1
		ORDER BY version;
	`
	rows, err := r.Pool.Query(ctx, revisionsQuery, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions for journal entry %s: %w", entryID, err)
	}
	defer rows.Close()

	revisions := []domain.JournalEntry{}
	index := map[int]int{}
	for rows.Next() {
		var entry domain.JournalEntry
		if err := rows.Scan(&entry.EntryID, &entry.EntryDate, &entry.Description, &entry.Version, &entry.CreatedAt, &entry.LastUpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan revision row: %w", err)
		}
		index[entry.Version] = len(revisions)
		revisions = append(revisions, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate revision rows: %w", err)
	}
	if len(revisions) == 0 {
		return revisions, nil
	}

	itemsQuery := `
		SELECT item_id, entry_id, version, account_id, debit, credit
		FROM journal_revision_items
		WHERE entry_id = $1
		ORDER BY version, line_no;
	`
	itemRows, err := r.Pool.Query(ctx, itemsQuery, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load revision items for journal entry %s: %w", entryID, err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item domain.JournalItem
		var version int
		if err := itemRows.Scan(&item.ItemID, &item.EntryID, &version, &item.AccountID, &item.Debit, &item.Credit); err != nil {
			return nil, fmt.Errorf("failed to scan revision item row: %w", err)
		}
		if i, ok := index[version]; ok {
			revisions[i].Items = append(revisions[i].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate revision item rows: %w", err)
	}
	return revisions, nil
}

// HasItemsForAccount reports whether any journal item, committed or archived,
// references the account.
func (r *PgxJournalRepository) HasItemsForAccount(ctx context.Context, accountID string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM journal_items WHERE account_id = $1)
			OR EXISTS (SELECT 1 FROM journal_revision_items WHERE account_id = $1);
	`
	var inUse bool
	if err := r.Pool.QueryRow(ctx, query, accountID).Scan(&inUse); err != nil {
		return false, fmt.Errorf("failed to check items for account %s: %w", accountID, err)
	}
	return inUse, nil
}

// NetAmountByAccount returns sum(debit - credit) over the account's committed
// items, bounded by asOf (inclusive) when non-nil.
func (r *PgxJournalRepository) NetAmountByAccount(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(i.debit - i.credit), 0)
		FROM journal_items i
		JOIN journal_entries e ON e.entry_id = i.entry_id
		WHERE i.account_id = $1 AND ($2::timestamptz IS NULL OR e.entry_date <= $2);
	`
	var net decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, accountID, asOf).Scan(&net); err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute net amount for account %s: %w", accountID, err)
	}
	return net, nil
}

// NetAmountsByAccounts returns net amounts grouped by account in a single
// consistent read. A nil accountIDs slice means every account with activity.
func (r *PgxJournalRepository) NetAmountsByAccounts(ctx context.Context, accountIDs []string, asOf *time.Time) (map[string]decimal.Decimal, error) {
	query := `
		SELECT i.account_id, SUM(i.debit - i.credit)
		FROM journal_items i
		JOIN journal_entries e ON e.entry_id = i.entry_id
		WHERE ($1::text[] IS NULL OR i.account_id = ANY($1))
			AND ($2::timestamptz IS NULL OR e.entry_date <= $2)
		GROUP BY i.account_id;
	`
	rows, err := r.Pool.Query(ctx, query, accountIDs, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to compute net amounts: %w", err)
	}
	defer rows.Close()

	nets := make(map[string]decimal.Decimal)
	for rows.Next() {
		var accountID string
		var net decimal.Decimal
		if err := rows.Scan(&accountID, &net); err != nil {
			return nil, fmt.Errorf("failed to scan net amount row: %w", err)
		}
		nets[accountID] = net
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate net amount rows: %w", err)
	}
	return nets, nil
}
