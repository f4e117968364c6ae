package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/jhoicas/Impuestos-api/internal/domain/repository"
)

var _ repository.JournalRepository = (*JournalRepo)(nil)

// JournalRepo asientos del libro diario con sus renglones (usable con pool o tx).
// Create y Update escriben cabecera y renglones; llamarlos dentro de una tx.
type JournalRepo struct {
	q Querier
}

// NewJournalRepository construye el adaptador. Pasar pool o tx (Querier).
func NewJournalRepository(q Querier) *JournalRepo {
	return &JournalRepo{q: q}
}

const journalColumns = `id, entry_date, memo, source_module, source_id, tag, created_at, updated_at`

// Create persiste el asiento y sus renglones.
func (r *JournalRepo) Create(ctx context.Context, entry *entity.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	tag, err := marshalTag(entry.Metadata.Tag)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO journal_entries (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.q.Exec(ctx, query,
		entry.ID, entry.Date, entry.Memo, entry.Metadata.SourceModule, nullIfEmpty(entry.Metadata.SourceID),
		tag, entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("journal entry source already exists: %w", err)
		}
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return r.insertLines(ctx, entry.ID, entry.Lines)
}

// Update reemplaza cabecera y renglones del asiento id.
func (r *JournalRepo) Update(ctx context.Context, id string, entry *entity.JournalEntry) error {
	tag, err := marshalTag(entry.Metadata.Tag)
	if err != nil {
		return err
	}
	query := `
		UPDATE journal_entries
		SET entry_date    = $2,
		    memo          = $3,
		    source_module = $4,
		    source_id     = $5,
		    tag           = $6,
		    updated_at    = $7
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		id, entry.Date, entry.Memo, entry.Metadata.SourceModule, nullIfEmpty(entry.Metadata.SourceID),
		tag, entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update journal entry: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update journal entry %s: %w", id, pgx.ErrNoRows)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id = $1`, id); err != nil {
		return fmt.Errorf("delete journal lines: %w", err)
	}
	return r.insertLines(ctx, id, entry.Lines)
}

func (r *JournalRepo) insertLines(ctx context.Context, entryID string, lines []entity.EntryLine) error {
	if len(lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, l := range lines {
		batch.Queue(`
			INSERT INTO journal_lines (entry_id, line_no, account_id, debit, credit, description)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			entryID, i+1, l.AccountID, l.Debit, l.Credit, l.Description,
		)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range lines {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert journal line: %w", err)
		}
	}
	return nil
}

// Get obtiene un asiento por ID; nil si no existe.
func (r *JournalRepo) Get(ctx context.Context, id string) (*entity.JournalEntry, error) {
	e, err := scanEntry(r.q.QueryRow(ctx, `SELECT `+journalColumns+` FROM journal_entries WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get journal entry: %w", err)
	}
	if err := r.loadLines(ctx, []*entity.JournalEntry{e}); err != nil {
		return nil, err
	}
	return e, nil
}

// BulkGet devuelve los asientos existentes entre ids, indexados por id.
func (r *JournalRepo) BulkGet(ctx context.Context, ids []string) (map[string]*entity.JournalEntry, error) {
	out := make(map[string]*entity.JournalEntry, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, err := r.list(ctx, `SELECT `+journalColumns+` FROM journal_entries WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range list {
		out[e.ID] = e
	}
	return out, nil
}

// FindBySource busca el asiento por (módulo, id de origen); nil si no existe.
func (r *JournalRepo) FindBySource(ctx context.Context, module, sourceID string) (*entity.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE source_module = $1 AND source_id = $2`
	e, err := scanEntry(r.q.QueryRow(ctx, query, module, sourceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find journal entry by source: %w", err)
	}
	if err := r.loadLines(ctx, []*entity.JournalEntry{e}); err != nil {
		return nil, err
	}
	return e, nil
}

// ListByModule asientos generados por el módulo, del más antiguo al más nuevo.
func (r *JournalRepo) ListByModule(ctx context.Context, module string) ([]*entity.JournalEntry, error) {
	return r.list(ctx, `SELECT `+journalColumns+` FROM journal_entries WHERE source_module = $1 ORDER BY created_at, id`, module)
}

func (r *JournalRepo) list(ctx context.Context, query string, args ...any) ([]*entity.JournalEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()
	if err := r.loadLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *JournalRepo) loadLines(ctx context.Context, entries []*entity.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	byID := make(map[string]*entity.JournalEntry, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT entry_id, account_id, debit, credit, COALESCE(description, '')
		FROM journal_lines WHERE entry_id = ANY($1) ORDER BY entry_id, line_no`, ids)
	if err != nil {
		return fmt.Errorf("list journal lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var entryID string
		var l entity.EntryLine
		if err := rows.Scan(&entryID, &l.AccountID, &l.Debit, &l.Credit, &l.Description); err != nil {
			return fmt.Errorf("scan journal line: %w", err)
		}
		if e, ok := byID[entryID]; ok {
			e.Lines = append(e.Lines, l)
		}
	}
	return rows.Err()
}

func scanEntry(row pgx.Row) (*entity.JournalEntry, error) {
	var e entity.JournalEntry
	var sourceID *string
	var tag []byte
	if err := row.Scan(&e.ID, &e.Date, &e.Memo, &e.Metadata.SourceModule, &sourceID, &tag, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Metadata.SourceID = derefStr(sourceID)
	if len(tag) > 0 {
		var t entity.EntryTag
		if err := json.Unmarshal(tag, &t); err != nil {
			return nil, fmt.Errorf("decode entry tag: %w", err)
		}
		e.Metadata.Tag = &t
	}
	return &e, nil
}

func marshalTag(tag *entity.EntryTag) ([]byte, error) {
	if tag == nil {
		return nil, nil
	}
	b, err := json.Marshal(tag)
	if err != nil {
		return nil, fmt.Errorf("encode entry tag: %w", err)
	}
	return b, nil
}
