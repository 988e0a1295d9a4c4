package member

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/verotasks/api/internal/db"
)

// Repository acessa vínculos e cadastros no Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria o repositório de colaboradores.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetMembership busca o vínculo pelo uid. Ausência não é erro: devolve
// nil para que a resolução trate como "nunca provisionado".
func (r *Repository) GetMembership(ctx context.Context, uid uuid.UUID) (*Membership, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT uid, role, is_active, created_at, updated_at
		FROM memberships
		WHERE uid = $1`, uid)

	var m Membership
	if err := row.Scan(&m.UID, &m.Role, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	m.Role = NormalizeRole(m.Role)
	return &m, nil
}

const profileColumns = `uid, email, display_name, COALESCE(role, ''), senha_hash,
	tg_chat_id, tg_username, tg_first_name, tg_linked_at, created_at`

// GetProfile busca o cadastro pelo uid.
func (r *Repository) GetProfile(ctx context.Context, uid uuid.UUID) (*Profile, error) {
	return r.scanProfile(r.pool.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE uid = $1`, uid))
}

// GetProfileByEmail busca o cadastro pelo e-mail (case-insensitive).
func (r *Repository) GetProfileByEmail(ctx context.Context, email string) (*Profile, error) {
	return r.scanProfile(r.pool.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))
}

// ListMemberships devolve todos os vínculos indexados por uid.
func (r *Repository) ListMemberships(ctx context.Context) (map[uuid.UUID]*Membership, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT uid, role, is_active, created_at, updated_at
		FROM memberships`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID]*Membership)
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.UID, &m.Role, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		m.Role = NormalizeRole(m.Role)
		out[m.UID] = &m
	}
	return out, rows.Err()
}

// ListProfiles devolve todos os cadastros ordenados por nome.
func (r *Repository) ListProfiles(ctx context.Context) ([]*Profile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		ORDER BY display_name, email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Profile
	for rows.Next() {
		p, err := r.scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpsertMembership grava papel e atividade do vínculo, criando-o se
// ainda não existe.
func (r *Repository) UpsertMembership(ctx context.Context, uid uuid.UUID, role string, isActive bool) (*Membership, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO memberships (uid, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (uid) DO UPDATE
		SET role = EXCLUDED.role, is_active = EXCLUDED.is_active, updated_at = now()
		RETURNING uid, role, is_active, created_at, updated_at`,
		uid, NormalizeRole(role), isActive)

	var m Membership
	if err := row.Scan(&m.UID, &m.Role, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// SetActive liga ou desliga o vínculo existente.
func (r *Repository) SetActive(ctx context.Context, uid uuid.UUID, isActive bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE memberships SET is_active = $2, updated_at = now()
		WHERE uid = $1`, uid, isActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRole troca o papel do vínculo existente.
func (r *Repository) SetRole(ctx context.Context, uid uuid.UUID, role string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE memberships SET role = $2, updated_at = now()
		WHERE uid = $1`, uid, NormalizeRole(role))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateAccount grava cadastro e vínculo na mesma transação, de modo
// que conta nova já nasce provisionada.
func (r *Repository) CreateAccount(ctx context.Context, p *Profile, role string, isActive bool) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO profiles (uid, email, display_name, role, senha_hash, created_at)
			VALUES ($1, $2, $3, $4, $5, now())`,
			p.UID, p.Email, p.DisplayName, NormalizeRole(p.Role), p.SenhaHash)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrEmailTaken
			}
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO memberships (uid, role, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())`,
			p.UID, NormalizeRole(role), isActive)
		return err
	})
}

// SetTelegram grava o vínculo de Telegram no cadastro.
func (r *Repository) SetTelegram(ctx context.Context, uid uuid.UUID, link TelegramLink) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE profiles
		SET tg_chat_id = $2, tg_username = NULLIF($3, ''), tg_first_name = NULLIF($4, ''), tg_linked_at = $5
		WHERE uid = $1`,
		uid, link.ChatID, link.Username, link.FirstName, link.LinkedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearTelegram remove o vínculo de Telegram do cadastro.
func (r *Repository) ClearTelegram(ctx context.Context, uid uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE profiles
		SET tg_chat_id = NULL, tg_username = NULL, tg_first_name = NULL, tg_linked_at = NULL
		WHERE uid = $1`, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	var chatID, username, firstName *string
	var linkedAt *time.Time
	if err := row.Scan(&p.UID, &p.Email, &p.DisplayName, &p.Role, &p.SenhaHash,
		&chatID, &username, &firstName, &linkedAt, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.Role = NormalizeRole(p.Role)
	if chatID != nil && *chatID != "" {
		p.Telegram = &TelegramLink{Linked: true, ChatID: *chatID, LinkedAt: linkedAt}
		if username != nil {
			p.Telegram.Username = *username
		}
		if firstName != nil {
			p.Telegram.FirstName = *firstName
		}
	}
	return &p, nil
}
