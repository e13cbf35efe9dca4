package repository

import (
	"academic_records/internal/common"
	"academic_records/internal/domain/model"
	"context"
	"database/sql"
	"fmt"
)

// UserRepository is the credential store. Lookups are exact and case-sensitive.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	SetRoles(ctx context.Context, userID int64, roles []model.Role) error
	DeleteByID(ctx context.Context, id int64) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]model.User, error)
	HasAdmin(ctx context.Context) (bool, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, active, created_at, updated_at`

const duplicateUserMsg = "user with given username or email already exists"

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgUserRepository.Create: begin: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO users (username, email, password_hash, active)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at, updated_at`
	err = tx.QueryRowContext(ctx, query, user.Username, user.Email, user.PasswordHash, user.Active).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return translateWriteError("pgUserRepository.Create", err, duplicateUserMsg)
	}

	if err := insertRoles(ctx, tx, user.ID, user.Roles); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return translateWriteError("pgUserRepository.Create: commit", err, duplicateUserMsg)
	}
	return nil
}

func (r *pgUserRepository) Update(ctx context.Context, user *model.User) error {
	query := `UPDATE users SET username = $1, email = $2, password_hash = $3, active = $4,
	                 updated_at = CURRENT_TIMESTAMP
	          WHERE id = $5
	          RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, user.Username, user.Email, user.PasswordHash, user.Active, user.ID).
		Scan(&user.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("%s: %w", duplicateUserMsg, common.ErrConflict)
		}
		return translateReadError("pgUserRepository.Update", err)
	}
	return nil
}

func (r *pgUserRepository) SetRoles(ctx context.Context, userID int64, roles []model.Role) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgUserRepository.SetRoles: begin: %w", err)
	}
	defer tx.Rollback()

	// Touching the row first locks it and tells a missing user from a role conflict.
	res, err := tx.ExecContext(ctx, `UPDATE users SET updated_at = CURRENT_TIMESTAMP WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("pgUserRepository.SetRoles: touch: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("pgUserRepository.SetRoles: touch: %w", err)
	} else if n == 0 {
		return common.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("pgUserRepository.SetRoles: clear: %w", err)
	}
	if err := insertRoles(ctx, tx, userID, roles); err != nil {
		return err
	}
	return tx.Commit()
}

func insertRoles(ctx context.Context, tx *sql.Tx, userID int64, roles []model.Role) error {
	for _, role := range roles {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, string(role))
		if err != nil {
			return translateWriteError("pgUserRepository.insertRoles", err, "role already assigned")
		}
	}
	return nil
}

func (r *pgUserRepository) DeleteByID(ctx context.Context, id int64) error {
	return execAffectingOne(ctx, r.db, "pgUserRepository.DeleteByID", "user cannot be deleted",
		`DELETE FROM users WHERE id = $1`, id)
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "pgUserRepository.FindByEmail", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, "pgUserRepository.FindByUsername", `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *pgUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return r.findOne(ctx, "pgUserRepository.FindByID", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *pgUserRepository) findOne(ctx context.Context, op, query string, arg interface{}) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, translateReadError(op, err)
	}
	roles, err := r.rolesFor(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.Roles = roles
	return user, nil
}

func (r *pgUserRepository) rolesFor(ctx context.Context, userID int64) ([]model.Role, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, model.Role(role))
	}
	return roles, rows.Err()
}

func (r *pgUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "pgUserRepository.ExistsByUsername", `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *pgUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "pgUserRepository.ExistsByEmail", `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *pgUserRepository) HasAdmin(ctx context.Context) (bool, error) {
	return r.exists(ctx, "pgUserRepository.HasAdmin", `SELECT EXISTS(SELECT 1 FROM user_roles WHERE role = $1)`, string(model.RoleAdmin))
}

func (r *pgUserRepository) exists(ctx context.Context, op, query string, arg interface{}) (bool, error) {
	var found bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&found); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return found, nil
}

func (r *pgUserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.List: %w", err)
	}
	defer rows.Close()

	var users []model.User
	index := make(map[int64]int)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("pgUserRepository.List: scan: %w", err)
		}
		index[user.ID] = len(users)
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.List: %w", err)
	}

	roleRows, err := r.db.QueryContext(ctx, `SELECT user_id, role FROM user_roles ORDER BY user_id, role`)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.List: roles: %w", err)
	}
	defer roleRows.Close()
	for roleRows.Next() {
		var userID int64
		var role string
		if err := roleRows.Scan(&userID, &role); err != nil {
			return nil, fmt.Errorf("pgUserRepository.List: scan role: %w", err)
		}
		if i, ok := index[userID]; ok {
			users[i].Roles = append(users[i].Roles, model.Role(role))
		}
	}
	return users, roleRows.Err()
}

func scanUser(row rowScanner) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Active, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}
