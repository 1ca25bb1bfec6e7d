package cockroach

import (
	"database/sql"
	"errors"

	"docvault-backend/internal/entity"
	"docvault-backend/internal/repo"

	"github.com/jmoiron/sqlx"
)

type User struct {
	db *sqlx.DB
}

func NewUser(db *sqlx.DB) repo.User {
	return &User{
		db: db,
	}
}

func (u *User) AddUser(user *entity.User) (int, error) {
	// Проверяем, существует ли пользователь с таким email
	if user.Email != "" {
		var exists bool
		query := `SELECT EXISTS(SELECT 1 FROM "user" WHERE email = $1)`
		err := u.db.QueryRow(query, user.Email).Scan(&exists)
		if err != nil {
			return 0, err
		}
		if exists {
			return 0, repo.ErrEmailExists
		}
	}

	var userID int
	query := `INSERT INTO "user" (nickname, email, password_hash, oauth_id) VALUES ($1, $2, $3, $4) RETURNING id`
	err := u.db.QueryRow(query, user.Nickname, user.Email, user.PasswordHash, user.OauthID).Scan(&userID)
	if err != nil {
		return 0, err
	}
	return userID, nil
}

func (u *User) GetUser(userID int) (*entity.User, error) {
	var user entity.User
	query := `SELECT id, nickname, email, password_hash, oauth_id, created_at
			  FROM "user" WHERE id = $1`
	err := u.db.Get(&user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (u *User) GetUserByEmail(email string) (*entity.User, error) {
	var user entity.User
	query := `SELECT id, nickname, email, password_hash, oauth_id, created_at
			  FROM "user" WHERE email = $1`
	err := u.db.Get(&user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (u *User) GetUserByOauthID(oauthID string) (*entity.User, error) {
	var user entity.User
	query := `SELECT id, nickname, email, password_hash, oauth_id, created_at
			  FROM "user" WHERE oauth_id = $1`
	err := u.db.Get(&user, query, oauthID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (u *User) SetOauthID(userID int, oauthID string) error {
	query := `UPDATE "user" SET oauth_id = $1 WHERE id = $2`
	result, err := u.db.Exec(query, oauthID, userID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repo.ErrUserNotFound
	}
	return nil
}
