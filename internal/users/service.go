package users

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/apperr"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/database"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(u *User, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pw)) == nil
}

// Register creates a regular user. Email and username uniqueness is checked
// before the insert and again by the unique indexes.
func Register(ctx context.Context, db *gorm.DB, in RegisterInput) (*User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if !usernamePattern.MatchString(in.Username) {
		return nil, apperr.Validation("username", "may contain only letters, digits and @/./+/-/_")
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hashed,
		Role:         RoleUser,
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, "email", user.Email); err != nil {
			return err
		}
		if err := ensureUnique(tx, "username", user.Username); err != nil {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			if database.IsDuplicate(err) {
				return apperr.AlreadyExists("a user with this email or username already exists")
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func ensureUnique(tx *gorm.DB, column, value string) error {
	var n int64
	if err := tx.Model(&User{}).Where(column+" = ?", value).Count(&n).Error; err != nil {
		return fmt.Errorf("check %s: %w", column, err)
	}
	if n > 0 {
		return apperr.AlreadyExistsField(column, "a user with this "+column+" already exists")
	}
	return nil
}

func Get(ctx context.Context, db *gorm.DB, id uint) (*User, error) {
	var u User
	if err := db.WithContext(ctx).First(&u, id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func GetByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error) {
	var u User
	err := db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

// List returns one page of users ordered by username, plus the total count.
func List(ctx context.Context, db *gorm.DB, offset, limit int) ([]User, int64, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	var list []User
	if err := db.WithContext(ctx).Order("username ASC").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return list, total, nil
}

func SetPassword(ctx context.Context, db *gorm.DB, viewer Viewer, current, next string) error {
	if !viewer.Authenticated() {
		return apperr.Unauthenticated()
	}
	u, err := Get(ctx, db, viewer.ID)
	if err != nil {
		return err
	}
	if !CheckPassword(u, current) {
		return apperr.Validation("current_password", "invalid password")
	}
	hashed, err := HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := db.WithContext(ctx).Model(u).Update("password_hash", hashed).Error; err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Subscribed reports which of authorIDs the viewer follows.
func Subscribed(ctx context.Context, db *gorm.DB, viewer Viewer, authorIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(authorIDs))
	if !viewer.Authenticated() || len(authorIDs) == 0 {
		return out, nil
	}
	var ids []uint
	err := db.WithContext(ctx).Model(&Follow{}).
		Where("user_id = ? AND author_id IN ?", viewer.ID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// CreateFollow inserts the relation row; callers check for duplicates first.
func CreateFollow(tx *gorm.DB, userID, authorID uint) error {
	f := Follow{UserID: userID, AuthorID: authorID}
	return tx.Omit(clause.Associations).Create(&f).Error
}
