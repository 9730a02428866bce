package users

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"size:254;uniqueIndex;not null"`
	Username     string `gorm:"size:150;uniqueIndex;not null"`
	FirstName    string `gorm:"size:150"`
	LastName     string `gorm:"size:150"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"size:16;not null;default:user"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Follow subscribes User to Author's recipes.
type Follow struct {
	UserID    uint `gorm:"primaryKey;autoIncrement:false;check:chk_follow_not_self,user_id <> author_id"`
	AuthorID  uint `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time

	User   User `gorm:"constraint:OnDelete:CASCADE"`
	Author User `gorm:"constraint:OnDelete:CASCADE"`
}

// Viewer is the acting user of a request as resolved by the auth layer.
// The zero value is an anonymous viewer.
type Viewer struct {
	ID   uint
	Role string
}

func ViewerOf(u *User) Viewer {
	return Viewer{ID: u.ID, Role: u.Role}
}

func (v Viewer) Authenticated() bool { return v.ID != 0 }

func (v Viewer) IsAdmin() bool { return v.ID != 0 && v.Role == RoleAdmin }

// Models lists the tables owned by this package, in migration order.
func Models() []interface{} {
	return []interface{}{&User{}, &Follow{}}
}
