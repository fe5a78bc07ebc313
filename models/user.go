package models

import (
	"strings"
	"time"
)

type User struct {
	UserID       int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	UserFname    string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname    string     `gorm:"column:user_lname" json:"user_lname"`
	Email        string     `gorm:"column:email;unique" json:"email"`
	EmployeeID   string     `gorm:"column:employee_id" json:"employee_id"`
	Password     string     `gorm:"column:password" json:"-"`
	RoleID       int        `gorm:"column:role_id" json:"role_id"`
	DepartmentID *int       `gorm:"column:department_id" json:"department_id,omitempty"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Role       Role        `gorm:"foreignKey:RoleID;references:RoleID" json:"role,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// FullName joins first and last name for remarks and notifications.
func (u *User) FullName() string {
	return strings.TrimSpace(u.UserFname + " " + u.UserLname)
}

type Role struct {
	RoleID   int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	Role     string     `gorm:"column:role" json:"role"`
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

type Department struct {
	DepartmentID   int        `gorm:"primaryKey;column:department_id" json:"department_id"`
	DepartmentName string     `gorm:"column:department_name" json:"department_name"`
	CollegeName    string     `gorm:"column:college_name" json:"college_name"`
	CreateAt       *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt       *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt       *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// Role IDs seeded with the schema; route guards reference these.
const (
	RoleStaff          = 1
	RoleHOD            = 2
	RoleAdmin          = 3
	RoleCommittee      = 4
	RoleChairperson    = 5
	RolePrincipal      = 6
	RoleVerifyingStaff = 7
)

// Role names used for dynamic holder lookup (principal, chairperson).
const (
	RoleNameStaff          = "staff"
	RoleNameHOD            = "hod"
	RoleNameAdmin          = "admin"
	RoleNameCommittee      = "committee"
	RoleNameChairperson    = "chairperson"
	RoleNamePrincipal      = "principal"
	RoleNameVerifyingStaff = "verifying_staff"
)

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}

func (Department) TableName() string {
	return "departments"
}
