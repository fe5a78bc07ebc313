package services

import (
	"errors"

	"gorm.io/gorm"

	"staff-appraisal-api/models"
)

// DirectoryService answers user/department/role questions for the workflow.
type DirectoryService struct {
	db *gorm.DB
}

func NewDirectoryService(db *gorm.DB) *DirectoryService {
	return &DirectoryService{db: db}
}

func (s *DirectoryService) GetUser(userID int) (*models.User, error) {
	return getUserTx(s.db, userID)
}

func getUserTx(tx *gorm.DB, userID int) (*models.User, error) {
	var user models.User
	err := tx.Preload("Role").Preload("Department").
		Where("user_id = ? AND delete_at IS NULL", userID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("user %d not found", userID)
		}
		return nil, err
	}
	return &user, nil
}

func (s *DirectoryService) FindUsersByDepartment(departmentID int) ([]models.User, error) {
	var users []models.User
	err := s.db.Preload("Role").
		Where("department_id = ? AND delete_at IS NULL", departmentID).
		Order("user_fname ASC").
		Find(&users).Error
	return users, err
}

// FindFirstUserWithRole resolves the single active holder of a named role
// (principal, chairperson). Zero holders is a directory gap and more than
// one is ambiguous; both are IllegalState rather than a guess.
func (s *DirectoryService) FindFirstUserWithRole(roleName string) (*models.User, error) {
	return findFirstUserWithRoleTx(s.db, roleName)
}

func findFirstUserWithRoleTx(tx *gorm.DB, roleName string) (*models.User, error) {
	var users []models.User
	err := tx.Preload("Role").Preload("Department").
		Joins("JOIN roles ON roles.role_id = users.role_id").
		Where("roles.role = ? AND users.delete_at IS NULL", roleName).
		Limit(2).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, IllegalStatef("no user holds role '%s'", roleName)
	}
	if len(users) > 1 {
		return nil, IllegalStatef("multiple users hold role '%s'", roleName)
	}
	return &users[0], nil
}

// findDepartmentHeadTx locates the HOD of one department, used for the
// return-to-HOD notifications.
func findDepartmentHeadTx(tx *gorm.DB, departmentID int) (*models.User, error) {
	var users []models.User
	err := tx.Joins("JOIN roles ON roles.role_id = users.role_id").
		Where("roles.role = ? AND users.department_id = ? AND users.delete_at IS NULL",
			models.RoleNameHOD, departmentID).
		Limit(2).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, IllegalStatef("no head of department for department %d", departmentID)
	}
	if len(users) > 1 {
		return nil, IllegalStatef("multiple heads of department for department %d", departmentID)
	}
	return &users[0], nil
}
