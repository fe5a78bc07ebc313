package services

import (
	"fmt"
	"html/template"
	"log"
	"time"

	"gorm.io/gorm"

	"staff-appraisal-api/config"
	"staff-appraisal-api/models"
)

// notificationEffect is a pending notification collected inside a workflow
// transaction and dispatched only after commit, so a slow mail relay never
// holds the form-row lock.
type notificationEffect struct {
	UserID  int
	Title   string
	Message string
	FormID  int
}

// NotificationService persists in-app notifications and fans out a
// best-effort email copy. Failures are logged and swallowed.
type NotificationService struct {
	db       *gorm.DB
	sendMail func(to []string, subject, html string) error
	now      func() time.Time
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{
		db:       db,
		sendMail: config.SendMail,
		now:      time.Now,
	}
}

// Notify delivers one notification. Never returns an error by contract.
func (s *NotificationService) Notify(userID int, title, message string, formID *int) {
	row := models.Notification{
		UserID:   uint(userID),
		Title:    title,
		Message:  message,
		Type:     "info",
		IsRead:   false,
		CreateAt: s.now(),
	}
	if formID != nil {
		related := uint(*formID)
		row.RelatedFormID = &related
	}
	if err := s.db.Create(&row).Error; err != nil {
		log.Printf("Warning: failed to store notification for user %d: %v", userID, err)
	}

	s.emailSafe(userID, title, message)
}

func (s *NotificationService) emailSafe(userID int, subject, message string) {
	var user models.User
	if err := s.db.Where("user_id = ? AND delete_at IS NULL", userID).First(&user).Error; err != nil {
		log.Printf("Warning: notification email skipped, user %d lookup failed: %v", userID, err)
		return
	}
	if user.Email == "" {
		return
	}

	html := fmt.Sprintf(
		"<p>Dear %s,</p><p>%s</p><p>Staff Appraisal System</p>",
		template.HTMLEscapeString(user.FullName()),
		template.HTMLEscapeString(message),
	)
	if err := s.sendMail([]string{user.Email}, subject, html); err != nil {
		log.Printf("Warning: notification email to user %d failed: %v", userID, err)
	}
}

// dispatch runs collected effects post-commit.
func (s *NotificationService) dispatch(effects []notificationEffect) {
	for _, effect := range effects {
		formID := effect.FormID
		s.Notify(effect.UserID, effect.Title, effect.Message, &formID)
	}
}
