package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"staff-appraisal-api/config"
	"staff-appraisal-api/models"
	"staff-appraisal-api/services"
	"staff-appraisal-api/utils"
)

// Section-record endpoints for the two representative collections
// (publications, awards). Owners edit while the form is an unlocked draft;
// HODs edit only during the correction window, and each HOD edit appends
// an audit version without touching the form's status.

type publicationRequest struct {
	Title         string  `json:"title" binding:"required"`
	JournalName   string  `json:"journal_name"`
	IndexedIn     string  `json:"indexed_in"`
	PublishedYear string  `json:"published_year"`
	Points        float64 `json:"points"`
}

type awardRequest struct {
	Title       string     `json:"title" binding:"required"`
	AwardedBy   string     `json:"awarded_by"`
	AwardedDate *time.Time `json:"awarded_date"`
	Points      float64    `json:"points"`
}

// GetPublications lists a form's publications.
func GetPublications(c *gin.Context) {
	formID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var records []models.Publication
	if err := config.DB.Where("form_id = ? AND delete_at IS NULL", formID).
		Order("publication_id ASC").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch publications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "publications": records, "total": len(records)})
}

// CreatePublication adds a publication to the caller's draft.
func CreatePublication(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	formID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req publicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	formSvc := services.NewFormService(config.DB)
	sectionSvc := services.NewSectionService(config.DB)

	form, err := formSvc.Get(formID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if err := sectionSvc.CheckOwnerEditable(form, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	now := time.Now()
	record := models.Publication{
		FormID:        formID,
		Title:         utils.SanitizeInput(req.Title),
		JournalName:   utils.SanitizeInput(req.JournalName),
		IndexedIn:     utils.SanitizeInput(req.IndexedIn),
		PublishedYear: utils.SanitizeInput(req.PublishedYear),
		Points:        req.Points,
		CreateAt:      now,
		UpdateAt:      now,
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return sectionSvc.RecalculateTotalScore(tx, formID)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create publication"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "publication": record})
}

// UpdatePublication edits a publication on the caller's draft.
func UpdatePublication(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	recordID, ok := paramID(c, "record_id")
	if !ok {
		return
	}

	var req publicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	record, form, err := loadPublication(recordID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	sectionSvc := services.NewSectionService(config.DB)
	if err := sectionSvc.CheckOwnerEditable(form, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	applyPublication(record, req)
	if err := savePublication(record, form.FormID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update publication"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "publication": record})
}

// HODUpdatePublication is the correction-window edit path: allowed only
// while the form status is exactly REUPLOAD_REQUIRED, and audited.
func HODUpdatePublication(c *gin.Context) {
	hodID, ok := currentUserID(c)
	if !ok {
		return
	}
	recordID, ok := paramID(c, "record_id")
	if !ok {
		return
	}

	var req publicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	record, form, err := loadPublication(recordID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	sectionSvc := services.NewSectionService(config.DB)
	if err := sectionSvc.CheckHODEditable(form); err != nil {
		respondServiceError(c, err)
		return
	}

	hod, err := services.NewDirectoryService(config.DB).GetUser(hodID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	applyPublication(record, req)
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(record).Error; err != nil {
			return err
		}
		if err := sectionSvc.RecalculateTotalScore(tx, form.FormID); err != nil {
			return err
		}
		return sectionSvc.RecordHODEdit(tx, form, hod, "publication", record.Title)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update publication"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "publication": record})
}

// GetAwards lists a form's awards.
func GetAwards(c *gin.Context) {
	formID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var records []models.Award
	if err := config.DB.Where("form_id = ? AND delete_at IS NULL", formID).
		Order("award_id ASC").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch awards"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "awards": records, "total": len(records)})
}

// CreateAward adds an award to the caller's draft.
func CreateAward(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	formID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req awardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	formSvc := services.NewFormService(config.DB)
	sectionSvc := services.NewSectionService(config.DB)

	form, err := formSvc.Get(formID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if err := sectionSvc.CheckOwnerEditable(form, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	now := time.Now()
	record := models.Award{
		FormID:      formID,
		Title:       utils.SanitizeInput(req.Title),
		AwardedBy:   utils.SanitizeInput(req.AwardedBy),
		AwardedDate: req.AwardedDate,
		Points:      req.Points,
		CreateAt:    now,
		UpdateAt:    now,
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return sectionSvc.RecalculateTotalScore(tx, formID)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create award"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "award": record})
}

// UpdateAward edits an award on the caller's draft.
func UpdateAward(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	recordID, ok := paramID(c, "record_id")
	if !ok {
		return
	}

	var req awardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	record, form, err := loadAward(recordID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	sectionSvc := services.NewSectionService(config.DB)
	if err := sectionSvc.CheckOwnerEditable(form, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	applyAward(record, req)
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(record).Error; err != nil {
			return err
		}
		return sectionSvc.RecalculateTotalScore(tx, form.FormID)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update award"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "award": record})
}

// HODUpdateAward mirrors HODUpdatePublication for the awards section.
func HODUpdateAward(c *gin.Context) {
	hodID, ok := currentUserID(c)
	if !ok {
		return
	}
	recordID, ok := paramID(c, "record_id")
	if !ok {
		return
	}

	var req awardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	record, form, err := loadAward(recordID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	sectionSvc := services.NewSectionService(config.DB)
	if err := sectionSvc.CheckHODEditable(form); err != nil {
		respondServiceError(c, err)
		return
	}

	hod, err := services.NewDirectoryService(config.DB).GetUser(hodID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	applyAward(record, req)
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(record).Error; err != nil {
			return err
		}
		if err := sectionSvc.RecalculateTotalScore(tx, form.FormID); err != nil {
			return err
		}
		return sectionSvc.RecordHODEdit(tx, form, hod, "award", record.Title)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update award"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "award": record})
}

// DeletePublication removes a publication from the caller's draft.
func DeletePublication(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	recordID, ok := paramID(c, "record_id")
	if !ok {
		return
	}

	record, form, err := loadPublication(recordID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	sectionSvc := services.NewSectionService(config.DB)
	if err := sectionSvc.CheckOwnerEditable(form, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	now := time.Now()
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Publication{}).
			Where("publication_id = ?", record.PublicationID).
			Updates(map[string]interface{}{"delete_at": now, "update_at": now}).Error; err != nil {
			return err
		}
		return sectionSvc.RecalculateTotalScore(tx, form.FormID)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete publication"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Publication deleted"})
}

// DeleteAward removes an award from the caller's draft.
func DeleteAward(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	recordID, ok := paramID(c, "record_id")
	if !ok {
		return
	}

	record, form, err := loadAward(recordID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	sectionSvc := services.NewSectionService(config.DB)
	if err := sectionSvc.CheckOwnerEditable(form, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	now := time.Now()
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Award{}).
			Where("award_id = ?", record.AwardID).
			Updates(map[string]interface{}{"delete_at": now, "update_at": now}).Error; err != nil {
			return err
		}
		return sectionSvc.RecalculateTotalScore(tx, form.FormID)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete award"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Award deleted"})
}

func loadAward(recordID int) (*models.Award, *models.AppraisalForm, error) {
	var record models.Award
	if err := config.DB.Where("award_id = ? AND delete_at IS NULL", recordID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, services.NotFoundf("award %d not found", recordID)
		}
		return nil, nil, err
	}

	form, err := services.NewFormService(config.DB).Get(record.FormID)
	if err != nil {
		return nil, nil, err
	}
	return &record, form, nil
}

func applyAward(record *models.Award, req awardRequest) {
	record.Title = utils.SanitizeInput(req.Title)
	record.AwardedBy = utils.SanitizeInput(req.AwardedBy)
	record.AwardedDate = req.AwardedDate
	record.Points = req.Points
	record.UpdateAt = time.Now()
}

func loadPublication(recordID int) (*models.Publication, *models.AppraisalForm, error) {
	var record models.Publication
	if err := config.DB.Where("publication_id = ? AND delete_at IS NULL", recordID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, services.NotFoundf("publication %d not found", recordID)
		}
		return nil, nil, err
	}

	form, err := services.NewFormService(config.DB).Get(record.FormID)
	if err != nil {
		return nil, nil, err
	}
	return &record, form, nil
}

func applyPublication(record *models.Publication, req publicationRequest) {
	record.Title = utils.SanitizeInput(req.Title)
	record.JournalName = utils.SanitizeInput(req.JournalName)
	record.IndexedIn = utils.SanitizeInput(req.IndexedIn)
	record.PublishedYear = utils.SanitizeInput(req.PublishedYear)
	record.Points = req.Points
	record.UpdateAt = time.Now()
}

func savePublication(record *models.Publication, formID int) error {
	sectionSvc := services.NewSectionService(config.DB)
	return config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(record).Error; err != nil {
			return err
		}
		return sectionSvc.RecalculateTotalScore(tx, formID)
	})
}
