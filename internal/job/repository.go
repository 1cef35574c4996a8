package job

import (
	"gorm.io/gorm"
)

type Repository interface {
	Save(db *gorm.DB, j *Job) error
	FindByID(db *gorm.DB, id uint) (*Job, error)
	FindByQuoteID(db *gorm.DB, quoteID uint) (*Job, error)
	ListAll(db *gorm.DB) ([]Job, error)
	ListByStatus(db *gorm.DB, status string) ([]Job, error)
	ListAssignedTo(db *gorm.DB, userID uint) ([]Job, error)
	Delete(db *gorm.DB, id uint) error

	IsAssigned(db *gorm.DB, jobID, userID uint) (bool, error)
	SaveAssignment(db *gorm.DB, a *Assignment) error
	DeleteAssignment(db *gorm.DB, id uint) error
	SaveNote(db *gorm.DB, n *Note) error
	ListNotes(db *gorm.DB, jobID uint, visibilities []string) ([]Note, error)
	AppendEvent(db *gorm.DB, e *Event) error
	ListEvents(db *gorm.DB, jobID uint) ([]Event, error)
	SaveChecklist(db *gorm.DB, c *Checklist) error
	SavePhoto(db *gorm.DB, p *Photo) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Save(db *gorm.DB, j *Job) error {
	return db.Save(j).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Job, error) {
	var j Job
	err := db.Preload("Assignments").Preload("Checklists").Preload("Photos").First(&j, id).Error
	return &j, err
}

func (r *repositoryImpl) FindByQuoteID(db *gorm.DB, quoteID uint) (*Job, error) {
	var j Job
	err := db.Where("quote_id = ?", quoteID).First(&j).Error
	return &j, err
}

func (r *repositoryImpl) ListAll(db *gorm.DB) ([]Job, error) {
	var list []Job
	err := db.Preload("Assignments").Order("id desc").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListByStatus(db *gorm.DB, status string) ([]Job, error) {
	var list []Job
	err := db.Preload("Assignments").Where("status = ?", status).Order("id desc").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListAssignedTo(db *gorm.DB, userID uint) ([]Job, error) {
	var list []Job
	err := db.Preload("Assignments").
		Joins("JOIN assignments ON assignments.job_id = jobs.id AND assignments.deleted_at IS NULL").
		Where("assignments.user_id = ?", userID).
		Order("jobs.id desc").
		Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&Job{}, id).Error
}

func (r *repositoryImpl) IsAssigned(db *gorm.DB, jobID, userID uint) (bool, error) {
	var count int64
	err := db.Model(&Assignment{}).
		Where("job_id = ? AND user_id = ?", jobID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *repositoryImpl) SaveAssignment(db *gorm.DB, a *Assignment) error {
	return db.Save(a).Error
}

func (r *repositoryImpl) DeleteAssignment(db *gorm.DB, id uint) error {
	return db.Delete(&Assignment{}, id).Error
}

func (r *repositoryImpl) SaveNote(db *gorm.DB, n *Note) error {
	return db.Save(n).Error
}

func (r *repositoryImpl) ListNotes(db *gorm.DB, jobID uint, visibilities []string) ([]Note, error) {
	var list []Note
	q := db.Where("job_id = ?", jobID)
	if len(visibilities) > 0 {
		q = q.Where("visibility IN ?", visibilities)
	}
	err := q.Order("id").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) AppendEvent(db *gorm.DB, e *Event) error {
	return db.Create(e).Error
}

func (r *repositoryImpl) ListEvents(db *gorm.DB, jobID uint) ([]Event, error) {
	var list []Event
	err := db.Where("job_id = ?", jobID).Order("id").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) SaveChecklist(db *gorm.DB, c *Checklist) error {
	return db.Save(c).Error
}

func (r *repositoryImpl) SavePhoto(db *gorm.DB, p *Photo) error {
	return db.Save(p).Error
}
