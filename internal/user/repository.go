package user

import "gorm.io/gorm"

type Repository interface {
	Save(db *gorm.DB, p *Profile) error
	FindByID(db *gorm.DB, id uint) (*Profile, error)
	FindByEmail(db *gorm.DB, email string) (*Profile, error)
	FindByInviteToken(db *gorm.DB, token string) (*Profile, error)
	ListAll(db *gorm.DB) ([]Profile, error)
	Delete(db *gorm.DB, id uint) error

	SaveTeam(db *gorm.DB, t *Team) error
	FindTeam(db *gorm.DB, id uint) (*Team, error)
	ListTeams(db *gorm.DB) ([]Team, error)
	DeleteTeam(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Save(db *gorm.DB, p *Profile) error {
	return db.Save(p).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Profile, error) {
	var p Profile
	err := db.First(&p, id).Error
	return &p, err
}

func (r *repositoryImpl) FindByEmail(db *gorm.DB, email string) (*Profile, error) {
	var p Profile
	err := db.Where("email = ?", email).First(&p).Error
	return &p, err
}

func (r *repositoryImpl) FindByInviteToken(db *gorm.DB, token string) (*Profile, error) {
	var p Profile
	err := db.Where("invite_token = ? AND invite_token <> ''", token).First(&p).Error
	return &p, err
}

func (r *repositoryImpl) ListAll(db *gorm.DB) ([]Profile, error) {
	var list []Profile
	err := db.Order("id").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&Profile{}, id).Error
}

func (r *repositoryImpl) SaveTeam(db *gorm.DB, t *Team) error {
	return db.Save(t).Error
}

func (r *repositoryImpl) FindTeam(db *gorm.DB, id uint) (*Team, error) {
	var t Team
	err := db.Preload("Members").First(&t, id).Error
	return &t, err
}

func (r *repositoryImpl) ListTeams(db *gorm.DB) ([]Team, error) {
	var list []Team
	err := db.Preload("Members").Order("id").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) DeleteTeam(db *gorm.DB, id uint) error {
	return db.Delete(&Team{}, id).Error
}
