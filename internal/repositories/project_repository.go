package repositories

import (
	"microblog/internal/database"
	"microblog/internal/models"
)

type projectRepository struct {
	db *database.DB
}

func NewProjectRepository(db *database.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

func (r *projectRepository) List() ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Order("name ASC").Find(&projects).Error
	return projects, err
}

func (r *projectRepository) Delete(id uint) error {
	return r.db.Delete(&models.Project{}, id).Error
}
