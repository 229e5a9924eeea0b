package repository

import (
	"classhub_backend/internal/model"

	"gorm.io/gorm"
)

type ClassroomRepository struct {
	DB *gorm.DB
}

func NewClassroomRepository(db *gorm.DB) *ClassroomRepository {
	return &ClassroomRepository{DB: db}
}

func (r *ClassroomRepository) FindByID(id uint) (*model.Classroom, error) {
	var classroom model.Classroom
	if err := r.DB.First(&classroom, id).Error; err != nil {
		return nil, err
	}
	return &classroom, nil
}

func (r *ClassroomRepository) IsMember(classroomID, userID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.ClassroomMember{}).
		Where("classroom_id = ? AND user_id = ?", classroomID, userID).
		Count(&count).Error
	return count > 0, err
}
