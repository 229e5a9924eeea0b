package repository

import (
	"classhub_backend/internal/model"

	"gorm.io/gorm"
)

type QuizAnswerRepository struct {
	DB *gorm.DB
}

func NewQuizAnswerRepository(db *gorm.DB) *QuizAnswerRepository {
	return &QuizAnswerRepository{DB: db}
}

func (r *QuizAnswerRepository) SaveAll(records []model.QuizAnswerRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.DB.Create(&records).Error
}

func (r *QuizAnswerRepository) FindByQuizAndStudent(quizID, studentID uint) ([]model.QuizAnswerRecord, error) {
	var records []model.QuizAnswerRecord
	err := r.DB.Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Find(&records).Error
	return records, err
}

func (r *QuizAnswerRepository) FindByQuiz(quizID uint) ([]model.QuizAnswerRecord, error) {
	var records []model.QuizAnswerRecord
	err := r.DB.Where("quiz_id = ?", quizID).Find(&records).Error
	return records, err
}

func (r *QuizAnswerRepository) ExistsByQuizAndStudent(quizID, studentID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.QuizAnswerRecord{}).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *QuizAnswerRepository) CountDistinctStudents(quizID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizAnswerRecord{}).
		Where("quiz_id = ?", quizID).
		Distinct("student_id").
		Count(&count).Error
	return count, err
}
