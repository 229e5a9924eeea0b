package service

import (
	"classhub_backend/internal/model"
	"strings"
	"time"
)

// AnswerSubmission 学生提交的单题答案
type AnswerSubmission struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	Answer     string `json:"answer"`
}

// AnswerResult 单题判分结果
type AnswerResult struct {
	QuestionID    uint      `json:"questionId"`
	QuestionText  string    `json:"questionText"`
	StudentAnswer string    `json:"studentAnswer"`
	CorrectAnswer string    `json:"correctAnswer"`
	IsCorrect     bool      `json:"isCorrect"`
	Points        int       `json:"points"`
	AnsweredAt    time.Time `json:"answeredAt"`
}

// QuizResult 单个学生的测验成绩
type QuizResult struct {
	QuizID         uint           `json:"quizId"`
	StudentID      uint           `json:"studentId"`
	StudentName    string         `json:"studentName"`
	QuizTitle      string         `json:"quizTitle"`
	TotalQuestions int            `json:"totalQuestions"`
	CorrectAnswers int            `json:"correctAnswers"`
	TotalPoints    int            `json:"totalPoints"`
	EarnedPoints   int            `json:"earnedPoints"`
	Percentage     float64        `json:"percentage"`
	SubmittedAt    time.Time      `json:"submittedAt"`
	AnswerResults  []AnswerResult `json:"answerResults"`
}

// GradeAnswer 按题型判分。客观题做去空格、忽略大小写的精确比对；
// 简答题在此之外还接受双向子串匹配，容忍措辞出入。
// 注意：子串规则对极短的标准答案过于宽松（标准答案为 "a" 时几乎
// 任何作答都判对），且空作答恒为标准答案的子串、必然判对，
// 这里保留既有行为。
func GradeAnswer(question *model.QuizQuestion, studentAnswer string) bool {
	if question.QuestionType == model.MultipleChoice {
		return strings.EqualFold(
			strings.TrimSpace(question.CorrectAnswer),
			strings.TrimSpace(studentAnswer),
		)
	}

	correct := strings.ToLower(strings.TrimSpace(question.CorrectAnswer))
	student := strings.ToLower(strings.TrimSpace(studentAnswer))
	return correct == student ||
		strings.Contains(student, correct) ||
		strings.Contains(correct, student)
}

// EvaluateSubmission 对照题目判分，生成答案记录。
// 匹配不到题目的答案直接丢弃，容忍客户端发来的脏数据。
func EvaluateSubmission(quiz *model.Quiz, studentID uint,
	questions []model.QuizQuestion, answers []AnswerSubmission, now time.Time) []model.QuizAnswerRecord {

	byID := make(map[uint]*model.QuizQuestion, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	records := make([]model.QuizAnswerRecord, 0, len(answers))
	for _, a := range answers {
		question, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		records = append(records, model.QuizAnswerRecord{
			QuizID:     quiz.ID,
			StudentID:  studentID,
			QuestionID: a.QuestionID,
			Answer:     a.Answer,
			IsCorrect:  GradeAnswer(question, a.Answer),
			AnsweredAt: now,
		})
	}
	return records
}

// BuildQuizResult 聚合答案记录为成绩单
func BuildQuizResult(quiz *model.Quiz, student *model.User,
	questions []model.QuizQuestion, records []model.QuizAnswerRecord) QuizResult {

	byID := make(map[uint]*model.QuizQuestion, len(questions))
	totalPoints := 0
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
		totalPoints += questions[i].Points
	}

	correctAnswers := 0
	earnedPoints := 0
	submittedAt := time.Time{}
	answerResults := make([]AnswerResult, 0, len(records))

	for _, rec := range records {
		question := byID[rec.QuestionID]
		questionText, correctAnswer, points := "Unknown", "Unknown", 0
		if question != nil {
			questionText = question.QuestionText
			correctAnswer = question.CorrectAnswer
			points = question.Points
		}

		if rec.IsCorrect {
			correctAnswers++
			earnedPoints += points
		}
		if rec.AnsweredAt.After(submittedAt) {
			submittedAt = rec.AnsweredAt
		}

		answerResults = append(answerResults, AnswerResult{
			QuestionID:    rec.QuestionID,
			QuestionText:  questionText,
			StudentAnswer: rec.Answer,
			CorrectAnswer: correctAnswer,
			IsCorrect:     rec.IsCorrect,
			Points:        points,
			AnsweredAt:    rec.AnsweredAt,
		})
	}

	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}

	percentage := 0.0
	if len(questions) > 0 {
		percentage = float64(correctAnswers) / float64(len(questions)) * 100
	}

	return QuizResult{
		QuizID:         quiz.ID,
		StudentID:      student.ID,
		StudentName:    student.Name,
		QuizTitle:      quiz.Title,
		TotalQuestions: len(questions),
		CorrectAnswers: correctAnswers,
		TotalPoints:    totalPoints,
		EarnedPoints:   earnedPoints,
		Percentage:     percentage,
		SubmittedAt:    submittedAt,
		AnswerResults:  answerResults,
	}
}

// ParticipantResult 成绩汇总里单个学生的一行
type ParticipantResult struct {
	UserID         uint      `json:"userId"`
	StudentName    string    `json:"studentName"`
	Score          int       `json:"score"`
	CorrectAnswers int       `json:"correctAnswers"`
	TotalQuestions int       `json:"totalQuestions"`
	Percentage     float64   `json:"percentage"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// QuizResultSummary 面向教师的全班成绩汇总
type QuizResultSummary struct {
	QuizID            uint                `json:"quizId"`
	QuizTitle         string              `json:"quizTitle"`
	TotalQuestions    int                 `json:"totalQuestions"`
	MaxPossibleScore  int                 `json:"maxPossibleScore"`
	TotalParticipants int                 `json:"totalParticipants"`
	AverageScore      float64             `json:"averageScore"`
	AveragePercentage float64             `json:"averagePercentage"`
	Participants      []ParticipantResult `json:"participants"`
}

// BuildResultSummary 把全部答案记录按学生聚合成汇总。
// averagePercentage 按平均分占满分的比例计算，
// 与逐人 percentage（按答对题数）口径不同，沿用既有报表定义。
func BuildResultSummary(quiz *model.Quiz, questions []model.QuizQuestion,
	records []model.QuizAnswerRecord, students map[uint]model.User) QuizResultSummary {

	maxPossibleScore := 0
	pointsByQuestion := make(map[uint]int, len(questions))
	for _, q := range questions {
		maxPossibleScore += q.Points
		pointsByQuestion[q.ID] = q.Points
	}

	byStudent := make(map[uint][]model.QuizAnswerRecord)
	order := make([]uint, 0)
	for _, rec := range records {
		if _, ok := byStudent[rec.StudentID]; !ok {
			order = append(order, rec.StudentID)
		}
		byStudent[rec.StudentID] = append(byStudent[rec.StudentID], rec)
	}

	participants := make([]ParticipantResult, 0, len(byStudent))
	totalScore := 0.0
	for _, studentID := range order {
		student, ok := students[studentID]
		if !ok {
			continue
		}

		earnedPoints := 0
		correctAnswers := 0
		submittedAt := time.Time{}
		for _, rec := range byStudent[studentID] {
			if rec.IsCorrect {
				correctAnswers++
				earnedPoints += pointsByQuestion[rec.QuestionID]
			}
			if rec.AnsweredAt.After(submittedAt) {
				submittedAt = rec.AnsweredAt
			}
		}

		percentage := 0.0
		if len(questions) > 0 {
			percentage = float64(correctAnswers) / float64(len(questions)) * 100
		}

		participants = append(participants, ParticipantResult{
			UserID:         studentID,
			StudentName:    student.Name,
			Score:          earnedPoints,
			CorrectAnswers: correctAnswers,
			TotalQuestions: len(questions),
			Percentage:     percentage,
			SubmittedAt:    submittedAt,
		})
		totalScore += float64(earnedPoints)
	}

	averageScore := 0.0
	if len(participants) > 0 {
		averageScore = totalScore / float64(len(participants))
	}
	averagePercentage := 0.0
	if maxPossibleScore > 0 {
		averagePercentage = averageScore / float64(maxPossibleScore) * 100
	}

	return QuizResultSummary{
		QuizID:            quiz.ID,
		QuizTitle:         quiz.Title,
		TotalQuestions:    len(questions),
		MaxPossibleScore:  maxPossibleScore,
		TotalParticipants: len(participants),
		AverageScore:      averageScore,
		AveragePercentage: averagePercentage,
		Participants:      participants,
	}
}

// BuildDropoutResult 中途放弃的学生没有任何答案记录，
// 合成全错成绩单，时间取会话创建时刻。保证任何终态会话都有成绩可查。
func BuildDropoutResult(quiz *model.Quiz, student *model.User,
	questions []model.QuizQuestion, session *model.QuizSession) QuizResult {

	totalPoints := 0
	answerResults := make([]AnswerResult, 0, len(questions))
	for _, q := range questions {
		totalPoints += q.Points
		answerResults = append(answerResults, AnswerResult{
			QuestionID:    q.ID,
			QuestionText:  q.QuestionText,
			StudentAnswer: "",
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     false,
			Points:        q.Points,
			AnsweredAt:    session.CreatedAt,
		})
	}

	return QuizResult{
		QuizID:         quiz.ID,
		StudentID:      student.ID,
		StudentName:    student.Name,
		QuizTitle:      quiz.Title,
		TotalQuestions: len(questions),
		CorrectAnswers: 0,
		TotalPoints:    totalPoints,
		EarnedPoints:   0,
		Percentage:     0,
		SubmittedAt:    session.CreatedAt,
		AnswerResults:  answerResults,
	}
}
