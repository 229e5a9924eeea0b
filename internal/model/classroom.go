package model

// swagger:model Classroom
type Classroom struct {
	BaseModel
	Name        string `gorm:"size:200;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	CreatorID   uint   `gorm:"index;not null" json:"creatorId"`
}

func (Classroom) TableName() string {
	return "classrooms"
}

// swagger:model ClassroomMember
type ClassroomMember struct {
	BaseModel
	ClassroomID uint     `gorm:"uniqueIndex:uk_classroom_user;not null" json:"classroomId"`
	UserID      uint     `gorm:"uniqueIndex:uk_classroom_user;not null" json:"userId"`
	MemberRole  UserRole `gorm:"size:20;default:'student'" json:"memberRole"`
}

func (ClassroomMember) TableName() string {
	return "classroom_members"
}
