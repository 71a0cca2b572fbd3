package dbo

import "autoroom/internal/domain/model"

type SavedProfile struct {
	ID         int64  `db:"id"`
	OwnerID    int64  `db:"owner_id"`
	Name       string `db:"name"`
	RoomName   string `db:"room_name"`
	TemplateID int64  `db:"template_id"`
}

func NewSavedProfileFromDomain(p *model.SavedRoomProfile) *SavedProfile {
	return &SavedProfile{ID: p.ID, OwnerID: p.OwnerID, Name: p.Name, RoomName: p.RoomName, TemplateID: p.TemplateID}
}

func NewDomainSavedProfileFromDBO(p *SavedProfile) *model.SavedRoomProfile {
	return &model.SavedRoomProfile{
		ID:         p.ID,
		OwnerID:    p.OwnerID,
		Name:       p.Name,
		RoomName:   p.RoomName,
		TemplateID: p.TemplateID,
	}
}
