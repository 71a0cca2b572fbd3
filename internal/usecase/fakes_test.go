package usecase

import (
	"context"
	"sort"
	"sync"

	"autoroom/internal/domain/errors"
	"autoroom/internal/domain/model"
)

type createdChannel struct {
	name    string
	bitrate int
}

type fakeGateway struct {
	mu sync.Mutex

	self       int64
	nextID     int64
	channels   map[int64]*model.Channel
	members    map[int64][]int64
	overwrites map[int64]map[int64]model.Permission
	created    map[int64]createdChannel
	deleted    []int64
	moved      map[int64]int64

	createErr   error
	grantErr    map[int64]error
	resolveErr  map[int64]error
	categoryErr map[int64]error
	listErr     map[int64]error
	deleteErr   map[int64]error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		self:        1,
		nextID:      1000,
		channels:    make(map[int64]*model.Channel),
		members:     make(map[int64][]int64),
		overwrites:  make(map[int64]map[int64]model.Permission),
		created:     make(map[int64]createdChannel),
		moved:       make(map[int64]int64),
		grantErr:    make(map[int64]error),
		resolveErr:  make(map[int64]error),
		categoryErr: make(map[int64]error),
		listErr:     make(map[int64]error),
		deleteErr:   make(map[int64]error),
	}
}

func (g *fakeGateway) addChannel(ch model.Channel, members ...int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.channels[ch.ID] = &ch
	g.members[ch.ID] = members
}

func (g *fakeGateway) setMembers(channelID int64, members ...int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.members[channelID] = members
}

func (g *fakeGateway) exists(channelID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.channels[channelID]
	return ok
}

func (g *fakeGateway) permission(channelID, userID int64) model.Permission {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.overwrites[channelID][userID]
}

func (g *fakeGateway) deletedIDs() []int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	ids := append([]int64(nil), g.deleted...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (g *fakeGateway) CreateVoiceChannel(_ context.Context, guildID, categoryID int64, name string, bitrate int) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.createErr != nil {
		return 0, g.createErr
	}
	g.nextID++
	id := g.nextID
	g.channels[id] = &model.Channel{ID: id, GuildID: guildID, ParentID: categoryID, Name: name, Kind: model.ChannelKindVoice}
	g.created[id] = createdChannel{name: name, bitrate: bitrate}
	return id, nil
}

func (g *fakeGateway) DeleteChannel(_ context.Context, channelID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.deleteErr[channelID]; err != nil {
		return err
	}
	if _, ok := g.channels[channelID]; !ok {
		return errors.NotFound("delete channel", nil)
	}
	delete(g.channels, channelID)
	delete(g.members, channelID)
	g.deleted = append(g.deleted, channelID)
	return nil
}

func (g *fakeGateway) SetAccessControl(_ context.Context, channelID, userID int64, allow, _ model.Permission) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.grantErr[userID]; err != nil {
		return err
	}
	if _, ok := g.channels[channelID]; !ok {
		return errors.NotFound("set channel permission", nil)
	}
	if g.overwrites[channelID] == nil {
		g.overwrites[channelID] = make(map[int64]model.Permission)
	}
	g.overwrites[channelID][userID] = allow
	return nil
}

func (g *fakeGateway) RemoveAccessControl(_ context.Context, channelID, userID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.overwrites[channelID][userID]; !ok {
		return errors.NotFound("delete channel permission", nil)
	}
	delete(g.overwrites[channelID], userID)
	return nil
}

func (g *fakeGateway) MoveMember(_ context.Context, _, userID, channelID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.moved[userID] = channelID
	return nil
}

func (g *fakeGateway) ResolveChannel(_ context.Context, channelID int64) (*model.Channel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.resolveErr[channelID]; err != nil {
		return nil, err
	}
	ch, ok := g.channels[channelID]
	if !ok {
		return nil, errors.NotFound("resolve channel", nil)
	}
	clone := *ch
	return &clone, nil
}

func (g *fakeGateway) ResolveCategory(_ context.Context, categoryID int64) (*model.Category, []model.Channel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.categoryErr[categoryID]; err != nil {
		return nil, nil, err
	}
	ch, ok := g.channels[categoryID]
	if !ok {
		return nil, nil, errors.NotFound("resolve category", nil)
	}
	category := *ch

	var children []model.Channel
	for _, child := range g.channels {
		if child.ParentID == categoryID {
			children = append(children, *child)
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].ID < children[j].ID })
	return &category, children, nil
}

func (g *fakeGateway) ListMembers(_ context.Context, channelID int64) ([]int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.listErr[channelID]; err != nil {
		return nil, err
	}
	if _, ok := g.channels[channelID]; !ok {
		return nil, errors.NotFound("list members", nil)
	}
	return append([]int64(nil), g.members[channelID]...), nil
}

func (g *fakeGateway) SelfID() int64 {
	return g.self
}

type fakeRooms struct {
	mu     sync.Mutex
	rows   map[int64]int64
	addErr error
	delErr error
}

func newFakeRooms(rooms ...model.MonitoredRoom) *fakeRooms {
	r := &fakeRooms{rows: make(map[int64]int64)}
	for _, room := range rooms {
		r.rows[room.ChannelID] = room.OwnerID
	}
	return r
}

func (r *fakeRooms) snapshot() map[int64]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make(map[int64]int64, len(r.rows))
	for id, owner := range r.rows {
		rows[id] = owner
	}
	return rows
}

func (r *fakeRooms) AddMonitoredRoom(_ context.Context, room *model.MonitoredRoom) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.addErr != nil {
		return r.addErr
	}
	r.rows[room.ChannelID] = room.OwnerID
	return nil
}

func (r *fakeRooms) MonitoredRoomByID(_ context.Context, channelID int64) (*model.MonitoredRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.rows[channelID]
	if !ok {
		return nil, errors.NotFound("get monitored room", nil)
	}
	return model.NewMonitoredRoom(channelID, owner), nil
}

func (r *fakeRooms) MonitoredRoomByOwner(_ context.Context, ownerID int64) (*model.MonitoredRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, owner := range r.rows {
		if owner == ownerID {
			return model.NewMonitoredRoom(id, owner), nil
		}
	}
	return nil, errors.NotFound("get monitored room by owner", nil)
}

func (r *fakeRooms) AllMonitoredRooms(_ context.Context) ([]model.MonitoredRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms := make([]model.MonitoredRoom, 0, len(r.rows))
	for id, owner := range r.rows {
		rooms = append(rooms, model.MonitoredRoom{ChannelID: id, OwnerID: owner})
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ChannelID < rooms[j].ChannelID })
	return rooms, nil
}

func (r *fakeRooms) InsertMonitoredRoomsIfAbsent(_ context.Context, rooms []model.MonitoredRoom) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, room := range rooms {
		if _, ok := r.rows[room.ChannelID]; ok {
			continue
		}
		r.rows[room.ChannelID] = room.OwnerID
		n++
	}
	return n, nil
}

func (r *fakeRooms) DeleteMonitoredRoom(_ context.Context, channelID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.delErr != nil {
		return false, r.delErr
	}
	_, ok := r.rows[channelID]
	delete(r.rows, channelID)
	return ok, nil
}

func (r *fakeRooms) DeleteMonitoredRoomsByIDs(_ context.Context, channelIDs []int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.delErr != nil {
		return 0, r.delErr
	}
	var n int64
	for _, id := range channelIDs {
		if _, ok := r.rows[id]; ok {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

type fakeTemplates struct {
	mu        sync.Mutex
	templates map[int64]model.RoomTemplate
}

func newFakeTemplates(templates ...model.RoomTemplate) *fakeTemplates {
	t := &fakeTemplates{templates: make(map[int64]model.RoomTemplate)}
	for _, tmpl := range templates {
		t.templates[tmpl.ChannelID] = tmpl
	}
	return t
}

func (t *fakeTemplates) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.templates)
}

func (t *fakeTemplates) CreateTemplate(_ context.Context, template *model.RoomTemplate) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.templates[template.ChannelID] = *template
	return nil
}

func (t *fakeTemplates) TemplateByChannelID(_ context.Context, channelID int64) (*model.RoomTemplate, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tmpl, ok := t.templates[channelID]
	if !ok {
		return nil, errors.NotFound("get template", nil)
	}
	return &tmpl, nil
}

func (t *fakeTemplates) TemplateByCategoryID(_ context.Context, categoryID int64) (*model.RoomTemplate, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var found *model.RoomTemplate
	for _, tmpl := range t.templates {
		if tmpl.CategoryID != categoryID {
			continue
		}
		if found == nil || tmpl.ChannelID < found.ChannelID {
			tmpl := tmpl
			found = &tmpl
		}
	}
	if found == nil {
		return nil, errors.NotFound("get template by category", nil)
	}
	return found, nil
}

func (t *fakeTemplates) TemplatesByGuild(_ context.Context, guildID int64) ([]model.RoomTemplate, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []model.RoomTemplate
	for _, tmpl := range t.templates {
		if tmpl.GuildID == guildID {
			out = append(out, tmpl)
		}
	}
	return out, nil
}

func (t *fakeTemplates) AllCategoryIDs(_ context.Context) ([]int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[int64]struct{})
	var ids []int64
	for _, tmpl := range t.templates {
		if _, ok := seen[tmpl.CategoryID]; ok {
			continue
		}
		seen[tmpl.CategoryID] = struct{}{}
		ids = append(ids, tmpl.CategoryID)
	}
	return ids, nil
}

func (t *fakeTemplates) OriginChannelIDs(_ context.Context) ([]int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]int64, 0, len(t.templates))
	for id := range t.templates {
		ids = append(ids, id)
	}
	return ids, nil
}

func (t *fakeTemplates) DeleteTemplate(_ context.Context, channelID int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.templates, channelID)
	return nil
}

func (t *fakeTemplates) DeleteTemplatesByCategoryIDs(_ context.Context, categoryIDs []int64) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var n int64
	for _, categoryID := range categoryIDs {
		for id, tmpl := range t.templates {
			if tmpl.CategoryID == categoryID {
				delete(t.templates, id)
				n++
			}
		}
	}
	return n, nil
}

type fakeProfiles struct {
	mu       sync.Mutex
	nextID   int64
	profiles map[int64]model.SavedRoomProfile
	guests   map[int64][]int64
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{
		profiles: make(map[int64]model.SavedRoomProfile),
		guests:   make(map[int64][]int64),
	}
}

func (p *fakeProfiles) CreateProfile(_ context.Context, profile *model.SavedRoomProfile, guestIDs []int64) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextID++
	saved := *profile
	saved.ID = p.nextID
	p.profiles[saved.ID] = saved
	p.guests[saved.ID] = append([]int64(nil), guestIDs...)
	return saved.ID, nil
}

func (p *fakeProfiles) ProfileByID(_ context.Context, id int64) (*model.SavedRoomProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	profile, ok := p.profiles[id]
	if !ok {
		return nil, errors.NotFound("get profile", nil)
	}
	return &profile, nil
}

func (p *fakeProfiles) ProfilesByOwnerAndTemplate(_ context.Context, ownerID, templateID int64) ([]model.SavedRoomProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []model.SavedRoomProfile
	for _, profile := range p.profiles {
		if profile.OwnerID == ownerID && profile.TemplateID == templateID {
			out = append(out, profile)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (p *fakeProfiles) ProfileGuests(_ context.Context, profileID int64) ([]int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// unknown profiles have no guest rows, like the SQL query
	return append([]int64{}, p.guests[profileID]...), nil
}
