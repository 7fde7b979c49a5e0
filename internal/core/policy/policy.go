// Package policy holds the capability table that decides which role may
// perform which action. Handlers never compare role strings themselves.
package policy

import "github.com/huahuacuna/fundacion-api/internal/core/domain"

// Action names a guarded capability.
type Action string

const (
	UsersManage        Action = "users:manage"
	ChildrenList       Action = "children:list"
	ChildrenManage     Action = "children:manage"
	SponsorshipsCreate Action = "sponsorships:create"
	SponsorshipsOwn    Action = "sponsorships:own"
	SponsorshipsManage Action = "sponsorships:manage"
	DonationsManage    Action = "donations:manage"
	LogbookRead        Action = "logbook:read"
	LogbookManage      Action = "logbook:manage"
	EventsManage       Action = "events:manage"
	ProjectsManage     Action = "projects:manage"
	VolunteeringEnroll Action = "volunteering:enroll"
)

var table = map[Action][]domain.Role{
	UsersManage:        {domain.RoleAdmin},
	ChildrenList:       {domain.RoleAdmin, domain.RoleSponsor},
	ChildrenManage:     {domain.RoleAdmin},
	SponsorshipsCreate: {domain.RoleAdmin, domain.RoleSponsor},
	SponsorshipsOwn:    {domain.RoleSponsor},
	SponsorshipsManage: {domain.RoleAdmin},
	DonationsManage:    {domain.RoleAdmin},
	LogbookRead:        {domain.RoleAdmin, domain.RoleVolunteer, domain.RoleSponsor},
	LogbookManage:      {domain.RoleAdmin},
	EventsManage:       {domain.RoleAdmin},
	ProjectsManage:     {domain.RoleAdmin},
	VolunteeringEnroll: {domain.RoleAdmin, domain.RoleVolunteer},
}

// Allowed reports whether role may perform action. Unknown actions are denied.
func Allowed(role domain.Role, action Action) bool {
	for _, r := range table[action] {
		if r == role {
			return true
		}
	}
	return false
}
