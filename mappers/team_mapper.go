// file: mappers/team_mapper.go
package mappers

import (
	"strings"

	"github.com/assessment-hisan/auction-backend/dto"
	"github.com/assessment-hisan/auction-backend/models"
)

func MapCreateTeamReqToModel(req dto.CreateTeamReq) models.Team {
	return models.Team{
		Name:       strings.TrimSpace(req.Name),
		LeaderID:   strings.TrimSpace(req.Leader),
		SubLeaders: MapSubLeaders(req.SubLeaders),
		Color:      strings.TrimSpace(req.Color),
	}
}

// MapSubLeaders trims ids and drops empty slots.
func MapSubLeaders(in map[string]string) models.SubLeaders {
	out := models.SubLeaders{}
	for slot, id := range in {
		out[slot] = strings.TrimSpace(id)
	}
	return out.Compact()
}

// MapTeamToView resolves role holders from students, keyed by id.
func MapTeamToView(t models.Team, students map[string]*models.Student) models.TeamView {
	subs := make(map[string]*models.Student, len(t.SubLeaders))
	for slot, id := range t.SubLeaders {
		subs[slot] = students[id]
	}
	return models.TeamView{
		ID:         t.ID,
		Name:       t.Name,
		Leader:     students[t.LeaderID],
		SubLeaders: subs,
		Color:      t.Color,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}
